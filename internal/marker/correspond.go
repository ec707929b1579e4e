package marker

import (
	"errors"
	gomath "math"

	"github.com/Faultbox/rbfrig/pkg/math"
)

// ErrNoVertices is returned when matching against an empty mesh.
var ErrNoVertices = errors.New("mesh has no vertices")

// Vertices exposes reference vertex positions.
type Vertices interface {
	VertexCount() int
	VertexPosition(i int) math.Vec3
}

// Correspond binds each marker position to its nearest mesh vertex.
// Every vertex is scanned for every marker in ascending index order;
// ties keep the lowest vertex index.
func Correspond(mesh Vertices, positions []math.Vec3) ([]int, error) {
	n := mesh.VertexCount()
	if n == 0 {
		return nil, ErrNoVertices
	}
	if len(positions) == 0 {
		return nil, ErrNoMarkers
	}

	index := make([]int, len(positions))
	best := make([]float64, len(positions))
	for j := range best {
		best[j] = gomath.MaxFloat64
	}

	for i := 0; i < n; i++ {
		p := mesh.VertexPosition(i)
		for j, mp := range positions {
			if d := p.Distance(mp); d < best[j] {
				best[j] = d
				index[j] = i
			}
		}
	}

	return index, nil
}

// CorrespondAt samples src at frame and binds each marker to a vertex.
func CorrespondAt(mesh Vertices, src Source, frame int) ([]int, error) {
	if src.Count() == 0 {
		return nil, ErrNoMarkers
	}
	return Correspond(mesh, Positions(src, frame))
}
