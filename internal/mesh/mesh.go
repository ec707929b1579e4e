// Package mesh provides an indexed polygon mesh with vertex adjacency,
// used as the geometry source for marker-driven deformation.
package mesh

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Faultbox/rbfrig/pkg/formats"
	"github.com/Faultbox/rbfrig/pkg/math"
)

// Mesh errors.
var (
	ErrNoVertices  = errors.New("mesh has no vertices")
	ErrInvalidFace = errors.New("invalid mesh face")
)

// Edge is an undirected mesh edge between two vertex indices.
type Edge [2]int

// Mesh is a read-only polygon mesh. Positions are the reference pose.
type Mesh struct {
	Name      string
	positions []math.Vec3
	faces     [][]int
	adjacency [][]int // Sorted, de-duplicated neighbours per vertex
	edges     int
}

// New builds a mesh from positions and polygon faces (0-based indices).
// Every polygon contributes its boundary edges to the adjacency graph.
func New(positions []math.Vec3, faces [][]int) (*Mesh, error) {
	if len(positions) == 0 {
		return nil, ErrNoVertices
	}

	n := len(positions)
	sets := make([]map[int]struct{}, n)
	for f, face := range faces {
		if len(face) < 2 {
			return nil, fmt.Errorf("%w: face %d has %d vertices", ErrInvalidFace, f, len(face))
		}
		for i, a := range face {
			b := face[(i+1)%len(face)]
			if a < 0 || a >= n || b < 0 || b >= n {
				return nil, fmt.Errorf("%w: face %d references vertex outside [0,%d)", ErrInvalidFace, f, n)
			}
			if a == b {
				continue
			}
			if sets[a] == nil {
				sets[a] = make(map[int]struct{})
			}
			if sets[b] == nil {
				sets[b] = make(map[int]struct{})
			}
			sets[a][b] = struct{}{}
			sets[b][a] = struct{}{}
		}
	}

	m := &Mesh{
		positions: append([]math.Vec3(nil), positions...),
		faces:     faces,
		adjacency: make([][]int, n),
	}
	for v, set := range sets {
		neighbors := make([]int, 0, len(set))
		for u := range set {
			neighbors = append(neighbors, u)
		}
		sort.Ints(neighbors)
		m.adjacency[v] = neighbors
		m.edges += len(neighbors)
	}
	m.edges /= 2

	return m, nil
}

// FromOBJ builds a mesh from a parsed OBJ file.
func FromOBJ(obj *formats.OBJ) (*Mesh, error) {
	positions := make([]math.Vec3, len(obj.Positions))
	for i, p := range obj.Positions {
		positions[i] = math.FromArray(p)
	}
	m, err := New(positions, obj.Faces)
	if err != nil {
		return nil, err
	}
	m.Name = obj.Name
	return m, nil
}

// LoadOBJ parses an OBJ file and builds a mesh from it.
func LoadOBJ(path string) (*Mesh, error) {
	obj, err := formats.ParseOBJFile(path)
	if err != nil {
		return nil, err
	}
	return FromOBJ(obj)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.positions)
}

// VertexPosition returns the reference position of vertex i.
func (m *Mesh) VertexPosition(i int) math.Vec3 {
	return m.positions[i]
}

// Positions returns a copy of all reference positions.
func (m *Mesh) Positions() []math.Vec3 {
	return append([]math.Vec3(nil), m.positions...)
}

// Faces returns the polygon faces. The slice must not be modified.
func (m *Mesh) Faces() [][]int {
	return m.faces
}

// Neighbors returns the vertices sharing an edge with i, ascending.
func (m *Mesh) Neighbors(i int) []int {
	return m.adjacency[i]
}

// EdgeCount returns the number of unique undirected edges.
func (m *Mesh) EdgeCount() int {
	return m.edges
}

// InRange reports whether i is a valid vertex index.
func (m *Mesh) InRange(i int) bool {
	return i >= 0 && i < len(m.positions)
}
