package distance

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/rbfrig/internal/mesh"
	"github.com/Faultbox/rbfrig/pkg/math"
)

// Hybrid blend constants. The blend width is independent of marker stiffness.
const (
	BlendWidth  = 2.0 // Gaussian width of the region falloff
	BlendCutoff = 0.6 // Weights below this use pure Euclidean distance
)

// Geometry is the mesh interface needed to measure distances.
type Geometry interface {
	VertexCount() int
	VertexPosition(i int) math.Vec3
	ShortestEdgePath(v1, v2 int) []mesh.Edge
}

// Engine measures distances between vertices of a mesh at its reference pose.
type Engine struct {
	geom     Geometry
	region   []int
	inRegion map[int]bool
}

// NewEngine creates an engine. region lists the geodesic region vertices
// used by the hybrid metric; it may be empty.
func NewEngine(geom Geometry, region []int) (*Engine, error) {
	if geom == nil {
		return nil, fmt.Errorf("%w: no geometry", ErrPrecondition)
	}
	n := geom.VertexCount()
	if n == 0 {
		return nil, fmt.Errorf("%w: mesh has no vertices", ErrPrecondition)
	}

	e := &Engine{
		geom:     geom,
		region:   append([]int(nil), region...),
		inRegion: make(map[int]bool, len(region)),
	}
	for _, v := range region {
		if v < 0 || v >= n {
			return nil, fmt.Errorf("%w: region vertex %d outside [0,%d)", ErrPrecondition, v, n)
		}
		e.inRegion[v] = true
	}
	return e, nil
}

// VertexCount returns the number of mesh vertices.
func (e *Engine) VertexCount() int {
	return e.geom.VertexCount()
}

// Euclidean returns the straight-line distance between two vertices.
func (e *Engine) Euclidean(v1, v2 int) float64 {
	return e.geom.VertexPosition(v1).Distance(e.geom.VertexPosition(v2))
}

// Geodesic returns the length of the shortest edge path between two vertices.
func (e *Engine) Geodesic(v1, v2 int) (float64, error) {
	if v1 == v2 {
		return 0, nil
	}

	path := e.geom.ShortestEdgePath(v1, v2)
	if len(path) == 0 {
		return 0, &UnreachableError{From: v1, To: v2}
	}

	var dist float64
	for _, edge := range path {
		dist += e.Euclidean(edge[0], edge[1])
	}
	return dist, nil
}

// BlendWeight returns the geodesic share for vertex v: 1 inside the region,
// otherwise a Gaussian of the distance to the nearest region vertex.
func (e *Engine) BlendWeight(v int) float64 {
	if e.inRegion[v] {
		return 1
	}

	nearest := gomath.MaxFloat64
	p := e.geom.VertexPosition(v)
	for _, r := range e.region {
		if d := p.Distance(e.geom.VertexPosition(r)); d < nearest {
			nearest = d
		}
	}
	return gomath.Exp(-(nearest * nearest) / (BlendWidth * BlendWidth))
}

// Hybrid blends geodesic and Euclidean distance using v1's blend weight.
// A weight of exactly BlendCutoff takes the blended branch.
func (e *Engine) Hybrid(v1, v2 int) (float64, error) {
	return e.hybrid(e.BlendWeight(v1), v1, v2)
}

func (e *Engine) hybrid(weight float64, v1, v2 int) (float64, error) {
	euc := e.Euclidean(v1, v2)
	if weight < BlendCutoff {
		return euc, nil
	}
	geo, err := e.Geodesic(v1, v2)
	if err != nil {
		return 0, err
	}
	return Blend(weight, euc, geo), nil
}

// Blend combines Euclidean and geodesic distances for a blend weight.
func Blend(weight, euc, geo float64) float64 {
	if weight < BlendCutoff {
		return euc
	}
	return geo*weight + euc*(1-weight)
}

// Distance measures v1 to v2 under metric.
func (e *Engine) Distance(metric Metric, v1, v2 int) (float64, error) {
	switch metric {
	case Euclidean:
		return e.Euclidean(v1, v2), nil
	case Geodesic:
		return e.Geodesic(v1, v2)
	case Hybrid:
		return e.Hybrid(v1, v2)
	default:
		return 0, fmt.Errorf("%w %d: %w", ErrUnknownMetric, int(metric), ErrPrecondition)
	}
}
