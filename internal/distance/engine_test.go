package distance

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/rbfrig/internal/mesh"
	"github.com/Faultbox/rbfrig/pkg/math"
)

// grid creates a width x height grid of unit quads in the XY plane.
// Vertex (x, y) has index y*width + x.
func grid(t *testing.T, width, height int) *mesh.Mesh {
	t.Helper()

	positions := make([]math.Vec3, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			positions = append(positions, math.Vec3{X: float64(x), Y: float64(y)})
		}
	}

	var faces [][]int
	for y := 0; y+1 < height; y++ {
		for x := 0; x+1 < width; x++ {
			i := y*width + x
			faces = append(faces, []int{i, i + 1, i + width + 1, i + width})
		}
	}

	m, err := mesh.New(positions, faces)
	require.NoError(t, err)
	return m
}

// islands creates two unit quads that share no edge.
func islands(t *testing.T) *mesh.Mesh {
	t.Helper()

	positions := []math.Vec3{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
		{X: 5, Y: 0}, {X: 6, Y: 0}, {X: 6, Y: 1}, {X: 5, Y: 1},
	}
	m, err := mesh.New(positions, [][]int{{0, 1, 2, 3}, {4, 5, 6, 7}})
	require.NoError(t, err)
	return m
}

func TestNewEngine_Errors(t *testing.T) {
	_, err := NewEngine(nil, nil)
	assert.ErrorIs(t, err, ErrPrecondition)

	_, err = NewEngine(grid(t, 2, 2), []int{4})
	assert.ErrorIs(t, err, ErrPrecondition)

	_, err = NewEngine(grid(t, 2, 2), []int{-1})
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestEngine_Euclidean(t *testing.T) {
	e, err := NewEngine(grid(t, 3, 3), nil)
	require.NoError(t, err)

	assert.InDelta(t, gomath.Sqrt2, e.Euclidean(0, 4), 1e-12)
	assert.Equal(t, e.Euclidean(2, 6), e.Euclidean(6, 2))
	assert.Zero(t, e.Euclidean(5, 5))
}

func TestEngine_Geodesic(t *testing.T) {
	e, err := NewEngine(grid(t, 3, 3), nil)
	require.NoError(t, err)

	d, err := e.Geodesic(0, 8)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, d, 1e-12)

	back, err := e.Geodesic(8, 0)
	require.NoError(t, err)
	assert.Equal(t, d, back)

	d, err = e.Geodesic(4, 4)
	require.NoError(t, err)
	assert.Zero(t, d)

	// Geodesic distance never undercuts the straight line.
	for v := 0; v < 9; v++ {
		d, err := e.Geodesic(0, v)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, d+1e-12, e.Euclidean(0, v))
	}
}

func TestEngine_GeodesicUnreachable(t *testing.T) {
	e, err := NewEngine(islands(t), nil)
	require.NoError(t, err)

	_, err = e.Geodesic(0, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreachable))

	var ue *UnreachableError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, 0, ue.From)
	assert.Equal(t, 5, ue.To)

	// Euclidean still works across islands.
	d, err := e.Distance(Euclidean, 0, 4)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, d, 1e-12)
}

func TestEngine_BlendWeight(t *testing.T) {
	e, err := NewEngine(grid(t, 5, 2), []int{0})
	require.NoError(t, err)

	assert.Equal(t, 1.0, e.BlendWeight(0))
	assert.InDelta(t, gomath.Exp(-0.25), e.BlendWeight(1), 1e-12)
	assert.InDelta(t, gomath.Exp(-1), e.BlendWeight(2), 1e-12)

	none, err := NewEngine(grid(t, 2, 2), nil)
	require.NoError(t, err)
	assert.Zero(t, none.BlendWeight(3))
}

func TestEngine_Hybrid(t *testing.T) {
	// 5x2 grid, region at vertex 0.
	e, err := NewEngine(grid(t, 5, 2), []int{0})
	require.NoError(t, err)

	// Inside the region the hybrid distance is geodesic.
	d, err := e.Hybrid(0, 6)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, d, 1e-12)

	// Vertex 1 is one unit away: weight exp(-1/4) blends both terms.
	w := gomath.Exp(-0.25)
	d, err = e.Hybrid(1, 7)
	require.NoError(t, err)
	assert.InDelta(t, 2*w+gomath.Sqrt2*(1-w), d, 1e-12)

	// Vertex 2 is two units away: weight exp(-1) falls below the cutoff.
	d, err = e.Hybrid(2, 9)
	require.NoError(t, err)
	assert.InDelta(t, e.Euclidean(2, 9), d, 1e-12)

	// The row vertex decides the weight, so hybrid is not symmetric.
	ab, err := e.Hybrid(0, 9)
	require.NoError(t, err)
	ba, err := e.Hybrid(9, 0)
	require.NoError(t, err)
	assert.NotEqual(t, ab, ba)
}

func TestBlend(t *testing.T) {
	assert.Equal(t, 3.0, Blend(0.59, 3, 5))
	assert.InDelta(t, 5*0.6+3*0.4, Blend(BlendCutoff, 3, 5), 1e-12)
	assert.Equal(t, 5.0, Blend(1, 3, 5))
}

func TestEngine_DistanceUnknownMetric(t *testing.T) {
	e, err := NewEngine(grid(t, 2, 2), nil)
	require.NoError(t, err)

	_, err = e.Distance(Metric(9), 0, 1)
	assert.ErrorIs(t, err, ErrUnknownMetric)
	assert.ErrorIs(t, err, ErrPrecondition)
}
