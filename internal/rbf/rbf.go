// Package rbf turns marker displacements into a per-vertex displacement
// field using normalized Gaussian radial basis function weighting.
package rbf

import (
	"context"
	"errors"
	"fmt"
	gomath "math"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/rbfrig/internal/distance"
	"github.com/Faultbox/rbfrig/pkg/math"
)

// batchSize is the number of vertices evaluated between cancellation checks.
const batchSize = 1024

// Solver errors.
var (
	ErrNumerical     = errors.New("numerical error")
	ErrDispCount     = errors.New("displacement count does not match marker count")
	ErrOutputSize    = errors.New("output size does not match vertex count")
	ErrBadStiffness  = errors.New("stiffness must be positive and finite")
	ErrStiffnessSize = errors.New("stiffness count does not match marker count")
)

// ZeroRowSumError reports a marker whose kernel row sums to zero (or to a
// non-finite value), so its weight cannot be normalized.
type ZeroRowSumError struct {
	Marker int
	Sum    float64
}

func (e *ZeroRowSumError) Error() string {
	return fmt.Sprintf("kernel row of marker %d sums to %g", e.Marker, e.Sum)
}

func (e *ZeroRowSumError) Unwrap() error { return ErrNumerical }

// Gaussian returns exp(-(d²/γ²)).
func Gaussian(d, gamma float64) float64 {
	return gomath.Exp(-(d * d) / (gamma * gamma))
}

// Solver evaluates the deformation for one distance table and stiffness set.
// It holds no per-frame state and is safe for concurrent use.
type Solver struct {
	table     *distance.Table
	stiffness []float64
	kernel    [][]float64
	rowSum    []float64

	// Workers is the number of goroutines evaluating vertices in Displace.
	// Values below 2 evaluate serially. Results do not depend on it.
	Workers int
}

// NewSolver creates a solver. stiffness holds γ per marker in table order.
// The marker kernel is computed once here since it does not change per frame.
func NewSolver(table *distance.Table, stiffness []float64) (*Solver, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: no distance table", distance.ErrPrecondition)
	}
	m := table.Markers()
	if len(stiffness) != m {
		return nil, fmt.Errorf("%w: got %d values for %d markers: %w",
			ErrStiffnessSize, len(stiffness), m, distance.ErrPrecondition)
	}
	for i, g := range stiffness {
		if !(g > 0) || gomath.IsInf(g, 0) {
			return nil, fmt.Errorf("%w: marker %d has %g: %w", ErrBadStiffness, i, g, distance.ErrPrecondition)
		}
	}

	s := &Solver{
		table:     table,
		stiffness: append([]float64(nil), stiffness...),
		kernel:    make([][]float64, m),
		rowSum:    make([]float64, m),
	}
	for i := 0; i < m; i++ {
		row := make([]float64, m)
		var sum float64
		for j := 0; j < m; j++ {
			row[j] = Gaussian(table.MarkerDistance(i, j), stiffness[i])
			sum += row[j]
		}
		s.kernel[i] = row
		s.rowSum[i] = sum
	}
	return s, nil
}

// Markers returns the number of markers.
func (s *Solver) Markers() int {
	return len(s.stiffness)
}

// Vertices returns the number of vertices.
func (s *Solver) Vertices() int {
	return s.table.Vertices()
}

// Kernel returns a copy of the marker kernel K, where K[i][j] uses marker
// i's stiffness. K is not symmetric in general.
func (s *Solver) Kernel() [][]float64 {
	k := make([][]float64, len(s.kernel))
	for i, row := range s.kernel {
		k[i] = append([]float64(nil), row...)
	}
	return k
}

// Weights divides each marker displacement by the sum of its kernel row.
func (s *Solver) Weights(disp []math.Vec3) ([]math.Vec3, error) {
	if len(disp) != len(s.stiffness) {
		return nil, fmt.Errorf("%w: got %d for %d markers: %w",
			ErrDispCount, len(disp), len(s.stiffness), distance.ErrPrecondition)
	}

	w := make([]math.Vec3, len(disp))
	for i, d := range disp {
		sum := s.rowSum[i]
		if sum == 0 || gomath.IsNaN(sum) || gomath.IsInf(sum, 0) {
			return nil, &ZeroRowSumError{Marker: i, Sum: sum}
		}
		w[i] = d.Div(sum)
	}
	return w, nil
}

// Displace computes the displacement of every vertex into out, which must
// have one entry per vertex. ctx is checked between vertex batches; on
// cancellation Displace returns (false, nil) and out is incomplete.
func (s *Solver) Displace(ctx context.Context, disp []math.Vec3, out []math.Vec3) (bool, error) {
	n := s.table.Vertices()
	if len(out) != n {
		return false, fmt.Errorf("%w: got %d for %d vertices: %w", ErrOutputSize, len(out), n, distance.ErrPrecondition)
	}
	w, err := s.Weights(disp)
	if err != nil {
		return false, err
	}

	batch := func(from, to int) {
		for v := from; v < to; v++ {
			out[v] = s.vertex(v, w)
		}
	}

	if s.Workers < 2 {
		for from := 0; from < n; from += batchSize {
			batch(from, min(from+batchSize, n))
			if ctx.Err() != nil {
				return false, nil
			}
		}
		return true, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Workers)
	for from := 0; from < n; from += batchSize {
		if gctx.Err() != nil {
			break
		}
		from, to := from, min(from+batchSize, n)
		g.Go(func() error {
			batch(from, to)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	if ctx.Err() != nil {
		return false, nil
	}
	return true, nil
}

// vertex sums the weighted kernel contribution of every marker at v.
func (s *Solver) vertex(v int, w []math.Vec3) math.Vec3 {
	var d math.Vec3
	row := s.table.Row(v)
	for c, dist := range row {
		d = d.Add(w[c].Scale(Gaussian(dist, s.stiffness[c])))
	}
	return d
}
