package distance

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/rbfrig/internal/logger"
)

// Options controls table construction.
type Options struct {
	// Workers is the number of goroutines computing rows. Values below 2
	// compute serially. Results do not depend on the worker count.
	Workers int
}

// rowFunc computes the raw distances of vertex v into every out[k][c].
type rowFunc func(v int, out [][]float64) error

// Build computes the distance table for metric. ctx is checked after each
// vertex row; on cancellation Build returns (nil, false, nil).
func Build(ctx context.Context, e *Engine, corr []int, metric Metric, opts Options) (*Table, bool, error) {
	if !metric.Valid() {
		return nil, false, fmt.Errorf("%w %d: %w", ErrUnknownMetric, int(metric), ErrPrecondition)
	}
	t, err := newTable(metric, e.VertexCount(), corr)
	if err != nil {
		return nil, false, err
	}

	start := time.Now()
	logger.Debug("building distance table",
		zap.Stringer("metric", metric),
		zap.Int("vertices", t.vertices),
		zap.Int("markers", len(corr)))

	row := func(v int, out [][]float64) error {
		var weight float64
		if metric == Hybrid {
			weight = e.BlendWeight(v)
		}
		for c, target := range corr {
			var d float64
			var err error
			switch metric {
			case Euclidean:
				d = e.Euclidean(v, target)
			case Geodesic:
				d, err = e.Geodesic(v, target)
			case Hybrid:
				d, err = e.hybrid(weight, v, target)
			}
			if err != nil {
				return err
			}
			out[0][c] = d
		}
		return nil
	}

	raws, ok, err := sweep(ctx, t.vertices, len(corr), 1, opts.Workers, row)
	if err != nil || !ok {
		return nil, ok, err
	}
	t.fill(raws[0])

	logger.Debug("distance table built",
		zap.Stringer("metric", metric),
		zap.Duration("elapsed", time.Since(start)))
	return t, true, nil
}

// BuildAll computes Euclidean, geodesic and hybrid tables in one sweep,
// sharing the Euclidean and geodesic distance of every pair.
func BuildAll(ctx context.Context, e *Engine, corr []int, opts Options) (map[Metric]*Table, bool, error) {
	tables := make(map[Metric]*Table, len(Metrics))
	for _, m := range Metrics {
		t, err := newTable(m, e.VertexCount(), corr)
		if err != nil {
			return nil, false, err
		}
		tables[m] = t
	}

	start := time.Now()
	logger.Debug("building all distance tables",
		zap.Int("vertices", e.VertexCount()),
		zap.Int("markers", len(corr)))

	row := func(v int, out [][]float64) error {
		weight := e.BlendWeight(v)
		for c, target := range corr {
			euc := e.Euclidean(v, target)
			geo, err := e.Geodesic(v, target)
			if err != nil {
				return err
			}
			out[Euclidean][c] = euc
			out[Geodesic][c] = geo
			out[Hybrid][c] = Blend(weight, euc, geo)
		}
		return nil
	}

	raws, ok, err := sweep(ctx, e.VertexCount(), len(corr), len(Metrics), opts.Workers, row)
	if err != nil || !ok {
		return nil, ok, err
	}
	for _, m := range Metrics {
		tables[m].fill(raws[m])
	}

	logger.Debug("distance tables built", zap.Duration("elapsed", time.Since(start)))
	return tables, true, nil
}

// sweep evaluates fn for every vertex row into `layers` raw buffers of
// vertices*markers values each. Rows are independent, so they may be
// computed by several workers without changing the result.
func sweep(ctx context.Context, vertices, markers, layers, workers int, fn rowFunc) ([][]float64, bool, error) {
	raws := make([][]float64, layers)
	for k := range raws {
		raws[k] = make([]float64, vertices*markers)
	}

	rowOut := func(v int) [][]float64 {
		out := make([][]float64, layers)
		for k := range out {
			out[k] = raws[k][v*markers : (v+1)*markers]
		}
		return out
	}

	if workers < 2 {
		for v := 0; v < vertices; v++ {
			if err := fn(v, rowOut(v)); err != nil {
				return nil, false, err
			}
			if ctx.Err() != nil {
				return nil, false, nil
			}
		}
		return raws, true, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for v := 0; v < vertices; v++ {
		if gctx.Err() != nil {
			break
		}
		v := v
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			return fn(v, rowOut(v))
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}
	if ctx.Err() != nil {
		return nil, false, nil
	}
	return raws, true, nil
}
