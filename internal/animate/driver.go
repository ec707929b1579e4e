package animate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/rbfrig/internal/distance"
	"github.com/Faultbox/rbfrig/internal/logger"
	"github.com/Faultbox/rbfrig/internal/marker"
	"github.com/Faultbox/rbfrig/internal/metrics"
	"github.com/Faultbox/rbfrig/internal/rbf"
	"github.com/Faultbox/rbfrig/pkg/math"
)

// ReferenceFrame is the frame at which correspondence and reference
// marker positions are taken.
const ReferenceFrame = 0

// MissingPolicy selects what happens when a cache file is absent.
type MissingPolicy int

const (
	Recompute MissingPolicy = iota // Build the table without the cache
	Abort                          // Fail with distance.ErrCacheNotFound
)

// String returns the policy name.
func (p MissingPolicy) String() string {
	if p == Abort {
		return "abort"
	}
	return "recompute"
}

// ParseMissingPolicy parses "recompute" or "abort".
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "recompute":
		return Recompute, nil
	case "abort":
		return Abort, nil
	}
	return 0, fmt.Errorf("unknown cache policy %q (want recompute or abort)", s)
}

// Cache configures the distance table cache of a run.
type Cache struct {
	Dir       string        // Cache folder; empty disables the cache
	OnMissing MissingPolicy // Policy for an absent cache file
	Write     bool          // Save a freshly built table to Dir
}

// Driver deforms a mesh by its markers over a frame range.
type Driver struct {
	Geometry  distance.Geometry
	Markers   marker.Source
	Metric    distance.Metric
	Frames    Frames
	Stiffness []float64 // Per marker; empty means marker.DefaultStiffness
	Regions   []int     // Geodesic region vertices for the hybrid metric
	Cache     Cache
	Workers   int // Goroutines for table and displacement evaluation

	// Metrics receives run statistics when set.
	Metrics *metrics.Collector
}

// Result describes a finished or cancelled run.
type Result struct {
	FramesApplied int
	Completed     bool
	Stats         Stats
}

// Run executes the baseline pass, the precompute pass and the per-frame
// pass, in that order. ctx is checked after every baseline frame, after
// every table row, between vertex batches and after every solved frame.
// A cancelled run is not an error: it returns Completed false with the
// frames applied so far left in sink.
func (d *Driver) Run(ctx context.Context, sink Sink) (Result, error) {
	res, err := d.run(ctx, sink)
	switch {
	case err != nil:
		d.Metrics.RunFinished(metrics.OutcomeFailed)
	case !res.Completed:
		d.Metrics.RunFinished(metrics.OutcomeCancelled)
	default:
		d.Metrics.RunFinished(metrics.OutcomeCompleted)
	}
	return res, err
}

func (d *Driver) run(ctx context.Context, sink Sink) (Result, error) {
	var res Result

	stiffness, err := d.validate(sink)
	if err != nil {
		return res, err
	}

	n := d.Geometry.VertexCount()
	rest := make([]math.Vec3, n)
	for v := range rest {
		rest[v] = d.Geometry.VertexPosition(v)
	}

	frames := d.Frames.List()
	logger.Info("starting deformation",
		zap.Stringer("metric", d.Metric),
		zap.Int("vertices", n),
		zap.Int("markers", d.Markers.Count()),
		zap.Int("frames", len(frames)))

	for _, f := range frames {
		if err := sink.Baseline(f, rest); err != nil {
			return res, fmt.Errorf("baseline frame %d: %w", f, err)
		}
		if ctx.Err() != nil {
			logger.Info("deformation cancelled during baseline pass", zap.Int("frame", f))
			return res, nil
		}
	}

	start := time.Now()
	solver, ref, ok, err := d.precompute(ctx, stiffness)
	if err != nil || !ok {
		return res, err
	}
	res.Stats.Precompute = time.Since(start)
	d.Metrics.Precompute(res.Stats.Precompute)
	logger.Info("precomputation finished", zap.Duration("elapsed", res.Stats.Precompute))

	disp := make([]math.Vec3, len(ref))
	out := make([]math.Vec3, n)
	for _, f := range frames {
		frameStart := time.Now()
		for i := range disp {
			disp[i] = d.Markers.Position(i, f).Sub(ref[i])
		}

		ok, err := solver.Displace(ctx, disp, out)
		if err != nil {
			return res, fmt.Errorf("frame %d: %w", f, err)
		}
		if !ok {
			logger.Info("deformation cancelled", zap.Int("frame", f), zap.Int("applied", res.FramesApplied))
			return res, nil
		}

		applyStart := time.Now()
		if err := sink.Frame(f, out); err != nil {
			return res, fmt.Errorf("applying frame %d: %w", f, err)
		}
		apply := time.Since(applyStart)
		solve := applyStart.Sub(frameStart)

		res.FramesApplied++
		res.Stats.add(solve, apply)
		d.Metrics.FrameApplied(solve, apply)
		logger.Debug("frame applied", zap.Int("frame", f), zap.Duration("elapsed", solve+apply))

		if ctx.Err() != nil {
			logger.Info("deformation cancelled", zap.Int("frame", f), zap.Int("applied", res.FramesApplied))
			return res, nil
		}
	}

	res.Completed = true
	res.Stats.Log()
	return res, nil
}

// validate checks every precondition before any work is done and
// resolves the stiffness list.
func (d *Driver) validate(sink Sink) ([]float64, error) {
	if !d.Metric.Valid() {
		return nil, fmt.Errorf("%w %d: %w", distance.ErrUnknownMetric, int(d.Metric), distance.ErrPrecondition)
	}
	if d.Geometry == nil || d.Geometry.VertexCount() == 0 {
		return nil, fmt.Errorf("%w: no mesh", distance.ErrPrecondition)
	}
	if d.Markers == nil || d.Markers.Count() == 0 {
		return nil, fmt.Errorf("%w: no markers", distance.ErrPrecondition)
	}
	if sink == nil {
		return nil, fmt.Errorf("%w: no output", distance.ErrPrecondition)
	}
	if err := d.Frames.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", distance.ErrPrecondition, err)
	}

	stiffness := d.Stiffness
	if len(stiffness) == 0 {
		stiffness = make([]float64, d.Markers.Count())
		for i := range stiffness {
			stiffness[i] = marker.DefaultStiffness
		}
	}
	if len(stiffness) != d.Markers.Count() {
		return nil, fmt.Errorf("%w: got %d values for %d markers: %w",
			marker.ErrStiffnessCount, len(stiffness), d.Markers.Count(), distance.ErrPrecondition)
	}
	for i, g := range stiffness {
		if !(g > 0) {
			return nil, fmt.Errorf("%w: marker %d has %v: %w", marker.ErrInvalidStiffness, i, g, distance.ErrPrecondition)
		}
	}
	return stiffness, nil
}

// precompute binds markers to vertices at the reference frame and
// obtains the distance table, from the cache when possible.
func (d *Driver) precompute(ctx context.Context, stiffness []float64) (*rbf.Solver, []math.Vec3, bool, error) {
	corr, err := marker.CorrespondAt(d.Geometry, d.Markers, ReferenceFrame)
	if err != nil {
		return nil, nil, false, fmt.Errorf("%w: %w", distance.ErrPrecondition, err)
	}
	ref := marker.Positions(d.Markers, ReferenceFrame)

	table, ok, err := d.table(ctx, corr)
	if err != nil || !ok {
		return nil, nil, ok, err
	}

	solver, err := rbf.NewSolver(table, stiffness)
	if err != nil {
		return nil, nil, false, err
	}
	solver.Workers = d.Workers
	return solver, ref, true, nil
}

func (d *Driver) table(ctx context.Context, corr []int) (*distance.Table, bool, error) {
	n := d.Geometry.VertexCount()
	if d.Cache.Dir != "" {
		t, err := distance.LoadFile(d.Cache.Dir, d.Metric, n, corr)
		if err == nil {
			d.Metrics.CacheLookup(d.Metric.String(), true)
			logger.Info("distance table loaded from cache", zap.String("path", distance.CachePath(d.Cache.Dir, d.Metric)))
			return t, true, nil
		}
		if !errors.Is(err, distance.ErrCacheNotFound) {
			return nil, false, err
		}
		d.Metrics.CacheLookup(d.Metric.String(), false)
		if d.Cache.OnMissing == Abort {
			return nil, false, err
		}
		logger.Warn("distance cache missing, recomputing", zap.String("path", distance.CachePath(d.Cache.Dir, d.Metric)))
	}

	engine, err := distance.NewEngine(d.Geometry, d.Regions)
	if err != nil {
		return nil, false, err
	}
	t, ok, err := distance.Build(ctx, engine, corr, d.Metric, distance.Options{Workers: d.Workers})
	if err != nil || !ok {
		return nil, ok, err
	}
	d.Metrics.TableBuilt(d.Metric.String())

	if d.Cache.Dir != "" && d.Cache.Write {
		if err := distance.SaveFile(d.Cache.Dir, t); err != nil {
			return nil, false, err
		}
		logger.Info("distance table cached", zap.String("path", distance.CachePath(d.Cache.Dir, d.Metric)))
	}
	return t, true, nil
}
