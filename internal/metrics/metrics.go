// Package metrics exposes deformation run statistics as Prometheus collectors.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the run collectors on a private registry.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	framesApplied   prometheus.Counter
	frameDuration   prometheus.Histogram
	applyDuration   prometheus.Histogram
	precompute      prometheus.Gauge
	cacheLookups    *prometheus.CounterVec
	runsTotal       *prometheus.CounterVec
	tableBuildTotal *prometheus.CounterVec
}

// New creates a collector and registers it on a new registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		framesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rbfrig_frames_applied_total",
			Help: "Total number of output frames deformed and applied",
		}),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rbfrig_frame_duration_seconds",
			Help:    "Time to solve one output frame",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 16),
		}),
		applyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rbfrig_apply_duration_seconds",
			Help:    "Time to hand one deformed frame to the output",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
		}),
		precompute: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rbfrig_precompute_seconds",
			Help: "Duration of the last correspondence and distance table pass",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rbfrig_cache_lookups_total",
			Help: "Distance cache lookups by metric and result (hit, miss)",
		}, []string{"metric", "result"}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rbfrig_runs_total",
			Help: "Deformation runs by outcome (completed, cancelled, failed)",
		}, []string{"outcome"}),
		tableBuildTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rbfrig_table_builds_total",
			Help: "Distance tables computed by metric",
		}, []string{"metric"}),
	}
	c.registry.MustRegister(
		c.framesApplied,
		c.frameDuration,
		c.applyDuration,
		c.precompute,
		c.cacheLookups,
		c.runsTotal,
		c.tableBuildTotal,
	)
	return c
}

// Registry returns the registry holding the collectors.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// FrameApplied records one applied frame.
func (c *Collector) FrameApplied(solve, apply time.Duration) {
	if c == nil {
		return
	}
	c.framesApplied.Inc()
	c.frameDuration.Observe(solve.Seconds())
	c.applyDuration.Observe(apply.Seconds())
}

// Precompute records the precompute pass duration.
func (c *Collector) Precompute(d time.Duration) {
	if c == nil {
		return
	}
	c.precompute.Set(d.Seconds())
}

// CacheLookup records a distance cache hit or miss.
func (c *Collector) CacheLookup(metric string, hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(metric, result).Inc()
}

// TableBuilt records a computed distance table.
func (c *Collector) TableBuilt(metric string) {
	if c == nil {
		return
	}
	c.tableBuildTotal.WithLabelValues(metric).Inc()
}

// Run outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"
)

// RunFinished records the outcome of a run.
func (c *Collector) RunFinished(outcome string) {
	if c == nil {
		return
	}
	c.runsTotal.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes the collectors in the text exposition format, for
// the node exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
