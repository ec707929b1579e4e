// Package config handles rbfrig configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/rbfrig/internal/animate"
	"github.com/Faultbox/rbfrig/internal/distance"
)

// ErrInvalid is returned by Validate for unusable settings.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all run settings.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Solve   SolveConfig   `yaml:"solve"`
	Cache   CacheConfig   `yaml:"cache"`
	Output  OutputConfig  `yaml:"output"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// InputConfig holds input file paths.
type InputConfig struct {
	Mesh string `yaml:"mesh" split_words:"true"` // OBJ mesh at the reference pose
	Rig  string `yaml:"rig" split_words:"true"`  // Rig YAML with markers and regions
}

// SolveConfig holds deformation settings.
type SolveConfig struct {
	Metric           string    `yaml:"metric" split_words:"true"` // Euclidean, Geodesics or Hybrid (or 0, 1, 2)
	FirstFrame       int       `yaml:"first_frame" split_words:"true"`
	LastFrame        int       `yaml:"last_frame" split_words:"true"`
	Step             int       `yaml:"step" split_words:"true"`
	Stiffness        []float64 `yaml:"stiffness,flow" split_words:"true"` // Per marker; overrides rig values
	DefaultStiffness float64   `yaml:"default_stiffness" split_words:"true"`
	Workers          int       `yaml:"workers" split_words:"true"` // 0 or 1 evaluates serially
}

// CacheConfig holds distance table cache settings.
type CacheConfig struct {
	Dir       string `yaml:"dir" split_words:"true"`        // Empty disables the cache
	OnMissing string `yaml:"on_missing" split_words:"true"` // recompute or abort
	Write     bool   `yaml:"write" split_words:"true"`      // Save built tables
}

// OutputConfig holds output destinations.
type OutputConfig struct {
	Stream string `yaml:"stream" split_words:"true"`  // Displacement records; "-" is stdout
	OBJDir string `yaml:"obj_dir" split_words:"true"` // Deformed OBJ per frame
}

// MetricsConfig holds metrics export settings.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" split_words:"true"` // Prometheus textfile path
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" split_words:"true"`
	LogFile string `yaml:"log_file" split_words:"true"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Solve: SolveConfig{
			Metric:           distance.Euclidean.String(),
			FirstFrame:       0,
			LastFrame:        100,
			Step:             5,
			DefaultStiffness: 2,
			Workers:          0,
		},
		Cache: CacheConfig{
			OnMissing: animate.Recompute.String(),
			Write:     true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks the settings a run depends on.
func (c *Config) Validate() error {
	if _, err := distance.ParseMetric(c.Solve.Metric); err != nil {
		return fmt.Errorf("%w: solve.metric: %w", ErrInvalid, err)
	}
	if err := c.Frames().Validate(); err != nil {
		return fmt.Errorf("%w: solve: %w", ErrInvalid, err)
	}
	if c.Solve.DefaultStiffness < 0 {
		return fmt.Errorf("%w: solve.default_stiffness must not be negative", ErrInvalid)
	}
	for i, g := range c.Solve.Stiffness {
		if !(g > 0) {
			return fmt.Errorf("%w: solve.stiffness[%d] must be positive, got %v", ErrInvalid, i, g)
		}
	}
	if c.Solve.Workers < 0 {
		return fmt.Errorf("%w: solve.workers must not be negative", ErrInvalid)
	}
	if _, err := animate.ParseMissingPolicy(c.Cache.OnMissing); err != nil {
		return fmt.Errorf("%w: cache.on_missing: %w", ErrInvalid, err)
	}
	return nil
}

// Metric returns the parsed distance metric.
func (c *Config) Metric() (distance.Metric, error) {
	return distance.ParseMetric(c.Solve.Metric)
}

// Frames returns the configured frame range.
func (c *Config) Frames() animate.Frames {
	return animate.Frames{First: c.Solve.FirstFrame, Last: c.Solve.LastFrame, Step: c.Solve.Step}
}

// CacheOptions returns the configured cache settings for a driver.
func (c *Config) CacheOptions() (animate.Cache, error) {
	policy, err := animate.ParseMissingPolicy(c.Cache.OnMissing)
	if err != nil {
		return animate.Cache{}, err
	}
	return animate.Cache{Dir: c.Cache.Dir, OnMissing: policy, Write: c.Cache.Write}, nil
}

// ParseStiffness parses a comma-separated stiffness list such as "2,3,3".
// An empty string yields nil.
func ParseStiffness(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: stiffness value %d %q", ErrInvalid, i, p)
		}
		if !(v > 0) {
			return nil, fmt.Errorf("%w: stiffness value %d must be positive, got %v", ErrInvalid, i, v)
		}
		out[i] = v
	}
	return out, nil
}
