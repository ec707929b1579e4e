// Package distance computes vertex-to-marker distances on a mesh under
// Euclidean, geodesic and hybrid metrics, and caches them as tables.
package distance

import (
	"fmt"
	"strconv"
	"strings"
)

// Metric selects how distances between vertices are measured.
type Metric int

const (
	Euclidean Metric = 0 // Straight-line distance
	Geodesic  Metric = 1 // Shortest edge path along the surface
	Hybrid    Metric = 2 // Geodesic near regions, Euclidean elsewhere
)

// Metrics lists every metric in selector order.
var Metrics = []Metric{Euclidean, Geodesic, Hybrid}

// String returns the metric name.
func (m Metric) String() string {
	switch m {
	case Euclidean:
		return "Euclidean"
	case Geodesic:
		return "Geodesics"
	case Hybrid:
		return "Hybrid"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	return m >= Euclidean && m <= Hybrid
}

// CacheFile returns the cache file name for the metric.
func (m Metric) CacheFile() string {
	switch m {
	case Euclidean:
		return "eucMatrix.mtx"
	case Geodesic:
		return "geoMatrix.mtx"
	case Hybrid:
		return "hybMatrix.mtx"
	default:
		return ""
	}
}

// ParseMetric parses a metric name or its numeric selector (0, 1, 2).
// Names are case-insensitive; "geodesic" and "geodesics" are accepted.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "euclidean", "euc":
		return Euclidean, nil
	case "geodesic", "geodesics", "geo":
		return Geodesic, nil
	case "hybrid", "hyb":
		return Hybrid, nil
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		if m := Metric(n); m.Valid() {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w %q: %w", ErrUnknownMetric, s, ErrPrecondition)
}
