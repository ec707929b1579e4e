package distance

import (
	"fmt"
	"io"

	"github.com/Faultbox/rbfrig/pkg/formats"
)

// Table holds distances from every vertex to every marker's corresponding
// vertex: At(v, m) = distance(v, corr[m]). It is immutable once built.
//
// Writes are mirrored the way a full vertex-by-vertex matrix would be, so
// marker rows stay symmetric: At(corr[i], j) == At(corr[j], i).
type Table struct {
	metric   Metric
	vertices int
	corr     []int
	byVertex map[int][]int // Vertex -> markers bound to it
	data     []float64     // Vertex-major, marker-minor
}

func newTable(metric Metric, vertices int, corr []int) (*Table, error) {
	if vertices <= 0 {
		return nil, fmt.Errorf("%w: mesh has no vertices", ErrPrecondition)
	}
	if len(corr) == 0 {
		return nil, fmt.Errorf("%w: no markers", ErrPrecondition)
	}

	t := &Table{
		metric:   metric,
		vertices: vertices,
		corr:     append([]int(nil), corr...),
		byVertex: make(map[int][]int),
		data:     make([]float64, vertices*len(corr)),
	}
	for m, v := range corr {
		if v < 0 || v >= vertices {
			return nil, fmt.Errorf("%w: marker %d bound to vertex %d outside [0,%d)", ErrPrecondition, m, v, vertices)
		}
		t.byVertex[v] = append(t.byVertex[v], m)
	}
	return t, nil
}

// put stores d = distance(v, corr[c]) together with its mirror
// distance(corr[c], v).
func (t *Table) put(v, c int, d float64) {
	m := len(t.corr)
	for _, k := range t.byVertex[t.corr[c]] {
		t.data[v*m+k] = d
	}
	row := t.corr[c] * m
	for _, k := range t.byVertex[v] {
		t.data[row+k] = d
	}
}

// fill replays raw vertex-major values through put.
func (t *Table) fill(raw []float64) {
	m := len(t.corr)
	for v := 0; v < t.vertices; v++ {
		for c := 0; c < m; c++ {
			t.put(v, c, raw[v*m+c])
		}
	}
}

// Metric returns the metric the table was built with.
func (t *Table) Metric() Metric {
	return t.metric
}

// Vertices returns the number of rows.
func (t *Table) Vertices() int {
	return t.vertices
}

// Markers returns the number of columns.
func (t *Table) Markers() int {
	return len(t.corr)
}

// Correspondence returns the marker-to-vertex binding of the table.
func (t *Table) Correspondence() []int {
	return append([]int(nil), t.corr...)
}

// At returns the distance from vertex v to marker m's vertex.
func (t *Table) At(v, m int) float64 {
	return t.data[v*len(t.corr)+m]
}

// Row returns the distances from vertex v to every marker.
// The slice must not be modified.
func (t *Table) Row(v int) []float64 {
	m := len(t.corr)
	return t.data[v*m : (v+1)*m]
}

// MarkerDistance returns the distance between the vertices of markers i and j.
func (t *Table) MarkerDistance(i, j int) float64 {
	return t.At(t.corr[i], j)
}

// Values returns a copy of the table in vertex-major order.
func (t *Table) Values() []float64 {
	return append([]float64(nil), t.data...)
}

// Save writes the table in the MTX cache format.
func (t *Table) Save(w io.Writer) error {
	return formats.WriteMTX(w, t.data)
}

// Load reads a table written by Save (or the offline matrix tool) for a
// mesh of the given vertex count and marker binding. The format carries no
// shape, so a value count other than vertices*len(corr) is a ShapeError.
func Load(r io.Reader, metric Metric, vertices int, corr []int) (*Table, error) {
	if !metric.Valid() {
		return nil, fmt.Errorf("%w %d: %w", ErrUnknownMetric, int(metric), ErrPrecondition)
	}
	t, err := newTable(metric, vertices, corr)
	if err != nil {
		return nil, err
	}

	raw, err := formats.ReadMTX(r, len(t.data))
	if err != nil {
		return nil, &ShapeError{Vertices: vertices, Markers: len(corr), cause: err}
	}
	t.fill(raw)
	return t, nil
}
