// Displacement stream format: one "frame vertex dx dy dz" record per line.
package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrInvalidDisplacement is returned for malformed displacement records.
var ErrInvalidDisplacement = errors.New("invalid displacement record")

// Displacement is a single (vertex, frame, displacement) record.
type Displacement struct {
	Frame  int
	Vertex int
	Delta  [3]float64
}

// DisplacementWriter writes displacement records as text.
type DisplacementWriter struct {
	w *bufio.Writer
}

// NewDisplacementWriter creates a writer over w.
func NewDisplacementWriter(w io.Writer) *DisplacementWriter {
	return &DisplacementWriter{w: bufio.NewWriter(w)}
}

// WriteFrame writes one record per vertex for the given frame.
func (dw *DisplacementWriter) WriteFrame(frame int, deltas [][3]float64) error {
	for v, d := range deltas {
		_, err := fmt.Fprintf(dw.w, "%d %d %s %s %s\n",
			frame, v, formatFloat(d[0]), formatFloat(d[1]), formatFloat(d[2]))
		if err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes buffered records.
func (dw *DisplacementWriter) Flush() error {
	return dw.w.Flush()
}

// ParseDisplacements reads every record from r.
func ParseDisplacements(r io.Reader) ([]Displacement, error) {
	var out []Displacement
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 5 {
			return nil, fmt.Errorf("%w: line %d: expected 5 fields, got %d", ErrInvalidDisplacement, lineNo, len(fields))
		}

		var rec Displacement
		var err error
		if rec.Frame, err = strconv.Atoi(fields[0]); err != nil {
			return nil, fmt.Errorf("%w: line %d: frame: %v", ErrInvalidDisplacement, lineNo, err)
		}
		if rec.Vertex, err = strconv.Atoi(fields[1]); err != nil {
			return nil, fmt.Errorf("%w: line %d: vertex: %v", ErrInvalidDisplacement, lineNo, err)
		}
		for i := 0; i < 3; i++ {
			if rec.Delta[i], err = strconv.ParseFloat(fields[2+i], 64); err != nil {
				return nil, fmt.Errorf("%w: line %d: component %d: %v", ErrInvalidDisplacement, lineNo, i, err)
			}
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading displacements: %w", err)
	}

	return out, nil
}
