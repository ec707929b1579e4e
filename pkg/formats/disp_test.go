package formats

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestDisplacementWriter_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	dw := NewDisplacementWriter(&buf)
	if err := dw.WriteFrame(5, [][3]float64{{1, 0, 0}, {0.5, -0.25, 0}}); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}
	if err := dw.WriteFrame(10, [][3]float64{{0, 0, 0}, {0, 0, 2}}); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}
	if err := dw.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	recs, err := ParseDisplacements(&buf)
	if err != nil {
		t.Fatalf("ParseDisplacements failed: %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("expected 4 records, got %d", len(recs))
	}
	if recs[1].Frame != 5 || recs[1].Vertex != 1 || recs[1].Delta != [3]float64{0.5, -0.25, 0} {
		t.Errorf("unexpected record 1: %+v", recs[1])
	}
	if recs[3].Frame != 10 || recs[3].Delta[2] != 2 {
		t.Errorf("unexpected record 3: %+v", recs[3])
	}
}

func TestParseDisplacements_Invalid(t *testing.T) {
	_, err := ParseDisplacements(strings.NewReader("1 2 3\n"))
	if !errors.Is(err, ErrInvalidDisplacement) {
		t.Errorf("expected ErrInvalidDisplacement, got %v", err)
	}
}
