package formats

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}

func TestReadMTX(t *testing.T) {
	data := "0\n1.5\n2.25\n"
	values, err := ReadMTX(strings.NewReader(data), 3)
	if err != nil {
		t.Fatalf("ReadMTX failed: %v", err)
	}
	want := []float64{0, 1.5, 2.25}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("value %d: expected %v, got %v", i, want[i], values[i])
		}
	}
}

func TestReadMTX_Truncated(t *testing.T) {
	_, err := ReadMTX(strings.NewReader("1\n2\n"), 3)
	if !errors.Is(err, ErrTruncatedMTX) {
		t.Errorf("expected ErrTruncatedMTX, got %v", err)
	}
}

func TestReadMTX_Trailing(t *testing.T) {
	_, err := ReadMTX(strings.NewReader("1\n2\n3\n4\n"), 3)
	if !errors.Is(err, ErrTrailingMTX) {
		t.Errorf("expected ErrTrailingMTX, got %v", err)
	}
}

func TestReadMTX_TrailingBlankLines(t *testing.T) {
	values, err := ReadMTX(strings.NewReader("1\n2\n\n\n"), 2)
	if err != nil {
		t.Fatalf("expected blank trailing lines to be tolerated, got %v", err)
	}
	if len(values) != 2 {
		t.Errorf("expected 2 values, got %d", len(values))
	}
}

func TestReadMTX_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not a number", "1\nabc\n"},
		{"negative", "1\n-2\n"},
		{"blank line inside", "1\n\n2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadMTX(strings.NewReader(tt.data), 2)
			if !errors.Is(err, ErrInvalidMTXLine) {
				t.Errorf("expected ErrInvalidMTXLine, got %v", err)
			}
		})
	}
}

func TestWriteMTX_RoundTrip(t *testing.T) {
	values := []float64{0, 0.1, 1.0 / 3.0, 42}
	var buf bytes.Buffer
	if err := WriteMTX(&buf, values); err != nil {
		t.Fatalf("WriteMTX failed: %v", err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != len(values) {
		t.Errorf("expected %d lines, got %d", len(values), lines)
	}

	got, err := ReadMTX(&buf, len(values))
	if err != nil {
		t.Fatalf("ReadMTX failed: %v", err)
	}
	for i := range values {
		if got[i] != values[i] {
			t.Errorf("value %d: expected %v, got %v", i, values[i], got[i])
		}
	}
}
