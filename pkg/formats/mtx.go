// MTX distance cache format: one decimal value per line, no header.
package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MTX format errors.
var (
	ErrTruncatedMTX   = errors.New("truncated MTX data")
	ErrTrailingMTX    = errors.New("MTX data has more values than expected")
	ErrInvalidMTXLine = errors.New("invalid MTX value")
)

// ReadMTX reads exactly count values from r, one per line.
// Blank trailing lines are tolerated; any further value is an error.
func ReadMTX(r io.Reader, count int) ([]float64, error) {
	values := make([]float64, 0, count)
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if len(values) == count {
			if line != "" {
				return nil, fmt.Errorf("%w: value at line %d, expected %d values", ErrTrailingMTX, lineNo, count)
			}
			continue
		}
		f, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %q", ErrInvalidMTXLine, lineNo, line)
		}
		if f < 0 {
			return nil, fmt.Errorf("%w: line %d: negative distance %v", ErrInvalidMTXLine, lineNo, f)
		}
		values = append(values, f)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading MTX: %w", err)
	}
	if len(values) < count {
		return nil, fmt.Errorf("%w: got %d of %d values", ErrTruncatedMTX, len(values), count)
	}

	return values, nil
}

// WriteMTX writes values one per line using the shortest exact representation.
func WriteMTX(w io.Writer, values []float64) error {
	bw := bufio.NewWriter(w)
	for _, v := range values {
		bw.WriteString(formatFloat(v))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
