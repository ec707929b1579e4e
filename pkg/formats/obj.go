// OBJ (Wavefront) format reader and writer for polygon meshes.
package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// OBJ format errors.
var (
	ErrInvalidOBJVertex = errors.New("invalid OBJ vertex")
	ErrInvalidOBJFace   = errors.New("invalid OBJ face")
)

// OBJ represents the geometry of a parsed Wavefront OBJ file.
// Only positions and polygon connectivity are kept; normals and
// texture coordinates are skipped.
type OBJ struct {
	Name      string       // Object name from the first "o" statement
	Positions [][3]float64 // Vertex positions
	Faces     [][]int      // Polygons as 0-based position indices
}

// ParseOBJ parses OBJ data from r.
func ParseOBJ(r io.Reader) (*OBJ, error) {
	obj := &OBJ{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "o":
			if obj.Name == "" && len(fields) > 1 {
				obj.Name = fields[1]
			}
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: expected 3 coordinates", ErrInvalidOBJVertex, lineNo)
			}
			var p [3]float64
			for i := 0; i < 3; i++ {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJVertex, lineNo, err)
				}
				p[i] = f
			}
			obj.Positions = append(obj.Positions, p)
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: expected at least 3 vertices", ErrInvalidOBJFace, lineNo)
			}
			face := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				idx, err := parseFaceRef(ref, len(obj.Positions))
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJFace, lineNo, err)
				}
				face = append(face, idx)
			}
			obj.Faces = append(obj.Faces, face)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	return obj, nil
}

// parseFaceRef resolves a "v", "v/vt", "v//vn" or "v/vt/vn" reference.
// Negative indices are relative to the vertices read so far.
func parseFaceRef(ref string, count int) (int, error) {
	if slash := strings.IndexByte(ref, '/'); slash >= 0 {
		ref = ref[:slash]
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, err
	}

	var idx int
	switch {
	case n > 0:
		idx = n - 1
	case n < 0:
		idx = count + n
	default:
		return 0, fmt.Errorf("index 0 is not valid")
	}
	if idx < 0 || idx >= count {
		return 0, fmt.Errorf("index %d out of range (%d vertices)", n, count)
	}
	return idx, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ file: %w", err)
	}
	defer f.Close()
	return ParseOBJ(f)
}

// WriteOBJ writes positions and faces as OBJ text.
func WriteOBJ(w io.Writer, name string, positions [][3]float64, faces [][]int) error {
	bw := bufio.NewWriter(w)
	if name != "" {
		fmt.Fprintf(bw, "o %s\n", name)
	}
	for _, p := range positions {
		fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(p[0]), formatFloat(p[1]), formatFloat(p[2]))
	}
	for _, face := range faces {
		bw.WriteString("f")
		for _, idx := range face {
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(idx + 1))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
