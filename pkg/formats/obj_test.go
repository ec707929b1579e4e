package formats

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

const quadOBJ = `# unit square
o Square
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1
f 1/1/1 3/1/1 -1/1/1
`

func TestParseOBJ(t *testing.T) {
	obj, err := ParseOBJ(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if obj.Name != "Square" {
		t.Errorf("expected name 'Square', got %s", obj.Name)
	}
	if len(obj.Positions) != 4 {
		t.Fatalf("expected 4 positions, got %d", len(obj.Positions))
	}
	if obj.Positions[2] != [3]float64{1, 1, 0} {
		t.Errorf("expected position 2 = (1,1,0), got %v", obj.Positions[2])
	}
	if len(obj.Faces) != 2 {
		t.Fatalf("expected 2 faces, got %d", len(obj.Faces))
	}
	want := []int{0, 2, 3}
	for i, idx := range obj.Faces[1] {
		if idx != want[i] {
			t.Errorf("face 1 vertex %d: expected %d, got %d", i, want[i], idx)
		}
	}
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"short vertex", "v 1 2\n", ErrInvalidOBJVertex},
		{"bad coordinate", "v 1 x 2\n", ErrInvalidOBJVertex},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n", ErrInvalidOBJFace},
		{"out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n", ErrInvalidOBJFace},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", ErrInvalidOBJFace},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestWriteOBJ_RoundTrip(t *testing.T) {
	positions := [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0.5}}
	faces := [][]int{{0, 1, 2}}

	var buf bytes.Buffer
	if err := WriteOBJ(&buf, "tri", positions, faces); err != nil {
		t.Fatalf("WriteOBJ failed: %v", err)
	}

	obj, err := ParseOBJ(&buf)
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if obj.Name != "tri" {
		t.Errorf("expected name 'tri', got %s", obj.Name)
	}
	for i := range positions {
		if obj.Positions[i] != positions[i] {
			t.Errorf("position %d: expected %v, got %v", i, positions[i], obj.Positions[i])
		}
	}
	if len(obj.Faces) != 1 || obj.Faces[0][2] != 2 {
		t.Errorf("unexpected faces: %v", obj.Faces)
	}
}
