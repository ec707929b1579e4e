package animate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Faultbox/rbfrig/pkg/formats"
	"github.com/Faultbox/rbfrig/pkg/math"
)

// Stream writes (frame, vertex, displacement) records as text.
type Stream struct {
	w *formats.DisplacementWriter

	// Baselines also writes a zero record per vertex for each baseline.
	Baselines bool
}

// NewStream creates a stream sink over w. Call Flush when the run ends.
func NewStream(w io.Writer) *Stream {
	return &Stream{w: formats.NewDisplacementWriter(w)}
}

// Baseline writes zero records when Baselines is set.
func (s *Stream) Baseline(frame int, rest []math.Vec3) error {
	if !s.Baselines {
		return nil
	}
	return s.w.WriteFrame(frame, make([][3]float64, len(rest)))
}

// Frame writes one record per vertex.
func (s *Stream) Frame(frame int, disp []math.Vec3) error {
	deltas := make([][3]float64, len(disp))
	for v, d := range disp {
		deltas[v] = d.Array()
	}
	return s.w.WriteFrame(frame, deltas)
}

// Flush flushes buffered records.
func (s *Stream) Flush() error {
	return s.w.Flush()
}

// OBJSequence writes the deformed mesh of every solved frame to
// Dir/frame_NNNN.obj.
type OBJSequence struct {
	Dir   string
	Name  string
	Faces [][]int

	keys *Keyframes
}

// NewOBJSequence creates an OBJ sequence sink writing into dir.
func NewOBJSequence(dir, name string, faces [][]int) *OBJSequence {
	return &OBJSequence{Dir: dir, Name: name, Faces: faces, keys: NewKeyframes()}
}

// FramePath returns the file written for frame.
func (o *OBJSequence) FramePath(frame int) string {
	return filepath.Join(o.Dir, fmt.Sprintf("frame_%04d.obj", frame))
}

// Baseline records the rest pose for frame.
func (o *OBJSequence) Baseline(frame int, rest []math.Vec3) error {
	return o.keys.Baseline(frame, rest)
}

// Frame applies disp and writes the deformed mesh.
func (o *OBJSequence) Frame(frame int, disp []math.Vec3) error {
	if err := o.keys.Frame(frame, disp); err != nil {
		return err
	}
	if err := os.MkdirAll(o.Dir, 0755); err != nil {
		return fmt.Errorf("creating output folder: %w", err)
	}

	pos := o.keys.At(frame)
	positions := make([][3]float64, len(pos))
	for v, p := range pos {
		positions[v] = p.Array()
	}

	f, err := os.Create(o.FramePath(frame))
	if err != nil {
		return fmt.Errorf("creating frame file: %w", err)
	}
	if err := formats.WriteOBJ(f, o.Name, positions, o.Faces); err != nil {
		f.Close()
		return fmt.Errorf("writing frame %d: %w", frame, err)
	}
	return f.Close()
}
