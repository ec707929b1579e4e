package animate

import (
	"fmt"
	"sort"

	"github.com/Faultbox/rbfrig/pkg/math"
)

// Sink receives the output of a run. Baseline is called once per sampled
// frame with the rest positions before any frame is deformed; Frame is
// then called with the per-vertex displacement of each solved frame.
// Slices passed to a sink are reused by the caller after it returns.
type Sink interface {
	Baseline(frame int, rest []math.Vec3) error
	Frame(frame int, disp []math.Vec3) error
}

// Keyframes is an in-memory keyed vertex animation. Baselines key every
// vertex at rest; a frame displacement moves the vertices relative to
// their keyed position at that frame and re-keys them.
type Keyframes struct {
	rest []math.Vec3
	keys map[int][]math.Vec3
}

// NewKeyframes creates an empty animation.
func NewKeyframes() *Keyframes {
	return &Keyframes{keys: make(map[int][]math.Vec3)}
}

// Baseline keys every vertex at its rest position.
func (k *Keyframes) Baseline(frame int, rest []math.Vec3) error {
	if k.rest == nil {
		k.rest = append([]math.Vec3(nil), rest...)
	}
	k.keys[frame] = append([]math.Vec3(nil), rest...)
	return nil
}

// Frame moves every vertex by disp from its position at frame and keys it.
func (k *Keyframes) Frame(frame int, disp []math.Vec3) error {
	cur := k.At(frame)
	if len(disp) != len(cur) {
		return fmt.Errorf("frame %d: got %d displacements for %d vertices", frame, len(disp), len(cur))
	}
	for v, d := range disp {
		cur[v] = cur[v].Add(d)
	}
	k.keys[frame] = cur
	return nil
}

// At returns a copy of the vertex positions at frame: the key at frame if
// there is one, otherwise the rest positions.
func (k *Keyframes) At(frame int) []math.Vec3 {
	if key, ok := k.keys[frame]; ok {
		return append([]math.Vec3(nil), key...)
	}
	return append([]math.Vec3(nil), k.rest...)
}

// Frames returns the keyed frames in ascending order.
func (k *Keyframes) Frames() []int {
	out := make([]int, 0, len(k.keys))
	for f := range k.keys {
		out = append(out, f)
	}
	sort.Ints(out)
	return out
}

// multi fans out to several sinks in order.
type multi []Sink

// Multi returns a sink that forwards to every sink in order, stopping at
// the first error.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

func (m multi) Baseline(frame int, rest []math.Vec3) error {
	for _, s := range m {
		if err := s.Baseline(frame, rest); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) Frame(frame int, disp []math.Vec3) error {
	for _, s := range m {
		if err := s.Frame(frame, disp); err != nil {
			return err
		}
	}
	return nil
}
