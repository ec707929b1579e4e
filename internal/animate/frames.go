// Package animate drives the per-frame deformation of a mesh by its markers
// and hands the results to an output sink.
package animate

import (
	"errors"
	"fmt"
)

// ErrInvalidFrames is returned for an unusable frame range.
var ErrInvalidFrames = errors.New("invalid frame range")

// Frames is an inclusive frame range sampled every Step frames.
type Frames struct {
	First int
	Last  int
	Step  int
}

// Validate checks that the range is non-empty and the step positive.
func (f Frames) Validate() error {
	if f.Step < 1 {
		return fmt.Errorf("%w: step %d must be at least 1", ErrInvalidFrames, f.Step)
	}
	if f.First > f.Last {
		return fmt.Errorf("%w: first frame %d after last frame %d", ErrInvalidFrames, f.First, f.Last)
	}
	return nil
}

// Count returns the number of sampled frames.
func (f Frames) Count() int {
	if f.Validate() != nil {
		return 0
	}
	return (f.Last-f.First)/f.Step + 1
}

// List returns the sampled frames: First, First+Step, ... up to Last.
func (f Frames) List() []int {
	out := make([]int, 0, f.Count())
	for i := 0; i < cap(out); i++ {
		out = append(out, f.First+i*f.Step)
	}
	return out
}
