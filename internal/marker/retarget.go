package marker

import (
	"fmt"

	"github.com/Faultbox/rbfrig/pkg/math"
)

// Retarget is a Source that replays captured motion on rig markers.
// Each rig marker follows its capture marker plus a fixed offset taken
// at calibration, so the rig pose at the calibration frame is preserved.
type Retarget struct {
	capture Source
	mapping []int       // Rig marker index -> capture marker index
	offsets []math.Vec3 // Rig position minus capture position at calibration
}

// Calibrate matches rig markers to capture markers by name and records
// their offsets at frame. Every rig marker needs a capture counterpart.
func Calibrate(rig, capture *Track, frame int) (*Retarget, error) {
	r := &Retarget{
		capture: capture,
		mapping: make([]int, rig.Count()),
		offsets: make([]math.Vec3, rig.Count()),
	}
	for i, m := range rig.Markers() {
		c, ok := capture.Lookup(m.Name)
		if !ok {
			return nil, fmt.Errorf("%w: capture has no marker %s", ErrUnknownMarker, m.Name)
		}
		r.mapping[i] = c
		r.offsets[i] = rig.Position(i, frame).Sub(capture.Position(c, frame))
	}
	return r, nil
}

// Count returns the number of rig markers.
func (r *Retarget) Count() int {
	return len(r.mapping)
}

// Position returns the retargeted position of rig marker i at frame.
func (r *Retarget) Position(i, frame int) math.Vec3 {
	return r.capture.Position(r.mapping[i], frame).Add(r.offsets[i])
}

// Offset returns the calibration offset of rig marker i.
func (r *Retarget) Offset(i int) math.Vec3 {
	return r.offsets[i]
}
