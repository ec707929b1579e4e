// Package marker provides motion-capture markers: keyed marker tracks,
// group ordering, marker-to-vertex correspondence and mocap retargeting.
package marker

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Faultbox/rbfrig/pkg/formats"
	"github.com/Faultbox/rbfrig/pkg/math"
)

// DefaultStiffness is the kernel width used for markers without one.
const DefaultStiffness = 2.0

// Marker errors.
var (
	ErrNoMarkers        = errors.New("no markers")
	ErrUnknownMarker    = errors.New("unknown marker")
	ErrStiffnessCount   = errors.New("stiffness count does not match marker count")
	ErrInvalidStiffness = errors.New("stiffness must be positive")
)

// Source supplies marker positions at a given frame.
// Markers are addressed by their index in the source's fixed order.
type Source interface {
	Count() int
	Position(marker, frame int) math.Vec3
}

// Marker describes one marker of a rig.
type Marker struct {
	Name      string
	Group     string
	Stiffness float64 // 0 means unset
}

// Key is a keyed marker position.
type Key struct {
	Frame    int
	Position math.Vec3
}

// Track is a Source backed by keyframes. Positions between keys are
// linearly interpolated; outside the keyed range the nearest key holds.
type Track struct {
	markers []Marker
	keys    [][]Key // Per marker, ascending by frame
	index   map[string]int
}

// NewTrack creates a track. keys[i] belongs to markers[i] and must be
// non-empty and sorted by frame.
func NewTrack(markers []Marker, keys [][]Key) (*Track, error) {
	if len(markers) == 0 {
		return nil, ErrNoMarkers
	}
	if len(keys) != len(markers) {
		return nil, fmt.Errorf("got %d key lists for %d markers", len(keys), len(markers))
	}

	t := &Track{
		markers: markers,
		keys:    keys,
		index:   make(map[string]int, len(markers)),
	}
	for i, m := range markers {
		if len(keys[i]) == 0 {
			return nil, fmt.Errorf("marker %s has no keys", m.Name)
		}
		t.index[m.Name] = i
	}
	return t, nil
}

// FromRig builds a track from a rig, ordering markers by Order.
func FromRig(rig *formats.Rig) (*Track, error) {
	ordered := Order(rig.Markers, rig.GroupOrder())

	markers := make([]Marker, len(ordered))
	keys := make([][]Key, len(ordered))
	for i, rm := range ordered {
		markers[i] = Marker{Name: rm.Name, Group: rm.Group, Stiffness: rm.Stiffness}
		keys[i] = make([]Key, len(rm.Keys))
		for k, rk := range rm.Keys {
			keys[i][k] = Key{Frame: rk.Frame, Position: math.FromArray(rk.Vec())}
		}
	}
	return NewTrack(markers, keys)
}

// Order sequences markers group by group in the given group order,
// sorted by name within each group. Markers whose group is not listed
// follow, also sorted by name.
func Order(markers []formats.RigMarker, groups []string) []formats.RigMarker {
	rank := make(map[string]int, len(groups))
	for i, g := range groups {
		if _, ok := rank[g]; !ok {
			rank[g] = i
		}
	}
	groupRank := func(g string) int {
		if r, ok := rank[g]; ok {
			return r
		}
		return len(groups)
	}

	out := append([]formats.RigMarker(nil), markers...)
	sort.SliceStable(out, func(a, b int) bool {
		ra, rb := groupRank(out[a].Group), groupRank(out[b].Group)
		if ra != rb {
			return ra < rb
		}
		return out[a].Name < out[b].Name
	})
	return out
}

// Count returns the number of markers.
func (t *Track) Count() int {
	return len(t.markers)
}

// Markers returns the markers in track order.
func (t *Track) Markers() []Marker {
	return t.markers
}

// Lookup returns the index of the named marker.
func (t *Track) Lookup(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Keys returns the keys of marker i.
func (t *Track) Keys(i int) []Key {
	return t.keys[i]
}

// Position returns the position of marker i at frame.
func (t *Track) Position(i, frame int) math.Vec3 {
	keys := t.keys[i]
	if frame <= keys[0].Frame {
		return keys[0].Position
	}
	last := keys[len(keys)-1]
	if frame >= last.Frame {
		return last.Position
	}

	// First key strictly after frame
	k := sort.Search(len(keys), func(j int) bool { return keys[j].Frame > frame })
	a, b := keys[k-1], keys[k]
	if a.Frame == frame {
		return a.Position
	}
	t01 := float64(frame-a.Frame) / float64(b.Frame-a.Frame)
	return a.Position.Lerp(b.Position, t01)
}

// Positions samples every marker of src at frame.
func Positions(src Source, frame int) []math.Vec3 {
	out := make([]math.Vec3, src.Count())
	for i := range out {
		out[i] = src.Position(i, frame)
	}
	return out
}

// Stiffness resolves per-marker kernel widths. A non-empty override list
// must have one entry per marker; otherwise marker values are used and
// unset ones fall back to def (or DefaultStiffness when def is 0).
func Stiffness(markers []Marker, override []float64, def float64) ([]float64, error) {
	if def == 0 {
		def = DefaultStiffness
	}

	out := make([]float64, len(markers))
	if len(override) > 0 {
		if len(override) != len(markers) {
			return nil, fmt.Errorf("%w: got %d values for %d markers", ErrStiffnessCount, len(override), len(markers))
		}
		copy(out, override)
	} else {
		for i, m := range markers {
			out[i] = m.Stiffness
			if out[i] == 0 {
				out[i] = def
			}
		}
	}

	for i, g := range out {
		if !(g > 0) {
			return nil, fmt.Errorf("%w: marker %d has %v", ErrInvalidStiffness, i, g)
		}
	}
	return out, nil
}

// Bake samples src for every frame in [first, last] and returns rig markers
// keyed at each frame. markers supplies names, groups and stiffness.
func Bake(src Source, markers []Marker, first, last int) []formats.RigMarker {
	out := make([]formats.RigMarker, len(markers))
	for i, m := range markers {
		rm := formats.RigMarker{Name: m.Name, Group: m.Group, Stiffness: m.Stiffness}
		for f := first; f <= last; f++ {
			p := src.Position(i, f)
			rm.Keys = append(rm.Keys, formats.RigKey{Frame: f, Position: []float64{p.X, p.Y, p.Z}})
		}
		out[i] = rm
	}
	return out
}
