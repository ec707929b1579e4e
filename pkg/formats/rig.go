// Rig format: YAML description of markers, their groups, stiffness,
// keyed positions and the geodesic vertex regions of a face mesh.
package formats

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Rig format errors.
var (
	ErrDuplicateMarker = errors.New("duplicate marker name")
	ErrInvalidRigKey   = errors.New("invalid rig key")
	ErrEmptyRig        = errors.New("rig has no markers")
)

// DefaultGroups is the marker group order used when a rig declares none.
var DefaultGroups = []string{
	"TopMarkers",
	"TopMiddleMarkers",
	"MiddleMarkers",
	"MiddleBottomMarkers",
	"BottomMarkers",
}

// Rig represents a parsed rig file.
type Rig struct {
	Name    string           `yaml:"name,omitempty"`
	Groups  []string         `yaml:"groups,omitempty"`  // Group order used to sequence markers
	Markers []RigMarker      `yaml:"markers"`           // Markers in file order
	Regions map[string][]int `yaml:"regions,omitempty"` // Named geodesic regions (vertex indices)
}

// RigMarker is a single marker entry.
type RigMarker struct {
	Name      string   `yaml:"name"`
	Group     string   `yaml:"group,omitempty"`
	Stiffness float64  `yaml:"stiffness,omitempty"` // 0 means "use the configured default"
	Keys      []RigKey `yaml:"keys"`
}

// RigKey is a keyed marker position.
type RigKey struct {
	Frame    int       `yaml:"frame"`
	Position []float64 `yaml:"pos,flow"`
}

// Vec returns the key position as an array.
func (k RigKey) Vec() [3]float64 {
	return [3]float64{k.Position[0], k.Position[1], k.Position[2]}
}

// ParseRig parses rig YAML and validates it. Keys are sorted by frame.
func ParseRig(data []byte) (*Rig, error) {
	var rig Rig
	if err := yaml.Unmarshal(data, &rig); err != nil {
		return nil, fmt.Errorf("decoding rig: %w", err)
	}
	if err := rig.Validate(); err != nil {
		return nil, err
	}
	return &rig, nil
}

// ParseRigFile parses a rig file from disk.
func ParseRigFile(path string) (*Rig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rig file: %w", err)
	}
	return ParseRig(data)
}

// Validate checks marker names, key shapes and sorts keys by frame.
func (r *Rig) Validate() error {
	if len(r.Markers) == 0 {
		return ErrEmptyRig
	}

	seen := make(map[string]bool, len(r.Markers))
	for i := range r.Markers {
		m := &r.Markers[i]
		if m.Name == "" {
			return fmt.Errorf("marker %d has no name", i)
		}
		if seen[m.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateMarker, m.Name)
		}
		seen[m.Name] = true

		if m.Stiffness < 0 {
			return fmt.Errorf("marker %s: stiffness must be positive, got %v", m.Name, m.Stiffness)
		}
		if len(m.Keys) == 0 {
			return fmt.Errorf("%w: marker %s has no keys", ErrInvalidRigKey, m.Name)
		}
		for _, k := range m.Keys {
			if len(k.Position) != 3 {
				return fmt.Errorf("%w: marker %s frame %d: expected 3 coordinates, got %d",
					ErrInvalidRigKey, m.Name, k.Frame, len(k.Position))
			}
		}
		sort.SliceStable(m.Keys, func(a, b int) bool {
			return m.Keys[a].Frame < m.Keys[b].Frame
		})
		for k := 1; k < len(m.Keys); k++ {
			if m.Keys[k].Frame == m.Keys[k-1].Frame {
				return fmt.Errorf("%w: marker %s has two keys at frame %d", ErrInvalidRigKey, m.Name, m.Keys[k].Frame)
			}
		}
	}

	return nil
}

// GroupOrder returns the declared group order, or DefaultGroups.
func (r *Rig) GroupOrder() []string {
	if len(r.Groups) > 0 {
		return r.Groups
	}
	return DefaultGroups
}

// RegionVertices returns the union of all region vertex indices, ascending.
func (r *Rig) RegionVertices() []int {
	set := make(map[int]bool)
	for _, verts := range r.Regions {
		for _, v := range verts {
			set[v] = true
		}
	}
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// Marker returns the marker with the given name, or nil.
func (r *Rig) Marker(name string) *RigMarker {
	for i := range r.Markers {
		if r.Markers[i].Name == name {
			return &r.Markers[i]
		}
	}
	return nil
}

// SaveTo writes the rig as YAML to path, creating parent directories.
func (r *Rig) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
