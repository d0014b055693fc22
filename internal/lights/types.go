package lights

import (
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Key names a writable setting on the device.
type Key string

const (
	KeyIntensityMode Key = "intensity_mode"
	KeyCurrentPreset Key = "current_preset"
	KeyDimmer        Key = "dimmer"
)

// Keys lists every writable setting in display order.
var Keys = []Key{KeyIntensityMode, KeyCurrentPreset, KeyDimmer}

// Intensity modes the device is known to report. The server may define more;
// comparisons are case-insensitive.
const (
	ModeLow    = "LOW"
	ModeMedium = "MEDIUM"
	ModeHigh   = "HIGH"
)

// DefaultModes is the mode button row used when no configuration overrides it.
var DefaultModes = []string{ModeLow, ModeMedium, ModeHigh}

// Settings mirrors the payload returned by GET /settings. Every field is
// optional; nil means the endpoint did not report it.
type Settings struct {
	IntensityMode *string  `json:"intensity_mode,omitempty"`
	CurrentPreset *string  `json:"current_preset,omitempty"`
	AllPresets    []string `json:"all_presets,omitempty"`
	Dimmer        *float64 `json:"dimmer,omitempty"`
}

// Mode returns the reported intensity mode.
func (s Settings) Mode() (string, bool) {
	if s.IntensityMode == nil {
		return "", false
	}
	return *s.IntensityMode, true
}

// Preset returns the reported current preset.
func (s Settings) Preset() (string, bool) {
	if s.CurrentPreset == nil {
		return "", false
	}
	return *s.CurrentPreset, true
}

// Presets returns the reported preset list.
func (s Settings) Presets() ([]string, bool) {
	if s.AllPresets == nil {
		return nil, false
	}
	return slices.Clone(s.AllPresets), true
}

// DimmerLevel returns the reported dimmer level in [0,1].
func (s Settings) DimmerLevel() (float64, bool) {
	if s.Dimmer == nil {
		return 0, false
	}
	return *s.Dimmer, true
}

// Has reports whether the writable setting k is present.
func (s Settings) Has(k Key) bool {
	switch k {
	case KeyIntensityMode:
		return s.IntensityMode != nil
	case KeyCurrentPreset:
		return s.CurrentPreset != nil
	case KeyDimmer:
		return s.Dimmer != nil
	default:
		return false
	}
}

// Empty reports whether no field was reported at all.
func (s Settings) Empty() bool {
	return s.IntensityMode == nil && s.CurrentPreset == nil && s.AllPresets == nil && s.Dimmer == nil
}

// Clone returns a deep copy so callers can keep snapshots immutable.
func (s Settings) Clone() Settings {
	out := Settings{
		IntensityMode: cloneString(s.IntensityMode),
		CurrentPreset: cloneString(s.CurrentPreset),
		Dimmer:        cloneFloat(s.Dimmer),
	}
	if s.AllPresets != nil {
		out.AllPresets = slices.Clone(s.AllPresets)
	}
	return out
}

// Merge overlays every field reported by other onto s. Fields other did not
// report are left untouched.
func (s Settings) Merge(other Settings) Settings {
	out := s.Clone()
	if other.IntensityMode != nil {
		out.IntensityMode = cloneString(other.IntensityMode)
	}
	if other.CurrentPreset != nil {
		out.CurrentPreset = cloneString(other.CurrentPreset)
	}
	if other.AllPresets != nil {
		out.AllPresets = slices.Clone(other.AllPresets)
	}
	if other.Dimmer != nil {
		out.Dimmer = cloneFloat(other.Dimmer)
	}
	return out
}

// Apply patches s with the keys carried by u.
func (s Settings) Apply(u Update) Settings {
	out := s.Clone()
	if u.IntensityMode != nil {
		out.IntensityMode = cloneString(u.IntensityMode)
	}
	if u.CurrentPreset != nil {
		out.CurrentPreset = cloneString(u.CurrentPreset)
	}
	if u.Dimmer != nil {
		out.Dimmer = cloneFloat(u.Dimmer)
	}
	return out
}

// Value extracts the single-key update that would reproduce k's current value.
func (s Settings) Value(k Key) Update {
	switch k {
	case KeyIntensityMode:
		return Update{IntensityMode: cloneString(s.IntensityMode)}
	case KeyCurrentPreset:
		return Update{CurrentPreset: cloneString(s.CurrentPreset)}
	case KeyDimmer:
		return Update{Dimmer: cloneFloat(s.Dimmer)}
	default:
		return Update{}
	}
}

// Update is a sparse write: only non-nil fields are sent and modified
// server-side.
type Update struct {
	IntensityMode *string  `json:"intensity_mode,omitempty"`
	CurrentPreset *string  `json:"current_preset,omitempty"`
	Dimmer        *float64 `json:"dimmer,omitempty"`
}

// SetMode builds an update for the intensity mode.
func SetMode(mode string) Update { return Update{IntensityMode: &mode} }

// SetPreset builds an update for the current preset.
func SetPreset(name string) Update { return Update{CurrentPreset: &name} }

// SetDimmer builds an update for the dimmer level.
func SetDimmer(level float64) Update { return Update{Dimmer: &level} }

// Keys returns the settings touched by u in display order.
func (u Update) Keys() []Key {
	var keys []Key
	if u.IntensityMode != nil {
		keys = append(keys, KeyIntensityMode)
	}
	if u.CurrentPreset != nil {
		keys = append(keys, KeyCurrentPreset)
	}
	if u.Dimmer != nil {
		keys = append(keys, KeyDimmer)
	}
	return keys
}

// IsEmpty reports whether u carries no keys.
func (u Update) IsEmpty() bool {
	return u.IntensityMode == nil && u.CurrentPreset == nil && u.Dimmer == nil
}

// Only returns the part of u that touches k.
func (u Update) Only(k Key) Update {
	switch k {
	case KeyIntensityMode:
		return Update{IntensityMode: cloneString(u.IntensityMode)}
	case KeyCurrentPreset:
		return Update{CurrentPreset: cloneString(u.CurrentPreset)}
	case KeyDimmer:
		return Update{Dimmer: cloneFloat(u.Dimmer)}
	default:
		return Update{}
	}
}

// Validate rejects values the device cannot accept.
func (u Update) Validate() error {
	if u.IsEmpty() {
		return fmt.Errorf("update carries no settings")
	}
	if u.IntensityMode != nil && strings.TrimSpace(*u.IntensityMode) == "" {
		return fmt.Errorf("intensity_mode is empty")
	}
	if u.CurrentPreset != nil && strings.TrimSpace(*u.CurrentPreset) == "" {
		return fmt.Errorf("current_preset is empty")
	}
	if u.Dimmer != nil && !validDimmer(*u.Dimmer) {
		return fmt.Errorf("dimmer %v outside [0,1]", *u.Dimmer)
	}
	return nil
}

// Form encodes u as form values, the way the original web client posted.
func (u Update) Form() url.Values {
	values := url.Values{}
	if u.IntensityMode != nil {
		values.Set(string(KeyIntensityMode), *u.IntensityMode)
	}
	if u.CurrentPreset != nil {
		values.Set(string(KeyCurrentPreset), *u.CurrentPreset)
	}
	if u.Dimmer != nil {
		values.Set(string(KeyDimmer), strconv.FormatFloat(*u.Dimmer, 'f', -1, 64))
	}
	return values
}

// String renders u as its JSON body for logs.
func (u Update) String() string {
	b, err := json.Marshal(u)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func decodeSettings(data []byte) (Settings, error) {
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, err
	}
	if s.Dimmer != nil && !validDimmer(*s.Dimmer) {
		return Settings{}, fmt.Errorf("dimmer %v outside [0,1]", *s.Dimmer)
	}
	if s.AllPresets != nil {
		s.AllPresets = uniquePresets(s.AllPresets)
	}
	return s, nil
}

// uniquePresets drops repeated names while keeping server order.
func uniquePresets(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func validDimmer(v float64) bool {
	return v >= 0 && v <= 1
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
