// Package view derives widget state from a settings snapshot and maps widget
// events back to partial updates. Rendering is a pure function: widgets never
// act as the source of truth.
package view

import (
	"math"
	"strings"

	"github.com/five82/lumen/internal/lights"
)

// SliderMax is the slider's native resolution: positions run 0..SliderMax.
const SliderMax = 100

// ModeButton is one intensity mode toggle.
type ModeButton struct {
	Value  string
	Active bool
}

// PresetEntry is one selectable pattern.
type PresetEntry struct {
	Name     string
	Selected bool
}

// Slider is the dimmer control.
type Slider struct {
	Position int     // 0..SliderMax
	Level    float64 // stored float the position was derived from
	Known    bool
}

// State is everything the widgets display. CurrentPreset is kept even when
// the preset list has not arrived yet, so selection can be re-applied once
// it does.
type State struct {
	Modes         []ModeButton
	ModeKnown     bool
	Presets       []PresetEntry
	PresetsKnown  bool
	CurrentPreset string
	PresetKnown   bool
	Dimmer        Slider
}

// Render builds widget state from s. modes is the fixed row of mode buttons.
// Render is idempotent: calling it again with a more complete snapshot
// re-applies preset selection.
func Render(s lights.Settings, modes []string) State {
	var st State

	current, hasMode := s.Mode()
	st.ModeKnown = hasMode
	st.Modes = make([]ModeButton, 0, len(modes))
	activeSet := false
	for _, m := range modes {
		active := hasMode && !activeSet && strings.EqualFold(strings.TrimSpace(m), strings.TrimSpace(current))
		if active {
			activeSet = true
		}
		st.Modes = append(st.Modes, ModeButton{Value: m, Active: active})
	}

	preset, hasPreset := s.Preset()
	st.CurrentPreset = preset
	st.PresetKnown = hasPreset
	if names, ok := s.Presets(); ok {
		st.PresetsKnown = true
		st.Presets = make([]PresetEntry, 0, len(names))
		for _, name := range names {
			st.Presets = append(st.Presets, PresetEntry{
				Name:     name,
				Selected: hasPreset && name == preset,
			})
		}
	}

	if level, ok := s.DimmerLevel(); ok {
		st.Dimmer = Slider{Position: SliderPosition(level), Level: level, Known: true}
	}
	return st
}

// Settings reads the representable subset back out of the widgets. The
// dimmer comes back at slider resolution.
func (st State) Settings() lights.Settings {
	var out lights.Settings
	if mode, ok := st.ActiveMode(); ok {
		out.IntensityMode = &mode
	}
	if st.PresetsKnown {
		names := make([]string, 0, len(st.Presets))
		for _, p := range st.Presets {
			names = append(names, p.Name)
			if p.Selected {
				selected := p.Name
				out.CurrentPreset = &selected
			}
		}
		out.AllPresets = names
	}
	if out.CurrentPreset == nil && st.PresetKnown {
		current := st.CurrentPreset
		out.CurrentPreset = &current
	}
	if st.Dimmer.Known {
		level := LevelForPosition(st.Dimmer.Position)
		out.Dimmer = &level
	}
	return out
}

// ActiveMode returns the value of the active mode button, if any.
func (st State) ActiveMode() (string, bool) {
	for _, m := range st.Modes {
		if m.Active {
			return m.Value, true
		}
	}
	return "", false
}

// ActiveModes counts active mode buttons. It is never more than one.
func (st State) ActiveModes() int {
	n := 0
	for _, m := range st.Modes {
		if m.Active {
			n++
		}
	}
	return n
}

// SelectedPreset returns the index of the selected entry, or -1.
func (st State) SelectedPreset() int {
	for i, p := range st.Presets {
		if p.Selected {
			return i
		}
	}
	return -1
}

// ModeIntent maps a click on a mode button to a write.
func ModeIntent(value string) lights.Update {
	return lights.SetMode(value)
}

// PresetIntent maps a click on a preset entry to a write.
func PresetIntent(name string) lights.Update {
	return lights.SetPreset(name)
}

// DimmerIntent maps a slider position to a write. Callers route it through
// the dimmer debouncer.
func DimmerIntent(position int) lights.Update {
	return lights.SetDimmer(LevelForPosition(position))
}

// SliderPosition converts a dimmer level to the nearest slider position.
func SliderPosition(level float64) int {
	pos := int(math.Round(level * SliderMax))
	return ClampPosition(pos)
}

// LevelForPosition converts a slider position to a dimmer level.
func LevelForPosition(position int) float64 {
	return float64(ClampPosition(position)) / SliderMax
}

// ClampPosition bounds a slider position to 0..SliderMax.
func ClampPosition(position int) int {
	if position < 0 {
		return 0
	}
	if position > SliderMax {
		return SliderMax
	}
	return position
}
