package view

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/lumen/internal/lights"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func exampleSettings() lights.Settings {
	return lights.Settings{
		IntensityMode: strPtr("HIGH"),
		CurrentPreset: strPtr("rainbow"),
		AllPresets:    []string{"rainbow", "solid", "fade"},
		Dimmer:        floatPtr(0.5),
	}
}

func TestRender_ExamplePayload(t *testing.T) {
	st := Render(exampleSettings(), lights.DefaultModes)

	require.Len(t, st.Presets, 3)
	assert.Equal(t, []PresetEntry{
		{Name: "rainbow", Selected: true},
		{Name: "solid"},
		{Name: "fade"},
	}, st.Presets)

	mode, ok := st.ActiveMode()
	require.True(t, ok)
	assert.Equal(t, "HIGH", mode)
	assert.Equal(t, 1, st.ActiveModes())

	assert.True(t, st.Dimmer.Known)
	assert.Equal(t, 50, st.Dimmer.Position)
}

func TestRender_ModeMatchIsCaseInsensitive(t *testing.T) {
	st := Render(lights.Settings{IntensityMode: strPtr("medium")}, lights.DefaultModes)
	mode, ok := st.ActiveMode()
	require.True(t, ok)
	assert.Equal(t, "MEDIUM", mode)
}

func TestRender_AtMostOneModeActive(t *testing.T) {
	modes := []string{"LOW", "low", "MEDIUM", "HIGH"}
	cases := []lights.Settings{
		{},
		{IntensityMode: strPtr("LOW")},
		{IntensityMode: strPtr("low")},
		{IntensityMode: strPtr("HIGH")},
		{IntensityMode: strPtr("TURBO")},
		{IntensityMode: strPtr("")},
	}
	for _, s := range cases {
		st := Render(s, modes)
		assert.LessOrEqual(t, st.ActiveModes(), 1, "settings %+v", s)
	}
}

func TestRender_UnknownModeLeavesNoneActive(t *testing.T) {
	st := Render(lights.Settings{IntensityMode: strPtr("TURBO")}, lights.DefaultModes)
	assert.Equal(t, 0, st.ActiveModes())
	assert.True(t, st.ModeKnown)
}

func TestRender_PresetSelectionReappliedWhenListArrivesLater(t *testing.T) {
	onlyCurrent := lights.Settings{CurrentPreset: strPtr("fade")}
	st := Render(onlyCurrent, lights.DefaultModes)
	assert.False(t, st.PresetsKnown)
	assert.Equal(t, -1, st.SelectedPreset())
	assert.Equal(t, "fade", st.CurrentPreset)

	full := onlyCurrent.Merge(lights.Settings{AllPresets: []string{"rainbow", "solid", "fade"}})
	st = Render(full, lights.DefaultModes)
	assert.Equal(t, 2, st.SelectedPreset())

	// Rendering again is idempotent.
	assert.Equal(t, st, Render(full, lights.DefaultModes))
}

func TestRender_ListBeforeCurrent(t *testing.T) {
	st := Render(lights.Settings{AllPresets: []string{"a", "b"}}, nil)
	require.Len(t, st.Presets, 2)
	assert.Equal(t, -1, st.SelectedPreset())

	st = Render(lights.Settings{AllPresets: []string{"a", "b"}, CurrentPreset: strPtr("b")}, nil)
	assert.Equal(t, 1, st.SelectedPreset())
}

func TestRender_PlaceholdersWhenEmpty(t *testing.T) {
	st := Render(lights.Settings{}, lights.DefaultModes)
	assert.False(t, st.ModeKnown)
	assert.False(t, st.PresetsKnown)
	assert.False(t, st.PresetKnown)
	assert.False(t, st.Dimmer.Known)
	assert.Len(t, st.Modes, len(lights.DefaultModes))
	assert.Equal(t, 0, st.ActiveModes())
	assert.True(t, st.Settings().Empty())
}

func TestRender_RoundTrip(t *testing.T) {
	levels := []float64{0, 0.004, 0.005, 0.333, 0.5, 0.755, 0.999, 1}
	for _, level := range levels {
		s := exampleSettings()
		s.Dimmer = floatPtr(level)

		back := Render(s, lights.DefaultModes).Settings()

		mode, _ := back.Mode()
		assert.Equal(t, "HIGH", mode)
		preset, _ := back.Preset()
		assert.Equal(t, "rainbow", preset)
		assert.Equal(t, s.AllPresets, back.AllPresets)

		got, ok := back.DimmerLevel()
		require.True(t, ok)
		assert.LessOrEqual(t, math.Abs(got-level), 1.0/SliderMax, "level %v came back as %v", level, got)
	}
}

func TestRender_DoesNotMutateStoredLevel(t *testing.T) {
	s := lights.Settings{Dimmer: floatPtr(0.337)}
	st := Render(s, nil)
	assert.Equal(t, 34, st.Dimmer.Position)
	assert.Equal(t, 0.337, st.Dimmer.Level)
	assert.Equal(t, 0.337, *s.Dimmer)
}

func TestIntents(t *testing.T) {
	assert.Equal(t, `{"intensity_mode":"LOW"}`, ModeIntent("LOW").String())
	assert.Equal(t, `{"current_preset":"solid"}`, PresetIntent("solid").String())
	assert.Equal(t, `{"dimmer":0.8}`, DimmerIntent(80).String())
	assert.Equal(t, `{"dimmer":1}`, DimmerIntent(140).String())
	assert.Equal(t, `{"dimmer":0}`, DimmerIntent(-3).String())
}

func TestSliderPosition(t *testing.T) {
	cases := []struct {
		level float64
		want  int
	}{
		{0, 0},
		{0.004, 0},
		{0.005, 1},
		{0.5, 50},
		{0.994, 99},
		{1, 100},
		{1.2, 100},
		{-0.3, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SliderPosition(tc.level), "level %v", tc.level)
	}
}
