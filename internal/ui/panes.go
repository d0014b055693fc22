package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/lumen/internal/controller"
	"github.com/five82/lumen/internal/lights"
	"github.com/five82/lumen/internal/view"
)

// renderPanes stacks the three settings panes.
func (m Model) renderPanes() string {
	st := m.viewState()
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderModes(st),
		m.renderPresets(st),
		m.renderDimmer(st),
	)
}

// paneTitle renders a pane heading with the key's sync phase badge.
func (m Model) paneTitle(title string, k lights.Key, bg BgStyle, styles Styles) string {
	phase := m.ctrl.Status(k).Phase.String()
	if k == lights.KeyDimmer && m.ctrl.DimmerPending() {
		phase = "pending"
	}
	return bg.Render(title, styles.AccentText.Bold(true)) + bg.Space() +
		styles.PhaseStyle(phase).Render(phase)
}

func (m Model) paneColors(p Pane) (BgStyle, Styles) {
	bgColor := m.theme.Surface
	if m.focus == p {
		bgColor = m.theme.FocusBg
	}
	return NewBgStyle(bgColor), m.theme.Styles().WithBackground(bgColor)
}

func (m Model) renderModes(st view.State) string {
	focused := m.focus == PaneModes
	bg, styles := m.paneColors(PaneModes)

	buttons := make([]string, 0, len(st.Modes))
	for i, b := range st.Modes {
		label := " " + b.Value + " "
		style := m.theme.Styles().Button
		if b.Active {
			style = m.theme.Styles().Selected
		}
		if focused && i == m.modeCursor {
			style = style.Underline(true)
			label = "›" + b.Value + "‹"
		}
		buttons = append(buttons, style.Render(label))
	}

	lines := []string{
		m.paneTitle("Intensity", lights.KeyIntensityMode, bg, styles),
		strings.Join(buttons, bg.Space()),
	}
	if !st.ModeKnown {
		lines = append(lines, m.placeholder(lights.KeyIntensityMode, "mode not reported", bg, styles))
	} else if st.ActiveModes() == 0 {
		current, _ := m.ctrl.Display().Mode()
		lines = append(lines, bg.Render(fmt.Sprintf("device reports %q", current), styles.WarningText))
	}
	return m.theme.PaneBorder(focused, m.paneWidth()).Render(strings.Join(lines, "\n"))
}

func (m Model) renderPresets(st view.State) string {
	focused := m.focus == PanePresets
	bg, styles := m.paneColors(PanePresets)

	lines := []string{m.paneTitle("Presets", lights.KeyCurrentPreset, bg, styles)}
	if !st.PresetsKnown {
		lines = append(lines, m.placeholder(lights.KeyCurrentPreset, "no presets reported", bg, styles))
		if st.PresetKnown {
			lines = append(lines, bg.Render("current: "+st.CurrentPreset, styles.MutedText))
		}
		return m.theme.PaneBorder(focused, m.paneWidth()).Render(strings.Join(lines, "\n"))
	}
	if len(st.Presets) == 0 {
		lines = append(lines, bg.Render("device has no presets", styles.FaintText))
	}

	for i, p := range st.Presets {
		cursor := "  "
		if focused && i == m.presetCursor {
			cursor = "› "
		}
		marker := "○ "
		style := styles.Text
		if p.Selected {
			marker = "● "
			style = m.theme.Styles().Selected
		}
		lines = append(lines, bg.Render(cursor, styles.AccentText)+style.Render(marker+p.Name))
	}
	return m.theme.PaneBorder(focused, m.paneWidth()).Render(strings.Join(lines, "\n"))
}

func (m Model) renderDimmer(st view.State) string {
	focused := m.focus == PaneDimmer
	bg, styles := m.paneColors(PaneDimmer)

	lines := []string{m.paneTitle("Dimmer", lights.KeyDimmer, bg, styles)}
	if !st.Dimmer.Known {
		lines = append(lines,
			bg.Render("Dimmer [--]", styles.MutedText),
			m.placeholder(lights.KeyDimmer, "level not reported", bg, styles),
		)
		return m.theme.PaneBorder(focused, m.paneWidth()).Render(strings.Join(lines, "\n"))
	}

	level := view.LevelForPosition(st.Dimmer.Position)
	lines = append(lines,
		bg.Render(dimmerLabel(level), styles.Text)+bg.Spaces(2)+
			bg.Render(fmt.Sprintf("%d%%", st.Dimmer.Position), styles.MutedText),
		m.dimmerBar.ViewAs(level),
	)
	return m.theme.PaneBorder(focused, m.paneWidth()).Render(strings.Join(lines, "\n"))
}

// placeholder explains why a widget has no value yet.
func (m Model) placeholder(k lights.Key, missing string, bg BgStyle, styles Styles) string {
	switch m.ctrl.Status(k).Phase {
	case controller.PhaseLoading:
		return bg.Render("loading...", styles.FaintText)
	case controller.PhaseError:
		return bg.Render("unavailable, press r to retry", styles.DangerText.Bold(false))
	default:
		if snap := m.ctrl.Confirmed(); !snap.Fetched && snap.LastError != nil {
			return bg.Render("unavailable, press r to retry", styles.FaintText)
		}
		return bg.Render(missing, styles.FaintText)
	}
}

// dimmerLabel formats a level the way the device's own panel labels it.
func dimmerLabel(level float64) string {
	return fmt.Sprintf("Dimmer [%0.2f]", level)
}
