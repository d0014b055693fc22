package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/five82/lumen/internal/controller"
	"github.com/five82/lumen/internal/lights"
)

// renderMain renders header, command bar, the three panes and the notice.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderPanes())
	if n := m.renderNotice(); n != "" {
		b.WriteString("\n")
		b.WriteString(n)
	}
	return b.String()
}

// renderHeader renders the connection status line.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < compactWidth
	snap := m.ctrl.Confirmed()

	parts := []string{bg.Render("lumen", styles.Logo)}
	if m.origin != "" && !compact {
		parts = append(parts, bg.Render(truncateMiddle(m.origin, 40), styles.MutedText))
	}

	switch {
	case snap.LastError != nil:
		label := classifyConnectionError(snap.LastError)
		if snap.IsOffline() {
			label = fmt.Sprintf("%s ×%d", label, snap.ConsecutiveFailures)
		}
		parts = append(parts, bg.Render("● "+label, styles.DangerText))
		maxErr := 60
		if compact {
			maxErr = 24
		}
		parts = append(parts, bg.Render(truncate(snap.LastError.Error(), maxErr), styles.DangerText.Bold(false)))
	case !snap.Fetched:
		parts = append(parts, bg.Render("Connecting...", styles.WarningText.Bold(true)))
	default:
		parts = append(parts, bg.Render("● ONLINE", styles.SuccessText))
	}

	if busy := m.busyLabel(); busy != "" {
		parts = append(parts, bg.Render(busy, styles.InfoText))
	}
	if ts := formatTimestamp(snap.LastUpdated, time.Now()); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// busyLabel summarizes writes still in flight and a dimmer waiting to settle.
func (m Model) busyLabel() string {
	var writing []string
	for _, k := range lights.Keys {
		if m.ctrl.Status(k).Phase == controller.PhaseWriteInFlight {
			writing = append(writing, keyLabel(k))
		}
	}
	switch {
	case len(writing) > 0:
		return "saving " + strings.Join(writing, ", ") + "..."
	case m.ctrl.DimmerPending():
		return "dimmer..."
	default:
		return ""
	}
}

// renderCommandBar renders the key hints for the focused pane.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd
	switch m.focus {
	case PanePresets:
		commands = []cmd{{"j/k", "Move"}, {"enter", "Select"}}
	case PaneDimmer:
		commands = []cmd{{"h/l", "±1"}, {"[/]", "±10"}, {"0/9", "Off/Full"}}
	default:
		commands = []cmd{{"h/l", "Move"}, {"enter", "Set mode"}}
	}
	commands = append(commands,
		cmd{"tab", "Pane"},
		cmd{"r", "Reload"},
		cmd{"L", "Log"},
		cmd{"?", "More"},
	)

	colon := bg.Render(":", styles.FaintText)
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(bg.Join(segments, "  "))
}

// renderNotice renders the failure banner, if one is showing.
func (m Model) renderNotice() string {
	if m.notice == nil {
		return ""
	}
	styles := m.theme.Styles()
	text := "✗ " + m.notice.text + "  (esc to dismiss)"
	return styles.Notice.Width(m.width).Render(truncate(text, max(m.width-2, 10)))
}

// describeNotice turns a controller failure into a banner message.
func describeNotice(n controller.NoticeMsg) string {
	reason := classifyConnectionError(n.Err)
	if n.Op == controller.OpFetch {
		return "Could not load settings: " + reason
	}
	names := make([]string, 0, len(n.Keys))
	for _, k := range n.Keys {
		names = append(names, keyLabel(k))
	}
	if len(names) == 0 {
		return "Could not update settings: " + reason
	}
	return fmt.Sprintf("Could not update %s: %s", strings.Join(names, ", "), reason)
}

func keyLabel(k lights.Key) string {
	switch k {
	case lights.KeyIntensityMode:
		return "intensity"
	case lights.KeyCurrentPreset:
		return "preset"
	case lights.KeyDimmer:
		return "dimmer"
	default:
		return string(k)
	}
}

// classifyConnectionError returns a short description of a round-trip error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	var netErr *lights.NetworkError
	if errors.As(err, &netErr) && netErr.Status != 0 {
		return fmt.Sprintf("HTTP %d", netErr.Status)
	}
	if lights.IsParse(err) {
		return "BAD PAYLOAD"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "TIMEOUT"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	case lights.IsNetwork(err):
		return "NETWORK ERROR"
	default:
		return "ERROR"
	}
}

// formatTimestamp formats the last update time with a relative indicator.
func formatTimestamp(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	since := now.Sub(t)
	s := t.Format("15:04:05")
	switch {
	case since < time.Minute:
		s += " (now)"
	case since < time.Hour:
		s += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		s += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return s
}

// truncate truncates a string to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// truncateMiddle truncates a string in the middle, keeping more of the end.
func truncateMiddle(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 5 {
		return string(r[:max])
	}
	endLen := (max - 3) * 2 / 3
	startLen := max - 3 - endLen
	return string(r[:startLen]) + "..." + string(r[len(r)-endLen:])
}
