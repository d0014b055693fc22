package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/lumen/internal/logtail"
)

// renderLogOverlay shows the tail of the client's own log file.
func (m Model) renderLogOverlay() string {
	styles := m.theme.Styles()

	title := styles.AccentText.Bold(true).Render("Client log")
	if m.logPath != "" {
		title += "  " + styles.FaintText.Render(truncateMiddle(m.logPath, max(m.width-20, 10)))
	}

	body := m.logViewport.View()
	if m.logErr != nil {
		body = styles.DangerText.Render(m.logErr.Error())
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Width(m.overlayWidth()).
		Render(body)

	hints := styles.MutedText.Render("j/k scroll  r reload  esc close")
	return lipgloss.JoinVertical(lipgloss.Left, title, box, hints)
}

// renderLogLines colors each line by its parsed level.
func (m Model) renderLogLines(lines []string) string {
	if len(lines) == 0 {
		return m.theme.Styles().FaintText.Render("(no log entries yet)")
	}
	styles := m.theme.Styles()
	width := m.overlayWidth()
	var b strings.Builder
	for i, line := range lines {
		style := styles.Text
		switch logtail.ParseLevel(line) {
		case logtail.LevelDebug:
			style = styles.FaintText
		case logtail.LevelWarn:
			style = styles.WarningText
		case logtail.LevelError:
			style = styles.DangerText
		}
		b.WriteString(style.Render(truncate(line, width)))
		if i < len(lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
