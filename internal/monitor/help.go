package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HelpBinding is one row of the help overlay.
type HelpBinding struct {
	Key  string
	Desc string
}

var helpBindings = []HelpBinding{
	{Key: "q / Ctrl+C", Desc: "Quit"},
	{Key: "r", Desc: "Reconnect now"},
	{Key: "up / k", Desc: "Scroll up"},
	{Key: "down / j", Desc: "Scroll down"},
	{Key: "?", Desc: "Toggle this help"},
	{Key: "Esc", Desc: "Close help"},
}

var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(1, 2)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true).
			Width(14)
)

func (m Model) renderHelpOverlay() string {
	lines := []string{CardTitleStyle.Render("Keyboard Shortcuts"), ""}
	for _, b := range helpBindings {
		lines = append(lines, helpKeyStyle.Render(b.Key)+LabelStyle.Render(b.Desc))
	}
	lines = append(lines, "", MutedStyle.Render("Press ? to close"))

	box := helpBoxStyle.Render(strings.Join(lines, "\n"))
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
