package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/hostdeck/internal/stream"
)

// Dashboard palette.
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F")
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent = lipgloss.Color("#FF2E97")
	ColorGraph  = lipgloss.Color("#00FFFF")
	ColorGraph2 = lipgloss.Color("#BF40FF")
)

// Usage thresholds for metric colors.
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1)

	CardTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorCritical)
)

// ConnectingFrames animate the connection indicator while not connected.
var ConnectingFrames = []string{"◐", "◓", "◑", "◒"}

// MetricColor maps a usage percentage to healthy, warning or critical.
func MetricColor(percent float64) lipgloss.Color {
	switch {
	case percent >= CriticalThreshold:
		return ColorCritical
	case percent >= WarningThreshold:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// MetricStyle is a bold style in MetricColor.
func MetricStyle(percent float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(MetricColor(percent)).Bold(true)
}

// StateIndicator renders the stream state as a glyph and word. frame
// animates the non-connected states.
func StateIndicator(s stream.State, frame int) string {
	spin := ConnectingFrames[frame%len(ConnectingFrames)]
	switch s {
	case stream.Connected:
		return lipgloss.NewStyle().Foreground(ColorHealthy).Render("◉ live")
	case stream.Connecting:
		return lipgloss.NewStyle().Foreground(ColorTextSecondary).Render(spin + " connecting")
	case stream.Reconnecting:
		return lipgloss.NewStyle().Foreground(ColorWarning).Render(spin + " reconnecting")
	case stream.Closed:
		return lipgloss.NewStyle().Foreground(ColorCritical).Render("◌ closed")
	default:
		return MutedStyle.Render("○ idle")
	}
}

// cardLine pads content to width visible cells.
func cardLine(content string, width int) string {
	if pad := width - lipgloss.Width(content); pad > 0 {
		return content + strings.Repeat(" ", pad)
	}
	return content
}

// labelValue renders "label" on the left and value right-aligned to width.
func labelValue(label, value string, width int) string {
	l := LabelStyle.Render(label)
	gap := width - lipgloss.Width(l) - lipgloss.Width(value)
	if gap < 1 {
		gap = 1
	}
	return l + strings.Repeat(" ", gap) + value
}
