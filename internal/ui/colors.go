package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/rileyhilliard/hostdeck/internal/resource"
)

// Neon palette shared with the monitor dashboard.
const (
	ColorNeonPink   lipgloss.Color = "#FF2E97"
	ColorNeonCyan   lipgloss.Color = "#00FFFF"
	ColorNeonPurple lipgloss.Color = "#BD93F9"
	ColorNeonGreen  lipgloss.Color = "#39FF14"
	ColorNeonAmber  lipgloss.Color = "#FFAA00"
	ColorNeonRed    lipgloss.Color = "#FF0055"
)

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = ColorNeonGreen
	ColorError   lipgloss.Color = ColorNeonRed
	ColorWarning lipgloss.Color = ColorNeonAmber
	ColorInfo    lipgloss.Color = ColorNeonCyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "#E0E0E0"
	ColorSecondary lipgloss.Color = ColorNeonPurple
	ColorMuted     lipgloss.Color = "#6C6C8A"
)

// GradientColors cycle through the spinner animation.
var GradientColors = []lipgloss.Color{
	ColorNeonPink,
	ColorNeonPurple,
	ColorNeonCyan,
	ColorNeonGreen,
}

// Color modes accepted by output.color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ConfigureColor sets the global lipgloss color profile. noColor (the
// --no-color flag) and the NO_COLOR environment variable win over mode.
// In auto mode color is dropped when stdout is not a terminal.
func ConfigureColor(mode string, noColor bool) {
	lipgloss.SetColorProfile(colorProfile(mode, noColor, isTerminal(os.Stdout)))
}

func colorProfile(mode string, noColor, tty bool) termenv.Profile {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	switch strings.ToLower(mode) {
	case ColorNever:
		return termenv.Ascii
	case ColorAlways:
		return termenv.TrueColor
	default:
		if !tty {
			return termenv.Ascii
		}
		return termenv.EnvColorProfile()
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// IsInteractive reports whether both stdin and stdout are terminals, i.e.
// whether a prompt can be shown.
func IsInteractive() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

// SuccessStyle renders positive outcomes.
func SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorSuccess)
}

// ErrorStyle renders failures.
func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorError)
}

// WarningStyle renders cautions.
func WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorWarning)
}

// MutedStyle renders secondary text.
func MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorMuted)
}

// HeadingStyle renders section titles.
func HeadingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(ColorNeonPink)
}

// ServiceStatus renders a service status with its symbol and color.
func ServiceStatus(s resource.ServiceStatus) string {
	switch s {
	case resource.ServiceActive:
		return SuccessStyle().Render(SymbolComplete + " active")
	case resource.ServiceInactive:
		return MutedStyle().Render(SymbolPending + " inactive")
	case resource.ServiceFailed:
		return ErrorStyle().Render(SymbolFail + " failed")
	default:
		return WarningStyle().Render(SymbolUnknown + " unknown")
	}
}

// PortStatus renders an open or closed port.
func PortStatus(s resource.PortStatus) string {
	if s == resource.PortOpen {
		return SuccessStyle().Render(SymbolComplete + " open")
	}
	return MutedStyle().Render(SymbolPending + " closed")
}

// RuleAction renders allow in green and deny in red.
func RuleAction(a resource.RuleAction) string {
	if a == resource.RuleDeny {
		return ErrorStyle().Render(strings.ToUpper(string(a)))
	}
	return SuccessStyle().Render(strings.ToUpper(string(a)))
}

// Enabled renders a yes/no flag.
func Enabled(on bool) string {
	if on {
		return SuccessStyle().Render(SymbolSuccess)
	}
	return MutedStyle().Render("-")
}

// LogLevel renders a log level, colored by severity.
func LogLevel(l resource.LogLevel) string {
	switch l {
	case resource.LogError:
		return ErrorStyle().Render(string(l))
	case resource.LogWarning:
		return WarningStyle().Render(string(l))
	case resource.LogDebug:
		return MutedStyle().Render(string(l))
	default:
		return string(l)
	}
}
