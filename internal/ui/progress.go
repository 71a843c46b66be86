package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Bar block characters.
const (
	BarFilled = '█'
	BarEmpty  = '░'
)

// BarConfig configures RenderBar.
type BarConfig struct {
	Width       int                          // bar width in cells, excluding brackets
	Brackets    bool                         // wrap the bar in [ ]
	ShowPercent bool                         // append " 42%"
	ColorFunc   func(float64) lipgloss.Color // nil renders unstyled
}

// DefaultBarConfig is a bracketed usage bar colored by ThresholdColor.
func DefaultBarConfig(width int) BarConfig {
	return BarConfig{
		Width:       width,
		Brackets:    true,
		ShowPercent: true,
		ColorFunc:   ThresholdColor,
	}
}

// ClampPercent clamps to 0-100.
func ClampPercent(percent float64) float64 {
	return max(0, min(100, percent))
}

// RenderBar draws a usage bar such as "[████░░░░]  50%".
func RenderBar(percent float64, cfg BarConfig) string {
	if cfg.Width <= 0 {
		return ""
	}
	percent = ClampPercent(percent)
	filled := int(percent / 100 * float64(cfg.Width))

	var sb strings.Builder
	if cfg.Brackets {
		sb.WriteRune('[')
	}
	sb.WriteString(strings.Repeat(string(BarFilled), filled))
	sb.WriteString(strings.Repeat(string(BarEmpty), cfg.Width-filled))
	if cfg.Brackets {
		sb.WriteRune(']')
	}

	bar := sb.String()
	if cfg.ColorFunc != nil {
		bar = lipgloss.NewStyle().Foreground(cfg.ColorFunc(percent)).Render(bar)
	}
	if cfg.ShowPercent {
		bar += fmt.Sprintf(" %3.0f%%", percent)
	}
	return bar
}

// RenderProgressBar is RenderBar with DefaultBarConfig.
func RenderProgressBar(percent float64, width int) string {
	return RenderBar(percent, DefaultBarConfig(width))
}
