package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// RenderSparkline draws the last width values scaled to their own min/max,
// colored by the threshold of the newest value.
func RenderSparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}
	lo, hi := data[0], data[0]
	for _, v := range data {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return renderSpark(data, lo, hi)
}

// RenderPercentSparkline draws percentages on a fixed 0-100 scale, so a flat
// 5% line sits at the bottom instead of the middle.
func RenderPercentSparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}
	return renderSpark(data, 0, 100)
}

func renderSpark(data []float64, lo, hi float64) string {
	levels := len(sparkBlocks)
	span := hi - lo

	var sb strings.Builder
	sb.Grow(len(data) * 3)
	for _, v := range data {
		level := levels / 2
		if span > 0 {
			level = int((v - lo) / span * float64(levels-1))
			level = max(0, min(levels-1, level))
		}
		sb.WriteRune(sparkBlocks[level])
	}

	color := ThresholdColor(data[len(data)-1])
	return lipgloss.NewStyle().Foreground(color).Render(sb.String())
}

// ThresholdColor maps a usage percentage to green, amber (60%+) or red (80%+).
func ThresholdColor(percent float64) lipgloss.Color {
	switch {
	case percent >= 80:
		return ColorError
	case percent >= 60:
		return ColorWarning
	default:
		return ColorSuccess
	}
}
