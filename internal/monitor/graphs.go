package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille cells are 2 dots wide and 4 tall; bits per (row, col) from the
// Unicode braille pattern block.
const brailleBase = '⠀'

var brailleBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// GraphScale fixes the vertical range of a graph. A zero Max scales to the
// data instead.
type GraphScale struct {
	Min, Max float64
}

// PercentScale is the 0-100 range for usage graphs.
var PercentScale = GraphScale{Min: 0, Max: 100}

// RenderBrailleGraph plots data as a filled area graph width cells wide and
// height rows tall, newest value on the right. Each cell holds two samples.
// Percent-scaled columns are colored by MetricColor; others use color.
func RenderBrailleGraph(data []float64, width, height int, scale GraphScale, color lipgloss.Color) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	points := width * 2
	if len(data) > points {
		data = resampleData(data, points)
	}

	lo, hi := scale.Min, scale.Max
	percent := scale == PercentScale
	if hi <= lo {
		lo, hi = 0, 0
		for _, v := range data {
			hi = max(hi, v)
		}
	}

	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(string(brailleBase), width))
	}
	colPeak := make([]float64, width)

	dots := height * 4
	offset := points - len(data)
	for i, v := range data {
		x := offset + i
		col, sub := x/2, x%2
		colPeak[col] = max(colPeak[col], v)

		filled := 0
		if hi > lo {
			filled = int((v - lo) / (hi - lo) * float64(dots))
		}
		if v > lo && filled == 0 {
			filled = 1
		}
		filled = min(filled, dots)
		for d := 0; d < filled; d++ {
			row := height - 1 - d/4
			grid[row][col] |= brailleBits[3-d%4][sub]
		}
	}

	lines := make([]string, height)
	for r, row := range grid {
		var sb strings.Builder
		for c, ch := range row {
			fg := color
			if percent {
				fg = MetricColor(colPeak[c])
			}
			sb.WriteString(lipgloss.NewStyle().Foreground(fg).Render(string(ch)))
		}
		lines[r] = sb.String()
	}
	return strings.Join(lines, "\n")
}

// RenderGradientBar draws a usage bar whose filled cells shade from healthy
// to critical by position.
func RenderGradientBar(width int, percent float64) string {
	if width < 1 {
		width = 1
	}
	percent = max(0, min(100, percent))
	filled := int(percent / 100 * float64(width))

	var sb strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			pos := float64(i+1) / float64(width) * 100
			sb.WriteString(lipgloss.NewStyle().Foreground(MetricColor(pos)).Render("█"))
		} else {
			sb.WriteString(lipgloss.NewStyle().Foreground(ColorTextMuted).Render("░"))
		}
	}
	return sb.String()
}

// resampleData shrinks data to size buckets, keeping each bucket's peak so
// spikes survive, or stretches it by linear interpolation.
func resampleData(data []float64, size int) []float64 {
	if len(data) == 0 || size <= 0 {
		return nil
	}
	if len(data) == size {
		return data
	}
	out := make([]float64, size)
	if len(data) == 1 {
		for i := range out {
			out[i] = data[0]
		}
		return out
	}

	if len(data) > size {
		bucket := float64(len(data)) / float64(size)
		for i := range out {
			start := int(float64(i) * bucket)
			end := min(len(data), max(start+1, int(float64(i+1)*bucket)))
			peak := data[start]
			for _, v := range data[start+1 : end] {
				peak = max(peak, v)
			}
			out[i] = peak
		}
		return out
	}

	step := float64(len(data)-1) / float64(size-1)
	for i := range out {
		pos := float64(i) * step
		idx := int(pos)
		if idx >= len(data)-1 {
			out[i] = data[len(data)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = data[idx]*(1-frac) + data[idx+1]*frac
	}
	return out
}
