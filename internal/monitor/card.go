package monitor

import (
	"fmt"
	"strings"
)

const cardGraphHeight = 2

func (m Model) renderCard(title string, lines []string, width int) string {
	inner := width - 2
	out := make([]string, 0, len(lines)+2)
	out = append(out, cardLine(CardTitleStyle.Render(title), inner))
	out = append(out, MutedStyle.Render(strings.Repeat("─", inner)))
	for _, l := range lines {
		out = append(out, cardLine(l, inner))
	}
	return CardStyle.Width(width).Render(strings.Join(out, "\n"))
}

// usageLines is the shared layout of the CPU, memory and disk cards: the
// percentage, a gradient bar, and optionally a history graph.
func (m Model) usageLines(percent float64, series Series, width int, graph bool) []string {
	pct := MetricStyle(percent).Render(fmt.Sprintf("%5.1f%%", percent))
	barWidth := max(1, width-len(" 100.0%"))
	lines := []string{RenderGradientBar(barWidth, percent) + " " + pct}
	if graph {
		g := RenderBrailleGraph(m.history.Last(series, width*2), width, cardGraphHeight, PercentScale, ColorGraph)
		lines = append(lines, strings.Split(g, "\n")...)
	}
	return lines
}

func (m Model) cpuLines(width int) []string {
	cpu := m.latest.CPU
	lines := m.usageLines(cpu.UsagePercent, SeriesCPU, width, true)
	if cpu.Temperature > 0 {
		lines = append(lines, labelValue("Temperature", ValueStyle.Render(fmt.Sprintf("%.1f°C", cpu.Temperature)), width))
	}
	return lines
}

func (m Model) memoryLines(width int) []string {
	mem := m.latest.Memory
	lines := m.usageLines(mem.UsagePercent, SeriesMemory, width, true)
	return append(lines,
		labelValue("Used", ValueStyle.Render(formatBytes(mem.Used)+" / "+formatBytes(mem.Total)), width),
		labelValue("Free", ValueStyle.Render(formatBytes(mem.Free)), width),
	)
}

func (m Model) diskLines(width int) []string {
	disk := m.latest.Disk
	lines := m.usageLines(disk.UsagePercent, SeriesDisk, width, false)
	return append(lines,
		labelValue("Used", ValueStyle.Render(formatBytes(disk.Used)+" / "+formatBytes(disk.Total)), width),
		labelValue("Free", ValueStyle.Render(formatBytes(disk.Free)), width),
	)
}

func (m Model) networkLines(width int) []string {
	net := m.latest.Network
	rx, tx := m.history.Rates()

	lines := []string{
		labelValue("↓ In", ValueStyle.Render(FormatRate(rx)), width),
		labelValue("↑ Out", ValueStyle.Render(FormatRate(tx)), width),
	}
	if m.history.Len(SeriesNetIn) > 0 {
		g := RenderBrailleGraph(m.history.Last(SeriesNetIn, width*2), width, cardGraphHeight, GraphScale{}, ColorGraph)
		lines = append(lines, strings.Split(g, "\n")...)
	} else {
		lines = append(lines, MutedStyle.Render("measuring..."))
	}
	return append(lines,
		labelValue("Received", ValueStyle.Render(formatBytes(net.BytesReceived)), width),
		labelValue("Sent", ValueStyle.Render(formatBytes(net.BytesSent)), width),
	)
}

func (m Model) systemLines(width int) []string {
	sys := m.latest.System
	load := "n/a"
	if len(sys.LoadAverage) == 3 {
		load = fmt.Sprintf("%.2f %.2f %.2f", sys.LoadAverage[0], sys.LoadAverage[1], sys.LoadAverage[2])
	}
	host := sys.Hostname
	if host == "" {
		host = "unknown"
	}
	return []string{
		labelValue("Host", ValueStyle.Render(host), width),
		labelValue("Uptime", ValueStyle.Render(formatUptime(sys.Uptime)), width),
		labelValue("Load 1/5/15", ValueStyle.Render(load), width),
	}
}
