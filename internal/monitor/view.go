package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	defaultWidth = 80
	minCardWidth = 34
)

func (m Model) renderDashboard() string {
	body := m.renderBody()
	if m.viewportReady {
		body = m.viewport.View()
	}
	return m.renderHeader() + "\n\n" + body + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).Render("hostdeck monitor")

	parts := []string{}
	if m.latest != nil && m.latest.System.Hostname != "" {
		parts = append(parts, m.latest.System.Hostname)
	}
	if m.endpoint != "" {
		parts = append(parts, m.endpoint)
	}
	parts = append(parts, StateIndicator(m.state, m.frame))

	switch age := m.SecondsSinceUpdate(); {
	case age < 0:
		parts = append(parts, "no data yet")
	case age == 0:
		parts = append(parts, "updated just now")
	default:
		parts = append(parts, fmt.Sprintf("updated %ds ago", age))
	}

	rest := lipgloss.NewStyle().Foreground(ColorTextSecondary).Render(" | " + strings.Join(parts, " | "))
	return HeaderStyle.Render(title + rest)
}

func (m Model) renderFooter() string {
	hints := []string{"q quit", "r reconnect", "? help"}
	if m.viewportReady && m.viewport.TotalLineCount() > m.viewport.Height {
		hints = append(hints, fmt.Sprintf("↑↓ scroll %3.0f%%", m.viewport.ScrollPercent()*100))
	}
	return FooterStyle.Render(strings.Join(hints, " | "))
}

// renderBody is the scrollable area: a waiting message before the first
// snapshot, the cards after.
func (m Model) renderBody() string {
	var sections []string
	if m.lastErr != nil {
		sections = append(sections, ErrorStyle.Render(firstLine(m.lastErr.Error())))
	}

	if m.latest == nil {
		wait := "Waiting for the first snapshot"
		if m.endpoint != "" {
			wait += " from " + m.endpoint
		}
		sections = append(sections, LabelStyle.Render(wait+"..."))
		return strings.Join(sections, "\n\n")
	}

	sections = append(sections, m.renderCards())
	return strings.Join(sections, "\n")
}

// cardLayout returns the number of columns and the card width (excluding
// border and margin) for the terminal width.
func (m Model) cardLayout() (cols, width int) {
	total := m.width
	if total == 0 {
		total = defaultWidth
	}
	const chrome = 3 // border and right margin
	if total >= 2*(minCardWidth+chrome) {
		return 2, total/2 - chrome
	}
	return 1, max(minCardWidth, total-chrome)
}

func (m Model) renderCards() string {
	cols, w := m.cardLayout()
	inner := w - 2 // horizontal padding

	cards := []string{
		m.renderCard("CPU", m.cpuLines(inner), w),
		m.renderCard("Memory", m.memoryLines(inner), w),
		m.renderCard("Disk", m.diskLines(inner), w),
		m.renderCard("Network", m.networkLines(inner), w),
		m.renderCard("System", m.systemLines(inner), w),
	}

	var rows []string
	for i := 0; i < len(cards); i += cols {
		end := min(i+cols, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return s
}

// formatBytes renders a byte count with binary units.
func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %s", float64(b)/float64(div), []string{"KB", "MB", "GB", "TB", "PB", "EB"}[exp])
}

// FormatRate renders bytes per second.
func FormatRate(bps float64) string {
	switch {
	case bps < 1024:
		return fmt.Sprintf("%.0f B/s", bps)
	case bps < 1024*1024:
		return fmt.Sprintf("%.1f KB/s", bps/1024)
	case bps < 1024*1024*1024:
		return fmt.Sprintf("%.1f MB/s", bps/(1024*1024))
	default:
		return fmt.Sprintf("%.1f GB/s", bps/(1024*1024*1024))
	}
}

// formatUptime renders seconds as "3d 4h 12m", "4h 12m" or "12m 5s".
func formatUptime(seconds uint64) string {
	d := seconds / 86400
	h := seconds % 86400 / 3600
	m := seconds % 3600 / 60
	s := seconds % 60
	switch {
	case d > 0:
		return fmt.Sprintf("%dd %dh %dm", d, h, m)
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	default:
		return fmt.Sprintf("%dm %ds", m, s)
	}
}
