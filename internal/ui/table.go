package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/hostdeck/internal/resource"
)

// TableColumn is a column header. Width 0 sizes the column to its widest cell.
type TableColumn struct {
	Title string
	Width int
}

const columnGap = "  "

// RenderTable renders rows under a bold header and a muted rule. Cells may
// carry ANSI styling; widths are measured on visible text.
func RenderTable(columns []TableColumn, rows [][]string) string {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = max(c.Width, lipgloss.Width(c.Title))
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if columns[i].Width == 0 {
				widths[i] = max(widths[i], lipgloss.Width(row[i]))
			}
		}
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	var sb strings.Builder
	total := 0
	for i, c := range columns {
		if i > 0 {
			sb.WriteString(columnGap)
			total += len(columnGap)
		}
		sb.WriteString(header.Render(padRight(c.Title, widths[i])))
		total += widths[i]
	}
	sb.WriteString("\n")
	sb.WriteString(MutedStyle().Render(strings.Repeat("─", total)))
	sb.WriteString("\n")

	for _, row := range rows {
		var line strings.Builder
		for i := range columns {
			if i > 0 {
				line.WriteString(columnGap)
			}
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			line.WriteString(padRight(cell, widths[i]))
		}
		sb.WriteString(strings.TrimRight(line.String(), " "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// ServicesTable renders the service list.
func ServicesTable(services []resource.Service) string {
	if len(services) == 0 {
		return MutedStyle().Render("No services reported by the controller.") + "\n"
	}
	rows := make([][]string, 0, len(services))
	for _, s := range services {
		port := ""
		if s.Port > 0 {
			port = strconv.Itoa(s.Port)
		}
		rows = append(rows, []string{
			s.Name,
			ServiceStatus(s.Status),
			port,
			Enabled(s.AutoStart),
			s.Description,
		})
	}
	return RenderTable([]TableColumn{
		{Title: "SERVICE"}, {Title: "STATUS"}, {Title: "PORT"}, {Title: "BOOT"}, {Title: "DESCRIPTION"},
	}, rows)
}

// PortsTable renders the listening ports.
func PortsTable(ports []resource.Port) string {
	if len(ports) == 0 {
		return MutedStyle().Render("No ports reported by the controller.") + "\n"
	}
	rows := make([][]string, 0, len(ports))
	for _, p := range ports {
		allowed := strings.Join(p.AllowedIPs, ", ")
		if allowed == "" {
			allowed = MutedStyle().Render("any")
		}
		rows = append(rows, []string{
			p.Key(),
			PortStatus(p.Status),
			p.Service,
			allowed,
			p.Description,
		})
	}
	return RenderTable([]TableColumn{
		{Title: "PORT"}, {Title: "STATUS"}, {Title: "SERVICE"}, {Title: "ALLOWED"}, {Title: "DESCRIPTION"},
	}, rows)
}

// RulesTable renders the firewall rules.
func RulesTable(rules []resource.FirewallRule) string {
	if len(rules) == 0 {
		return MutedStyle().Render("No firewall rules.") + "\n"
	}
	rows := make([][]string, 0, len(rules))
	for _, r := range rules {
		rows = append(rows, []string{
			strconv.Itoa(r.ID),
			RuleAction(r.Action),
			fmt.Sprintf("%s/%d", r.Protocol, r.Port),
			r.SourceLabel(),
			Enabled(r.Enabled),
			r.Description,
		})
	}
	return RenderTable([]TableColumn{
		{Title: "ID"}, {Title: "ACTION"}, {Title: "TARGET"}, {Title: "SOURCE"}, {Title: "ENABLED"}, {Title: "DESCRIPTION"},
	}, rows)
}

// logTimeFormat is short enough for a terminal row; --json keeps full
// precision.
const logTimeFormat = "Jan _2 15:04:05"

// LogsTable renders log entries in the order given.
func LogsTable(entries []resource.LogEntry) string {
	if len(entries) == 0 {
		return MutedStyle().Render("No log entries match.") + "\n"
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		origin := e.ProcessName
		if e.IP != "" {
			origin = strings.TrimSpace(origin + " " + e.IP)
		}
		rows = append(rows, []string{
			e.Timestamp.Local().Format(logTimeFormat),
			e.Source,
			LogLevel(e.Level),
			origin,
			e.Message,
		})
	}
	return RenderTable([]TableColumn{
		{Title: "TIME"}, {Title: "SOURCE"}, {Title: "LEVEL"}, {Title: "FROM"}, {Title: "MESSAGE"},
	}, rows)
}

// LogSummary renders the controller's log totals, a per-source count and
// the most recent errors.
func LogSummary(sum resource.LogSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %d entries, %s, %s\n",
		HeadingStyle().Render("Logs"),
		sum.TotalEntries,
		ErrorStyle().Render(fmt.Sprintf("%d errors", sum.ErrorCount)),
		WarningStyle().Render(fmt.Sprintf("%d warnings", sum.WarningCount)))
	if !sum.LastUpdateTime.IsZero() {
		fmt.Fprintf(&sb, "%s\n", MutedStyle().Render("last entry "+sum.LastUpdateTime.Local().Format(time.RFC3339)))
	}

	sources := make([]string, 0, len(sum.SourceCounts))
	for src := range sum.SourceCounts {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	if len(sources) > 0 {
		rows := make([][]string, 0, len(sources))
		for _, src := range sources {
			rows = append(rows, []string{src, strconv.Itoa(sum.SourceCounts[src])})
		}
		sb.WriteString("\n")
		sb.WriteString(RenderTable([]TableColumn{{Title: "SOURCE"}, {Title: "ENTRIES"}}, rows))
	}

	if len(sum.RecentErrors) > 0 {
		sb.WriteString("\n")
		sb.WriteString(HeadingStyle().Render("Recent errors"))
		sb.WriteString("\n")
		sb.WriteString(LogsTable(sum.RecentErrors))
	}
	return sb.String()
}

// padRight pads s to width visible cells.
func padRight(s string, width int) string {
	if pad := width - lipgloss.Width(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
