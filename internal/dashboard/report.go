package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/fabriclab/fabric-pulse/internal/state"
)

// RenderReport renders a one-shot, non-interactive snapshot table for the
// check command. Unlike the live view it prints plain cell text inside a
// bubbles table so the output stays readable when piped.
func RenderReport(snap state.Snapshot) string {
	columns := []table.Column{
		{Title: "DEVICE", Width: 14},
		{Title: "ROLE", Width: 8},
		{Title: "MODEL", Width: 12},
		{Title: "VERSION", Width: 10},
		{Title: "UPTIME", Width: 9},
		{Title: "CPU", Width: 7},
		{Title: "TEMP", Width: 7},
		{Title: "BGP", Width: 9},
		{Title: "MLAG", Width: 10},
		{Title: "LINKS", Width: 9},
		{Title: "STATUS", Width: 18},
	}

	rows := make([]table.Row, 0, len(snap.Entries))
	for _, entry := range snap.Entries {
		rows = append(rows, reportRow(entry))
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorTextSecondary)
	s.Cell = s.Cell.Foreground(ColorTextPrimary)
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)

	var b strings.Builder
	b.WriteString(t.View())
	b.WriteString("\n\n")
	b.WriteString(renderReportSummary(snap))
	return b.String()
}

func reportRow(entry state.Entry) table.Row {
	status := "ok"
	switch {
	case entry.Result.Pending():
		status = "no data"
	case entry.Result.Err != nil:
		status = entry.Result.Err.Kind.Label()
	}

	dev := entry.Result.State
	if dev == nil {
		return table.Row{entry.Target.Name, entry.Target.Role,
			"-", "-", "-", "-", "-", "-", "-", "-", status}
	}

	return table.Row{
		entry.Target.Name,
		entry.Target.Role,
		dev.Model,
		dev.Version,
		formatUptime(dev.Uptime),
		formatPercent(dev.CPUPercent),
		formatTemp(dev.Temperature),
		dev.BGP.String(),
		dev.MLAG,
		dev.Interfaces.String(),
		status,
	}
}

func renderReportSummary(snap state.Snapshot) string {
	healthy := 0
	for _, entry := range snap.Entries {
		if entry.Result.State != nil {
			healthy++
		}
	}

	line := fmt.Sprintf("%d/%d devices healthy at %s",
		healthy, len(snap.Entries), snap.TakenAt.Format(time.Kitchen))
	if healthy == len(snap.Entries) {
		return HealthyStyle.Render("✓ " + line)
	}
	return CriticalStyle.Render("✗ " + line)
}

// Unreached counts devices whose latest cycle did not succeed.
func Unreached(snap state.Snapshot) int {
	failed := 0
	for _, entry := range snap.Entries {
		if entry.Result.State == nil {
			failed++
		}
	}
	return failed
}
