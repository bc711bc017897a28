package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fabriclab/fabric-pulse/internal/eapi"
	"github.com/fabriclab/fabric-pulse/internal/state"
)

// Column layout for the device table.
var tableColumns = []struct {
	title string
	width int
}{
	{"DEVICE", 14},
	{"ROLE", 8},
	{"MODEL", 12},
	{"VERSION", 10},
	{"UPTIME", 9},
	{"CPU", 7},
	{"TEMP", 7},
	{"BGP", 9},
	{"MLAG", 10},
	{"LINKS", 9},
	{"STATUS", 18},
}

// renderDashboard renders the complete list view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderDeviceTable())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the dashboard header with summary stats.
func (m Model) renderHeader() string {
	total := len(m.entries)
	healthy := m.HealthyCount()

	title := TitleStyle.Render("fabric-pulse")
	stats := LabelStyle.Render(fmt.Sprintf(" | %d devices | %d healthy | sort: %s",
		total, healthy, m.sortOrder))

	return HeaderStyle.Render(title + stats)
}

// renderDeviceTable renders the per-device rows under a column header.
func (m Model) renderDeviceTable() string {
	if len(m.entries) == 0 {
		return LabelStyle.Render("No devices configured")
	}

	var rows []string
	rows = append(rows, m.renderColumnHeader())
	for i, entry := range m.entries {
		rows = append(rows, m.renderRow(entry, i == m.selected))
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderColumnHeader() string {
	var cells []string
	for _, col := range tableColumns {
		cells = append(cells, padRight(col.title, col.width))
	}
	return ColumnHeaderStyle.Render(strings.Join(cells, " "))
}

// renderRow renders one device. Rows showing retained data from an earlier
// cycle are dimmed so the staleness is visible at a glance.
func (m Model) renderRow(entry state.Entry, selected bool) string {
	dev := displayState(entry)

	cells := make([]string, 0, len(tableColumns))
	cells = append(cells,
		DeviceNameStyle.Render(padRight(entry.Target.Name, tableColumns[0].width)),
		LabelStyle.Render(padRight(entry.Target.Role, tableColumns[1].width)),
	)

	if dev == nil {
		for i := 2; i < len(tableColumns)-1; i++ {
			cells = append(cells, MutedStyle.Render(padRight("-", tableColumns[i].width)))
		}
	} else {
		health := healthStyle(dev.CPUPercent, dev.Temperature)
		cells = append(cells,
			LabelStyle.Render(padRight(dev.Model, tableColumns[2].width)),
			LabelStyle.Render(padRight(dev.Version, tableColumns[3].width)),
			LabelStyle.Render(padRight(formatUptime(dev.Uptime), tableColumns[4].width)),
			health.Render(padRight(formatPercent(dev.CPUPercent), tableColumns[5].width)),
			health.Render(padRight(formatTemp(dev.Temperature), tableColumns[6].width)),
			bgpStyle(dev.BGP.Established, dev.BGP.Total).Render(padRight(dev.BGP.String(), tableColumns[7].width)),
			mlagStyle(dev.MLAG).Render(padRight(dev.MLAG, tableColumns[8].width)),
			linkStyle(dev.Interfaces.Up, dev.Interfaces.Total()).Render(padRight(dev.Interfaces.String(), tableColumns[9].width)),
		)
	}
	cells = append(cells, m.renderStatusCell(entry))

	row := strings.Join(cells, " ")
	if selected {
		return SelectedRowStyle.Render("▸ ") + row
	}
	return "  " + row
}

// renderStatusCell summarizes the poll state of one device.
func (m Model) renderStatusCell(entry state.Entry) string {
	width := tableColumns[len(tableColumns)-1].width

	switch {
	case entry.Result.Pending():
		return MutedStyle.Render(padRight(m.ConnectingSpinner()+" connecting", width))

	case entry.Result.Err == nil:
		return HealthyStyle.Render(padRight(GlyphOK+" ok", width))

	case entry.Stale():
		age := formatAge(time.Since(entry.LastGoodAt))
		return WarningStyle.Render(padRight(fmt.Sprintf("%s stale %s (%s)", GlyphStale, age, entry.Result.Err.Kind.Label()), width))

	default:
		// Never succeeded: show how long the device has been failing.
		age := formatAge(time.Since(entry.Result.CompletedAt))
		return CriticalStyle.Render(padRight(fmt.Sprintf("%s %s %s", GlyphUnreachable, entry.Result.Err.Kind.Label(), age), width))
	}
}

// renderFooter renders the keyboard help footer.
func (m Model) renderFooter() string {
	hints := []string{
		"q quit",
		"r refresh",
		"s sort",
		"↑↓ select",
		"enter detail",
		"? help",
	}
	return FooterStyle.Render(strings.Join(hints, " | "))
}

// displayState resolves which device state a row shows: the latest cycle's
// when it succeeded, otherwise the retained last-known-good.
func displayState(entry state.Entry) *eapi.DeviceState {
	if entry.Result.State != nil {
		return entry.Result.State
	}
	return entry.LastGood
}

// formatUptime renders a duration the way switch operators read it: the two
// most significant units.
func formatUptime(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}

// formatAge renders how long ago something happened, coarsely.
func formatAge(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
}

func formatPercent(v float64) string {
	if v < 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.0f%%", v)
}

func formatTemp(v float64) string {
	if v < 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.0fC", v)
}

// padRight pads a string to the specified visible width, ANSI-aware.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}
