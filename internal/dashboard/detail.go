package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fabriclab/fabric-pulse/internal/eapi"
	"github.com/fabriclab/fabric-pulse/internal/state"
)

// Detail view styles
var (
	detailContainerStyle = lipgloss.NewStyle().
				Padding(1, 2)

	detailSectionStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorder).
				Padding(0, 1).
				MarginBottom(1)
)

// renderDetailView renders the expanded single-device view. The port listing
// lives in a viewport so big chassis stay scrollable.
func (m Model) renderDetailView() string {
	entry, ok := m.SelectedEntry()
	if !ok {
		return LabelStyle.Render("No device selected")
	}

	var b strings.Builder
	b.WriteString(m.renderDetailHeader())
	b.WriteString("\n\n")

	if m.viewportReady {
		b.WriteString(m.detailViewport.View())
	} else {
		b.WriteString(m.detailContent(entry))
	}

	b.WriteString("\n")
	b.WriteString(FooterStyle.Render(strings.Join([]string{"esc back", "j/k scroll", "r refresh", "q quit"}, " | ")))

	return detailContainerStyle.Render(b.String())
}

// renderDetailHeader renders the device name, address, and poll status.
func (m Model) renderDetailHeader() string {
	entry, ok := m.SelectedEntry()
	if !ok {
		return ""
	}

	title := TitleStyle.Render(entry.Target.Name)
	addr := LabelStyle.Render(fmt.Sprintf("%s (%s)", entry.Target.Host, entry.Target.Role))

	return fmt.Sprintf("%s  %s  %s", title, addr, m.renderStatusCell(entry))
}

// updateDetailViewportContent refreshes the viewport with the selected
// device's sections.
func (m *Model) updateDetailViewportContent() {
	if !m.viewportReady {
		return
	}
	entry, ok := m.SelectedEntry()
	if !ok {
		return
	}
	m.detailViewport.SetContent(m.detailContent(entry))
}

// detailContent builds the section stack for one device.
func (m Model) detailContent(entry state.Entry) string {
	width := m.width - 6
	if width < 48 {
		width = 48
	}

	dev := displayState(entry)
	if dev == nil {
		msg := "Waiting for first poll..."
		if entry.Result.Err != nil {
			msg = "No data: " + entry.Result.Err.Error()
		}
		return detailSectionStyle.Width(width).Render(LabelStyle.Render(msg))
	}

	var sections []string

	if entry.Stale() {
		warn := WarningStyle.Render(fmt.Sprintf("%s showing data from %s ago — %s",
			GlyphStale, formatAge(time.Since(entry.LastGoodAt)), entry.Result.Err.Error()))
		sections = append(sections, detailSectionStyle.Width(width).Render(warn))
	}

	var sys []string
	sys = append(sys, TitleStyle.Render("System"), "")
	sys = append(sys, LabelStyle.Render(fmt.Sprintf("  Model:   %s", dev.Model)))
	sys = append(sys, LabelStyle.Render(fmt.Sprintf("  EOS:     %s", dev.Version)))
	sys = append(sys, LabelStyle.Render(fmt.Sprintf("  Uptime:  %s", formatUptime(dev.Uptime))))
	sections = append(sections, detailSectionStyle.Width(width).Render(strings.Join(sys, "\n")))

	health := healthStyle(dev.CPUPercent, dev.Temperature)
	var env []string
	env = append(env, TitleStyle.Render("Health"), "")
	env = append(env, "  CPU:   "+health.Render(formatPercent(dev.CPUPercent)))
	tempLine := "  Temp:  " + health.Render(formatTemp(dev.Temperature))
	if dev.TempAlarms > 0 {
		tempLine += "  " + CriticalStyle.Render(fmt.Sprintf("%d sensor(s) in alert", dev.TempAlarms))
	}
	env = append(env, tempLine)
	sections = append(sections, detailSectionStyle.Width(width).Render(strings.Join(env, "\n")))

	var proto []string
	proto = append(proto, TitleStyle.Render("Protocols"), "")
	proto = append(proto, "  BGP:   "+bgpStyle(dev.BGP.Established, dev.BGP.Total).Render(dev.BGP.String()))
	proto = append(proto, "  MLAG:  "+mlagStyle(dev.MLAG).Render(dev.MLAG))
	sections = append(sections, detailSectionStyle.Width(width).Render(strings.Join(proto, "\n")))

	sections = append(sections, m.renderPortSection(dev, width))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderPortSection renders the per-interface table.
func (m Model) renderPortSection(dev *eapi.DeviceState, width int) string {
	var lines []string
	lines = append(lines, TitleStyle.Render(fmt.Sprintf("Interfaces (%s)", dev.Interfaces.String())), "")

	if len(dev.Interfaces.Ports) == 0 {
		lines = append(lines, LabelStyle.Render("  none reported"))
		return detailSectionStyle.Width(width).Render(strings.Join(lines, "\n"))
	}

	lines = append(lines, ColumnHeaderStyle.Render(fmt.Sprintf("  %-14s %-12s %-7s %s", "PORT", "STATUS", "SPEED", "DESCRIPTION")))
	for _, port := range dev.Interfaces.Ports {
		style := portStyle(port.Status)
		lines = append(lines, fmt.Sprintf("  %s %s %s %s",
			padRight(port.Name, 14),
			style.Render(padRight(port.Status, 12)),
			LabelStyle.Render(padRight(port.Speed, 7)),
			MutedStyle.Render(port.Description)))
	}

	return detailSectionStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func portStyle(status string) lipgloss.Style {
	switch status {
	case "connected":
		return HealthyStyle
	case "disabled":
		return MutedStyle
	default:
		return CriticalStyle
	}
}
