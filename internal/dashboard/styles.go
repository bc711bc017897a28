package dashboard

import (
	"github.com/charmbracelet/lipgloss"
)

// Dashboard color palette
const (
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A3A4A")

	// Semantic colors for health states
	ColorHealthy  = lipgloss.Color("#2ECC71")
	ColorWarning  = lipgloss.Color("#F1C40F")
	ColorCritical = lipgloss.Color("#E74C3C")

	// Text colors
	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#AEB6CF")
	ColorTextMuted     = lipgloss.Color("#6B7089")

	// Accent color for titles and selection
	ColorAccent = lipgloss.Color("#00B7C3")
)

// Health thresholds: a device running at or above these is in trouble.
const (
	CPUCriticalThreshold  = 80.0
	TempCriticalThreshold = 80.0
)

// Base styles for the dashboard
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	ColumnHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorTextSecondary).
				Bold(true)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(ColorTextPrimary).
				Background(ColorBorder).
				Bold(true)

	DeviceNameStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	HealthyStyle  = lipgloss.NewStyle().Foreground(ColorHealthy)
	WarningStyle  = lipgloss.NewStyle().Foreground(ColorWarning)
	CriticalStyle = lipgloss.NewStyle().Foreground(ColorCritical)
)

// Status indicator glyphs
const (
	GlyphOK          = "◉"
	GlyphStale       = "◔"
	GlyphUnreachable = "◌"
)

// ConnectingSpinnerFrames animate the pending state before a device's first
// poll completes.
var ConnectingSpinnerFrames = []string{"◐", "◓", "◑", "◒"}

// healthStyle colors CPU and temperature cells. A device pegged on either
// axis reads critical; a device reporting neither reads warning because the
// operator is flying blind on it.
func healthStyle(cpuPercent, temperature float64) lipgloss.Style {
	switch {
	case cpuPercent >= CPUCriticalThreshold:
		return CriticalStyle
	case temperature >= TempCriticalThreshold:
		return CriticalStyle
	case cpuPercent < 0 && temperature < 0:
		return WarningStyle
	default:
		return HealthyStyle
	}
}

// mlagStyle colors the MLAG cell. Not running MLAG at all is unremarkable;
// running it in any state but active/enabled is a fault.
func mlagStyle(state string) lipgloss.Style {
	switch state {
	case "active", "enabled":
		return HealthyStyle
	case "disabled", "n/a":
		return WarningStyle
	default:
		return CriticalStyle
	}
}

// bgpStyle colors the BGP cell by adjacency health.
func bgpStyle(established, total int) lipgloss.Style {
	switch {
	case total == 0:
		return WarningStyle
	case established == total:
		return HealthyStyle
	case established == 0:
		return CriticalStyle
	default:
		return WarningStyle
	}
}

// linkStyle colors the interface summary cell.
func linkStyle(up, total int) lipgloss.Style {
	switch {
	case total == 0:
		return WarningStyle
	case up == 0:
		return CriticalStyle
	default:
		return HealthyStyle
	}
}
