package dashboard

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func init() {
	// Force TrueColor output in tests so we can verify ANSI color codes
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestHealthStyle(t *testing.T) {
	tests := []struct {
		name   string
		cpu    float64
		temp   float64
		expect lipgloss.Style
	}{
		{"cool and idle", 12, 45, HealthyStyle},
		{"cpu pegged", 85, 45, CriticalStyle},
		{"cpu at threshold", 80, 45, CriticalStyle},
		{"running hot", 10, 81, CriticalStyle},
		{"both unknown", -1, -1, WarningStyle},
		{"cpu unknown temp fine", -1, 50, HealthyStyle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := healthStyle(tt.cpu, tt.temp)
			assert.Equal(t, tt.expect.Render("x"), got.Render("x"))
		})
	}
}

func TestMlagStyle(t *testing.T) {
	assert.Equal(t, HealthyStyle.Render("x"), mlagStyle("active").Render("x"))
	assert.Equal(t, HealthyStyle.Render("x"), mlagStyle("enabled").Render("x"))
	assert.Equal(t, WarningStyle.Render("x"), mlagStyle("disabled").Render("x"))
	assert.Equal(t, WarningStyle.Render("x"), mlagStyle("n/a").Render("x"))
	assert.Equal(t, CriticalStyle.Render("x"), mlagStyle("inactive").Render("x"))
}

func TestBgpStyle(t *testing.T) {
	assert.Equal(t, WarningStyle.Render("x"), bgpStyle(0, 0).Render("x"))
	assert.Equal(t, HealthyStyle.Render("x"), bgpStyle(4, 4).Render("x"))
	assert.Equal(t, WarningStyle.Render("x"), bgpStyle(2, 4).Render("x"))
	assert.Equal(t, CriticalStyle.Render("x"), bgpStyle(0, 4).Render("x"))
}

func TestLinkStyle(t *testing.T) {
	assert.Equal(t, WarningStyle.Render("x"), linkStyle(0, 0).Render("x"))
	assert.Equal(t, HealthyStyle.Render("x"), linkStyle(3, 5).Render("x"))
	assert.Equal(t, CriticalStyle.Render("x"), linkStyle(0, 5).Render("x"))
}

func TestHealthyRowRendersGreen(t *testing.T) {
	// TrueColor profile emits the raw RGB sequence for the healthy color
	out := healthStyle(10, 40).Render("ok")
	assert.Contains(t, out, "46;204;113") // #2ECC71
}
