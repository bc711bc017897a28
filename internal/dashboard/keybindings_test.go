package dashboard

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestSortOrder_String(t *testing.T) {
	tests := []struct {
		order  SortOrder
		expect string
	}{
		{SortByDefault, "default"},
		{SortByName, "name"},
		{SortByRole, "role"},
		{SortByCPU, "CPU"},
		{SortOrder(99), "default"},
	}

	for _, tt := range tests {
		t.Run(tt.expect, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.order.String())
		})
	}
}

func TestSortOrder_CycleComplete(t *testing.T) {
	order := SortByDefault
	for i := 0; i < 4; i++ {
		order = order.Next()
	}
	assert.Equal(t, SortByDefault, order)
}

func TestNavigationKeys(t *testing.T) {
	m := NewModel(newTestStore(), nil, time.Second)
	require.Equal(t, 0, m.selected)

	handled, _ := m.HandleKeyMsg(keyMsg("j"))
	assert.True(t, handled)
	assert.Equal(t, 1, m.selected)

	m.HandleKeyMsg(keyMsg("down"))
	assert.Equal(t, 2, m.selected)

	// Does not run past the end
	m.HandleKeyMsg(keyMsg("j"))
	assert.Equal(t, 2, m.selected)

	m.HandleKeyMsg(keyMsg("k"))
	assert.Equal(t, 1, m.selected)

	m.HandleKeyMsg(keyMsg("home"))
	assert.Equal(t, 0, m.selected)

	// Does not run past the start
	m.HandleKeyMsg(keyMsg("up"))
	assert.Equal(t, 0, m.selected)

	m.HandleKeyMsg(keyMsg("end"))
	assert.Equal(t, 2, m.selected)
}

func TestRefreshKeyKicksPollers(t *testing.T) {
	refresher := &fakeRefresher{}
	m := NewModel(newTestStore(), refresher, time.Second)

	handled, _ := m.HandleKeyMsg(keyMsg("r"))
	assert.True(t, handled)
	assert.Equal(t, 1, refresher.kicks)
}

func TestRefreshKeyWithoutRefresher(t *testing.T) {
	m := NewModel(newTestStore(), nil, time.Second)
	handled, _ := m.HandleKeyMsg(keyMsg("r"))
	assert.True(t, handled)
}

func TestSortKeyCyclesOrder(t *testing.T) {
	m := NewModel(newTestStore(), nil, time.Second)

	m.HandleKeyMsg(keyMsg("s"))
	assert.Equal(t, SortByName, m.sortOrder)
	assert.Equal(t, "leaf1", m.entries[0].Target.Name)

	m.HandleKeyMsg(keyMsg("s"))
	assert.Equal(t, SortByRole, m.sortOrder)
}

func TestEnterAndEscToggleDetailView(t *testing.T) {
	m := NewModel(newTestStore(), nil, time.Second)
	assert.Equal(t, ViewList, m.viewMode)

	m.HandleKeyMsg(keyMsg("enter"))
	assert.Equal(t, ViewDetail, m.viewMode)

	m.HandleKeyMsg(keyMsg("esc"))
	assert.Equal(t, ViewList, m.viewMode)
}

func TestHelpOverlayToggle(t *testing.T) {
	m := NewModel(newTestStore(), nil, time.Second)

	m.HandleKeyMsg(keyMsg("?"))
	assert.True(t, m.showHelp)

	// Esc closes help without leaving the current view
	m.HandleKeyMsg(keyMsg("esc"))
	assert.False(t, m.showHelp)

	m.HandleKeyMsg(keyMsg("?"))
	m.HandleKeyMsg(keyMsg("?"))
	assert.False(t, m.showHelp)
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c"} {
		t.Run(key, func(t *testing.T) {
			m := NewModel(newTestStore(), nil, time.Second)
			msg := keyMsg(key)
			if key == "ctrl+c" {
				msg = tea.KeyMsg{Type: tea.KeyCtrlC}
			}
			handled, cmd := m.HandleKeyMsg(msg)
			assert.True(t, handled)
			assert.NotNil(t, cmd)
			assert.True(t, m.quitting)
		})
	}
}

func TestUnhandledKeyFallsThrough(t *testing.T) {
	m := NewModel(newTestStore(), nil, time.Second)
	handled, cmd := m.HandleKeyMsg(keyMsg("x"))
	assert.False(t, handled)
	assert.Nil(t, cmd)
}
