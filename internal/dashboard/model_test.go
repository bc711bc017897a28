package dashboard

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabriclab/fabric-pulse/internal/config"
	"github.com/fabriclab/fabric-pulse/internal/eapi"
	"github.com/fabriclab/fabric-pulse/internal/state"
)

// fakeRefresher records Kick calls.
type fakeRefresher struct {
	kicks int
}

func (f *fakeRefresher) Kick() { f.kicks++ }

func newTestStore() *state.Store {
	return state.NewStore([]config.Target{
		{Name: "spine1", Host: "172.20.20.11", Role: "spine"},
		{Name: "leaf1", Host: "172.20.20.21", Role: "leaf"},
		{Name: "leaf2", Host: "172.20.20.22", Role: "leaf"},
	})
}

func publishHealthy(store *state.Store, name string, cpu float64) {
	store.Publish(name, state.PollResult{
		State: &eapi.DeviceState{
			Model:       "cEOSLab",
			Version:     "4.32.1F",
			Uptime:      26*time.Hour + 15*time.Minute,
			CPUPercent:  cpu,
			Temperature: 45,
			MLAG:        "active",
			BGP:         eapi.BGPSummary{Established: 2, Total: 2},
			Interfaces:  eapi.InterfaceSummary{Up: 4},
		},
		CompletedAt: time.Now(),
		Seq:         1,
	})
}

func TestNewModelSamplesStore(t *testing.T) {
	store := newTestStore()
	publishHealthy(store, "spine1", 12)

	m := NewModel(store, nil, time.Second)
	require.Len(t, m.entries, 3)
	assert.Equal(t, 0, m.selected)
	assert.Equal(t, 1, m.HealthyCount())
	assert.Equal(t, SortByDefault, m.sortOrder)
}

func TestFrameTickResamples(t *testing.T) {
	store := newTestStore()
	m := NewModel(store, nil, time.Second)
	assert.Equal(t, 0, m.HealthyCount())

	publishHealthy(store, "leaf1", 20)
	updated, cmd := m.Update(frameTickMsg(time.Now()))
	m = updated.(Model)

	assert.Equal(t, 1, m.HealthyCount())
	assert.NotNil(t, cmd, "frame tick must schedule the next frame")
}

func TestSortByNameAndRole(t *testing.T) {
	store := newTestStore()
	m := NewModel(store, nil, time.Second)

	m.sortOrder = SortByName
	m.sortEntries()
	assert.Equal(t, "leaf1", m.entries[0].Target.Name)
	assert.Equal(t, "spine1", m.entries[2].Target.Name)

	m.sortOrder = SortByRole
	m.sortEntries()
	assert.Equal(t, "leaf", m.entries[0].Target.Role)
	assert.Equal(t, "spine", m.entries[2].Target.Role)
}

func TestSortByCPUDescendingWithMissingDataLast(t *testing.T) {
	store := newTestStore()
	publishHealthy(store, "leaf1", 90)
	publishHealthy(store, "leaf2", 30)
	// spine1 never polled

	m := NewModel(store, nil, time.Second)
	m.sortOrder = SortByCPU
	m.sortEntries()

	assert.Equal(t, "leaf1", m.entries[0].Target.Name)
	assert.Equal(t, "leaf2", m.entries[1].Target.Name)
	assert.Equal(t, "spine1", m.entries[2].Target.Name)
}

func TestSortPreservesSelection(t *testing.T) {
	store := newTestStore()
	m := NewModel(store, nil, time.Second)

	// Select leaf2 (index 2 in configured order)
	m.selected = 2
	m.sortOrder = SortByName
	m.sortEntries()

	entry, ok := m.SelectedEntry()
	require.True(t, ok)
	assert.Equal(t, "leaf2", entry.Target.Name)
}

func TestWindowSizeInitializesViewport(t *testing.T) {
	store := newTestStore()
	m := NewModel(store, nil, time.Second)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)

	assert.True(t, m.viewportReady)
	assert.Equal(t, 120, m.detailViewport.Width)
}

func TestInterruptSignalQuitsCleanly(t *testing.T) {
	store := newTestStore()
	m := NewModel(store, nil, time.Second)

	// SIGINT arrives as an InterruptMsg, not a ctrl+c key press
	updated, cmd := m.Update(tea.InterruptMsg{})
	m = updated.(Model)

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestQuitProducesEmptyView(t *testing.T) {
	store := newTestStore()
	m := NewModel(store, nil, time.Second)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = updated.(Model)

	assert.NotNil(t, cmd)
	assert.Empty(t, m.View())
}

func TestSelectedEntryOutOfRange(t *testing.T) {
	m := NewModel(state.NewStore(nil), nil, time.Second)
	_, ok := m.SelectedEntry()
	assert.False(t, ok)
}
