// Package dashboard renders the live fabric view. The model never talks to
// devices: pollers publish into the state store on their own schedule, and
// the dashboard samples the store once per frame tick. A dead switch can
// never stall a frame.
package dashboard

import (
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fabriclab/fabric-pulse/internal/state"
)

// Refresher requests an out-of-band poll cycle. The poller group satisfies
// this; tests substitute fakes.
type Refresher interface {
	Kick()
}

// spinnerInterval is the animation frame rate for the connecting spinner.
const spinnerInterval = 150 * time.Millisecond

// Model is the Bubble Tea model for the fabric dashboard.
type Model struct {
	store     *state.Store
	refresher Refresher

	// entries is the last sampled snapshot, in display order.
	entries []state.Entry
	sampled time.Time

	selected  int
	width     int
	height    int
	frameRate time.Duration
	quitting  bool
	sortOrder SortOrder
	viewMode  ViewMode
	showHelp  bool

	// Animation state
	spinnerFrame int

	// Detail view viewport for scrollable port listings
	detailViewport viewport.Model
	viewportReady  bool
}

// frameTickMsg signals a dashboard frame refresh.
type frameTickMsg time.Time

// spinnerTickMsg signals a spinner animation frame update.
type spinnerTickMsg time.Time

// NewModel creates a dashboard over store, refreshing the view every
// frameRate. refresher may be nil when force-refresh isn't wired up.
func NewModel(store *state.Store, refresher Refresher, frameRate time.Duration) Model {
	if frameRate <= 0 {
		frameRate = time.Second
	}
	m := Model{
		store:     store,
		refresher: refresher,
		frameRate: frameRate,
		sortOrder: SortByDefault,
	}
	m.sample()
	if len(m.entries) > 0 {
		m.selected = 0
	}
	return m
}

// Init starts the frame and spinner timers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.frameTickCmd(), m.spinnerTickCmd())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case tea.InterruptMsg:
		// SIGINT delivered out-of-band (not as a ctrl+c key press). Quit
		// cleanly so shutdown proceeds like any other exit.
		m.quitting = true
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		footerHeight := 2
		viewportHeight := m.height - headerHeight - footerHeight
		if viewportHeight < 1 {
			viewportHeight = 1
		}

		if !m.viewportReady {
			m.detailViewport = viewport.New(m.width, viewportHeight)
			m.detailViewport.YPosition = headerHeight
			m.viewportReady = true
		} else {
			m.detailViewport.Width = m.width
			m.detailViewport.Height = viewportHeight
		}

		if m.viewMode == ViewDetail {
			m.updateDetailViewportContent()
		}

	case frameTickMsg:
		m.sample()
		if m.viewMode == ViewDetail {
			m.updateDetailViewportContent()
		}
		return m, m.frameTickCmd()

	case spinnerTickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % 10000
		return m, m.spinnerTickCmd()
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	if m.viewMode == ViewDetail {
		return m.renderDetailView()
	}
	return m.renderDashboard()
}

// frameTickCmd returns a command that sends a frame tick after the frame
// interval.
func (m Model) frameTickCmd() tea.Cmd {
	return tea.Tick(m.frameRate, func(t time.Time) tea.Msg {
		return frameTickMsg(t)
	})
}

// spinnerTickCmd returns a command that sends a spinner tick for animation.
func (m Model) spinnerTickCmd() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

// sample takes a fresh snapshot from the store and re-applies the sort,
// preserving the selected device across reorderings.
func (m *Model) sample() {
	snap := m.store.Read()
	m.entries = snap.Entries
	m.sampled = snap.TakenAt
	m.sortEntries()
}

// SelectedEntry returns the currently selected device entry.
func (m Model) SelectedEntry() (state.Entry, bool) {
	if m.selected >= 0 && m.selected < len(m.entries) {
		return m.entries[m.selected], true
	}
	return state.Entry{}, false
}

// HealthyCount returns the number of devices whose latest cycle succeeded.
func (m Model) HealthyCount() int {
	count := 0
	for _, e := range m.entries {
		if e.Result.State != nil {
			count++
		}
	}
	return count
}

// ConnectingSpinner returns the current spinner character for the pending
// animation.
func (m Model) ConnectingSpinner() string {
	return ConnectingSpinnerFrames[m.spinnerFrame%len(ConnectingSpinnerFrames)]
}

// sortEntries orders the entries per the current sort order and keeps the
// selection pinned to the same device.
func (m *Model) sortEntries() {
	if len(m.entries) == 0 {
		return
	}

	selectedName := ""
	if m.selected >= 0 && m.selected < len(m.entries) {
		selectedName = m.entries[m.selected].Target.Name
	}

	switch m.sortOrder {
	case SortByDefault:
		// Store order is configured order; nothing to do.

	case SortByName:
		sort.SliceStable(m.entries, func(i, j int) bool {
			return m.entries[i].Target.Name < m.entries[j].Target.Name
		})

	case SortByRole:
		sort.SliceStable(m.entries, func(i, j int) bool {
			if m.entries[i].Target.Role != m.entries[j].Target.Role {
				return m.entries[i].Target.Role < m.entries[j].Target.Role
			}
			return m.entries[i].Target.Name < m.entries[j].Target.Name
		})

	case SortByCPU:
		sort.SliceStable(m.entries, func(i, j int) bool {
			ci, cj := entryCPU(m.entries[i]), entryCPU(m.entries[j])
			if ci != cj {
				return ci > cj
			}
			return m.entries[i].Target.Name < m.entries[j].Target.Name
		})
	}

	if selectedName != "" {
		for i, e := range m.entries {
			if e.Target.Name == selectedName {
				m.selected = i
				break
			}
		}
	}
}

// entryCPU returns the CPU figure used for sorting; devices without data
// sink to the bottom.
func entryCPU(e state.Entry) float64 {
	if e.Result.State != nil {
		return e.Result.State.CPUPercent
	}
	if e.LastGood != nil {
		return e.LastGood.CPUPercent
	}
	return -2
}
