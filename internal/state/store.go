// Package state holds the fabric snapshot the dashboard renders. Pollers
// publish per-device results as they complete; readers take a consistent
// copy of the whole fabric at frame time. The two sides never share a lock
// longer than a copy.
package state

import (
	"sync"
	"time"

	"github.com/fabriclab/fabric-pulse/internal/config"
	"github.com/fabriclab/fabric-pulse/internal/eapi"
)

// PollResult is the outcome of one poll cycle for one device. Exactly one
// of State and Err is set.
type PollResult struct {
	State *eapi.DeviceState
	Err   *eapi.Error

	// CompletedAt is when the cycle finished. A zero value means the device
	// has not completed its first cycle yet.
	CompletedAt time.Time

	// Seq increments per device with each published cycle.
	Seq uint64
}

// Pending reports whether the device is still waiting on its first cycle.
func (r PollResult) Pending() bool {
	return r.CompletedAt.IsZero()
}

// Entry is one device's row in the snapshot: the latest result plus the
// last state that was known good. When a device starts failing the
// dashboard keeps showing its last good state flagged as stale instead of
// blanking the row.
type Entry struct {
	Target config.Target
	Result PollResult

	LastGood   *eapi.DeviceState
	LastGoodAt time.Time

	// Failures counts consecutive failed cycles; reset on success.
	Failures int
}

// Stale reports whether the entry is showing retained data from an earlier
// successful cycle.
func (e Entry) Stale() bool {
	return e.Result.Err != nil && e.LastGood != nil
}

// Snapshot is a consistent copy of every device entry, ordered the way the
// targets were configured.
type Snapshot struct {
	Entries []Entry
	TakenAt time.Time
}

// Store aggregates poll results. One writer goroutine per device, any
// number of readers.
type Store struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*Entry
}

// NewStore seeds one pending entry per target, preserving target order.
// Unknown devices can never appear later: Publish for an unseeded name is
// dropped.
func NewStore(targets []config.Target) *Store {
	s := &Store{
		entries: make(map[string]*Entry, len(targets)),
	}
	for _, t := range targets {
		s.order = append(s.order, t.Name)
		s.entries[t.Name] = &Entry{Target: t}
	}
	return s
}

// Publish replaces the named device's entry with the outcome of a completed
// cycle. Whole-entry replacement: a reader sees either the previous cycle or
// this one, never a blend.
func (s *Store) Publish(name string, result PollResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[name]
	if !ok {
		return
	}

	entry.Result = result
	if result.State != nil {
		entry.LastGood = result.State
		entry.LastGoodAt = result.CompletedAt
		entry.Failures = 0
	} else {
		entry.Failures++
	}
}

// Read returns a consistent copy of every entry. The copy is the caller's;
// subsequent publishes do not mutate it.
func (s *Store) Read() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Entries: make([]Entry, 0, len(s.order)),
		TakenAt: time.Now(),
	}
	for _, name := range s.order {
		snap.Entries = append(snap.Entries, *s.entries[name])
	}
	return snap
}

// Len returns the number of tracked devices.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
