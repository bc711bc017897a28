package state

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabriclab/fabric-pulse/internal/config"
	"github.com/fabriclab/fabric-pulse/internal/eapi"
)

func testTargets() []config.Target {
	return []config.Target{
		{Name: "spine1", Host: "172.20.20.11", Role: "spine"},
		{Name: "leaf1", Host: "172.20.20.21", Role: "leaf"},
		{Name: "leaf2", Host: "172.20.20.22", Role: "leaf"},
	}
}

func TestStoreSeedsPendingEntries(t *testing.T) {
	store := NewStore(testTargets())
	snap := store.Read()

	require.Len(t, snap.Entries, 3)
	assert.Equal(t, 3, store.Len())

	// Configured order is preserved
	assert.Equal(t, "spine1", snap.Entries[0].Target.Name)
	assert.Equal(t, "leaf1", snap.Entries[1].Target.Name)
	assert.Equal(t, "leaf2", snap.Entries[2].Target.Name)

	for _, entry := range snap.Entries {
		assert.True(t, entry.Result.Pending())
		assert.Nil(t, entry.LastGood)
		assert.False(t, entry.Stale())
	}
}

func TestStorePublishSuccess(t *testing.T) {
	store := NewStore(testTargets())
	good := &eapi.DeviceState{Model: "cEOSLab", Version: "4.32.1F"}
	now := time.Now()

	store.Publish("leaf1", PollResult{State: good, CompletedAt: now, Seq: 1})

	snap := store.Read()
	entry := snap.Entries[1]
	assert.False(t, entry.Result.Pending())
	assert.Same(t, good, entry.Result.State)
	assert.Same(t, good, entry.LastGood)
	assert.Equal(t, now, entry.LastGoodAt)
	assert.Zero(t, entry.Failures)

	// Other devices untouched
	assert.True(t, snap.Entries[0].Result.Pending())
	assert.True(t, snap.Entries[2].Result.Pending())
}

func TestStoreRetainsLastGoodAcrossFailures(t *testing.T) {
	store := NewStore(testTargets())
	good := &eapi.DeviceState{Model: "cEOSLab", Version: "4.32.1F"}
	goodAt := time.Now()

	store.Publish("spine1", PollResult{State: good, CompletedAt: goodAt, Seq: 1})
	store.Publish("spine1", PollResult{
		Err:         &eapi.Error{Kind: eapi.KindTimeout, Message: "deadline"},
		CompletedAt: goodAt.Add(3 * time.Second),
		Seq:         2,
	})
	store.Publish("spine1", PollResult{
		Err:         &eapi.Error{Kind: eapi.KindConnectionFailed, Message: "refused"},
		CompletedAt: goodAt.Add(9 * time.Second),
		Seq:         3,
	})

	entry := store.Read().Entries[0]
	require.NotNil(t, entry.Result.Err)
	assert.Equal(t, eapi.KindConnectionFailed, entry.Result.Err.Kind)
	assert.Same(t, good, entry.LastGood)
	assert.Equal(t, goodAt, entry.LastGoodAt)
	assert.Equal(t, 2, entry.Failures)
	assert.True(t, entry.Stale())
}

func TestStoreFailureBeforeFirstSuccess(t *testing.T) {
	store := NewStore(testTargets())
	store.Publish("leaf2", PollResult{
		Err:         &eapi.Error{Kind: eapi.KindAuthFailed, Message: "rejected"},
		CompletedAt: time.Now(),
		Seq:         1,
	})

	entry := store.Read().Entries[2]
	assert.Nil(t, entry.LastGood)
	assert.False(t, entry.Stale())
	assert.Equal(t, 1, entry.Failures)
}

func TestStoreSuccessClearsFailureStreak(t *testing.T) {
	store := NewStore(testTargets())
	store.Publish("leaf1", PollResult{Err: &eapi.Error{Kind: eapi.KindTimeout}, CompletedAt: time.Now(), Seq: 1})
	store.Publish("leaf1", PollResult{Err: &eapi.Error{Kind: eapi.KindTimeout}, CompletedAt: time.Now(), Seq: 2})
	store.Publish("leaf1", PollResult{State: &eapi.DeviceState{}, CompletedAt: time.Now(), Seq: 3})

	entry := store.Read().Entries[1]
	assert.Zero(t, entry.Failures)
	assert.False(t, entry.Stale())
}

func TestStoreIgnoresUnknownDevice(t *testing.T) {
	store := NewStore(testTargets())
	store.Publish("ghost", PollResult{State: &eapi.DeviceState{}, CompletedAt: time.Now()})

	assert.Len(t, store.Read().Entries, 3)
}

func TestStoreReadIsACopy(t *testing.T) {
	store := NewStore(testTargets())
	before := store.Read()

	store.Publish("spine1", PollResult{State: &eapi.DeviceState{Model: "new"}, CompletedAt: time.Now(), Seq: 1})

	assert.True(t, before.Entries[0].Result.Pending(), "earlier snapshot must not observe later publishes")
	assert.False(t, store.Read().Entries[0].Result.Pending())
}

func TestStoreConcurrentPublishAndRead(t *testing.T) {
	targets := make([]config.Target, 8)
	for i := range targets {
		targets[i] = config.Target{Name: fmt.Sprintf("leaf%d", i), Host: fmt.Sprintf("10.0.0.%d", i)}
	}
	store := NewStore(targets)

	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			for seq := uint64(1); seq <= 100; seq++ {
				store.Publish(name, PollResult{
					State:       &eapi.DeviceState{Version: fmt.Sprint(seq)},
					CompletedAt: time.Now(),
					Seq:         seq,
				})
			}
		}(target.Name)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			snap := store.Read()
			for _, entry := range snap.Entries {
				// A torn entry would pair a state with the wrong sequence.
				if entry.Result.State != nil {
					assert.Equal(t, fmt.Sprint(entry.Result.Seq), entry.Result.State.Version)
				}
			}
		}
	}()

	wg.Wait()
	<-done

	for i, entry := range store.Read().Entries {
		assert.EqualValues(t, 100, entry.Result.Seq, "device %d", i)
	}
}
