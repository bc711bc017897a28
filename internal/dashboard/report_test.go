package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fabriclab/fabric-pulse/internal/eapi"
	"github.com/fabriclab/fabric-pulse/internal/state"
)

func TestRenderReport(t *testing.T) {
	store := newTestStore()
	publishHealthy(store, "spine1", 15)
	publishHealthy(store, "leaf1", 30)
	store.Publish("leaf2", state.PollResult{
		Err:         &eapi.Error{Kind: eapi.KindConnectionFailed, Message: "refused"},
		CompletedAt: time.Now(),
		Seq:         1,
	})

	out := RenderReport(store.Read())

	assert.Contains(t, out, "spine1")
	assert.Contains(t, out, "cEOSLab")
	assert.Contains(t, out, "4.32.1F")
	assert.Contains(t, out, "unreachable")
	assert.Contains(t, out, "2/3 devices healthy")
	assert.Contains(t, out, "✗")
}

func TestRenderReportAllHealthy(t *testing.T) {
	store := newTestStore()
	for _, name := range []string{"spine1", "leaf1", "leaf2"} {
		publishHealthy(store, name, 10)
	}

	out := RenderReport(store.Read())
	assert.Contains(t, out, "3/3 devices healthy")
	assert.Contains(t, out, "✓")
}

func TestUnreached(t *testing.T) {
	store := newTestStore()
	publishHealthy(store, "spine1", 10)

	// leaf1 failed, leaf2 still pending: both count as unreached
	store.Publish("leaf1", state.PollResult{
		Err:         &eapi.Error{Kind: eapi.KindTimeout, Message: "deadline"},
		CompletedAt: time.Now(),
		Seq:         1,
	})

	assert.Equal(t, 2, Unreached(store.Read()))
}
