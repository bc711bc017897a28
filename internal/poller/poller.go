// Package poller drives the per-device poll loops. Each device gets its own
// goroutine polling at a base interval, backing off exponentially while the
// device is failing, and publishing every outcome — success or failure — to
// the shared state store. Pollers never block each other: a dead switch
// slows only its own loop.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fabriclab/fabric-pulse/internal/config"
	"github.com/fabriclab/fabric-pulse/internal/eapi"
	"github.com/fabriclab/fabric-pulse/internal/logger"
	"github.com/fabriclab/fabric-pulse/internal/state"
)

// Fetcher retrieves one device's operational state. *eapi.Client satisfies
// this; tests substitute fakes.
type Fetcher interface {
	Fetch(ctx context.Context) (*eapi.DeviceState, error)
}

// Options tune one poll loop.
type Options struct {
	// Interval between cycle starts while the device is healthy.
	Interval time.Duration

	// Timeout bounds a single cycle. Always shorter lived than the loop:
	// a cycle that overruns is cancelled, reported, and the loop moves on.
	Timeout time.Duration

	// MaxBackoff caps the failure backoff. Delay doubles per consecutive
	// failure starting from Interval and snaps back on the first success.
	MaxBackoff time.Duration
}

// Poller runs the poll loop for a single device.
type Poller struct {
	target config.Target
	fetch  Fetcher
	store  *state.Store
	opts   Options
	log    logger.Logger

	kick chan struct{}
	seq  uint64
}

// New creates a poller for target backed by fetch, publishing into store.
func New(target config.Target, fetch Fetcher, store *state.Store, opts Options, log logger.Logger) *Poller {
	if log == nil {
		log = logger.Noop()
	}
	if opts.MaxBackoff < opts.Interval {
		opts.MaxBackoff = opts.Interval
	}
	return &Poller{
		target: target,
		fetch:  fetch,
		store:  store,
		opts:   opts,
		log:    log,
		kick:   make(chan struct{}, 1),
	}
}

// Kick requests an immediate cycle, cutting short any backoff wait. Safe to
// call from any goroutine; redundant kicks coalesce.
func (p *Poller) Kick() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled. The first cycle starts immediately.
// Cycles never overlap: the next wait starts only after the current cycle
// has completed and published.
func (p *Poller) Run(ctx context.Context) {
	delay := p.opts.Interval
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.kick:
			drainTimer(timer)
		case <-timer.C:
		}

		result := p.poll(ctx)
		if ctx.Err() != nil {
			// Shutdown raced the cycle; don't publish a spurious failure.
			return
		}
		p.store.Publish(p.target.Name, result)

		if result.State != nil {
			delay = p.opts.Interval
		} else {
			p.log.Debug("poll %s failed (streak backoff %s): %s", p.target.Name, delay, result.Err)
			if delay < p.opts.MaxBackoff {
				delay *= 2
				if delay > p.opts.MaxBackoff {
					delay = p.opts.MaxBackoff
				}
			}
		}
		timer.Reset(delay)
	}
}

// poll runs one bounded cycle and wraps the outcome.
func (p *Poller) poll(ctx context.Context) state.PollResult {
	cctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	p.seq++
	devState, err := p.fetch.Fetch(cctx)
	result := state.PollResult{CompletedAt: time.Now(), Seq: p.seq}
	if err != nil {
		result.Err = eapi.AsError(err)
		if result.Err.Kind == eapi.KindUnknown && errors.Is(err, context.DeadlineExceeded) {
			result.Err = &eapi.Error{Kind: eapi.KindTimeout, Message: "cycle exceeded " + p.opts.Timeout.String(), Cause: err}
		}
		return result
	}
	result.State = devState
	return result
}

func drainTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

// Group owns the poll loops for a whole fabric: one Poller per device,
// started together and shut down together.
type Group struct {
	pollers []*Poller
	log     logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewGroup creates an empty group.
func NewGroup(log logger.Logger) *Group {
	if log == nil {
		log = logger.Noop()
	}
	return &Group{log: log}
}

// Add registers a poller. Must be called before Start.
func (g *Group) Add(p *Poller) {
	g.pollers = append(g.pollers, p)
}

// Len returns the number of registered pollers.
func (g *Group) Len() int {
	return len(g.pollers)
}

// Start launches every poll loop. The group derives its own cancellation
// from ctx; Stop cancels it explicitly.
func (g *Group) Start(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done != nil {
		return
	}

	ctx, g.cancel = context.WithCancel(ctx)
	g.done = make(chan struct{})

	var wg sync.WaitGroup
	for _, p := range g.pollers {
		wg.Add(1)
		go func(p *Poller) {
			defer wg.Done()
			p.Run(ctx)
		}(p)
	}
	go func() {
		wg.Wait()
		close(g.done)
	}()
	g.log.Debug("started %d pollers", len(g.pollers))
}

// Kick broadcasts an immediate-refresh request to every poller.
func (g *Group) Kick() {
	for _, p := range g.pollers {
		p.Kick()
	}
}

// Stop cancels all loops and waits up to grace for them to finish. Loops
// mid-cycle get the grace period to complete their HTTP round trip; after
// that Stop returns false and the process exits anyway.
func (g *Group) Stop(grace time.Duration) bool {
	g.mu.Lock()
	cancel, done := g.cancel, g.done
	g.mu.Unlock()

	if cancel == nil {
		return true
	}
	cancel()

	select {
	case <-done:
		return true
	case <-time.After(grace):
		g.log.Warn("pollers did not stop within %s", grace)
		return false
	}
}
