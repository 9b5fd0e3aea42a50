// Package session owns the monitoring lifecycle: the active address list,
// the polling timer, and the busy flag that keeps fetch cycles from
// overlapping. At most one session is live per controller; starting a new
// session supersedes the previous timer.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/poly-watch/pkg/polymarket"
)

// Never is the last-updated sentinel shown while no snapshot has landed.
const Never = "Never"

// FetchFunc produces a snapshot for an address set. Injected so tests and
// alternate transports can stand in for the Polymarket client.
type FetchFunc func(ctx context.Context, addresses []string) (*polymarket.Snapshot, error)

type Controller struct {
	fetch      FetchFunc
	onSnapshot func(*polymarket.Snapshot)
	onError    func(error)

	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	addresses  []string
	interval   time.Duration
	sessionID  string
	generation uint64
	busy       bool
	busyGen    uint64
	lastAt     time.Time
	hasLast    bool
}

// New builds a controller. onSnapshot receives every rendered-worthy result;
// onError receives fetch failures (the session stays active and retries on
// the next tick). Either callback may be nil.
func New(fetch FetchFunc, onSnapshot func(*polymarket.Snapshot), onError func(error)) *Controller {
	return &Controller{fetch: fetch, onSnapshot: onSnapshot, onError: onError}
}

// Start begins (or restarts) a monitoring session. Any prior timer is
// cancelled first, so only one timer ever exists. The interval is read once
// here; changing it later does not touch a running session. An immediate
// fetch fires before the first tick.
func (c *Controller) Start(addresses []string, interval time.Duration) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.ctx, c.cancel = ctx, cancel
	c.generation++
	gen := c.generation
	c.sessionID = uuid.NewString()
	c.addresses = append([]string(nil), addresses...)
	c.interval = interval
	id := c.sessionID
	c.mu.Unlock()

	log.Info().
		Str("session", id).
		Int("wallets", len(addresses)).
		Dur("interval", interval).
		Msg("▶ monitoring started")

	go c.run(ctx, gen, addresses, interval)
}

// Stop ends the active session: cancels the timer, clears the address list
// and resets last-updated to the Never sentinel. A fetch already in flight
// is allowed to finish but its result is discarded as stale.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.cancel == nil {
		c.mu.Unlock()
		return
	}
	c.cancel()
	c.ctx, c.cancel = nil, nil
	c.generation++
	c.addresses = nil
	c.lastAt = time.Time{}
	c.hasLast = false
	id := c.sessionID
	c.sessionID = ""
	c.mu.Unlock()

	log.Info().Str("session", id).Msg("■ monitoring stopped")
}

// Close is Stop for process teardown; it leaves no orphaned timer behind.
func (c *Controller) Close() {
	c.Stop()
}

func (c *Controller) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// Addresses returns a copy of the active address list.
func (c *Controller) Addresses() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.addresses...)
}

// Interval reports the tick interval the active session was started with.
func (c *Controller) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// LastUpdated reports when the latest snapshot landed. ok=false means never.
func (c *Controller) LastUpdated() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAt, c.hasLast
}

// LastUpdatedDisplay is LastUpdated for UI surfaces, with the Never sentinel.
func (c *Controller) LastUpdatedDisplay() string {
	if t, ok := c.LastUpdated(); ok {
		return t.UTC().Format("15:04:05")
	}
	return Never
}

// RefreshNow triggers an out-of-schedule fetch. Dropped silently when a
// cycle is already running or no session is active.
func (c *Controller) RefreshNow() {
	c.mu.Lock()
	if c.cancel == nil {
		c.mu.Unlock()
		return
	}
	ctx := c.ctx
	gen := c.generation
	addrs := append([]string(nil), c.addresses...)
	c.mu.Unlock()

	go c.poll(ctx, gen, addrs)
}

func (c *Controller) run(ctx context.Context, gen uint64, addresses []string, interval time.Duration) {
	c.poll(ctx, gen, addresses)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.poll(ctx, gen, addresses)
		}
	}
}

// poll runs one fetch+deliver cycle. The busy flag is scoped to the session
// generation: a tick that fires while this session's previous cycle is still
// in flight is dropped, and a result from a superseded session is discarded
// instead of overwriting a newer render.
func (c *Controller) poll(ctx context.Context, gen uint64, addresses []string) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	if c.busy && c.busyGen == gen {
		c.mu.Unlock()
		log.Debug().Msg("tick skipped: previous cycle still in flight")
		return
	}
	c.busy = true
	c.busyGen = gen
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.busyGen == gen {
			c.busy = false
		}
		c.mu.Unlock()
	}()

	snap, err := c.fetch(ctx, addresses)

	c.mu.Lock()
	stale := gen != c.generation
	if !stale && err == nil {
		c.lastAt = snap.RequestedAt
		c.hasLast = true
	}
	c.mu.Unlock()

	if stale {
		log.Debug().Msg("stale snapshot discarded")
		return
	}
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Warn().Err(err).Msg("snapshot fetch failed, will retry next tick")
		if c.onError != nil {
			c.onError(err)
		}
		return
	}
	if c.onSnapshot != nil {
		c.onSnapshot(snap)
	}
}
