package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poly-watch/pkg/polymarket"
)

const (
	addrA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	addrB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

// recorder is a FetchFunc that records every call.
type recorder struct {
	mu    sync.Mutex
	calls [][]string
	delay time.Duration
	err   error

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (r *recorder) fetch(ctx context.Context, addresses []string) (*polymarket.Snapshot, error) {
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		max := r.maxInFlight.Load()
		if n <= max || r.maxInFlight.CompareAndSwap(max, n) {
			break
		}
	}

	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	r.mu.Lock()
	r.calls = append(r.calls, append([]string(nil), addresses...))
	r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}
	return &polymarket.Snapshot{RequestedAt: time.Now().UTC()}, nil
}

func (r *recorder) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recorder) lastCalls(n int) [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) < n {
		n = len(r.calls)
	}
	return r.calls[len(r.calls)-n:]
}

func TestStartFiresImmediateFetch(t *testing.T) {
	rec := &recorder{}
	c := New(rec.fetch, nil, nil)
	defer c.Close()

	c.Start([]string{addrA}, time.Hour)

	require.Eventually(t, func() bool { return rec.callCount() == 1 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{addrA}, rec.lastCalls(1)[0])
	assert.True(t, c.IsActive())
}

func TestRestartSupersedesOldTimer(t *testing.T) {
	rec := &recorder{}
	c := New(rec.fetch, nil, nil)
	defer c.Close()

	c.Start([]string{addrA}, 20*time.Millisecond)
	c.Start([]string{addrB}, 20*time.Millisecond)

	// let several ticks elapse, then confirm only the new address polls
	time.Sleep(150 * time.Millisecond)
	for _, call := range rec.lastCalls(3) {
		assert.Equal(t, []string{addrB}, call)
	}
	assert.True(t, c.IsActive())
}

func TestOnlyOneTimerAfterRestart(t *testing.T) {
	rec := &recorder{}
	c := New(rec.fetch, nil, nil)
	defer c.Close()

	for i := 0; i < 5; i++ {
		c.Start([]string{addrB}, 50*time.Millisecond)
	}

	rec.mu.Lock()
	rec.calls = nil
	rec.mu.Unlock()

	// one live timer at 50ms means roughly 5 ticks in 250ms, not 25
	time.Sleep(260 * time.Millisecond)
	assert.LessOrEqual(t, rec.callCount(), 8)
}

func TestStopCancelsTimerAndResetsLastUpdated(t *testing.T) {
	rec := &recorder{}
	var delivered atomic.Int32
	c := New(rec.fetch, func(*polymarket.Snapshot) { delivered.Add(1) }, nil)

	c.Start([]string{addrA}, 20*time.Millisecond)
	require.Eventually(t, func() bool { return delivered.Load() >= 1 },
		time.Second, 5*time.Millisecond)

	_, ok := c.LastUpdated()
	require.True(t, ok)

	c.Stop()
	assert.False(t, c.IsActive())
	assert.Empty(t, c.Addresses())

	_, ok = c.LastUpdated()
	assert.False(t, ok)
	assert.Equal(t, Never, c.LastUpdatedDisplay())

	n := rec.callCount()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, n, rec.callCount(), "no further fetches after Stop")
}

func TestStopIdleIsNoop(t *testing.T) {
	c := New((&recorder{}).fetch, nil, nil)
	c.Stop()
	assert.False(t, c.IsActive())
}

func TestBusyFlagDropsOverlappingTicks(t *testing.T) {
	rec := &recorder{delay: 120 * time.Millisecond}
	c := New(rec.fetch, nil, nil)
	defer c.Close()

	c.Start([]string{addrA}, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, int32(1), rec.maxInFlight.Load(),
		"the loop must never run two fetches concurrently")
	assert.LessOrEqual(t, rec.callCount(), 4, "overlapping ticks are dropped, not queued")
}

func TestStaleSnapshotNotDeliveredAfterStop(t *testing.T) {
	release := make(chan struct{})
	var delivered atomic.Int32

	fetch := func(ctx context.Context, addresses []string) (*polymarket.Snapshot, error) {
		<-release
		return &polymarket.Snapshot{RequestedAt: time.Now().UTC()}, nil
	}

	c := New(fetch, func(*polymarket.Snapshot) { delivered.Add(1) }, nil)
	c.Start([]string{addrA}, time.Hour)

	time.Sleep(20 * time.Millisecond) // let the in-flight fetch begin
	c.Stop()
	close(release)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), delivered.Load(),
		"a fetch completing after Stop must not be rendered")
}

func TestFetchErrorKeepsSessionActive(t *testing.T) {
	rec := &recorder{err: errors.New("request failed with status 502")}
	var gotErr atomic.Int32
	c := New(rec.fetch, nil, func(err error) {
		assert.Contains(t, err.Error(), "502")
		gotErr.Add(1)
	})
	defer c.Close()

	c.Start([]string{addrA}, 20*time.Millisecond)

	require.Eventually(t, func() bool { return gotErr.Load() >= 2 },
		time.Second, 5*time.Millisecond, "loop retries on the tick after a failure")
	assert.True(t, c.IsActive())

	_, ok := c.LastUpdated()
	assert.False(t, ok, "failed fetches do not bump last-updated")
}

func TestRefreshNowRespectsBusyFlag(t *testing.T) {
	rec := &recorder{delay: 150 * time.Millisecond}
	c := New(rec.fetch, nil, nil)
	defer c.Close()

	c.Start([]string{addrA}, time.Hour)
	time.Sleep(20 * time.Millisecond)
	for i := 0; i < 5; i++ {
		c.RefreshNow()
	}

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), rec.maxInFlight.Load())
	assert.LessOrEqual(t, rec.callCount(), 2)
}

func TestRefreshNowIdleIsNoop(t *testing.T) {
	rec := &recorder{}
	c := New(rec.fetch, nil, nil)

	c.RefreshNow()
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, rec.callCount())
}
