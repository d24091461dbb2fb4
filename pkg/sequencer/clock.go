package sequencer

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts wall-clock time so the tick loop can run against real time
// or a virtual clock.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After waits for the duration to elapse and then sends the current time.
	After(d time.Duration) <-chan time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

func (RealClock) Now() time.Time                         { return time.Now() }
func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// VirtualClock jumps forward instantly whenever something waits on it.
// A full trajectory runs in microseconds with exact tick timestamps.
type VirtualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewVirtualClock creates a VirtualClock set to the given time.
func NewVirtualClock(t time.Time) *VirtualClock {
	return &VirtualClock{now: t}
}

// Now returns the virtual time.
func (c *VirtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *VirtualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// After advances the clock by d and returns a channel that is already ready.
func (c *VirtualClock) After(d time.Duration) <-chan time.Time {
	if d > 0 {
		c.Advance(d)
	}
	ch := make(chan time.Time, 1)
	ch <- c.Now()
	return ch
}

// Rate keeps a loop running at a fixed frequency, sleeping until the next
// tick boundary on each call.
type Rate struct {
	clock  Clock
	period time.Duration
	last   time.Time
}

// NewRate creates a Rate anchored at the clock's current time.
func NewRate(clock Clock, hz int) *Rate {
	return &Rate{
		clock:  clock,
		period: time.Second / time.Duration(hz),
		last:   clock.Now(),
	}
}

// Period returns the tick period.
func (r *Rate) Period() time.Duration {
	return r.period
}

// Reset re-anchors tick boundaries at the current time.
func (r *Rate) Reset() {
	r.last = r.clock.Now()
}

// Sleep blocks until the next tick boundary. If the boundary has already
// passed the rate re-anchors at now instead of firing a burst of ticks.
func (r *Rate) Sleep(ctx context.Context) error {
	next := r.last.Add(r.period)
	now := r.clock.Now()
	if !now.Before(next) {
		r.last = now
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.clock.After(next.Sub(now)):
		r.last = next
		return nil
	}
}

// wait sleeps for d on the clock, returning early on cancellation.
func wait(ctx context.Context, clock Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-clock.After(d):
		return nil
	}
}
