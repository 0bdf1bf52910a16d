// Package throttle spaces out requests to a remote source.
package throttle

import (
	"context"
	"sync"
	"time"
)

// Throttle enforces a minimum interval between calls. It behaves like a token
// bucket with capacity one: a caller that arrives early is delayed until its
// slot, never rejected.
type Throttle struct {
	interval time.Duration // Minimum spacing between calls
	next     time.Time     // Earliest start of the next call
	mu       sync.Mutex
	now      func() time.Time
}

// New creates a Throttle. A non-positive interval disables throttling.
func New(interval time.Duration) *Throttle {
	return &Throttle{
		interval: interval,
		now:      time.Now,
	}
}

// Interval returns the configured spacing.
func (t *Throttle) Interval() time.Duration {
	return t.interval
}

// reserve claims the next slot and returns how long the caller must wait for it.
func (t *Throttle) reserve() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if t.next.Before(now) {
		t.next = now
	}
	wait := t.next.Sub(now)
	t.next = t.next.Add(t.interval)
	return wait
}

// Wait blocks until the caller may proceed or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.interval <= 0 {
		return ctx.Err()
	}

	wait := t.reserve()
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
