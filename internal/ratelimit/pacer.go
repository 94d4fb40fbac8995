// Package ratelimit provides the minimum-spacing pacer that throttles
// outbound calls to the upstream generative-language API.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the minimum spacing between outbound requests,
// measured request start to request start.
const DefaultInterval = 12 * time.Second

// Pacer enforces a minimum interval between consecutive acquisitions. It is
// a leaky bucket of size one: it guarantees spacing, not a burst allowance,
// so once the process is busy every caller serializes onto the same cadence.
//
// The pacer only coordinates within one process. Across separately running
// instances there is no coordination; the spacing guarantee is per-instance.
//
// Pacer is safe for concurrent use. The shared timestamp is updated under a
// mutex held across the whole wait, so two near-simultaneous callers cannot
// both observe the same elapsed time and send together.
type Pacer struct {
	mu       sync.Mutex
	last     time.Time
	interval time.Duration

	// now and sleep are indirected for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer returns a Pacer enforcing the given minimum interval between
// acquisitions. A non-positive interval falls back to DefaultInterval.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Pacer{
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Wait blocks until the minimum interval since the previous acquisition has
// elapsed, then stamps the current time as the new last-acquisition time.
// The stamp happens even when no wait was needed, so bursts are paced to no
// more than one request per interval regardless of retry structure.
//
// Returns the context's error if ctx is cancelled while waiting; in that
// case no stamp is recorded.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.last.IsZero() {
		if remaining := p.interval - p.now().Sub(p.last); remaining > 0 {
			if err := p.sleep(ctx, remaining); err != nil {
				return err
			}
		}
	}

	p.last = p.now()
	return nil
}

// Interval returns the configured minimum spacing.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// sleepContext sleeps for d or until ctx is cancelled, whichever comes
// first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
