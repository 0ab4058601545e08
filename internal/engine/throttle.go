package engine

import (
	"context"
	"time"
)

// Throttle is a fixed-window rate limiter: a short pause after every
// successful fetch, and a longer pause once a batch of fetches has
// completed. State is owned by one Orchestrator, never shared globally.
type Throttle struct {
	interval      time.Duration
	batchSize     int
	batchInterval time.Duration
	count         int
}

// NewThrottle creates a Throttle. A batchSize of zero disables batch
// pauses entirely.
func NewThrottle(interval time.Duration, batchSize int, batchInterval time.Duration) *Throttle {
	return &Throttle{
		interval:      interval,
		batchSize:     batchSize,
		batchInterval: batchInterval,
	}
}

// Wait records one successful fetch and sleeps for the applicable delay.
// Returns early with the context error if the context is canceled.
func (t *Throttle) Wait(ctx context.Context) error {
	d := t.next()
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// next advances the fetch counter and returns the delay to apply: the
// batch interval at every batchSize-th fetch (resetting the counter),
// the per-request interval otherwise.
func (t *Throttle) next() time.Duration {
	t.count++
	if t.batchSize > 0 && t.count >= t.batchSize {
		t.count = 0
		return t.batchInterval
	}
	return t.interval
}

// Count returns the number of fetches since the last batch reset.
func (t *Throttle) Count() int {
	return t.count
}
