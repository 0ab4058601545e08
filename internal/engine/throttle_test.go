package engine

import (
	"context"
	"testing"
	"time"
)

func TestThrottleBatchBoundary(t *testing.T) {
	th := NewThrottle(10*time.Millisecond, 3, 50*time.Millisecond)

	want := []time.Duration{
		10 * time.Millisecond,
		10 * time.Millisecond,
		50 * time.Millisecond, // batch boundary
		10 * time.Millisecond,
		10 * time.Millisecond,
		50 * time.Millisecond,
	}
	for i, w := range want {
		if got := th.next(); got != w {
			t.Errorf("fetch %d: expected delay %s, got %s", i+1, w, got)
		}
	}
}

func TestThrottleCounterResets(t *testing.T) {
	th := NewThrottle(time.Millisecond, 2, time.Millisecond)

	th.next()
	if th.Count() != 1 {
		t.Errorf("expected count 1, got %d", th.Count())
	}
	th.next()
	if th.Count() != 0 {
		t.Errorf("expected counter reset to 0 after batch, got %d", th.Count())
	}
}

func TestThrottleZeroBatchSize(t *testing.T) {
	th := NewThrottle(5*time.Millisecond, 0, time.Hour)

	for i := 0; i < 10; i++ {
		if got := th.next(); got != 5*time.Millisecond {
			t.Fatalf("fetch %d: expected request interval, got %s", i+1, got)
		}
	}
}

func TestThrottleWaitRespectsContext(t *testing.T) {
	th := NewThrottle(time.Hour, 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := th.Wait(ctx); err == nil {
		t.Error("expected context error from canceled wait")
	}
}

func TestThrottleWaitZeroDelay(t *testing.T) {
	th := NewThrottle(0, 0, 0)

	start := time.Now()
	if err := th.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("zero-interval wait took %s", elapsed)
	}
}
