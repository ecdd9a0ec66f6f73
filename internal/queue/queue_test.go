package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestDispatcher(t *testing.T, maxRetries int) *Dispatcher {
	t.Helper()
	d := NewDispatcher(zap.NewNop(), 2, maxRetries)
	d.interval = time.Millisecond
	t.Cleanup(d.Stop)
	return d
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestSubmitRunsTask(t *testing.T) {
	d := newTestDispatcher(t, 0)

	var ran atomic.Bool
	d.Submit("ok", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	waitFor(t, ran.Load)
}

func TestRetriesUpToCeiling(t *testing.T) {
	d := newTestDispatcher(t, 3)

	var attempts atomic.Int32
	d.Submit("flaky", func(ctx context.Context) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	})

	waitFor(t, func() bool { return attempts.Load() == 3 })
}

func TestRetryCeilingIsBounded(t *testing.T) {
	d := newTestDispatcher(t, 2)

	var attempts atomic.Int32
	d.Submit("always-fails", func(ctx context.Context) error {
		attempts.Add(1)
		return errors.New("still broken")
	})

	// 1 initial attempt + 2 retries, then the task is dropped.
	waitFor(t, func() bool { return attempts.Load() == 3 })
	time.Sleep(50 * time.Millisecond)
	if got := attempts.Load(); got != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", got)
	}
}

func TestPermanentErrorSkipsRetries(t *testing.T) {
	d := newTestDispatcher(t, 5)

	var attempts atomic.Int32
	var done atomic.Bool
	d.Submit("rejected", func(ctx context.Context) error {
		attempts.Add(1)
		done.Store(true)
		return Permanent(errors.New("bad input"))
	})

	waitFor(t, done.Load)
	time.Sleep(50 * time.Millisecond)
	if got := attempts.Load(); got != 1 {
		t.Fatalf("expected a single attempt for permanent error, got %d", got)
	}
}
