package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_PacesSameHost(t *testing.T) {
	t.Parallel()

	// 10 RPS means one token every 100ms after the initial burst.
	l := New(Config{RPS: 10, Burst: 1})
	ctx := context.Background()

	if err := l.Wait(ctx, "https://example.com/page"); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	if err := l.Wait(ctx, "https://example.com/other"); err != nil {
		t.Fatal(err)
	}
	if dur := time.Since(start); dur < 80*time.Millisecond {
		t.Errorf("expected second request to wait ~100ms, got %v", dur)
	}
}

func TestLimiter_HostsAreIndependent(t *testing.T) {
	t.Parallel()

	l := New(Config{RPS: 1, Burst: 1})
	ctx := context.Background()

	if err := l.Wait(ctx, "https://a.com/1"); err != nil {
		t.Fatal(err)
	}

	// A different host has its own bucket and must not be delayed by
	// the first host's consumed token.
	start := time.Now()
	if err := l.Wait(ctx, "https://b.com/1"); err != nil {
		t.Fatal(err)
	}
	if dur := time.Since(start); dur > 100*time.Millisecond {
		t.Errorf("expected independent host to pass immediately, waited %v", dur)
	}
}

func TestLimiter_ZeroRPSIsUnbounded(t *testing.T) {
	t.Parallel()

	l := New(Config{})
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := l.Wait(ctx, "https://example.com"); err != nil {
			t.Fatal(err)
		}
	}
	if dur := time.Since(start); dur > 100*time.Millisecond {
		t.Errorf("expected unbounded limiter, waited %v", dur)
	}
}

func TestLimiter_CanceledContext(t *testing.T) {
	t.Parallel()

	l := New(Config{RPS: 1, Burst: 1})
	ctx := context.Background()
	if err := l.Wait(ctx, "https://example.com"); err != nil {
		t.Fatal(err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if err := l.Wait(canceled, "https://example.com"); err == nil {
		t.Fatal("expected error from canceled context")
	}
}

func TestLimiter_NilReceiver(t *testing.T) {
	t.Parallel()

	var l *Limiter
	if err := l.Wait(context.Background(), "https://example.com"); err != nil {
		t.Fatal(err)
	}
}
