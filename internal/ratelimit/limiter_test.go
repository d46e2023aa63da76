package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestDelayLimiter_SpacesRequests(t *testing.T) {
	const delay = 60 * time.Millisecond
	dl := NewDelayLimiter(delay)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := dl.Wait(ctx, "https://example.org/p"); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}
	elapsed := time.Since(start)

	// first request is free, the next two each wait one delay
	if elapsed < 2*delay-10*time.Millisecond {
		t.Errorf("expected at least %v between three requests, got %v", 2*delay, elapsed)
	}
}

func TestDelayLimiter_ZeroDelay(t *testing.T) {
	dl := NewDelayLimiter(0)

	for i := 0; i < 5; i++ {
		if !dl.Allow("https://example.org") {
			t.Fatalf("request %d should not be limited with zero delay", i)
		}
	}
}

func TestDelayLimiter_SetDelay(t *testing.T) {
	dl := NewDelayLimiter(0)
	dl.SetDelay(2 * time.Second)

	if got := dl.Delay(); got != 2*time.Second {
		t.Errorf("Delay() = %v, want 2s", got)
	}

	if !dl.Allow("https://example.org") {
		t.Fatal("first request should pass")
	}
	if dl.Allow("https://example.org") {
		t.Error("second immediate request should be held back")
	}
}

func TestDelayLimiter_ContextCancelled(t *testing.T) {
	dl := NewDelayLimiter(time.Hour)
	_ = dl.Wait(context.Background(), "https://example.org")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := dl.Wait(ctx, "https://example.org"); err == nil {
		t.Error("expected error when the delay outlasts the context")
	}
}

var _ RateLimiter = (*DelayLimiter)(nil)
