package notifier

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_burstAllowsImmediately(t *testing.T) {
	limiter := NewRateLimiter(1.0, 3)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Allow(context.Background()); err != nil {
			t.Fatalf("Allow err=%v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("burst of 3 should not block, took %v", elapsed)
	}
}

func TestRateLimiter_contextCancellation(t *testing.T) {
	limiter := NewRateLimiter(0.1, 1)

	// Drain the single burst token.
	if err := limiter.Allow(context.Background()); err != nil {
		t.Fatalf("Allow err=%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Allow(ctx); err == nil {
		t.Fatal("want error when context expires before a token is available")
	}
}
