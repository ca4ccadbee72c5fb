package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicy_DelayDoublesUpToMax(t *testing.T) {
	p := NormalizeRetryPolicy(RetryPolicy{MaxRetries: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: 500 * time.Millisecond})

	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond}
	for attempt, expected := range want {
		if got := p.Delay(attempt); got != expected {
			t.Fatalf("attempt %d: expected %s, got %s", attempt, expected, got)
		}
	}
	if p.Attempts() != 6 {
		t.Fatalf("expected 6 attempts, got %d", p.Attempts())
	}
}

func TestRetryPolicy_NormalizeNegativeRetries(t *testing.T) {
	p := NormalizeRetryPolicy(RetryPolicy{MaxRetries: -1})
	if p.Attempts() != 1 {
		t.Fatalf("expected single attempt, got %d", p.Attempts())
	}
	if p.BaseDelay != DefaultRetryPolicy().BaseDelay {
		t.Fatalf("expected default base delay, got %s", p.BaseDelay)
	}
}

func TestRetryPolicy_WaitHonoursCancellation(t *testing.T) {
	p := NormalizeRetryPolicy(RetryPolicy{BaseDelay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Wait(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
