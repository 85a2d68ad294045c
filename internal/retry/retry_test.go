package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"pricelist/internal/logging"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
		Name:        "teste",
	}
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	r := New(fastConfig(5), logging.Discard())
	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("temporário")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoGivesUp(t *testing.T) {
	r := New(fastConfig(3), logging.Discard())
	boom := errors.New("falha")
	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	permanent := errors.New("permanente")
	cfg := fastConfig(5)
	cfg.Retryable = func(err error) bool { return !errors.Is(err, permanent) }
	r := New(cfg, logging.Discard())

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Errorf("expected one call returning permanent error, got %d calls and %v", calls, err)
	}
}

func TestDoHonorsCancellation(t *testing.T) {
	r := New(fastConfig(5), logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := r.Do(ctx, func() error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) || calls != 0 {
		t.Errorf("expected cancellation before any call, got %d calls and %v", calls, err)
	}
}

func TestDelayBounds(t *testing.T) {
	r := New(Config{BaseDelay: 10 * time.Millisecond, MaxDelay: 40 * time.Millisecond, Multiplier: 2, JitterRange: 0.1}, logging.Discard())
	for attempt := 1; attempt <= 6; attempt++ {
		d := r.delay(attempt)
		if d < 10*time.Millisecond || d > 44*time.Millisecond {
			t.Errorf("attempt %d: delay %v out of bounds", attempt, d)
		}
	}
}
