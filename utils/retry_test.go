package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	waguard "github.com/sociovia/waguard"
)

func TestRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, func() error {
		calls++
		return nil
	})

	if err != nil {
		t.Errorf("Retry() = %v, want nil", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryRetriesRetryableErrors(t *testing.T) {
	calls := 0
	r := NewRetryer(RetryConfig{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	})

	err := r.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return waguard.ErrRateLimited
		}
		return nil
	})

	if err != nil {
		t.Errorf("Do() = %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	permanent := errors.New("bad request")
	calls := 0
	r := NewRetryer(RetryConfig{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
	})

	err := r.Do(context.Background(), func() error {
		calls++
		return permanent
	})

	if !errors.Is(err, permanent) {
		t.Errorf("Do() = %v, want %v", err, permanent)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retries for permanent errors)", calls)
	}
}

func TestRetryExhaustsRetries(t *testing.T) {
	calls := 0
	r := NewRetryer(RetryConfig{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	})

	err := r.Do(context.Background(), func() error {
		calls++
		return waguard.ErrTimeout
	})

	if !errors.Is(err, waguard.ErrTimeout) {
		t.Errorf("Do() = %v, want %v", err, waguard.ErrTimeout)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (initial + 2 retries)", calls)
	}
}

func TestRetryRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRetryer(RetryConfig{
		MaxRetries:   5,
		InitialDelay: 10 * time.Millisecond,
	})

	err := r.Do(ctx, func() error {
		return waguard.ErrRateLimited
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() = %v, want context.Canceled", err)
	}
}

func TestRetryOnRetryCallback(t *testing.T) {
	var attempts []int
	r := NewRetryer(RetryConfig{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			attempts = append(attempts, attempt)
		},
	})

	_ = r.Do(context.Background(), func() error {
		return waguard.ErrRateLimited
	})

	if len(attempts) != 2 {
		t.Fatalf("OnRetry called %d times, want 2", len(attempts))
	}
	if attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("attempts = %v, want [1 2]", attempts)
	}
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	r := NewRetryer(RetryConfig{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
	})

	val, err := DoWithResult(context.Background(), r, func() (string, error) {
		calls++
		if calls < 2 {
			return "", waguard.ErrRateLimited
		}
		return "done", nil
	})

	if err != nil {
		t.Errorf("DoWithResult() error = %v, want nil", err)
	}
	if val != "done" {
		t.Errorf("DoWithResult() = %q, want %q", val, "done")
	}
}

func TestCalculateDelayCapped(t *testing.T) {
	r := NewRetryer(RetryConfig{
		InitialDelay: time.Second,
		MaxDelay:     2 * time.Second,
		Multiplier:   10,
		Jitter:       0,
	})

	if d := r.calculateDelay(5); d > 2*time.Second {
		t.Errorf("calculateDelay(5) = %v, want capped at 2s", d)
	}
}
