package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func fastPolicy() Policy {
	return Policy{MaxAttempts: 5, Base: time.Millisecond, MaxDelay: 2 * time.Millisecond, MaxElapsed: time.Second}
}

func alwaysTransient(error) Class { return Transient }

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	}, alwaysTransient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDoFatalNotRetried(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), func(context.Context) error {
		calls++
		return errBoom
	}, func(error) Class { return Fatal })
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("fatal error must not be retried, got %d calls", calls)
	}
}

func TestDoUnknownNotRetried(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), func(context.Context) error {
		calls++
		return errBoom
	}, func(error) Class { return Unknown })
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("unknown outcome must not be retried, got %d calls", calls)
	}
}

func TestDoExhaustionReturnsLastError(t *testing.T) {
	calls := 0
	last := errors.New("attempt error")
	err := fastPolicy().Do(context.Background(), func(context.Context) error {
		calls++
		return last
	}, alwaysTransient)
	if !errors.Is(err, last) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 5 {
		t.Fatalf("expected 5 attempts, got %d", calls)
	}
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 10, Base: 50 * time.Millisecond, MaxDelay: 50 * time.Millisecond, MaxElapsed: time.Minute}
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := p.Do(ctx, func(context.Context) error {
		calls++
		return errBoom
	}, alwaysTransient)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call before cancel, got %d", calls)
	}
}

func TestDoRespectsMaxElapsed(t *testing.T) {
	p := Policy{MaxAttempts: 100, Base: 20 * time.Millisecond, MaxDelay: 20 * time.Millisecond, MaxElapsed: 30 * time.Millisecond}
	calls := 0
	start := time.Now()
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errBoom
	}, alwaysTransient)
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Fatalf("policy ran past MaxElapsed: %s over %d calls", elapsed, calls)
	}
}

func TestBackoffBounds(t *testing.T) {
	p := Policy{Base: 100 * time.Millisecond, MaxDelay: time.Second}.withDefaults()
	for attempt := 1; attempt <= 10; attempt++ {
		for i := 0; i < 50; i++ {
			d := p.backoff(attempt)
			if d <= 0 || d > p.MaxDelay {
				t.Fatalf("attempt %d: backoff %s out of bounds", attempt, d)
			}
		}
	}
}
