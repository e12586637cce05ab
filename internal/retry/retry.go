package retry

import (
	"context"
	"math/rand"
	"time"
)

// Class is the outcome classification of a failed remote call, decided once
// at the collaborator boundary.
type Class int

const (
	// Fatal failures are surfaced immediately: explicit remote rejections,
	// malformed requests, business-rule errors.
	Fatal Class = iota
	// Transient failures (timeouts, transient node errors, certificate
	// verification hiccups) are retried with backoff.
	Transient
	// Unknown means the call may or may not have taken effect remotely. It is
	// never blindly retried; the caller escalates instead.
	Unknown
)

// Classifier maps an operation error to its Class.
type Classifier func(error) Class

// Policy retries transient failures with exponential backoff and jitter,
// bounded by attempt count and total wait. Exhaustion returns the last error.
type Policy struct {
	MaxAttempts int
	Base        time.Duration
	MaxDelay    time.Duration
	MaxElapsed  time.Duration
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 4
	}
	if p.Base <= 0 {
		p.Base = 500 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 10 * time.Second
	}
	if p.MaxElapsed <= 0 {
		p.MaxElapsed = time.Minute
	}
	return p
}

// Do runs op, retrying while classify reports Transient. Fatal and Unknown
// errors stop immediately and are returned as-is.
func (p Policy) Do(ctx context.Context, op func(context.Context) error, classify Classifier) error {
	p = p.withDefaults()
	start := time.Now()
	var lastErr error
	for attempt := 1; ; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if classify == nil || classify(lastErr) != Transient {
			return lastErr
		}
		if attempt >= p.MaxAttempts {
			return lastErr
		}
		delay := p.backoff(attempt)
		if time.Since(start)+delay > p.MaxElapsed {
			return lastErr
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// backoff doubles from Base per attempt, jittered to [0.5d, 1.5d] and capped
// at MaxDelay.
func (p Policy) backoff(attempt int) time.Duration {
	d := p.Base * time.Duration(1<<(attempt-1))
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	d = d/2 + time.Duration(rand.Int63n(int64(d)+1))
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}
