package utils

import (
	"context"
	"time"
)

// BackoffCurve maps a 0-based attempt number to the delay before the next try.
type BackoffCurve func(base time.Duration, attempt int) time.Duration

const maxBackoffShift = 16

// FixedBackoff waits the same base delay between every attempt.
func FixedBackoff(base time.Duration, attempt int) time.Duration {
	return base
}

// ExponentialBackoff waits base * 2^attempt, capped to avoid overflow.
func ExponentialBackoff(base time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	} else if attempt > maxBackoffShift {
		attempt = maxBackoffShift
	}
	return base * time.Duration(1<<uint(attempt))
}

// RetryPolicy is the single retry mechanism for every external call
// (blockhash fetches, status polls, transaction submission). MaxAttempts
// counts the first try; Retryable nil means every error is retryable.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Curve       BackoffCurve
	Retryable   func(error) bool
}

// Do runs op until it succeeds, exhausts MaxAttempts, hits a non-retryable
// error, or the context is cancelled. The last error is returned.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	curve := p.Curve
	if curve == nil {
		curve = FixedBackoff
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt < attempts-1 {
			if serr := SleepWithContext(ctx, curve(p.BaseDelay, attempt)); serr != nil {
				return serr
			}
		}
	}
	return err
}

// SleepWithContext sleeps for the given duration but respects context
// cancellation. Zero or negative durations return immediately.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
