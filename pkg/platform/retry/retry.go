// Package retry runs an operation under a bounded attempt budget with backoff
// between retryable failures. The ceiling is an attempt count, not a deadline,
// so behaviour under test is deterministic.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted matches every *ExhaustedError via errors.Is.
var ErrExhausted = errors.New("retry attempts exhausted")

// ExhaustedError reports the attempt budget and the last retryable failure.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry attempts exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

func (e *ExhaustedError) Is(target error) bool { return target == ErrExhausted }

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy parameterizes Do.
type Policy struct {
	// MaxAttempts is the total number of calls to the operation. Values below 1 mean 1.
	MaxAttempts int
	// Backoff returns the wait after the failed attempt with the given zero-based index.
	Backoff func(attempt int) time.Duration
	// Retryable decides whether an error consumes another attempt. Nil retries nothing.
	Retryable func(error) bool
	// Sleep overrides the timer-based wait; tests use it to avoid real delays.
	Sleep SleepFunc
}

// Exponential returns base × 2^attempt.
func Exponential(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return base << attempt
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, the attempt
// budget is spent, or ctx is done. The wait happens only between attempts.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	attempts := max(p.MaxAttempts, 1)
	sleep := p.Sleep
	if sleep == nil {
		sleep = timerSleep
	}

	var last error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := fn(ctx, attempt)
		if err == nil {
			return v, nil
		}
		if p.Retryable == nil || !p.Retryable(err) {
			return zero, err
		}
		last = err

		if attempt == attempts-1 {
			break
		}
		if p.Backoff != nil {
			if err := sleep(ctx, p.Backoff(attempt)); err != nil {
				return zero, err
			}
		}
	}
	return zero, &ExhaustedError{Attempts: attempts, Last: last}
}

func timerSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
