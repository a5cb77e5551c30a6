package yad2

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RetryPolicy retries an operation a bounded number of times with a linearly
// increasing delay. One policy instance is applied uniformly to every
// upstream call.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Retryable decides whether an error is worth another attempt.
	// nil means every error is retryable.
	Retryable func(error) bool
}

// Do executes fn until it succeeds, a non-retryable error occurs, the
// attempts are exhausted, or the context is cancelled.
func (r RetryPolicy) Do(ctx context.Context, operation string, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if r.Retryable != nil && !r.Retryable(lastErr) {
			return lastErr
		}

		if attempt < r.MaxAttempts {
			delay := time.Duration(attempt) * r.BaseDelay
			slog.Debug("Retrying operation", "operation", operation, "attempt", attempt, "max_attempts", r.MaxAttempts, "delay", delay.String(), "error", lastErr)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, r.MaxAttempts, lastErr)
}
