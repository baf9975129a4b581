package utils

import (
	"context"
	"fmt"
	"time"
)

// Retry holds the parameters for an exponential back-off retry.
type Retry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *Logger
}

// Do calls fn until it succeeds, MaxAttempts is reached or ctx ends. The
// delay doubles after every failed attempt.
func (r Retry) Do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	attempts := max(r.MaxAttempts, 1)
	delay := r.BaseDelay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		r.Logger.Warn("[retry] %s failed (attempt %d/%d): %v, retrying in %v",
			operation, attempt, attempts, lastErr, delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", operation, ctx.Err())
		}
		delay *= 2
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, attempts, lastErr)
}
