// Package resilience provides the retry executor and per-key rate limiter
// that wrap every upstream fetch.
package resilience

import (
	"context"
	"fmt"
	"time"
)

// Retry runs op up to maxAttempts times. After a failed attempt i (0-based)
// it waits baseDelay * 2^i before the next attempt — pure exponential, no
// jitter. The last error is returned after the final attempt.
//
// Retry is blind to error type: a network timeout and a semantic "no data"
// both count as failures. Escalation by error class is the job of the
// adapters' fallback chains, not of this executor.
func Retry(ctx context.Context, op func(ctx context.Context) error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt < maxAttempts-1 {
			delay := baseDelay << attempt
			if err := Sleep(ctx, delay); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("resilience: %d attempts failed: %w", maxAttempts, lastErr)
}

// Sleep waits for d or until ctx is cancelled, whichever comes first.
// All suspension points in the monitoring core go through here so a
// shutdown never waits out a backoff.
func Sleep(ctx context.Context, d time.Duration) error {
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
