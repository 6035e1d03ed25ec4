package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/mood-reflect/internal/shared"
)

const (
	maxRetries     = 3
	retryBaseDelay = 100 * time.Millisecond
)

// withRetry runs fn, retrying contention errors with exponential backoff
// (100ms, 200ms, ...).
func withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !shared.IsRetryableDBError(err) || i == maxRetries-1 {
			break
		}

		delay := retryBaseDelay * time.Duration(1<<i)
		slog.Debug("database write contended, retrying", "op", op, "attempt", i+1, "delay", delay)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(delay):
		}
	}
	if shared.IsRetryableDBError(err) {
		return fmt.Errorf("%s failed after %d attempts: %w", op, maxRetries, err)
	}
	return err
}
