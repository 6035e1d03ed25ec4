package session

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often StartSweeper checks for expired sessions.
const DefaultSweepInterval = 5 * time.Minute

// StartSweeper runs a background goroutine that periodically removes sessions
// idle for longer than ttl. It stops when ctx is canceled.
func StartSweeper(ctx context.Context, sw Sweeper, ttl, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session sweeper started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				sweepOnce(ctx, sw, ttl)
			case <-ctx.Done():
				slog.Info("Session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweepOnce(ctx context.Context, sw Sweeper, ttl time.Duration) {
	deleted, err := sw.Sweep(ctx, ttl)
	if err != nil {
		slog.Error("Session sweeper failed", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("Session sweeper removed expired sessions", "count", deleted)
	}
}
