package store

import (
	"context"
	"log/slog"
	"time"
)

const cleanupInterval = 1 * time.Hour

// StartCleanupWorker runs a background goroutine that periodically sweeps
// expired rows out of the SQLite store. Redis expires keys on its own, so
// this worker only runs for the SQLite backend. It stops when ctx is done.
func StartCleanupWorker(ctx context.Context, s *SQLiteStore) {
	ticker := time.NewTicker(cleanupInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("session cleanup worker started", "interval", cleanupInterval)

		for {
			select {
			case <-ticker.C:
				deleted, err := s.DeleteExpired(ctx)
				if err != nil {
					slog.Error("session cleanup sweep failed", "error", err)
					continue
				}
				if deleted > 0 {
					slog.Info("session cleanup removed expired sessions", "count", deleted)
				}
			case <-ctx.Done():
				slog.Info("session cleanup worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
