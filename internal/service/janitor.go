package service

import (
	"context"
	"log/slog"
	"time"
)

// IdempotencyJanitor periodically purges expired idempotency cache rows.
type IdempotencyJanitor struct {
	cache    idempotencyCleaner
	logger   *slog.Logger
	interval time.Duration
}

func NewIdempotencyJanitor(cache idempotencyCleaner, logger *slog.Logger, interval time.Duration) *IdempotencyJanitor {
	return &IdempotencyJanitor{
		cache:    cache,
		logger:   logger,
		interval: interval,
	}
}

// Start blocks until ctx is cancelled.
func (j *IdempotencyJanitor) Start(ctx context.Context) {
	j.logger.Info("idempotency janitor started", "interval", j.interval)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("idempotency janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *IdempotencyJanitor) sweep(ctx context.Context) {
	n, err := j.cache.CleanExpired(ctx)
	if err != nil {
		j.logger.Error("failed to clean idempotency cache", "error", err)
		return
	}
	if n > 0 {
		j.logger.Info("idempotency cache cleaned", "deleted", n)
	}
}
