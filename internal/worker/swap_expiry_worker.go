package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StaleSwapExpirer is the part of the swap service the sweeper drives.
type StaleSwapExpirer interface {
	ExpireStale(ctx context.Context, olderThan time.Duration) (int, error)
}

// SwapExpiryWorker periodically releases items held by swaps nobody decided.
type SwapExpiryWorker struct {
	swaps    StaleSwapExpirer
	ttl      time.Duration
	interval time.Duration
	logger   *zap.Logger
}

// NewSwapExpiryWorker builds the sweeper.
func NewSwapExpiryWorker(swaps StaleSwapExpirer, ttl, interval time.Duration, logger *zap.Logger) *SwapExpiryWorker {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &SwapExpiryWorker{swaps: swaps, ttl: ttl, interval: interval, logger: logger}
}

// Start blocks, sweeping once immediately and then on every tick until ctx ends.
func (w *SwapExpiryWorker) Start(ctx context.Context) {
	if w.ttl <= 0 {
		w.logger.Info("swap expiry disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("swap expiry worker started",
		zap.Duration("ttl", w.ttl),
		zap.Duration("interval", w.interval))

	w.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("swap expiry worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep and returns how many swaps expired.
func (w *SwapExpiryWorker) RunOnce(ctx context.Context) int {
	expired, err := w.swaps.ExpireStale(ctx, w.ttl)
	if err != nil {
		w.logger.Error("swap expiry sweep failed", zap.Int("expired", expired), zap.Error(err))
		return expired
	}
	if expired > 0 {
		w.logger.Info("expired stale swaps", zap.Int("count", expired))
	}
	return expired
}
