package tus

import (
	"context"
	"time"

	"github.com/jasonlovesdoggo/put/internal/logger"
	"github.com/jasonlovesdoggo/put/pkg/storage"
)

const (
	minSweepInterval = time.Minute
	maxSweepInterval = time.Hour
)

// sweepInterval derives the sweep cadence from the retention period: a
// tenth of it, clamped to [1m, 1h]. The default 24h retention sweeps
// hourly.
func sweepInterval(expirationPeriod time.Duration) time.Duration {
	interval := expirationPeriod / 10
	if interval < minSweepInterval {
		return minSweepInterval
	}
	if interval > maxSweepInterval {
		return maxSweepInterval
	}
	return interval
}

// RunSweeper removes expired uploads periodically until ctx is done. One
// sweep runs immediately to clear anything that expired while the server
// was down.
func (h *Handler) RunSweeper(ctx context.Context) {
	interval := sweepInterval(h.cfg.ExpirationPeriod)
	logger.Info("expiration sweeper started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.SweepExpired(time.Now())
	for {
		select {
		case <-ctx.Done():
			logger.Info("expiration sweeper stopped")
			return
		case now := <-ticker.C:
			h.SweepExpired(now)
		}
	}
}

// SweepExpired removes every upload whose expiry has passed and returns
// the number removed. A uid with a writer in flight is skipped; the next
// sweep catches it.
func (h *Handler) SweepExpired(now time.Time) int {
	descs, err := h.store.List()
	if err != nil {
		logger.Error("expiration sweep failed", logger.KeyError, err)
		return 0
	}

	removed := 0
	for _, desc := range descs {
		if !desc.IsExpired(now) {
			continue
		}

		unlock, ok := h.locks.tryLock(desc.UID)
		if !ok {
			continue
		}
		err := h.store.Delete(desc.UID)
		unlock()

		if err != nil && !storage.IsNotFound(err) {
			logger.Warn("failed to remove expired upload", logger.KeyUID, desc.UID, logger.KeyError, err)
			continue
		}

		removed++
		logger.Debug("expired upload removed", logger.KeyUID, desc.UID)
	}

	observeExpired(h.metrics, removed)
	if removed > 0 {
		logger.Info("expiration sweep", "removed", removed)
	}
	return removed
}
