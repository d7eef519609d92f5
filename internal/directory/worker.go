package directory

import (
	"context"
	"time"

	"go.uber.org/zap"

	"taskboard/internal/logger"
)

const defaultRefreshInterval = 5 * time.Minute

// RefreshWorker periodically re-reads the profile directory so renamed
// or newly signed-up users show up without a restart.
type RefreshWorker struct {
	dir      *Directory
	interval time.Duration
}

func NewRefreshWorker(dir *Directory, interval time.Duration) *RefreshWorker {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &RefreshWorker{
		dir:      dir,
		interval: interval,
	}
}

func (w *RefreshWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			if err := w.dir.Refresh(ctx); err != nil {
				logger.Warn("Worker: directory refresh failed, keeping previous snapshot", zap.Error(err))
				continue
			}
			logger.Info("Worker: directory refreshed",
				zap.Duration("ms", time.Since(start)),
				zap.Int("profiles", len(w.dir.All())))
		case <-ctx.Done():
			logger.Info("Worker: directory refresh stopping")
			return
		}
	}
}
