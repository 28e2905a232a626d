package task

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bentpower/ercotsum-go/archive"
	"github.com/bentpower/ercotsum-go/config"
	"github.com/bentpower/ercotsum-go/pricing"
	"github.com/bentpower/ercotsum-go/store"
)

func NewSnapshotTask(
	logger *slog.Logger,
	engine *pricing.Engine,
	db *archive.Archive,
	cache *store.SnapshotCache,
	onSnapshot OnSnapshot,
	cnfg *config.AppConfig,
) func() {
	return func() {
		logger.Debug("running snapshot task...")

		snap, err := engine.Snapshot(time.Now(), false)
		if err != nil {
			if errors.Is(err, pricing.ErrDataUnavailable) {
				logger.Warn("no current price data for snapshot", slog.Any("error", err))
			} else {
				logger.Error("snapshot task error", slog.Any("error", err))
			}
			return
		}

		if err := cache.Store(snap); err != nil {
			logger.Error("snapshot cache update error", slog.Any("error", err))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.SaveSnapshot(ctx, *snap); err != nil {
			logger.Error("snapshot archive error", slog.Any("error", err))
		}

		if onSnapshot != nil {
			onSnapshot(snap)
		}

		logger.Debug("snapshot task done", slog.String("asOf", snap.AsOf))
	}
}
