package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/bentpower/ercotsum-go/archive"
	"github.com/bentpower/ercotsum-go/config"
	"github.com/bentpower/ercotsum-go/store"
)

func NewMaintenanceTask(logger *slog.Logger, files *store.Files, db *archive.Archive, cnfg *config.AppConfig) func() {
	return func() {
		logger.Debug("running maintenance task...")

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()

		if err := db.Backup(ctx); err != nil {
			logger.Error("archive backup error", slog.Any("error", err))
		}

		if err := db.PurgeBackups(ctx, cnfg.Archive.GetBackupRetentionDays()); err != nil {
			logger.Error("backup maintenance error", slog.Any("error", err))
		}

		if err := db.PurgeLog(ctx, cnfg.Logging.GetDbMaxEntries()); err != nil {
			logger.Error("log maintenance error", slog.Any("error", err))
		}

		if err := db.PurgeSnapshots(ctx, cnfg.Archive.GetDataRetentionDays()); err != nil {
			logger.Error("snapshot maintenance error", slog.Any("error", err))
		}

		if err := files.PurgeDayDirs(cnfg.Archive.GetHistoryRetentionDays()); err != nil {
			logger.Error("day directory maintenance error", slog.Any("error", err))
		}

		logger.Info("maintenance task done")
	}
}
