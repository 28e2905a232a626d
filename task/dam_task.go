package task

import (
	"log/slog"
	"os"
	"time"

	"github.com/bentpower/ercotsum-go/config"
	"github.com/bentpower/ercotsum-go/ercot"
	"github.com/bentpower/ercotsum-go/store"
)

func NewDayAheadTask(logger *slog.Logger, client *ercot.Client, files *store.Files, cnfg *config.AppConfig) func() {
	pt := ercot.DefaultPages["DAM"]

	if needImmediateDayAheadUpdate(files, pt) {
		logger.Info("need an immediate update of day-ahead prices")
		if err := runFetch(logger, client, files, pt, cnfg); err != nil {
			logger.Error("day-ahead task error", slog.Any("error", err))
		}
	} else {
		logger.Debug("no need for immediate update of day-ahead prices")
	}

	return func() {
		logger.Debug("running day-ahead task...")
		if err := runFetch(logger, client, files, pt, cnfg); err != nil {
			logger.Error("day-ahead task error", slog.Any("error", err))
		}
	}
}

// needImmediateDayAheadUpdate reports whether the day file for the date
// the schedule would currently target has not been written yet.
func needImmediateDayAheadUpdate(files *store.Files, pt ercot.PageType) bool {
	path := files.DayFor(pt.FetchDate(time.Now()), pt.OutFile)
	_, err := os.Stat(path)
	return os.IsNotExist(err)
}
