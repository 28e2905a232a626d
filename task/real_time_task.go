package task

import (
	"log/slog"
	"strings"
	"time"

	"github.com/bentpower/ercotsum-go/config"
	"github.com/bentpower/ercotsum-go/ercot"
	"github.com/bentpower/ercotsum-go/hours"
	"github.com/bentpower/ercotsum-go/store"
)

func NewRealTimeTask(logger *slog.Logger, client *ercot.Client, files *store.Files, cnfg *config.AppConfig) func() {
	pt := ercot.DefaultPages["RT"]

	if needImmediateRealTimeUpdate(files, cnfg) {
		logger.Info("need an immediate update of real-time prices")
		if err := runFetch(logger, client, files, pt, cnfg); err != nil {
			logger.Error("real-time task error", slog.Any("error", err))
		}
	} else {
		logger.Debug("no need for immediate update of real-time prices")
	}

	return func() {
		logger.Debug("running real-time task...")
		if err := runFetch(logger, client, files, pt, cnfg); err != nil {
			logger.Error("real-time task error", slog.Any("error", err))
		}
	}
}

// needImmediateRealTimeUpdate reports whether the recorded current sample
// is missing or past the staleness limit, which happens after any outage
// longer than one fetch interval.
func needImmediateRealTimeUpdate(files *store.Files, cnfg *config.AppConfig) bool {
	line, ok, err := store.LastLine(files.Current(store.RTFile))
	if err != nil || !ok {
		return true
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return true
	}
	at, err := hours.FromStamp(fields[0])
	if err != nil {
		return true
	}
	limit := time.Duration(cnfg.Pricing.GetAgeLimitSecs()) * time.Second
	return time.Since(at) > limit
}
