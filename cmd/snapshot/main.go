package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/bentpower/ercotsum-go/config"
	"github.com/bentpower/ercotsum-go/hours"
	"github.com/bentpower/ercotsum-go/pricing"
	"github.com/bentpower/ercotsum-go/store"
	"github.com/lmittmann/tint"
)

// Computes the current cost snapshot from the price files and prints it
// as JSON, the same payload the /snapshot endpoint serves.
func main() {
	w := os.Stderr
	logger := slog.New(tint.NewHandler(w, nil))
	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      slog.LevelWarn,
			TimeFormat: time.RFC3339Nano,
		}),
	))

	configPath := flag.String("config", "", "path to config file")
	includeDam := flag.Bool("dam", false, "include the full day-ahead table")
	flag.Parse()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	if err := hours.SetMarketTimezone(cnfg.Ercot.GetTimezone()); err != nil {
		panic(err)
	}

	files := store.New(cnfg.Files.BaseDir, logger)
	engine := pricing.NewEngine(files, pricing.Config{
		Calc:            cnfg.Pricing.CalcParams(),
		WindowDays:      cnfg.Pricing.GetAveragingDays(),
		DecayFactor:     cnfg.Pricing.GetDecayFactor(),
		AgeLimit:        time.Duration(cnfg.Pricing.GetAgeLimitSecs()) * time.Second,
		DemandTailLines: cnfg.Demand.GetTailLines(),
		DemandAgeLimit:  time.Duration(cnfg.Demand.GetAgeLimitSecs()) * time.Second,
	}, logger)

	snap, err := engine.Snapshot(time.Now(), *includeDam)
	if err != nil {
		logger.Error("snapshot failed", slog.Any("error", err))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		logger.Error("encoding snapshot", slog.Any("error", err))
		os.Exit(1)
	}
}
