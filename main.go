package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bentpower/ercotsum-go/archive"
	"github.com/bentpower/ercotsum-go/config"
	"github.com/bentpower/ercotsum-go/demand"
	"github.com/bentpower/ercotsum-go/ercot"
	"github.com/bentpower/ercotsum-go/hours"
	"github.com/bentpower/ercotsum-go/logging"
	"github.com/bentpower/ercotsum-go/pricing"
	"github.com/bentpower/ercotsum-go/store"
	"github.com/bentpower/ercotsum-go/task"
	"github.com/bentpower/ercotsum-go/www"
	"github.com/lmittmann/tint"
)

var Version = "?.?.?"

func main() {
	defer func() {
		if err := recover(); err != nil {
			exitWithError(slog.Default(), fmt.Errorf("application panicked: %v", err))
		} else {
			slog.Default().Info("application is shutting down...")
		}
	}()

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := hours.SetMarketTimezone(cnfg.Ercot.GetTimezone()); err != nil {
		panic(fmt.Sprintf("failed to set market timezone: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consoleHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cnfg.Logging.GetConsoleLevel(),
		TimeFormat: time.RFC3339,
	})
	slog.New(consoleHandler).Debug("ercotsum is starting...", slog.String("version", Version))

	db, err := archive.New(ctx, cnfg.Archive.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to open archive: %v", err))
	}
	defer db.Close()

	logger := slog.New(logging.NewMultiHandler(
		consoleHandler,
		logging.NewSQLiteHandler(db, cnfg.Logging.GetDbLevel(), cnfg.Logging.GetDbAttrsFormat())))
	slog.SetDefault(logger)

	// Now we can use the logger to log archive operations into the archive itself
	db.SetLogger(logger.With("module", "archive"))

	files := store.New(cnfg.Files.BaseDir, logger.With("module", "store"))
	client := ercot.NewClient(
		time.Duration(cnfg.Ercot.GetTimeoutSecs())*time.Second,
		logger.With("module", "ercot"))

	engine := pricing.NewEngine(files, pricing.Config{
		Calc:            cnfg.Pricing.CalcParams(),
		WindowDays:      cnfg.Pricing.GetAveragingDays(),
		DecayFactor:     cnfg.Pricing.GetDecayFactor(),
		AgeLimit:        time.Duration(cnfg.Pricing.GetAgeLimitSecs()) * time.Second,
		DemandTailLines: cnfg.Demand.GetTailLines(),
		DemandAgeLimit:  time.Duration(cnfg.Demand.GetAgeLimitSecs()) * time.Second,
	}, logger.With("module", "pricing"))

	cache := store.NewSnapshotCache(
		files.Current("snapshot.json"),
		time.Duration(cnfg.Files.GetCacheAgeSecs())*time.Second)

	if cnfg.Demand.Enabled() {
		meter := demand.NewMeter(
			cnfg.Demand.Host,
			cnfg.Demand.Port,
			cnfg.Demand.Username,
			cnfg.Demand.Password,
			cnfg.Demand.Topic,
			files)
		meter.OnInactivity = func() {
			logger.Warn("demand meter mqtt traffic is dead")
		}
		if isDevMode() {
			logger.Info("dev mode, skipping demand meter connection")
		} else {
			if err := meter.Connect(); err != nil {
				panic(fmt.Sprintf("demand meter connection error: %v", err))
			}
			defer meter.Disconnect()
		}
	} else {
		logger.Info("no demand meter configured")
	}

	server := www.StartServer(db, engine, cache, cnfg)

	tasks := task.NewTasks(client, files, engine, db, cache, server.PushSnapshot, cnfg)
	if isDevMode() {
		logger.Info("dev mode, skipping task scheduling")
	} else {
		tasks.Run()
		defer tasks.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-ctx.Done():
			logger.Info("main context done")
		case sig := <-sigCh:
			logger.Info("received signal", slog.Any("signal", sig))
			cancel()
		}
	}()

	server.Run(ctx)
}

func isDevMode() bool {
	return strings.EqualFold(os.Getenv("APP_ENV"), "development")
}

func exitWithError(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("application shutting down with error", slog.Any("error", err))
	}
	if syncer, ok := logger.Handler().(interface{ Sync() error }); ok {
		if syncErr := syncer.Sync(); syncErr != nil {
			logger.Error("failed to flush logger", slog.Any("error", syncErr))
		}
	}

	time.Sleep(2 * time.Second)
	os.Exit(1)
}
