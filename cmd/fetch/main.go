package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bentpower/ercotsum-go/config"
	"github.com/bentpower/ercotsum-go/ercot"
	"github.com/bentpower/ercotsum-go/hours"
	"github.com/bentpower/ercotsum-go/store"
	"github.com/bentpower/ercotsum-go/task"
	"github.com/lmittmann/tint"
)

// One-shot price fetch, useful from cron or when debugging the parser.
func main() {
	w := os.Stdout
	logger := slog.New(tint.NewHandler(w, nil))
	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC3339Nano,
		}),
	))

	configPath := flag.String("config", "", "path to config file")
	page := flag.String("page", "RT", "page to fetch: RT or DAM")
	flag.Parse()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	if err := hours.SetMarketTimezone(cnfg.Ercot.GetTimezone()); err != nil {
		panic(err)
	}

	pt, ok := ercot.DefaultPages[*page]
	if !ok {
		panic(fmt.Sprintf("unknown page type %q", *page))
	}

	files := store.New(cnfg.Files.BaseDir, logger)
	client := ercot.NewClient(time.Duration(cnfg.Ercot.GetTimeoutSecs())*time.Second, logger)

	switch pt.Name {
	case "RT":
		task.NewRealTimeTask(logger, client, files, cnfg)()
	case "DAM":
		task.NewDayAheadTask(logger, client, files, cnfg)()
	}
}
