package task

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bentpower/ercotsum-go/config"
	"github.com/bentpower/ercotsum-go/ercot"
	"github.com/bentpower/ercotsum-go/hours"
	"github.com/bentpower/ercotsum-go/store"
)

// runFetch pulls one upstream page and records its tail in the price
// files. Both fetch tasks reduce to this with a different page type.
func runFetch(logger *slog.Logger, client *ercot.Client, files *store.Files, pt ercot.PageType, cnfg *config.AppConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cnfg.Ercot.GetTimeoutSecs())*time.Second)
	defer cancel()

	date := pt.FetchDate(time.Now())
	url := pt.URLFor(hours.DayDir(date))

	body, err := client.Fetch(ctx, url)
	if err != nil {
		return fmt.Errorf("fetching %s page: %w", pt.Name, err)
	}

	page, samples, err := ercot.ParsePrices(strings.NewReader(body), cnfg.Ercot.GetZone())
	if err != nil {
		return fmt.Errorf("parsing %s page: %w", pt.Name, err)
	}
	if page != pt.Name {
		return fmt.Errorf("expected a %s page at %s, got %s", pt.Name, url, page)
	}
	if len(samples) == 0 {
		return fmt.Errorf("no prices on %s page at %s", pt.Name, url)
	}

	lines := ercot.FormatLines(samples, cnfg.Pricing.GetDeliveryCharge(), pt.Last, "")
	if err := files.WriteCurrent(pt.OutFile, hours.DayDir(date), lines); err != nil {
		return fmt.Errorf("recording %s prices: %w", pt.Name, err)
	}

	logger.Info("prices recorded", slog.String("page", pt.Name), slog.Int("noOfPrices", len(lines)))
	return nil
}
