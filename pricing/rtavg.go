package pricing

import (
	"log/slog"
	"time"

	"github.com/bentpower/ercotsum-go/calc"
	"github.com/bentpower/ercotsum-go/convert"
	"github.com/bentpower/ercotsum-go/store"
	"github.com/bentpower/ercotsum-go/types"
	"github.com/bentpower/ercotsum-go/types/maybe"
)

// RTAverage scans windowDays of real-time history backward from asOf and
// computes the trailing delivered-price average two ways: a plain mean,
// and one where each day back counts 1/decayFactor as much as the day
// after it. No samples at all across the window yields None; callers must
// treat that as "no baseline", never as zero.
func RTAverage(files *store.Files, asOf time.Time, windowDays int, decayFactor float64, p calc.Params, logger *slog.Logger) maybe.Maybe[types.RunningAverage] {
	var (
		sum, count       float64
		weightedSum, tot float64
	)

	weight := 1.0
	for day := 0; day < windowDays; day++ {
		path := files.DayFor(asOf.AddDate(0, 0, -day), store.RTFile)
		lines, err := store.ReadLines(path)
		if err != nil {
			logger.Warn("skipping real-time day file", slog.String("path", path), slog.Any("error", err))
			continue
		}
		for _, line := range lines {
			_, raw, err := parsePriceLine(line)
			if err != nil {
				logger.Warn("skipping real-time record", slog.String("path", path), slog.Any("error", err))
				continue
			}
			delivered := calc.Delivered(raw, p)
			sum += delivered
			count++
			weightedSum += delivered * weight
			tot += weight
		}
		weight /= decayFactor
	}

	if count == 0 {
		logger.Info("no real-time history found for averaging",
			slog.Int("windowDays", windowDays))
		return maybe.None[types.RunningAverage]()
	}

	return maybe.Some(types.RunningAverage{
		Weighted: convert.RoundFloat64(weightedSum/tot, 4),
		Raw:      convert.RoundFloat64(sum/count, 4),
	})
}
