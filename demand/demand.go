package demand

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bentpower/ercotsum-go/hours"
	"github.com/bentpower/ercotsum-go/store"
	"github.com/bentpower/ercotsum-go/types"
	"github.com/bentpower/ercotsum-go/types/maybe"
)

var windows = []struct {
	name string
	span time.Duration
}{
	{"1m", time.Minute},
	{"5m", 5 * time.Minute},
	{"15m", 15 * time.Minute},
}

func parseLine(line string) (types.DemandSample, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return types.DemandSample{}, fmt.Errorf("short demand record %q", line)
	}
	at, err := hours.ParseLenient(fields[0])
	if err != nil {
		return types.DemandSample{}, fmt.Errorf("bad demand timestamp in %q: %v", line, err)
	}
	kw, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return types.DemandSample{}, fmt.Errorf("bad demand value in %q: %v", line, err)
	}
	return types.DemandSample{At: at, KW: kw}, nil
}

// Averages computes trailing 1/5/15-minute load averages from the demand
// logs. Yesterday's log is read too so the windows survive midnight. Only
// the last tailLines lines are parsed, sized to comfortably exceed the
// longest window at the expected sample rate.
func Averages(files *store.Files, asOf time.Time, tailLines int, ageLimit time.Duration, logger *slog.Logger) types.DemandAverages {
	var lines []string
	for _, day := range []time.Time{asOf.AddDate(0, 0, -1), asOf} {
		path := files.DayFor(day, store.DemandFile)
		dayLines, err := store.ReadLines(path)
		if err != nil {
			logger.Warn("skipping demand log", slog.String("path", path), slog.Any("error", err))
			continue
		}
		lines = append(lines, dayLines...)
	}
	lines = store.TailLines(lines, tailLines)

	samples := make([]types.DemandSample, 0, len(lines))
	for _, line := range lines {
		sample, err := parseLine(line)
		if err != nil {
			logger.Warn("skipping demand record", slog.Any("error", err))
			continue
		}
		samples = append(samples, sample)
	}

	if len(samples) == 0 {
		return types.DemandAverages{
			Min1:  maybe.None[float64](),
			Min5:  maybe.None[float64](),
			Min15: maybe.None[float64](),
		}
	}

	// Newest first, so each window is a prefix of the same list.
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].At.After(samples[j].At)
	})

	if age := asOf.Sub(samples[0].At); age > ageLimit {
		logger.Warn("newest demand sample is stale",
			slog.Duration("age", age),
			slog.Duration("limit", ageLimit))
	}

	results := make([]maybe.Maybe[float64], len(windows))
	for i, w := range windows {
		cutoff := asOf.Add(-w.span)
		var sum float64
		var n int
		for _, s := range samples {
			if s.At.Before(cutoff) {
				break
			}
			sum += s.KW
			n++
		}
		if n == 0 {
			results[i] = maybe.None[float64]()
		} else {
			results[i] = maybe.Some(sum / float64(n))
		}
	}

	return types.DemandAverages{Min1: results[0], Min5: results[1], Min15: results[2]}
}
