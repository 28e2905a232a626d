package pricing

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bentpower/ercotsum-go/calc"
	"github.com/bentpower/ercotsum-go/store"
	"github.com/bentpower/ercotsum-go/types"
)

// parsePriceLine splits a price file record: timestamp, raw price, with
// any trailing fields (like the legacy precomputed delivered column)
// ignored. The raw price is always re-derived into a delivered price by
// the caller so that delivery parameter changes apply to old files too.
func parsePriceLine(line string) (string, float64, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedRecord, line)
	}
	raw, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: bad price in %q: %v", ErrMalformedRecord, line, err)
	}
	return fields[0], raw, nil
}

// LoadDam reads a persisted day-ahead file into a table keyed by the
// exact hour stamp. A missing file is an empty table, not an error.
func LoadDam(path string, p calc.Params, logger *slog.Logger) (types.DamTable, error) {
	lines, err := store.ReadLines(path)
	if err != nil {
		return nil, err
	}

	table := make(types.DamTable, len(lines))
	for _, line := range lines {
		stamp, raw, err := parsePriceLine(line)
		if err != nil {
			logger.Warn("skipping day-ahead record", slog.String("path", path), slog.Any("error", err))
			continue
		}
		table[stamp] = types.DamEntry{
			Stamp:       stamp,
			Spp:         raw,
			Delivered:   calc.Delivered(raw, p),
			Anticipated: calc.Delivered(calc.Anticipated(raw, p), p),
		}
	}
	return table, nil
}

// MergeDam lays tomorrow's table over today's: a fresher forecast for the
// same hour supersedes the stale one. Identical tables mean only today's
// data has been published, so today's table is returned as-is.
func MergeDam(today, tomorrow types.DamTable) types.DamTable {
	if len(tomorrow) == 0 {
		return today
	}
	if today.Equal(tomorrow) {
		return today
	}
	merged := make(types.DamTable, len(today)+len(tomorrow))
	for s, e := range today {
		merged[s] = e
	}
	for s, e := range tomorrow {
		merged[s] = e
	}
	return merged
}

// LoadMergedDam loads the day-ahead tables recorded under today's and
// tomorrow's day directories relative to asOf and merges them.
func LoadMergedDam(files *store.Files, asOf time.Time, p calc.Params, logger *slog.Logger) (types.DamTable, error) {
	today, err := LoadDam(files.DayFor(asOf, store.DamFile), p, logger)
	if err != nil {
		return nil, err
	}
	tomorrow, err := LoadDam(files.DayFor(asOf.Add(24*time.Hour), store.DamFile), p, logger)
	if err != nil {
		return nil, err
	}
	return MergeDam(today, tomorrow), nil
}
