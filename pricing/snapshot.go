package pricing

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/bentpower/ercotsum-go/calc"
	"github.com/bentpower/ercotsum-go/convert"
	"github.com/bentpower/ercotsum-go/demand"
	"github.com/bentpower/ercotsum-go/hours"
	"github.com/bentpower/ercotsum-go/store"
	"github.com/bentpower/ercotsum-go/types"
)

// peakLookahead bounds how far ahead the DAM scan looks for the most
// expensive upcoming hour.
const peakLookahead = 22 * time.Hour

type Config struct {
	Calc            calc.Params
	WindowDays      int
	DecayFactor     float64
	AgeLimit        time.Duration
	DemandTailLines int
	DemandAgeLimit  time.Duration
}

// Engine computes current-cost snapshots from the flat-file store. Each
// computation is a fresh sequence of bounded local reads followed by pure
// math; it is idempotent and keeps no state between calls.
type Engine struct {
	files  *store.Files
	cnfg   Config
	logger *slog.Logger
}

func NewEngine(files *store.Files, cnfg Config, logger *slog.Logger) *Engine {
	return &Engine{files: files, cnfg: cnfg, logger: logger}
}

// Snapshot assembles the "what should I pay right now" answer for asOf.
// Only a missing or unparsable current-sample file is fatal; every other
// input degrades to absent fields.
func (e *Engine) Snapshot(asOf time.Time, includeDam bool) (*types.Snapshot, error) {
	line, ok, err := store.LastLine(e.files.Current(store.RTFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: no current real-time sample", ErrDataUnavailable)
	}
	stamp, spp, err := parsePriceLine(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	sampleAt, err := hours.FromStamp(stamp)
	if err != nil {
		return nil, fmt.Errorf("%w: bad sample timestamp %q: %v", ErrDataUnavailable, stamp, err)
	}

	p := e.cnfg.Calc
	deliveredNow := calc.Delivered(spp, p)

	avg := RTAverage(e.files, asOf, e.cnfg.WindowDays, e.cnfg.DecayFactor, p, e.logger)
	loads := demand.Averages(e.files, asOf, e.cnfg.DemandTailLines, e.cnfg.DemandAgeLimit, e.logger)
	dam, err := LoadMergedDam(e.files, asOf, p, e.logger)
	if err != nil {
		e.logger.Warn("day-ahead data unavailable", slog.Any("error", err))
		dam = nil
	}

	snap := &types.Snapshot{
		AsOf:               hours.Stamp(sampleAt),
		AsOfT:              sampleAt.Unix(),
		IsStale:            asOf.Sub(sampleAt) > e.cnfg.AgeLimit,
		CurrSppCents:       convert.TwoDecimals(spp),
		CurrDeliveredCents: convert.TwoDecimals(deliveredNow),
		Demand1m:           loads.Min1.Ptr(),
		Demand5m:           loads.Min5.Ptr(),
		Demand15m:          loads.Min15.Ptr(),
	}

	lowLevel := math.NaN()
	if avg.IsValid() {
		a := avg.Value()
		snap.AvgDeliveredCents = ptr(a.Weighted)
		snap.RawAvgDeliveredCents = ptr(a.Raw)
		lowLevel = calc.LowCostLevel(a.Weighted, p)
		level := calc.CostLevel(deliveredNow, lowLevel)
		snap.CostLevel = &level
	}
	haveBaseline := avg.IsValid()

	bucket := hours.FromTime(asOf)
	bucketTime := bucket.Time()
	bucketStamp := bucket.String()
	horizon := asOf.Add(peakLookahead)

	var damCurrent, nextBelow, peak *types.DamEntry
	peakMax := 0.0

	for _, s := range dam.SortedStamps() {
		at, err := hours.FromStamp(s)
		if err != nil {
			e.logger.Warn("skipping unparsable day-ahead stamp", slog.String("stamp", s))
			continue
		}
		// Only hours at or after the top of the current hour matter.
		if at.Before(bucketTime) {
			continue
		}
		entry := dam[s]

		if damCurrent == nil {
			damCurrent = &entry
		}
		if haveBaseline {
			// The first strictly greater delivered price wins ties.
			if !at.After(horizon) && entry.Delivered > lowLevel && entry.Delivered > peakMax {
				peakMax = entry.Delivered
				v := entry
				peak = &v
			}
			if nextBelow == nil && entry.Delivered < lowLevel {
				v := entry
				nextBelow = &v
			}
		}
	}

	if nextBelow != nil && nextBelow.Stamp == bucketStamp {
		// Already in a low-cost hour: there is no "next" drop.
		snap.IsLowCost = true
		nextBelow = nil
	}

	if damCurrent != nil {
		// Never report an anticipated cost below what is already observed.
		anticipated := math.Max(damCurrent.Anticipated, deliveredNow)
		snap.NextSppCents = ptr(convert.TwoDecimals(damCurrent.Spp))
		snap.NextDeliveredCents = ptr(convert.TwoDecimals(damCurrent.Delivered))
		snap.NextAnticipatedCents = ptr(convert.TwoDecimals(anticipated))
		if haveBaseline {
			snap.IsLowCost = anticipated < lowLevel
		}
	}

	if nextBelow != nil && !snap.IsLowCost {
		if at, err := hours.FromStamp(nextBelow.Stamp); err == nil {
			t := at.Unix()
			snap.NextLowCost = &t
			snap.NextLowCostDelivered = ptr(convert.TwoDecimals(nextBelow.Delivered))
		}
	}

	if peak != nil {
		if at, err := hours.FromStamp(peak.Stamp); err == nil {
			t := at.Unix()
			snap.DamPeakNext = &t
			snap.DamPeakDelivered = ptr(convert.TwoDecimals(peak.Delivered))
		}
	}

	if includeDam && len(dam) > 0 {
		snap.Dam = make(map[string]types.DamPrices, len(dam))
		for s, entry := range dam {
			snap.Dam[s] = types.DamPrices{
				SppCents:         convert.TwoDecimals(entry.Spp),
				DeliveredCents:   convert.TwoDecimals(entry.Delivered),
				AnticipatedCents: convert.TwoDecimals(entry.Anticipated),
			}
		}
	}

	return snap, nil
}

func ptr(v float64) *float64 {
	return &v
}
