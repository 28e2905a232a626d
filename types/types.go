package types

import (
	"sort"
	"time"

	"github.com/bentpower/ercotsum-go/hours"
	"github.com/bentpower/ercotsum-go/types/maybe"
)

// PriceSample is one settlement-point price reading in cents per kWh.
type PriceSample struct {
	At  time.Time
	Spp float64
}

// DemandSample is one demand meter reading in kW. Negative values mean
// net export to the grid.
type DemandSample struct {
	At time.Time
	KW float64
}

// DamEntry is one hour of the day-ahead table. Delivered and Anticipated
// are always recomputed from Spp with the current delivery parameters,
// never read back from a file.
type DamEntry struct {
	Stamp       string
	Spp         float64
	Delivered   float64
	Anticipated float64
}

// DamTable maps an hour-bucket stamp to its day-ahead entry. Keys are
// matched exactly; iteration always goes through SortedStamps.
type DamTable map[string]DamEntry

// SortedStamps returns the table keys in ascending timestamp order.
// Stamps that fail to parse sort by their string form.
func (dt DamTable) SortedStamps() []string {
	stamps := make([]string, 0, len(dt))
	for s := range dt {
		stamps = append(stamps, s)
	}
	sort.Slice(stamps, func(i, j int) bool {
		ti, erri := hours.FromStamp(stamps[i])
		tj, errj := hours.FromStamp(stamps[j])
		if erri != nil || errj != nil {
			return stamps[i] < stamps[j]
		}
		return ti.Before(tj)
	})
	return stamps
}

// Equal reports whether two tables carry the same hours and raw prices.
// Derived columns are ignored since they are functions of Spp.
func (dt DamTable) Equal(other DamTable) bool {
	if len(dt) != len(other) {
		return false
	}
	for s, e := range dt {
		o, ok := other[s]
		if !ok || o.Spp != e.Spp {
			return false
		}
	}
	return true
}

// RunningAverage holds both flavors of the trailing delivered-price
// average: decayed toward recent days, and a plain mean.
type RunningAverage struct {
	Weighted float64
	Raw      float64
}

// DemandAverages holds trailing load averages. A window with no samples
// is absent, not zero.
type DemandAverages struct {
	Min1  maybe.Maybe[float64]
	Min5  maybe.Maybe[float64]
	Min15 maybe.Maybe[float64]
}
