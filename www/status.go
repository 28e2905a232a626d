package www

import (
	"fmt"
	"time"

	"github.com/bentpower/ercotsum-go/config"
	"github.com/bentpower/ercotsum-go/types"
)

// refreshDelta pads the page refresh past the fetch boundary so a reload
// lands after the next sample has been recorded.
const refreshDelta = 10

// LiveStatus is what the status page and the websocket push render: the
// snapshot boiled down to the handful of numbers a person scanning the
// page before starting a laundry load cares about.
type LiveStatus struct {
	AsOf         string
	IsStale      bool
	IsLowCost    bool
	CurrCents    float64
	RawCents     float64
	AvgCents     *float64
	CostLevel    *int
	DemandKW     *float64
	DrierPerHour float64
	NextLowText  string
	PeakText     string
	RefreshSecs  int
}

func BuildLiveStatus(snap *types.Snapshot, cnfg *config.AppConfig, now time.Time) LiveStatus {
	st := LiveStatus{
		AsOf:         snap.AsOf,
		IsStale:      snap.IsStale,
		IsLowCost:    snap.IsLowCost,
		CurrCents:    snap.CurrDeliveredCents,
		RawCents:     snap.CurrSppCents,
		AvgCents:     snap.AvgDeliveredCents,
		CostLevel:    snap.CostLevel,
		DemandKW:     snap.Demand1m,
		DrierPerHour: cnfg.Demand.GetDrierKWh() * snap.CurrDeliveredCents / 100,
		RefreshSecs:  refreshSecs(now, cnfg.Pricing.GetSamplesPerHour()),
	}

	if !snap.IsLowCost && snap.NextLowCost != nil && snap.NextLowCostDelivered != nil {
		st.NextLowText = fmt.Sprintf("drops to %.1f¢ after %s",
			*snap.NextLowCostDelivered, clock(*snap.NextLowCost))
	}
	if snap.DamPeakNext != nil && snap.DamPeakDelivered != nil {
		st.PeakText = fmt.Sprintf("peaks at %.1f¢ around %s",
			*snap.DamPeakDelivered, clock(*snap.DamPeakNext))
	}

	return st
}

// refreshSecs is the time until just after the next expected sample.
func refreshSecs(now time.Time, samplesPerHour int) int {
	if samplesPerHour < 1 {
		samplesPerHour = 1
	}
	interval := int64(3600 / samplesPerHour)
	return int(interval-now.Unix()%interval) + refreshDelta
}

func clock(epoch int64) string {
	return time.Unix(epoch, 0).Local().Format("15:04")
}
