package calc

import "math"

// Params carries everything needed to turn a raw settlement-point price
// into an all-in delivered price. Prices are cents per kWh, monthly fees
// dollars per month.
type Params struct {
	DeliveryCharge    float64 // TDU per-kWh delivery charge
	AncillaryFraction float64 // ancillary-service markup on the raw price
	TaxFeeFraction    float64 // taxes and fees on the extended price
	TduMonthlyFee     float64
	RetailMonthlyFee  float64
	DaysPerMonth      float64
	SamplesPerHour    float64
	PriceCap          float64 // system-wide offer cap
	LowCostMultiplier float64
}

// MonthlyBasePerSample amortizes the fixed monthly fees down to a single
// price sample, in cents.
func (p Params) MonthlyBasePerSample() float64 {
	return (p.TduMonthlyFee + p.RetailMonthlyFee) * 100.0 / p.DaysPerMonth / 24.0 / p.SamplesPerHour
}

// Delivered is the realistic all-in per-kWh cost for a raw price.
func Delivered(raw float64, p Params) float64 {
	extended := raw * (1.0 + p.AncillaryFraction)
	return (extended+p.DeliveryCharge)*(1.0+p.TaxFeeFraction) + p.MonthlyBasePerSample()
}

// Anticipated is the worst-case projection for a day-ahead price: assume
// prices spike, capped at the offer cap, never below the forecast itself.
func Anticipated(raw float64, p Params) float64 {
	return math.Max(raw, math.Min(raw*raw/2.0, p.PriceCap))
}

// LowCostLevel is the threshold below which usage counts as cheap.
func LowCostLevel(weightedAvg float64, p Params) float64 {
	return weightedAvg * p.LowCostMultiplier
}

// CostLevel buckets the current delivered price into integer tiers of the
// low-cost level. Zero is at or below baseline; negative means the grid
// is paying for consumption, which is legitimate.
func CostLevel(deliveredNow, lowCostLevel float64) int {
	return int(math.Floor(deliveredNow / lowCostLevel))
}
