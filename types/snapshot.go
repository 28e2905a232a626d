package types

// DamPrices is the wire form of one DAM hour when a snapshot includes
// the full table.
type DamPrices struct {
	SppCents         float64 `json:"spp_cents"`
	DeliveredCents   float64 `json:"delivered_cents"`
	AnticipatedCents float64 `json:"anticipated_cents"`
}

// Snapshot is the "what should I pay right now" answer. Pointer fields
// are conditionally present: nil means the underlying data was not
// available, and the field is omitted from JSON rather than zeroed.
type Snapshot struct {
	AsOf  string `json:"as_of"`
	AsOfT int64  `json:"as_of_t"`

	IsStale   bool `json:"is_stale"`
	IsLowCost bool `json:"is_low_cost"`

	CurrSppCents       float64 `json:"curr_spp_cents"`
	CurrDeliveredCents float64 `json:"curr_delivered_cents"`

	// Absent when no real-time history exists to average.
	AvgDeliveredCents    *float64 `json:"avg_delivered_cents,omitempty"`
	RawAvgDeliveredCents *float64 `json:"raw_avg_delivered_cents,omitempty"`
	CostLevel            *int     `json:"cost_level,omitempty"`

	Demand1m  *float64 `json:"demand_1m,omitempty"`
	Demand5m  *float64 `json:"demand_5m,omitempty"`
	Demand15m *float64 `json:"demand_15m,omitempty"`

	// Present only when a current-or-next DAM entry exists.
	NextSppCents         *float64 `json:"next_spp_cents,omitempty"`
	NextDeliveredCents   *float64 `json:"next_delivered_cents,omitempty"`
	NextAnticipatedCents *float64 `json:"next_anticipated_cents,omitempty"`

	// Present only when not already low-cost and a cheaper future hour
	// was found.
	NextLowCost          *int64   `json:"next_low_cost,omitempty"`
	NextLowCostDelivered *float64 `json:"next_low_cost_delivered,omitempty"`

	DamPeakNext      *int64   `json:"dam_peak_next,omitempty"`
	DamPeakDelivered *float64 `json:"dam_peak_delivered,omitempty"`

	// Included only on request.
	Dam map[string]DamPrices `json:"dam,omitempty"`
}
