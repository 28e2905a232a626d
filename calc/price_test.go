package calc

import (
	"testing"
)

func testParams() Params {
	return Params{
		DeliveryCharge:    3.5448,
		AncillaryFraction: 0.035,
		TaxFeeFraction:    0.0664,
		TduMonthlyFee:     3.42,
		RetailMonthlyFee:  9.99,
		DaysPerMonth:      30.5,
		SamplesPerHour:    4,
		PriceCap:          900.0,
		LowCostMultiplier: 1.3,
	}
}

func TestDeliveredMonotonicInRawPrice(t *testing.T) {
	p := testParams()
	prev := Delivered(0, p)
	for raw := 0.5; raw <= 100; raw += 0.5 {
		d := Delivered(raw, p)
		if d <= prev {
			t.Fatalf("Delivered(%f) = %f, not greater than %f", raw, d, prev)
		}
		prev = d
	}
}

func TestDeliveredMonotonicInDeliveryCharge(t *testing.T) {
	p := testParams()
	prev := Delivered(2.5, p)
	for charge := 4.0; charge <= 10; charge += 0.5 {
		p.DeliveryCharge = charge
		d := Delivered(2.5, p)
		if d <= prev {
			t.Fatalf("Delivered with charge %f = %f, not greater than %f", charge, d, prev)
		}
		prev = d
	}
}

func TestDeliveredFormula(t *testing.T) {
	p := testParams()
	raw := 2.0
	extended := raw * (1 + p.AncillaryFraction)
	want := (extended+p.DeliveryCharge)*(1+p.TaxFeeFraction) + p.MonthlyBasePerSample()
	if got := Delivered(raw, p); got != want {
		t.Errorf("Delivered(%f) = %f, want %f", raw, got, want)
	}
}

func TestAnticipatedNeverUnderestimates(t *testing.T) {
	p := testParams()
	for _, raw := range []float64{0, 0.1, 1, 1.99, 2, 5, 42.5, 100, 899, 5000} {
		if a := Anticipated(raw, p); a < raw {
			t.Errorf("Anticipated(%f) = %f, below the raw price", raw, a)
		}
	}
}

func TestAnticipatedSquareAndCap(t *testing.T) {
	p := testParams()

	// Above 2 cents the square term dominates.
	if got, want := Anticipated(4.0, p), 8.0; got != want {
		t.Errorf("Anticipated(4) = %f, want %f", got, want)
	}
	// Below 2 cents the raw price wins over its square.
	if got, want := Anticipated(1.0, p), 1.0; got != want {
		t.Errorf("Anticipated(1) = %f, want %f", got, want)
	}
	// The projection never exceeds the offer cap unless the raw price does.
	if got, want := Anticipated(100.0, p), p.PriceCap; got != want {
		t.Errorf("Anticipated(100) = %f, want cap %f", got, want)
	}
	if got, want := Anticipated(2000.0, p), 2000.0; got != want {
		t.Errorf("Anticipated(2000) = %f, want raw %f", got, want)
	}
}

func TestCostLevel(t *testing.T) {
	p := testParams()
	level := LowCostLevel(20.0, p)
	if level != 26.0 {
		t.Fatalf("LowCostLevel(20) = %f, want 26", level)
	}
	tests := []struct {
		delivered float64
		want      int
	}{
		{40.0, 1},
		{26.0, 1},
		{25.9, 0},
		{0.0, 0},
		{-5.0, -1},
		{80.0, 3},
	}
	for _, tt := range tests {
		if got := CostLevel(tt.delivered, level); got != tt.want {
			t.Errorf("CostLevel(%f, %f) = %d, want %d", tt.delivered, level, got, tt.want)
		}
	}
}
