package convert

import (
	"math"
)

func TwoDecimals(number float64) float64 {
	return RoundFloat64(number, 2)
}

func RoundFloat64(number float64, decimals int) float64 {
	return math.Round(number*math.Pow10(int(decimals))) / math.Pow10(int(decimals))
}

// CentsPerKWh converts the upstream dollars-per-MWh unit to cents per kWh.
func CentsPerKWh(dollarsPerMWh float64) float64 {
	return dollarsPerMWh * 100.0 / 1000.0
}
