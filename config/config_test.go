package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testYaml = `
api:
  address: "127.0.0.1"
  port: 8080
files:
  base_dir: "/var/lib/ercotsum"
ercot:
  zone: "LZ_HOUSTON"
pricing:
  delivery_charge: 4.1
  ancillary_fraction: 0.035
  tax_fee_fraction: 0.0664
  tdu_monthly_fee: 3.42
  retail_monthly_fee: 9.99
  averaging_days: 14
demand:
  host: "mqtt.local"
  port: 1883
  topic: "meter/reading"
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(testYaml), 0644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	config, err := Load(writeTestConfig(t))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	t.Run("Explicit Values", func(t *testing.T) {
		if config.Api.Port != 8080 {
			t.Errorf("Expected api port 8080, got %d", config.Api.Port)
		}
		if config.Files.BaseDir != "/var/lib/ercotsum" {
			t.Errorf("Expected base dir /var/lib/ercotsum, got %s", config.Files.BaseDir)
		}
		if config.Ercot.GetZone() != "LZ_HOUSTON" {
			t.Errorf("Expected zone LZ_HOUSTON, got %s", config.Ercot.GetZone())
		}
		if config.Pricing.GetDeliveryCharge() != 4.1 {
			t.Errorf("Expected delivery charge 4.1, got %f", config.Pricing.GetDeliveryCharge())
		}
		if config.Pricing.GetAveragingDays() != 14 {
			t.Errorf("Expected averaging days 14, got %d", config.Pricing.GetAveragingDays())
		}
		if !config.Demand.Enabled() {
			t.Error("Expected demand metering to be enabled")
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		if config.Ercot.GetTimezone() != "America/Chicago" {
			t.Errorf("Expected default timezone America/Chicago, got %s", config.Ercot.GetTimezone())
		}
		if config.Ercot.GetRealTimeRunAt() != "5,20,35,50 * * * *" {
			t.Errorf("Unexpected default real-time schedule %s", config.Ercot.GetRealTimeRunAt())
		}
		if config.Pricing.GetPriceCap() != 900.0 {
			t.Errorf("Expected default price cap 900, got %f", config.Pricing.GetPriceCap())
		}
		if config.Pricing.GetLowCostMultiplier() != 1.3 {
			t.Errorf("Expected default multiplier 1.3, got %f", config.Pricing.GetLowCostMultiplier())
		}
		if config.Pricing.GetDecayFactor() != 2.0 {
			t.Errorf("Expected default decay factor 2.0, got %f", config.Pricing.GetDecayFactor())
		}
		if config.Pricing.GetAgeLimitSecs() != 1200 {
			t.Errorf("Expected default age limit 1200, got %d", config.Pricing.GetAgeLimitSecs())
		}
		if config.Demand.GetDrierKWh() != 5.0 {
			t.Errorf("Expected default drier load 5.0, got %f", config.Demand.GetDrierKWh())
		}
		if config.Demand.GetAgeLimitSecs() != 1200 {
			t.Errorf("Expected default demand age limit 1200, got %d", config.Demand.GetAgeLimitSecs())
		}
	})

	t.Run("Calc Params", func(t *testing.T) {
		p := config.Pricing.CalcParams()
		if p.DeliveryCharge != 4.1 {
			t.Errorf("Expected delivery charge 4.1, got %f", p.DeliveryCharge)
		}
		if p.AncillaryFraction != 0.035 {
			t.Errorf("Expected ancillary fraction 0.035, got %f", p.AncillaryFraction)
		}
		if p.SamplesPerHour != 4.0 {
			t.Errorf("Expected default samples per hour 4, got %v", p.SamplesPerHour)
		}
		// (3.42+9.99)*100/30.5/24/4 cents amortized onto each sample.
		base := p.MonthlyBasePerSample()
		if base < 0.457 || base > 0.459 {
			t.Errorf("Unexpected monthly base per sample %f", base)
		}
	})
}
