package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bentpower/ercotsum-go/calc"
	"github.com/bentpower/ercotsum-go/logging"
	"github.com/spf13/viper"
)

type AppConfigApi struct {
	Address string
	Port    int16
	// If not assigned, the server will serve embedded files.
	// If assigned, the server will serve files from the directory,
	// that must contain a "static" and "templates" directory.
	// This is useful for development.
	WwwDir *string `mapstructure:"www_dir"`
	// Secret for the viewer preference cookie. The default is fine for a
	// single-host LAN deployment.
	SessionKey *string `mapstructure:"session_key"`
}

func (a AppConfigApi) GetSessionKey() string {
	if a.SessionKey == nil {
		return "ercotsum-cookie-key"
	}
	return *a.SessionKey
}

type AppConfigArchive struct {
	Path string
	// How many days of snapshots should be stored before they get purged
	DataRetentionDays *int `mapstructure:"data_retention_days"`
	// How many days daily backup files should be stored before they get deleted
	BackupRetentionDays *int `mapstructure:"backup_retention_days"`
	// How many days of per-day price history directories to keep on disk
	HistoryRetentionDays *int `mapstructure:"history_retention_days"`
}

func (a AppConfigArchive) GetDataRetentionDays() int {
	if a.DataRetentionDays == nil {
		return 90
	}
	return *a.DataRetentionDays
}

func (a AppConfigArchive) GetBackupRetentionDays() int {
	if a.BackupRetentionDays == nil {
		return 90
	}
	return *a.BackupRetentionDays
}

func (a AppConfigArchive) GetHistoryRetentionDays() int {
	if a.HistoryRetentionDays == nil {
		return 365
	}
	return *a.HistoryRetentionDays
}

type AppConfigErcot struct {
	// Settlement point to record, e.g. "LZ_NORTH"
	Zone string
	// Timezone the grid operator publishes in, default: "America/Chicago"
	Timezone *string
	// HTTP timeout in seconds for page fetches
	TimeoutSecs *int `mapstructure:"timeout_secs"`
	// When to pull the real-time page, shortly after each 15-minute boundary
	RealTimeRunAt *string `mapstructure:"real_time_run_at"`
	// When to pull the day-ahead page, shortly before the 2pm cutover
	DayAheadRunAt *string `mapstructure:"day_ahead_run_at"`
}

func (e AppConfigErcot) GetZone() string {
	if e.Zone == "" {
		return "LZ_NORTH"
	}
	return e.Zone
}

func (e AppConfigErcot) GetTimezone() string {
	if e.Timezone == nil {
		return "America/Chicago"
	}
	return *e.Timezone
}

func (e AppConfigErcot) GetTimeoutSecs() int {
	if e.TimeoutSecs == nil {
		return 30
	}
	return *e.TimeoutSecs
}

func (e AppConfigErcot) GetRealTimeRunAt() string {
	if e.RealTimeRunAt == nil {
		return "5,20,35,50 * * * *"
	}
	return *e.RealTimeRunAt
}

func (e AppConfigErcot) GetDayAheadRunAt() string {
	if e.DayAheadRunAt == nil {
		return "58 13 * * *"
	}
	return *e.DayAheadRunAt
}

type AppConfigFiles struct {
	// Directory holding the current price files and per-day history
	BaseDir string `mapstructure:"base_dir"`
	// Snapshot cache max age in seconds before it is recomputed
	CacheAgeSecs *int `mapstructure:"cache_age_secs"`
}

func (f AppConfigFiles) GetCacheAgeSecs() int {
	if f.CacheAgeSecs == nil {
		return 10
	}
	return *f.CacheAgeSecs
}

type AppConfigPricing struct {
	// Charge added by the utility for delivering a kWh, in cents
	DeliveryCharge *float64 `mapstructure:"delivery_charge"`
	// Fraction of the raw price added for ancillary services
	AncillaryFraction float64 `mapstructure:"ancillary_fraction"`
	// Fraction applied on top for taxes and fees
	TaxFeeFraction float64 `mapstructure:"tax_fee_fraction"`
	// Fixed monthly charges in dollars, spread over every sample
	TduMonthlyFee    float64  `mapstructure:"tdu_monthly_fee"`
	RetailMonthlyFee float64  `mapstructure:"retail_monthly_fee"`
	DaysPerMonth     *float64 `mapstructure:"days_per_month"`
	SamplesPerHour   *int     `mapstructure:"samples_per_hour"`
	// Regulatory price cap in cents/kWh, bounds the anticipated price
	PriceCap *float64 `mapstructure:"price_cap"`
	// Delivered prices under average * multiplier count as low cost
	LowCostMultiplier *float64 `mapstructure:"low_cost_multiplier"`
	// How many days of history feed the running average
	AveragingDays *int `mapstructure:"averaging_days"`
	// Weight divisor applied per day of age in the running average
	DecayFactor *float64 `mapstructure:"decay_factor"`
	// A current sample older than this many seconds is stale
	AgeLimitSecs *int `mapstructure:"age_limit_secs"`
}

func (p AppConfigPricing) GetDeliveryCharge() float64 {
	if p.DeliveryCharge == nil {
		return 3.5448
	}
	return *p.DeliveryCharge
}

func (p AppConfigPricing) GetDaysPerMonth() float64 {
	if p.DaysPerMonth == nil {
		return 30.5
	}
	return *p.DaysPerMonth
}

func (p AppConfigPricing) GetSamplesPerHour() int {
	if p.SamplesPerHour == nil {
		return 4
	}
	return *p.SamplesPerHour
}

func (p AppConfigPricing) GetPriceCap() float64 {
	if p.PriceCap == nil {
		return 900.0
	}
	return *p.PriceCap
}

func (p AppConfigPricing) GetLowCostMultiplier() float64 {
	if p.LowCostMultiplier == nil {
		return 1.3
	}
	return *p.LowCostMultiplier
}

func (p AppConfigPricing) GetAveragingDays() int {
	if p.AveragingDays == nil {
		return 7
	}
	return *p.AveragingDays
}

func (p AppConfigPricing) GetDecayFactor() float64 {
	if p.DecayFactor == nil {
		return 2.0
	}
	return *p.DecayFactor
}

func (p AppConfigPricing) GetAgeLimitSecs() int {
	if p.AgeLimitSecs == nil {
		return 1200
	}
	return *p.AgeLimitSecs
}

// CalcParams bundles the pricing knobs for the calculators.
func (p AppConfigPricing) CalcParams() calc.Params {
	return calc.Params{
		DeliveryCharge:    p.GetDeliveryCharge(),
		AncillaryFraction: p.AncillaryFraction,
		TaxFeeFraction:    p.TaxFeeFraction,
		TduMonthlyFee:     p.TduMonthlyFee,
		RetailMonthlyFee:  p.RetailMonthlyFee,
		DaysPerMonth:      p.GetDaysPerMonth(),
		SamplesPerHour:    float64(p.GetSamplesPerHour()),
		PriceCap:          p.GetPriceCap(),
		LowCostMultiplier: p.GetLowCostMultiplier(),
	}
}

type AppConfigDemand struct {
	Host     string
	Port     int16
	Username string
	Password string
	// MQTT topic the meter publishes readings on
	Topic string
	// How many trailing demand log lines to scan for the averages
	TailLines *int `mapstructure:"tail_lines"`
	// Demand samples older than this many seconds are ignored
	AgeLimitSecs *int `mapstructure:"age_limit_secs"`
	// Rated clothes drier load in kW, used for cost estimates
	DrierKWh *float64 `mapstructure:"drier_kwh"`
}

func (d AppConfigDemand) Enabled() bool {
	return d.Host != ""
}

func (d AppConfigDemand) GetTailLines() int {
	if d.TailLines == nil {
		return 1000
	}
	return *d.TailLines
}

func (d AppConfigDemand) GetAgeLimitSecs() int {
	if d.AgeLimitSecs == nil {
		return 1200
	}
	return *d.AgeLimitSecs
}

func (d AppConfigDemand) GetDrierKWh() float64 {
	if d.DrierKWh == nil {
		return 5.0
	}
	return *d.DrierKWh
}

type AppConfigSnapshot struct {
	// How often to refresh the cached snapshot
	RunAt *string `mapstructure:"run_at"`
	// How often to purge old data and take a backup
	MaintenanceRunAt *string `mapstructure:"maintenance_run_at"`
}

func (s AppConfigSnapshot) GetRunAt() string {
	if s.RunAt == nil {
		return "* * * * *"
	}
	return *s.RunAt
}

func (s AppConfigSnapshot) GetMaintenanceRunAt() string {
	if s.MaintenanceRunAt == nil {
		return "15 3 * * *"
	}
	return *s.MaintenanceRunAt
}

type AppConfigLogging struct {
	// Min log level for database : "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Maximum number of log entries in the database, default: 10000
	DbMaxEntries *int `mapstructure:"db_max_entries"`
	// Min log level for console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	ConsoleLevel *string `mapstructure:"console_level"`
}

func (l AppConfigLogging) GetDbLevel() slog.Level {
	return logging.LevelFromString(l.DbLevel)
}

func (l AppConfigLogging) GetDbAttrsFormat() logging.LogAttrFormat {
	if l.DbAttrsFormat == nil {
		return "JSON"
	}
	if strings.EqualFold(*l.DbAttrsFormat, "text") {
		return "TEXT"
	}
	return "JSON"
}

func (l AppConfigLogging) GetDbMaxEntries() int {
	if l.DbMaxEntries == nil {
		return 10000
	}
	return *l.DbMaxEntries
}

func (l AppConfigLogging) GetConsoleLevel() slog.Level {
	return logging.LevelFromString(l.ConsoleLevel)
}

type AppConfig struct {
	Api      AppConfigApi
	Archive  AppConfigArchive
	Ercot    AppConfigErcot
	Files    AppConfigFiles
	Pricing  AppConfigPricing
	Demand   AppConfigDemand
	Snapshot AppConfigSnapshot
	Logging  AppConfigLogging
}

func Load(path string) (*AppConfig, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath("config")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var c AppConfig

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}

	return &c, nil
}
