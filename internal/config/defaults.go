package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultFMPURL        = "https://financialmodelingprep.com/api/v3"
	DefaultTwelveDataURL = "https://api.twelvedata.com"
	DefaultFREDURL       = "https://api.stlouisfed.org/fred"
	DefaultYahooURL      = "https://query1.finance.yahoo.com"

	DefaultDBPort    = 5432
	DefaultDBSSLMode = "prefer"
	DefaultMaxConns  = 10
	DefaultMinConns  = 2

	DefaultSymbolsFile  = "static/symbols.txt"
	DefaultPaceDelay    = 1 * time.Second
	DefaultMaxRetries   = 3
	DefaultRetryBackoff = 500 * time.Millisecond
	DefaultAPITimeout   = 10 * time.Second

	DefaultDailyLookback   = 250
	DefaultWeeklyLookback  = 100
	DefaultMonthlyLookback = 60
	DefaultLookbackBuffer  = 1

	DefaultFreshnessMonths     = 3
	DefaultMetricsLookbackDays = 365

	DefaultLoopInterval = 1 * time.Hour
	DefaultBatchDelay   = 1 * time.Hour
)

func (c *CollectorConfig) applyDefaults() {
	// Provider defaults
	if c.Providers.FMP.BaseURL == "" {
		c.Providers.FMP.BaseURL = DefaultFMPURL
	}
	if c.Providers.TwelveData.BaseURL == "" {
		c.Providers.TwelveData.BaseURL = DefaultTwelveDataURL
	}
	if c.Providers.FRED.BaseURL == "" {
		c.Providers.FRED.BaseURL = DefaultFREDURL
	}
	if c.Providers.Yahoo.BaseURL == "" {
		c.Providers.Yahoo.BaseURL = DefaultYahooURL
	}

	// Database defaults
	applyDBDefaults(&c.Database.Postgres)

	// Collector defaults
	if c.Collector.SymbolsFile == "" {
		c.Collector.SymbolsFile = DefaultSymbolsFile
	}
	if c.Collector.PaceDelay == 0 {
		c.Collector.PaceDelay = DefaultPaceDelay
	}
	if c.Collector.MaxRetries == 0 {
		c.Collector.MaxRetries = DefaultMaxRetries
	}
	if c.Collector.RetryBackoff == 0 {
		c.Collector.RetryBackoff = DefaultRetryBackoff
	}
	if c.Collector.APITimeout == 0 {
		c.Collector.APITimeout = DefaultAPITimeout
	}
	if c.Collector.DailyLookback == 0 {
		c.Collector.DailyLookback = DefaultDailyLookback
	}
	if c.Collector.WeeklyLookback == 0 {
		c.Collector.WeeklyLookback = DefaultWeeklyLookback
	}
	if c.Collector.MonthlyLookback == 0 {
		c.Collector.MonthlyLookback = DefaultMonthlyLookback
	}
	if c.Collector.LookbackBuffer == 0 {
		c.Collector.LookbackBuffer = DefaultLookbackBuffer
	}
	if c.Collector.FreshnessMonths == 0 {
		c.Collector.FreshnessMonths = DefaultFreshnessMonths
	}
	if c.Collector.MetricsLookbackDays == 0 {
		c.Collector.MetricsLookbackDays = DefaultMetricsLookbackDays
	}

	// Schedule defaults
	if c.Schedule.LoopInterval == 0 {
		c.Schedule.LoopInterval = DefaultLoopInterval
	}
	if c.Schedule.BatchDelay == 0 {
		c.Schedule.BatchDelay = DefaultBatchDelay
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
