package config

import "time"

// CollectorConfig is the root configuration for a collector instance.
type CollectorConfig struct {
	Instance  InstanceConfig  `yaml:"instance"`
	Providers ProvidersConfig `yaml:"providers"`
	Database  DatabaseConfig  `yaml:"database"`
	Collector RunConfig       `yaml:"collector"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
}

// InstanceConfig identifies this collector.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// ProvidersConfig holds settings for each external data provider.
type ProvidersConfig struct {
	FMP        KeyedProviderConfig `yaml:"fmp"`
	TwelveData KeyedProviderConfig `yaml:"twelvedata"`
	FRED       ProviderConfig      `yaml:"fred"`
	Yahoo      ProviderConfig      `yaml:"yahoo"`
}

// KeyedProviderConfig is a provider accessed with a rotating pool of API keys.
type KeyedProviderConfig struct {
	BaseURL string   `yaml:"base_url"`
	APIKeys []string `yaml:"api_keys"`
}

// ProviderConfig is a provider with at most one API key.
type ProviderConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// DatabaseConfig holds the PostgreSQL connection for persisted market data.
type DatabaseConfig struct {
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// RunConfig holds reconciliation-run settings.
type RunConfig struct {
	SymbolsFile string `yaml:"symbols_file"`

	// Request pacing and retries (per request, not per batch).
	PaceDelay    time.Duration `yaml:"pace_delay"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	APITimeout   time.Duration `yaml:"api_timeout"`

	// Gap estimation bounds per granularity, in periods.
	DailyLookback   int `yaml:"daily_lookback"`
	WeeklyLookback  int `yaml:"weekly_lookback"`
	MonthlyLookback int `yaml:"monthly_lookback"`
	LookbackBuffer  int `yaml:"lookback_buffer"`

	// Fundamentals are refreshed only when the newest snapshot is older
	// than this many months.
	FreshnessMonths int `yaml:"freshness_months"`

	// Window of macro indicator history requested each run.
	MetricsLookbackDays int `yaml:"metrics_lookback_days"`
}

// ScheduleConfig holds run-loop settings.
type ScheduleConfig struct {
	LoopInterval time.Duration `yaml:"loop_interval"`
	BatchDelay   time.Duration `yaml:"batch_delay"`
}
