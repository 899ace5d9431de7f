package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *CollectorConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if len(c.Providers.FMP.APIKeys) == 0 {
		return errors.New("providers.fmp.api_keys requires at least one key")
	}
	if len(c.Providers.TwelveData.APIKeys) == 0 {
		return errors.New("providers.twelvedata.api_keys requires at least one key")
	}
	if c.Providers.FRED.APIKey == "" {
		return errors.New("providers.fred.api_key is required")
	}

	if err := c.Database.Postgres.validate("database.postgres"); err != nil {
		return err
	}

	if c.Collector.MaxRetries < 1 {
		return errors.New("collector.max_retries must be >= 1")
	}
	if c.Collector.DailyLookback < 1 {
		return errors.New("collector.daily_lookback must be >= 1")
	}
	if c.Collector.WeeklyLookback < 1 {
		return errors.New("collector.weekly_lookback must be >= 1")
	}
	if c.Collector.MonthlyLookback < 1 {
		return errors.New("collector.monthly_lookback must be >= 1")
	}
	if c.Collector.LookbackBuffer < 1 {
		return errors.New("collector.lookback_buffer must be >= 1")
	}
	if c.Collector.FreshnessMonths < 1 {
		return errors.New("collector.freshness_months must be >= 1")
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
