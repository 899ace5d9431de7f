package collect

import (
	"context"
	"fmt"

	"github.com/rickgao/marketdata/internal/model"
	"github.com/rickgao/marketdata/internal/normalize"
)

// CollectProfiles creates instrument rows for symbols the store does not
// know yet. Symbols that already exist are skipped without a provider
// call; profiles are immutable enough that re-fetching them every run
// is wasted quota.
func (c *Collector) CollectProfiles(ctx context.Context, runID string) (*Report, error) {
	report := newReport(runID, "profiles")

	existing, err := c.store.ExistingSymbols(ctx, c.symbols)
	if err != nil {
		return report, fmt.Errorf("list existing symbols: %w", err)
	}

	var instruments []model.Instrument
	for _, symbol := range c.symbols {
		if existing[symbol] {
			report.Statuses[symbol] = StatusSkipped
			continue
		}

		raw, ok, err := c.sources.Profiles.Profile(ctx, symbol)
		if err != nil {
			c.logger.Error("profile fetch failed", "run_id", runID, "symbol", symbol, "error", err)
			report.Statuses[symbol] = StatusFailed
			continue
		}
		if !ok {
			c.logger.Warn("no profile for symbol", "run_id", runID, "symbol", symbol)
			report.Statuses[symbol] = StatusSkipped
			continue
		}

		instruments = append(instruments, normalize.Profile(raw))
		report.Statuses[symbol] = StatusMerged

		if err := c.pace(ctx); err != nil {
			return report, err
		}
	}

	merge, err := c.store.MergeInstruments(ctx, instruments)
	if err != nil {
		return report, fmt.Errorf("merge instruments: %w", err)
	}
	report.Merge = merge

	c.logger.Info("profiles collected", "run_id", runID,
		"merged", report.Count(StatusMerged), "skipped", report.Count(StatusSkipped),
		"failed", report.Count(StatusFailed))
	return report, nil
}
