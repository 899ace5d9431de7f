package collect

import (
	"context"
	"errors"
	"fmt"

	"github.com/rickgao/marketdata/internal/calendar"
	"github.com/rickgao/marketdata/internal/model"
	"github.com/rickgao/marketdata/internal/normalize"
)

// CollectFundamentals refreshes snapshots for symbols whose newest stored
// snapshot is older than the freshness window. Records missing required
// ratios are skipped; a partial snapshot would read as a real one.
func (c *Collector) CollectFundamentals(ctx context.Context, runID string) (*Report, error) {
	report := newReport(runID, "fundamentals")

	target := c.today()
	since := calendar.MonthsBack(target, c.cfg.FreshnessMonths)

	var snaps []model.FundamentalSnapshot
	for _, symbol := range c.symbols {
		fresh, err := c.store.HasRecentFundamentals(ctx, symbol, since)
		if err != nil {
			report.Statuses[symbol] = StatusFailed
			return report, fmt.Errorf("freshness check for %s: %w", symbol, err)
		}
		if fresh {
			report.Statuses[symbol] = StatusSkipped
			continue
		}

		raw, ok, err := c.sources.Fundamentals.FetchFundamentals(ctx, symbol, target)
		if err != nil {
			c.logger.Error("fundamentals fetch failed", "run_id", runID, "symbol", symbol, "error", err)
			report.Statuses[symbol] = StatusFailed
			continue
		}
		if !ok {
			c.logger.Warn("no fundamentals for symbol", "run_id", runID, "symbol", symbol)
			report.Statuses[symbol] = StatusSkipped
			continue
		}

		snap, err := normalize.Fundamentals(symbol, target, raw)
		if err != nil {
			var incomplete *normalize.IncompleteDataError
			if errors.As(err, &incomplete) {
				c.logger.Warn("incomplete fundamentals", "run_id", runID,
					"symbol", symbol, "missing", incomplete.Missing)
				report.Statuses[symbol] = StatusSkipped
			} else {
				c.logger.Error("fundamentals normalize failed", "run_id", runID, "symbol", symbol, "error", err)
				report.Statuses[symbol] = StatusFailed
			}
			continue
		}

		snaps = append(snaps, snap)
		report.Statuses[symbol] = StatusMerged

		if err := c.pace(ctx); err != nil {
			return report, err
		}
	}

	merge, err := c.store.MergeFundamentals(ctx, snaps)
	if err != nil {
		return report, fmt.Errorf("merge fundamentals: %w", err)
	}
	report.Merge = merge

	c.logger.Info("fundamentals collected", "run_id", runID,
		"merged", report.Count(StatusMerged), "skipped", report.Count(StatusSkipped),
		"failed", report.Count(StatusFailed))
	return report, nil
}
