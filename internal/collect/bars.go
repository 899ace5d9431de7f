package collect

import (
	"context"
	"fmt"

	"github.com/rickgao/marketdata/internal/gap"
	"github.com/rickgao/marketdata/internal/model"
	"github.com/rickgao/marketdata/internal/normalize"
)

// maxLookback returns the configured ceiling, in periods, for a step unit.
func (c *Collector) maxLookback(unit model.StepUnit) int {
	switch unit {
	case model.StepWeek:
		return c.cfg.WeeklyLookback
	case model.StepMonth:
		return c.cfg.MonthlyLookback
	default:
		return c.cfg.DailyLookback
	}
}

// CollectBars reconciles the historical bar series at one granularity.
// Per symbol it reads the stored watermark, estimates how many periods
// are missing, and fetches only that window. Bars accumulate across
// symbols and merge once at the end.
func (c *Collector) CollectBars(ctx context.Context, runID string, g model.Granularity) (*Report, error) {
	report := newReport(runID, "bars:"+string(g))

	unit, ok := g.StepUnit()
	if !ok {
		return report, fmt.Errorf("granularity %q has no historical step unit", g)
	}

	var bars []model.PriceBar
	for _, symbol := range c.symbols {
		// Storage failures abort the kind; provider failures below only
		// skip the entity.
		watermark, have, err := c.store.LatestBarTime(ctx, symbol, g)
		if err != nil {
			report.Statuses[symbol] = StatusFailed
			return report, fmt.Errorf("watermark for %s %s: %w", symbol, g, err)
		}

		limit := gap.Estimate(watermark, have, c.today(), unit, c.maxLookback(unit), c.cfg.LookbackBuffer)

		raws, err := c.sources.Bars.FetchBars(ctx, symbol, g, limit)
		if err != nil {
			c.logger.Error("bar fetch failed", "run_id", runID, "symbol", symbol, "granularity", g, "error", err)
			report.Statuses[symbol] = StatusFailed
			continue
		}

		normalized := normalize.Bars(symbol, g, raws, c.logger)
		if len(normalized) == 0 {
			report.Statuses[symbol] = StatusSkipped
		} else {
			bars = append(bars, normalized...)
			report.Statuses[symbol] = StatusMerged
		}

		if err := c.pace(ctx); err != nil {
			return report, err
		}
	}

	merge, err := c.store.MergePriceBars(ctx, bars)
	if err != nil {
		return report, fmt.Errorf("merge %s bars: %w", g, err)
	}
	report.Merge = merge

	c.logger.Info("bars collected", "run_id", runID, "granularity", g,
		"inserted", merge.Inserted, "updated", merge.Updated, "skipped", merge.Skipped,
		"failed", report.Count(StatusFailed))
	return report, nil
}

// CollectIntraday refreshes the latest tick per (symbol, interval). Each
// symbol merges as its own sub-batch so a store failure mid-run loses at
// most one symbol's ticks.
func (c *Collector) CollectIntraday(ctx context.Context, runID string, intervals []model.Granularity) (*Report, error) {
	report := newReport(runID, "intraday")

	for _, symbol := range c.symbols {
		var ticks []model.IntradayBar
		failed := false

		for _, g := range intervals {
			raws, err := c.sources.Bars.FetchBars(ctx, symbol, g, 1)
			if err != nil {
				c.logger.Error("intraday fetch failed", "run_id", runID, "symbol", symbol, "interval", g, "error", err)
				failed = true
				continue
			}

			tick, ok := normalize.LatestIntraday(symbol, g, raws, c.logger)
			if ok {
				ticks = append(ticks, tick)
			}

			if err := c.pace(ctx); err != nil {
				return report, err
			}
		}

		switch {
		case len(ticks) == 0 && failed:
			report.Statuses[symbol] = StatusFailed
		case len(ticks) == 0:
			report.Statuses[symbol] = StatusSkipped
		default:
			merge, err := c.store.MergeIntradayBars(ctx, ticks)
			if err != nil {
				c.logger.Error("intraday merge failed", "run_id", runID, "symbol", symbol, "error", err)
				report.Statuses[symbol] = StatusFailed
				continue
			}
			report.Merge.Add(merge)
			report.Statuses[symbol] = StatusMerged
		}
	}

	c.logger.Info("intraday collected", "run_id", runID,
		"merged", report.Count(StatusMerged), "skipped", report.Count(StatusSkipped),
		"failed", report.Count(StatusFailed))
	return report, nil
}
