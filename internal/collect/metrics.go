package collect

import (
	"context"
	"fmt"
	"time"

	"github.com/rickgao/marketdata/internal/calendar"
	"github.com/rickgao/marketdata/internal/model"
	"github.com/rickgao/marketdata/internal/normalize"
	"github.com/rickgao/marketdata/internal/provider"
)

const indexSymbol = "^GSPC"

// CollectMarketMetrics reconciles the macro indicator series: FRED VIX
// and policy rate over the configured window, plus trailing S&P 500
// returns derived from index closes.
func (c *Collector) CollectMarketMetrics(ctx context.Context, runID string) (*Report, error) {
	report := newReport(runID, "market_metrics")

	end := c.today()
	start := end.AddDate(0, 0, -c.cfg.MetricsLookbackDays)

	var metrics []model.MarketMetric
	series := []struct {
		name     string
		seriesID string
	}{
		{"VIX", provider.SeriesVIX},
		{"FEDFUNDS_UPPER", provider.SeriesFedRateUpper},
	}
	for _, s := range series {
		raws, err := c.sources.Observations.FetchObservations(ctx, s.seriesID, start, end)
		if err != nil {
			c.logger.Error("observation fetch failed", "run_id", runID, "series", s.seriesID, "error", err)
			report.Statuses[s.name] = StatusFailed
			continue
		}
		obs := normalize.Observations(s.name, raws, c.logger)
		metrics = append(metrics, obs...)
		report.Statuses[s.name] = StatusMerged

		if err := c.pace(ctx); err != nil {
			return report, err
		}
	}

	returns, err := c.indexReturns(ctx, end)
	if err != nil {
		c.logger.Error("index return computation failed", "run_id", runID, "error", err)
		report.Statuses["SNP500_RETURNS"] = StatusFailed
	} else {
		metrics = append(metrics, returns...)
		report.Statuses["SNP500_RETURNS"] = StatusMerged
	}

	merge, err := c.store.MergeMarketMetrics(ctx, metrics)
	if err != nil {
		return report, fmt.Errorf("merge market metrics: %w", err)
	}
	report.Merge = merge

	c.logger.Info("market metrics collected", "run_id", runID,
		"inserted", merge.Inserted, "updated", merge.Updated,
		"failed", report.Count(StatusFailed))
	return report, nil
}

// indexReturns computes SNP500_{n}M_RETURN for n in 1..12 from daily
// index closes. Anchors land on the last business day of each trailing
// month; the close used is the nearest available bar, since holidays
// can leave the anchor itself without one.
func (c *Collector) indexReturns(ctx context.Context, asOf time.Time) ([]model.MarketMetric, error) {
	// 13 months of daily closes covers every anchor with slack.
	raws, err := c.sources.Index.FetchBars(ctx, indexSymbol, model.GranularityDay, 400)
	if err != nil {
		return nil, fmt.Errorf("fetch index bars: %w", err)
	}

	bars := normalize.Bars(indexSymbol, model.GranularityDay, raws, c.logger)
	if len(bars) == 0 {
		return nil, fmt.Errorf("no index bars returned")
	}

	latest := bars[len(bars)-1].Close
	if latest == 0 {
		return nil, fmt.Errorf("latest index close is zero")
	}

	var metrics []model.MarketMetric
	for n := 1; n <= 12; n++ {
		anchor := calendar.LastBusinessDay(calendar.MonthsBack(asOf, n))
		past, ok := nearestClose(bars, anchor)
		if !ok || past == 0 {
			c.logger.Warn("no index close near anchor", "months_back", n, "anchor", anchor)
			continue
		}
		metrics = append(metrics, model.MarketMetric{
			Name:  fmt.Sprintf("SNP500_%dM_RETURN", n),
			Date:  asOf,
			Value: (latest/past - 1) * 100,
		})
	}
	return metrics, nil
}

// nearestClose returns the close of the bar whose date is closest to
// target. Bars must be sorted ascending.
func nearestClose(bars []model.PriceBar, target time.Time) (float64, bool) {
	if len(bars) == 0 {
		return 0, false
	}
	best := bars[0]
	bestDist := absDuration(bars[0].Timestamp.Sub(target))
	for _, b := range bars[1:] {
		d := absDuration(b.Timestamp.Sub(target))
		if d < bestDist {
			best, bestDist = b, d
		}
	}
	return best.Close, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// CollectSectorPerformance records today's percent return per sector.
func (c *Collector) CollectSectorPerformance(ctx context.Context, runID string) (*Report, error) {
	report := newReport(runID, "sector_performance")

	raws, err := c.sources.Sectors.SectorPerformance(ctx)
	if err != nil {
		report.Statuses["sectors"] = StatusFailed
		return report, fmt.Errorf("fetch sector performance: %w", err)
	}

	returns := normalize.SectorReturns(c.today(), raws, c.logger)
	if len(returns) == 0 {
		report.Statuses["sectors"] = StatusSkipped
		return report, nil
	}

	merge, err := c.store.MergeSectorReturns(ctx, returns)
	if err != nil {
		report.Statuses["sectors"] = StatusFailed
		return report, fmt.Errorf("merge sector returns: %w", err)
	}
	report.Merge = merge
	report.Statuses["sectors"] = StatusMerged

	c.logger.Info("sector performance collected", "run_id", runID,
		"inserted", merge.Inserted, "updated", merge.Updated)
	return report, nil
}
