package collect

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/marketdata/internal/config"
	"github.com/rickgao/marketdata/internal/model"
	"github.com/rickgao/marketdata/internal/provider"
)

// Storage is the persistence surface the collector reconciles against.
type Storage interface {
	LatestBarTime(ctx context.Context, symbol string, g model.Granularity) (time.Time, bool, error)
	ExistingSymbols(ctx context.Context, symbols []string) (map[string]bool, error)
	HasRecentFundamentals(ctx context.Context, symbol string, since time.Time) (bool, error)

	MergeInstruments(ctx context.Context, instruments []model.Instrument) (model.MergeReport, error)
	MergePriceBars(ctx context.Context, bars []model.PriceBar) (model.MergeReport, error)
	MergeIntradayBars(ctx context.Context, ticks []model.IntradayBar) (model.MergeReport, error)
	MergeFundamentals(ctx context.Context, snaps []model.FundamentalSnapshot) (model.MergeReport, error)
	MergeMarketMetrics(ctx context.Context, metrics []model.MarketMetric) (model.MergeReport, error)
	MergeSectorReturns(ctx context.Context, returns []model.SectorReturn) (model.MergeReport, error)
}

// ProfileSource fetches instrument profiles. The comma-ok result is false
// when the provider has no record for the symbol.
type ProfileSource interface {
	Profile(ctx context.Context, symbol string) (provider.RawProfile, bool, error)
}

// BarSource fetches OHLCV series, newest first or oldest first; the
// collector normalizes order either way.
type BarSource interface {
	FetchBars(ctx context.Context, symbol string, g model.Granularity, limit int) ([]provider.RawBar, error)
}

// FundamentalsSource fetches one fundamentals record as of target.
type FundamentalsSource interface {
	FetchFundamentals(ctx context.Context, symbol string, target time.Time) (provider.RawFundamentals, bool, error)
}

// ObservationSource fetches macro series observations over a date window.
type ObservationSource interface {
	FetchObservations(ctx context.Context, seriesID string, start, end time.Time) ([]provider.RawObservation, error)
}

// SectorSource fetches the day's sector performance table.
type SectorSource interface {
	SectorPerformance(ctx context.Context) ([]provider.RawSectorPerformance, error)
}

// Sources bundles the provider adapters a Collector draws from. Index is
// the adapter used for broad-index bars and may differ from Bars.
type Sources struct {
	Profiles     ProfileSource
	Bars         BarSource
	Index        BarSource
	Fundamentals FundamentalsSource
	Observations ObservationSource
	Sectors      SectorSource
}

// Collector runs reconciliation for a fixed symbol universe.
type Collector struct {
	store   Storage
	sources Sources
	symbols []string
	cfg     config.RunConfig
	logger  *slog.Logger

	// now is swappable in tests.
	now func() time.Time
}

// New builds a Collector over the given storage, adapters, and symbol
// universe.
func New(store Storage, sources Sources, symbols []string, cfg config.RunConfig, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		store:   store,
		sources: sources,
		symbols: symbols,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Status records the outcome for one entity within a run.
type Status string

const (
	StatusMerged  Status = "merged"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Report summarizes one collection kind within a run.
type Report struct {
	RunID    string
	Kind     string
	Statuses map[string]Status
	Merge    model.MergeReport
}

func newReport(runID, kind string) *Report {
	return &Report{
		RunID:    runID,
		Kind:     kind,
		Statuses: make(map[string]Status),
	}
}

// Count returns how many entities finished with the given status.
func (r *Report) Count(s Status) int {
	n := 0
	for _, got := range r.Statuses {
		if got == s {
			n++
		}
	}
	return n
}

// pace sleeps the configured delay between provider calls.
func (c *Collector) pace(ctx context.Context) error {
	if c.cfg.PaceDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(c.cfg.PaceDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// today returns the current date truncated to midnight UTC.
func (c *Collector) today() time.Time {
	now := c.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// RunBatch executes one full reconciliation pass. Profiles run first so
// bars and fundamentals can resolve their instrument rows; every other
// kind is independent and a failed kind never stops the rest.
func (c *Collector) RunBatch(ctx context.Context) []*Report {
	runID := uuid.NewString()
	c.logger.Info("starting batch run", "run_id", runID, "symbols", len(c.symbols))

	var reports []*Report
	run := func(kind string, fn func(context.Context, string) (*Report, error)) {
		if ctx.Err() != nil {
			return
		}
		report, err := fn(ctx, runID)
		if err != nil {
			c.logger.Error("collection kind failed", "run_id", runID, "kind", kind, "error", err)
		}
		if report != nil {
			reports = append(reports, report)
		}
	}

	run("profiles", c.CollectProfiles)
	for _, g := range []model.Granularity{model.GranularityDay, model.GranularityWeek, model.GranularityMonth} {
		g := g
		run("bars:"+string(g), func(ctx context.Context, runID string) (*Report, error) {
			return c.CollectBars(ctx, runID, g)
		})
	}
	run("fundamentals", c.CollectFundamentals)
	run("market_metrics", c.CollectMarketMetrics)
	run("sector_performance", c.CollectSectorPerformance)

	c.logger.Info("batch run complete", "run_id", runID, "kinds", len(reports))
	return reports
}
