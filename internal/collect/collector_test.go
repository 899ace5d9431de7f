package collect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rickgao/marketdata/internal/config"
	"github.com/rickgao/marketdata/internal/model"
	"github.com/rickgao/marketdata/internal/provider"
)

// fakeStorage implements Storage in memory and records merge calls.
type fakeStorage struct {
	existing    map[string]bool
	watermarks  map[string]time.Time
	fresh       map[string]bool
	failLatest  map[string]error
	mergeErr    error
	instruments [][]model.Instrument
	priceBars   [][]model.PriceBar
	intraday    [][]model.IntradayBar
	snaps       [][]model.FundamentalSnapshot
	metrics     [][]model.MarketMetric
	sectors     [][]model.SectorReturn
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		existing:   map[string]bool{},
		watermarks: map[string]time.Time{},
		fresh:      map[string]bool{},
		failLatest: map[string]error{},
	}
}

func (f *fakeStorage) LatestBarTime(_ context.Context, symbol string, _ model.Granularity) (time.Time, bool, error) {
	if err := f.failLatest[symbol]; err != nil {
		return time.Time{}, false, err
	}
	wm, ok := f.watermarks[symbol]
	return wm, ok, nil
}

func (f *fakeStorage) ExistingSymbols(_ context.Context, symbols []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, s := range symbols {
		if f.existing[s] {
			out[s] = true
		}
	}
	return out, nil
}

func (f *fakeStorage) HasRecentFundamentals(_ context.Context, symbol string, _ time.Time) (bool, error) {
	return f.fresh[symbol], nil
}

func (f *fakeStorage) MergeInstruments(_ context.Context, v []model.Instrument) (model.MergeReport, error) {
	f.instruments = append(f.instruments, v)
	return model.MergeReport{Inserted: len(v)}, f.mergeErr
}

func (f *fakeStorage) MergePriceBars(_ context.Context, v []model.PriceBar) (model.MergeReport, error) {
	f.priceBars = append(f.priceBars, v)
	return model.MergeReport{Inserted: len(v)}, f.mergeErr
}

func (f *fakeStorage) MergeIntradayBars(_ context.Context, v []model.IntradayBar) (model.MergeReport, error) {
	if f.mergeErr != nil {
		return model.MergeReport{}, f.mergeErr
	}
	f.intraday = append(f.intraday, v)
	return model.MergeReport{Updated: len(v)}, nil
}

func (f *fakeStorage) MergeFundamentals(_ context.Context, v []model.FundamentalSnapshot) (model.MergeReport, error) {
	f.snaps = append(f.snaps, v)
	return model.MergeReport{Inserted: len(v)}, f.mergeErr
}

func (f *fakeStorage) MergeMarketMetrics(_ context.Context, v []model.MarketMetric) (model.MergeReport, error) {
	f.metrics = append(f.metrics, v)
	return model.MergeReport{Inserted: len(v)}, f.mergeErr
}

func (f *fakeStorage) MergeSectorReturns(_ context.Context, v []model.SectorReturn) (model.MergeReport, error) {
	f.sectors = append(f.sectors, v)
	return model.MergeReport{Inserted: len(v)}, f.mergeErr
}

// fakeBars returns canned raw bars and records the limit of each call.
type fakeBars struct {
	bars   map[string][]provider.RawBar
	err    map[string]error
	limits map[string][]int
}

func newFakeBars() *fakeBars {
	return &fakeBars{
		bars:   map[string][]provider.RawBar{},
		err:    map[string]error{},
		limits: map[string][]int{},
	}
}

func (f *fakeBars) FetchBars(_ context.Context, symbol string, _ model.Granularity, limit int) ([]provider.RawBar, error) {
	f.limits[symbol] = append(f.limits[symbol], limit)
	if err := f.err[symbol]; err != nil {
		return nil, err
	}
	return f.bars[symbol], nil
}

type fakeProfiles struct {
	profiles map[string]provider.RawProfile
	err      map[string]error
	calls    []string
}

func (f *fakeProfiles) Profile(_ context.Context, symbol string) (provider.RawProfile, bool, error) {
	f.calls = append(f.calls, symbol)
	if err := f.err[symbol]; err != nil {
		return provider.RawProfile{}, false, err
	}
	p, ok := f.profiles[symbol]
	return p, ok, nil
}

type fakeFundamentals struct {
	records map[string]provider.RawFundamentals
	calls   []string
}

func (f *fakeFundamentals) FetchFundamentals(_ context.Context, symbol string, _ time.Time) (provider.RawFundamentals, bool, error) {
	f.calls = append(f.calls, symbol)
	r, ok := f.records[symbol]
	return r, ok, nil
}

type fakeObservations struct {
	obs map[string][]provider.RawObservation
}

func (f *fakeObservations) FetchObservations(_ context.Context, seriesID string, _, _ time.Time) ([]provider.RawObservation, error) {
	return f.obs[seriesID], nil
}

type fakeSectors struct {
	perf []provider.RawSectorPerformance
	err  error
}

func (f *fakeSectors) SectorPerformance(_ context.Context) ([]provider.RawSectorPerformance, error) {
	return f.perf, f.err
}

func testCollector(store Storage, sources Sources, symbols []string) *Collector {
	cfg := config.RunConfig{
		DailyLookback:       250,
		WeeklyLookback:      100,
		MonthlyLookback:     60,
		LookbackBuffer:      1,
		FreshnessMonths:     3,
		MetricsLookbackDays: 365,
	}
	c := New(store, sources, symbols, cfg, nil)
	c.now = func() time.Time {
		return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	}
	return c
}

func TestCollectProfiles_SkipsExisting(t *testing.T) {
	store := newFakeStorage()
	store.existing["AAPL"] = true

	profiles := &fakeProfiles{profiles: map[string]provider.RawProfile{
		"MSFT": {Symbol: "MSFT", Name: "Microsoft", Sector: "Technology"},
	}}

	c := testCollector(store, Sources{Profiles: profiles}, []string{"AAPL", "MSFT"})

	report, err := c.CollectProfiles(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("CollectProfiles() error = %v", err)
	}

	if report.Statuses["AAPL"] != StatusSkipped {
		t.Errorf("AAPL status = %s, want skipped", report.Statuses["AAPL"])
	}
	if report.Statuses["MSFT"] != StatusMerged {
		t.Errorf("MSFT status = %s, want merged", report.Statuses["MSFT"])
	}
	if len(profiles.calls) != 1 || profiles.calls[0] != "MSFT" {
		t.Errorf("provider calls = %v, want [MSFT] only", profiles.calls)
	}
	if len(store.instruments) != 1 || len(store.instruments[0]) != 1 {
		t.Fatalf("merged instrument batches = %v, want one batch of one", store.instruments)
	}
	if store.instruments[0][0].Symbol != "MSFT" {
		t.Errorf("merged symbol = %s, want MSFT", store.instruments[0][0].Symbol)
	}
}

func TestCollectBars_GapLimitsFetch(t *testing.T) {
	store := newFakeStorage()
	// AAPL watermark five days back, MSFT has none.
	store.watermarks["AAPL"] = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	bars := newFakeBars()
	bars.bars["AAPL"] = []provider.RawBar{
		{Timestamp: "2024-03-14", Open: "1", High: "2", Low: "0.5", Close: "1.5", Volume: "100"},
	}

	c := testCollector(store, Sources{Bars: bars}, []string{"AAPL", "MSFT"})

	report, err := c.CollectBars(context.Background(), "run-1", model.GranularityDay)
	if err != nil {
		t.Fatalf("CollectBars() error = %v", err)
	}

	if got := bars.limits["AAPL"]; len(got) != 1 || got[0] != 6 {
		t.Errorf("AAPL fetch limits = %v, want [6] (5 days + buffer)", got)
	}
	if got := bars.limits["MSFT"]; len(got) != 1 || got[0] != 250 {
		t.Errorf("MSFT fetch limits = %v, want [250] (full backfill)", got)
	}
	if report.Statuses["AAPL"] != StatusMerged {
		t.Errorf("AAPL status = %s, want merged", report.Statuses["AAPL"])
	}
	if report.Statuses["MSFT"] != StatusSkipped {
		t.Errorf("MSFT status = %s, want skipped (no bars)", report.Statuses["MSFT"])
	}
}

func TestCollectBars_PartialBarsDropped(t *testing.T) {
	store := newFakeStorage()
	bars := newFakeBars()
	bars.bars["AAPL"] = []provider.RawBar{
		{Timestamp: "2024-03-14", Open: "1", High: "2", Low: "0.5", Close: "1.5", Volume: "100"},
		{Timestamp: "2024-03-13", Open: "1", High: "2", Low: "0.5", Close: "N/A", Volume: "90"},
		{Timestamp: "2024-03-12", Open: "1", High: "2", Low: "0.5", Close: "1.2", Volume: ""},
	}

	c := testCollector(store, Sources{Bars: bars}, []string{"AAPL"})

	if _, err := c.CollectBars(context.Background(), "run-1", model.GranularityDay); err != nil {
		t.Fatalf("CollectBars() error = %v", err)
	}

	if len(store.priceBars) != 1 {
		t.Fatalf("merge calls = %d, want 1", len(store.priceBars))
	}
	merged := store.priceBars[0]
	if len(merged) != 2 {
		t.Fatalf("merged bars = %d, want 2 (partial close dropped, unknown volume kept)", len(merged))
	}
	// Ascending order, partial 03-13 gone.
	if !merged[0].Timestamp.Equal(time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first merged bar = %v, want 2024-03-12", merged[0].Timestamp)
	}
	if merged[0].Volume != 0 {
		t.Errorf("unknown volume = %v, want 0", merged[0].Volume)
	}
}

func TestCollectBars_ProviderFailureIsolated(t *testing.T) {
	store := newFakeStorage()
	bars := newFakeBars()
	bars.err["BAD"] = errors.New("provider 500")
	bars.bars["GOOD"] = []provider.RawBar{
		{Timestamp: "2024-03-14", Open: "1", High: "2", Low: "0.5", Close: "1.5", Volume: "100"},
	}

	c := testCollector(store, Sources{Bars: bars}, []string{"BAD", "GOOD"})

	report, err := c.CollectBars(context.Background(), "run-1", model.GranularityDay)
	if err != nil {
		t.Fatalf("CollectBars() error = %v", err)
	}

	if report.Statuses["BAD"] != StatusFailed {
		t.Errorf("BAD status = %s, want failed", report.Statuses["BAD"])
	}
	if report.Statuses["GOOD"] != StatusMerged {
		t.Errorf("GOOD status = %s, want merged despite earlier failure", report.Statuses["GOOD"])
	}
	if len(store.priceBars) != 1 || len(store.priceBars[0]) != 1 {
		t.Errorf("merged batches = %v, want GOOD's single bar", store.priceBars)
	}
}

func TestCollectBars_StorageFailureAbortsKind(t *testing.T) {
	store := newFakeStorage()
	store.failLatest["AAPL"] = errors.New("db down")
	bars := newFakeBars()

	c := testCollector(store, Sources{Bars: bars}, []string{"AAPL", "MSFT"})

	_, err := c.CollectBars(context.Background(), "run-1", model.GranularityDay)
	if err == nil {
		t.Fatal("CollectBars() error = nil, want storage error to abort the kind")
	}
	if len(bars.limits) != 0 {
		t.Errorf("provider calls after storage failure = %v, want none", bars.limits)
	}
	if len(store.priceBars) != 0 {
		t.Errorf("merge calls = %d, want 0", len(store.priceBars))
	}
}

func TestCollectBars_IntradayGranularityRejected(t *testing.T) {
	c := testCollector(newFakeStorage(), Sources{Bars: newFakeBars()}, []string{"AAPL"})
	if _, err := c.CollectBars(context.Background(), "run-1", model.Granularity15Min); err == nil {
		t.Error("CollectBars(15min) error = nil, want step-unit error")
	}
}

func TestCollectIntraday_PerSymbolBatches(t *testing.T) {
	store := newFakeStorage()
	bars := newFakeBars()
	bars.bars["AAPL"] = []provider.RawBar{
		{Timestamp: "2024-03-15 11:45:00", Open: "1", High: "2", Low: "0.5", Close: "1.5", Volume: "100"},
	}
	bars.bars["MSFT"] = []provider.RawBar{
		{Timestamp: "2024-03-15 11:45:00", Open: "3", High: "4", Low: "2.5", Close: "3.5", Volume: "50"},
	}

	c := testCollector(store, Sources{Bars: bars}, []string{"AAPL", "MSFT"})

	intervals := []model.Granularity{model.Granularity15Min, model.GranularityHour}
	report, err := c.CollectIntraday(context.Background(), "run-1", intervals)
	if err != nil {
		t.Fatalf("CollectIntraday() error = %v", err)
	}

	if len(store.intraday) != 2 {
		t.Fatalf("sub-batch merges = %d, want 2 (one per symbol)", len(store.intraday))
	}
	for i, batch := range store.intraday {
		if len(batch) != 2 {
			t.Errorf("batch %d size = %d, want 2 (one per interval)", i, len(batch))
		}
	}
	if report.Count(StatusMerged) != 2 {
		t.Errorf("merged symbols = %d, want 2", report.Count(StatusMerged))
	}
	// Each fetch asks for the latest tick only.
	for sym, limits := range bars.limits {
		for _, l := range limits {
			if l != 1 {
				t.Errorf("%s fetch limit = %d, want 1", sym, l)
			}
		}
	}
}

func TestCollectIntraday_MergeFailureLosesOneSymbol(t *testing.T) {
	store := newFakeStorage()
	store.mergeErr = errors.New("db down")
	bars := newFakeBars()
	bars.bars["AAPL"] = []provider.RawBar{
		{Timestamp: "2024-03-15 11:45:00", Open: "1", High: "2", Low: "0.5", Close: "1.5", Volume: "100"},
	}

	c := testCollector(store, Sources{Bars: bars}, []string{"AAPL"})

	report, err := c.CollectIntraday(context.Background(), "run-1", []model.Granularity{model.Granularity15Min})
	if err != nil {
		t.Fatalf("CollectIntraday() error = %v, want nil (isolation)", err)
	}
	if report.Statuses["AAPL"] != StatusFailed {
		t.Errorf("AAPL status = %s, want failed", report.Statuses["AAPL"])
	}
}

func TestCollectFundamentals_FreshnessSkip(t *testing.T) {
	store := newFakeStorage()
	store.fresh["AAPL"] = true

	funds := &fakeFundamentals{records: map[string]provider.RawFundamentals{
		"MSFT": {
			EPS: "9.2", ROE: "0.38", CurrentRatio: "1.2", DebtRatio: "0.4",
			Sector: "Technology",
		},
	}}

	c := testCollector(store, Sources{Fundamentals: funds}, []string{"AAPL", "MSFT"})

	report, err := c.CollectFundamentals(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("CollectFundamentals() error = %v", err)
	}

	if report.Statuses["AAPL"] != StatusSkipped {
		t.Errorf("AAPL status = %s, want skipped (fresh snapshot)", report.Statuses["AAPL"])
	}
	if len(funds.calls) != 1 || funds.calls[0] != "MSFT" {
		t.Errorf("provider calls = %v, want [MSFT] only", funds.calls)
	}
	if report.Statuses["MSFT"] != StatusMerged {
		t.Errorf("MSFT status = %s, want merged", report.Statuses["MSFT"])
	}
	if len(store.snaps) != 1 || len(store.snaps[0]) != 1 {
		t.Fatalf("merged snapshot batches = %v, want one batch of one", store.snaps)
	}
	if !store.snaps[0][0].TargetDate.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("target date = %v, want collection date", store.snaps[0][0].TargetDate)
	}
}

func TestCollectFundamentals_IncompleteSkipped(t *testing.T) {
	store := newFakeStorage()
	funds := &fakeFundamentals{records: map[string]provider.RawFundamentals{
		"AAPL": {EPS: "6.1", ROE: "1.5"}, // current_ratio and debt_ratio missing
	}}

	c := testCollector(store, Sources{Fundamentals: funds}, []string{"AAPL"})

	report, err := c.CollectFundamentals(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("CollectFundamentals() error = %v", err)
	}
	if report.Statuses["AAPL"] != StatusSkipped {
		t.Errorf("AAPL status = %s, want skipped (incomplete)", report.Statuses["AAPL"])
	}
	if len(store.snaps[0]) != 0 {
		t.Errorf("merged snapshots = %d, want 0", len(store.snaps[0]))
	}
}

func TestCollectMarketMetrics(t *testing.T) {
	store := newFakeStorage()
	obs := &fakeObservations{obs: map[string][]provider.RawObservation{
		provider.SeriesVIX: {
			{Date: "2024-03-13", Value: "14.2"},
			{Date: "2024-03-14", Value: "."},
			{Date: "2024-03-15", Value: "13.9"},
		},
		provider.SeriesFedRateUpper: {
			{Date: "2024-03-15", Value: "5.50"},
		},
	}}
	index := newFakeBars()
	index.bars[indexSymbol] = []provider.RawBar{
		{Timestamp: "2024-03-14", Open: 5100.0, High: 5200.0, Low: 5050.0, Close: 5150.0, Volume: 1000.0},
		{Timestamp: "2024-02-29", Open: 5000.0, High: 5100.0, Low: 4950.0, Close: 5000.0, Volume: 1000.0},
	}

	c := testCollector(store, Sources{Observations: obs, Index: index}, nil)

	report, err := c.CollectMarketMetrics(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("CollectMarketMetrics() error = %v", err)
	}

	if len(store.metrics) != 1 {
		t.Fatalf("merge calls = %d, want 1", len(store.metrics))
	}
	byName := map[string]int{}
	var oneMonth *model.MarketMetric
	for i, m := range store.metrics[0] {
		byName[m.Name]++
		if m.Name == "SNP500_1M_RETURN" {
			oneMonth = &store.metrics[0][i]
		}
	}
	if byName["VIX"] != 2 {
		t.Errorf("VIX observations = %d, want 2 (missing sentinel dropped)", byName["VIX"])
	}
	if byName["FEDFUNDS_UPPER"] != 1 {
		t.Errorf("FEDFUNDS_UPPER observations = %d, want 1", byName["FEDFUNDS_UPPER"])
	}
	if oneMonth == nil {
		t.Fatal("SNP500_1M_RETURN missing from merged metrics")
	}
	// 5150 vs the nearest close to 2024-02-29, which is 5000: +3%.
	if oneMonth.Value < 2.99 || oneMonth.Value > 3.01 {
		t.Errorf("1M return = %v, want 3.0", oneMonth.Value)
	}
	if report.Statuses["SNP500_RETURNS"] != StatusMerged {
		t.Errorf("index return status = %s, want merged", report.Statuses["SNP500_RETURNS"])
	}
}

func TestCollectSectorPerformance(t *testing.T) {
	store := newFakeStorage()
	sectors := &fakeSectors{perf: []provider.RawSectorPerformance{
		{Sector: "Technology", ChangesPercentage: "1.25%"},
		{Sector: "Energy", ChangesPercentage: "-0.4%"},
	}}

	c := testCollector(store, Sources{Sectors: sectors}, nil)

	report, err := c.CollectSectorPerformance(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("CollectSectorPerformance() error = %v", err)
	}
	if len(store.sectors) != 1 || len(store.sectors[0]) != 2 {
		t.Fatalf("merged sector batches = %v, want one batch of two", store.sectors)
	}
	if report.Statuses["sectors"] != StatusMerged {
		t.Errorf("status = %s, want merged", report.Statuses["sectors"])
	}
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !store.sectors[0][0].Date.Equal(want) {
		t.Errorf("sector return date = %v, want %v", store.sectors[0][0].Date, want)
	}
}

func TestNearestClose(t *testing.T) {
	bars := []model.PriceBar{
		{Timestamp: time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC), Close: 10},
		{Timestamp: time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), Close: 20},
		{Timestamp: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Close: 30},
	}

	// March 1 falls in a gap; Feb 28 is two days off, March 4 is three.
	got, ok := nearestClose(bars, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if !ok || got != 20 {
		t.Errorf("nearestClose = %v, %v, want 20, true", got, ok)
	}

	if _, ok := nearestClose(nil, time.Now()); ok {
		t.Error("nearestClose(nil) ok = true, want false")
	}
}

func TestRunBatch_KindsIndependent(t *testing.T) {
	store := newFakeStorage()
	bars := newFakeBars()
	bars.bars["AAPL"] = []provider.RawBar{
		{Timestamp: "2024-03-14", Open: "1", High: "2", Low: "0.5", Close: "1.5", Volume: "100"},
	}
	index := newFakeBars()
	index.bars[indexSymbol] = []provider.RawBar{
		{Timestamp: "2024-03-14", Open: 1.0, High: 1.0, Low: 1.0, Close: 1.0, Volume: 1.0},
	}

	sources := Sources{
		Profiles:     &fakeProfiles{profiles: map[string]provider.RawProfile{"AAPL": {Symbol: "AAPL", Name: "Apple"}}},
		Bars:         bars,
		Index:        index,
		Fundamentals: &fakeFundamentals{},
		Observations: &fakeObservations{},
		Sectors:      &fakeSectors{err: errors.New("provider down")},
	}

	c := testCollector(store, sources, []string{"AAPL"})

	reports := c.RunBatch(context.Background())

	// profiles + 3 bar granularities + fundamentals + metrics + sectors.
	if len(reports) != 7 {
		t.Fatalf("reports = %d, want 7", len(reports))
	}
	runID := reports[0].RunID
	if runID == "" {
		t.Fatal("empty run id")
	}
	for _, r := range reports {
		if r.RunID != runID {
			t.Errorf("report %s run id = %s, want %s", r.Kind, r.RunID, runID)
		}
	}
	// The sector failure must not stop the bar merges.
	if len(store.priceBars) != 3 {
		t.Errorf("bar merge calls = %d, want 3", len(store.priceBars))
	}
	if len(store.instruments) != 1 {
		t.Errorf("instrument merge calls = %d, want 1", len(store.instruments))
	}
}
