package model

import "time"

// -----------------------------------------------------------------------------
// Relational Types
// -----------------------------------------------------------------------------

// Instrument represents a tracked security.
type Instrument struct {
	ID        int64     // Surrogate key (assigned by storage)
	Symbol    string    // Natural key, canonical form (e.g., "BRK.B")
	Name      string    // Display name
	Sector    string    // GICS sector
	Industry  string    // GICS industry
	CreatedAt time.Time // First persisted
	UpdatedAt time.Time // Last merged
}

// FundamentalSnapshot holds quarterly-granularity ratios for an instrument
// as of TargetDate. Ratio fields a provider failed to supply stay unknown.
type FundamentalSnapshot struct {
	Symbol        string    // References Instrument
	TargetDate    time.Time // Natural key with Symbol (date-only)
	ROE           OptFloat
	EPS           OptFloat
	BPS           OptFloat // Book value per share
	Beta          OptFloat
	MarketCap     OptFloat
	DividendYield OptFloat
	CurrentRatio  OptFloat
	DebtRatio     OptFloat
	Sector        string
	Industry      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// -----------------------------------------------------------------------------
// Time-Series Types
// -----------------------------------------------------------------------------

// PriceBar is one historical OHLCV bar.
// Natural key: (Symbol, Granularity, Timestamp).
type PriceBar struct {
	Symbol      string
	Granularity Granularity // 1day, 1week, or 1month
	Timestamp   time.Time   // Bar date (date-only, UTC)
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IntradayBar is the latest intraday tick for an instrument. Unlike
// PriceBar the natural key is (Symbol, Granularity) only: each refresh
// overwrites the single live row in place.
type IntradayBar struct {
	Symbol      string
	Granularity Granularity // 15min or 1h
	Timestamp   time.Time   // Bar start time (UTC)
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MarketMetric is a broad market indicator keyed by name, not instrument
// (e.g., "VIX", "FEDFUNDS_UPPER", "SNP500_3M_RETURN").
// Natural key: (Name, Date).
type MarketMetric struct {
	Name      string
	Date      time.Time // Date-only, UTC
	Value     float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SectorReturn is one sector's percent return for a day.
// Natural key: (Date, Sector).
type SectorReturn struct {
	Date      time.Time // Date-only, UTC
	Sector    string
	Return    float64 // Percent
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MergeReport summarizes one merge call.
type MergeReport struct {
	Inserted int
	Updated  int
	Skipped  int
}

// Add accumulates another report into r.
func (r *MergeReport) Add(o MergeReport) {
	r.Inserted += o.Inserted
	r.Updated += o.Updated
	r.Skipped += o.Skipped
}

// Total returns the number of records the merge accounted for.
func (r MergeReport) Total() int {
	return r.Inserted + r.Updated + r.Skipped
}
