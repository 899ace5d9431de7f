package provider

// Raw records carry provider-native values before normalization. Numeric
// fields are `any` because providers disagree on representation: TwelveData
// returns quoted strings, Yahoo returns floats with JSON nulls, FMP mixes
// both and uses "N/A" sentinels.

// RawBar is one provider-native OHLCV record.
type RawBar struct {
	Timestamp string // Provider-native timestamp text
	Open      any
	High      any
	Low       any
	Close     any
	Volume    any
}

// RawProfile is a provider-native instrument profile.
type RawProfile struct {
	Symbol   string // Canonical symbol, rewrite already undone
	Name     string
	Sector   string
	Industry string
}

// RawFundamentals is one provider-native fundamentals record.
type RawFundamentals struct {
	// TargetDate is the provider's as-of date when it supplies one
	// (quarterly sources); empty for trailing-twelve-month sources,
	// where the caller's collection date applies.
	TargetDate    string
	Sector        string
	Industry      string
	ROE           any
	EPS           any
	BPS           any
	Beta          any
	MarketCap     any
	DividendYield any
	CurrentRatio  any
	DebtRatio     any
}

// RawObservation is one FRED series observation. Value "." marks a
// missing reading.
type RawObservation struct {
	Date  string
	Value string
}

// RawSectorPerformance is one FMP sector performance entry.
type RawSectorPerformance struct {
	Sector            string
	ChangesPercentage string // e.g. "1.23%"
}
