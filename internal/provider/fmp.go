package provider

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FMP is the Financial Modeling Prep client.
type FMP struct {
	restClient
	keys *KeyPool
}

// NewFMP creates an FMP client using keys from the given pool.
func NewFMP(baseURL string, keys *KeyPool, opts ...Option) *FMP {
	return &FMP{
		restClient: newRestClient("fmp", baseURL, opts...),
		keys:       keys,
	}
}

// rewriteFMPSymbol maps a canonical class-share symbol to FMP's form
// ("BRK.B" -> "BRK-B"). Adapter-local; raw records carry the canonical
// symbol.
func rewriteFMPSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, ".", "-")
}

func (c *FMP) keyed(query url.Values) url.Values {
	if query == nil {
		query = url.Values{}
	}
	query.Set("apikey", c.keys.Next())
	return query
}

type fmpProfile struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"companyName"`
	Sector      string `json:"sector"`
	Industry    string `json:"industry"`
	Beta        any    `json:"beta"`
	MktCap      any    `json:"mktCap"`
}

// Profile fetches a company profile. The second return is false when the
// provider has no data for the symbol.
func (c *FMP) Profile(ctx context.Context, symbol string) (RawProfile, bool, error) {
	var resp []fmpProfile
	path := "/profile/" + url.PathEscape(rewriteFMPSymbol(symbol))
	if err := c.getJSON(ctx, path, c.keyed(nil), &resp); err != nil {
		return RawProfile{}, false, fmt.Errorf("get profile %s: %w", symbol, err)
	}
	if len(resp) == 0 {
		return RawProfile{}, false, nil
	}

	p := resp[0]
	return RawProfile{
		Symbol:   symbol,
		Name:     p.CompanyName,
		Sector:   p.Sector,
		Industry: p.Industry,
	}, true, nil
}

type fmpKeyMetricsTTM struct {
	ROETTM               any `json:"roeTTM"`
	NetIncomePerShareTTM any `json:"netIncomePerShareTTM"`
	BookValuePerShareTTM any `json:"bookValuePerShareTTM"`
	DividendYieldTTM     any `json:"dividendYieldTTM"`
	CurrentRatioTTM      any `json:"currentRatioTTM"`
	DebtToEquityTTM      any `json:"debtToEquityTTM"`
}

// TTMFundamentals sources fundamentals from FMP's trailing-twelve-month
// key metrics plus the company profile. This is the primary fundamentals
// adapter.
type TTMFundamentals struct {
	FMP *FMP
}

// FetchFundamentals fetches TTM metrics for a symbol. The reported
// values are as-of the collection date, so TargetDate is left empty.
func (s TTMFundamentals) FetchFundamentals(ctx context.Context, symbol string, _ time.Time) (RawFundamentals, bool, error) {
	rewritten := url.PathEscape(rewriteFMPSymbol(symbol))

	var metrics []fmpKeyMetricsTTM
	if err := s.FMP.getJSON(ctx, "/key-metrics-ttm/"+rewritten, s.FMP.keyed(nil), &metrics); err != nil {
		return RawFundamentals{}, false, fmt.Errorf("get key metrics %s: %w", symbol, err)
	}

	var profiles []fmpProfile
	if err := s.FMP.getJSON(ctx, "/profile/"+rewritten, s.FMP.keyed(nil), &profiles); err != nil {
		return RawFundamentals{}, false, fmt.Errorf("get profile %s: %w", symbol, err)
	}

	if len(metrics) == 0 || len(profiles) == 0 {
		return RawFundamentals{}, false, nil
	}

	m, p := metrics[0], profiles[0]
	return RawFundamentals{
		Sector:        p.Sector,
		Industry:      p.Industry,
		ROE:           m.ROETTM,
		EPS:           m.NetIncomePerShareTTM,
		BPS:           m.BookValuePerShareTTM,
		Beta:          p.Beta,
		MarketCap:     p.MktCap,
		DividendYield: m.DividendYieldTTM,
		CurrentRatio:  m.CurrentRatioTTM,
		DebtRatio:     m.DebtToEquityTTM,
	}, true, nil
}

type fmpRatios struct {
	Date             string `json:"date"`
	ReturnOnEquity   any    `json:"returnOnEquity"`
	EPS              any    `json:"eps"`
	BookValuePerShare any   `json:"bookValuePerShare"`
	DividendYield    any    `json:"dividendYield"`
	CurrentRatio     any    `json:"currentRatio"`
	DebtEquityRatio  any    `json:"debtEquityRatio"`
	MarketCap        any    `json:"marketCap"`
}

// QuarterlyFundamentals sources fundamentals from FMP's quarterly ratio
// history, picking the newest report on or before the target date. It is
// the alternate fundamentals adapter.
type QuarterlyFundamentals struct {
	FMP   *FMP
	Limit int // Quarters of history to request; 0 means 4
}

// FetchFundamentals returns the newest quarterly ratios dated at or
// before target.
func (s QuarterlyFundamentals) FetchFundamentals(ctx context.Context, symbol string, target time.Time) (RawFundamentals, bool, error) {
	limit := s.Limit
	if limit <= 0 {
		limit = 4
	}

	query := s.FMP.keyed(url.Values{"limit": []string{strconv.Itoa(limit)}})
	var resp []fmpRatios
	path := "/ratios/" + url.PathEscape(rewriteFMPSymbol(symbol))
	if err := s.FMP.getJSON(ctx, path, query, &resp); err != nil {
		return RawFundamentals{}, false, fmt.Errorf("get ratios %s: %w", symbol, err)
	}
	if len(resp) == 0 {
		return RawFundamentals{}, false, nil
	}

	sort.Slice(resp, func(i, j int) bool { return resp[i].Date > resp[j].Date })
	targetStr := target.Format("2006-01-02")
	for _, r := range resp {
		if r.Date > targetStr {
			continue
		}
		return RawFundamentals{
			TargetDate:    r.Date,
			ROE:           r.ReturnOnEquity,
			EPS:           r.EPS,
			BPS:           r.BookValuePerShare,
			MarketCap:     r.MarketCap,
			DividendYield: r.DividendYield,
			CurrentRatio:  r.CurrentRatio,
			DebtRatio:     r.DebtEquityRatio,
		}, true, nil
	}

	return RawFundamentals{}, false, nil
}

type fmpSectorPerformance struct {
	Sector            string `json:"sector"`
	ChangesPercentage string `json:"changesPercentage"`
}

// SectorPerformance fetches today's per-sector percent changes.
func (c *FMP) SectorPerformance(ctx context.Context) ([]RawSectorPerformance, error) {
	var resp []fmpSectorPerformance
	if err := c.getJSON(ctx, "/sectors-performance", c.keyed(nil), &resp); err != nil {
		return nil, fmt.Errorf("get sector performance: %w", err)
	}

	out := make([]RawSectorPerformance, 0, len(resp))
	for _, s := range resp {
		out = append(out, RawSectorPerformance{
			Sector:            s.Sector,
			ChangesPercentage: s.ChangesPercentage,
		})
	}
	return out, nil
}
