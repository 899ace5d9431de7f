package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/rickgao/marketdata/internal/model"
	"github.com/rickgao/marketdata/internal/provider"
)

// IncompleteDataError reports a fundamentals record whose required
// fields the provider failed to supply. The entity is skipped for the
// run, not failed.
type IncompleteDataError struct {
	Symbol  string
	Missing []string
}

func (e *IncompleteDataError) Error() string {
	return fmt.Sprintf("incomplete fundamentals for %s: missing %s", e.Symbol, strings.Join(e.Missing, ", "))
}

// Fundamentals converts a raw fundamentals record into a canonical
// snapshot dated at collectionDate (or the provider's own as-of date
// when it supplies one). EPS, ROE, current ratio, and debt ratio are
// required; other ratios may stay unknown.
func Fundamentals(symbol string, collectionDate time.Time, raw provider.RawFundamentals) (model.FundamentalSnapshot, error) {
	targetDate := collectionDate.UTC().Truncate(24 * time.Hour)
	if raw.TargetDate != "" {
		t, err := time.Parse(dateLayout, raw.TargetDate)
		if err != nil {
			return model.FundamentalSnapshot{}, &IncompleteDataError{Symbol: symbol, Missing: []string{"targetDate"}}
		}
		targetDate = t.UTC()
	}

	snap := model.FundamentalSnapshot{
		Symbol:        symbol,
		TargetDate:    targetDate,
		ROE:           Coerce(raw.ROE),
		EPS:           Coerce(raw.EPS),
		BPS:           Coerce(raw.BPS),
		Beta:          Coerce(raw.Beta),
		MarketCap:     Coerce(raw.MarketCap),
		DividendYield: Coerce(raw.DividendYield),
		CurrentRatio:  Coerce(raw.CurrentRatio),
		DebtRatio:     Coerce(raw.DebtRatio),
		Sector:        raw.Sector,
		Industry:      raw.Industry,
	}

	var missing []string
	for _, f := range []struct {
		name string
		val  model.OptFloat
	}{
		{"eps", snap.EPS},
		{"roe", snap.ROE},
		{"currentRatio", snap.CurrentRatio},
		{"debtRatio", snap.DebtRatio},
	} {
		if !f.val.Known {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return model.FundamentalSnapshot{}, &IncompleteDataError{Symbol: symbol, Missing: missing}
	}

	return snap, nil
}
