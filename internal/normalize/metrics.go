package normalize

import (
	"log/slog"
	"sort"
	"time"

	"github.com/rickgao/marketdata/internal/model"
	"github.com/rickgao/marketdata/internal/provider"
)

// Observations converts FRED observations into canonical market metrics
// under the given name. Missing readings (".") and unparseable dates are
// dropped per record. Output is ascending by date.
func Observations(name string, raws []provider.RawObservation, logger *slog.Logger) []model.MarketMetric {
	if logger == nil {
		logger = slog.Default()
	}

	metrics := make([]model.MarketMetric, 0, len(raws))
	for _, raw := range raws {
		v := Coerce(raw.Value)
		if !v.Known {
			continue
		}

		date, err := time.Parse(dateLayout, raw.Date)
		if err != nil {
			logger.Warn("dropping observation with unparseable date",
				"metric", name,
				"date", raw.Date,
			)
			continue
		}

		metrics = append(metrics, model.MarketMetric{
			Name:  name,
			Date:  date.UTC(),
			Value: v.Value,
		})
	}

	sort.Slice(metrics, func(i, j int) bool { return metrics[i].Date.Before(metrics[j].Date) })
	return metrics
}

// SectorReturns converts sector performance entries into canonical
// per-sector returns for the given date. Entries without a sector name
// or with an uncoercible percent are dropped.
func SectorReturns(date time.Time, raws []provider.RawSectorPerformance, logger *slog.Logger) []model.SectorReturn {
	if logger == nil {
		logger = slog.Default()
	}

	returns := make([]model.SectorReturn, 0, len(raws))
	for _, raw := range raws {
		if raw.Sector == "" {
			continue
		}

		pct := CoercePercent(raw.ChangesPercentage)
		if !pct.Known {
			logger.Warn("dropping sector entry with unparseable return",
				"sector", raw.Sector,
				"value", raw.ChangesPercentage,
			)
			continue
		}

		returns = append(returns, model.SectorReturn{
			Date:   date.UTC().Truncate(24 * time.Hour),
			Sector: raw.Sector,
			Return: pct.Value,
		})
	}

	return returns
}

// Profile converts a raw profile into a canonical instrument. Providers
// occasionally return empty sector/industry for funds and trusts; those
// stay empty rather than blocking the instrument.
func Profile(raw provider.RawProfile) model.Instrument {
	return model.Instrument{
		Symbol:   raw.Symbol,
		Name:     raw.Name,
		Sector:   raw.Sector,
		Industry: raw.Industry,
	}
}
