package normalize

import (
	"log/slog"
	"sort"
	"time"

	"github.com/rickgao/marketdata/internal/model"
	"github.com/rickgao/marketdata/internal/provider"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// parseBarTime parses a bar timestamp: date-only for historical
// granularities, full date-time for intraday ones. Providers that send a
// date-time where a date is expected (or vice versa) are tolerated.
func parseBarTime(s string, g model.Granularity) (time.Time, bool) {
	primary, fallback := dateLayout, dateTimeLayout
	if g.Intraday() {
		primary, fallback = dateTimeLayout, dateLayout
	}

	if t, err := time.Parse(primary, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(fallback, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// Bars converts raw OHLCV records into canonical price bars for a
// historical granularity. Bars with any unknown OHLC component are
// dropped whole; bars whose timestamp fails to parse are dropped with a
// logged reason. Output is ascending by timestamp.
func Bars(symbol string, g model.Granularity, raws []provider.RawBar, logger *slog.Logger) []model.PriceBar {
	if logger == nil {
		logger = slog.Default()
	}

	bars := make([]model.PriceBar, 0, len(raws))
	for _, raw := range raws {
		ts, ok := parseBarTime(raw.Timestamp, g)
		if !ok {
			logger.Warn("dropping bar with unparseable timestamp",
				"symbol", symbol,
				"granularity", string(g),
				"timestamp", raw.Timestamp,
			)
			continue
		}

		o, h, l, c := Coerce(raw.Open), Coerce(raw.High), Coerce(raw.Low), Coerce(raw.Close)
		if !o.Known || !h.Known || !l.Known || !c.Known {
			logger.Debug("dropping partial bar",
				"symbol", symbol,
				"granularity", string(g),
				"timestamp", raw.Timestamp,
			)
			continue
		}

		bars = append(bars, model.PriceBar{
			Symbol:      symbol,
			Granularity: g,
			Timestamp:   ts,
			Open:        o.Value,
			High:        h.Value,
			Low:         l.Value,
			Close:       c.Value,
			Volume:      Coerce(raw.Volume).Value, // unknown volume stores as 0
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars
}

// LatestIntraday converts raw intraday records into the single newest
// canonical tick for (symbol, granularity). Partial and unparseable
// records are dropped under the same rules as Bars; ok is false when
// nothing survives.
func LatestIntraday(symbol string, g model.Granularity, raws []provider.RawBar, logger *slog.Logger) (model.IntradayBar, bool) {
	if logger == nil {
		logger = slog.Default()
	}

	var latest model.IntradayBar
	var found bool
	for _, raw := range raws {
		ts, ok := parseBarTime(raw.Timestamp, g)
		if !ok {
			logger.Warn("dropping tick with unparseable timestamp",
				"symbol", symbol,
				"granularity", string(g),
				"timestamp", raw.Timestamp,
			)
			continue
		}

		o, h, l, c := Coerce(raw.Open), Coerce(raw.High), Coerce(raw.Low), Coerce(raw.Close)
		if !o.Known || !h.Known || !l.Known || !c.Known {
			continue
		}

		if !found || ts.After(latest.Timestamp) {
			latest = model.IntradayBar{
				Symbol:      symbol,
				Granularity: g,
				Timestamp:   ts,
				Open:        o.Value,
				High:        h.Value,
				Low:         l.Value,
				Close:       c.Value,
				Volume:      Coerce(raw.Volume).Value,
			}
			found = true
		}
	}

	return latest, found
}
