package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rickgao/marketdata/internal/model"
)

// Yahoo is the Yahoo Finance chart-API client. It is the alternate OHLCV
// source and the index source for S&P 500 return metrics.
type Yahoo struct {
	restClient
}

// NewYahoo creates a Yahoo Finance client. No API key is needed.
func NewYahoo(baseURL string, opts ...Option) *Yahoo {
	return &Yahoo{
		restClient: newRestClient("yahoo", baseURL, opts...),
	}
}

// rewriteYahooSymbol maps a canonical class-share symbol to Yahoo's form
// ("BRK.B" -> "BRK-B"). Index symbols like "^GSPC" pass through.
func rewriteYahooSymbol(symbol string) string {
	out := make([]byte, 0, len(symbol))
	for i := 0; i < len(symbol); i++ {
		if symbol[i] == '.' {
			out = append(out, '-')
		} else {
			out = append(out, symbol[i])
		}
	}
	return string(out)
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []any `json:"open"`
					High   []any `json:"high"`
					Low    []any `json:"low"`
					Close  []any `json:"close"`
					Volume []any `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

var yahooIntervals = map[model.Granularity]string{
	model.GranularityDay:   "1d",
	model.GranularityWeek:  "1wk",
	model.GranularityMonth: "1mo",
}

// chartRange picks the smallest Yahoo range token covering n periods of
// the granularity. Yahoo only accepts fixed tokens, so the response is
// trimmed to the requested count afterwards.
func chartRange(g model.Granularity, n int) string {
	days := n
	switch g {
	case model.GranularityWeek:
		days = n * 7
	case model.GranularityMonth:
		days = n * 31
	}

	switch {
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	case days <= 730:
		return "2y"
	case days <= 1825:
		return "5y"
	default:
		return "10y"
	}
}

// FetchBars fetches up to limit OHLCV bars at the given granularity.
// Yahoo reports holiday slots as nulls; those pass through raw and the
// normalizer drops them as partial bars.
func (c *Yahoo) FetchBars(ctx context.Context, symbol string, g model.Granularity, limit int) ([]RawBar, error) {
	interval, ok := yahooIntervals[g]
	if !ok {
		return nil, fmt.Errorf("yahoo does not serve %s bars", g)
	}

	query := url.Values{
		"interval": []string{interval},
		"range":    []string{chartRange(g, limit)},
	}

	var resp yahooChart
	path := "/v8/finance/chart/" + url.PathEscape(rewriteYahooSymbol(symbol))
	if err := c.getJSON(ctx, path, query, &resp); err != nil {
		return nil, fmt.Errorf("get chart %s %s: %w", symbol, g, err)
	}

	if resp.Chart.Error != nil {
		c.logger.Warn("yahoo returned no data",
			"symbol", symbol,
			"interval", interval,
			"code", resp.Chart.Error.Code,
		)
		return nil, nil
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := resp.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	bars := make([]RawBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			break
		}
		bar := RawBar{
			Timestamp: time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Open:      quote.Open[i],
			High:      quote.High[i],
			Low:       quote.Low[i],
			Close:     quote.Close[i],
		}
		if i < len(quote.Volume) {
			bar.Volume = quote.Volume[i]
		}
		bars = append(bars, bar)
	}

	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}
