package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rickgao/marketdata/internal/model"
)

// TwelveData is the Twelve Data time-series client.
type TwelveData struct {
	restClient
	keys *KeyPool
}

// NewTwelveData creates a Twelve Data client using keys from the given pool.
func NewTwelveData(baseURL string, keys *KeyPool, opts ...Option) *TwelveData {
	return &TwelveData{
		restClient: newRestClient("twelvedata", baseURL, opts...),
		keys:       keys,
	}
}

type twelveDataSeries struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Values  []struct {
		Datetime string `json:"datetime"`
		Open     any    `json:"open"`
		High     any    `json:"high"`
		Low      any    `json:"low"`
		Close    any    `json:"close"`
		Volume   any    `json:"volume"`
	} `json:"values"`
}

// FetchBars fetches up to limit OHLCV bars for the symbol at the given
// granularity. Twelve Data returns newest-first; raw order is preserved
// here and the normalizer re-sorts. An empty result (unknown symbol,
// provider-side error payload) is not an error: the provider answered,
// there is just no data.
func (c *TwelveData) FetchBars(ctx context.Context, symbol string, g model.Granularity, limit int) ([]RawBar, error) {
	query := url.Values{
		"symbol":     []string{symbol},
		"interval":   []string{string(g)},
		"outputsize": []string{strconv.Itoa(limit)},
		"apikey":     []string{c.keys.Next()},
		"format":     []string{"JSON"},
		"order":      []string{"desc"},
	}

	var resp twelveDataSeries
	if err := c.getJSON(ctx, "/time_series", query, &resp); err != nil {
		return nil, fmt.Errorf("get time series %s %s: %w", symbol, g, err)
	}

	if len(resp.Values) == 0 {
		if resp.Message != "" {
			c.logger.Warn("twelvedata returned no data",
				"symbol", symbol,
				"interval", string(g),
				"message", resp.Message,
			)
		}
		return nil, nil
	}

	bars := make([]RawBar, 0, len(resp.Values))
	for _, v := range resp.Values {
		bars = append(bars, RawBar{
			Timestamp: v.Datetime,
			Open:      v.Open,
			High:      v.High,
			Low:       v.Low,
			Close:     v.Close,
			Volume:    v.Volume,
		})
	}
	return bars, nil
}
