package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// FRED series IDs collected by this system.
const (
	SeriesVIX          = "VIXCLS"   // CBOE volatility index, daily close
	SeriesFedRateUpper = "DFEDTARU" // Federal funds target range, upper limit
)

// FRED is the St. Louis Fed data client.
type FRED struct {
	restClient
	apiKey string
}

// NewFRED creates a FRED client.
func NewFRED(baseURL, apiKey string, opts ...Option) *FRED {
	return &FRED{
		restClient: newRestClient("fred", baseURL, opts...),
		apiKey:     apiKey,
	}
}

type fredObservations struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// FetchObservations fetches a series over [start, end]. Missing readings
// come back with value "." and are passed through for the normalizer to
// drop.
func (c *FRED) FetchObservations(ctx context.Context, seriesID string, start, end time.Time) ([]RawObservation, error) {
	query := url.Values{
		"series_id":         []string{seriesID},
		"api_key":           []string{c.apiKey},
		"file_type":         []string{"json"},
		"observation_start": []string{start.Format("2006-01-02")},
		"observation_end":   []string{end.Format("2006-01-02")},
	}

	var resp fredObservations
	if err := c.getJSON(ctx, "/series/observations", query, &resp); err != nil {
		return nil, fmt.Errorf("get observations %s: %w", seriesID, err)
	}

	out := make([]RawObservation, 0, len(resp.Observations))
	for _, o := range resp.Observations {
		out = append(out, RawObservation{Date: o.Date, Value: o.Value})
	}
	return out, nil
}
