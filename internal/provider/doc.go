// Package provider implements adapters for the external market data APIs.
//
// Providers:
//   - FMP (Financial Modeling Prep): instrument profiles, fundamentals
//     (TTM key metrics and quarterly ratios), sector performance
//   - TwelveData: OHLCV time series, daily through intraday
//   - FRED: macro series observations (VIX, policy rate)
//   - Yahoo Finance: alternate OHLCV source, index closes
//
// Adapters return provider-native raw records; the normalize package owns
// conversion into canonical shapes. Provider-specific symbol rewriting
// (e.g. "BRK.B" -> "BRK-B") and API key rotation stay inside the adapter
// and never leak into raw records.
package provider
