// Package gap computes how many periods of history to request from a
// provider given the freshness watermark of locally stored data.
//
// The estimate is deliberately generous: a buffer of extra periods is
// always added so the newest stored bar is re-fetched and re-verified,
// which absorbs provider off-by-one behavior, weekend gaps, and
// late-arriving OHLCV revisions. Overlap is harmless because the merge
// engine upserts by natural key.
package gap
