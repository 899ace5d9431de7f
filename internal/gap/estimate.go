package gap

import (
	"time"

	"github.com/rickgao/marketdata/internal/model"
)

// daysPerMonth approximates a calendar month for elapsed-period math,
// matching the provider's month bucketing closely enough once the
// buffer is added.
const daysPerMonth = 30

// Estimate returns the number of periods to request from a provider.
//
// With no watermark (haveWatermark false) the full maxLookback backfill
// is requested. Otherwise the elapsed periods between the watermark and
// today are computed in the given unit, buffer periods are added, and
// the result is capped at maxLookback. The estimate never drops below
// buffer, so the latest bar is always re-verified even when the
// watermark is today. A watermark in the future (clock skew) counts as
// zero elapsed periods.
func Estimate(watermark time.Time, haveWatermark bool, today time.Time, unit model.StepUnit, maxLookback, buffer int) int {
	if !haveWatermark {
		return maxLookback
	}

	days := int(today.Sub(watermark).Hours() / 24)
	if days < 0 {
		days = 0
	}

	var elapsed int
	switch unit {
	case model.StepWeek:
		elapsed = ceilDiv(days, 7)
	case model.StepMonth:
		elapsed = ceilDiv(days, daysPerMonth)
	default:
		elapsed = days
	}

	n := elapsed + buffer
	if n > maxLookback {
		n = maxLookback
	}
	if n < buffer {
		n = buffer
	}
	return n
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
