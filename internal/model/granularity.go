package model

// Granularity identifies the time bucket size of a price series.
type Granularity string

const (
	GranularityDay   Granularity = "1day"
	GranularityWeek  Granularity = "1week"
	GranularityMonth Granularity = "1month"
	Granularity15Min Granularity = "15min"
	GranularityHour  Granularity = "1h"
)

// StepUnit is the calendar unit a historical granularity advances in.
type StepUnit string

const (
	StepDay   StepUnit = "day"
	StepWeek  StepUnit = "week"
	StepMonth StepUnit = "month"
)

// StepUnit returns the calendar unit for a historical granularity.
// Intraday granularities have no step unit (they are latest-tick caches,
// not gap-filled histories).
func (g Granularity) StepUnit() (StepUnit, bool) {
	switch g {
	case GranularityDay:
		return StepDay, true
	case GranularityWeek:
		return StepWeek, true
	case GranularityMonth:
		return StepMonth, true
	default:
		return "", false
	}
}

// Intraday reports whether the granularity is an intraday latest-tick kind.
func (g Granularity) Intraday() bool {
	return g == Granularity15Min || g == GranularityHour
}
