package calendar

import "time"

// Session is a US equity market phase.
type Session string

const (
	SessionPre     Session = "pre"
	SessionRegular Session = "regular"
	SessionAfter   Session = "after"
	SessionClosed  Session = "closed"
)

// Session boundaries in UTC. These track New York hours as fixed UTC
// windows (09:00/14:30/21:00/01:00), matching the collection schedule
// this system has always run on rather than exchange-holiday calendars.
func MarketSession(now time.Time) Session {
	hm := now.UTC().Hour()*60 + now.UTC().Minute()

	switch {
	case hm >= 9*60 && hm < 14*60+30:
		return SessionPre
	case hm >= 14*60+30 && hm < 21*60:
		return SessionRegular
	case hm >= 21*60 || hm < 1*60:
		return SessionAfter
	default:
		return SessionClosed
	}
}

// LastBusinessDay returns the last weekday of the month containing t.
func LastBusinessDay(t time.Time) time.Time {
	// First day of next month, minus one day, is the last calendar day.
	firstNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	last := firstNext.AddDate(0, 0, -1)

	for last.Weekday() == time.Saturday || last.Weekday() == time.Sunday {
		last = last.AddDate(0, 0, -1)
	}
	return last
}

// MonthsBack returns the first day of the month n months before t.
func MonthsBack(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -n, 0)
}
