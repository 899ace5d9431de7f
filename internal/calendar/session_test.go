package calendar

import (
	"testing"
	"time"
)

func at(h, m int) time.Time {
	return time.Date(2024, 6, 14, h, m, 0, 0, time.UTC)
}

func TestMarketSession(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want Session
	}{
		{"pre opens", at(9, 0), SessionPre},
		{"just before regular", at(14, 29), SessionPre},
		{"regular opens", at(14, 30), SessionRegular},
		{"mid session", at(18, 0), SessionRegular},
		{"just before after", at(20, 59), SessionRegular},
		{"after opens", at(21, 0), SessionAfter},
		{"after wraps midnight", at(0, 30), SessionAfter},
		{"overnight closed", at(1, 0), SessionClosed},
		{"early morning closed", at(5, 0), SessionClosed},
		{"just before pre", at(8, 59), SessionClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarketSession(tt.now); got != tt.want {
				t.Errorf("MarketSession(%v) = %s, want %s", tt.now, got, tt.want)
			}
		})
	}
}

func TestMarketSession_ConvertsToUTC(t *testing.T) {
	ny := time.FixedZone("EDT", -4*3600)
	// 11:00 EDT is 15:00 UTC, inside the regular window.
	if got := MarketSession(time.Date(2024, 6, 14, 11, 0, 0, 0, ny)); got != SessionRegular {
		t.Errorf("MarketSession = %s, want regular", got)
	}
}

func TestLastBusinessDay(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		// June 2024 ends on Sunday the 30th; last weekday is Friday the 28th.
		{"month ending on weekend", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)},
		// May 2024 ends on Friday the 31st.
		{"month ending on weekday", time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)},
		// February in a leap year.
		{"leap february", time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LastBusinessDay(tt.in); !got.Equal(tt.want) {
				t.Errorf("LastBusinessDay(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMonthsBack(t *testing.T) {
	got := MonthsBack(time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), 3)
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("MonthsBack = %v, want %v", got, want)
	}
}
