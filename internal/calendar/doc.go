// Package calendar provides US equity market session and trading-date
// helpers used to schedule collection runs and anchor month-over-month
// index metrics.
package calendar
