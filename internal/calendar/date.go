// Package calendar implements the trading-calendar engine: holiday rule
// evaluation, session construction, and the queryable session/minute indexes.
package calendar

import "time"

const dateFormat = "2006-01-02"

// Day returns the UTC midnight timestamp for a calendar date.
// All session dates and holiday dates in this package are UTC midnights.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Midnight truncates t to the UTC midnight of its own calendar date.
func Midnight(t time.Time) time.Time {
	return Day(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateFormat, s)
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateFormat)
}

// WeeklyPattern marks which weekdays are non-trading days.
type WeeklyPattern struct {
	nonTrading [7]bool
}

// NewWeeklyPattern builds a pattern from the given non-trading weekdays.
func NewWeeklyPattern(nonTrading ...time.Weekday) WeeklyPattern {
	var p WeeklyPattern
	for _, wd := range nonTrading {
		p.nonTrading[wd] = true
	}
	return p
}

// Weekends is the common Saturday/Sunday non-trading pattern.
func Weekends() WeeklyPattern {
	return NewWeeklyPattern(time.Saturday, time.Sunday)
}

// IsTradingDay reports whether the weekday of d is a trading weekday.
// Holidays are not considered here.
func (p WeeklyPattern) IsTradingDay(d time.Time) bool {
	return !p.nonTrading[d.Weekday()]
}

// NonTradingWeekdays returns the configured non-trading weekdays in order.
func (p WeeklyPattern) NonTradingWeekdays() []time.Weekday {
	var out []time.Weekday
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if p.nonTrading[wd] {
			out = append(out, wd)
		}
	}
	return out
}
