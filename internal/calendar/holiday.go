package calendar

import (
	"sort"
	"time"
)

// Anchor produces the unobserved calendar dates of a recurring holiday
// for a single year. A year may have no anchor date (lunar tables do
// not cover every year).
type Anchor interface {
	// DatesForYear returns the anchor dates falling in the given year.
	DatesForYear(year int) []time.Time
}

// FixedDate anchors a holiday on a fixed month and day, e.g. Jan 1.
type FixedDate struct {
	Month time.Month
	Day   int
}

func (a FixedDate) DatesForYear(year int) []time.Time {
	return []time.Time{Day(year, a.Month, a.Day)}
}

// NthWeekday anchors a holiday on the nth occurrence of a weekday in a
// month. N of -1 selects the last occurrence, as for US Memorial Day.
type NthWeekday struct {
	Month   time.Month
	Weekday time.Weekday
	N       int
}

func (a NthWeekday) DatesForYear(year int) []time.Time {
	if a.N == -1 {
		return []time.Time{lastWeekday(year, a.Month, a.Weekday)}
	}
	return []time.Time{nthWeekday(year, a.Month, a.Weekday, a.N)}
}

// EasterOffset anchors a holiday a fixed number of days from Easter
// Sunday, e.g. -2 for Good Friday. Julian selects the Orthodox computus.
type EasterOffset struct {
	Days   int
	Julian bool
}

func (a EasterOffset) DatesForYear(year int) []time.Time {
	return []time.Time{easter(year, a.Julian).AddDate(0, 0, a.Days)}
}

// LunarDates anchors a holiday on an explicit table of lunisolar dates,
// one entry per covered year, optionally shifted by a fixed day delta.
// Lunisolar conversion is supplied as data rather than computed.
type LunarDates struct {
	Dates  []time.Time
	Offset int
}

func (a LunarDates) DatesForYear(year int) []time.Time {
	var out []time.Time
	for _, d := range a.Dates {
		shifted := d.AddDate(0, 0, a.Offset)
		if shifted.Year() == year {
			out = append(out, shifted)
		}
	}
	return out
}

// HolidayRule is one entry of a calendar's holiday configuration.
// Evaluation is pure: the same rule over the same range always yields
// the same dates, independent of other rules.
type HolidayRule interface {
	// Evaluate returns the observed holiday dates within [start, end].
	Evaluate(start, end time.Time, ctx Context) []time.Time
	// RuleName identifies the rule in configuration errors.
	RuleName() string
}

// RecurringHoliday is a rule-derived holiday: an anchor enumerated per
// year, bounded by an optional year range, passed through an
// observance pipeline.
type RecurringHoliday struct {
	Name       string
	Anchor     Anchor
	StartYear  int // inclusive; 0 means unbounded
	EndYear    int // inclusive; 0 means unbounded
	Observance Pipeline
}

func (r RecurringHoliday) RuleName() string { return r.Name }

func (r RecurringHoliday) Evaluate(start, end time.Time, ctx Context) []time.Time {
	// Enumerate one year beyond each bound: the observance pipeline can
	// shift a date across a year boundary in either direction.
	fromYear := start.Year() - 1
	toYear := end.Year() + 1
	if r.StartYear != 0 && fromYear < r.StartYear {
		fromYear = r.StartYear
	}
	if r.EndYear != 0 && toYear > r.EndYear {
		toYear = r.EndYear
	}

	var out []time.Time
	for year := fromYear; year <= toYear; year++ {
		for _, anchor := range r.Anchor.DatesForYear(year) {
			for _, observed := range r.Observance.Apply(anchor, ctx) {
				if !observed.Before(start) && !observed.After(end) {
					out = append(out, observed)
				}
			}
		}
	}
	return out
}

// AdHocHolidays is a literal list of one-off non-trading dates:
// typhoon closures, abnormal observances, festival clusters that follow
// no rule.
type AdHocHolidays struct {
	Name  string
	Dates []time.Time
}

func (r AdHocHolidays) RuleName() string { return r.Name }

func (r AdHocHolidays) Evaluate(start, end time.Time, _ Context) []time.Time {
	var out []time.Time
	for _, d := range r.Dates {
		if !d.Before(start) && !d.After(end) {
			out = append(out, d)
		}
	}
	return out
}

// UnionHolidays evaluates every rule over [start, end] and returns the
// deduplicated union, sorted ascending. A date that holidays for two
// reasons is still one holiday.
func UnionHolidays(rules []HolidayRule, start, end time.Time, ctx Context) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, rule := range rules {
		for _, d := range rule.Evaluate(start, end, ctx) {
			seen[Midnight(d)] = struct{}{}
		}
	}

	out := make([]time.Time, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// easter computes Easter Sunday for a year. The Gregorian branch uses
// the anonymous computus; the Julian branch computes the Orthodox date
// and converts it to the Gregorian calendar (valid for 1900-2099).
func easter(year int, julian bool) time.Time {
	if julian {
		a := year % 19
		b := year % 4
		c := year % 7
		d := (19*a + 15) % 30
		e := (2*b + 4*c + 6*d + 6) % 7

		day := 22 + d + e
		month := time.March
		if day > 31 {
			day -= 31
			month = time.April
		}
		// Julian-to-Gregorian conversion: 13 days for 1900-2099.
		return Day(year, month, day).AddDate(0, 0, 13)
	}

	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451

	month := time.Month((h + l - 7*m + 114) / 31)
	day := (h+l-7*m+114)%31 + 1
	return Day(year, month, day)
}

// nthWeekday returns the nth occurrence of a weekday in a month.
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	first := Day(year, month, 1)
	offset := int(weekday - first.Weekday())
	if offset < 0 {
		offset += 7
	}
	return first.AddDate(0, 0, offset+(n-1)*7)
}

// lastWeekday returns the last occurrence of a weekday in a month.
func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	last := Day(year, month+1, 0)
	offset := int(last.Weekday() - weekday)
	if offset < 0 {
		offset += 7
	}
	return last.AddDate(0, 0, -offset)
}
