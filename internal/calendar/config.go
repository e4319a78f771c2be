package calendar

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time in the exchange's zone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

// HoursSpan is the open/close schedule active over a sub-range of the
// calendar. Zero From/Until mean the span is unbounded on that side.
// Both bounds are inclusive dates.
type HoursSpan struct {
	From  time.Time
	Until time.Time
	Open  TimeOfDay
	Close TimeOfDay
}

func (h HoursSpan) covers(d time.Time) bool {
	if !h.From.IsZero() && d.Before(h.From) {
		return false
	}
	if !h.Until.IsZero() && d.After(h.Until) {
		return false
	}
	return true
}

// SpecialHours overrides the open and/or close time of a single session,
// for early closes and late opens. A nil field keeps the regular time.
type SpecialHours struct {
	Open  *TimeOfDay
	Close *TimeOfDay
}

// Config is the full declarative description of one exchange calendar.
// It is data supplied by an exchange definition or a calendar file;
// the engine holds no per-exchange logic. Immutable once registered.
type Config struct {
	Name     string
	Timezone string // IANA zone identifier, resolved via time.LoadLocation

	// Weekly is the weekly non-trading pattern, defaulting to
	// Saturday/Sunday when left zero.
	Weekly           WeeklyPattern
	weeklyConfigured bool

	// SaturdayDelta/SundayDelta configure the nearest-workday policy.
	// Zero values mean Saturday -1 day, Sunday +1 day.
	SaturdayDelta int
	SundayDelta   int

	Holidays []HolidayRule

	// Hours lists open/close spans; spans must not overlap and together
	// must cover every session date.
	Hours []HoursSpan

	// OpenOffsetDays shifts the calendar date of the open instant
	// relative to the session's trading date. -1 means the session
	// opens on the evening before its trading date.
	OpenOffsetDays int

	// Specials maps YYYY-MM-DD dates to hour overrides.
	Specials map[string]SpecialHours

	// ExecutionOpenOffset/ExecutionCloseOffset are the execution-time
	// transforms applied by ExecutionOpen/ExecutionClose accessors.
	ExecutionOpenOffset  time.Duration
	ExecutionCloseOffset time.Duration
}

// NewConfig returns a Config with the conventional weekend pattern.
func NewConfig(name, timezone string) Config {
	return Config{
		Name:             name,
		Timezone:         timezone,
		Weekly:           Weekends(),
		weeklyConfigured: true,
	}
}

// Context returns the observance context derived from this config.
func (c Config) Context() Context {
	return Context{
		Weekly:        c.weekly(),
		SaturdayDelta: c.SaturdayDelta,
		SundayDelta:   c.SundayDelta,
	}
}

func (c Config) weekly() WeeklyPattern {
	if c.weeklyConfigured || c.Weekly != (WeeklyPattern{}) {
		return c.Weekly
	}
	return Weekends()
}

// SetWeekly replaces the weekly non-trading pattern. An explicit empty
// pattern (trading every day) is honored, unlike assigning the zero
// value directly.
func (c *Config) SetWeekly(p WeeklyPattern) {
	c.Weekly = p
	c.weeklyConfigured = true
}

// Validate checks the parts of the configuration that can be verified
// without a build range. Violations are ConstructionErrors.
func (c Config) Validate() error {
	fail := func(reason string) error {
		return &ConstructionError{Calendar: c.Name, Reason: reason}
	}

	if c.Name == "" {
		return fail("calendar name is required")
	}
	if c.Timezone == "" {
		return fail("timezone is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fail(fmt.Sprintf("unknown timezone %q", c.Timezone))
	}
	if len(c.Hours) == 0 {
		return fail("at least one hours span is required")
	}
	if len(c.weekly().NonTradingWeekdays()) == 7 {
		return fail("weekly pattern leaves no trading days")
	}

	for i, span := range c.Hours {
		if !span.Open.valid() || !span.Close.valid() {
			return fail(fmt.Sprintf("hours span %d has an invalid time of day", i))
		}
		if !span.From.IsZero() && !span.Until.IsZero() && span.From.After(span.Until) {
			return fail(fmt.Sprintf("hours span %d has From after Until", i))
		}
		for j := i + 1; j < len(c.Hours); j++ {
			if spansOverlap(span, c.Hours[j]) {
				return fail(fmt.Sprintf("hours spans %d and %d overlap", i, j))
			}
		}
	}

	for _, rule := range c.Holidays {
		if recurring, ok := rule.(RecurringHoliday); ok {
			if recurring.Anchor == nil {
				return fail(fmt.Sprintf("holiday rule %q has no anchor", recurring.Name))
			}
			if err := recurring.Observance.Validate(); err != nil {
				return fail(fmt.Sprintf("holiday rule %q: %v", recurring.Name, err))
			}
		}
	}

	for key, special := range c.Specials {
		if _, err := ParseDate(key); err != nil {
			return fail(fmt.Sprintf("special hours key %q is not a date", key))
		}
		if special.Open == nil && special.Close == nil {
			return fail(fmt.Sprintf("special hours for %s override nothing", key))
		}
		if special.Open != nil && !special.Open.valid() {
			return fail(fmt.Sprintf("special open for %s is invalid", key))
		}
		if special.Close != nil && !special.Close.valid() {
			return fail(fmt.Sprintf("special close for %s is invalid", key))
		}
	}

	return nil
}

func spansOverlap(a, b HoursSpan) bool {
	// Unbounded sides extend to the infinite past/future.
	aFrom, aUntil := boundless(a.From, false), boundless(a.Until, true)
	bFrom, bUntil := boundless(b.From, false), boundless(b.Until, true)
	return !aUntil.Before(bFrom) && !bUntil.Before(aFrom)
}

func boundless(t time.Time, upper bool) time.Time {
	if !t.IsZero() {
		return t
	}
	if upper {
		return Day(9999, time.December, 31)
	}
	return Day(1, time.January, 1)
}

// hoursFor returns the active span for a session date.
func (c Config) hoursFor(d time.Time) (HoursSpan, bool) {
	for _, span := range c.Hours {
		if span.covers(d) {
			return span, true
		}
	}
	return HoursSpan{}, false
}
