package exchanges

import (
	"time"

	"github.com/gerrymanoim/exchange-calendars/internal/calendar"
)

// earlyCloseYears bounds the generated date-keyed early-close overrides.
const (
	earlyCloseFromYear = 2000
	earlyCloseToYear   = 2040
)

var nearestWorkday = calendar.Pipeline{
	{Kind: calendar.StageNearestWorkday},
}

// XNYS is the New York Stock Exchange: Mon-Fri 09:30-16:00
// America/New_York. Early closes at 13:00 on the day after Thanksgiving
// and on Christmas Eve when it is a regular session day.
func XNYS() calendar.Config {
	cfg := calendar.NewConfig("XNYS", "America/New_York")
	cfg.Hours = []calendar.HoursSpan{
		{Open: calendar.TimeOfDay{Hour: 9, Minute: 30}, Close: calendar.TimeOfDay{Hour: 16}},
	}

	cfg.Holidays = []calendar.HolidayRule{
		calendar.RecurringHoliday{
			// A Saturday Jan 1 is not observed; only Sunday rolls to Monday.
			Name:       "New Year's Day",
			Anchor:     calendar.FixedDate{Month: time.January, Day: 1},
			Observance: calendar.Pipeline{{Kind: calendar.StageSundayToMonday}},
		},
		calendar.RecurringHoliday{
			Name:      "Martin Luther King Jr. Day",
			Anchor:    calendar.NthWeekday{Month: time.January, Weekday: time.Monday, N: 3},
			StartYear: 1998,
		},
		calendar.RecurringHoliday{
			Name:   "Presidents Day",
			Anchor: calendar.NthWeekday{Month: time.February, Weekday: time.Monday, N: 3},
		},
		calendar.RecurringHoliday{
			Name:   "Good Friday",
			Anchor: calendar.EasterOffset{Days: -2},
		},
		calendar.RecurringHoliday{
			Name:   "Memorial Day",
			Anchor: calendar.NthWeekday{Month: time.May, Weekday: time.Monday, N: -1},
		},
		calendar.RecurringHoliday{
			Name:       "Juneteenth",
			Anchor:     calendar.FixedDate{Month: time.June, Day: 19},
			StartYear:  2022,
			Observance: nearestWorkday,
		},
		calendar.RecurringHoliday{
			Name:       "Independence Day",
			Anchor:     calendar.FixedDate{Month: time.July, Day: 4},
			Observance: nearestWorkday,
		},
		calendar.RecurringHoliday{
			Name:   "Labor Day",
			Anchor: calendar.NthWeekday{Month: time.September, Weekday: time.Monday, N: 1},
		},
		calendar.RecurringHoliday{
			Name:   "Thanksgiving",
			Anchor: calendar.NthWeekday{Month: time.November, Weekday: time.Thursday, N: 4},
		},
		calendar.RecurringHoliday{
			Name:       "Christmas",
			Anchor:     calendar.FixedDate{Month: time.December, Day: 25},
			Observance: nearestWorkday,
		},
	}

	cfg.Specials = usEarlyCloses()
	return cfg
}

// usEarlyCloses generates the 13:00 half-day overrides, keyed by date as
// the engine expects. The day after Thanksgiving is always a Friday
// session; Christmas Eve is a session only Monday through Thursday
// (a Friday Christmas Eve is the observed Christmas holiday itself).
func usEarlyCloses() map[string]calendar.SpecialHours {
	one := calendar.TimeOfDay{Hour: 13}
	specials := make(map[string]calendar.SpecialHours)

	for year := earlyCloseFromYear; year <= earlyCloseToYear; year++ {
		thanksgiving := calendar.NthWeekday{Month: time.November, Weekday: time.Thursday, N: 4}.DatesForYear(year)[0]
		dayAfter := thanksgiving.AddDate(0, 0, 1)
		specials[calendar.FormatDate(dayAfter)] = calendar.SpecialHours{Close: &one}

		eve := calendar.Day(year, time.December, 24)
		switch eve.Weekday() {
		case time.Monday, time.Tuesday, time.Wednesday, time.Thursday:
			specials[calendar.FormatDate(eve)] = calendar.SpecialHours{Close: &one}
		}
	}

	return specials
}
