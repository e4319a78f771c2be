package exchanges

import (
	"time"

	"github.com/gerrymanoim/exchange-calendars/internal/calendar"
)

// USFutures is a synthetic calendar spanning the US futures venues:
// each session runs from 18:01 America/New_York on the evening before
// its trading date through 18:00 on the trading date itself, so the
// open instant falls one calendar day before the session date.
// Execution windows differ from the nominal session and are exposed
// through the index's execution-time accessors.
func USFutures() calendar.Config {
	cfg := calendar.NewConfig("us_futures", "America/New_York")
	cfg.Hours = []calendar.HoursSpan{
		{Open: calendar.TimeOfDay{Hour: 18, Minute: 1}, Close: calendar.TimeOfDay{Hour: 18}},
	}
	cfg.OpenOffsetDays = -1
	cfg.ExecutionOpenOffset = 12*time.Hour + 30*time.Minute
	cfg.ExecutionCloseOffset = -time.Hour

	cfg.Holidays = []calendar.HolidayRule{
		calendar.RecurringHoliday{
			Name:       "New Year's Day",
			Anchor:     calendar.FixedDate{Month: time.January, Day: 1},
			Observance: calendar.Pipeline{{Kind: calendar.StageSundayToMonday}},
		},
		calendar.RecurringHoliday{
			Name:   "Good Friday",
			Anchor: calendar.EasterOffset{Days: -2},
		},
		calendar.RecurringHoliday{
			Name:       "Christmas",
			Anchor:     calendar.FixedDate{Month: time.December, Day: 25},
			Observance: nearestWorkday,
		},
	}

	return cfg
}
