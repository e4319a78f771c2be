package exchanges

import (
	"time"

	"github.com/gerrymanoim/exchange-calendars/internal/calendar"
)

// XSHG is the Shanghai Stock Exchange: 09:30-15:00 Asia/Shanghai.
// Mainland golden-week observances follow annual State Council
// proclamations rather than a stable rule, so the multi-day closures
// around Chinese New Year and National Day are carried as ad-hoc data
// for the covered years; only the fixed single-day holidays are rules.
func XSHG() calendar.Config {
	cfg := calendar.NewConfig("XSHG", "Asia/Shanghai")
	cfg.Hours = []calendar.HoursSpan{
		{Open: calendar.TimeOfDay{Hour: 9, Minute: 30}, Close: calendar.TimeOfDay{Hour: 15}},
	}

	cfg.Holidays = []calendar.HolidayRule{
		calendar.RecurringHoliday{
			Name:   "New Year's Day",
			Anchor: calendar.FixedDate{Month: time.January, Day: 1},
		},
		calendar.RecurringHoliday{
			Name:   "Labour Day",
			Anchor: calendar.FixedDate{Month: time.May, Day: 1},
		},
		calendar.RecurringHoliday{
			Name:   "National Day",
			Anchor: calendar.FixedDate{Month: time.October, Day: 1},
		},
		calendar.RecurringHoliday{
			Name:   "National Day (second day)",
			Anchor: calendar.FixedDate{Month: time.October, Day: 2},
		},
		calendar.RecurringHoliday{
			Name:   "National Day (third day)",
			Anchor: calendar.FixedDate{Month: time.October, Day: 3},
		},
		calendar.RecurringHoliday{
			Name:   "Chinese New Year",
			Anchor: calendar.LunarDates{Dates: chineseNewYearDates},
		},
		calendar.RecurringHoliday{
			Name:   "Chinese New Year (second day)",
			Anchor: calendar.LunarDates{Dates: chineseNewYearDates, Offset: 1},
		},
		calendar.RecurringHoliday{
			Name:   "Chinese New Year (third day)",
			Anchor: calendar.LunarDates{Dates: chineseNewYearDates, Offset: 2},
		},
		calendar.RecurringHoliday{
			Name:   "Tomb Sweeping Day",
			Anchor: calendar.LunarDates{Dates: qingmingDates},
		},
		calendar.RecurringHoliday{
			Name:   "Dragon Boat Festival",
			Anchor: calendar.LunarDates{Dates: dragonBoatDates},
		},
		calendar.RecurringHoliday{
			Name:   "Mid-Autumn Festival",
			Anchor: calendar.LunarDates{Dates: midAutumnDates},
		},
		calendar.AdHocHolidays{
			// Golden-week extensions beyond the rule-covered days,
			// per-year proclamations for 2023-2025.
			Name: "Golden week extensions",
			Dates: []time.Time{
				day(2023, time.January, 23),
				day(2023, time.January, 24),
				day(2023, time.January, 25),
				day(2023, time.January, 26),
				day(2023, time.January, 27),
				day(2023, time.May, 2),
				day(2023, time.May, 3),
				day(2023, time.October, 4),
				day(2023, time.October, 5),
				day(2023, time.October, 6),
				day(2024, time.February, 9),
				day(2024, time.February, 12),
				day(2024, time.February, 13),
				day(2024, time.February, 14),
				day(2024, time.February, 15),
				day(2024, time.February, 16),
				day(2024, time.May, 2),
				day(2024, time.May, 3),
				day(2024, time.October, 4),
				day(2024, time.October, 7),
				day(2025, time.January, 30),
				day(2025, time.January, 31),
				day(2025, time.February, 3),
				day(2025, time.February, 4),
				day(2025, time.May, 2),
				day(2025, time.May, 5),
				day(2025, time.October, 6),
				day(2025, time.October, 7),
				day(2025, time.October, 8),
			},
		},
	}

	return cfg
}
