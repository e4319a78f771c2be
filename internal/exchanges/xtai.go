package exchanges

import (
	"time"

	"github.com/gerrymanoim/exchange-calendars/internal/calendar"
)

// Taiwan observance history: weekend makeup applies from 2014 onward;
// bridge days connecting a Tuesday/Thursday holiday to the weekend were
// observed 2014 through 2023 for most anniversaries, unbounded for New
// Year's Day; four-day-weekend bridges around lunar festivals ran 2007
// through 2023.
var (
	weekendMakeupWithBridges = calendar.Pipeline{
		{Kind: calendar.StageWeekendMakeup, FromYear: 2014},
		{Kind: calendar.StageBridgeMonday, FromYear: 2014, UntilYear: 2023},
		{Kind: calendar.StageBridgeFriday, FromYear: 2014, UntilYear: 2023},
	}
	lunarObservance = calendar.Pipeline{
		{Kind: calendar.StageWeekendMakeup, FromYear: 2014, UntilYear: 2023},
		{Kind: calendar.StageBridgeMonday, FromYear: 2007, UntilYear: 2023},
		{Kind: calendar.StageBridgeFriday, FromYear: 2007, UntilYear: 2023},
	}
)

func lunarCluster(name string, dates []time.Time, offset int, eve bool) calendar.RecurringHoliday {
	shift := calendar.StageNextMonday
	if eve {
		shift = calendar.StagePreviousFriday
	}
	return calendar.RecurringHoliday{
		Name:   name,
		Anchor: calendar.LunarDates{Dates: dates, Offset: offset},
		Observance: calendar.Pipeline{
			{Kind: shift},
		},
	}
}

// XTAI is the Taiwan Stock Exchange: 09:00-13:30 Asia/Taipei, no lunch
// break, no regular early closes. Lunar tables cover 2015-2025.
func XTAI() calendar.Config {
	cfg := calendar.NewConfig("XTAI", "Asia/Taipei")
	cfg.Hours = []calendar.HoursSpan{
		{Open: calendar.TimeOfDay{Hour: 9}, Close: calendar.TimeOfDay{Hour: 13, Minute: 30}},
	}

	cfg.Holidays = []calendar.HolidayRule{
		calendar.RecurringHoliday{
			Name:       "New Year's Day",
			Anchor:     calendar.FixedDate{Month: time.January, Day: 1},
			Observance: calendar.Pipeline{
				{Kind: calendar.StageWeekendMakeup, FromYear: 2014},
				{Kind: calendar.StageBridgeMonday, FromYear: 2014},
				{Kind: calendar.StageBridgeFriday, FromYear: 2014},
			},
		},
		calendar.RecurringHoliday{
			Name:       "Peace Memorial Day",
			Anchor:     calendar.FixedDate{Month: time.February, Day: 28},
			Observance: weekendMakeupWithBridges,
		},
		calendar.RecurringHoliday{
			Name:       "Women and Children's Day",
			Anchor:     calendar.FixedDate{Month: time.April, Day: 4},
			StartYear:  2011,
			Observance: weekendMakeupWithBridges,
		},
		calendar.RecurringHoliday{
			Name:   "Labour Day",
			Anchor: calendar.FixedDate{Month: time.May, Day: 1},
			Observance: calendar.Pipeline{
				{Kind: calendar.StageWeekendMakeup, FromYear: 2014, UntilYear: 2023},
			},
		},
		calendar.RecurringHoliday{
			Name:       "National Day",
			Anchor:     calendar.FixedDate{Month: time.October, Day: 10},
			Observance: weekendMakeupWithBridges,
		},

		lunarCluster("Chinese New Year's Eve (second)", chineseNewYearDates, -2, true),
		lunarCluster("Chinese New Year's Eve", chineseNewYearDates, -1, true),
		lunarCluster("Chinese New Year", chineseNewYearDates, 0, false),
		lunarCluster("Chinese New Year (second day)", chineseNewYearDates, 1, false),
		lunarCluster("Chinese New Year (third day)", chineseNewYearDates, 2, false),

		calendar.RecurringHoliday{
			Name:       "Tomb Sweeping Day",
			Anchor:     calendar.LunarDates{Dates: qingmingDates},
			Observance: lunarObservance,
		},
		calendar.RecurringHoliday{
			Name:       "Dragon Boat Festival",
			Anchor:     calendar.LunarDates{Dates: dragonBoatDates},
			Observance: lunarObservance,
		},
		calendar.RecurringHoliday{
			Name:       "Mid-Autumn Festival",
			Anchor:     calendar.LunarDates{Dates: midAutumnDates},
			Observance: lunarObservance,
		},

		calendar.AdHocHolidays{
			Name: "Chinese New Year extras",
			Dates: []time.Time{
				day(2015, time.February, 16),
				day(2016, time.February, 11),
				day(2016, time.February, 12),
				day(2017, time.January, 25),
				day(2018, time.February, 13),
				day(2019, time.January, 31),
				day(2019, time.February, 8),
				day(2020, time.January, 21),
				day(2020, time.January, 22),
				day(2021, time.February, 8),
				day(2021, time.February, 9),
				day(2022, time.January, 27),
				day(2023, time.January, 26),
				day(2023, time.January, 27),
			},
		},
		calendar.AdHocHolidays{
			// Abnormal observances of regularly observed holidays.
			Name: "Extra holidays",
			Dates: []time.Time{
				day(2016, time.April, 5), // Tomb Sweeping Day
				day(2018, time.April, 6), // Tomb Sweeping Day
				day(2020, time.April, 2), // Tomb Sweeping Day
				day(2021, time.April, 2), // Women and Children's Day
			},
		},
		calendar.AdHocHolidays{
			Name: "Typhoon closures",
			Dates: []time.Time{
				day(2015, time.July, 10),
				day(2015, time.September, 29),
				day(2016, time.July, 8),
				day(2016, time.September, 27),
				day(2016, time.September, 28),
				day(2019, time.August, 9),
				day(2019, time.September, 30),
				day(2024, time.July, 24),
				day(2024, time.July, 25),
				day(2024, time.October, 2),
				day(2024, time.October, 3),
			},
		},
	}

	return cfg
}
