package exchanges

import (
	"time"

	"github.com/gerrymanoim/exchange-calendars/internal/calendar"
)

// Lunisolar festival dates are supplied as data, not computed: the
// conversions depend on astronomical tables and official proclamations
// that no formula reproduces reliably. Covered years: 2015-2025.

func day(y int, m time.Month, d int) time.Time { return calendar.Day(y, m, d) }

// chineseNewYearDates is the first day of the lunar new year.
var chineseNewYearDates = []time.Time{
	day(2015, time.February, 19),
	day(2016, time.February, 8),
	day(2017, time.January, 28),
	day(2018, time.February, 16),
	day(2019, time.February, 5),
	day(2020, time.January, 25),
	day(2021, time.February, 12),
	day(2022, time.February, 1),
	day(2023, time.January, 22),
	day(2024, time.February, 10),
	day(2025, time.January, 29),
}

// qingmingDates is Tomb Sweeping Day (solar term, early April).
var qingmingDates = []time.Time{
	day(2015, time.April, 5),
	day(2016, time.April, 4),
	day(2017, time.April, 4),
	day(2018, time.April, 5),
	day(2019, time.April, 5),
	day(2020, time.April, 4),
	day(2021, time.April, 4),
	day(2022, time.April, 5),
	day(2023, time.April, 5),
	day(2024, time.April, 4),
	day(2025, time.April, 4),
}

// dragonBoatDates is the 5th day of the 5th lunar month.
var dragonBoatDates = []time.Time{
	day(2015, time.June, 20),
	day(2016, time.June, 9),
	day(2017, time.May, 30),
	day(2018, time.June, 18),
	day(2019, time.June, 7),
	day(2020, time.June, 25),
	day(2021, time.June, 14),
	day(2022, time.June, 3),
	day(2023, time.June, 22),
	day(2024, time.June, 10),
	day(2025, time.May, 31),
}

// midAutumnDates is the 15th day of the 8th lunar month.
var midAutumnDates = []time.Time{
	day(2015, time.September, 27),
	day(2016, time.September, 15),
	day(2017, time.October, 4),
	day(2018, time.September, 24),
	day(2019, time.September, 13),
	day(2020, time.October, 1),
	day(2021, time.September, 21),
	day(2022, time.September, 10),
	day(2023, time.September, 29),
	day(2024, time.September, 17),
	day(2025, time.October, 6),
}
