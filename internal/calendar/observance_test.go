package calendar

import (
	"testing"
	"time"
)

func weekendCtx() Context {
	return Context{Weekly: Weekends()}
}

func TestPipeline_NearestWorkday(t *testing.T) {
	pipeline := Pipeline{{Kind: StageNearestWorkday}}

	tests := []struct {
		name     string
		anchor   time.Time
		expected time.Time
	}{
		{
			name:     "Saturday moves back to Friday",
			anchor:   Day(2022, time.January, 1), // Saturday
			expected: Day(2021, time.December, 31),
		},
		{
			name:     "Sunday moves forward to Monday",
			anchor:   Day(2023, time.January, 1), // Sunday
			expected: Day(2023, time.January, 2),
		},
		{
			name:     "Weekday stays put",
			anchor:   Day(2024, time.January, 1), // Monday
			expected: Day(2024, time.January, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates := pipeline.Apply(tt.anchor, weekendCtx())
			if len(dates) != 1 {
				t.Fatalf("Apply returned %d dates, want 1", len(dates))
			}
			if !dates[0].Equal(tt.expected) {
				t.Errorf("Apply(%s) = %s, want %s", FormatDate(tt.anchor), FormatDate(dates[0]), FormatDate(tt.expected))
			}
		})
	}
}

func TestPipeline_NearestWorkday_CustomDeltas(t *testing.T) {
	// Both weekend days shift forward, the policy used by calendars that
	// never observe a holiday early.
	ctx := Context{Weekly: Weekends(), SaturdayDelta: 2, SundayDelta: 1}
	pipeline := Pipeline{{Kind: StageNearestWorkday}}

	dates := pipeline.Apply(Day(2022, time.January, 1), ctx) // Saturday
	if !dates[0].Equal(Day(2022, time.January, 3)) {
		t.Errorf("Saturday with +2 delta = %s, want 2022-01-03", FormatDate(dates[0]))
	}
}

func TestPipeline_WeekendMakeup_YearGuard(t *testing.T) {
	pipeline := Pipeline{{Kind: StageWeekendMakeup, FromYear: 2014}}

	// 2011-01-01 is a Saturday, before the stage activates.
	dates := pipeline.Apply(Day(2011, time.January, 1), weekendCtx())
	if !dates[0].Equal(Day(2011, time.January, 1)) {
		t.Errorf("inactive stage moved the date to %s", FormatDate(dates[0]))
	}

	// 2022-01-01 is a Saturday inside the active range.
	dates = pipeline.Apply(Day(2022, time.January, 1), weekendCtx())
	if !dates[0].Equal(Day(2021, time.December, 31)) {
		t.Errorf("active stage produced %s, want 2021-12-31", FormatDate(dates[0]))
	}
}

func TestPipeline_BridgeMonday(t *testing.T) {
	pipeline := Pipeline{{Kind: StageBridgeMonday}}

	// 2023-02-28 is a Tuesday, so the Monday before becomes a holiday too.
	dates := pipeline.Apply(Day(2023, time.February, 28), weekendCtx())
	if len(dates) != 2 {
		t.Fatalf("bridge from Tuesday returned %d dates, want 2", len(dates))
	}
	if !dates[0].Equal(Day(2023, time.February, 28)) {
		t.Errorf("running date = %s, want the anchor unchanged", FormatDate(dates[0]))
	}
	if !dates[1].Equal(Day(2023, time.February, 27)) {
		t.Errorf("bridge date = %s, want 2023-02-27", FormatDate(dates[1]))
	}

	// 2024-02-28 is a Wednesday, no bridge.
	dates = pipeline.Apply(Day(2024, time.February, 28), weekendCtx())
	if len(dates) != 1 {
		t.Errorf("bridge from Wednesday returned %d dates, want 1", len(dates))
	}
}

func TestPipeline_BridgeFriday(t *testing.T) {
	pipeline := Pipeline{{Kind: StageBridgeFriday}}

	// 2023-02-02 is a Thursday, so the Friday after becomes a holiday too.
	dates := pipeline.Apply(Day(2023, time.February, 2), weekendCtx())
	if len(dates) != 2 {
		t.Fatalf("bridge from Thursday returned %d dates, want 2", len(dates))
	}
	if !dates[1].Equal(Day(2023, time.February, 3)) {
		t.Errorf("bridge date = %s, want 2023-02-03", FormatDate(dates[1]))
	}
}

func TestPipeline_NextMonday_PreviousFriday(t *testing.T) {
	next := Pipeline{{Kind: StageNextMonday}}
	prev := Pipeline{{Kind: StagePreviousFriday}}

	sat := Day(2024, time.June, 8)
	sun := Day(2024, time.June, 9)

	if got := next.Apply(sat, weekendCtx())[0]; !got.Equal(Day(2024, time.June, 10)) {
		t.Errorf("next Monday from Saturday = %s, want 2024-06-10", FormatDate(got))
	}
	if got := next.Apply(sun, weekendCtx())[0]; !got.Equal(Day(2024, time.June, 10)) {
		t.Errorf("next Monday from Sunday = %s, want 2024-06-10", FormatDate(got))
	}
	if got := prev.Apply(sat, weekendCtx())[0]; !got.Equal(Day(2024, time.June, 7)) {
		t.Errorf("previous Friday from Saturday = %s, want 2024-06-07", FormatDate(got))
	}
	if got := prev.Apply(sun, weekendCtx())[0]; !got.Equal(Day(2024, time.June, 7)) {
		t.Errorf("previous Friday from Sunday = %s, want 2024-06-07", FormatDate(got))
	}
}

func TestPipeline_SundayToMonday(t *testing.T) {
	pipeline := Pipeline{{Kind: StageSundayToMonday}}

	// Sunday rolls forward, Saturday stays unobserved.
	if got := pipeline.Apply(Day(2023, time.January, 1), weekendCtx())[0]; !got.Equal(Day(2023, time.January, 2)) {
		t.Errorf("Sunday = %s, want 2023-01-02", FormatDate(got))
	}
	if got := pipeline.Apply(Day(2022, time.January, 1), weekendCtx())[0]; !got.Equal(Day(2022, time.January, 1)) {
		t.Errorf("Saturday = %s, want the anchor unchanged", FormatDate(got))
	}
}

func TestPipeline_DayOffsetThenMakeup(t *testing.T) {
	// A festival eve two days before the anchor, made up when it lands on
	// a weekend. Anchor 2024-02-10 (Saturday), eve 2024-02-08 (Thursday).
	pipeline := Pipeline{
		{Kind: StageDayOffset, Days: -2},
		{Kind: StageWeekendMakeup},
	}

	dates := pipeline.Apply(Day(2024, time.February, 10), weekendCtx())
	if !dates[0].Equal(Day(2024, time.February, 8)) {
		t.Errorf("offset then makeup = %s, want 2024-02-08", FormatDate(dates[0]))
	}
}

func TestPipeline_Validate(t *testing.T) {
	if err := (Pipeline{{Kind: StageNearestWorkday}, {Kind: StageBridgeMonday}}).Validate(); err != nil {
		t.Errorf("valid pipeline rejected: %v", err)
	}

	if err := (Pipeline{{Kind: StageKind("holiday_shuffle")}}).Validate(); err == nil {
		t.Error("unknown stage kind accepted")
	}

	if err := (Pipeline{{Kind: StageWeekendMakeup, FromYear: 2020, UntilYear: 2010}}).Validate(); err == nil {
		t.Error("empty year range accepted")
	}
}

func TestNonDefaultWeeklyPattern(t *testing.T) {
	// Friday/Saturday weekend, as in Gulf markets. Sunday is a trading
	// day, so a Saturday anchor shifting back lands on Friday which is
	// also non-trading and keeps shifting.
	ctx := Context{Weekly: NewWeeklyPattern(time.Friday, time.Saturday)}
	pipeline := Pipeline{{Kind: StageNearestWorkday}}

	// 2024-06-08 is a Saturday; the default Saturday delta walks back to
	// Friday 06-07, also non-trading, which then steps forward day by day
	// until Sunday 06-09.
	dates := pipeline.Apply(Day(2024, time.June, 8), ctx)
	if !dates[0].Equal(Day(2024, time.June, 9)) {
		t.Errorf("Fri/Sat weekend makeup = %s, want 2024-06-09", FormatDate(dates[0]))
	}
}
