package calendar

import (
	"fmt"
	"time"
)

// Context carries the calendar-wide facts an observance stage needs:
// the weekly trading pattern and the per-calendar weekend shift policy.
type Context struct {
	Weekly WeeklyPattern
	// SaturdayDelta and SundayDelta are the day shifts applied by
	// nearest-workday style stages. Zero values mean the conventional
	// policy: Saturday moves back one day, Sunday forward one day.
	SaturdayDelta int
	SundayDelta   int
}

func (c Context) saturdayDelta() int {
	if c.SaturdayDelta == 0 {
		return -1
	}
	return c.SaturdayDelta
}

func (c Context) sundayDelta() int {
	if c.SundayDelta == 0 {
		return 1
	}
	return c.SundayDelta
}

// StageKind names an observance transform.
type StageKind string

const (
	// StageNearestWorkday moves a weekend date to the nearest trading day.
	StageNearestWorkday StageKind = "nearest_workday"
	// StageWeekendMakeup is nearest-workday gated by a year range.
	StageWeekendMakeup StageKind = "weekend_makeup"
	// StageBridgeMonday emits an extra holiday on Monday when the
	// running date is a Tuesday, connecting it to the weekend.
	StageBridgeMonday StageKind = "bridge_monday"
	// StageBridgeFriday emits an extra holiday on Friday when the
	// running date is a Thursday.
	StageBridgeFriday StageKind = "bridge_friday"
	// StageNextMonday moves a weekend date forward to the next Monday.
	StageNextMonday StageKind = "next_monday"
	// StageSundayToMonday moves a Sunday date to Monday and leaves a
	// Saturday date unobserved, as for NYSE New Year's Day.
	StageSundayToMonday StageKind = "sunday_to_monday"
	// StagePreviousFriday moves a weekend date back to the previous Friday.
	StagePreviousFriday StageKind = "previous_friday"
	// StageDayOffset shifts the running date by a fixed number of days.
	// Used with lunar anchors to derive festival eves and follow-ups.
	StageDayOffset StageKind = "day_offset"
)

// Stage is one named observance transform with an optional year guard.
// Outside [FromYear, UntilYear] the stage is a no-op. Stages are plain
// data so rule sets can be inspected and validated without running them.
type Stage struct {
	Kind      StageKind
	FromYear  int // inclusive; 0 means unbounded
	UntilYear int // inclusive; 0 means unbounded
	Days      int // day delta for StageDayOffset
}

func (s Stage) active(year int) bool {
	if s.FromYear != 0 && year < s.FromYear {
		return false
	}
	if s.UntilYear != 0 && year > s.UntilYear {
		return false
	}
	return true
}

// Pipeline is an ordered list of observance stages applied left to right.
type Pipeline []Stage

// nearestWorkday shifts d off the weekly non-trading pattern. A
// Saturday or Sunday applies the context's shift policy once; the
// result then rolls forward day by day until it is a trading day, which
// always terminates for any non-empty pattern.
func nearestWorkday(d time.Time, ctx Context) time.Time {
	if !ctx.Weekly.IsTradingDay(d) {
		switch d.Weekday() {
		case time.Saturday:
			d = d.AddDate(0, 0, ctx.saturdayDelta())
		case time.Sunday:
			d = d.AddDate(0, 0, ctx.sundayDelta())
		}
	}
	for !ctx.Weekly.IsTradingDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// Apply runs the pipeline on an anchor date and returns every holiday
// date it produces. Shifting stages move the running date; bridging
// stages append extra dates without replacing it. The result always
// contains at least the running date: the holiday set is a union, never
// a rewrite.
func (p Pipeline) Apply(anchor time.Time, ctx Context) []time.Time {
	cur := anchor
	var extras []time.Time

	for _, stage := range p {
		switch stage.Kind {
		case StageNearestWorkday:
			if stage.active(cur.Year()) {
				cur = nearestWorkday(cur, ctx)
			}
		case StageWeekendMakeup:
			if stage.active(cur.Year()) {
				cur = nearestWorkday(cur, ctx)
			}
		case StageBridgeMonday:
			bridge := cur.AddDate(0, 0, -1)
			if bridge.Weekday() == time.Monday && stage.active(bridge.Year()) {
				extras = append(extras, bridge)
			}
		case StageBridgeFriday:
			bridge := cur.AddDate(0, 0, 1)
			if bridge.Weekday() == time.Friday && stage.active(bridge.Year()) {
				extras = append(extras, bridge)
			}
		case StageNextMonday:
			if stage.active(cur.Year()) {
				for cur.Weekday() == time.Saturday || cur.Weekday() == time.Sunday {
					cur = cur.AddDate(0, 0, 1)
				}
			}
		case StageSundayToMonday:
			if stage.active(cur.Year()) && cur.Weekday() == time.Sunday {
				cur = cur.AddDate(0, 0, 1)
			}
		case StagePreviousFriday:
			if stage.active(cur.Year()) {
				for cur.Weekday() == time.Saturday || cur.Weekday() == time.Sunday {
					cur = cur.AddDate(0, 0, -1)
				}
			}
		case StageDayOffset:
			if stage.active(cur.Year()) {
				cur = cur.AddDate(0, 0, stage.Days)
			}
		}
	}

	return append([]time.Time{cur}, extras...)
}

// Validate checks that every stage names a known transform.
func (p Pipeline) Validate() error {
	for i, stage := range p {
		switch stage.Kind {
		case StageNearestWorkday, StageWeekendMakeup, StageBridgeMonday, StageBridgeFriday,
			StageNextMonday, StageSundayToMonday, StagePreviousFriday, StageDayOffset:
		default:
			return &ConstructionError{Reason: fmt.Sprintf("unknown observance stage %q at position %d", stage.Kind, i)}
		}
		if stage.FromYear != 0 && stage.UntilYear != 0 && stage.FromYear > stage.UntilYear {
			return &ConstructionError{Reason: fmt.Sprintf("observance stage %q has an empty year range", stage.Kind)}
		}
	}
	return nil
}
