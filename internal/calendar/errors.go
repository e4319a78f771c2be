package calendar

import (
	"fmt"
	"strings"
	"time"
)

// ConstructionError reports a fatal configuration problem found while
// registering or building a calendar. It is never recovered silently.
type ConstructionError struct {
	Calendar string
	Reason   string
}

func (e *ConstructionError) Error() string {
	if e.Calendar == "" {
		return "calendar construction failed: " + e.Reason
	}
	return fmt.Sprintf("calendar %q construction failed: %s", e.Calendar, e.Reason)
}

// NameCollisionError reports an attempt to register a calendar or alias
// under a name that is already taken.
type NameCollisionError struct {
	Name string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("a calendar with the name %q is already registered", e.Name)
}

// UnknownCalendarError reports a request for a calendar name that does
// not resolve to any registered calendar.
type UnknownCalendarError struct {
	Name string
}

func (e *UnknownCalendarError) Error() string {
	return fmt.Sprintf("the requested calendar %q does not exist", e.Name)
}

// CyclicAliasError reports an alias chain that revisits a name before
// reaching a canonical calendar.
type CyclicAliasError struct {
	Cycle []string
}

func (e *CyclicAliasError) Error() string {
	return fmt.Sprintf("cycle in calendar aliases: [%s]", strings.Join(e.Cycle, " -> "))
}

// NotASessionReason distinguishes why a date failed a session lookup.
type NotASessionReason int

const (
	// ReasonNotSession means the date is inside the calendar range but
	// falls on a non-trading day.
	ReasonNotSession NotASessionReason = iota
	// ReasonBeforeFirst means the date precedes the first session.
	ReasonBeforeFirst
	// ReasonAfterLast means the date follows the last session.
	ReasonAfterLast
)

// NotASessionError reports a date that parsed to a valid calendar date
// but does not name a session. The message is rendered on demand from
// the structured fields, never precomputed.
type NotASessionError struct {
	Calendar string
	Date     time.Time
	First    time.Time
	Last     time.Time
	// Param optionally names the parameter that carried the bad value.
	Param string
	// Boundary, when set, classifies a next/previous lookup that ran
	// past an index end. The date itself may then be a session, so the
	// bounds comparison alone cannot classify it.
	Boundary NotASessionReason
}

// Reason classifies the failure relative to the calendar bounds.
func (e *NotASessionError) Reason() NotASessionReason {
	if e.Boundary != ReasonNotSession {
		return e.Boundary
	}
	if e.Date.Before(e.First) {
		return ReasonBeforeFirst
	}
	if e.Date.After(e.Last) {
		return ReasonAfterLast
	}
	return ReasonNotSession
}

func (e *NotASessionError) Error() string {
	var b strings.Builder
	if e.Param != "" {
		fmt.Fprintf(&b, "parameter %q takes a session date although received input that parsed to '%s' which", e.Param, FormatDate(e.Date))
	} else {
		fmt.Fprintf(&b, "'%s'", FormatDate(e.Date))
	}

	switch e.Reason() {
	case ReasonBeforeFirst:
		if e.Date.Before(e.First) {
			fmt.Fprintf(&b, " is earlier than the first session of calendar %q ('%s')", e.Calendar, FormatDate(e.First))
		} else {
			fmt.Fprintf(&b, " has no preceding session of calendar %q (first session '%s')", e.Calendar, FormatDate(e.First))
		}
	case ReasonAfterLast:
		if e.Date.After(e.Last) {
			fmt.Fprintf(&b, " is later than the last session of calendar %q ('%s')", e.Calendar, FormatDate(e.Last))
		} else {
			fmt.Fprintf(&b, " has no following session of calendar %q (last session '%s')", e.Calendar, FormatDate(e.Last))
		}
	default:
		fmt.Fprintf(&b, " is not a session of calendar %q", e.Calendar)
	}
	return b.String()
}

// RangeGapError reports an instant that falls between two sessions,
// after one close and before the next open.
type RangeGapError struct {
	Calendar  string
	Instant   time.Time
	PrevClose time.Time // zero when the instant precedes the first open
	NextOpen  time.Time // zero when the instant follows the last close
}

func (e *RangeGapError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "instant '%s' falls in a gap of calendar %q", e.Instant.UTC().Format(time.RFC3339), e.Calendar)
	if !e.PrevClose.IsZero() {
		fmt.Fprintf(&b, ", after close '%s'", e.PrevClose.UTC().Format(time.RFC3339))
	}
	if !e.NextOpen.IsZero() {
		fmt.Fprintf(&b, ", before open '%s'", e.NextOpen.UTC().Format(time.RFC3339))
	}
	return b.String()
}
