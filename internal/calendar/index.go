package calendar

import (
	"sort"
	"sync"
	"time"
)

// Session is a single trading day with its open and close instants.
// Open is inclusive, Close exclusive: the session covers [Open, Close).
type Session struct {
	Date    time.Time
	Open    time.Time
	Close   time.Time
	Special bool
}

// SessionIndex is the immutable, date-sorted result of building a
// calendar over a range. All queries are pure; the minute index is
// derived lazily on first use.
type SessionIndex struct {
	name     string
	tz       *time.Location
	start    time.Time
	end      time.Time
	sessions []Session

	execOpenOffset  time.Duration
	execCloseOffset time.Duration

	minuteOnce sync.Once
	minutes    *MinuteIndex
}

// NewSessionIndex assembles an index from already-computed sessions and
// asserts its invariants: strictly increasing dates, open before close,
// contiguous containment in [start, end]. Both the builder and the
// snapshot store construct indexes through here so a corrupt snapshot
// can never produce an index the builder could not have.
func NewSessionIndex(name string, tz *time.Location, start, end time.Time, sessions []Session, execOpen, execClose time.Duration) (*SessionIndex, error) {
	for i, s := range sessions {
		if !s.Open.Before(s.Close) {
			return nil, &ConstructionError{Calendar: name, Reason: "session " + FormatDate(s.Date) + " has open not before close"}
		}
		if s.Date.Before(start) || s.Date.After(end) {
			return nil, &ConstructionError{Calendar: name, Reason: "session " + FormatDate(s.Date) + " falls outside the built range"}
		}
		if i > 0 && !sessions[i-1].Date.Before(s.Date) {
			return nil, &ConstructionError{Calendar: name, Reason: "session dates are not strictly increasing at " + FormatDate(s.Date)}
		}
		if i > 0 && s.Open.Before(sessions[i-1].Close) {
			return nil, &ConstructionError{Calendar: name, Reason: "session " + FormatDate(s.Date) + " opens before the previous session closes"}
		}
	}

	return &SessionIndex{
		name:            name,
		tz:              tz,
		start:           start,
		end:             end,
		sessions:        sessions,
		execOpenOffset:  execOpen,
		execCloseOffset: execClose,
	}, nil
}

// Name returns the canonical calendar name the index was built for.
func (ix *SessionIndex) Name() string { return ix.name }

// Timezone returns the exchange zone the instants were computed in.
func (ix *SessionIndex) Timezone() *time.Location { return ix.tz }

// Start returns the inclusive lower bound of the built range.
func (ix *SessionIndex) Start() time.Time { return ix.start }

// End returns the inclusive upper bound of the built range.
func (ix *SessionIndex) End() time.Time { return ix.end }

// Len returns the number of sessions in the index.
func (ix *SessionIndex) Len() int { return len(ix.sessions) }

// Covers reports whether the index's built range contains [start, end].
func (ix *SessionIndex) Covers(start, end time.Time) bool {
	return !start.Before(ix.start) && !end.After(ix.end)
}

// Sessions returns a copy of every session in date order.
func (ix *SessionIndex) Sessions() []Session {
	out := make([]Session, len(ix.sessions))
	copy(out, ix.sessions)
	return out
}

// FirstSession returns the earliest session. The boolean is false for
// an index with no sessions.
func (ix *SessionIndex) FirstSession() (Session, bool) {
	if len(ix.sessions) == 0 {
		return Session{}, false
	}
	return ix.sessions[0], true
}

// LastSession returns the latest session.
func (ix *SessionIndex) LastSession() (Session, bool) {
	if len(ix.sessions) == 0 {
		return Session{}, false
	}
	return ix.sessions[len(ix.sessions)-1], true
}

// searchDate returns the position of the first session whose date is
// not before d.
func (ix *SessionIndex) searchDate(d time.Time) int {
	return sort.Search(len(ix.sessions), func(i int) bool {
		return !ix.sessions[i].Date.Before(d)
	})
}

// IsSession reports whether d is exactly a session date.
func (ix *SessionIndex) IsSession(d time.Time) bool {
	d = Midnight(d)
	i := ix.searchDate(d)
	return i < len(ix.sessions) && ix.sessions[i].Date.Equal(d)
}

// SessionFor returns the session with exactly the given date, or a
// NotASessionError classifying why there is none.
func (ix *SessionIndex) SessionFor(d time.Time) (Session, error) {
	return ix.sessionFor(d, "")
}

// SessionForParam is SessionFor with the caller's parameter name
// carried into any resulting error message.
func (ix *SessionIndex) SessionForParam(d time.Time, param string) (Session, error) {
	return ix.sessionFor(d, param)
}

func (ix *SessionIndex) sessionFor(d time.Time, param string) (Session, error) {
	d = Midnight(d)
	i := ix.searchDate(d)
	if i < len(ix.sessions) && ix.sessions[i].Date.Equal(d) {
		return ix.sessions[i], nil
	}
	return Session{}, ix.notASession(d, param)
}

func (ix *SessionIndex) notASession(d time.Time, param string) *NotASessionError {
	err := &NotASessionError{Calendar: ix.name, Date: d, Param: param}
	if first, ok := ix.FirstSession(); ok {
		err.First = first.Date
	}
	if last, ok := ix.LastSession(); ok {
		err.Last = last.Date
	}
	return err
}

// NextSession returns the nearest session strictly after d, whether or
// not d itself is a session. Past the last session it clamps and
// reports the boundary as a NotASessionError.
func (ix *SessionIndex) NextSession(d time.Time) (Session, error) {
	d = Midnight(d)
	i := ix.searchDate(d.AddDate(0, 0, 1))
	if i >= len(ix.sessions) {
		err := ix.notASession(d, "")
		err.Boundary = ReasonAfterLast
		return Session{}, err
	}
	return ix.sessions[i], nil
}

// PreviousSession returns the nearest session strictly before d.
func (ix *SessionIndex) PreviousSession(d time.Time) (Session, error) {
	d = Midnight(d)
	i := ix.searchDate(d)
	if i == 0 {
		err := ix.notASession(d, "")
		err.Boundary = ReasonBeforeFirst
		return Session{}, err
	}
	return ix.sessions[i-1], nil
}

// SessionsInRange returns every session with from <= date <= to, in
// order. An empty result is not an error.
func (ix *SessionIndex) SessionsInRange(from, to time.Time) []Session {
	from, to = Midnight(from), Midnight(to)
	if from.After(to) {
		return nil
	}
	lo := ix.searchDate(from)
	hi := ix.searchDate(to.AddDate(0, 0, 1))
	out := make([]Session, hi-lo)
	copy(out, ix.sessions[lo:hi])
	return out
}

// MinuteIndex returns the lazily derived minute-resolution view.
func (ix *SessionIndex) MinuteIndex() *MinuteIndex {
	ix.minuteOnce.Do(func() {
		ix.minutes = newMinuteIndex(ix)
	})
	return ix.minutes
}

// MinuteToSession returns the session whose half-open [open, close)
// window contains the instant. Instants in gaps between sessions fail
// with a RangeGapError; instants outside the covered span fail with a
// NotASessionError.
func (ix *SessionIndex) MinuteToSession(instant time.Time) (Session, error) {
	return ix.MinuteIndex().SessionForMinute(instant)
}

// IsOpenAt reports whether any session's half-open window contains the
// instant. An instant exactly at a close belongs to no session.
func (ix *SessionIndex) IsOpenAt(instant time.Time) bool {
	_, err := ix.MinuteToSession(instant)
	return err == nil
}

// ExecutionOpen applies the calendar's execution-time transform to a
// session open, for venues whose execution window differs from the
// nominal session.
func (ix *SessionIndex) ExecutionOpen(s Session) time.Time {
	return s.Open.Add(ix.execOpenOffset)
}

// ExecutionClose applies the execution-time transform to a session close.
func (ix *SessionIndex) ExecutionClose(s Session) time.Time {
	return s.Close.Add(ix.execCloseOffset)
}
