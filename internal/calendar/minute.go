package calendar

import (
	"sort"
	"time"
)

// MinuteIndex is the minute-resolution view of a SessionIndex: a
// cumulative grid of the minute boundaries of every session, supporting
// minute-to-session lookups. It is derived from its owning index and
// never outlives it.
type MinuteIndex struct {
	ix *SessionIndex
	// cum[i] is the number of session minutes before session i;
	// cum[len(sessions)] is the total.
	cum []int
}

func newMinuteIndex(ix *SessionIndex) *MinuteIndex {
	cum := make([]int, len(ix.sessions)+1)
	for i, s := range ix.sessions {
		cum[i+1] = cum[i] + int(s.Close.Sub(s.Open)/time.Minute)
	}
	return &MinuteIndex{ix: ix, cum: cum}
}

// MinuteCount returns the total number of trading minutes in the index.
func (m *MinuteIndex) MinuteCount() int {
	return m.cum[len(m.cum)-1]
}

// MinuteAt returns the i-th trading minute boundary, counting from the
// first session's open. The boolean is false when i is out of range.
func (m *MinuteIndex) MinuteAt(i int) (time.Time, bool) {
	if i < 0 || i >= m.MinuteCount() {
		return time.Time{}, false
	}
	// First session whose cumulative count exceeds i.
	s := sort.Search(len(m.ix.sessions), func(j int) bool {
		return m.cum[j+1] > i
	})
	return m.ix.sessions[s].Open.Add(time.Duration(i-m.cum[s]) * time.Minute), true
}

// SessionMinutes returns the half-open minute boundaries of a session:
// every minute from Open up to but excluding Close.
func (m *MinuteIndex) SessionMinutes(s Session) []time.Time {
	n := int(s.Close.Sub(s.Open) / time.Minute)
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = s.Open.Add(time.Duration(i) * time.Minute)
	}
	return out
}

// SessionForMinute returns the session whose [open, close) window
// contains the instant. An instant exactly at a session close belongs
// to the following session only when that session opens at the same
// instant, never to the session that just closed.
func (m *MinuteIndex) SessionForMinute(instant time.Time) (Session, error) {
	sessions := m.ix.sessions
	// First session whose close is after the instant; with close
	// exclusive, that is the only candidate that can contain it.
	i := sort.Search(len(sessions), func(j int) bool {
		return sessions[j].Close.After(instant)
	})

	if i < len(sessions) && !sessions[i].Open.After(instant) {
		return sessions[i], nil
	}

	if len(sessions) == 0 || instant.Before(sessions[0].Open) || !instant.Before(sessions[len(sessions)-1].Close) {
		// Outside the covered span entirely.
		return Session{}, m.ix.notASession(Midnight(instant.In(m.ix.tz)), "")
	}

	gap := &RangeGapError{Calendar: m.ix.name, Instant: instant}
	if i > 0 {
		gap.PrevClose = sessions[i-1].Close
	}
	if i < len(sessions) {
		gap.NextOpen = sessions[i].Open
	}
	return Session{}, gap
}
