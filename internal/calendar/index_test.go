package calendar

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildWeek builds a plain Monday-to-Friday week of 09:00-17:00 UTC
// sessions, 2024-06-03 through 2024-06-07, surrounded by weekends.
func buildWeek(t *testing.T) *SessionIndex {
	t.Helper()
	cfg := testConfig("WEEK")
	ix, err := Build(cfg, Day(2024, time.June, 1), Day(2024, time.June, 9))
	require.NoError(t, err)
	require.Equal(t, 5, ix.Len())
	return ix
}

func TestSessionFor(t *testing.T) {
	ix := buildWeek(t)

	s, err := ix.SessionFor(Day(2024, time.June, 5))
	require.NoError(t, err)
	assert.Equal(t, Day(2024, time.June, 5), s.Date)

	// Any time-of-day component is normalized away.
	s, err = ix.SessionFor(time.Date(2024, time.June, 5, 14, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, Day(2024, time.June, 5), s.Date)
}

func TestSessionFor_NotASessionCases(t *testing.T) {
	ix := buildWeek(t)

	tests := []struct {
		name     string
		date     time.Time
		reason   NotASessionReason
		fragment string
	}{
		{
			name:     "weekend inside the range",
			date:     Day(2024, time.June, 8),
			reason:   ReasonNotSession,
			fragment: `is not a session of calendar "WEEK"`,
		},
		{
			name:     "before the first session",
			date:     Day(2024, time.May, 20),
			reason:   ReasonBeforeFirst,
			fragment: `is earlier than the first session of calendar "WEEK" ('2024-06-03')`,
		},
		{
			name:     "after the last session",
			date:     Day(2024, time.July, 1),
			reason:   ReasonAfterLast,
			fragment: `is later than the last session of calendar "WEEK" ('2024-06-07')`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ix.SessionFor(tt.date)
			var nse *NotASessionError
			require.True(t, errors.As(err, &nse), "expected NotASessionError, got %v", err)
			assert.Equal(t, tt.reason, nse.Reason())
			assert.Contains(t, err.Error(), tt.fragment)
		})
	}
}

func TestSessionForParam_MessageNamesParameter(t *testing.T) {
	ix := buildWeek(t)

	_, err := ix.SessionForParam(Day(2024, time.June, 8), "session_date")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), `parameter "session_date" takes a session date`), err.Error())

	// Without a parameter name the message leads with the date itself.
	_, err = ix.SessionFor(Day(2024, time.June, 8))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "'2024-06-08'"), err.Error())
}

func TestNextPreviousSession(t *testing.T) {
	ix := buildWeek(t)

	// Next from a session date is strictly after it.
	s, err := ix.NextSession(Day(2024, time.June, 5))
	require.NoError(t, err)
	assert.Equal(t, Day(2024, time.June, 6), s.Date)

	// Next from a non-session date skips to the following session.
	s, err = ix.NextSession(Day(2024, time.June, 1))
	require.NoError(t, err)
	assert.Equal(t, Day(2024, time.June, 3), s.Date)

	s, err = ix.PreviousSession(Day(2024, time.June, 9))
	require.NoError(t, err)
	assert.Equal(t, Day(2024, time.June, 7), s.Date)
}

func TestNextPreviousSession_Boundaries(t *testing.T) {
	ix := buildWeek(t)

	// Next past the final session fails, classified as after-last even
	// though June 7 is itself a session.
	_, err := ix.NextSession(Day(2024, time.June, 7))
	var nse *NotASessionError
	require.True(t, errors.As(err, &nse))
	assert.Equal(t, ReasonAfterLast, nse.Reason())
	assert.Contains(t, nse.Error(), `has no following session of calendar "WEEK" (last session '2024-06-07')`)

	// Previous before the first session fails, classified as
	// before-first.
	_, err = ix.PreviousSession(Day(2024, time.June, 3))
	require.True(t, errors.As(err, &nse))
	assert.Equal(t, ReasonBeforeFirst, nse.Reason())
	assert.Contains(t, nse.Error(), `has no preceding session of calendar "WEEK" (first session '2024-06-03')`)

	// A date already outside the range keeps the plain bounds wording.
	_, err = ix.NextSession(Day(2024, time.June, 20))
	require.True(t, errors.As(err, &nse))
	assert.Equal(t, ReasonAfterLast, nse.Reason())
	assert.Contains(t, nse.Error(), `is later than the last session of calendar "WEEK" ('2024-06-07')`)

	s, err := ix.PreviousSession(Day(2024, time.June, 4))
	require.NoError(t, err)
	assert.Equal(t, Day(2024, time.June, 3), s.Date)

	// From far before the range, next lands on the first session.
	s, err = ix.NextSession(Day(2024, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, Day(2024, time.June, 3), s.Date)
}

func TestSessionsInRange(t *testing.T) {
	ix := buildWeek(t)

	sessions := ix.SessionsInRange(Day(2024, time.June, 4), Day(2024, time.June, 6))
	require.Len(t, sessions, 3)
	assert.Equal(t, Day(2024, time.June, 4), sessions[0].Date)
	assert.Equal(t, Day(2024, time.June, 6), sessions[2].Date)

	// Bounds on non-session days clamp inward.
	sessions = ix.SessionsInRange(Day(2024, time.June, 1), Day(2024, time.June, 9))
	assert.Len(t, sessions, 5)

	// Inverted range is empty, not an error.
	assert.Empty(t, ix.SessionsInRange(Day(2024, time.June, 6), Day(2024, time.June, 4)))

	// A range holding no sessions is empty.
	assert.Empty(t, ix.SessionsInRange(Day(2024, time.June, 8), Day(2024, time.June, 9)))
}

func TestSessionsInRange_RoundTrip(t *testing.T) {
	ix := buildWeek(t)

	// Every per-session lookup agrees with the bulk query.
	for _, s := range ix.SessionsInRange(ix.Start(), ix.End()) {
		got, err := ix.SessionFor(s.Date)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestSessionOrderingInvariants(t *testing.T) {
	cfg := testConfig("TEST")
	cfg.Holidays = []HolidayRule{
		RecurringHoliday{
			Name:       "New Year's Day",
			Anchor:     FixedDate{Month: time.January, Day: 1},
			Observance: Pipeline{{Kind: StageNearestWorkday}},
		},
	}

	ix, err := Build(cfg, Day(2023, time.January, 1), Day(2024, time.December, 31))
	require.NoError(t, err)

	sessions := ix.Sessions()
	for i := 1; i < len(sessions); i++ {
		assert.True(t, sessions[i-1].Date.Before(sessions[i].Date), "dates strictly increasing")
		assert.False(t, sessions[i].Open.Before(sessions[i-1].Close), "sessions must not overlap")
	}
	for _, s := range sessions {
		assert.True(t, s.Open.Before(s.Close), "open precedes close")
	}
}

func TestNewSessionIndex_RejectsBadInput(t *testing.T) {
	open := time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC)
	close := time.Date(2024, time.June, 3, 17, 0, 0, 0, time.UTC)
	day := Day(2024, time.June, 3)
	start, end := Day(2024, time.June, 1), Day(2024, time.June, 9)

	tests := []struct {
		name     string
		sessions []Session
	}{
		{
			name:     "open not before close",
			sessions: []Session{{Date: day, Open: close, Close: open}},
		},
		{
			name:     "date outside range",
			sessions: []Session{{Date: Day(2024, time.July, 1), Open: open, Close: close}},
		},
		{
			name: "dates not increasing",
			sessions: []Session{
				{Date: day, Open: open, Close: close},
				{Date: day, Open: open.AddDate(0, 0, 1), Close: close.AddDate(0, 0, 1)},
			},
		},
		{
			name: "overlapping instants",
			sessions: []Session{
				{Date: day, Open: open, Close: close},
				{Date: day.AddDate(0, 0, 1), Open: close.Add(-time.Hour), Close: close.Add(time.Hour)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSessionIndex("TEST", time.UTC, start, end, tt.sessions, 0, 0)
			var cerr *ConstructionError
			assert.True(t, errors.As(err, &cerr), "expected construction error, got %v", err)
		})
	}
}

func TestIsOpenAt_Boundaries(t *testing.T) {
	ix := buildWeek(t)

	open := time.Date(2024, time.June, 5, 9, 0, 0, 0, time.UTC)
	close := time.Date(2024, time.June, 5, 17, 0, 0, 0, time.UTC)

	assert.True(t, ix.IsOpenAt(open), "open instant is inside the session")
	assert.True(t, ix.IsOpenAt(close.Add(-time.Minute)))
	assert.False(t, ix.IsOpenAt(close), "close instant is exclusive")
	assert.False(t, ix.IsOpenAt(open.Add(-time.Second)))
}

func TestMinuteToSession(t *testing.T) {
	ix := buildWeek(t)

	s, err := ix.MinuteToSession(time.Date(2024, time.June, 5, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, Day(2024, time.June, 5), s.Date)
}

func TestMinuteToSession_Gap(t *testing.T) {
	ix := buildWeek(t)

	// Overnight between the Wednesday close and the Thursday open.
	_, err := ix.MinuteToSession(time.Date(2024, time.June, 5, 20, 0, 0, 0, time.UTC))
	var gap *RangeGapError
	require.True(t, errors.As(err, &gap), "expected RangeGapError, got %v", err)
	assert.True(t, gap.PrevClose.Equal(time.Date(2024, time.June, 5, 17, 0, 0, 0, time.UTC)))
	assert.True(t, gap.NextOpen.Equal(time.Date(2024, time.June, 6, 9, 0, 0, 0, time.UTC)))
}

func TestMinuteToSession_OutsideSpan(t *testing.T) {
	ix := buildWeek(t)

	var nse *NotASessionError
	_, err := ix.MinuteToSession(time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC))
	require.True(t, errors.As(err, &nse))
	assert.Equal(t, ReasonBeforeFirst, nse.Reason())

	_, err = ix.MinuteToSession(time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC))
	require.True(t, errors.As(err, &nse))
	assert.Equal(t, ReasonAfterLast, nse.Reason())
}

func TestMinuteToSession_CloseInstantAtBackToBackOpen(t *testing.T) {
	// Two sessions where one closes exactly as the next opens: the
	// shared instant belongs to the later session.
	d1, d2 := Day(2024, time.June, 3), Day(2024, time.June, 4)
	boundary := time.Date(2024, time.June, 3, 18, 0, 0, 0, time.UTC)
	sessions := []Session{
		{Date: d1, Open: boundary.Add(-24 * time.Hour), Close: boundary},
		{Date: d2, Open: boundary, Close: boundary.Add(24 * time.Hour)},
	}

	ix, err := NewSessionIndex("FUT", time.UTC, d1, d2, sessions, 0, 0)
	require.NoError(t, err)

	s, err := ix.MinuteToSession(boundary)
	require.NoError(t, err)
	assert.Equal(t, d2, s.Date)
}

func TestMinuteIndex(t *testing.T) {
	ix := buildWeek(t)
	mi := ix.MinuteIndex()

	// Five 8-hour sessions.
	assert.Equal(t, 5*8*60, mi.MinuteCount())

	first, ok := mi.MinuteAt(0)
	require.True(t, ok)
	assert.True(t, first.Equal(time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC)))

	// Minute 480 is the first minute of the second session.
	m, ok := mi.MinuteAt(480)
	require.True(t, ok)
	assert.True(t, m.Equal(time.Date(2024, time.June, 4, 9, 0, 0, 0, time.UTC)))

	last, ok := mi.MinuteAt(mi.MinuteCount() - 1)
	require.True(t, ok)
	assert.True(t, last.Equal(time.Date(2024, time.June, 7, 16, 59, 0, 0, time.UTC)))

	_, ok = mi.MinuteAt(mi.MinuteCount())
	assert.False(t, ok)
	_, ok = mi.MinuteAt(-1)
	assert.False(t, ok)
}

func TestSessionMinutes(t *testing.T) {
	ix := buildWeek(t)
	s, err := ix.SessionFor(Day(2024, time.June, 5))
	require.NoError(t, err)

	minutes := ix.MinuteIndex().SessionMinutes(s)
	require.Len(t, minutes, 8*60)
	assert.True(t, minutes[0].Equal(s.Open))
	assert.True(t, minutes[len(minutes)-1].Equal(s.Close.Add(-time.Minute)), "close minute excluded")
}

func TestExecutionOffsets(t *testing.T) {
	cfg := testConfig("EXEC")
	cfg.ExecutionOpenOffset = 12*time.Hour + 30*time.Minute
	cfg.ExecutionCloseOffset = -time.Hour

	ix, err := Build(cfg, Day(2024, time.June, 3), Day(2024, time.June, 7))
	require.NoError(t, err)

	s, err := ix.SessionFor(Day(2024, time.June, 5))
	require.NoError(t, err)
	assert.True(t, ix.ExecutionOpen(s).Equal(s.Open.Add(12*time.Hour+30*time.Minute)))
	assert.True(t, ix.ExecutionClose(s).Equal(s.Close.Add(-time.Hour)))
}

func TestEmptyIndex(t *testing.T) {
	// A weekend-only range builds an index with no sessions.
	cfg := testConfig("EMPTY")
	ix, err := Build(cfg, Day(2024, time.June, 8), Day(2024, time.June, 9))
	require.NoError(t, err)
	assert.Equal(t, 0, ix.Len())

	_, ok := ix.FirstSession()
	assert.False(t, ok)
	_, ok = ix.LastSession()
	assert.False(t, ok)

	_, err = ix.SessionFor(Day(2024, time.June, 8))
	assert.Error(t, err)
	assert.False(t, ix.IsOpenAt(time.Date(2024, time.June, 8, 12, 0, 0, 0, time.UTC)))
}
