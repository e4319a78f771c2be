package sqlite

import (
	"database/sql"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/gerrymanoim/exchange-calendars/internal/calendar"
)

// snapshotVersion invalidates stored blobs when the encoding changes.
const snapshotVersion = 1

// SnapshotStore implements the registry's warm-cache interface on top
// of the snapshot database. One row per calendar, last build wins.
type SnapshotStore struct {
	db              *sql.DB
	log             zerolog.Logger
	execOpenOffset  map[string]time.Duration
	execCloseOffset map[string]time.Duration
}

// NewSnapshotStore wraps an open snapshot database.
func NewSnapshotStore(db *sql.DB, log zerolog.Logger) *SnapshotStore {
	return &SnapshotStore{
		db:              db,
		log:             log.With().Str("component", "snapshot_store").Logger(),
		execOpenOffset:  make(map[string]time.Duration),
		execCloseOffset: make(map[string]time.Duration),
	}
}

// RegisterExecutionOffsets records a calendar's execution-time
// transforms so restored indexes carry them; the blob stores only
// sessions.
func (s *SnapshotStore) RegisterExecutionOffsets(name string, open, close time.Duration) {
	s.execOpenOffset[name] = open
	s.execCloseOffset[name] = close
}

type sessionRow struct {
	Date    int64 `msgpack:"d"`
	Open    int64 `msgpack:"o"`
	Close   int64 `msgpack:"c"`
	Special bool  `msgpack:"s"`
}

// Save persists the index, replacing any previous snapshot for the
// same calendar.
func (s *SnapshotStore) Save(ix *calendar.SessionIndex) error {
	sessions := ix.Sessions()
	rows := make([]sessionRow, len(sessions))
	for i, sess := range sessions {
		rows[i] = sessionRow{
			Date:    sess.Date.Unix(),
			Open:    sess.Open.Unix(),
			Close:   sess.Close.Unix(),
			Special: sess.Special,
		}
	}

	blob, err := msgpack.Marshal(rows)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO calendar_snapshots (calendar, range_start, range_end, timezone, version, built_at, sessions)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (calendar) DO UPDATE SET
			range_start = excluded.range_start,
			range_end   = excluded.range_end,
			timezone    = excluded.timezone,
			version     = excluded.version,
			built_at    = excluded.built_at,
			sessions    = excluded.sessions`,
		ix.Name(),
		calendar.FormatDate(ix.Start()),
		calendar.FormatDate(ix.End()),
		ix.Timezone().String(),
		snapshotVersion,
		time.Now().UTC().Format(time.RFC3339),
		blob,
	)
	if err == nil {
		s.log.Debug().Str("calendar", ix.Name()).Int("sessions", ix.Len()).Msg("Snapshot saved")
	}
	return err
}

// Load returns a stored index for the calendar if one exists and covers
// [start, end]. Any decoding or invariant problem is logged and treated
// as a miss.
func (s *SnapshotStore) Load(name string, start, end time.Time) (*calendar.SessionIndex, bool) {
	var (
		rangeStart, rangeEnd, timezone string
		version                        int
		blob                           []byte
	)
	err := s.db.QueryRow(`
		SELECT range_start, range_end, timezone, version, sessions
		FROM calendar_snapshots WHERE calendar = ?`, name).
		Scan(&rangeStart, &rangeEnd, &timezone, &version, &blob)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		s.log.Warn().Err(err).Str("calendar", name).Msg("Snapshot read failed")
		return nil, false
	}
	if version != snapshotVersion {
		return nil, false
	}

	snapStart, err := calendar.ParseDate(rangeStart)
	if err != nil {
		return nil, false
	}
	snapEnd, err := calendar.ParseDate(rangeEnd)
	if err != nil {
		return nil, false
	}
	if start.Before(snapStart) || end.After(snapEnd) {
		return nil, false
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		s.log.Warn().Err(err).Str("calendar", name).Msg("Snapshot has unknown timezone")
		return nil, false
	}

	var rows []sessionRow
	if err := msgpack.Unmarshal(blob, &rows); err != nil {
		s.log.Warn().Err(err).Str("calendar", name).Msg("Snapshot blob corrupt")
		return nil, false
	}

	sessions := make([]calendar.Session, len(rows))
	for i, row := range rows {
		sessions[i] = calendar.Session{
			Date:    time.Unix(row.Date, 0).UTC(),
			Open:    time.Unix(row.Open, 0).In(loc),
			Close:   time.Unix(row.Close, 0).In(loc),
			Special: row.Special,
		}
	}

	ix, err := calendar.NewSessionIndex(name, loc, snapStart, snapEnd, sessions, s.execOpenOffset[name], s.execCloseOffset[name])
	if err != nil {
		s.log.Warn().Err(err).Str("calendar", name).Msg("Snapshot failed invariant checks")
		return nil, false
	}
	return ix, true
}
