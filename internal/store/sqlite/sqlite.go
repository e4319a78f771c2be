// Package sqlite persists built session indexes as a warm cache, so a
// restarted service serves first queries without rebuilding. The store
// is disposable: any read problem is a cache miss, never an error.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Open opens (or creates) the snapshot database and applies the schema.
// Paths with a file: prefix are used verbatim, which is how tests get
// in-memory databases.
func Open(path string) (*sql.DB, error) {
	if !strings.HasPrefix(path, "file:") {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve snapshot database path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot database directory: %w", err)
		}
		path = abs
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	// Snapshots are written rarely and read at startup; a single
	// connection avoids SQLITE_BUSY without a locking protocol.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping snapshot database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,

		`CREATE TABLE IF NOT EXISTS calendar_snapshots (
			calendar   TEXT NOT NULL,
			range_start TEXT NOT NULL,
			range_end   TEXT NOT NULL,
			timezone   TEXT NOT NULL,
			version    INTEGER NOT NULL,
			built_at   TEXT NOT NULL,
			sessions   BLOB NOT NULL,
			PRIMARY KEY (calendar)
		);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("snapshot schema migration failed: %w", err)
		}
	}
	return nil
}
