// Package journal persists orchestrator lifecycle events to SQLite: phase
// transitions, provisioning outcomes and fatal failures. The journal is an
// audit trail for the operator; recording is best-effort and never blocks
// or fails orchestration.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	ts      TEXT NOT NULL,
	coin    TEXT NOT NULL,
	event   TEXT NOT NULL,
	detail  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS events_coin_ts ON events(coin, ts);
`

// Event is one recorded orchestrator event.
type Event struct {
	ID     int64
	Time   time.Time
	Coin   string
	Event  string
	Detail string
}

// Journal is a SQLite-backed event log.
type Journal struct {
	db  *sql.DB
	log *slog.Logger
}

// Open creates or opens the journal database.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}

	return &Journal{db: db, log: slog.With("component", "journal")}, nil
}

// Record appends one event. Nil-receiver safe and best-effort: journaling
// problems are logged, never propagated into the startup path.
func (j *Journal) Record(ctx context.Context, coin, event, detail string) {
	if j == nil || j.db == nil {
		return
	}
	ts := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO events (ts, coin, event, detail) VALUES (?, ?, ?, ?)`,
		ts, coin, event, detail)
	if err != nil {
		j.log.Warn("journal write failed", "event", event, "err", err)
	}
}

// Recent returns up to limit events, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, ts, coin, event, detail FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.Coin, &e.Event, &e.Detail); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.Time = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}
