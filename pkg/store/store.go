package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/permscope/permscope/pkg/perms"
)

// DB is a local snapshot store: point-in-time canonical documents saved by
// the user, so a live profile can later be compared against a saved one.
// Comparison results themselves are never persisted.
type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS snapshots (
  id           INTEGER PRIMARY KEY,
  kind         TEXT NOT NULL CHECK (kind IN ('profile','permissionSet')),
  entity_id    TEXT NOT NULL,
  display_name TEXT NOT NULL,
  taken_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  document     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_entity ON snapshots(kind, entity_id, taken_at);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// SaveSnapshot stores one canonical document.
func (d *DB) SaveSnapshot(ctx context.Context, kind string, p *perms.Profile) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx,
		`INSERT INTO snapshots(kind, entity_id, display_name, document) VALUES(?,?,?,?)`,
		kind, p.ID, p.DisplayName, string(doc))
	return err
}

// LatestSnapshot loads the most recent snapshot for an entity.
func (d *DB) LatestSnapshot(ctx context.Context, kind, entityID string) (*perms.Profile, time.Time, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT document, taken_at FROM snapshots WHERE kind = ? AND entity_id = ? ORDER BY taken_at DESC, id DESC LIMIT 1`,
		kind, entityID)

	var doc, takenAtStr string
	if err := row.Scan(&doc, &takenAtStr); err != nil {
		if err == sql.ErrNoRows {
			return nil, time.Time{}, fmt.Errorf("no snapshot for %s %s", kind, entityID)
		}
		return nil, time.Time{}, err
	}

	var p perms.Profile
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, time.Time{}, err
	}
	return &p, parseSQLiteTime(takenAtStr), nil
}

// SnapshotInfo is one row of the snapshot listing.
type SnapshotInfo struct {
	Kind        string
	EntityID    string
	DisplayName string
	TakenAt     time.Time
}

// ListSnapshots returns all stored snapshots, newest first.
func (d *DB) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT kind, entity_id, display_name, taken_at FROM snapshots ORDER BY taken_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var s SnapshotInfo
		var takenAtStr string
		if err := rows.Scan(&s.Kind, &s.EntityID, &s.DisplayName, &takenAtStr); err != nil {
			return nil, err
		}
		s.TakenAt = parseSQLiteTime(takenAtStr)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// parseSQLiteTime handles the CURRENT_TIMESTAMP format, then RFC3339.
func parseSQLiteTime(s string) time.Time {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
