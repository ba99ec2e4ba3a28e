package store

import (
	"context"
	"database/sql"
	"path/filepath"

	_ "modernc.org/sqlite"

	"pythia-cli/internal/model"
)

// Cache is the local snapshot of the last successful list fetch, so the TUI
// can render something immediately on startup while the fresh fetch is in
// flight. The server copy is always authoritative; a refresh replaces the
// cached rows wholesale.
type Cache struct {
	path string
}

func OpenCache(dir string) *Cache {
	return &Cache{path: filepath.Join(dir, "cache.sqlite")}
}

func (c *Cache) open(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", c.path)
	if err != nil {
		return nil, err
	}
	if err := migrateCache(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrateCache(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS events (
  user_id    TEXT NOT NULL,
  event_id   INTEGER NOT NULL,
  label      TEXT NOT NULL,
  event_data BLOB,
  pos        INTEGER NOT NULL,
  PRIMARY KEY (user_id, event_id)
)`)
	return err
}

// Save replaces the cached list for one user.
func (c *Cache) Save(ctx context.Context, userID string, events []model.Event) error {
	db, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE user_id = ?`, userID); err != nil {
		return err
	}
	for i, ev := range events {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO events (user_id, event_id, label, event_data, pos) VALUES (?, ?, ?, ?, ?)`,
			userID, ev.ID, ev.Label, []byte(ev.Data), i,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Load returns the cached list for one user in its original order.
func (c *Cache) Load(ctx context.Context, userID string) ([]model.Event, error) {
	db, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT event_id, label, event_data FROM events WHERE user_id = ? ORDER BY pos`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var ev model.Event
		var data []byte
		if err := rows.Scan(&ev.ID, &ev.Label, &data); err != nil {
			return nil, err
		}
		ev.Data = data
		events = append(events, ev)
	}
	return events, rows.Err()
}
