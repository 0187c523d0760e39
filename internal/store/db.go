// Package store keeps the operation journal, favorites, tags and settings
// in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/justyntemme/razorcore/internal/debug"
	"github.com/justyntemme/razorcore/internal/fileops"
)

// Operation is a journaled batch.
type Operation struct {
	ID        string
	Kind      string
	Context   string
	Time      time.Time
	Reverts   string // Batch id this operation undid, empty otherwise
	UndoID    uint64
	Succeeded int
	Failed    int
	Items     []OperationItem
}

// OperationItem is one journaled per-item outcome.
type OperationItem struct {
	Source string
	Target string
	Reason string // Empty on success
	Error  string
}

type DB struct {
	conn *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS favorites (
	path TEXT PRIMARY KEY,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS tags (
	name TEXT PRIMARY KEY,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS operations (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	context TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	reverts TEXT NOT NULL DEFAULT '',
	undo_id INTEGER NOT NULL DEFAULT 0,
	succeeded INTEGER NOT NULL,
	failed INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS operation_items (
	operation_id TEXT NOT NULL REFERENCES operations(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	source TEXT NOT NULL,
	target TEXT NOT NULL DEFAULT '',
	reason TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (operation_id, seq)
);
CREATE INDEX IF NOT EXISTS operations_created ON operations(created_at);
`

// Open creates or opens the database at dbPath and applies the schema.
func Open(dbPath string) (*DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// One connection keeps :memory: databases shared and writes serialized
	db.SetMaxOpenConns(1)

	pragmas := []string{
		// WAL mode allows simultaneous readers and writers
		"PRAGMA journal_mode=WAL;",
		// Synchronous NORMAL is safe against app crashes, faster than FULL
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema: %w", err)
	}

	debug.Log(debug.STORE, "opened %s", dbPath)
	return &DB{conn: db}, nil
}

// Record journals a batch and its per-item outcomes.
func (d *DB) Record(ctx context.Context, r fileops.Result) (err error) {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	reverts := ""
	if r.Batch.IsUndo() {
		reverts = r.Batch.Reverts.String()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO operations (id, kind, context, created_at, reverts, undo_id, succeeded, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Batch.ID.String(), r.Batch.Kind.String(), r.Batch.Context, r.Batch.Time.UnixNano(),
		reverts, int64(r.UndoID), r.Succeeded(), r.Failed())
	if err != nil {
		return fmt.Errorf("insert operation: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO operation_items (operation_id, seq, source, target, reason, error) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, o := range r.Outcomes {
		reason, msg := "", ""
		if o.Failure != nil {
			reason = o.Failure.Reason.String()
			if o.Failure.Err != nil {
				msg = o.Failure.Err.Error()
			}
		}
		if _, err = stmt.ExecContext(ctx, r.Batch.ID.String(), i, o.Source, o.Target, reason, msg); err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	debug.Log(debug.STORE, "journaled %s %s (%d items)", r.Batch.Kind, r.Batch.ID, len(r.Outcomes))
	return nil
}

// Recent returns the n most recent operations, newest first.
func (d *DB) Recent(ctx context.Context, n int) ([]Operation, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT id, kind, context, created_at, reverts, undo_id, succeeded, failed
		 FROM operations ORDER BY created_at DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []Operation
	for rows.Next() {
		var (
			op     Operation
			nanos  int64
			undoID int64
		)
		if err := rows.Scan(&op.ID, &op.Kind, &op.Context, &nanos, &op.Reverts, &undoID, &op.Succeeded, &op.Failed); err != nil {
			return nil, err
		}
		op.Time = time.Unix(0, nanos)
		op.UndoID = uint64(undoID)
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range ops {
		items, err := d.items(ctx, ops[i].ID)
		if err != nil {
			return nil, err
		}
		ops[i].Items = items
	}
	return ops, nil
}

func (d *DB) items(ctx context.Context, opID string) ([]OperationItem, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT source, target, reason, error FROM operation_items WHERE operation_id = ? ORDER BY seq`, opID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OperationItem
	for rows.Next() {
		var it OperationItem
		if err := rows.Scan(&it.Source, &it.Target, &it.Reason, &it.Error); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Favorites returns favorite paths in the order they were added.
func (d *DB) Favorites(ctx context.Context) ([]string, error) {
	rows, err := d.conn.QueryContext(ctx, "SELECT path FROM favorites ORDER BY created_at ASC, rowid ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var favs []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		favs = append(favs, path)
	}
	return favs, rows.Err()
}

// AddFavorite adds a path; adding it twice is not an error.
func (d *DB) AddFavorite(ctx context.Context, path string) error {
	_, err := d.conn.ExecContext(ctx, "INSERT OR IGNORE INTO favorites (path) VALUES (?)", path)
	return err
}

// RemoveFavorite removes a path.
func (d *DB) RemoveFavorite(ctx context.Context, path string) error {
	_, err := d.conn.ExecContext(ctx, "DELETE FROM favorites WHERE path = ?", path)
	return err
}

// Tags returns tag names in the order they were added.
func (d *DB) Tags(ctx context.Context) ([]string, error) {
	rows, err := d.conn.QueryContext(ctx, "SELECT name FROM tags ORDER BY created_at ASC, rowid ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

func (d *DB) AddTag(ctx context.Context, name string) error {
	_, err := d.conn.ExecContext(ctx, "INSERT OR IGNORE INTO tags (name) VALUES (?)", name)
	return err
}

func (d *DB) RemoveTag(ctx context.Context, name string) error {
	_, err := d.conn.ExecContext(ctx, "DELETE FROM tags WHERE name = ?", name)
	return err
}

// Setting returns a stored setting and whether it exists.
func (d *DB) Setting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := d.conn.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SaveSetting upserts a setting.
func (d *DB) SaveSetting(ctx context.Context, key, value string) error {
	_, err := d.conn.ExecContext(ctx, "INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value)
	return err
}

func (d *DB) Close() error {
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}
