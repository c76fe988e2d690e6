// Package sqlite provides SQLite-based persistent storage for LogicalX.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
// It implements domain.Store over a single key-value table of JSON documents.
type DB struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode and a 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db, now: time.Now}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Progress documents: the user record and one task list per day.
		`CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Key-Value Store ────────────────────────────────────────────────────────

// Load retrieves the document stored under key.
// Returns ok=false if the key is absent.
func (d *DB) Load(key string) ([]byte, bool, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Save stores or replaces the document under key.
func (d *DB) Save(key string, value []byte) error {
	_, err := d.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, string(value), d.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// DeleteBefore removes keys with the given prefix whose suffix sorts
// strictly before bound. Date-suffixed keys sort chronologically.
func (d *DB) DeleteBefore(prefix, bound string) (int64, error) {
	result, err := d.db.Exec(
		`DELETE FROM kv WHERE substr(key, 1, ?) = ? AND key < ?`,
		len(prefix), prefix, prefix+bound,
	)
	if err != nil {
		return 0, fmt.Errorf("delete %s* before %s: %w", prefix, bound, err)
	}
	return result.RowsAffected()
}
