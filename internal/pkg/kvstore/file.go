package kvstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Register the pure-Go SQLite driver.
	// modernc.org/sqlite avoids CGO, so local builds and Alpine images work
	// without a C toolchain.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on Open. A single table holds every entry;
// updated_at is informational (RFC3339 TEXT, the SQLite idiom).
const schema = `
CREATE TABLE IF NOT EXISTS kv_entries (
    key         TEXT PRIMARY KEY,
    value       TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);
`

// File is a Store backed by a local SQLite database file. It plays the role
// browser localStorage plays for the web client: a synchronous, durable,
// per-user store that survives restarts.
type File struct {
	db *sql.DB
}

var _ Store = (*File)(nil)

// OpenFile opens (or creates) the SQLite database at path and applies the
// schema. WAL mode keeps the occasional concurrent reader from blocking the
// writer; busy_timeout waits for locks instead of failing immediately.
func OpenFile(path string) (*File, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	// Use "sqlite", not "sqlite3", for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("kvstore: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("kvstore: apply schema: %w", err)
	}

	return &File{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (f *File) Close() error {
	return f.db.Close()
}

func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	const q = `SELECT value FROM kv_entries WHERE key = ?`

	var value string
	err := f.db.QueryRowContext(ctx, q, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kvstore: get %q: %w", key, err)
	}
	return value, true, nil
}

func (f *File) Set(ctx context.Context, key, value string) error {
	const q = `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	_, err := f.db.ExecContext(ctx, q, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("kvstore: set %q: %w", key, err)
	}
	return nil
}

func (f *File) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM kv_entries WHERE key = ?`

	if _, err := f.db.ExecContext(ctx, q, key); err != nil {
		return fmt.Errorf("kvstore: delete %q: %w", key, err)
	}
	return nil
}
