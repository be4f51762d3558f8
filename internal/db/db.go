package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/pdxmph/todo-tui/internal/tasks"
)

// Supported database/sql driver names
const (
	DriverCGo  = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPure = "sqlite"  // modernc.org/sqlite
)

// DB wraps the database connection
type DB struct {
	conn   *sql.DB
	driver string
}

// Open creates a new database connection
func Open(dbPath, driver string) (*DB, error) {
	if driver == "" {
		driver = DriverCGo
	}

	// Check if DB exists
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found at %s\nRun 'todo-tui -init' to create it", dbPath)
	}

	conn, err := sql.Open(driver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn, driver: driver}

	// Run any pending migrations
	if err := db.RunMigrations(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Name returns the backend identifier
func (db *DB) Name() string {
	return "sqlite"
}

// Get returns the value stored under key
func (db *DB) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := db.conn.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading key %s: %w", key, err)
	}
	return value, true, nil
}

// Put writes every entry in one transaction, replacing existing values
func (db *DB) Put(ctx context.Context, entries map[string]string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, query, k, entries[k]); err != nil {
			return fmt.Errorf("writing key %s: %w", k, err)
		}
	}

	return tx.Commit()
}

// Entries returns every stored pair ordered by key
func (db *DB) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT key, value, updated_at FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var updated sql.NullString
		if err := rows.Scan(&e.Key, &e.Value, &updated); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if updated.Valid {
			e.UpdatedAt = parseTimestamp(updated.String)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// parseTimestamp handles both the driver's RFC 3339 rendering and SQLite's
// CURRENT_TIMESTAMP text; unparseable values give the zero time
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05Z"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// OpenBackend opens the database at opts.Path, creating it first if needed
func OpenBackend(opts tasks.BackendOptions) (tasks.Backend, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("sqlite backend needs a database path")
	}
	if _, err := os.Stat(opts.Path); os.IsNotExist(err) {
		if err := Initialize(opts.Path, opts.Driver); err != nil {
			return nil, err
		}
	}
	return Open(opts.Path, opts.Driver)
}

// Register the sqlite backend
func init() {
	tasks.Register("sqlite", OpenBackend)
}
