package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

const (
	tableSchema = `
-- todo-tui key-value schema
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

	indexSchema = `
CREATE INDEX IF NOT EXISTS idx_kv_updated_at ON kv (updated_at DESC);`
)

// Initialize creates a new database with the complete schema
func Initialize(dbPath, driver string) error {
	if driver == "" {
		driver = DriverCGo
	}

	// Check if database already exists
	if _, err := os.Stat(dbPath); err == nil {
		return fmt.Errorf("database already exists at %s", dbPath)
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open(driver, dbPath)
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(tableSchema + indexSchema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}
