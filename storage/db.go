package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type DB struct {
	conn *sql.DB
}

// Open opens the database and initializes the schema
func Open(configDir string) (*DB, error) {
	dbPath := filepath.Join(configDir, "lexipop.db")

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the database schema
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		headword TEXT NOT NULL,
		reading TEXT NOT NULL DEFAULT '',
		gloss TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_headword ON entries(headword);
	CREATE INDEX IF NOT EXISTS idx_entries_reading ON entries(reading);

	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,

		-- What fired the capture: "hotkey", "auto" or "mouse"
		trigger_kind TEXT NOT NULL,

		word_count INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,

		success BOOLEAN NOT NULL,
		error_message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_scans_timestamp ON scans(timestamp);
	CREATE INDEX IF NOT EXISTS idx_scans_success ON scans(success);

	CREATE TABLE IF NOT EXISTS lookups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,

		query TEXT NOT NULL,
		headword TEXT NOT NULL DEFAULT '',
		hit BOOLEAN NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_lookups_timestamp ON lookups(timestamp);
	CREATE INDEX IF NOT EXISTS idx_lookups_hit ON lookups(hit);
	`

	_, err := db.conn.Exec(schema)
	return err
}
