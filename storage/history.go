package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Scan represents one capture-and-recognize pass
type Scan struct {
	ID           int64
	Timestamp    time.Time
	Trigger      string
	WordCount    int
	DurationMs   int64
	Success      bool
	ErrorMessage string
}

// Lookup represents one hit-scan lookup
type Lookup struct {
	ID        int64
	Timestamp time.Time
	Query     string
	Headword  string
	Hit       bool
}

// RecordScan saves a scan to the database
func (db *DB) RecordScan(s *Scan) error {
	result, err := db.conn.Exec(
		`INSERT INTO scans (trigger_kind, word_count, duration_ms, success, error_message)
		 VALUES (?, ?, ?, ?, ?)`,
		s.Trigger, s.WordCount, s.DurationMs, s.Success, s.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to save scan: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	s.ID = id
	return nil
}

// RecordLookup saves a lookup to the database
func (db *DB) RecordLookup(l *Lookup) error {
	result, err := db.conn.Exec(
		"INSERT INTO lookups (query, headword, hit) VALUES (?, ?, ?)",
		l.Query, l.Headword, l.Hit,
	)
	if err != nil {
		return fmt.Errorf("failed to save lookup: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	l.ID = id
	return nil
}

// GetScans retrieves scans with pagination, newest first
func (db *DB) GetScans(limit, offset int) ([]Scan, error) {
	query := `
		SELECT id, timestamp, trigger_kind, word_count, duration_ms, success, error_message
		FROM scans
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.conn.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	var scans []Scan
	for rows.Next() {
		var s Scan
		var errorMessage sql.NullString

		err := rows.Scan(&s.ID, &s.Timestamp, &s.Trigger, &s.WordCount, &s.DurationMs, &s.Success, &errorMessage)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scan row: %w", err)
		}

		if errorMessage.Valid {
			s.ErrorMessage = errorMessage.String
		}

		scans = append(scans, s)
	}

	return scans, rows.Err()
}

// GetLookups retrieves lookups with pagination, newest first
func (db *DB) GetLookups(limit, offset int) ([]Lookup, error) {
	query := `
		SELECT id, timestamp, query, headword, hit
		FROM lookups
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.conn.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query lookups: %w", err)
	}
	defer rows.Close()

	var lookups []Lookup
	for rows.Next() {
		var l Lookup
		if err := rows.Scan(&l.ID, &l.Timestamp, &l.Query, &l.Headword, &l.Hit); err != nil {
			return nil, fmt.Errorf("failed to scan lookup row: %w", err)
		}
		lookups = append(lookups, l)
	}

	return lookups, rows.Err()
}

// GetScanCount returns the total number of scans
func (db *DB) GetScanCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM scans").Scan(&count)
	return count, err
}

// GetLookupCount returns the total number of lookups
func (db *DB) GetLookupCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM lookups").Scan(&count)
	return count, err
}
