package storage

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Entry is one dictionary entry
type Entry struct {
	ID       int64
	Headword string
	Reading  string
	Gloss    string
}

// InsertEntry adds a single dictionary entry
func (db *DB) InsertEntry(e *Entry) error {
	result, err := db.conn.Exec(
		"INSERT INTO entries (headword, reading, gloss) VALUES (?, ?, ?)",
		e.Headword, e.Reading, e.Gloss,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	e.ID = id
	return nil
}

// LookupEntries returns entries whose headword or reading matches the term
func (db *DB) LookupEntries(term string, limit int) ([]Entry, error) {
	query := `
		SELECT id, headword, reading, gloss
		FROM entries
		WHERE headword = ? OR reading = ?
		ORDER BY id
		LIMIT ?
	`

	rows, err := db.conn.Query(query, term, term, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Headword, &e.Reading, &e.Gloss); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// EntryCount returns the number of dictionary entries
func (db *DB) EntryCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM entries").Scan(&count)
	return count, err
}

// ImportTSV loads dictionary entries from a tab-separated file with
// headword, reading and gloss columns. The reading column may be empty.
// Returns the number of imported entries.
func (db *DB) ImportTSV(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open dictionary file: %w", err)
	}
	defer f.Close()

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin import transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO entries (headword, reading, gloss) VALUES (?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare import statement: %w", err)
	}
	defer stmt.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.SplitN(line, "\t", 3)
		if len(fields) < 3 {
			continue
		}

		if _, err := stmt.Exec(fields[0], fields[1], fields[2]); err != nil {
			return 0, fmt.Errorf("failed to import entry %q: %w", fields[0], err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read dictionary file: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}

	return count, nil
}
