package storage

import "fmt"

// DailyStats represents activity for a single day
type DailyStats struct {
	Date         string
	TotalScans   int
	TotalWords   int
	TotalLookups int
	HitCount     int
}

// OverallStats represents aggregate activity
type OverallStats struct {
	TotalScans        int
	TotalWords        int
	SuccessCount      int
	FailureCount      int
	AvgScanDurationMs float64
	TotalLookups      int
	HitCount          int
	MissCount         int
	DictionaryEntries int
}

// GetDailyStats retrieves activity grouped by date for the last N days
func (db *DB) GetDailyStats(days int) ([]DailyStats, error) {
	scanQuery := `
		SELECT
			DATE(timestamp) as date,
			COUNT(*) as total_scans,
			COALESCE(SUM(word_count), 0) as total_words
		FROM scans
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
		GROUP BY DATE(timestamp)
	`

	rows, err := db.conn.Query(scanQuery, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily scan stats: %w", err)
	}
	defer rows.Close()

	byDate := make(map[string]*DailyStats)
	var order []string
	for rows.Next() {
		var s DailyStats
		if err := rows.Scan(&s.Date, &s.TotalScans, &s.TotalWords); err != nil {
			return nil, fmt.Errorf("failed to scan daily scan stats: %w", err)
		}
		byDate[s.Date] = &s
		order = append(order, s.Date)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lookupQuery := `
		SELECT
			DATE(timestamp) as date,
			COUNT(*) as total_lookups,
			SUM(CASE WHEN hit = 1 THEN 1 ELSE 0 END) as hit_count
		FROM lookups
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
		GROUP BY DATE(timestamp)
	`

	lrows, err := db.conn.Query(lookupQuery, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily lookup stats: %w", err)
	}
	defer lrows.Close()

	for lrows.Next() {
		var date string
		var total, hits int
		if err := lrows.Scan(&date, &total, &hits); err != nil {
			return nil, fmt.Errorf("failed to scan daily lookup stats: %w", err)
		}
		s, ok := byDate[date]
		if !ok {
			s = &DailyStats{Date: date}
			byDate[date] = s
			order = append(order, date)
		}
		s.TotalLookups = total
		s.HitCount = hits
	}
	if err := lrows.Err(); err != nil {
		return nil, err
	}

	var stats []DailyStats
	for _, date := range order {
		stats = append(stats, *byDate[date])
	}
	return stats, nil
}

// GetOverallStats retrieves aggregate activity for the last N days
func (db *DB) GetOverallStats(days int) (*OverallStats, error) {
	scanQuery := `
		SELECT
			COUNT(*) as total_scans,
			COALESCE(SUM(word_count), 0) as total_words,
			COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0) as success_count,
			COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0) as failure_count,
			COALESCE(AVG(duration_ms), 0) as avg_duration_ms
		FROM scans
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
	`

	var stats OverallStats
	err := db.conn.QueryRow(scanQuery, days).Scan(
		&stats.TotalScans,
		&stats.TotalWords,
		&stats.SuccessCount,
		&stats.FailureCount,
		&stats.AvgScanDurationMs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query overall scan stats: %w", err)
	}

	lookupQuery := `
		SELECT
			COUNT(*) as total_lookups,
			COALESCE(SUM(CASE WHEN hit = 1 THEN 1 ELSE 0 END), 0) as hit_count,
			COALESCE(SUM(CASE WHEN hit = 0 THEN 1 ELSE 0 END), 0) as miss_count
		FROM lookups
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
	`

	err = db.conn.QueryRow(lookupQuery, days).Scan(
		&stats.TotalLookups,
		&stats.HitCount,
		&stats.MissCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query overall lookup stats: %w", err)
	}

	entries, err := db.EntryCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count dictionary entries: %w", err)
	}
	stats.DictionaryEntries = entries

	return &stats, nil
}
