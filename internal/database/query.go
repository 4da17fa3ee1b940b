package database

import (
	"database/sql"
	"time"
)

const recordColumns = `id, timestamp, action, path, file_name, target, size, error_message`

// GetRecentDeletions returns the N most recent sweep outcomes
func (d *SweepDB) GetRecentDeletions(limit int) ([]DeletionRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM deletions
	ORDER BY timestamp DESC
	LIMIT ?
	`

	return d.queryDeletions(query, limit)
}

// GetDeletionsByAction returns outcomes filtered by action type
func (d *SweepDB) GetDeletionsByAction(action string) ([]DeletionRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM deletions
	WHERE action = ?
	ORDER BY timestamp DESC
	`

	return d.queryDeletions(query, action)
}

// GetDeletionsByPath returns outcomes matching a path pattern (SQL LIKE)
func (d *SweepDB) GetDeletionsByPath(pathPattern string) ([]DeletionRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM deletions
	WHERE path LIKE ?
	ORDER BY timestamp DESC
	`

	return d.queryDeletions(query, pathPattern)
}

// GetDeletionsByTarget returns outcomes for a specific target filename
func (d *SweepDB) GetDeletionsByTarget(target string) ([]DeletionRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM deletions
	WHERE target = ?
	ORDER BY timestamp DESC
	`

	return d.queryDeletions(query, target)
}

// GetLargestDeletions returns the N largest deleted files by size
func (d *SweepDB) GetLargestDeletions(limit int) ([]DeletionRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM deletions
	WHERE action = 'DELETE'
	ORDER BY size DESC
	LIMIT ?
	`

	return d.queryDeletions(query, limit)
}

func (d *SweepDB) queryDeletions(query string, args ...interface{}) ([]DeletionRecord, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []DeletionRecord
	for rows.Next() {
		var r DeletionRecord
		var fileName, target, errorMessage sql.NullString
		if err := rows.Scan(
			&r.ID,
			&r.Timestamp,
			&r.Action,
			&r.Path,
			&fileName,
			&target,
			&r.Size,
			&errorMessage,
		); err != nil {
			return nil, err
		}
		r.FileName = fileName.String
		r.Target = target.String
		r.ErrorMessage = errorMessage.String
		records = append(records, r)
	}

	return records, rows.Err()
}

// SweepStats aggregates sweep outcomes over a period
type SweepStats struct {
	StartDate       time.Time        `json:"start_date"`
	EndDate         time.Time        `json:"end_date"`
	TotalDeletions  int64            `json:"total_deletions"`
	TotalSkipped    int64            `json:"total_skipped"`
	TotalErrors     int64            `json:"total_errors"`
	TotalSpaceFreed int64            `json:"total_space_freed"`
	ByAction        map[string]int64 `json:"by_action"`
	ByTarget        map[string]int64 `json:"by_target"`
}

// GetSweepStats returns aggregate statistics for the last N days
func (d *SweepDB) GetSweepStats(days int) (*SweepStats, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	stats := &SweepStats{
		StartDate: start,
		EndDate:   end,
		ByAction:  make(map[string]int64),
		ByTarget:  make(map[string]int64),
	}

	rows, err := d.db.Query(`
	SELECT action, COUNT(*), COALESCE(SUM(size), 0)
	FROM deletions
	WHERE timestamp BETWEEN ? AND ?
	GROUP BY action
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var action string
		var count, size int64
		if err := rows.Scan(&action, &count, &size); err != nil {
			return nil, err
		}
		stats.ByAction[action] = count
		switch action {
		case "DELETE":
			stats.TotalDeletions = count
			stats.TotalSpaceFreed = size
		case "SKIP":
			stats.TotalSkipped = count
		case "ERROR":
			stats.TotalErrors = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	targetRows, err := d.db.Query(`
	SELECT target, COUNT(*)
	FROM deletions
	WHERE timestamp BETWEEN ? AND ? AND action = 'DELETE' AND target != ''
	GROUP BY target
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer targetRows.Close()

	for targetRows.Next() {
		var target string
		var count int64
		if err := targetRows.Scan(&target, &count); err != nil {
			return nil, err
		}
		stats.ByTarget[target] = count
	}

	return stats, targetRows.Err()
}
