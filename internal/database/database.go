package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"keysweep/internal/scan"
)

// SweepDB manages the SQLite database for sweep history
type SweepDB struct {
	db *sql.DB
}

// DeletionRecord represents a single sweep outcome for one file
type DeletionRecord struct {
	ID           int64
	Timestamp    time.Time
	Action       string // DELETE, DRY_RUN, SKIP, or ERROR
	Path         string
	FileName     string
	Target       string // The target filename that matched
	Size         int64
	ErrorMessage string
	CreatedAt    time.Time
}

// NewSweepDB creates a new database connection and initializes schema
func NewSweepDB(dbPath string) (*SweepDB, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// file: prefix with _loc=auto enables automatic DATETIME parsing
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// Exercise the connection so the file is created and permission
	// problems surface now rather than on the first insert
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	// WAL allows the query tool to read while a sweep is writing
	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	sdb := &SweepDB{db: db}
	if err = sdb.initSchema(); err != nil {
		return nil, err
	}

	err = nil
	return sdb, nil
}

// initSchema creates tables and indexes if they don't exist
func (d *SweepDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS deletions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		path TEXT NOT NULL,
		file_name TEXT,
		target TEXT,
		size INTEGER NOT NULL,
		error_message TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_timestamp ON deletions(timestamp);
	CREATE INDEX IF NOT EXISTS idx_action ON deletions(action);
	CREATE INDEX IF NOT EXISTS idx_path ON deletions(path);
	CREATE INDEX IF NOT EXISTS idx_size ON deletions(size);

	-- Metadata table for schema versioning
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := d.db.Exec(schema)
	return err
}

// RecordDeletion inserts a sweep outcome into the database
func (d *SweepDB) RecordDeletion(action string, candidate scan.Candidate, errorMsg string) error {
	query := `
	INSERT INTO deletions (
		timestamp, action, path, file_name, target, size, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := d.db.Exec(
		query,
		time.Now().UTC(),
		action,
		candidate.Path,
		filepath.Base(candidate.Path),
		candidate.Target,
		candidate.Size,
		errorMsg,
	)

	return err
}

// Close closes the database connection
func (d *SweepDB) Close() error {
	return d.db.Close()
}

// Vacuum optimizes the database (run periodically)
func (d *SweepDB) Vacuum() error {
	_, err := d.db.Exec("VACUUM")
	return err
}
