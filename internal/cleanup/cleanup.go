package cleanup

import (
	"fmt"
	"log"
	"os"
	"time"

	"keysweep/internal/database"
	"keysweep/internal/fsops"
	"keysweep/internal/metrics"
	"keysweep/internal/safety"
	"keysweep/internal/scan"

	"github.com/prometheus/client_golang/prometheus"
)

// CleanupLogger interface for structured logging in cleanup
type CleanupLogger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// cleanupStdLogger wraps standard log.Logger to implement CleanupLogger interface
type cleanupStdLogger struct {
	*log.Logger
}

func (l *cleanupStdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *cleanupStdLogger) Error(msg string, args ...interface{}) {
	l.logWithLevel("ERROR", msg, args...)
}

func (l *cleanupStdLogger) logWithLevel(level, msg string, args ...interface{}) {
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// Metrics interface for cleanup metrics
type Metrics interface {
	FilesDeletedTotal() prometheus.Counter
	BytesFreedTotal() prometheus.Counter
	ErrorsTotal() prometheus.Counter
}

// cleanupMetrics wraps global metrics to implement Metrics interface
type cleanupMetrics struct{}

func (m *cleanupMetrics) FilesDeletedTotal() prometheus.Counter {
	return metrics.FilesDeletedTotal
}

func (m *cleanupMetrics) BytesFreedTotal() prometheus.Counter {
	return metrics.BytesFreedTotal
}

func (m *cleanupMetrics) ErrorsTotal() prometheus.Counter {
	return metrics.ErrorsTotal
}

// Cleaner deletes matched key files with per-file error handling.
// One bad file must never stop the rest of the sweep.
type Cleaner struct {
	logger    CleanupLogger
	metrics   Metrics
	logFile   *os.File // Optional file for structured action logging
	dryRun    bool
	db        *database.SweepDB // Database for recording sweep history
	deleter   fsops.Deleter
	validator *safety.Validator
}

// NewCleaner creates a new Cleaner instance
func NewCleaner(logger *log.Logger, logFile *os.File, dryRun bool, db *database.SweepDB) *Cleaner {
	if logger == nil {
		logger = log.Default()
	}
	return &Cleaner{
		logger:  &cleanupStdLogger{Logger: logger},
		metrics: &cleanupMetrics{},
		logFile: logFile,
		dryRun:  dryRun,
		db:      db,
		deleter: fsops.OSDeleter{},
	}
}

// SetDeleter replaces the filesystem deleter (tests inject a fake)
func (c *Cleaner) SetDeleter(d fsops.Deleter) {
	c.deleter = d
}

// SetValidator installs a safety validator consulted before every delete
func (c *Cleaner) SetValidator(v *safety.Validator) {
	c.validator = v
}

// Clean deletes the given candidates and returns the absolute paths of
// successful deletions plus total bytes freed. Per-file failures are
// logged, recorded, and skipped; they never abort the pass. No retries.
// In dry-run mode the returned paths are those that would be deleted and
// zero delete calls occur.
func (c *Cleaner) Clean(candidates []scan.Candidate) ([]string, int64, error) {
	c.logger.Info("Starting cleanup", "total_candidates", len(candidates))

	deleted := make([]string, 0, len(candidates))
	var totalFreed int64
	errorCount := 0

	for _, cand := range candidates {
		if c.validator != nil {
			if err := c.validator.ValidateDeleteTarget(cand.Path); err != nil {
				c.logger.Error("Refusing to delete", "path", cand.Path, "error", err)
				c.logStructured("SKIP", cand.Path, cand.Size, err.Error())
				c.recordOutcome("SKIP", cand, err.Error())
				c.metrics.ErrorsTotal().Inc()
				errorCount++
				continue
			}
		}

		if c.dryRun {
			c.logger.Info("[DRY RUN] Would delete key file", "path", cand.Path, "size", cand.Size)
			c.logStructured("DRY_RUN", cand.Path, cand.Size, "")
			c.recordOutcome("DRY_RUN", cand, "")
			deleted = append(deleted, cand.Path)
			totalFreed += cand.Size
			continue
		}

		if err := c.deleter.Remove(cand.Path); err != nil {
			// A file deleted out from under the walk is not an error;
			// the outcome the sweep wanted already holds
			if os.IsNotExist(err) {
				c.logger.Info("File already gone (race)", "path", cand.Path)
				continue
			}

			c.logger.Error("Failed to delete", "path", cand.Path, "error", err)
			c.logStructured("ERROR", cand.Path, cand.Size, err.Error())
			c.recordOutcome("ERROR", cand, err.Error())
			c.metrics.ErrorsTotal().Inc()
			errorCount++
			continue
		}

		c.logStructured("DELETE", cand.Path, cand.Size, "")
		c.recordOutcome("DELETE", cand, "")

		deleted = append(deleted, cand.Path)
		totalFreed += cand.Size

		c.metrics.FilesDeletedTotal().Inc()
		c.metrics.BytesFreedTotal().Add(float64(cand.Size))
		metrics.RecordTargetDeletion(cand.Target)
	}

	c.logger.Info("Cleanup complete",
		"deleted", len(deleted),
		"errors", errorCount,
		"bytes_freed", totalFreed,
	)

	return deleted, totalFreed, nil
}

// recordOutcome writes one sweep outcome to the history database.
// History failures never fail the sweep.
func (c *Cleaner) recordOutcome(action string, cand scan.Candidate, errMsg string) {
	if c.db == nil {
		return
	}
	if err := c.db.RecordDeletion(action, cand, errMsg); err != nil {
		c.logger.Error("Failed to record to database", "error", err)
	}
}

// logStructured logs with structured format: timestamp, action, path, size
func (c *Cleaner) logStructured(action, path string, size int64, errMsg string) {
	logEntry := fmt.Sprintf("[%s] %s path=%s size=%d",
		time.Now().UTC().Format(time.RFC3339),
		action,
		path,
		size,
	)
	if errMsg != "" {
		logEntry += fmt.Sprintf(" error=%q", errMsg)
	}

	if c.logFile != nil {
		c.logFile.WriteString(logEntry + "\n")
		c.logFile.Sync()
	}

	c.logger.Info(logEntry)
}
