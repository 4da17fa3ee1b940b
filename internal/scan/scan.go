package scan

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Logger interface for structured logging
type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// stdLogger wraps standard log.Logger to implement Logger interface
type stdLogger struct {
	*log.Logger
}

func (l *stdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *stdLogger) Warn(msg string, args ...interface{}) {
	l.logWithLevel("WARN", msg, args...)
}

func (l *stdLogger) Debug(msg string, args ...interface{}) {
	l.logWithLevel("DEBUG", msg, args...)
}

func (l *stdLogger) logWithLevel(level, msg string, args ...interface{}) {
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// Scanner walks a directory tree collecting files whose base name
// exactly matches one of the configured target filenames.
type Scanner struct {
	logger Logger
}

// NewScanner creates a new Scanner with the given logger
func NewScanner(logger *log.Logger) *Scanner {
	if logger == nil {
		logger = log.Default()
	}
	return &Scanner{
		logger: &stdLogger{Logger: logger},
	}
}

// Candidate is a file selected for deletion
type Candidate struct {
	Path    string // Absolute path
	Size    int64
	ModTime time.Time
	Target  string // The target filename that matched
}

// Scan walks root and returns every regular file whose base name is in
// targets. Matching is exact and case-sensitive; no globbing.
// Traversal order follows the underlying directory listing and is not
// meaningful. A missing or unreadable root is fatal; unreadable entries
// below it are logged and skipped.
func Scan(root string, targets []string) ([]Candidate, error) {
	return NewScanner(nil).Scan(root, targets)
}

func (s *Scanner) Scan(root string, targets []string) ([]Candidate, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("no target filenames to scan for")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("invalid root %s: %w", absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("invalid root %s: not a directory", absRoot)
	}

	targetSet := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		targetSet[t] = struct{}{}
	}

	s.logger.Info("Starting scan", "root", absRoot, "targets", len(targetSet))

	var candidates []Candidate
	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// The root itself already passed the Stat above, so any error
			// here is for an entry below it: log and continue.
			s.logger.Warn("Skipping unreadable entry", "path", path, "error", err)
			return nil
		}

		if info.IsDir() {
			return nil
		}
		name := filepath.Base(path)
		if _, ok := targetSet[name]; !ok {
			return nil
		}

		candidates = append(candidates, Candidate{
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Target:  name,
		})
		s.logger.Debug("File selected for deletion", "path", path, "size", info.Size())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan root %s: %w", absRoot, err)
	}

	s.logger.Info("Scan complete", "root", absRoot, "candidates_found", len(candidates))
	return candidates, nil
}
