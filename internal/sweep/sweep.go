package sweep

import (
	"context"
	"errors"
	"log"
	"time"

	"keysweep/internal/cleanup"
	"keysweep/internal/config"
	"keysweep/internal/database"
	"keysweep/internal/limiter"
	"keysweep/internal/metrics"
	"keysweep/internal/safety"
	"keysweep/internal/scan"
)

// Result summarizes one sweep cycle
type Result struct {
	Deleted    []string // Absolute paths successfully deleted, in visit order
	BytesFreed int64
	Candidates int
}

// RunOnce performs a single sweep cycle: scan the root, delete every
// matched key file, update metrics, record history. Returns the deleted
// path sequence. An invalid root fails the cycle; per-file failures do not.
func RunOnce(ctx context.Context, cfg *config.Config, root string, dryRun bool, logger *log.Logger, db *database.SweepDB) (*Result, error) {
	if logger == nil {
		logger = log.Default()
	}
	if cfg == nil {
		return nil, errors.New("nil config")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var cpuLimiter *limiter.CPULimiter
	if cfg.ResourceLimits.MaxCPUPercent > 0 {
		cpuLimiter = limiter.NewCPULimiter(cfg.ResourceLimits.MaxCPUPercent)
	}

	start := time.Now()
	metrics.RecordSweepRun()

	if cpuLimiter != nil {
		cpuLimiter.Throttle()
	}

	candidates, err := scan.NewScanner(logger).Scan(root, cfg.Targets)
	if err != nil {
		metrics.ErrorsTotal.Inc()
		return nil, err
	}

	if cpuLimiter != nil {
		cpuLimiter.Throttle()
	}

	cleaner := cleanup.NewCleaner(logger, nil, dryRun, db)
	cleaner.SetValidator(safety.NewValidator([]string{root}, cfg.ProtectedPaths))

	deleted, freed, err := cleaner.Clean(candidates)
	if err != nil {
		metrics.ErrorsTotal.Inc()
		return nil, err
	}

	elapsed := time.Since(start).Seconds()
	metrics.SweepDuration.Observe(elapsed)

	logger.Printf("cycle complete: candidates=%d deleted=%d freed=%d bytes duration=%.3fs",
		len(candidates), len(deleted), freed, elapsed)

	return &Result{
		Deleted:    deleted,
		BytesFreed: freed,
		Candidates: len(candidates),
	}, nil
}

// Run sweeps immediately and then on the configured interval until the
// context is canceled. Per-cycle errors are logged, not fatal.
func Run(ctx context.Context, cfg *config.Config, root string, dryRun bool, logger *log.Logger, db *database.SweepDB) error {
	if logger == nil {
		logger = log.Default()
	}
	if cfg == nil {
		return errors.New("nil config")
	}

	if _, err := RunOnce(ctx, cfg, root, dryRun, logger, db); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Println("sweep loop shutting down")
			return ctx.Err()
		case <-ticker.C:
			if _, err := RunOnce(ctx, cfg, root, dryRun, logger, db); err != nil {
				logger.Printf("error running cycle: %v", err)
			}
		}
	}
}
