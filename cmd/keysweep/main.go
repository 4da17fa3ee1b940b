package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"keysweep/internal/config"
	"keysweep/internal/database"
	"keysweep/internal/exitcodes"
	"keysweep/internal/logging"
	"keysweep/internal/metrics"
	"keysweep/internal/sweep"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "/etc/keysweep/config.yaml", "Path to configuration file")
	rootFlag := flag.String("root", "", "Directory to sweep (default: parent of the executable's directory)")
	dryRun := flag.Bool("dry-run", false, "Report matches without deleting files")
	once := flag.Bool("once", false, "Run one sweep and exit even if an interval is configured")
	flag.Parse()

	// Load configuration (missing file falls back to defaults)
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to load config: %v\n", err)
		os.Exit(exitcodes.InvalidConfig)
	}

	// Initialize logger
	logger := logging.NewWithConfig(cfg)

	logger.Println("keysweep starting...")
	if *dryRun {
		logger.Println("DRY RUN MODE: No files will be deleted")
	}

	// Resolve sweep root: flag > config > executable-relative default
	root := *rootFlag
	if root == "" {
		root = cfg.Root
	}
	if root == "" {
		root, err = defaultRoot()
		if err != nil {
			logger.Printf("ERROR: Failed to determine default root: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
	}
	root, err = filepath.Abs(root)
	if err != nil {
		logger.Printf("ERROR: Failed to resolve root %s: %v", root, err)
		os.Exit(exitcodes.RuntimeError)
	}
	logger.Printf("Sweep root: %s", root)
	logger.Printf("Targets: %v", cfg.Targets)

	// Initialize metrics (Prometheus)
	metrics.Init()
	if cfg.Prometheus.Port > 0 {
		addr := cfg.PrometheusAddress()
		logger.Printf("Starting Prometheus metrics on %s", addr)
		metrics.StartServer(addr, logger)
	}

	// Initialize database for sweep history
	var db *database.SweepDB
	if cfg.DatabasePath != "" {
		logger.Printf("Opening sweep database: %s", cfg.DatabasePath)
		db, err = database.NewSweepDB(cfg.DatabasePath)
		if err != nil {
			logger.Printf("ERROR: Failed to open database: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Printf("ERROR: Failed to close database: %v", err)
			}
		}()
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if *once || cfg.IntervalMinutes == 0 {
		// Single sweep and exit. Per-file failures are logged, not fatal:
		// the process still exits 0 after a completed traversal.
		res, err := sweep.RunOnce(ctx, cfg, root, *dryRun, logger, db)
		if err != nil {
			logger.Printf("ERROR: Sweep failed: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
		printReport(res, *dryRun)
	} else {
		logger.Printf("Sweeping every %s", cfg.Interval())
		if err := sweep.Run(ctx, cfg, root, *dryRun, logger, db); err != nil && err != context.Canceled {
			logger.Printf("ERROR: Sweep loop failed: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
	}

	logger.Println("keysweep stopped")
}

// defaultRoot computes the workspace root as the parent of the directory
// containing the executable. The tool is installed into a workspace
// subdirectory (e.g. <workspace>/bin), so its parent is the tree to sweep.
func defaultRoot() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(filepath.Dir(exe)), nil
}

func printReport(res *sweep.Result, dryRun bool) {
	if len(res.Deleted) == 0 {
		fmt.Println("No key files found to delete.")
		return
	}
	if dryRun {
		fmt.Println("Would delete key files:")
	} else {
		fmt.Println("Deleted key files:")
	}
	for _, p := range res.Deleted {
		fmt.Printf("  %s\n", p)
	}
}
