package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sweep subsystem metrics
var (
	// SweepDuration tracks how long sweep cycles take
	SweepDuration prometheus.Histogram

	// BytesFreedTotal tracks total bytes freed across all sweeps
	BytesFreedTotal prometheus.Counter

	// FilesDeletedTotal tracks total key files deleted
	FilesDeletedTotal prometheus.Counter

	// ErrorsTotal tracks per-file deletion failures and skips
	ErrorsTotal prometheus.Counter

	// SweepLastRunTimestamp records Unix timestamp of the last sweep
	SweepLastRunTimestamp prometheus.Gauge

	// TargetsMatchedTotal tracks deletions per target filename
	TargetsMatchedTotal *prometheus.CounterVec
)

// initSweepMetrics initializes all sweep subsystem metrics
func initSweepMetrics() {
	SweepDuration = NewDurationHistogram(
		"keysweep_sweep_duration_seconds",
		"Duration of sweep cycles in seconds.",
	)

	BytesFreedTotal = NewCounter(
		"keysweep_bytes_freed_total",
		"Total bytes freed by keysweep.",
	)

	FilesDeletedTotal = NewCounter(
		"keysweep_files_deleted_total",
		"Total number of key files deleted by keysweep.",
	)

	ErrorsTotal = NewCounter(
		"keysweep_sweep_errors_total",
		"Total number of per-file failures and safety skips.",
	)

	SweepLastRunTimestamp = NewGauge(
		"keysweep_sweep_last_run_timestamp",
		"Timestamp of the last sweep run (Unix epoch seconds).",
	)

	TargetsMatchedTotal = NewCounterVec(
		"keysweep_targets_matched_total",
		"Total deletions per target filename.",
		[]string{"target"},
	)
}

// registerSweepMetrics registers all sweep metrics with Prometheus
func registerSweepMetrics() {
	prometheus.MustRegister(SweepDuration)
	prometheus.MustRegister(BytesFreedTotal)
	prometheus.MustRegister(FilesDeletedTotal)
	prometheus.MustRegister(ErrorsTotal)
	prometheus.MustRegister(SweepLastRunTimestamp)
	prometheus.MustRegister(TargetsMatchedTotal)
}

// RecordSweepRun updates the last run timestamp to current time
func RecordSweepRun() {
	SweepLastRunTimestamp.Set(float64(time.Now().Unix()))
}

// RecordTargetDeletion records a deletion for a specific target filename
func RecordTargetDeletion(target string) {
	TargetsMatchedTotal.WithLabelValues(target).Inc()
}
