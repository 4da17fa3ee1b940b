package sweep

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"keysweep/internal/config"
	"keysweep/internal/metrics"
)

func init() {
	// Initialize metrics once for all tests
	metrics.Init()
}

func testConfig() *config.Config {
	return &config.Config{
		Targets: []string{"proving_f10.key", "verifying_f10.key"},
	}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("key material"), 0644); err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}
}

// TestRunOnceDeletesMatchedKeys covers the canonical scenario:
// both nested key files are deleted, readme.txt is untouched
func TestRunOnceDeletesMatchedKeys(t *testing.T) {
	root := t.TempDir()
	proving := filepath.Join(root, "build", "proving_f10.key")
	verifying := filepath.Join(root, "build", "sub", "verifying_f10.key")
	readme := filepath.Join(root, "build", "readme.txt")
	writeFile(t, proving)
	writeFile(t, verifying)
	writeFile(t, readme)

	res, err := RunOnce(context.Background(), testConfig(), root, false, nil, nil)
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	if len(res.Deleted) != 2 {
		t.Fatalf("Expected 2 deletions, got %d: %v", len(res.Deleted), res.Deleted)
	}
	deleted := map[string]bool{}
	for _, p := range res.Deleted {
		deleted[p] = true
	}
	if !deleted[proving] || !deleted[verifying] {
		t.Errorf("Expected both key paths in result, got %v", res.Deleted)
	}

	if _, err := os.Stat(proving); !os.IsNotExist(err) {
		t.Error("proving_f10.key should have been deleted")
	}
	if _, err := os.Stat(verifying); !os.IsNotExist(err) {
		t.Error("verifying_f10.key should have been deleted")
	}
	if _, err := os.Stat(readme); err != nil {
		t.Errorf("readme.txt must be untouched: %v", err)
	}
}

// TestRunOnceIdempotent verifies the second sweep of the same tree
// finds nothing to delete
func TestRunOnceIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "build", "proving_f10.key"))

	first, err := RunOnce(context.Background(), testConfig(), root, false, nil, nil)
	if err != nil {
		t.Fatalf("First sweep failed: %v", err)
	}
	if len(first.Deleted) != 1 {
		t.Fatalf("First sweep expected 1 deletion, got %d", len(first.Deleted))
	}

	second, err := RunOnce(context.Background(), testConfig(), root, false, nil, nil)
	if err != nil {
		t.Fatalf("Second sweep failed: %v", err)
	}
	if len(second.Deleted) != 0 {
		t.Errorf("Second sweep expected empty result, got %v", second.Deleted)
	}
	if second.Candidates != 0 {
		t.Errorf("Second sweep expected 0 candidates, got %d", second.Candidates)
	}
}

// TestRunOnceDryRun verifies dry-run reports matches without deleting
func TestRunOnceDryRun(t *testing.T) {
	root := t.TempDir()
	proving := filepath.Join(root, "proving_f10.key")
	writeFile(t, proving)

	res, err := RunOnce(context.Background(), testConfig(), root, true, nil, nil)
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	if len(res.Deleted) != 1 || res.Deleted[0] != proving {
		t.Errorf("Expected dry-run to report [%s], got %v", proving, res.Deleted)
	}
	if _, err := os.Stat(proving); err != nil {
		t.Errorf("DRY-RUN VIOLATION: file was deleted: %v", err)
	}
}

// TestRunOnceInvalidRoot verifies a missing root fails the cycle
func TestRunOnceInvalidRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	if _, err := RunOnce(context.Background(), testConfig(), missing, false, nil, nil); err == nil {
		t.Error("Expected error for missing root, got nil")
	}
}

// TestRunOnceCanceledContext verifies cancellation short-circuits the cycle
func TestRunOnceCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := RunOnce(ctx, testConfig(), t.TempDir(), false, nil, nil); err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

// TestRunOnceNilConfig verifies a nil config is rejected
func TestRunOnceNilConfig(t *testing.T) {
	if _, err := RunOnce(context.Background(), nil, t.TempDir(), false, nil, nil); err == nil {
		t.Error("Expected error for nil config, got nil")
	}
}

// TestRunOnceWithThrottle verifies the CPU limiter path completes
func TestRunOnceWithThrottle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "verifying_f10.key"))

	cfg := testConfig()
	cfg.ResourceLimits.MaxCPUPercent = 50

	res, err := RunOnce(context.Background(), cfg, root, false, nil, nil)
	if err != nil {
		t.Fatalf("RunOnce with throttle failed: %v", err)
	}
	if len(res.Deleted) != 1 {
		t.Errorf("Expected 1 deletion, got %d", len(res.Deleted))
	}
}
