package scan

import (
	"os"
	"path/filepath"
	"testing"
)

var testTargets = []string{"proving_f10.key", "verifying_f10.key"}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("key material"), 0644); err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}
}

// TestScanFindsNestedTargets covers the canonical tree:
// build/proving_f10.key, build/sub/verifying_f10.key, build/readme.txt
func TestScanFindsNestedTargets(t *testing.T) {
	root := t.TempDir()
	proving := filepath.Join(root, "build", "proving_f10.key")
	verifying := filepath.Join(root, "build", "sub", "verifying_f10.key")
	readme := filepath.Join(root, "build", "readme.txt")
	writeFile(t, proving)
	writeFile(t, verifying)
	writeFile(t, readme)

	candidates, err := Scan(root, testTargets)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d: %v", len(candidates), candidates)
	}

	found := make(map[string]string)
	for _, c := range candidates {
		if !filepath.IsAbs(c.Path) {
			t.Errorf("Candidate path %s is not absolute", c.Path)
		}
		found[c.Path] = c.Target
	}

	if found[proving] != "proving_f10.key" {
		t.Errorf("Expected %s matched as proving_f10.key, got %q", proving, found[proving])
	}
	if found[verifying] != "verifying_f10.key" {
		t.Errorf("Expected %s matched as verifying_f10.key, got %q", verifying, found[verifying])
	}
	if _, ok := found[readme]; ok {
		t.Errorf("readme.txt must never be selected")
	}
}

// TestScanMatchIsExactAndCaseSensitive verifies no globbing and no
// case folding: only the literal base name matches
func TestScanMatchIsExactAndCaseSensitive(t *testing.T) {
	root := t.TempDir()
	match := filepath.Join(root, "proving_f10.key")
	writeFile(t, match)
	writeFile(t, filepath.Join(root, "Proving_f10.key"))
	writeFile(t, filepath.Join(root, "proving_f10.key.bak"))
	writeFile(t, filepath.Join(root, "xproving_f10.key"))
	writeFile(t, filepath.Join(root, "other.key"))

	candidates, err := Scan(root, testTargets)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d: %v", len(candidates), candidates)
	}
	if candidates[0].Path != match {
		t.Errorf("Expected %s, got %s", match, candidates[0].Path)
	}
}

// TestScanEmptyTree verifies an empty result without error
func TestScanEmptyTree(t *testing.T) {
	root := t.TempDir()

	candidates, err := Scan(root, testTargets)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("Expected no candidates in empty tree, got %d", len(candidates))
	}
}

// TestScanDirectoriesNeverSelected verifies a directory named like a
// target is not a candidate (only its matching files would be)
func TestScanDirectoriesNeverSelected(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "proving_f10.key"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	candidates, err := Scan(root, testTargets)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("Directory must not be selected, got %v", candidates)
	}
}

// TestScanInvalidRoot verifies setup errors are fatal
func TestScanInvalidRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	if _, err := Scan(missing, testTargets); err == nil {
		t.Error("Expected error for missing root, got nil")
	}

	file := filepath.Join(t.TempDir(), "afile")
	writeFile(t, file)
	if _, err := Scan(file, testTargets); err == nil {
		t.Error("Expected error for non-directory root, got nil")
	}
}

// TestScanNoTargets verifies the target set must be non-empty
func TestScanNoTargets(t *testing.T) {
	if _, err := Scan(t.TempDir(), nil); err == nil {
		t.Error("Expected error for empty target set, got nil")
	}
}

// TestScanCandidateMetadata verifies size and mod time come from the walk
func TestScanCandidateMetadata(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "verifying_f10.key")
	data := []byte("verifying key bytes")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	candidates, err := Scan(root, testTargets)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Size != int64(len(data)) {
		t.Errorf("Expected size %d, got %d", len(data), candidates[0].Size)
	}
	if candidates[0].ModTime.IsZero() {
		t.Error("Expected mod time to be populated")
	}
}
