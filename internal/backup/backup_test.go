package backup

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestSnapshot(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "library.sqlite")
	content := []byte("pretend sqlite bytes")
	if err := os.WriteFile(storePath, content, 0o644); err != nil {
		t.Fatalf("failed to write store file: %v", err)
	}

	dest, err := Snapshot(storePath)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	// <timestamp>.<storeName>.backup in the same directory
	if filepath.Dir(dest) != dir {
		t.Errorf("backup landed outside the store directory: %s", dest)
	}
	name := filepath.Base(dest)
	pattern := regexp.MustCompile(`^\d{8}-\d{6}\.library\.sqlite\.backup$`)
	if !pattern.MatchString(name) {
		t.Errorf("unexpected backup name: %s", name)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	if string(got) != string(content) {
		t.Error("backup content differs from source")
	}

	// No temp file left behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to list dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}

func TestSnapshotMissingStore(t *testing.T) {
	_, err := Snapshot(filepath.Join(t.TempDir(), "nope.sqlite"))
	if err == nil {
		t.Fatal("expected error for missing store file")
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()

	names := []string{
		"20240101-120000.library.sqlite.backup",
		"20240301-120000.library.sqlite.backup",
		"20240201-120000.library.sqlite.backup",
		"20240101-120000.other.sqlite.backup", // different store
		"library.sqlite",                      // the store itself
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", n, err)
		}
	}

	got, err := List(dir, "library.sqlite")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 backups, got %d: %v", len(got), got)
	}

	// Timestamp prefix makes lexicographic order chronological
	for i := 1; i < len(got); i++ {
		if got[i-1] >= got[i] {
			t.Errorf("backups not in chronological order: %v", got)
		}
	}
}
