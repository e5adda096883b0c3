package fingerprint

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chaiji/libman/internal/util"
)

func TestReadSignal(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "file.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	sig, err := ReadSignal(path)
	if err != nil {
		t.Fatalf("ReadSignal failed: %v", err)
	}
	if sig.SizeBytes != 5 {
		t.Errorf("expected size 5, got %d", sig.SizeBytes)
	}
	if sig.MtimeUnix == 0 {
		t.Error("expected a non-zero mtime")
	}
}

func TestReadSignalUnreadable(t *testing.T) {
	_, err := ReadSignal(filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
	if !errors.Is(err, util.ErrUnreadable) {
		t.Errorf("expected ErrUnreadable, got %v", err)
	}
}

func TestSignalEqual(t *testing.T) {
	a := Signal{MtimeUnix: 100, SizeBytes: 5}

	if !a.Equal(Signal{MtimeUnix: 100, SizeBytes: 5}) {
		t.Error("identical signals should be equal")
	}
	if a.Equal(Signal{MtimeUnix: 101, SizeBytes: 5}) {
		t.Error("mtime change should differ")
	}
	if a.Equal(Signal{MtimeUnix: 100, SizeBytes: 6}) {
		t.Error("size change should differ")
	}
}

func TestIdentity(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "file.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	hash, err := Identity(path)
	if err != nil {
		t.Fatalf("Identity failed: %v", err)
	}
	// sha256("hello")
	expected := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if hash != expected {
		t.Errorf("expected %s, got %s", expected, hash)
	}

	// Same bytes at a different path hash identically
	other := filepath.Join(tmpDir, "copy.txt")
	if err := os.WriteFile(other, []byte("hello"), 0o644); err != nil {
		t.Fatalf("failed to write copy: %v", err)
	}
	hash2, err := Identity(other)
	if err != nil {
		t.Fatalf("Identity failed: %v", err)
	}
	if hash2 != hash {
		t.Error("identical content should produce identical digests")
	}
}

func TestIdentityUnreadable(t *testing.T) {
	_, err := Identity(filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
	if !errors.Is(err, util.ErrUnreadable) {
		t.Errorf("expected ErrUnreadable, got %v", err)
	}
}
