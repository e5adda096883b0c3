// Package backup produces point-in-time copies of the catalog's backing
// file. Callers must hold the run lock so a snapshot never races a scan.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// timestampLayout sorts lexicographically in chronological order
const timestampLayout = "20060102-150405"

// Snapshot copies the store's backing file to
// <timestamp>.<storeName>.backup in the same directory and returns the
// backup's path. The copy goes to a temporary name first and is renamed
// into place, so a concurrent reader never sees a truncated backup.
func Snapshot(storePath string) (string, error) {
	src, err := os.Open(storePath)
	if err != nil {
		return "", fmt.Errorf("failed to open store file: %w", err)
	}
	defer src.Close()

	dir := filepath.Dir(storePath)
	name := filepath.Base(storePath)
	dest := filepath.Join(dir, fmt.Sprintf("%s.%s.backup", time.Now().Format(timestampLayout), name))

	tmp := dest + ".tmp"
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("failed to copy store file: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("failed to sync backup: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to close backup: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to publish backup: %w", err)
	}

	return dest, nil
}

// List returns existing backups of the named store file in dir, oldest
// first. The timestamp prefix makes lexicographic order chronological.
func List(dir, storeName string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*."+storeName+".backup"))
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	return matches, nil
}
