package catalog

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/chaiji/libman/internal/util"
)

// AcquireRunLock takes the exclusive run lock for a catalog directory.
// Scans and backups both hold it, so a backup can never observe a store
// that is mid-write. The caller must Unlock when done.
func AcquireRunLock(catalogDir string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(catalogDir, "run.lock"))

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return nil, util.ErrRunInProgress
	}
	return lock, nil
}
