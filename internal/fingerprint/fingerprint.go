// Package fingerprint computes the change signal and content identity
// for cataloged files. The (mtime, size) signal is a cheap heuristic used
// to decide whether the expensive content hash must be recomputed; the
// SHA-256 digest is the authoritative identity for duplicate detection.
package fingerprint

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/chaiji/libman/internal/util"
)

// Signal is the cheap change signal for a file. Never used as identity.
type Signal struct {
	MtimeUnix int64
	SizeBytes int64
}

// Equal reports whether two signals match
func (s Signal) Equal(other Signal) bool {
	return s.MtimeUnix == other.MtimeUnix && s.SizeBytes == other.SizeBytes
}

// ReadSignal reads the change signal via a single stat call. It never opens
// file contents.
func ReadSignal(path string) (Signal, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Signal{}, fmt.Errorf("%w: %s: %v", util.ErrUnreadable, path, err)
	}
	return Signal{MtimeUnix: info.ModTime().Unix(), SizeBytes: info.Size()}, nil
}

// Identity reads the full file and returns its SHA-256 hex digest.
// Expensive; call only when the signal differs from the stored one or the
// path is new.
func Identity(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", util.ErrUnreadable, path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("%w: %s: %v", util.ErrUnreadable, path, err)
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
