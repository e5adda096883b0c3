// Package mirror maintains the flat CSV projection of the entry store.
// The mirror is derived purely from the store and is never the source of
// truth; Rehydrate exists only as an explicit last-resort recovery path.
package mirror

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/chaiji/libman/internal/store"
)

var columns = []string{
	"relative_path", "filename", "extension", "mtime_unix", "size_bytes",
	"content_hash", "extracted", "token_count", "missing",
}

// Export writes the ordered tabular snapshot to path and returns the number
// of rows written. The file is written to a temporary name and renamed into
// place so a concurrent reader never observes a partial snapshot.
func Export(s *store.Store, path string) (int, error) {
	entries, err := s.All()
	if err != nil {
		return 0, fmt.Errorf("failed to load entries: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("failed to create mirror file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		f.Close()
		os.Remove(tmp)
		return 0, fmt.Errorf("failed to write mirror header: %w", err)
	}

	for _, e := range entries {
		tokens := ""
		if e.TokenCount.Valid {
			tokens = strconv.FormatInt(e.TokenCount.Int64, 10)
		}
		row := []string{
			e.RelativePath,
			e.Filename,
			e.Extension,
			strconv.FormatInt(e.MtimeUnix, 10),
			strconv.FormatInt(e.SizeBytes, 10),
			e.ContentHash,
			strconv.FormatBool(e.Extracted),
			tokens,
			strconv.FormatBool(e.Missing),
		}
		if err := w.Write(row); err != nil {
			f.Close()
			os.Remove(tmp)
			return 0, fmt.Errorf("failed to write mirror row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		os.Remove(tmp)
		return 0, fmt.Errorf("failed to flush mirror: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return 0, fmt.Errorf("failed to sync mirror: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("failed to close mirror: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("failed to publish mirror: %w", err)
	}

	return len(entries), nil
}

// Rehydrate loads the mirror back into the store. This is a data-loss-aware
// recovery path: extracted/token fields round-trip, and the content hash is
// trusted as written — any signal change on the next scan triggers a rehash
// regardless.
func Rehydrate(s *store.Store, csvPath string) (int, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open mirror: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to parse mirror: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	if len(records[0]) != len(columns) {
		return 0, fmt.Errorf("mirror has %d columns, want %d", len(records[0]), len(columns))
	}

	var entries []*store.Entry
	for i, rec := range records[1:] {
		e, err := parseRow(rec)
		if err != nil {
			return 0, fmt.Errorf("mirror row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}

	if err := s.UpsertBatch(entries); err != nil {
		return 0, fmt.Errorf("failed to rehydrate store: %w", err)
	}
	return len(entries), nil
}

func parseRow(rec []string) (*store.Entry, error) {
	if len(rec) != len(columns) {
		return nil, fmt.Errorf("want %d fields, got %d", len(columns), len(rec))
	}

	mtime, err := strconv.ParseInt(rec[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad mtime_unix %q", rec[3])
	}
	size, err := strconv.ParseInt(rec[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad size_bytes %q", rec[4])
	}
	extracted, err := strconv.ParseBool(rec[6])
	if err != nil {
		return nil, fmt.Errorf("bad extracted %q", rec[6])
	}
	missing, err := strconv.ParseBool(rec[8])
	if err != nil {
		return nil, fmt.Errorf("bad missing %q", rec[8])
	}

	var tokens sql.NullInt64
	if rec[7] != "" {
		n, err := strconv.ParseInt(rec[7], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad token_count %q", rec[7])
		}
		tokens = sql.NullInt64{Int64: n, Valid: true}
	}

	return &store.Entry{
		Key: store.Key{
			RelativePath: rec[0],
			Filename:     rec[1],
			Extension:    rec[2],
		},
		MtimeUnix:   mtime,
		SizeBytes:   size,
		ContentHash: rec[5],
		Extracted:   extracted,
		TokenCount:  tokens,
		Missing:     missing,
	}, nil
}
