package store

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Key uniquely identifies one filesystem entity under the root.
type Key struct {
	RelativePath string
	Filename     string
	Extension    string
}

// String renders the key as a root-relative path, e.g. "books/ml/intro.pdf"
func (k Key) String() string {
	name := k.Filename
	if k.Extension != "" {
		name = k.Filename + "." + k.Extension
	}
	if k.RelativePath == "" || k.RelativePath == "." {
		return name
	}
	return k.RelativePath + "/" + name
}

// KeyForPath derives a Key from a root-relative file path
func KeyForPath(relPath string) Key {
	dir, leaf := filepath.Split(filepath.ToSlash(relPath))
	dir = strings.Trim(dir, "/")
	if dir == "" {
		dir = "."
	}
	ext := strings.TrimPrefix(filepath.Ext(leaf), ".")
	name := strings.TrimSuffix(leaf, filepath.Ext(leaf))
	return Key{RelativePath: dir, Filename: name, Extension: ext}
}

// Entry is one cataloged file
type Entry struct {
	Key
	MtimeUnix    int64
	SizeBytes    int64
	ContentHash  string // empty until first hash computation
	Extracted    bool
	TokenCount   sql.NullInt64
	Missing      bool
	FirstSeenAt  time.Time
	LastUpdateAt time.Time
}

const entryColumns = `
	relative_path, filename, extension, mtime_unix, size_bytes,
	COALESCE(content_hash, ''), extracted, token_count, missing,
	first_seen_at, last_update_at
`

func scanEntry(row interface{ Scan(...any) error }) (*Entry, error) {
	e := &Entry{}
	err := row.Scan(
		&e.RelativePath, &e.Filename, &e.Extension, &e.MtimeUnix, &e.SizeBytes,
		&e.ContentHash, &e.Extracted, &e.TokenCount, &e.Missing,
		&e.FirstSeenAt, &e.LastUpdateAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Get retrieves an entry by its primary key, or nil if absent
func (s *Store) Get(k Key) (*Entry, error) {
	row := s.db.QueryRow(`
		SELECT `+entryColumns+`
		FROM catalog_entries
		WHERE relative_path = ? AND filename = ? AND extension = ?
	`, k.RelativePath, k.Filename, k.Extension)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return e, nil
}

const upsertSQL = `
	INSERT INTO catalog_entries
	  (relative_path, filename, extension, mtime_unix, size_bytes,
	   content_hash, extracted, token_count, missing)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(relative_path, filename, extension) DO UPDATE SET
	  mtime_unix = excluded.mtime_unix,
	  size_bytes = excluded.size_bytes,
	  content_hash = excluded.content_hash,
	  extracted = excluded.extracted,
	  token_count = excluded.token_count,
	  missing = excluded.missing,
	  last_update_at = CURRENT_TIMESTAMP
`

func upsertArgs(e *Entry) []any {
	var hash any
	if e.ContentHash != "" {
		hash = e.ContentHash
	}
	return []any{
		e.RelativePath, e.Filename, e.Extension, e.MtimeUnix, e.SizeBytes,
		hash, e.Extracted, e.TokenCount, e.Missing,
	}
}

// Upsert inserts or fully overwrites the entry for its key. Idempotent.
func (s *Store) Upsert(e *Entry) error {
	if _, err := s.db.Exec(upsertSQL, upsertArgs(e)...); err != nil {
		return fmt.Errorf("failed to upsert entry %s: %w", e.Key, err)
	}
	return nil
}

// UpsertBatch writes a batch of entries in one transaction. Either the whole
// batch is committed or none of it is.
func (s *Store) UpsertBatch(entries []*Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(upsertSQL)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, e := range entries {
			if _, err := stmt.Exec(upsertArgs(e)...); err != nil {
				return fmt.Errorf("failed to upsert entry %s: %w", e.Key, err)
			}
		}
		return nil
	})
}

// All returns every entry ordered by primary key, so downstream exports are
// deterministic across runs with no changes.
func (s *Store) All() ([]*Entry, error) {
	rows, err := s.db.Query(`
		SELECT ` + entryColumns + `
		FROM catalog_entries
		ORDER BY relative_path, filename, extension
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AllKeys returns the primary keys of every entry ordered by primary key
func (s *Store) AllKeys() ([]Key, error) {
	rows, err := s.db.Query(`
		SELECT relative_path, filename, extension
		FROM catalog_entries
		ORDER BY relative_path, filename, extension
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query keys: %w", err)
	}
	defer rows.Close()

	var keys []Key
	for rows.Next() {
		var k Key
		if err := rows.Scan(&k.RelativePath, &k.Filename, &k.Extension); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Reset atomically discards all catalog entries. Used only by a full rebuild.
func (s *Store) Reset() error {
	return s.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM catalog_entries"); err != nil {
			return fmt.Errorf("failed to reset entries: %w", err)
		}
		return nil
	})
}

// MarkMissing flags the given keys as missing without deleting them, so the
// catalog's history stays auditable.
func (s *Store) MarkMissing(keys []Key) error {
	if len(keys) == 0 {
		return nil
	}
	return s.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			UPDATE catalog_entries SET missing = 1, last_update_at = CURRENT_TIMESTAMP
			WHERE relative_path = ? AND filename = ? AND extension = ?
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare missing update: %w", err)
		}
		defer stmt.Close()

		for _, k := range keys {
			if _, err := stmt.Exec(k.RelativePath, k.Filename, k.Extension); err != nil {
				return fmt.Errorf("failed to mark %s missing: %w", k, err)
			}
		}
		return nil
	})
}

// SetTokenCount records the result of a tokenization pass for one entry
func (s *Store) SetTokenCount(k Key, tokens int64) error {
	_, err := s.db.Exec(`
		UPDATE catalog_entries SET token_count = ?, last_update_at = CURRENT_TIMESTAMP
		WHERE relative_path = ? AND filename = ? AND extension = ?
	`, tokens, k.RelativePath, k.Filename, k.Extension)
	if err != nil {
		return fmt.Errorf("failed to set token count for %s: %w", k, err)
	}
	return nil
}

// CountEntries returns the total number of cataloged entries
func (s *Store) CountEntries() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM catalog_entries").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

// CountMissing returns the number of entries flagged missing
func (s *Store) CountMissing() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM catalog_entries WHERE missing = 1").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count missing entries: %w", err)
	}
	return count, nil
}

// ExtensionStat is one row of the per-extension breakdown
type ExtensionStat struct {
	Extension  string
	Count      int
	TotalBytes int64
}

// ExtensionBreakdown aggregates present entries by extension
func (s *Store) ExtensionBreakdown() ([]ExtensionStat, error) {
	rows, err := s.db.Query(`
		SELECT extension, COUNT(*), COALESCE(SUM(size_bytes), 0)
		FROM catalog_entries
		WHERE missing = 0
		GROUP BY extension
		ORDER BY COUNT(*) DESC, extension
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query extension breakdown: %w", err)
	}
	defer rows.Close()

	var stats []ExtensionStat
	for rows.Next() {
		var st ExtensionStat
		if err := rows.Scan(&st.Extension, &st.Count, &st.TotalBytes); err != nil {
			return nil, fmt.Errorf("failed to scan breakdown row: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
