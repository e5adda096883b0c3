package store

import (
	"database/sql"
	"fmt"
	"time"
)

// LedgerEntry is one row of the transcript ledger
type LedgerEntry struct {
	VideoID  string
	Filename string
	AddedAt  time.Time
}

// HasTranscript reports whether a transcript matching the video identifier
// or the filename is already recorded. Either match suffices.
func (s *Store) HasTranscript(videoID, filename string) (bool, error) {
	var one int
	err := s.db.QueryRow(`
		SELECT 1 FROM transcript_ledger
		WHERE video_id = ? OR filename = ?
		LIMIT 1
	`, videoID, filename).Scan(&one)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check transcript ledger: %w", err)
	}
	return true, nil
}

// AddTranscript appends a ledger row. Rows are never mutated afterwards;
// inserting the same video identifier twice is an error.
func (s *Store) AddTranscript(videoID, filename string) error {
	_, err := s.db.Exec(`
		INSERT INTO transcript_ledger (video_id, filename) VALUES (?, ?)
	`, videoID, filename)
	if err != nil {
		return fmt.Errorf("failed to add transcript %s: %w", videoID, err)
	}
	return nil
}

// Transcripts returns the full ledger ordered by insertion time
func (s *Store) Transcripts() ([]*LedgerEntry, error) {
	rows, err := s.db.Query(`
		SELECT video_id, filename, added_at
		FROM transcript_ledger
		ORDER BY added_at, video_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcript ledger: %w", err)
	}
	defer rows.Close()

	var entries []*LedgerEntry
	for rows.Next() {
		le := &LedgerEntry{}
		if err := rows.Scan(&le.VideoID, &le.Filename, &le.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		entries = append(entries, le)
	}
	return entries, rows.Err()
}
