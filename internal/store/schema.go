package store

// Schema v1 - Initial catalog schema
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- One row per cataloged file. The triple (relative_path, filename, extension)
-- uniquely identifies a filesystem entity under the configured root.
CREATE TABLE IF NOT EXISTS catalog_entries (
  relative_path TEXT NOT NULL,
  filename TEXT NOT NULL,
  extension TEXT NOT NULL,
  mtime_unix INTEGER NOT NULL,
  size_bytes INTEGER NOT NULL,
  content_hash TEXT,
  extracted INTEGER NOT NULL DEFAULT 0,
  token_count INTEGER,
  missing INTEGER NOT NULL DEFAULT 0,
  first_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  last_update_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (relative_path, filename, extension)
);

CREATE INDEX IF NOT EXISTS idx_entries_hash ON catalog_entries(content_hash);
CREATE INDEX IF NOT EXISTS idx_entries_missing ON catalog_entries(missing);

-- Append-only record of downloaded transcripts. Rows are never mutated.
CREATE TABLE IF NOT EXISTS transcript_ledger (
  video_id TEXT PRIMARY KEY,
  filename TEXT NOT NULL,
  added_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_ledger_filename ON transcript_ledger(filename);
`

// Schema v2 - Covering index for the ordered full-table walk used by
// the mirror export and duplicate detection.
const schemaV2 = `
CREATE INDEX IF NOT EXISTS idx_entries_pk_walk
  ON catalog_entries(relative_path, filename, extension, missing);
`
