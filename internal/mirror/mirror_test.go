package mirror

import (
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/chaiji/libman/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "library.sqlite"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedEntries(t *testing.T, s *store.Store) []*store.Entry {
	t.Helper()
	entries := []*store.Entry{
		{
			Key:         store.Key{RelativePath: "books", Filename: "intro", Extension: "pdf"},
			MtimeUnix:   1700000100,
			SizeBytes:   2048,
			ContentHash: "aaa111",
			Extracted:   true,
			TokenCount:  sql.NullInt64{Int64: 512, Valid: true},
		},
		{
			Key:       store.Key{RelativePath: ".", Filename: "readme", Extension: "md"},
			MtimeUnix: 1700000200,
			SizeBytes: 64,
		},
		{
			Key:         store.Key{RelativePath: "old", Filename: "gone", Extension: "txt"},
			MtimeUnix:   1700000300,
			SizeBytes:   10,
			ContentHash: "bbb222",
			Missing:     true,
		},
	}
	if err := s.UpsertBatch(entries); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
	return entries
}

func TestExport(t *testing.T) {
	s := openTestStore(t)
	seedEntries(t, s)

	path := filepath.Join(t.TempDir(), "latest-catalog.csv")
	rows, err := Export(s, path)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if rows != 3 {
		t.Errorf("expected 3 rows, got %d", rows)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open mirror: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse mirror: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header + 3 rows, got %d records", len(records))
	}
	if records[0][0] != "relative_path" {
		t.Errorf("unexpected header: %v", records[0])
	}

	// Rows follow store order (primary key), so exports are diffable
	if records[1][0] != "." || records[1][1] != "readme" {
		t.Errorf("unexpected first row: %v", records[1])
	}
	// Missing entries exported with the flag intact
	if records[3][1] != "gone" || records[3][8] != "true" {
		t.Errorf("unexpected missing row: %v", records[3])
	}
	// Unset token count is an empty field, not zero
	if records[1][7] != "" {
		t.Errorf("expected empty token_count, got %q", records[1][7])
	}
	if records[2][7] != "512" {
		t.Errorf("expected token_count 512, got %q", records[2][7])
	}

	// No temp file left behind
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary mirror file was not cleaned up")
	}
}

func TestExportDeterministic(t *testing.T) {
	s := openTestStore(t)
	seedEntries(t, s)

	dir := t.TempDir()
	p1 := filepath.Join(dir, "one.csv")
	p2 := filepath.Join(dir, "two.csv")
	if _, err := Export(s, p1); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if _, err := Export(s, p2); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	b1, _ := os.ReadFile(p1)
	b2, _ := os.ReadFile(p2)
	if string(b1) != string(b2) {
		t.Error("identical catalogs produced different mirrors")
	}
}

func TestRehydrateRoundTrip(t *testing.T) {
	src := openTestStore(t)
	seeded := seedEntries(t, src)

	path := filepath.Join(t.TempDir(), "mirror.csv")
	if _, err := Export(src, path); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	dst := openTestStore(t)
	rows, err := Rehydrate(dst, path)
	if err != nil {
		t.Fatalf("rehydrate failed: %v", err)
	}
	if rows != len(seeded) {
		t.Errorf("expected %d rows restored, got %d", len(seeded), rows)
	}

	for _, want := range seeded {
		got, err := dst.Get(want.Key)
		if err != nil {
			t.Fatalf("failed to get %s: %v", want.Key, err)
		}
		if got == nil {
			t.Fatalf("entry %s not restored", want.Key)
		}
		if got.MtimeUnix != want.MtimeUnix || got.SizeBytes != want.SizeBytes {
			t.Errorf("%s: signal mismatch", want.Key)
		}
		if got.ContentHash != want.ContentHash {
			t.Errorf("%s: hash %q, want %q", want.Key, got.ContentHash, want.ContentHash)
		}
		if got.Extracted != want.Extracted || got.Missing != want.Missing {
			t.Errorf("%s: flag mismatch", want.Key)
		}
		if got.TokenCount != want.TokenCount {
			t.Errorf("%s: token count %+v, want %+v", want.Key, got.TokenCount, want.TokenCount)
		}
	}
}

func TestRehydrateRejectsMalformed(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t)

	badHeader := filepath.Join(dir, "bad-header.csv")
	if err := os.WriteFile(badHeader, []byte("a,b,c\n1,2,3\n"), 0o644); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if _, err := Rehydrate(s, badHeader); err == nil {
		t.Error("expected error for wrong column count")
	}

	badRow := filepath.Join(dir, "bad-row.csv")
	content := "relative_path,filename,extension,mtime_unix,size_bytes,content_hash,extracted,token_count,missing\n" +
		"a,b,c,not-a-number,5,h,false,,false\n"
	if err := os.WriteFile(badRow, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if _, err := Rehydrate(s, badRow); err == nil {
		t.Error("expected error for unparseable mtime")
	}

	if _, err := Rehydrate(s, filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("expected error for missing mirror file")
	}
}
