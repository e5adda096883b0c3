package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chaiji/libman/internal/store"
)

func TestArtifactPath(t *testing.T) {
	testCases := []struct {
		name     string
		key      store.Key
		expected string
	}{
		{
			name:     "nested source",
			key:      store.Key{RelativePath: "books/ml", Filename: "intro", Extension: "pdf"},
			expected: filepath.Join("/root", "books", "extracted", "intro.txt"),
		},
		{
			name:     "top-level source",
			key:      store.Key{RelativePath: ".", Filename: "readme", Extension: "md"},
			expected: filepath.Join("/root", "extracted", "readme.txt"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := artifactPath("/root", "extracted", tc.key); got != tc.expected {
				t.Errorf("artifactPath = %s, want %s", got, tc.expected)
			}
		})
	}
}

func TestArtifactState(t *testing.T) {
	root := t.TempDir()
	now := time.Now()

	// Plain text is its own artifact
	extracted, path := artifactState(root, "extracted", store.KeyForPath("notes/todo.txt"), now.Unix())
	if !extracted || path != "" {
		t.Errorf("txt should be its own artifact: extracted=%v path=%q", extracted, path)
	}

	// Non-extractable formats have no artifact concept
	extracted, path = artifactState(root, "extracted", store.KeyForPath("photos/cat.jpg"), now.Unix())
	if extracted || path != "" {
		t.Errorf("jpg should have no artifact: extracted=%v path=%q", extracted, path)
	}

	// Extractable source without an artifact: not extracted, but the
	// expected location is reported
	key := store.KeyForPath("docs/paper.pdf")
	extracted, path = artifactState(root, "extracted", key, now.Unix())
	if extracted {
		t.Error("missing artifact should not count as extracted")
	}
	want := filepath.Join(root, "docs", "extracted", "paper.txt")
	if path != want {
		t.Errorf("artifact location %s, want %s", path, want)
	}

	// Fresh artifact counts
	if err := os.MkdirAll(filepath.Dir(want), 0o755); err != nil {
		t.Fatalf("failed to create artifact dir: %v", err)
	}
	if err := os.WriteFile(want, []byte("text"), 0o644); err != nil {
		t.Fatalf("failed to write artifact: %v", err)
	}
	extracted, _ = artifactState(root, "extracted", key, now.Unix())
	if !extracted {
		t.Error("fresh artifact should count as extracted")
	}

	// Stale artifact does not: derived text must be at least as new as
	// its source
	extracted, _ = artifactState(root, "extracted", key, now.Add(time.Hour).Unix())
	if extracted {
		t.Error("stale artifact should not count as extracted")
	}
}

func TestExcluder(t *testing.T) {
	x := newExcluder([]string{"skipme.log", "tmp/"}, "extracted")

	if !x.excludedFile(".DS_Store") || !x.excludedFile("Thumbs.db") || !x.excludedFile("desktop.ini") {
		t.Error("housekeeping files should always be excluded")
	}
	if !x.excludedFile("skipme.log") {
		t.Error("named file rule should match")
	}
	if x.excludedFile("keep.log") {
		t.Error("unrelated file excluded")
	}

	if !x.excludedDir("tmp") {
		t.Error("directory rule should match")
	}
	if !x.excludedDir("extracted") {
		t.Error("artifact directory should always be excluded")
	}
	if x.excludedDir("docs") {
		t.Error("unrelated directory excluded")
	}
	// A directory rule does not exclude a file of the same name
	if x.excludedFile("tmp") {
		t.Error("directory rule matched a file")
	}
}
