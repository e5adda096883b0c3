package tokens

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEstimate(t *testing.T) {
	// 4 words, 20 chars: word heuristic gives 5, char heuristic 3.75,
	// averaged to 4
	text := "one two three four00"
	if got := estimate(text); got != 4 {
		t.Errorf("estimate(%q) = %d, want 4", text, got)
	}

	if got := estimate(""); got != 0 {
		t.Errorf("estimate of empty text = %d, want 0", got)
	}
}

func TestCountTextHeuristicFallback(t *testing.T) {
	// A Counter without an encoding uses the heuristic
	c := &Counter{}
	text := "some sample text for counting tokens here"
	if got, want := c.CountText(text), estimate(text); got != want {
		t.Errorf("CountText = %d, want heuristic %d", got, want)
	}
}

func TestCountTextMonotonicInLength(t *testing.T) {
	c := &Counter{}
	short := c.CountText("a few words")
	long := c.CountText("a few words followed by a considerably longer tail of additional words")
	if long <= short {
		t.Errorf("longer text should count more tokens: %d vs %d", long, short)
	}
}

func TestCountFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	text := "the quick brown fox jumps over the lazy dog"
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	c := NewCounter()
	got, err := c.CountFile(path)
	if err != nil {
		t.Fatalf("CountFile failed: %v", err)
	}
	if got <= 0 {
		t.Errorf("expected a positive token count, got %d", got)
	}
	if want := c.CountText(text); got != want {
		t.Errorf("CountFile = %d, CountText = %d", got, want)
	}
}

func TestCountFileMissing(t *testing.T) {
	c := &Counter{}
	if _, err := c.CountFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
