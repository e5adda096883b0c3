package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractMarkdown(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.md")
	content := "# Title\n\nSome **bold** prose.\n"
	if err := os.WriteFile(src, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	artifact := filepath.Join(dir, "extracted", "notes.txt")
	if err := New().Extract(context.Background(), src, artifact); err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	got, err := os.ReadFile(artifact)
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}
	// Markdown is carried over verbatim
	if string(got) != content {
		t.Errorf("markdown artifact differs from source:\n%s", got)
	}
}

func TestExtractVTT(t *testing.T) {
	vtt := `WEBVTT
Kind: captions
Language: en

00:00:00.000 --> 00:00:02.000
<c>hello and welcome</c>

00:00:02.000 --> 00:00:04.000
<c.colorCCCCCC>hello and welcome</c>

00:00:04.000 --> 00:00:06.000
<c>to the <b>second</b> line</c>
`

	dir := t.TempDir()
	src := filepath.Join(dir, "talk.vtt")
	if err := os.WriteFile(src, []byte(vtt), 0o644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	artifact := filepath.Join(dir, "talk.txt")
	if err := New().Extract(context.Background(), src, artifact); err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	got, err := os.ReadFile(artifact)
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}
	text := string(got)

	// Rolling repeats collapse to one line, markup is gone
	if strings.Count(text, "hello and welcome") != 1 {
		t.Errorf("expected the repeated cue once, got:\n%s", text)
	}
	if strings.Contains(text, "<") {
		t.Errorf("markup survived extraction:\n%s", text)
	}
	if !strings.Contains(text, "to the second line") {
		t.Errorf("styled cue text lost:\n%s", text)
	}
	// Timing lines and headers never make it into the artifact
	if strings.Contains(text, "-->") || strings.Contains(text, "WEBVTT") {
		t.Errorf("cue metadata survived extraction:\n%s", text)
	}
}

func TestExtractUnsupported(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "paper.pdf")
	if err := os.WriteFile(src, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	err := New().Extract(context.Background(), src, filepath.Join(dir, "paper.txt"))
	if err == nil {
		t.Fatal("expected error for a format with no built-in extraction")
	}
}

func TestExtractCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New().Extract(ctx, "whatever.md", "whatever.txt")
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestStripCues(t *testing.T) {
	testCases := []struct {
		name     string
		in       string
		expected string
	}{
		{
			name:     "plain cue line ignored",
			in:       "just text without markup",
			expected: "",
		},
		{
			name:     "styled line kept",
			in:       "<c>kept text</c>",
			expected: "kept text",
		},
		{
			name:     "empty after stripping",
			in:       "<c></c>",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripCues(tc.in); got != tc.expected {
				t.Errorf("stripCues(%q) = %q, want %q", tc.in, got, tc.expected)
			}
		})
	}
}
