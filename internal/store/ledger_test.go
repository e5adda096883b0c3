package store

import "testing"

func TestTranscriptLedger(t *testing.T) {
	s := openTestStore(t)

	have, err := s.HasTranscript("dQw4w9WgXcQ", "talk.vtt")
	if err != nil {
		t.Fatalf("HasTranscript failed: %v", err)
	}
	if have {
		t.Error("fresh ledger should be empty")
	}

	if err := s.AddTranscript("dQw4w9WgXcQ", "talk.vtt"); err != nil {
		t.Fatalf("AddTranscript failed: %v", err)
	}

	// Either the video identifier or the filename suffices
	testCases := []struct {
		name     string
		videoID  string
		filename string
		expected bool
	}{
		{"both match", "dQw4w9WgXcQ", "talk.vtt", true},
		{"id only", "dQw4w9WgXcQ", "renamed.vtt", true},
		{"filename only", "other-id-123", "talk.vtt", true},
		{"neither", "other-id-123", "renamed.vtt", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			have, err := s.HasTranscript(tc.videoID, tc.filename)
			if err != nil {
				t.Fatalf("HasTranscript failed: %v", err)
			}
			if have != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, have)
			}
		})
	}

	// The ledger is append-only: re-adding the same video is an error
	if err := s.AddTranscript("dQw4w9WgXcQ", "talk-again.vtt"); err == nil {
		t.Error("expected duplicate video_id insert to fail")
	}

	if err := s.AddTranscript("abcdefghijk", "second.vtt"); err != nil {
		t.Fatalf("AddTranscript failed: %v", err)
	}

	entries, err := s.Transcripts()
	if err != nil {
		t.Fatalf("Transcripts failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", len(entries))
	}
	byID := make(map[string]string)
	for _, e := range entries {
		byID[e.VideoID] = e.Filename
		if e.AddedAt.IsZero() {
			t.Errorf("expected added_at to be set for %s", e.VideoID)
		}
	}
	if byID["dQw4w9WgXcQ"] != "talk.vtt" || byID["abcdefghijk"] != "second.vtt" {
		t.Errorf("unexpected ledger contents: %v", byID)
	}
}
