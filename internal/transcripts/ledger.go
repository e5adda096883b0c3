// Package transcripts guards the transcript-download collaborator against
// redundant downloads via the append-only ledger in the entry store.
package transcripts

import (
	"regexp"

	"github.com/chaiji/libman/internal/store"
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})(?:&|$|\?)`),
	regexp.MustCompile(`youtu\.be/([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`embed/([0-9A-Za-z_-]{11})`),
}

// ExtractVideoID pulls the video identifier out of a watch URL. Returns ""
// when the URL matches no known shape.
func ExtractVideoID(url string) string {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}

// ShouldDownload reports whether a transcript still needs downloading.
// A ledger row matching either the video identifier or the filename means
// the transcript was already fetched.
func ShouldDownload(s *store.Store, videoID, filename string) (bool, error) {
	have, err := s.HasTranscript(videoID, filename)
	if err != nil {
		return false, err
	}
	return !have, nil
}

// Record appends the downloaded transcript to the ledger
func Record(s *store.Store, videoID, filename string) error {
	return s.AddTranscript(videoID, filename)
}
