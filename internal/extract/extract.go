// Package extract derives plain-text artifacts from text-like source
// formats. Markdown is copied as-is; VTT subtitles have their cue styling
// stripped. Binary formats (PDF) need an external collaborator and are
// reported as unsupported here.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/chaiji/libman/internal/util"
)

var (
	styledLinePattern = regexp.MustCompile(`<c(?:\.[^>]*)?>.*?</c>`)
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
)

// TextExtractor implements the extraction collaborator for formats the tool
// can convert on its own
type TextExtractor struct{}

// New creates a TextExtractor
func New() *TextExtractor {
	return &TextExtractor{}
}

// Extract writes the plain-text artifact for sourcePath to artifactPath
func (x *TextExtractor) Extract(ctx context.Context, sourcePath, artifactPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(sourcePath), "."))

	var text string
	switch ext {
	case "md":
		data, err := os.ReadFile(sourcePath)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", util.ErrUnreadable, sourcePath, err)
		}
		text = string(data)
	case "vtt":
		data, err := os.ReadFile(sourcePath)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", util.ErrUnreadable, sourcePath, err)
		}
		text = stripCues(string(data))
	default:
		return fmt.Errorf("no built-in extraction for .%s files", ext)
	}

	if err := os.MkdirAll(filepath.Dir(artifactPath), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact dir: %w", err)
	}
	if err := os.WriteFile(artifactPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}

// stripCues keeps only styled subtitle lines, drops the markup, and
// deduplicates the rolling repeats VTT captions produce
func stripCues(vtt string) string {
	var out []string
	seen := make(map[string]struct{})

	for _, line := range strings.Split(vtt, "\n") {
		if !styledLinePattern.MatchString(line) {
			continue
		}
		clean := strings.TrimSpace(tagPattern.ReplaceAllString(line, ""))
		if clean == "" {
			continue
		}
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}

	return strings.Join(out, "\n\n")
}
