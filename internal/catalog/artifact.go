package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/chaiji/libman/internal/store"
)

// Extractor is the text-extraction collaborator. The engine only decides
// when extraction is needed; it never performs extraction itself.
type Extractor interface {
	// Extract produces the derived text artifact for sourcePath and returns
	// the artifact's location.
	Extract(ctx context.Context, sourcePath, artifactPath string) error
}

// TokenCounter is the opt-in tokenization collaborator
type TokenCounter interface {
	CountFile(path string) (int64, error)
}

// Extensions whose text is derived into the artifact directory
var extractableExtensions = map[string]struct{}{
	"pdf": {},
	"md":  {},
	"vtt": {},
}

func isExtractable(ext string) bool {
	_, ok := extractableExtensions[strings.ToLower(ext)]
	return ok
}

// artifactPath returns the expected derived-text location for an entry:
// root/<top-level>/<extractDir>/<name>.txt, or root/<extractDir>/<name>.txt
// for files directly under the root.
func artifactPath(root, extractDir string, k store.Key) string {
	top := ""
	if k.RelativePath != "" && k.RelativePath != "." {
		top = strings.SplitN(filepath.ToSlash(k.RelativePath), "/", 2)[0]
	}
	return filepath.Join(root, top, extractDir, k.Filename+".txt")
}

// artifactState checks the companion artifact for an entry. A plain text
// source is its own artifact. Returns whether the entry counts as extracted
// and where its artifact lives ("" when the entry has no artifact concept).
func artifactState(root, extractDir string, k store.Key, srcMtime int64) (bool, string) {
	if strings.EqualFold(k.Extension, "txt") {
		return true, ""
	}
	if !isExtractable(k.Extension) {
		return false, ""
	}

	path := artifactPath(root, extractDir, k)
	info, err := os.Stat(path)
	if err != nil {
		return false, path
	}
	// Stale artifacts don't count: the derived text must be at least as new
	// as its source.
	return info.ModTime().Unix() >= srcMtime, path
}
