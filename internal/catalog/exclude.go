package catalog

import (
	"strings"
)

// Platform housekeeping files are never cataloged
var housekeepingFiles = map[string]struct{}{
	".DS_Store":   {},
	"Thumbs.db":   {},
	"desktop.ini": {},
}

// excluder applies the profile's exclusion rules to root-relative paths.
// A rule matches either the leaf filename exactly, or any directory segment
// when the rule ends with "/".
type excluder struct {
	names      map[string]struct{}
	dirs       map[string]struct{}
	extractDir string
}

func newExcluder(rules []string, extractDir string) *excluder {
	x := &excluder{
		names:      make(map[string]struct{}),
		dirs:       make(map[string]struct{}),
		extractDir: extractDir,
	}
	for _, rule := range rules {
		if strings.HasSuffix(rule, "/") {
			x.dirs[strings.TrimSuffix(rule, "/")] = struct{}{}
		} else {
			x.names[rule] = struct{}{}
		}
	}
	return x
}

// excludedDir reports whether an entire directory subtree is skipped. The
// artifact directories are excluded here so derived files are never cataloged
// as primary entries.
func (x *excluder) excludedDir(name string) bool {
	if name == x.extractDir {
		return true
	}
	_, ok := x.dirs[name]
	return ok
}

// excludedFile reports whether a single file is skipped
func (x *excluder) excludedFile(name string) bool {
	if _, ok := housekeepingFiles[name]; ok {
		return true
	}
	_, ok := x.names[name]
	return ok
}
