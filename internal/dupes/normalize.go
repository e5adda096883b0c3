package dupes

import (
	"strings"
	"unicode"
)

// normalizeName prepares a filename (without extension) for fuzzy
// comparison: casefolded, punctuation stripped, whitespace collapsed.
// "A_Copy (2)" and "a copy 2" normalize identically.
func normalizeName(filename string) string {
	var b strings.Builder
	b.Grow(len(filename))

	lastSpace := true
	for _, r := range strings.ToLower(filename) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteRune(' ')
			lastSpace = true
		}
	}

	return strings.TrimSpace(b.String())
}
