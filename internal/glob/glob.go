// Package glob matches filesystem paths against path-glob patterns.
//
// Pattern syntax follows doublestar: `**` matches zero or more path
// segments, `*` matches within a single segment, and `{a,b}` is literal
// alternation. Matching is always performed on slash-separated paths.
package glob

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Match reports whether path matches pattern. An invalid pattern never
// matches. Backslash-separated paths are normalized to slash form first;
// patterns are left alone since backslash escapes glob metacharacters.
func Match(pattern, path string) bool {
	ok, err := doublestar.Match(normalize(pattern), normalizePath(path))
	return err == nil && ok
}

// MatchAny reports whether any of the given paths matches pattern.
func MatchAny(pattern string, paths []string) bool {
	for _, p := range paths {
		if Match(pattern, p) {
			return true
		}
	}
	return false
}

// Valid reports whether pattern is well-formed glob syntax.
func Valid(pattern string) bool {
	return doublestar.ValidatePattern(normalize(pattern))
}

func normalize(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), "//", "/")
}

func normalizePath(p string) string {
	return normalize(strings.ReplaceAll(p, `\`, "/"))
}
