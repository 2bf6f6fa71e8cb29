// Package pathmatch decides whether one filesystem path lies under another.
//
// The comparison is purely lexical and component-wise: paths are cleaned and
// split into elements, and a path is "under" a directory when the directory's
// elements form a prefix of its own. No filesystem access is performed and
// symlinks are never resolved, so the answer only depends on the spelling of
// the two paths.
package pathmatch

import (
	"path/filepath"
	"strings"
)

// IsUnder reports whether path is dir itself or lies beneath it.
//
// Matching is element-wise, so "/data/projects-old" is not under
// "/data/projects" even though it shares the string prefix. Both arguments
// are cleaned first. Absolute and relative paths never match each other;
// callers that mix them should absolutize first.
func IsUnder(path, dir string) bool {
	pc := Components(path)
	dc := Components(dir)
	if len(dc) > len(pc) {
		return false
	}
	for i, c := range dc {
		if pc[i] != c {
			return false
		}
	}
	return true
}

// Components splits a cleaned path into its elements. The leading element of
// an absolute path is the empty string, which keeps absolute and relative
// paths from ever comparing equal. The root directory is a single empty
// element.
func Components(p string) []string {
	p = filepath.Clean(p)
	sep := string(filepath.Separator)
	if p == sep {
		return []string{""}
	}
	return strings.Split(p, sep)
}
