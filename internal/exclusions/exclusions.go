// Package exclusions holds the shared predicate deciding which paths are
// ineligible for indexing. Both the auto-indexer and the retrieval engine's
// text search consult it, so the two never disagree about what is visible.
package exclusions

import (
	"path/filepath"
	"strings"
)

// MaxFileSize is the largest file the engine will index (1 MiB).
const MaxFileSize = 1 << 20

// excludedDirs are directory names that never contain indexable source.
var excludedDirs = map[string]bool{
	"node_modules":  true,
	"target":        true,
	"dist":          true,
	"build":         true,
	"vendor":        true,
	".next":         true,
	"__pycache__":   true,
	"venv":          true,
	".venv":         true,
	"coverage":      true,
	".nyc_output":   true,
	".git":          true,
	".hg":           true,
	".svn":          true,
	"out":           true,
	".output":       true,
	".nuxt":         true,
	".cache":        true,
	".parcel-cache": true,
	".turbo":        true,
}

// ExcludedDir reports whether a single directory name is in the fixed
// exclusion set or hidden. Used as a walk filter before descending.
func ExcludedDir(name string) bool {
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		return true
	}
	return excludedDirs[name]
}

// ExcludedPath reports whether any component of a (slash- or OS-separated)
// path is excluded or hidden.
func ExcludedPath(path string) bool {
	for _, comp := range strings.Split(filepath.ToSlash(path), "/") {
		if comp == "" || comp == "." || comp == ".." {
			continue
		}
		if ExcludedDir(comp) {
			return true
		}
	}
	return false
}

// TooLarge reports whether a file exceeds the size cap.
func TooLarge(size int64) bool {
	return size > MaxFileSize
}
