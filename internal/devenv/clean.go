package devenv

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// CleanTargets expands patterns below root and returns the matches,
// sorted, with paths nested inside another match removed.
func CleanTargets(root string, patterns []string) ([]string, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var matches []string
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid clean pattern %q", pattern)
		}
		found, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("expand clean pattern %q: %w", pattern, err)
		}
		for _, m := range found {
			if m == "." || seen[m] {
				continue
			}
			seen[m] = true
			matches = append(matches, m)
		}
	}
	sort.Strings(matches)

	var out []string
	for _, m := range matches {
		if !withinAny(m, out) {
			out = append(out, m)
		}
	}
	for i, m := range out {
		out[i] = filepath.Join(root, filepath.FromSlash(m))
	}
	return out, nil
}

// withinAny reports whether the slash path p lies inside one of dirs.
func withinAny(p string, dirs []string) bool {
	for _, dir := range dirs {
		if strings.HasPrefix(p, dir+"/") {
			return true
		}
	}
	return false
}
