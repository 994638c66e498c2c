package fsutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// existingParent walks up from path until it finds something that exists.
func existingParent(path string) string {
	p := filepath.Clean(path)
	for {
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(p)
		if parent == p {
			return p
		}
		p = parent
	}
}

// RemoveEmptyDirs removes each root-relative directory in dirs and its ancestors while they are
// empty, never removing the root itself. Deepest directories are tried first. Removal goes through
// root, so a path leading out of it via a symlink is left alone.
func RemoveEmptyDirs(root *os.Root, dirs []string) {
	sorted := make([]string, 0, len(dirs))
	for _, d := range dirs {
		d = filepath.Clean(d)
		if d != "." && filepath.IsLocal(d) {
			sorted = append(sorted, d)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return strings.Count(sorted[i], string(os.PathSeparator)) > strings.Count(sorted[j], string(os.PathSeparator))
	})

	for _, dir := range sorted {
		for dir != "." {
			st, err := root.Lstat(dir)
			if err != nil || !st.IsDir() {
				break
			}
			// Remove refuses non-empty directories
			if err := root.Remove(dir); err != nil {
				break
			}
			dir = filepath.Dir(dir)
		}
	}
}
