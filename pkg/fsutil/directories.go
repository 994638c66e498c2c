// Package fsutil holds the filesystem helpers shared by the installer, the cache and the config.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates path and its parents with DirModeDefault. It fails when path exists
// and is not a directory.
func EnsureDir(path string) error {
	if path == "" {
		return fmt.Errorf("directory path cannot be empty")
	}
	return os.MkdirAll(path, DirModeDefault)
}

// EnsureFileDir creates the parent directory of filePath.
func EnsureFileDir(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("file path cannot be empty")
	}
	return EnsureDir(filepath.Dir(filePath))
}
