package cache

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/internal/logger"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/errors"
)

// Operation renders cache management results for the command line.
type Operation struct {
	manager Manager
}

// NewOperation creates a new cache operation instance.
func NewOperation(manager Manager) *Operation {
	return &Operation{
		manager: manager,
	}
}

// Clean cleans the cache based on the provided options and returns a summary.
func (op *Operation) Clean(all, indexes, packages bool) (string, error) {
	options := CleanOptions{
		All:      all,
		Indexes:  indexes,
		Packages: packages,
	}

	logger.Debug("Cleaning cache", logger.Fields{
		"all":      options.All,
		"indexes":  options.Indexes,
		"packages": options.Packages,
	})

	result, err := op.manager.Clean(options)
	if err != nil {
		return "", err
	}

	if result.TotalFreed == 0 {
		return "No files were removed from the cache.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cleaned cache. Freed %s of disk space.", formatBytes(result.TotalFreed))
	if result.IndexFreed > 0 {
		fmt.Fprintf(&b, "\n- Indexes: %s", formatBytes(result.IndexFreed))
	}
	if result.PackageFreed > 0 {
		fmt.Fprintf(&b, "\n- Packages: %s", formatBytes(result.PackageFreed))
	}
	return b.String(), nil
}

// GetInfo returns a printable description of the cache.
func (op *Operation) GetInfo() (string, error) {
	info, err := op.manager.GetInfo()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Cache Information:
  Directory:    %s
  Total Size:   %s
  Indexes:      %s (%d files)
  Packages:     %s (%d files)`,
		info.Directory,
		formatBytes(info.TotalSize),
		formatBytes(info.IndexSize),
		info.IndexFiles,
		formatBytes(info.PackageSize),
		info.PackageFiles,
	), nil
}

// GetDirectory returns the cache directory path.
func (op *Operation) GetDirectory() string {
	return op.manager.GetDirectory()
}

// SetDirectory sets a new cache directory.
func (op *Operation) SetDirectory(dir string) error {
	if dir == "" {
		return errors.ErrCacheDirectory
	}

	logger.Debug("Setting cache directory", logger.Fields{"directory": dir})
	return op.manager.SetDirectory(dir)
}

func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
