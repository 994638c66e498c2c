// Package cache inspects and cleans the index and package archive caches.
package cache

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/errors"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/fsutil"
)

// DefaultManager implements the Manager interface for cache operations.
type DefaultManager struct {
	directory string
}

// NewManager creates a new cache manager.
func NewManager(directory string) *DefaultManager {
	return &DefaultManager{
		directory: directory,
	}
}

// NewDefaultManager creates a new cache manager with default directory.
func NewDefaultManager() (*DefaultManager, error) {
	cacheDir, err := fsutil.GetCacheDir()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get user cache directory")
	}

	if err := fsutil.EnsureDir(cacheDir); err != nil {
		return nil, errors.Wrapf(err, "failed to create cache directory")
	}

	return NewManager(cacheDir), nil
}

// IndexDir returns the directory holding cached repository descriptors.
func (cm *DefaultManager) IndexDir() string {
	return filepath.Join(cm.directory, IndexDirName)
}

// PackageDir returns the directory holding downloaded package archives.
func (cm *DefaultManager) PackageDir() string {
	return filepath.Join(cm.directory, PackageDirName)
}

// Clean removes cached files according to the specified options.
func (cm *DefaultManager) Clean(options CleanOptions) (*CleanResult, error) {
	result := &CleanResult{}

	// Default to cleaning all if no specific flags are set
	if !options.Indexes && !options.Packages {
		options.All = true
	}

	if options.All || options.Indexes {
		size, err := cleanDirectory(cm.IndexDir())
		if err != nil {
			return nil, fmt.Errorf("%w: indexes: %w", errors.ErrCacheClean, err)
		}
		result.IndexFreed = size
		result.TotalFreed += size
	}

	if options.All || options.Packages {
		size, err := cleanDirectory(cm.PackageDir())
		if err != nil {
			return nil, fmt.Errorf("%w: packages: %w", errors.ErrCacheClean, err)
		}
		result.PackageFreed = size
		result.TotalFreed += size
	}

	return result, nil
}

// GetInfo returns information about the cache.
func (cm *DefaultManager) GetInfo() (*Info, error) {
	info := &Info{Directory: cm.directory}

	indexSize, indexFiles, err := getDirSizeAndFiles(cm.IndexDir())
	if err != nil {
		return nil, fmt.Errorf("%w: indexes: %w", errors.ErrCacheInfo, err)
	}
	info.IndexSize = indexSize
	info.IndexFiles = indexFiles

	pkgSize, pkgFiles, err := getDirSizeAndFiles(cm.PackageDir())
	if err != nil {
		return nil, fmt.Errorf("%w: packages: %w", errors.ErrCacheInfo, err)
	}
	info.PackageSize = pkgSize
	info.PackageFiles = pkgFiles

	info.TotalSize = info.IndexSize + info.PackageSize
	return info, nil
}

// GetDirectory returns the cache directory path.
func (cm *DefaultManager) GetDirectory() string {
	return cm.directory
}

// SetDirectory sets the cache directory path.
func (cm *DefaultManager) SetDirectory(dir string) error {
	if dir == "" {
		return errors.ErrCacheDirectory
	}
	cm.directory = dir
	return nil
}

// cleanDirectory empties dir and returns the bytes freed. A missing directory frees nothing.
func cleanDirectory(dir string) (int64, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}
	size, _, err := getDirSizeAndFiles(dir)
	if err != nil {
		return 0, err
	}

	if err := os.RemoveAll(dir); err != nil {
		return 0, errors.Wrapf(err, "failed to remove directory %s", dir)
	}

	if err := fsutil.EnsureDir(dir); err != nil {
		return size, errors.Wrapf(err, "failed to recreate directory %s", dir)
	}

	return size, nil
}

// getDirSizeAndFiles returns the total size and number of regular files below dir.
func getDirSizeAndFiles(dir string) (size int64, count int, err error) {
	err = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		count++
		return nil
	})
	if os.IsNotExist(err) {
		return 0, 0, nil
	}
	if err != nil {
		err = errors.Wrapf(err, "error walking directory %s", dir)
	}
	return size, count, err
}
