package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/cache"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/cache/mocks"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/errors"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/fsutil"
)

func TestNewDefaultManager(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	mgr, err := cache.NewDefaultManager()
	require.NoError(t, err)

	userCacheDir, err := os.UserCacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(userCacheDir, fsutil.AppName), mgr.GetDirectory())
	assert.DirExists(t, mgr.GetDirectory())
	assert.Equal(t, filepath.Join(mgr.GetDirectory(), "packages"), mgr.PackageDir())
	assert.Equal(t, filepath.Join(mgr.GetDirectory(), "indexes"), mgr.IndexDir())
}

func TestSetDirectory(t *testing.T) {
	tests := []struct {
		name        string
		directory   string
		expectError bool
	}{
		{name: "valid directory", directory: t.TempDir()},
		{name: "empty directory", directory: "", expectError: true},
		{name: "non-existent directory", directory: filepath.Join(t.TempDir(), "nonexistent")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := cache.NewManager(t.TempDir())
			err := mgr.SetDirectory(tt.directory)
			if tt.expectError {
				require.ErrorIs(t, err, errors.ErrCacheDirectory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.directory, mgr.GetDirectory())
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name         string
		options      cache.CleanOptions
		indexGone    bool
		packagesGone bool
	}{
		{name: "all", options: cache.CleanOptions{All: true}, indexGone: true, packagesGone: true},
		{name: "defaults to all", options: cache.CleanOptions{}, indexGone: true, packagesGone: true},
		{name: "indexes only", options: cache.CleanOptions{Indexes: true}, indexGone: true},
		{name: "packages only", options: cache.CleanOptions{Packages: true}, packagesGone: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			setupTestCache(t, dir)

			result, err := cache.NewManager(dir).Clean(tt.options)
			require.NoError(t, err)

			indexFile := filepath.Join(dir, "indexes", "main-0123.xml")
			pkgFile := filepath.Join(dir, "packages", "gcc-11.tar.gz")
			if tt.indexGone {
				assert.NoFileExists(t, indexFile)
				assert.Equal(t, int64(15), result.IndexFreed)
				assert.DirExists(t, filepath.Join(dir, "indexes"), "directories are recreated")
			} else {
				assert.FileExists(t, indexFile)
				assert.Zero(t, result.IndexFreed)
			}
			if tt.packagesGone {
				assert.NoFileExists(t, pkgFile)
				assert.Equal(t, int64(26), result.PackageFreed)
			} else {
				assert.FileExists(t, pkgFile)
				assert.Zero(t, result.PackageFreed)
			}
			assert.Equal(t, result.IndexFreed+result.PackageFreed, result.TotalFreed)
		})
	}
}

func TestCleanNonExistentDirectories(t *testing.T) {
	dir := t.TempDir()
	result, err := cache.NewManager(dir).Clean(cache.CleanOptions{All: true})
	require.NoError(t, err)
	assert.Zero(t, result.TotalFreed)
	assert.NoDirExists(t, filepath.Join(dir, "packages"))
}

func TestGetInfo(t *testing.T) {
	dir := t.TempDir()
	setupTestCache(t, dir)

	info, err := cache.NewManager(dir).GetInfo()
	require.NoError(t, err)
	assert.Equal(t, dir, info.Directory)
	assert.Equal(t, int64(15), info.IndexSize)
	assert.Equal(t, int64(26), info.PackageSize)
	assert.Equal(t, int64(41), info.TotalSize)
	assert.Equal(t, 1, info.IndexFiles)
	assert.Equal(t, 2, info.PackageFiles)
}

func TestGetInfoMissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nonexistent")
	info, err := cache.NewManager(missing).GetInfo()
	require.NoError(t, err)
	assert.Equal(t, missing, info.Directory)
	assert.Zero(t, info.TotalSize)
	assert.Zero(t, info.PackageFiles)
}

func setupTestCache(t *testing.T, baseDir string) {
	t.Helper()
	files := map[string]string{
		"indexes/main-0123.xml":  "<repo></repo>\n\n",
		"packages/gcc-11.tar.gz": "gcc archive data",
		"packages/sub/make.zip":  "make data!",
	}
	for rel, content := range files {
		full := filepath.Join(baseDir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), fsutil.DirModeDefault))
		require.NoError(t, os.WriteFile(full, []byte(content), fsutil.FileModeDefault))
	}
}

func TestOperation_Clean(t *testing.T) {
	dir := t.TempDir()
	setupTestCache(t, dir)
	op := cache.NewOperation(cache.NewManager(dir))

	msg, err := op.Clean(false, false, true)
	require.NoError(t, err)
	assert.Contains(t, msg, "Freed 26 B")
	assert.Contains(t, msg, "- Packages: 26 B")
	assert.NotContains(t, msg, "Indexes")

	msg, err = op.Clean(false, false, true)
	require.NoError(t, err)
	assert.Equal(t, "No files were removed from the cache.", msg)
}

func TestOperation_GetInfo(t *testing.T) {
	dir := t.TempDir()
	setupTestCache(t, dir)
	op := cache.NewOperation(cache.NewManager(dir))

	info, err := op.GetInfo()
	require.NoError(t, err)
	assert.Contains(t, info, "Cache Information:")
	assert.Contains(t, info, dir)
	assert.Contains(t, info, "Total Size:   41 B")
	assert.Contains(t, info, "Packages:     26 B (2 files)")
}

func TestOperation_PropagatesManagerErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	mgr := mocks.NewMockManager(ctrl)
	mgr.EXPECT().Clean(cache.CleanOptions{Indexes: true}).Return(nil, errors.ErrCacheClean)
	mgr.EXPECT().GetInfo().Return(nil, errors.ErrCacheInfo)

	op := cache.NewOperation(mgr)
	_, err := op.Clean(false, true, false)
	require.ErrorIs(t, err, errors.ErrCacheClean)
	_, err = op.GetInfo()
	require.ErrorIs(t, err, errors.ErrCacheInfo)
}

func TestOperation_SetDirectory(t *testing.T) {
	dir := t.TempDir()
	op := cache.NewOperation(cache.NewManager(dir))

	newDir := filepath.Join(dir, "new_cache")
	require.NoError(t, op.SetDirectory(newDir))
	assert.Equal(t, newDir, op.GetDirectory())

	err := op.SetDirectory("")
	require.ErrorIs(t, err, errors.ErrCacheDirectory)
	assert.Contains(t, err.Error(), "cache directory cannot be empty")
}
