package archive

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"testing/fstest"
	"time"

	"github.com/mholt/archives"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/errors"
)

func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func buildArchive(t *testing.T, files map[string]string) string {
	t.Helper()
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "src")
	writeTree(t, src, files)
	archivePath := filepath.Join(tempDir, "pkg.tar.gz")
	require.NoError(t, NewManager().Create(context.Background(), src, archivePath))
	return archivePath
}

func TestManager_ExtractAllReportsEntries(t *testing.T) {
	files := map[string]string{
		"pkgdesc":                 "<package><name>gcc</name></package>",
		"bin/gcc":                 "#!/bin/sh\n",
		"lib/gcc/aarch64/crt1.o":  "object",
		"include/c++/11/iostream": "header",
	}
	archivePath := buildArchive(t, files)
	dest := filepath.Join(t.TempDir(), "root")

	var entries []string
	err := NewManager().ExtractAll(context.Background(), archivePath, dest, func(rel string) error {
		entries = append(entries, rel)
		return nil
	})
	require.NoError(t, err)

	sort.Strings(entries)
	assert.Equal(t, []string{"bin/gcc", "include/c++/11/iostream", "lib/gcc/aarch64/crt1.o", "pkgdesc"}, entries)
	for rel, want := range files {
		got, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(rel)))
		require.NoError(t, err, rel)
		assert.Equal(t, want, string(got))
	}
}

func TestManager_ExtractAllKeepsModes(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "src")
	writeTree(t, src, map[string]string{"bin/cc": "#!/bin/sh\n"})
	require.NoError(t, os.Chmod(filepath.Join(src, "bin", "cc"), 0o755))
	require.NoError(t, os.Symlink("cc", filepath.Join(src, "bin", "gcc")))

	archivePath := filepath.Join(tempDir, "pkg.tar.gz")
	am := NewManager()
	require.NoError(t, am.Create(context.Background(), src, archivePath))

	dest := filepath.Join(tempDir, "root")
	require.NoError(t, am.ExtractAll(context.Background(), archivePath, dest, nil))

	st, err := os.Stat(filepath.Join(dest, "bin", "cc"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), st.Mode().Perm())

	target, err := os.Readlink(filepath.Join(dest, "bin", "gcc"))
	require.NoError(t, err)
	assert.Equal(t, "cc", target)
}

func TestManager_ExtractAllCallbackErrorStops(t *testing.T) {
	archivePath := buildArchive(t, map[string]string{"a": "1", "b": "2"})
	err := NewManager().ExtractAll(context.Background(), archivePath, t.TempDir(), func(string) error {
		return os.ErrPermission
	})
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestManager_ExtractAllCancelled(t *testing.T) {
	archivePath := buildArchive(t, map[string]string{"a": "1"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewManager().ExtractAll(ctx, archivePath, t.TempDir(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestManager_UncompressedSize(t *testing.T) {
	archivePath := buildArchive(t, map[string]string{
		"bin/as": "12345",
		"bin/ld": "1234567890",
	})
	size, err := NewManager().UncompressedSize(context.Background(), archivePath)
	require.NoError(t, err)
	assert.Equal(t, int64(15), size)
}

func TestManager_CorruptArchives(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.bin")
	require.NoError(t, os.WriteFile(garbage, []byte("this is not an archive at all"), 0o644))

	valid := buildArchive(t, map[string]string{"big": string(make([]byte, 64*1024))})
	data, err := os.ReadFile(valid)
	require.NoError(t, err)
	truncated := filepath.Join(dir, "truncated.tar.gz")
	require.NoError(t, os.WriteFile(truncated, data[:len(data)/2], 0o644))

	tests := []struct {
		name string
		path string
	}{
		{name: "unrecognised content", path: garbage},
		{name: "truncated stream", path: truncated},
		{name: "missing file", path: filepath.Join(dir, "missing.zip")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			am := NewManager()
			size, err := am.UncompressedSize(context.Background(), tt.path)
			require.Error(t, err)
			assert.Equal(t, int64(-1), size)

			assert.Error(t, am.ExtractAll(context.Background(), tt.path, t.TempDir(), nil))
		})
	}

	_, err = NewManager().UncompressedSize(context.Background(), garbage)
	assert.ErrorIs(t, err, pkgerrors.ErrCorruptArchive)
}

// entryInfo and dirEntry describe archive entries in the order an archive may list them.
type entryInfo struct {
	name string
	mode fs.FileMode
}

func (i entryInfo) Name() string       { return i.name }
func (i entryInfo) Size() int64        { return 0 }
func (i entryInfo) Mode() fs.FileMode  { return i.mode }
func (i entryInfo) ModTime() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
func (i entryInfo) IsDir() bool        { return i.mode.IsDir() }
func (i entryInfo) Sys() any           { return nil }

type dirEntry struct{ info fs.FileInfo }

func (e dirEntry) Name() string               { return e.info.Name() }
func (e dirEntry) IsDir() bool                { return e.info.IsDir() }
func (e dirEntry) Type() fs.FileMode          { return e.info.Mode().Type() }
func (e dirEntry) Info() (fs.FileInfo, error) { return e.info, nil }

func symlinkEntry(name, target string) dirEntry {
	return dirEntry{archives.FileInfo{
		FileInfo:   entryInfo{name: filepath.Base(name), mode: fs.ModeSymlink | 0o777},
		LinkTarget: target,
	}}
}

func TestManager_ExtractEntryThroughSymlink(t *testing.T) {
	outside := t.TempDir()

	tests := []struct {
		name       string
		linkTarget string
		entry      string
		dir        bool
		wantEscape bool
	}{
		{name: "absolute link then file", linkTarget: outside, entry: "lib/x", wantEscape: true},
		{name: "absolute link then directory", linkTarget: outside, entry: "lib/sub", dir: true, wantEscape: true},
		{name: "parent link then file", linkTarget: "..", entry: "lib/x", wantEscape: true},
		{name: "link inside the root", linkTarget: "usr", entry: "lib/x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "root")
			require.NoError(t, os.MkdirAll(filepath.Join(dest, "usr"), 0o755))
			root, err := os.OpenRoot(dest)
			require.NoError(t, err)
			defer func() { _ = root.Close() }()

			fsys := fstest.MapFS{"lib/x": {Data: []byte("payload"), Mode: 0o644}}
			am := NewManager()

			written, err := am.extractEntry(fsys, root, "lib", symlinkEntry("lib", tt.linkTarget))
			require.NoError(t, err)
			assert.True(t, written)

			mode := fs.FileMode(0o644)
			if tt.dir {
				mode = fs.ModeDir | 0o755
			}
			_, err = am.extractEntry(fsys, root, tt.entry, dirEntry{entryInfo{name: filepath.Base(tt.entry), mode: mode}})

			if tt.wantEscape {
				require.Error(t, err)
				assert.ErrorIs(t, err, pkgerrors.ErrInvalidPath)
				assert.NoFileExists(t, filepath.Join(outside, "x"))
				assert.NoDirExists(t, filepath.Join(outside, "sub"))
				assert.NoFileExists(t, filepath.Join(filepath.Dir(dest), "x"))
				return
			}
			require.NoError(t, err)
			got, err := os.ReadFile(filepath.Join(dest, "usr", "x"))
			require.NoError(t, err)
			assert.Equal(t, "payload", string(got))
		})
	}
}
