// Package archive identifies, extracts and creates package archives.
package archive

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"

	pkgerrors "github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/errors"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/fsutil"
)

// EntryFunc is called with the slash-separated, root-relative path of every file or
// symlink written during extraction, before the next entry is processed.
type EntryFunc func(rel string) error

// Manager handles archive extraction and creation operations.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// openFS opens archivePath as a file system. Files that are not a recognised archive
// format are rejected rather than served as a single-file FS.
func openFS(ctx context.Context, archivePath string) (fs.FS, func(), error) {
	if err := identify(ctx, archivePath); err != nil {
		return nil, nil, err
	}
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open archive file: %w", err)
	}
	release := func() {}
	if closer, ok := fsys.(io.Closer); ok {
		release = func() { _ = closer.Close() }
	}
	return fsys, release, nil
}

func identify(ctx context.Context, archivePath string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w", err)
	}
	defer func() { _ = f.Close() }()

	format, _, err := archives.Identify(ctx, filepath.Base(archivePath), f)
	if err != nil {
		return fmt.Errorf("unrecognised archive %s: %w: %w", archivePath, pkgerrors.ErrCorruptArchive, err)
	}
	if _, ok := format.(archives.Extractor); !ok {
		return fmt.Errorf("%s is compressed but not an archive: %w", archivePath, pkgerrors.ErrCorruptArchive)
	}
	return nil
}

// UncompressedSize returns the sum of the declared sizes of every regular file in the archive.
// It returns -1 together with the error when the archive cannot be read.
func (am *Manager) UncompressedSize(ctx context.Context, archivePath string) (int64, error) {
	if st, err := os.Stat(archivePath); err != nil {
		return -1, err
	} else if st.IsDir() {
		return -1, fmt.Errorf("%s is a directory: %w", archivePath, pkgerrors.ErrCorruptArchive)
	}

	fsys, release, err := openFS(ctx, archivePath)
	if err != nil {
		return -1, err
	}
	defer release()

	var total int64
	err = fs.WalkDir(fsys, ".", func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return -1, fmt.Errorf("failed to read archive %s: %w", archivePath, err)
	}
	return total, nil
}

// ExtractAll extracts all files from an archive into destDir, reporting every written
// file and symlink to onEntry. Every write goes through an os.Root opened on destDir, so
// entries that would land outside destDir, directly or through a previously extracted
// symlink, are rejected.
func (am *Manager) ExtractAll(ctx context.Context, archivePath, destDir string, onEntry EntryFunc) error {
	fsys, release, err := openFS(ctx, archivePath)
	if err != nil {
		return err
	}
	defer release()

	if err := fsutil.EnsureDir(destDir); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	root, err := os.OpenRoot(destDir)
	if err != nil {
		return fmt.Errorf("failed to open destination directory: %w", err)
	}
	defer func() { _ = root.Close() }()

	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		written, err := am.extractEntry(fsys, root, path, d)
		if err != nil || !written || onEntry == nil {
			return err
		}
		return onEntry(path)
	})
}

// Create writes a tar.gz archive holding the contents of sourceDir.
func (am *Manager) Create(ctx context.Context, sourceDir, archivePath string) error {
	absolutePath, err := filepath.Abs(sourceDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for source directory: %w", err)
	}

	archiveFiles, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		absolutePath + string(os.PathSeparator): "",
	})
	if err != nil {
		return fmt.Errorf("failed to read files from disk: %w", err)
	}

	file, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", archivePath, err)
	}
	defer func() {
		_ = file.Sync()
		_ = file.Close()
	}()

	format := archives.CompressedArchive{
		Compression: archives.Gz{},
		Archival:    archives.Tar{},
	}
	if err := format.Archive(ctx, file, archiveFiles); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	return nil
}

// extractEntry writes a single archive entry below root and reports whether a
// file or symlink was produced.
func (am *Manager) extractEntry(fsys fs.FS, root *os.Root, path string, d fs.DirEntry) (bool, error) {
	if path == "." {
		return false, nil
	}
	rel := filepath.FromSlash(path)
	if !filepath.IsLocal(rel) {
		return false, fmt.Errorf("entry %q escapes the destination: %w", path, pkgerrors.ErrInvalidPath)
	}

	if d.IsDir() {
		if err := root.MkdirAll(rel, fsutil.DirModeDefault); err != nil {
			return false, entryError(path, err)
		}
		return false, nil
	}

	info, err := d.Info()
	if err != nil {
		return false, fmt.Errorf("failed to get file info for %s: %w", path, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		return true, am.writeSymlink(fsys, root, path, info)
	}
	if !info.Mode().IsRegular() {
		return false, nil
	}
	return true, am.writeRegularFile(fsys, root, path, info)
}

// entryError reports a failed write of an archive entry. Failures to resolve the entry
// inside the destination, such as a path through a symlink leading out of it, are
// marked as invalid paths.
func entryError(path string, err error) error {
	var pathErr *fs.PathError
	if stderrors.As(err, &pathErr) && strings.Contains(pathErr.Err.Error(), "escapes") {
		return fmt.Errorf("entry %q escapes the destination: %w: %w", path, pkgerrors.ErrInvalidPath, err)
	}
	return fmt.Errorf("failed to extract %s: %w", path, err)
}

// ensureParent creates the directory holding rel inside root.
func ensureParent(root *os.Root, rel string) error {
	dir := filepath.Dir(rel)
	if dir == "." {
		return nil
	}
	return root.MkdirAll(dir, fsutil.DirModeDefault)
}

// writeSymlink recreates the symlink stored at path.
func (am *Manager) writeSymlink(fsys fs.FS, root *os.Root, path string, info fs.FileInfo) error {
	var target string
	if fi, ok := info.(archives.FileInfo); ok && fi.LinkTarget != "" {
		target = fi.LinkTarget
	} else if rl, ok := fsys.(fs.ReadLinkFS); ok {
		t, err := rl.ReadLink(path)
		if err != nil {
			return fmt.Errorf("failed to read symlink %s: %w", path, err)
		}
		target = t
	} else {
		linkTarget, err := fsys.Open(path)
		if err != nil {
			return fmt.Errorf("failed to read symlink %s: %w", path, err)
		}
		targetBytes, err := io.ReadAll(linkTarget)
		_ = linkTarget.Close()
		if err != nil {
			return fmt.Errorf("failed to read symlink target %s: %w", path, err)
		}
		target = string(targetBytes)
	}

	rel := filepath.FromSlash(path)
	if err := ensureParent(root, rel); err != nil {
		return entryError(path, err)
	}
	_ = root.Remove(rel)
	if err := root.Symlink(target, rel); err != nil {
		return entryError(path, err)
	}
	return nil
}

// writeRegularFile writes a regular file from the archive entry into root and preserves metadata.
// Existing files are replaced, since packages overwrite each other's paths in the shared root.
func (am *Manager) writeRegularFile(fsys fs.FS, root *os.Root, path string, info fs.FileInfo) error {
	srcFile, err := fsys.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", path, err)
	}
	defer func() { _ = srcFile.Close() }()

	rel := filepath.FromSlash(path)
	if err := ensureParent(root, rel); err != nil {
		return entryError(path, err)
	}
	// A symlink left at the target by another package is replaced, not written through.
	if st, err := root.Lstat(rel); err == nil && st.Mode()&os.ModeSymlink != 0 {
		_ = root.Remove(rel)
	}

	dstFile, err := root.OpenFile(rel, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return entryError(path, err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return fmt.Errorf("failed to copy file %s: %w", path, err)
	}
	if err := dstFile.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	if err := root.Chmod(rel, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set permissions for %s: %w", path, err)
	}
	if err := root.Chtimes(rel, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set modification time for %s: %w", path, err)
	}
	return nil
}
