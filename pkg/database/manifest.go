package database

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/errors"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/fsutil"
)

// ManifestWriter records extracted paths into a temporary file that only becomes
// <name>.list on Commit.
type ManifestWriter struct {
	target string
	tmp    *os.File
	buf    *bufio.Writer
	count  int
	done   bool
}

// CreateManifest starts a manifest for name. Any previous manifest stays in place until Commit.
func (l *Layout) CreateManifest(name string) (*ManifestWriter, error) {
	if err := l.Ensure(); err != nil {
		return nil, err
	}
	target := l.ManifestPath(name)
	tmp, err := os.CreateTemp(l.dir, filepath.Base(target)+".*.tmp")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create manifest for %s", name)
	}
	return &ManifestWriter{target: target, tmp: tmp, buf: bufio.NewWriter(tmp)}, nil
}

// Add records one root-relative path. Control files are ignored.
func (w *ManifestWriter) Add(rel string) error {
	if w.done {
		return fmt.Errorf("manifest %s already closed", w.target)
	}
	if IsControlFile(rel) {
		return nil
	}
	if _, err := w.buf.WriteString(rel + "\n"); err != nil {
		return err
	}
	w.count++
	return nil
}

// Len returns the number of recorded paths.
func (w *ManifestWriter) Len() int { return w.count }

// Commit flushes the manifest and atomically moves it into place.
func (w *ManifestWriter) Commit() error {
	if w.done {
		return fmt.Errorf("manifest %s already closed", w.target)
	}
	w.done = true
	tmpPath := w.tmp.Name()

	if err := w.buf.Flush(); err != nil {
		_ = w.tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "failed to write manifest")
	}
	if err := w.tmp.Sync(); err != nil {
		_ = w.tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "failed to sync manifest")
	}
	if err := w.tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "failed to close manifest")
	}
	if err := os.Chmod(tmpPath, fsutil.FileModeDefault); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "failed to set manifest permissions")
	}
	if err := os.Rename(tmpPath, w.target); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "failed to move manifest to %s", w.target)
	}
	return nil
}

// Discard drops the partially written manifest. It is a no-op after Commit.
func (w *ManifestWriter) Discard() {
	if w.done {
		return
	}
	w.done = true
	_ = w.tmp.Close()
	_ = os.Remove(w.tmp.Name())
}
