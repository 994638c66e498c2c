// Package database manages the installed-state directory: one description, optional
// lifecycle scripts and one file manifest per installed package.
package database

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/internal/logger"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/errors"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/fsutil"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/model"
)

// Control files shipped at the root of an archive.
const (
	ControlDescription = "pkgdesc"
	ControlPrerm       = "prerm"
	ControlPostinst    = "postinst"
)

// ControlFiles lists the control file names in relocation order.
var ControlFiles = []string{ControlDescription, ControlPrerm, ControlPostinst}

const (
	descriptionExt = ".pkgdesc"
	prermExt       = ".prerm"
	postinstExt    = ".postinst"
	manifestExt    = ".list"
)

// IsControlFile reports whether rel names a control file at the archive root.
func IsControlFile(rel string) bool {
	for _, c := range ControlFiles {
		if rel == c {
			return true
		}
	}
	return false
}

// Layout resolves per-package paths inside the state directory.
type Layout struct {
	dir string
}

// NewLayout returns a Layout rooted at stateDir.
func NewLayout(stateDir string) *Layout {
	return &Layout{dir: filepath.Clean(stateDir)}
}

// Dir returns the state directory.
func (l *Layout) Dir() string { return l.dir }

// Ensure creates the state directory if needed.
func (l *Layout) Ensure() error {
	if err := fsutil.EnsureDir(l.dir); err != nil {
		return errors.Wrapf(err, "failed to create state directory %s", l.dir)
	}
	return nil
}

// DescriptionPath returns <state>/<name>.pkgdesc.
func (l *Layout) DescriptionPath(name string) string { return l.path(name, descriptionExt) }

// PrermPath returns <state>/<name>.prerm.
func (l *Layout) PrermPath(name string) string { return l.path(name, prermExt) }

// PostinstPath returns <state>/<name>.postinst.
func (l *Layout) PostinstPath(name string) string { return l.path(name, postinstExt) }

// ManifestPath returns <state>/<name>.list.
func (l *Layout) ManifestPath(name string) string { return l.path(name, manifestExt) }

// ControlPath maps a control file name to its per-package location.
func (l *Layout) ControlPath(name, control string) (string, error) {
	switch control {
	case ControlDescription:
		return l.DescriptionPath(name), nil
	case ControlPrerm:
		return l.PrermPath(name), nil
	case ControlPostinst:
		return l.PostinstPath(name), nil
	default:
		return "", fmt.Errorf("unknown control file %q: %w", control, errors.ErrInvalidPath)
	}
}

func (l *Layout) path(name, ext string) string {
	return filepath.Join(l.dir, filepath.Base(name)+ext)
}

// State derives the install state of one package from the files present.
func (l *Layout) State(name string) model.InstallState {
	if fileExists(l.ManifestPath(name)) {
		return model.Installed
	}
	if fileExists(l.DescriptionPath(name)) {
		return model.DescribedOnly
	}
	return model.NotInstalled
}

// Snapshot captures the install state of every name at one point in time.
func (l *Layout) Snapshot(names []string) map[string]model.InstallState {
	out := make(map[string]model.InstallState, len(names))
	for _, n := range names {
		out[n] = l.State(n)
	}
	return out
}

// Descriptions returns the concatenation of every description file, in name order.
// A missing state directory yields no data.
func (l *Layout) Descriptions() ([]byte, error) {
	matches, err := filepath.Glob(filepath.Join(l.dir, "*"+descriptionExt))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	var buf bytes.Buffer
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			logger.Debug("Skipping unreadable description", logger.Fields{"path": m, "error": err.Error()})
			continue
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// InstalledNames lists packages that have a manifest.
func (l *Layout) InstalledNames() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(l.dir, "*"+manifestExt))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), manifestExt))
	}
	sort.Strings(names)
	return names, nil
}

// ReadManifest returns the root-relative paths recorded for name.
func (l *Layout) ReadManifest(name string) ([]string, error) {
	f, err := os.Open(l.ManifestPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", name, errors.ErrNotInstalled)
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var paths []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read manifest for %s", name)
	}
	return paths, nil
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
