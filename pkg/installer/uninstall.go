package installer

import (
	"context"
	"os"
	"path/filepath"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/internal/logger"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/fsutil"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/hooks"
)

// Uninstall removes every file recorded in the manifest of name. It returns false when no
// manifest exists. Individual deletion failures are logged and skipped.
func (e *Engine) Uninstall(ctx context.Context, name string) bool {
	paths, err := e.layout.ReadManifest(name)
	if err != nil {
		logger.Debug("Nothing to uninstall", logger.Fields{"package": name, "error": err.Error()})
		return false
	}

	prerm := e.layout.PrermPath(name)
	if _, err := os.Stat(prerm); err == nil {
		if err := e.runner.Run(ctx, hooks.PreRemove, name, prerm); err != nil {
			logger.Warn("Pre-removal script failed", logger.Fields{"package": name, "error": err.Error()})
		}
		removeLogged(prerm)
	}
	removeLogged(e.layout.DescriptionPath(name))

	e.removeFiles(name, paths)
	removeLogged(e.layout.ManifestPath(name))

	logger.Info("Uninstalled package", logger.Fields{"package": name, "files": len(paths)})
	return true
}

func removeLogged(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Debug("Could not delete file", logger.Fields{"path": path, "error": err.Error()})
	}
}

// removeFiles deletes the root-relative paths of a manifest through an os.Root, so an entry
// reached through a symlink leading out of the root is never deleted, then prunes the
// directories left empty.
func (e *Engine) removeFiles(name string, paths []string) {
	root, err := os.OpenRoot(e.root)
	if err != nil {
		logger.Warn("Could not open the install root", logger.Fields{"package": name, "error": err.Error()})
		return
	}
	defer func() { _ = root.Close() }()

	dirs := make([]string, 0, len(paths))
	for _, rel := range paths {
		local := filepath.FromSlash(rel)
		if !filepath.IsLocal(local) {
			logger.Debug("Skipping manifest entry outside the root", logger.Fields{"package": name, "path": rel})
			continue
		}
		if err := root.Remove(local); err != nil && !os.IsNotExist(err) {
			logger.Debug("Could not delete file", logger.Fields{"package": name, "path": rel, "error": err.Error()})
		}
		dirs = append(dirs, filepath.Dir(local))
	}
	fsutil.RemoveEmptyDirs(root, dirs)
}
