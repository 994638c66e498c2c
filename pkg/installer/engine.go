// Package installer executes resolved plans against the toolchain root and removes
// installed packages again.
package installer

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/internal/logger"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/database"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/download"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/errors"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/fsutil"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/hooks"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/index"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/model"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/resolver"
)

const progressBuffer = 32

// Options wires the engine to its collaborators.
type Options struct {
	RootDir    string
	CacheDir   string // package archive cache
	Layout     *database.Layout
	Downloader download.Manager
	Archiver   Archiver
	Runner     hooks.Runner
	Hooks      Hooks     // optional
	FreeSpace  SpaceFunc // defaults to fsutil.FreeSpace
}

// Engine runs one transaction at a time against a single toolchain root.
// Callers must serialize Execute and Uninstall.
type Engine struct {
	root       string
	cacheDir   string
	layout     *database.Layout
	downloader download.Manager
	archiver   Archiver
	runner     hooks.Runner
	hooks      Hooks
	freeSpace  SpaceFunc
}

// NewEngine creates an Engine.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		root:       filepath.Clean(opts.RootDir),
		cacheDir:   filepath.Clean(opts.CacheDir),
		layout:     opts.Layout,
		downloader: opts.Downloader,
		archiver:   opts.Archiver,
		runner:     opts.Runner,
		hooks:      opts.Hooks,
		freeSpace:  opts.FreeSpace,
	}
	if e.hooks == nil {
		e.hooks = NopHooks{}
	}
	if e.freeSpace == nil {
		e.freeSpace = fsutil.FreeSpace
	}
	return e
}

// transaction holds the per-Execute bookkeeping.
type transaction struct {
	rc       *resolver.Context
	snapshot map[string]model.InstallState
	queue    []string
	result   *Result
}

// Execute installs every record of plan in order. The first failing package stops the
// plan; packages installed before it stay installed. Post-install scripts of installed
// packages run after the loop whether or not it completed.
func (e *Engine) Execute(ctx context.Context, rc *resolver.Context, plan *model.Plan) (*Result, error) {
	tx := &transaction{
		rc:     rc,
		result: &Result{},
	}
	if plan.Empty() {
		return tx.result, nil
	}
	if err := e.layout.Ensure(); err != nil {
		return tx.result, err
	}
	if err := fsutil.EnsureDir(e.root); err != nil {
		return tx.result, errors.Wrapf(err, "failed to create toolchain root %s", e.root)
	}

	tx.snapshot = e.layout.Snapshot(plan.Names())
	for _, rec := range plan.Records {
		e.emit(Event{Package: rec.Name, Version: rec.Version, State: Planned})
	}

	var txErr error
	for _, rec := range plan.Records {
		var state State
		var err error
		if cerr := ctx.Err(); cerr != nil {
			state, err = Failed, fmt.Errorf("%w: %w", errors.ErrCancelled, cerr)
		} else {
			state, err = e.installOne(ctx, tx, rec)
		}

		tx.result.Packages = append(tx.result.Packages, PackageResult{
			Name: rec.Name, Version: rec.Version, State: state, Err: err,
		})
		if err != nil {
			e.emit(Event{Package: rec.Name, Version: rec.Version, State: Failed, Detail: err.Error(), Err: err})
			logger.Error("Package failed", logger.Fields{"package": rec.Name, "error": err.Error()})
			txErr = &errors.TransactionError{Package: rec.Name, Err: err}
			break
		}
	}

	// Scripts of packages that made it must run even if the transaction was cancelled.
	tx.result.PostInstalled = e.runPostinst(context.WithoutCancel(ctx), tx.queue)
	return tx.result, txErr
}

func (e *Engine) emit(ev Event) {
	logger.Debug("Transition", logger.Fields{"package": ev.Package, "state": ev.State.String()})
	e.hooks.OnEvent(ev)
}

func (e *Engine) installOne(ctx context.Context, tx *transaction, rec *model.PackageRecord) (State, error) {
	if tx.snapshot[rec.Name].HasDescription() {
		old := tx.rc.Set.Installed.FindByName(rec.Name)
		if old != nil && old.Version == rec.Version {
			e.emit(Event{Package: rec.Name, Version: rec.Version, State: Skipped})
			logger.Info("Already installed", logger.Fields{"package": rec.Name, "version": rec.Version})
			return Skipped, nil
		}
		logger.Info("Removing previous version", logger.Fields{"package": rec.Name, "new_version": rec.Version})
		e.removeInstalled(ctx, tx, rec.Name, old)
	}

	for _, replaced := range strings.Fields(rec.Replaces) {
		if replaced == rec.Name {
			continue
		}
		old := tx.rc.Set.Installed.FindByName(replaced)
		if old == nil && e.layout.State(replaced) == model.NotInstalled {
			continue
		}
		e.emit(Event{Package: rec.Name, Version: rec.Version, State: Replacing, Detail: replaced})
		logger.Info("Replacing package", logger.Fields{"package": rec.Name, "replaces": replaced})
		e.removeInstalled(ctx, tx, replaced, old)
	}

	archivePath, err := e.fetch(ctx, rec)
	if err != nil {
		return Failed, err
	}

	if err := e.extract(ctx, rec, archivePath); err != nil {
		return Failed, err
	}

	e.emit(Event{Package: rec.Name, Version: rec.Version, State: Relocating})
	if e.relocate(rec) {
		tx.queue = append(tx.queue, rec.Name)
	}

	tx.rc.Set.MarkInstalled(rec)
	e.emit(Event{Package: rec.Name, Version: rec.Version, State: Installed})
	logger.Success("Installed package", logger.Fields{"package": rec.Name, "version": rec.Version})
	return Installed, nil
}

// removeInstalled uninstalls name and drops the archive that backed the installed record.
func (e *Engine) removeInstalled(ctx context.Context, tx *transaction, name string, old *model.PackageRecord) {
	e.Uninstall(ctx, name)
	if old != nil {
		e.deleteCachedArchive(old)
	}
	tx.rc.Set.MarkRemoved(name)
}

func (e *Engine) archivePath(rec *model.PackageRecord) (string, error) {
	rel := filepath.FromSlash(rec.ArchiveFile)
	if rec.ArchiveFile == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("package %s has invalid archive file %q: %w", rec.Name, rec.ArchiveFile, errors.ErrInvalidPath)
	}
	return filepath.Join(e.cacheDir, rel), nil
}

func (e *Engine) deleteCachedArchive(rec *model.PackageRecord) {
	p, err := e.archivePath(rec)
	if err != nil {
		return
	}
	if err := os.Remove(p); err == nil {
		logger.Debug("Deleted cached archive", logger.Fields{"path": p})
	}
}

// fetch returns the local archive for rec, downloading it unless already cached.
func (e *Engine) fetch(ctx context.Context, rec *model.PackageRecord) (string, error) {
	archivePath, err := e.archivePath(rec)
	if err != nil {
		return "", err
	}

	e.emit(Event{Package: rec.Name, Version: rec.Version, State: Downloading})
	if st, err := os.Stat(archivePath); err == nil && st.Mode().IsRegular() {
		logger.Debug("Using cached archive", logger.Fields{"package": rec.Name, "path": archivePath})
		return archivePath, nil
	}

	e.emit(Event{Package: rec.Name, Version: rec.Version, State: VerifyDownloadSpace})
	if rec.DownloadSize > 0 {
		free, err := e.freeSpace(e.cacheDir)
		switch {
		case err != nil:
			logger.Debug("Could not query cache free space", logger.Fields{"path": e.cacheDir, "error": err.Error()})
		case free < uint64(rec.DownloadSize):
			return "", &errors.InsufficientStorageError{
				Package: rec.Name, Path: e.cacheDir, Required: uint64(rec.DownloadSize), Available: free,
			}
		}
	}

	u, err := url.Parse(rec.ArchiveURL())
	if err != nil {
		return "", fmt.Errorf("invalid archive location for %s: %w", rec.Name, err)
	}

	progress := make(chan download.Progress, progressBuffer)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for p := range progress {
			e.hooks.OnProgress(p)
		}
	}()

	path, err := e.downloader.Fetch(ctx, download.Item{
		ID:       rec.Name,
		URL:      u,
		Filename: rec.ArchiveFile,
		Size:     rec.DownloadSize,
	}, download.Options{Dir: e.cacheDir, Progress: progress})
	close(progress)
	wg.Wait()
	if err != nil {
		return "", err
	}
	return path, nil
}

// extract checks the unpacked size against free space and unpacks while writing the manifest.
func (e *Engine) extract(ctx context.Context, rec *model.PackageRecord, archivePath string) error {
	e.emit(Event{Package: rec.Name, Version: rec.Version, State: Extracting})
	size, err := e.archiver.UncompressedSize(ctx, archivePath)
	if err != nil || size < 0 {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", errors.ErrCancelled, ctx.Err())
		}
		return &errors.CorruptArchiveError{Package: rec.Name, Archive: archivePath, Err: err}
	}

	e.emit(Event{Package: rec.Name, Version: rec.Version, State: VerifyUnpackSpace})
	free, err := e.freeSpace(e.root)
	if err != nil {
		logger.Warn("Could not query free space", logger.Fields{"path": e.root, "error": err.Error()})
	} else if free < uint64(size) {
		return &errors.InsufficientStorageError{
			Package: rec.Name, Path: e.root, Required: uint64(size), Available: free,
		}
	}

	manifest, err := e.layout.CreateManifest(rec.Name)
	if err != nil {
		return err
	}
	if err := e.archiver.ExtractAll(ctx, archivePath, e.root, manifest.Add); err != nil {
		manifest.Discard()
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", errors.ErrCancelled, ctx.Err())
		}
		return &errors.CorruptArchiveError{Package: rec.Name, Archive: archivePath, Err: err}
	}
	logger.Debug("Extracted archive", logger.Fields{"package": rec.Name, "files": manifest.Len()})
	return manifest.Commit()
}

// relocate moves control files from the root into the state directory and reports whether a
// post-install script was found. A missing description is synthesised from the record so the
// package still shows up in the installed set.
func (e *Engine) relocate(rec *model.PackageRecord) bool {
	hasPostinst := false
	for _, control := range database.ControlFiles {
		src := filepath.Join(e.root, control)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		dst, err := e.layout.ControlPath(rec.Name, control)
		if err != nil {
			continue
		}
		if err := fsutil.Copy(src, dst); err != nil {
			logger.Warn("Could not relocate control file", logger.Fields{"package": rec.Name, "file": control, "error": err.Error()})
			continue
		}
		if err := os.Remove(src); err != nil {
			logger.Debug("Could not remove control file from root", logger.Fields{"path": src, "error": err.Error()})
		}
		if control == database.ControlPostinst {
			hasPostinst = true
		}
	}

	descPath := e.layout.DescriptionPath(rec.Name)
	if _, err := os.Stat(descPath); os.IsNotExist(err) {
		data, err := index.Marshal(rec)
		if err == nil {
			err = os.WriteFile(descPath, data, fsutil.FileModeDefault)
		}
		if err != nil {
			logger.Warn("Could not write package description", logger.Fields{"package": rec.Name, "error": err.Error()})
		}
	}
	return hasPostinst
}

// runPostinst runs queued post-install scripts in order and deletes each afterwards.
func (e *Engine) runPostinst(ctx context.Context, queue []string) []string {
	ran := make([]string, 0, len(queue))
	for _, name := range queue {
		script := e.layout.PostinstPath(name)
		if _, err := os.Stat(script); err != nil {
			continue
		}
		if err := e.runner.Run(ctx, hooks.PostInstall, name, script); err != nil {
			logger.Warn("Post-install script failed", logger.Fields{"package": name, "error": err.Error()})
		}
		if err := os.Remove(script); err != nil && !os.IsNotExist(err) {
			logger.Debug("Could not delete post-install script", logger.Fields{"path": script, "error": err.Error()})
		}
		ran = append(ran, name)
	}
	return ran
}
