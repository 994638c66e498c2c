package index

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/internal/logger"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/download"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/errors"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/model"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/platform"
)

// Fetcher downloads a batch of items into a directory. download.Manager satisfies it.
type Fetcher interface {
	FetchAll(ctx context.Context, items []download.Item, opts download.Options) (map[string]string, error)
}

// DescriptionSource provides the installed package descriptions.
type DescriptionSource interface {
	// Descriptions returns the concatenation of every installed package description.
	Descriptions() ([]byte, error)
	// Dir is the directory the descriptions live in.
	Dir() string
}

// Options tune the index manager.
type Options struct {
	Platform    platform.Platform
	TTL         time.Duration // cached descriptors younger than this are not fetched again
	Concurrency int           // parallel repository syncs; <=0 means NumCPU
}

// ManagerImpl syncs repository descriptors into the index cache and materializes package sets.
type ManagerImpl struct {
	repos     []*Repository
	indexDir  string
	fetcher   Fetcher
	installed DescriptionSource
	opts      Options
	now       func() time.Time
}

// NewManager creates an index manager for the given repositories.
func NewManager(repos []*Repository, indexDir string, fetcher Fetcher, installed DescriptionSource, opts Options) *ManagerImpl {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	return &ManagerImpl{
		repos:     repos,
		indexDir:  indexDir,
		fetcher:   fetcher,
		installed: installed,
		opts:      opts,
		now:       time.Now,
	}
}

// Repositories returns the configured repositories.
func (m *ManagerImpl) Repositories() []*Repository {
	return m.repos
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// CachePath returns where the descriptor of repo is cached. The location hash keeps two
// repositories with the same name but different locations apart.
func (m *ManagerImpl) CachePath(repo *Repository) string {
	name := unsafeNameChars.ReplaceAllString(repo.Name, "_")
	return filepath.Join(m.indexDir, fmt.Sprintf("%s-%016x.xml", name, xxhash.Sum64String(repo.Location)))
}

// IsCacheStale reports whether the cached descriptor is missing or older than the TTL.
func (m *ManagerImpl) IsCacheStale(repo *Repository) bool {
	st, err := os.Stat(m.CachePath(repo))
	if err != nil {
		return true
	}
	return st.ModTime().Add(m.opts.TTL).Before(m.now())
}

// Sync fetches the descriptor of every enabled repository whose cache is stale, or all of them when
// force is set. The descriptors are downloaded as one batch; failures of individual repositories are
// collected and returned together and the previously cached descriptor, if any, is kept.
func (m *ManagerImpl) Sync(ctx context.Context, force bool) error {
	if m.fetcher == nil {
		return fmt.Errorf("download manager is not configured")
	}

	// Items are keyed by cache file, which stays unique even for repositories sharing a name.
	var (
		items []download.Item
		names = make(map[string]string)
	)
	for _, repo := range m.repos {
		if !repo.Enabled {
			continue
		}
		if !force && !m.IsCacheStale(repo) {
			logger.Debug("Repository index is fresh", logger.Fields{"repository": repo.Name})
			continue
		}
		file := filepath.Base(m.CachePath(repo))
		names[file] = repo.Name
		items = append(items, download.Item{ID: file, URL: repo.IndexURL(), Filename: file})
	}
	if len(items) == 0 {
		return nil
	}

	paths, err := m.fetcher.FetchAll(ctx, items, download.Options{
		Dir:         m.indexDir,
		Force:       true,
		Concurrency: m.opts.Concurrency,
	})
	for _, item := range items {
		if path, ok := paths[item.ID]; ok {
			logger.Debug("Repository index synced", logger.Fields{"repository": names[item.ID], "path": path})
		}
	}
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var batch *download.BatchError
	if !stderrors.As(err, &batch) {
		return errors.Wrap(err, "failed to sync repositories")
	}
	errs := make([]error, 0, len(batch.Failed))
	for _, item := range items {
		failed, ok := batch.Failed[item.ID]
		if !ok {
			continue
		}
		logger.Warn("Failed to sync repository", logger.Fields{"repository": names[item.ID], "error": failed.Error()})
		errs = append(errs, errors.Wrapf(failed, "repository %s", names[item.ID]))
	}
	return stderrors.Join(errs...)
}

// LoadAvailable syncs stale repositories and parses every cached descriptor, keeping the records
// built for the configured architecture. A repository that could not be fetched contributes
// nothing, exactly like an empty one.
func (m *ManagerImpl) LoadAvailable(ctx context.Context) (List, error) {
	if err := m.Sync(ctx, false); err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		logger.Warn("Some repositories could not be synced", logger.Fields{"error": err.Error()})
	}

	var available List
	for _, repo := range m.repos {
		if !repo.Enabled {
			continue
		}
		data, err := os.ReadFile(m.CachePath(repo))
		if err != nil {
			logger.Debug("No cached index for repository", logger.Fields{"repository": repo.Name})
			continue
		}
		records := Parse(data, repo.BaseLocation()).Filter(func(r *model.PackageRecord) bool {
			return m.opts.Platform.Arch == "" || m.opts.Platform.Accepts(r.Arch)
		})
		available = available.Merge(records)
	}
	return available, nil
}

// LoadInstalled parses the descriptions of the installed packages.
func (m *ManagerImpl) LoadInstalled() (List, error) {
	if m.installed == nil {
		return List{}, nil
	}
	data, err := m.installed.Descriptions()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read installed package descriptions")
	}
	return Parse(data, m.installed.Dir()).UniqueByName(), nil
}

// LoadSet materializes both package lists.
func (m *ManagerImpl) LoadSet(ctx context.Context) (*Set, error) {
	available, err := m.LoadAvailable(ctx)
	if err != nil {
		return nil, err
	}
	installed, err := m.LoadInstalled()
	if err != nil {
		return nil, err
	}
	return NewSet(available, installed), nil
}
