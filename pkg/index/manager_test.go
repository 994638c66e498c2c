package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/download"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/fsutil"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/platform"
)

// fakeFetcher serves descriptors from memory keyed by URL.
type fakeFetcher struct {
	mu      sync.Mutex
	content map[string]string
	calls   []string
	batches int
}

func (f *fakeFetcher) FetchAll(_ context.Context, items []download.Item, opts download.Options) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches++
	paths := make(map[string]string)
	failed := make(map[string]error)
	for _, item := range items {
		f.calls = append(f.calls, item.URL.String())
		body, ok := f.content[item.URL.String()]
		if !ok {
			failed[item.ID] = fmt.Errorf("unexpected status code: 404")
			continue
		}
		path := filepath.Join(opts.Dir, item.Filename)
		if err := fsutil.EnsureDir(opts.Dir); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte(body), fsutil.FileModeDefault); err != nil {
			return nil, err
		}
		paths[item.ID] = path
	}
	if len(failed) > 0 {
		return paths, &download.BatchError{Failed: failed}
	}
	return paths, nil
}

type fakeDescriptions struct {
	data []byte
	dir  string
}

func (f fakeDescriptions) Descriptions() ([]byte, error) { return f.data, nil }
func (f fakeDescriptions) Dir() string                   { return f.dir }

func TestManager_LoadSet(t *testing.T) {
	fetcher := &fakeFetcher{content: map[string]string{
		"https://one.example/repo.xml": `<repo>
			<package><name>gcc</name><version>11</version><arch>aarch64</arch></package>
			<package><name>gcc-x86</name><version>11</version><arch>x86_64</arch></package>
			<package><name>headers</name><version>1</version><arch>all</arch></package>
		</repo>`,
		"https://two.example/repo.xml": `<repo>
			<package><name>gcc</name><version>11</version><arch>aarch64</arch></package>
			<package><name>gcc</name><version>12</version><arch>aarch64</arch></package>
		</repo>`,
	}}
	installed := fakeDescriptions{
		data: []byte(`<package><name>gcc</name><version>10</version></package>`),
		dir:  "/state",
	}
	repos := []*Repository{
		{Name: "one", Location: "https://one.example", Enabled: true},
		{Name: "two", Location: "https://two.example/", Enabled: true},
		{Name: "off", Location: "https://off.example", Enabled: false},
	}
	m := NewManager(repos, t.TempDir(), fetcher, installed, Options{Platform: platform.New("arm64", ""), TTL: time.Hour})

	set, err := m.LoadSet(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"gcc", "headers", "gcc"}, set.Available.Names())
	assert.True(t, set.Available.IsPresentVersion("gcc", "12"))
	assert.False(t, set.Available.IsPresent("gcc-x86"), "foreign architectures are filtered")
	assert.Equal(t, "https://one.example", set.Available.FindByName("gcc").SourceLocation)

	require.Len(t, set.Installed, 1)
	assert.Equal(t, "/state", set.Installed[0].SourceLocation)
	assert.Len(t, fetcher.calls, 2, "disabled repositories are never fetched")
	assert.Equal(t, 1, fetcher.batches, "stale descriptors are fetched in one batch")
}

func TestManager_SyncRespectsTTL(t *testing.T) {
	fetcher := &fakeFetcher{content: map[string]string{
		"https://one.example/repo.xml": `<repo><package><name>a</name><version>1</version></package></repo>`,
	}}
	repo := &Repository{Name: "one", Location: "https://one.example", Enabled: true}
	m := NewManager([]*Repository{repo}, t.TempDir(), fetcher, nil, Options{TTL: time.Hour})

	require.NoError(t, m.Sync(context.Background(), false))
	require.NoError(t, m.Sync(context.Background(), false))
	assert.Len(t, fetcher.calls, 1, "a fresh cache is reused")

	require.NoError(t, m.Sync(context.Background(), true))
	assert.Len(t, fetcher.calls, 2, "force always fetches")

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.True(t, m.IsCacheStale(repo))
	require.NoError(t, m.Sync(context.Background(), false))
	assert.Len(t, fetcher.calls, 3)
}

func TestManager_UnreachableRepositoryLooksEmpty(t *testing.T) {
	fetcher := &fakeFetcher{content: map[string]string{}}
	repo := &Repository{Name: "down", Location: "https://down.example", Enabled: true}
	m := NewManager([]*Repository{repo}, t.TempDir(), fetcher, nil, Options{})

	err := m.Sync(context.Background(), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repository down")

	available, err := m.LoadAvailable(context.Background())
	require.NoError(t, err)
	assert.Empty(t, available)
}

func TestManager_SyncKeepsHealthyRepositories(t *testing.T) {
	fetcher := &fakeFetcher{content: map[string]string{
		"https://up.example/repo.xml": `<repo><package><name>make</name><version>4.4</version></package></repo>`,
	}}
	repos := []*Repository{
		{Name: "up", Location: "https://up.example", Enabled: true},
		{Name: "down", Location: "https://down.example", Enabled: true},
	}
	m := NewManager(repos, t.TempDir(), fetcher, nil, Options{TTL: time.Hour})

	err := m.Sync(context.Background(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repository down")
	assert.NotContains(t, err.Error(), "repository up")
	assert.False(t, m.IsCacheStale(repos[0]))
	assert.True(t, m.IsCacheStale(repos[1]))

	require.Error(t, m.Sync(context.Background(), false))
	assert.Equal(t, []string{
		"https://up.example/repo.xml",
		"https://down.example/repo.xml",
		"https://down.example/repo.xml",
	}, fetcher.calls, "only the failed repository is retried")
}

func TestManager_CachePath(t *testing.T) {
	m := NewManager(nil, "/cache/indexes", nil, nil, Options{})
	a := m.CachePath(&Repository{Name: "main repo", Location: "https://a.example"})
	b := m.CachePath(&Repository{Name: "main repo", Location: "https://b.example"})

	assert.NotEqual(t, a, b)
	assert.Equal(t, "/cache/indexes", filepath.Dir(a))
	assert.Regexp(t, `^main_repo-[0-9a-f]{16}\.xml$`, filepath.Base(a))
}

func TestManager_LocalRepositoryWithDownloadManager(t *testing.T) {
	repoDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, DefaultIndexFile),
		[]byte(`<repo><package><name>make</name><version>4.3</version><file>make.zip</file></package></repo>`), fsutil.FileModeDefault))

	repo := &Repository{Name: "local", Location: repoDir, Enabled: true}
	m := NewManager([]*Repository{repo}, t.TempDir(), download.NewManager(time.Minute, ""), nil, Options{})

	available, err := m.LoadAvailable(context.Background())
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, filepath.Join(repoDir, "make.zip"), available[0].ArchiveURL())
}
