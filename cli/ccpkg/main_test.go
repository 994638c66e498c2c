package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/config"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/errors"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/test/testutil"
)

type env struct {
	t      *testing.T
	config string
	root   string
	state  string
	repo   *testutil.Repo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWithURL(t, nil)
}

// newEnvWithURL writes a configuration with one repository. The repository is read from its
// directory unless url returns a location for it.
func newEnvWithURL(t *testing.T, url func(*testutil.Repo) string) *env {
	t.Helper()
	base := t.TempDir()
	e := &env{
		t:      t,
		config: filepath.Join(base, "config.yaml"),
		root:   filepath.Join(base, "root"),
		state:  filepath.Join(base, "state"),
		repo:   testutil.NewRepo(t),
	}
	location := e.repo.Dir
	if url != nil {
		location = url(e.repo)
	}

	cfg := fmt.Sprintf(`repositories:
  - name: local
    url: %s
settings:
  root_dir: %s
  state_dir: %s
  cache_dir: %s
  arch: aarch64
`, location, e.root, e.state, filepath.Join(base, "cache"))
	require.NoError(t, os.WriteFile(e.config, []byte(cfg), 0o644))
	return e
}

func (e *env) run(args ...string) (string, error) {
	e.t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.config, "--no-color"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

var (
	hello = testutil.Package{
		Name: "hello", Version: "1.0", Arch: "aarch64", Depends: "libgreet", Description: "Greeter",
		Files: map[string]string{"bin/hello": "hello"},
	}
	libgreet = testutil.Package{
		Name: "libgreet", Version: "2.0", Arch: "all",
		Files: map[string]string{"lib/libgreet.so": "lib"},
	}
)

func TestVersion(t *testing.T) {
	e := newEnv(t)
	out, err := e.run("version")
	require.NoError(t, err)
	assert.Contains(t, out, "ccpkg version")
}

func TestInstallAndUninstall(t *testing.T) {
	e := newEnv(t)
	e.repo.Publish(hello, libgreet)

	_, err := e.run("sync", "--force")
	require.NoError(t, err)

	_, err = e.run("install", "hello")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(e.root, "bin", "hello"))
	assert.FileExists(t, filepath.Join(e.root, "lib", "libgreet.so"))
	assert.FileExists(t, filepath.Join(e.state, "hello.pkgdesc"))
	assert.FileExists(t, filepath.Join(e.state, "libgreet.pkgdesc"))

	_, err = e.run("uninstall", "hello")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(e.root, "bin", "hello"))
	assert.FileExists(t, filepath.Join(e.root, "lib", "libgreet.so"))

	_, err = e.run("uninstall", "hello")
	assert.ErrorIs(t, err, errors.ErrNotInstalled)
}

func TestInstallDryRunChangesNothing(t *testing.T) {
	e := newEnv(t)
	e.repo.Publish(hello, libgreet)

	_, err := e.run("install", "--dry-run", "hello")
	require.NoError(t, err)
	assert.NoDirExists(t, e.root)
	assert.NoFileExists(t, filepath.Join(e.state, "hello.pkgdesc"))
}

func TestInstallUnknownPackage(t *testing.T) {
	e := newEnv(t)
	e.repo.Publish(hello, libgreet)

	_, err := e.run("install", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrPackageNotFound)
	assert.Contains(t, err.Error(), "nope")
}

func TestInfoUnknownPackage(t *testing.T) {
	e := newEnv(t)
	e.repo.Publish(hello, libgreet)

	_, err := e.run("info", "nope")
	assert.ErrorIs(t, err, errors.ErrPackageNotFound)
}

func TestConfigRepoCommands(t *testing.T) {
	e := newEnv(t)

	_, err := e.run("config", "repo", "add", "extra", "https://example.com/repo")
	require.NoError(t, err)
	_, err = e.run("config", "repo", "disable", "extra")
	require.NoError(t, err)

	cfg, err := config.LoadConfig(e.config)
	require.NoError(t, err)
	require.NotNil(t, cfg.GetRepository("extra"))
	assert.False(t, cfg.GetRepository("extra").IsEnabled())

	_, err = e.run("config", "repo", "remove", "extra")
	require.NoError(t, err)
	_, err = e.run("config", "repo", "remove", "extra")
	assert.ErrorIs(t, err, errors.ErrRepositoryNotFound)
}

func TestConfigSetDoesNotPersistFlagOverrides(t *testing.T) {
	e := newEnv(t)

	_, err := e.run("-v", "-o", "json", "config", "set", "max_concurrent_syncs", "2")
	require.NoError(t, err)

	cfg, err := config.LoadConfig(e.config)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Settings.MaxConcurrent)
	assert.NotEqual(t, "debug", cfg.Settings.LogLevel)
	assert.NotEqual(t, "json", cfg.Settings.OutputFormat)
}

func TestConfigInitRefusesToOverwrite(t *testing.T) {
	e := newEnv(t)

	_, err := e.run("config", "init")
	assert.ErrorIs(t, err, errors.ErrConfigFileExists)

	_, err = e.run("config", "init", "--force")
	require.NoError(t, err)
}

func TestInstallFromRemoteRepository(t *testing.T) {
	e := newEnvWithURL(t, (*testutil.Repo).Serve)
	e.repo.Publish(hello, libgreet)

	_, err := e.run("install", "hello")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(e.root, "bin", "hello"))

	out, err := e.run("-o", "json", "list")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "hello"`)
	assert.Contains(t, out, `"status": "installed"`)
}

func TestUpdateInstallsNewerVersion(t *testing.T) {
	e := newEnv(t)
	e.repo.Publish(hello, libgreet)
	_, err := e.run("install", "hello")
	require.NoError(t, err)

	newer := hello
	newer.Version = "1.1"
	newer.Files = map[string]string{"bin/hello": "hello 1.1"}
	e.repo.Publish(newer)

	_, err = e.run("sync", "--force")
	require.NoError(t, err)
	_, err = e.run("update")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(e.root, "bin", "hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello 1.1", string(data))
}
