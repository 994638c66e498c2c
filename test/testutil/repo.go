// Package testutil builds package repositories for tests.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/archive"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/index"
)

// Package describes one package published into a test repository.
type Package struct {
	Name        string
	Version     string
	Arch        string
	Depends     string
	Replaces    string
	Description string
	// Files maps slash separated archive paths to their contents.
	Files map[string]string
}

// ArchiveName returns the archive file name of p.
func (p Package) ArchiveName() string {
	return fmt.Sprintf("%s-%s.tar.gz", p.Name, p.Version)
}

// Repo is a package repository laid out in a directory: one archive per package plus the descriptor.
type Repo struct {
	t        *testing.T
	Dir      string
	packages []Package
}

// NewRepo creates an empty repository in a temporary directory.
func NewRepo(t *testing.T) *Repo {
	t.Helper()
	return &Repo{t: t, Dir: t.TempDir()}
}

// Publish adds packages and rewrites the descriptor. A package replaces any published package
// of the same name.
func (r *Repo) Publish(pkgs ...Package) {
	r.t.Helper()
	for _, p := range pkgs {
		src := filepath.Join(r.t.TempDir(), p.Name)
		require.NoError(r.t, os.MkdirAll(src, 0o755))
		for rel, content := range p.Files {
			full := filepath.Join(src, filepath.FromSlash(rel))
			require.NoError(r.t, os.MkdirAll(filepath.Dir(full), 0o755))
			require.NoError(r.t, os.WriteFile(full, []byte(content), 0o644))
		}
		require.NoError(r.t, archive.NewManager().Create(context.Background(), src, filepath.Join(r.Dir, p.ArchiveName())))
		r.packages = slices.DeleteFunc(r.packages, func(old Package) bool { return old.Name == p.Name })
		r.packages = append(r.packages, p)
	}
	require.NoError(r.t, os.WriteFile(filepath.Join(r.Dir, index.DefaultIndexFile), r.descriptor(), 0o644))
}

func (r *Repo) descriptor() []byte {
	var b strings.Builder
	b.WriteString("<repo>\n")
	for _, p := range r.packages {
		var size int
		for _, content := range p.Files {
			size += len(content)
		}
		var fileSize int64
		if st, err := os.Stat(filepath.Join(r.Dir, p.ArchiveName())); err == nil {
			fileSize = st.Size()
		}
		fmt.Fprintf(&b, "  <package><name>%s</name><version>%s</version><file>%s</file><size>%d</size><filesize>%d</filesize>"+
			"<arch>%s</arch><depends>%s</depends><replaces>%s</replaces><description>%s</description></package>\n",
			p.Name, p.Version, p.ArchiveName(), size, fileSize, p.Arch, p.Depends, p.Replaces, p.Description)
	}
	b.WriteString("</repo>\n")
	return []byte(b.String())
}

// Serve exposes the repository over HTTP until the test ends and returns its base URL.
func (r *Repo) Serve() string {
	r.t.Helper()
	server := httptest.NewServer(http.FileServer(http.Dir(r.Dir)))
	r.t.Cleanup(server.Close)
	return server.URL
}
