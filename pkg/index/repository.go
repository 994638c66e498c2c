package index

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// DefaultIndexFile is the descriptor name appended to repository locations that do not name one.
const DefaultIndexFile = "repo.xml"

// Repository is a source of packages: a URL or a local directory holding a descriptor and archives.
type Repository struct {
	Name     string
	Location string
	Enabled  bool
}

// IndexURL returns the URL of the repository descriptor. Local paths become file URLs.
func (r *Repository) IndexURL() *url.URL {
	loc := r.Location
	if !strings.HasSuffix(strings.ToLower(loc), ".xml") {
		if isRemote(loc) {
			loc = strings.TrimSuffix(loc, "/") + "/" + DefaultIndexFile
		} else {
			loc = filepath.Join(loc, DefaultIndexFile)
		}
	}
	return toURL(loc)
}

// BaseLocation returns where archives named in the descriptor are found.
func (r *Repository) BaseLocation() string {
	loc := r.Location
	if !strings.HasSuffix(strings.ToLower(loc), ".xml") {
		return strings.TrimSuffix(loc, "/")
	}
	if isRemote(loc) {
		u, _ := url.Parse(loc)
		u.Path = path.Dir(u.Path)
		return u.String()
	}
	return filepath.Dir(loc)
}

func isRemote(loc string) bool {
	u, err := url.Parse(loc)
	return err == nil && len(u.Scheme) > 1
}

func toURL(loc string) *url.URL {
	if isRemote(loc) {
		u, _ := url.Parse(loc)
		return u
	}
	if abs, err := filepath.Abs(loc); err == nil {
		loc = abs
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(loc)}
}
