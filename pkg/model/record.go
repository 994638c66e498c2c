// Package model provides the data structures shared by the index, resolver and installer:
// package records, resolution plans and the per-package install state.
package model

import (
	"net/url"
	"path/filepath"
	"strings"
)

// DependencyAlternativeSeparator separates acceptable variants inside one dependency token.
const DependencyAlternativeSeparator = "|"

// PackageRecord describes one installable package as published by a repository descriptor.
// Records are created by the index parser and never modified afterwards.
type PackageRecord struct {
	Name           string `json:"name"`
	Version        string `json:"version"`
	ArchiveFile    string `json:"file"`
	InstalledSize  int64  `json:"size"`
	DownloadSize   int64  `json:"filesize"`
	DependsExpr    string `json:"depends,omitempty"`
	Arch           string `json:"arch,omitempty"`
	Replaces       string `json:"replaces,omitempty"`
	Description    string `json:"description,omitempty"`
	SourceLocation string `json:"source,omitempty"`
}

// Key returns name@version, the identity of a record inside an available list.
func (r *PackageRecord) Key() string {
	return r.Name + "@" + r.Version
}

// Dependencies returns the whitespace separated dependency tokens.
func (r *PackageRecord) Dependencies() []string {
	return strings.Fields(r.DependsExpr)
}

// ArchiveURL returns the location of the archive: a URL when the record came from a remote
// repository, a filesystem path when it came from a local directory.
func (r *PackageRecord) ArchiveURL() string {
	if r.SourceLocation == "" {
		return r.ArchiveFile
	}
	if u, err := url.Parse(r.SourceLocation); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return u.JoinPath(r.ArchiveFile).String()
	}
	return filepath.Join(r.SourceLocation, r.ArchiveFile)
}

// SplitAlternatives splits a dependency token such as "gcc|clang" into its variants,
// dropping empty entries.
func SplitAlternatives(token string) []string {
	parts := strings.Split(token, DependencyAlternativeSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
