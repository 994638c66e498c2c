package index

import (
	"strings"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/model"
)

// List is an ordered collection of package records.
type List []*model.PackageRecord

// IsPresent reports whether a record with the given name exists.
func (l List) IsPresent(name string) bool {
	return l.FindByName(name) != nil
}

// IsPresentVersion reports whether a record with the given name and version exists.
func (l List) IsPresentVersion(name, version string) bool {
	for _, r := range l {
		if r.Name == name && r.Version == version {
			return true
		}
	}
	return false
}

// FindByName returns the first record with the given name, or nil.
func (l List) FindByName(name string) *model.PackageRecord {
	for _, r := range l {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// Names returns the record names in order.
func (l List) Names() []string {
	names := make([]string, 0, len(l))
	for _, r := range l {
		names = append(names, r.Name)
	}
	return names
}

// Filter returns the records for which keep returns true.
func (l List) Filter(keep func(*model.PackageRecord) bool) List {
	out := make(List, 0, len(l))
	for _, r := range l {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Search returns the records whose name or description contains term, case-insensitively.
func (l List) Search(term string) List {
	term = strings.ToLower(strings.TrimSpace(term))
	return l.Filter(func(r *model.PackageRecord) bool {
		return strings.Contains(strings.ToLower(r.Name), term) ||
			strings.Contains(strings.ToLower(r.Description), term)
	})
}

// UniqueByName keeps the first record of every name.
func (l List) UniqueByName() List {
	seen := make(map[string]struct{}, len(l))
	return l.Filter(func(r *model.PackageRecord) bool {
		if _, ok := seen[r.Name]; ok {
			return false
		}
		seen[r.Name] = struct{}{}
		return true
	})
}

// Merge appends the records of other that are not already present by name and version.
func (l List) Merge(other List) List {
	out := l
	for _, r := range other {
		if !out.IsPresentVersion(r.Name, r.Version) {
			out = append(out, r)
		}
	}
	return out
}

// Without returns a copy of the list minus every record with the given name.
func (l List) Without(name string) List {
	return l.Filter(func(r *model.PackageRecord) bool { return r.Name != name })
}
