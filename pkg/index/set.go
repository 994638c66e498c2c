package index

import (
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/model"
)

// Set pairs the packages offered by the configured repositories with the packages found in the
// local state directory. Installed holds at most one record per name; Available may hold the same
// name at several versions when repositories overlap.
type Set struct {
	Available List
	Installed List
}

// NewSet builds a Set, collapsing installed duplicates to the first record per name.
func NewSet(available, installed List) *Set {
	return &Set{Available: available, Installed: installed.UniqueByName()}
}

// IsInstalled reports whether a package with the given name is installed.
func (s *Set) IsInstalled(name string) bool {
	return s.Installed.IsPresent(name)
}

// MarkInstalled replaces any installed record with the same name by rec.
func (s *Set) MarkInstalled(rec *model.PackageRecord) {
	s.Installed = append(s.Installed.Without(rec.Name), rec)
}

// MarkRemoved drops the installed record with the given name.
func (s *Set) MarkRemoved(name string) {
	s.Installed = s.Installed.Without(name)
}

// PackagesNeedingUpdate returns, for every installed package, the first available record with the
// same name and a different version string. Versions are never ordered; any difference counts.
func PackagesNeedingUpdate(available, installed List) []*model.PackageRecord {
	var out []*model.PackageRecord
	for _, inst := range installed {
		avail := available.FindByName(inst.Name)
		if avail != nil && avail.Version != inst.Version {
			out = append(out, avail)
		}
	}
	return out
}
