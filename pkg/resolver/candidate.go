package resolver

import (
	"strings"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/model"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/platform"
)

// archMatch scores how well a record targets the platform.
type archMatch int

const (
	noMatch archMatch = iota
	anyMatch
	exactMatch
)

func matchArch(p platform.Platform, rec *model.PackageRecord) archMatch {
	if !p.Accepts(rec.Arch) {
		return noMatch
	}
	if platform.NormalizeArch(strings.TrimSpace(rec.Arch)) == p.Arch {
		return exactMatch
	}
	return anyMatch
}

// pickCandidate returns the available record for name, preferring an exact architecture
// build over an architecture-independent one. Ties keep repository order.
func pickCandidate(rc *Context, name string) *model.PackageRecord {
	var best *model.PackageRecord
	bestScore := noMatch
	for _, rec := range rc.Set.Available {
		if rec.Name != name {
			continue
		}
		score := matchArch(rc.Platform, rec)
		if rc.Platform.Arch == "" {
			score = anyMatch
		}
		if score > bestScore {
			best, bestScore = rec, score
		}
	}
	return best
}
