// Package resolver expands requested package names into an ordered installation plan.
package resolver

import (
	"strings"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/internal/logger"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/index"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/model"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/platform"
)

// Context carries everything one resolution or transaction needs. It is built once per
// request and discarded afterwards.
type Context struct {
	Platform platform.Platform
	Set      *index.Set
}

// NewContext builds a Context for the given platform and package set.
func NewContext(p platform.Platform, set *index.Set) *Context {
	if set == nil {
		set = index.NewSet(nil, nil)
	}
	return &Context{Platform: p, Set: set}
}

// Accumulator collects the records of one resolution pass. Names are marked pending before
// their dependencies are visited, which is what breaks dependency cycles.
type Accumulator struct {
	records []*model.PackageRecord
	seen    map[string]struct{}
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{seen: make(map[string]struct{})}
}

// Contains reports whether name was appended or is being resolved.
func (a *Accumulator) Contains(name string) bool {
	_, ok := a.seen[name]
	return ok
}

// Records returns the accumulated records in dependency order.
func (a *Accumulator) Records() []*model.PackageRecord {
	return a.records
}

// Plan converts the accumulator into a plan with computed totals.
func (a *Accumulator) Plan() *model.Plan {
	p := &model.Plan{Records: append([]*model.PackageRecord(nil), a.records...)}
	p.Recompute()
	return p
}

func (a *Accumulator) mark(name string) {
	a.seen[name] = struct{}{}
}

func (a *Accumulator) append(rec *model.PackageRecord) {
	a.records = append(a.records, rec)
}

// Resolve adds token and its dependency closure to acc. A token may list alternatives
// separated by "|"; an installed alternative is preferred over the first one.
// Names missing from the available set are dropped without error.
func Resolve(rc *Context, token string, acc *Accumulator) {
	variants := model.SplitAlternatives(token)
	if len(variants) == 0 {
		return
	}
	for _, v := range variants {
		if acc.Contains(v) {
			return
		}
	}

	chosen := variants[0]
	for _, v := range variants {
		if rc.Set.IsInstalled(v) {
			chosen = v
			break
		}
	}

	rec := pickCandidate(rc, chosen)
	if rec == nil {
		logger.Debug("Dropping unavailable package", logger.Fields{"token": token, "name": chosen})
		return
	}
	if inst := rc.Set.Installed.FindByName(chosen); inst != nil && inst.Version == rec.Version {
		return
	}

	acc.mark(chosen)
	for _, dep := range rec.Dependencies() {
		Resolve(rc, dep, acc)
	}
	acc.append(rec)
}

// ResolveAll resolves every requested token into one plan.
func ResolveAll(rc *Context, names []string) *model.Plan {
	acc := NewAccumulator()
	for _, n := range names {
		Resolve(rc, n, acc)
	}
	return acc.Plan()
}

// Missing returns the requested tokens for which no alternative is available.
func Missing(rc *Context, names []string) []string {
	var out []string
	for _, n := range names {
		found := false
		for _, v := range model.SplitAlternatives(n) {
			if rc.Set.Available.IsPresent(v) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, strings.TrimSpace(n))
		}
	}
	return out
}
