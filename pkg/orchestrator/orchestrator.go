// Package orchestrator implements the command level operations on top of the index, the
// resolver and the transaction engine.
package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/internal/logger"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/errors"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/index"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/model"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/platform"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/resolver"
)

// New constructs an Orchestrator from existing managers. Hooks may be empty.
func New(idx IndexManager, engine TransactionEngine, state StateReader, p platform.Platform, hooks Hooks) *Orchestrator {
	return &Orchestrator{
		Index:    idx,
		Engine:   engine,
		State:    state,
		Platform: p,
		Hooks:    hooks,
	}
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// Sync refreshes the repository descriptors. Stale descriptors are fetched unless force is set,
// in which case all are.
func (o *Orchestrator) Sync(ctx context.Context, force bool) error {
	if o.Index == nil {
		return fmt.Errorf("index manager is not configured")
	}
	emit(o.Hooks, Event{Phase: "syncing"})
	if err := o.Index.Sync(ctx, force); err != nil {
		return err
	}
	emit(o.Hooks, Event{Phase: "done"})
	return nil
}

func (o *Orchestrator) loadContext(ctx context.Context) (*resolver.Context, error) {
	if o.Index == nil {
		return nil, fmt.Errorf("index manager is not configured")
	}
	set, err := o.Index.LoadSet(ctx)
	if err != nil {
		return nil, err
	}
	return resolver.NewContext(o.Platform, set), nil
}

// Install resolves names against the available packages and executes the plan. Names that no
// repository offers are reported before anything is changed.
func (o *Orchestrator) Install(ctx context.Context, names []string, opts InstallOptions) (*Report, error) {
	emit(o.Hooks, Event{Phase: "resolving", Msg: strings.Join(names, " ")})
	rc, err := o.loadContext(ctx)
	if err != nil {
		return nil, err
	}

	if missing := resolver.Missing(rc, names); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", errors.ErrPackageNotFound, strings.Join(missing, ", "))
	}

	plan := resolver.ResolveAll(rc, names)
	return o.execute(ctx, rc, plan, opts.DryRun)
}

// Update installs the available version of every installed package whose version differs,
// limited to opts.Packages when given.
func (o *Orchestrator) Update(ctx context.Context, opts UpdateOptions) (*Report, error) {
	emit(o.Hooks, Event{Phase: "resolving", Msg: "updates"})
	rc, err := o.loadContext(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(opts.Packages))
	for _, name := range opts.Packages {
		if !rc.Set.IsInstalled(name) {
			return nil, fmt.Errorf("%w: %s", errors.ErrNotInstalled, name)
		}
		wanted[name] = true
	}

	var names []string
	for _, rec := range index.PackagesNeedingUpdate(rc.Set.Available, rc.Set.Installed) {
		if len(wanted) == 0 || wanted[rec.Name] {
			names = append(names, rec.Name)
		}
	}
	if len(names) == 0 {
		logger.Info("All packages are up to date")
		return &Report{Plan: &model.Plan{}}, nil
	}

	plan := resolver.ResolveAll(rc, names)
	return o.execute(ctx, rc, plan, opts.DryRun)
}

func (o *Orchestrator) execute(ctx context.Context, rc *resolver.Context, plan *model.Plan, dryRun bool) (*Report, error) {
	report := &Report{Plan: plan}
	for _, rec := range plan.Records {
		emit(o.Hooks, Event{Phase: "planning", ID: rec.Name, Msg: rec.Version})
	}

	if dryRun || plan.Empty() {
		emit(o.Hooks, Event{Phase: "done", Msg: "dry-run"})
		return report, nil
	}
	if o.Engine == nil {
		return report, fmt.Errorf("transaction engine is not configured")
	}

	emit(o.Hooks, Event{Phase: "installing", Msg: fmt.Sprintf("%d packages", len(plan.Records))})
	result, err := o.Engine.Execute(ctx, rc, plan)
	report.Result = result
	if err != nil {
		return report, err
	}
	emit(o.Hooks, Event{Phase: "done"})
	return report, nil
}

// Uninstall removes each named package. Every name is attempted; names without a manifest are
// reported together at the end.
func (o *Orchestrator) Uninstall(ctx context.Context, names []string, opts UninstallOptions) ([]string, error) {
	var removed, missing []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if o.State != nil && o.State.State(name) != model.Installed {
			missing = append(missing, name)
			continue
		}
		emit(o.Hooks, Event{Phase: "uninstalling", ID: name})
		if opts.DryRun {
			removed = append(removed, name)
			continue
		}
		if err := ctx.Err(); err != nil {
			return removed, fmt.Errorf("%w: %w", errors.ErrCancelled, err)
		}
		if o.Engine == nil {
			return removed, fmt.Errorf("transaction engine is not configured")
		}
		if o.Engine.Uninstall(ctx, name) {
			removed = append(removed, name)
		} else {
			missing = append(missing, name)
		}
	}
	emit(o.Hooks, Event{Phase: "done"})

	if len(missing) > 0 {
		return removed, fmt.Errorf("%w: %s", errors.ErrNotInstalled, strings.Join(missing, ", "))
	}
	return removed, nil
}

// ListInstalled returns every installed package with its local state and pending update.
func (o *Orchestrator) ListInstalled(ctx context.Context, nameFilter string) ([]PackageStatus, error) {
	rc, err := o.loadContext(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]PackageStatus, 0, len(rc.Set.Installed))
	for _, rec := range rc.Set.Installed {
		if nameFilter != "" && !strings.Contains(strings.ToLower(rec.Name), strings.ToLower(nameFilter)) {
			continue
		}
		status := PackageStatus{Record: rec, State: model.DescribedOnly}
		if o.State != nil {
			status.State = o.State.State(rec.Name)
		}
		if avail := rc.Set.Available.FindByName(rec.Name); avail != nil && avail.Version != rec.Version {
			status.Update = avail.Version
		}
		out = append(out, status)
	}
	return out, nil
}

// Search returns the available packages whose name or description contains term.
func (o *Orchestrator) Search(ctx context.Context, term string) (index.List, error) {
	rc, err := o.loadContext(ctx)
	if err != nil {
		return nil, err
	}
	return rc.Set.Available.Search(term).UniqueByName(), nil
}

// Info describes the available and installed records of name.
func (o *Orchestrator) Info(ctx context.Context, name string) (*PackageInfo, error) {
	rc, err := o.loadContext(ctx)
	if err != nil {
		return nil, err
	}

	info := &PackageInfo{
		Name:      name,
		Available: rc.Set.Available.FindByName(name),
		Installed: rc.Set.Installed.FindByName(name),
	}
	if o.State != nil {
		info.State = o.State.State(name)
	}
	if info.Available == nil && info.Installed == nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrPackageNotFound, name)
	}
	return info, nil
}
