//go:generate mockgen -destination=./mocks/orchestrator.go . IndexManager,TransactionEngine,StateReader

package orchestrator

import (
	"context"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/index"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/installer"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/model"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/platform"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/resolver"
)

// IndexManager is the subset of the index manager used by the orchestrator.
type IndexManager interface {
	Sync(ctx context.Context, force bool) error
	LoadSet(ctx context.Context) (*index.Set, error)
}

// TransactionEngine applies plans to the toolchain root and removes packages from it.
type TransactionEngine interface {
	Execute(ctx context.Context, rc *resolver.Context, plan *model.Plan) (*installer.Result, error)
	Uninstall(ctx context.Context, name string) bool
}

// StateReader reports the local install state of a package.
type StateReader interface {
	State(name string) model.InstallState
}

// Orchestrator ties the index, resolver and transaction engine together for CLI operations.
type Orchestrator struct {
	Index    IndexManager
	Engine   TransactionEngine
	State    StateReader
	Platform platform.Platform
	Hooks    Hooks // Hooks for progress and event notifications
}

// Event represents a simple progress notification.
type Event struct {
	Phase string // syncing|resolving|planning|installing|uninstalling|done
	ID    string // package name
	Msg   string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// InstallOptions control orchestrator install execution.
type InstallOptions struct {
	DryRun bool
}

// UpdateOptions control orchestrator update execution.
type UpdateOptions struct {
	DryRun   bool
	Packages []string // Specific packages to update, empty means update all
}

// UninstallOptions control orchestrator uninstall execution.
type UninstallOptions struct {
	DryRun bool
}

// Report describes what an install or update planned and, unless it was a dry run, what happened.
type Report struct {
	Plan   *model.Plan
	Result *installer.Result // nil for dry runs and empty plans
}

// PackageStatus is one row of the installed package listing.
type PackageStatus struct {
	Record *model.PackageRecord
	State  model.InstallState
	Update string // available version when it differs from the installed one
}

// PackageInfo collects everything known about one package name.
type PackageInfo struct {
	Name      string
	Available *model.PackageRecord
	Installed *model.PackageRecord
	State     model.InstallState
}
