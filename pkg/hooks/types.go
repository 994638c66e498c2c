// Package hooks runs package lifecycle scripts against the toolchain root.
package hooks

import "context"

//go:generate mockgen -source=types.go -destination=mocks/mock_runner.go -package=mocks

// HookType names the lifecycle stage a script belongs to.
type HookType string

// Supported hook types.
const (
	PostInstall HookType = "postinst"
	PreRemove   HookType = "prerm"
)

// TengoShebang marks scripts that run in the embedded interpreter instead of as executables.
const TengoShebang = "#!tengo"

// Runner executes one lifecycle script.
type Runner interface {
	// Run executes the script at path for pkg. A non-nil error describes a failed script;
	// callers decide whether that matters.
	Run(ctx context.Context, hook HookType, pkg, path string) error
}
