package installer

import (
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/download"
)

// State is the position of one package in the transaction state machine.
type State int

// Package states in the order a successful install passes through them.
const (
	Planned State = iota
	Skipped
	Replacing
	Downloading
	VerifyDownloadSpace
	Extracting
	VerifyUnpackSpace
	Relocating
	Installed
	Failed
)

var stateNames = map[State]string{
	Planned:             "planned",
	Skipped:             "skipped",
	Replacing:           "replacing",
	Downloading:         "downloading",
	VerifyDownloadSpace: "verify-download-space",
	Extracting:          "extracting",
	VerifyUnpackSpace:   "verify-unpack-space",
	Relocating:          "relocating",
	Installed:           "installed",
	Failed:              "failed",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool {
	return s == Skipped || s == Installed || s == Failed
}

// Event is one state transition.
type Event struct {
	Package string
	Version string
	State   State
	// Detail names the affected package for Replacing and carries the cause for Failed.
	Detail string
	Err    error
}

// PackageResult is the final state of one plan entry.
type PackageResult struct {
	Name    string
	Version string
	State   State
	Err     error
}

// Result summarises a transaction.
type Result struct {
	Packages []PackageResult
	// PostInstalled lists the packages whose post-install script ran, in run order.
	PostInstalled []string
}

// StateOf returns the final state recorded for name, or Planned when it was never reached.
func (r *Result) StateOf(name string) State {
	for _, p := range r.Packages {
		if p.Name == name {
			return p.State
		}
	}
	return Planned
}

// Count returns how many packages ended in state s.
func (r *Result) Count(s State) int {
	n := 0
	for _, p := range r.Packages {
		if p.State == s {
			n++
		}
	}
	return n
}

// NopHooks ignores every notification.
type NopHooks struct{}

// OnEvent implements Hooks.
func (NopHooks) OnEvent(Event) {}

// OnProgress implements Hooks.
func (NopHooks) OnProgress(download.Progress) {}
