// Package backend implements the install mechanisms tools are provisioned
// through. Each adapter knows how to make one mechanism usable, install a
// package candidate with it, and report where installed commands land.
package backend

import (
	"context"

	"cliup/internal/core/locate"
	"cliup/internal/core/platform"
	"cliup/internal/core/run"
)

// Kind names an install mechanism.
type Kind string

const (
	KindNpm    Kind = "npm"
	KindPython Kind = "python"
	KindVendor Kind = "vendor"
)

// Backend is the contract every install mechanism satisfies.
type Backend interface {
	Kind() Kind

	// Ensure verifies the mechanism is usable, installing prerequisite
	// runtimes when missing. An error means no package of this kind can
	// be installed in this run.
	Ensure(ctx context.Context, sink run.Sink) error

	// Install attempts to install one package candidate and returns the
	// process exit code (0 on success). Interpretation of failures, retry
	// and candidate fallback are the orchestrator's job.
	Install(ctx context.Context, pkg string, sink run.Sink) int

	// BinDirs reports the directories this mechanism installs commands
	// into, for executable resolution and PATH reconciliation.
	BinDirs(ctx context.Context) []string
}

// Set maps backend kinds to ready adapters.
type Set map[Kind]Backend

// DefaultSet wires the real adapters for the probed platform.
func DefaultSet(info platform.Info, runner run.Runner, loc *locate.Locator) Set {
	sys := &SystemPackages{Info: info, Runner: runner}
	wg := &Winget{Info: info, Runner: runner, Loc: loc}
	return Set{
		KindNpm:    &Node{Info: info, Runner: runner, Loc: loc, Sys: sys, Winget: wg},
		KindPython: &Python{Info: info, Runner: runner, Loc: loc, Sys: sys, Winget: wg},
		KindVendor: &Ollama{Info: info, Runner: runner, Loc: loc, Sys: sys, Winget: wg},
	}
}
