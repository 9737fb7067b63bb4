package core

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"cliup/internal/core/backend"
	"cliup/internal/core/locate"
	"cliup/internal/core/platform"
	"cliup/internal/core/run"
)

const (
	installMaxAttempts = 3
	installRetryDelay  = 2 * time.Second
)

// ErrRunInProgress is returned when Run is called while another run is
// still active.
var ErrRunInProgress = errors.New("a provisioning run is already in progress")

// Options control the optional tail steps of a run.
type Options struct {
	AutoUpdate bool
	Shortcuts  bool
}

// InstalledTool records one satisfied tool.
type InstalledTool struct {
	Spec     ToolSpec
	Path     string // resolved executable; may be empty right after install
	Package  string // candidate that succeeded; empty for pre-existing installs
	Existing bool   // satisfied by an installation that predates this run
}

// Result summarizes a completed run.
type Result struct {
	Installed []InstalledTool
	Skipped   []string // keys of optional tools that could not be installed
	Warnings  []string
}

// Config wires an Orchestrator. Zero fields get working defaults.
type Config struct {
	Info       platform.Info
	Runner     run.Runner
	Locator    *locate.Locator
	Backends   backend.Set
	Reconciler PathReconciler
	Scheduler  *AutoUpdateScheduler
	Shortcuts  *ShortcutWriter
	Sink       run.Sink
	OnStatus   func(string)
	OnProgress func(percent int)
	Sleep      func(time.Duration) // retry delay; tests inject a recorder
}

// Orchestrator drives one provisioning run: runtimes, installs, PATH,
// auto-update and shortcuts, strictly in tool order. It owns all policy
// (retry, candidate fallback, degraded success); backends only execute.
type Orchestrator struct {
	info       platform.Info
	runner     run.Runner
	loc        *locate.Locator
	backends   backend.Set
	reconciler PathReconciler
	scheduler  *AutoUpdateScheduler
	shortcuts  *ShortcutWriter

	sink       run.Sink
	onStatus   func(string)
	onProgress func(int)
	sleep      func(time.Duration)

	running atomic.Bool
}

// NewOrchestrator builds an orchestrator from cfg.
func NewOrchestrator(cfg Config) *Orchestrator {
	if cfg.Runner == nil {
		cfg.Runner = run.ExecRunner{}
	}
	if cfg.Locator == nil {
		cfg.Locator = &locate.Locator{Info: cfg.Info, Runner: cfg.Runner}
	}
	if cfg.Backends == nil {
		cfg.Backends = backend.DefaultSet(cfg.Info, cfg.Runner, cfg.Locator)
	}
	if cfg.Reconciler == nil {
		cfg.Reconciler = NewPathReconciler(cfg.Info)
	}
	if cfg.Sink == nil {
		cfg.Sink = run.Discard
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	return &Orchestrator{
		info:       cfg.Info,
		runner:     cfg.Runner,
		loc:        cfg.Locator,
		backends:   cfg.Backends,
		reconciler: cfg.Reconciler,
		scheduler:  cfg.Scheduler,
		shortcuts:  cfg.Shortcuts,
		sink:       cfg.Sink,
		onStatus:   cfg.OnStatus,
		onProgress: cfg.OnProgress,
		sleep:      cfg.Sleep,
	}
}

func (o *Orchestrator) log(line string) { o.sink.Log(line) }
func (o *Orchestrator) status(s string) {
	if o.onStatus != nil {
		o.onStatus(s)
	}
}
func (o *Orchestrator) progress(pct int) {
	if o.onProgress != nil {
		o.onProgress(pct)
	}
}
func (o *Orchestrator) warn(res *Result, msg string) {
	res.Warnings = append(res.Warnings, msg)
	o.log("warning: " + msg)
}

// Run provisions the selected tools. A required tool that cannot be
// installed or located fails the whole run; optional tools are skipped.
// Only one run may be active at a time.
func (o *Orchestrator) Run(ctx context.Context, selected []ToolSpec, opts Options) (*Result, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer o.running.Store(false)

	res := &Result{}
	o.progress(2)
	o.status("Preparing")
	o.reconcilePaths(ctx, res)

	total := len(selected)
	for i, spec := range selected {
		if total > 0 {
			o.progress(10 + (i*70)/total)
		}
		o.status(fmt.Sprintf("Installing %s (%d/%d)", spec.Label, i+1, total))
		o.log(fmt.Sprintf("=== %s ===", spec.Label))

		be, ok := o.backends[spec.Backend]
		if !ok {
			return nil, fmt.Errorf("%s: no backend for kind %q", spec.Label, spec.Backend)
		}
		if err := be.Ensure(ctx, o.sink); err != nil {
			if spec.Optional {
				o.log(fmt.Sprintf("Skipping optional %s: %v", spec.Label, err))
				res.Skipped = append(res.Skipped, spec.Key)
				continue
			}
			return nil, fmt.Errorf("%s: %w", spec.Label, err)
		}

		outcome := o.installCandidates(ctx, be, spec)
		// Installers move directory layouts around, so resolve against
		// freshly discovered bin dirs every time.
		dirs := be.BinDirs(ctx)
		if !outcome.ok {
			if spec.Optional {
				o.log(fmt.Sprintf("Skipping optional %s: %s", spec.Label, outcome.detail))
				res.Skipped = append(res.Skipped, spec.Key)
				continue
			}
			if path := o.loc.FindExecutable(spec.Commands, dirs); path != "" {
				o.log(fmt.Sprintf("%s: install failed but an existing installation was found at %s; keeping it",
					spec.Label, path))
				res.Installed = append(res.Installed, InstalledTool{Spec: spec, Path: path, Existing: true})
				continue
			}
			return nil, fmt.Errorf("installing %s: %s", spec.Label, outcome.detail)
		}

		path := o.loc.FindExecutable(spec.Commands, dirs)
		if path == "" {
			o.log(fmt.Sprintf("%s installed, but its command is not yet resolvable; a new terminal may be needed",
				spec.Label))
		} else {
			o.log(fmt.Sprintf("%s ready at %s", spec.Label, path))
		}
		res.Installed = append(res.Installed, InstalledTool{Spec: spec, Path: path, Package: outcome.pkg})
	}

	o.progress(82)
	o.status("Updating PATH")
	o.reconcilePaths(ctx, res)

	if opts.AutoUpdate && o.scheduler != nil {
		o.progress(90)
		o.status("Configuring auto-update")
		if err := o.scheduler.RegisterOrUpdate(ctx, autoUpdatePackages(res.Installed), o.sink); err != nil {
			o.warn(res, fmt.Sprintf("auto-update: %v", err))
		}
	}

	if opts.Shortcuts && o.shortcuts != nil {
		o.progress(95)
		o.status("Creating shortcuts")
		for _, tool := range res.Installed {
			if tool.Spec.ShortcutName == "" || tool.Path == "" {
				continue
			}
			if err := o.shortcuts.Create(ctx, tool.Spec.ShortcutName, tool.Path, o.sink); err != nil {
				o.warn(res, fmt.Sprintf("shortcut for %s: %v", tool.Spec.Label, err))
			}
		}
	}

	o.progress(100)
	o.status("Done")
	return res, nil
}

type installOutcome struct {
	ok     bool
	pkg    string
	detail string
}

// installCandidates tries each package candidate in order. A candidate is
// retried (up to the attempt budget, with a fixed delay) only when its
// exit code is in the Windows unsigned-errno range, which in practice
// means a file lock that clears on its own. Any other failure moves on to
// the next candidate immediately.
func (o *Orchestrator) installCandidates(ctx context.Context, be backend.Backend, spec ToolSpec) installOutcome {
	detail := "no package candidates"
	for _, pkg := range spec.Packages {
		for attempt := 1; attempt <= installMaxAttempts; attempt++ {
			if attempt > 1 {
				o.log(fmt.Sprintf("Retrying %s (attempt %d/%d)...", pkg, attempt, installMaxAttempts))
			}
			code := be.Install(ctx, pkg, o.sink)
			if code == 0 {
				return installOutcome{ok: true, pkg: pkg}
			}
			if run.IsWindowsErrnoExit(code) && attempt < installMaxAttempts {
				o.log(fmt.Sprintf("%s failed with exit code %s; looks like a transient file lock, retrying in %s",
					pkg, run.FormatExitCode(code), installRetryDelay))
				o.sleep(installRetryDelay)
				continue
			}
			detail = fmt.Sprintf("%s failed with exit code %s", pkg, run.FormatExitCode(code))
			o.log(detail)
			break
		}
	}
	return installOutcome{detail: detail}
}

// reconcilePaths appends every backend's bin dirs to the persistent user
// PATH, and to the system PATH when running elevated. Failures are
// warnings; the shell PATH may already be fine.
func (o *Orchestrator) reconcilePaths(ctx context.Context, res *Result) {
	var dirs []string
	for _, kind := range []backend.Kind{backend.KindNpm, backend.KindPython, backend.KindVendor} {
		if be, ok := o.backends[kind]; ok {
			dirs = append(dirs, be.BinDirs(ctx)...)
		}
	}
	dirs = locate.DedupeDirs(o.info.OS, dirs)
	if len(dirs) == 0 {
		return
	}

	if added, err := o.reconciler.Reconcile(ScopeUser, dirs); err != nil {
		o.warn(res, fmt.Sprintf("user PATH: %v", err))
	} else {
		for _, d := range added {
			o.log("Added to user PATH: " + d)
		}
	}
	if o.info.Elevated {
		if added, err := o.reconciler.Reconcile(ScopeSystem, dirs); err != nil {
			o.warn(res, fmt.Sprintf("system PATH: %v", err))
		} else {
			for _, d := range added {
				o.log("Added to system PATH: " + d)
			}
		}
	}
}

// autoUpdatePackages selects the packages the recurring npm update batch
// should cover: npm-backed tools freshly installed in this run. Vendor
// and python "packages" are identifiers for other mechanisms and must
// not leak into an `npm update -g` invocation.
func autoUpdatePackages(installed []InstalledTool) []string {
	var pkgs []string
	for _, tool := range installed {
		if tool.Spec.Backend == backend.KindNpm && tool.Package != "" {
			pkgs = append(pkgs, tool.Package)
		}
	}
	return pkgs
}
