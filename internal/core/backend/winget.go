package backend

import (
	"context"
	"errors"
	"fmt"

	"cliup/internal/core/locate"
	"cliup/internal/core/platform"
	"cliup/internal/core/run"
)

// wingetSilentFlags make winget runs non-interactive; without them winget
// blocks on agreement prompts when driven from a child process.
var wingetSilentFlags = []string{
	"--accept-package-agreements",
	"--accept-source-agreements",
	"--silent",
	"--disable-interactivity",
}

// Winget drives the Windows package manager. Like SystemPackages it is a
// prerequisite mechanism used by other adapters rather than a tool backend.
type Winget struct {
	Info   platform.Info
	Runner run.Runner
	Loc    *locate.Locator

	path     string
	resolved bool
}

// Path resolves the winget executable once. Empty means unavailable.
func (w *Winget) Path() string {
	if !w.resolved {
		w.path = w.Loc.FindExecutable([]string{"winget"}, nil)
		w.resolved = true
	}
	return w.path
}

func (w *Winget) runVerb(ctx context.Context, verb, id string, sink run.Sink) int {
	args := append([]string{verb, "--id", id, "-e"}, wingetSilentFlags...)
	return w.Runner.Run(ctx, run.Command{Path: w.Path(), Args: args}, sink)
}

// InstallOrUpgrade installs the package id, falling back to the upgrade
// verb once; winget reports already-installed packages as an install
// failure that upgrade handles.
func (w *Winget) InstallOrUpgrade(ctx context.Context, id string, sink run.Sink) error {
	if w.Path() == "" {
		return errors.New("winget not found; install \"App Installer\" from the Microsoft Store")
	}
	if code := w.runVerb(ctx, "install", id, sink); code == 0 {
		return nil
	}
	sink.Log(fmt.Sprintf("winget install of %s failed, trying upgrade", id))
	code := w.runVerb(ctx, "upgrade", id, sink)
	if code == 0 {
		return nil
	}
	return fmt.Errorf("winget could not install %s (exit code %s)", id, run.FormatExitCode(code))
}
