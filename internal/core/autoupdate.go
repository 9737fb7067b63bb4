package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cliup/internal/core/platform"
	"cliup/internal/core/run"
)

const (
	autoUpdateTaskName     = "cliup AI CLI auto-update"
	autoUpdateDailyTime    = "3:00AM"
	autoUpdatePackagesFile = "auto_update_packages.txt"
	autoUpdateScriptFile   = "auto_update_clis.ps1"
)

// AutoUpdateScheduler maintains the recurring update job: a persisted
// package list, a generated PowerShell script, and one scheduled task
// that runs the script at startup, logon and daily.
//
// Scheduling is Windows-only; on other platforms RegisterOrUpdate logs
// why and succeeds without doing anything.
type AutoUpdateScheduler struct {
	Info      platform.Info
	Runner    run.Runner
	StateDir  string
	DailyTime string // empty = the 3AM default
}

// PackagesPath is the persisted line-delimited package list.
func (s *AutoUpdateScheduler) PackagesPath() string {
	return filepath.Join(s.StateDir, autoUpdatePackagesFile)
}

// ScriptPath is the generated update script.
func (s *AutoUpdateScheduler) ScriptPath() string {
	return filepath.Join(s.StateDir, autoUpdateScriptFile)
}

func (s *AutoUpdateScheduler) dailyTime() string {
	if s.DailyTime != "" {
		return s.DailyTime
	}
	return autoUpdateDailyTime
}

// ReadPackageList loads a line-delimited package list. Missing file means
// an empty list.
func ReadPackageList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var pkgs []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			pkgs = append(pkgs, line)
		}
	}
	return pkgs, nil
}

// WritePackageList persists the list atomically, one package per line.
func WritePackageList(path string, pkgs []string) error {
	return writeFileAtomic(path, []byte(strings.Join(pkgs, "\n")+"\n"), 0o644)
}

// MergePackages unions incoming into existing, preserving existing order
// and appending new entries in their incoming order. The result never
// loses an entry, so the persisted list only grows.
func MergePackages(existing, incoming []string) []string {
	merged := slices.Clone(existing)
	seen := make(map[string]bool, len(existing))
	for _, pkg := range existing {
		seen[pkg] = true
	}
	for _, pkg := range incoming {
		pkg = strings.TrimSpace(pkg)
		if pkg == "" || seen[pkg] {
			continue
		}
		seen[pkg] = true
		merged = append(merged, pkg)
	}
	return merged
}

// RegisterOrUpdate merges pkgs into the persisted list, regenerates the
// update script, and (re)registers the scheduled task.
func (s *AutoUpdateScheduler) RegisterOrUpdate(ctx context.Context, pkgs []string, sink run.Sink) error {
	if !s.Info.IsWindows() {
		sink.Log("Auto-update scheduling is only supported on Windows; skipping.")
		return nil
	}

	var clean []string
	for _, pkg := range pkgs {
		if pkg = strings.TrimSpace(pkg); pkg != "" {
			clean = append(clean, pkg)
		}
	}
	if len(clean) == 0 {
		sink.Log("No packages eligible for auto-update; leaving the task unchanged.")
		return nil
	}

	existing, err := ReadPackageList(s.PackagesPath())
	if err != nil {
		return fmt.Errorf("reading auto-update package list: %w", err)
	}
	merged := MergePackages(existing, clean)
	if !slices.Equal(merged, existing) {
		if err := WritePackageList(s.PackagesPath(), merged); err != nil {
			return fmt.Errorf("writing auto-update package list: %w", err)
		}
	}

	script := buildUpdateScript(s.PackagesPath())
	if err := writeFileAtomic(s.ScriptPath(), []byte(script), 0o644); err != nil {
		return fmt.Errorf("writing auto-update script: %w", err)
	}

	if err := s.registerTask(ctx, sink); err != nil {
		return err
	}
	sink.Log(fmt.Sprintf("Auto-update task configured for %d package(s).", len(merged)))
	return nil
}

// buildUpdateScript renders the PowerShell the scheduled task runs. The
// script re-resolves npm on every run so runtime reinstalls or moves
// between runs cannot strand the task, and exits quietly when npm or the
// package list is missing.
func buildUpdateScript(packagesPath string) string {
	var b strings.Builder
	b.WriteString("$ErrorActionPreference = 'Stop'\n")
	b.WriteString("$ProgressPreference = 'SilentlyContinue'\n")
	b.WriteString("$npm = $null\n")
	b.WriteString("foreach ($name in @('npm.cmd', 'npm')) {\n")
	b.WriteString("  $cmd = Get-Command $name -ErrorAction SilentlyContinue\n")
	b.WriteString("  if ($cmd) { $npm = $cmd.Source; break }\n")
	b.WriteString("}\n")
	b.WriteString("if (-not $npm) { exit 0 }\n")
	b.WriteString("$packagesFile = " + psQuote(packagesPath) + "\n")
	b.WriteString("if (-not (Test-Path $packagesFile)) { exit 0 }\n")
	b.WriteString("$packages = Get-Content $packagesFile | ForEach-Object { $_.Trim() } | Where-Object { $_ -ne '' }\n")
	b.WriteString("if (-not $packages) { exit 0 }\n")
	b.WriteString("$env:npm_config_update_notifier = 'false'\n")
	b.WriteString("& $npm " + strings.Join(npmScriptFlags, " ") + " update -g @packages *>&1 | Out-Null\n")
	b.WriteString("exit $LASTEXITCODE\n")
	return b.String()
}

// npmScriptFlags mirror the quiet flags the npm backend uses.
var npmScriptFlags = []string{"--no-fund", "--no-audit", "--no-update-notifier", "--loglevel", "error"}

func (s *AutoUpdateScheduler) registerTask(ctx context.Context, sink run.Sink) error {
	arg := "-NoProfile -ExecutionPolicy Bypass -WindowStyle Hidden -File " + psQuote(s.ScriptPath())
	script := strings.Join([]string{
		"$action = New-ScheduledTaskAction -Execute 'powershell.exe' -Argument " + psQuote(arg),
		"$triggers = @(",
		"  (New-ScheduledTaskTrigger -AtStartup),",
		"  (New-ScheduledTaskTrigger -AtLogOn),",
		"  (New-ScheduledTaskTrigger -Daily -At " + s.dailyTime() + ")",
		")",
		"$settings = New-ScheduledTaskSettingsSet -AllowStartIfOnBatteries -DontStopIfGoingOnBatteries -StartWhenAvailable -Hidden",
		"Register-ScheduledTask -TaskName " + psQuote(autoUpdateTaskName) +
			" -Action $action -Trigger $triggers -Settings $settings -RunLevel Limited -Force | Out-Null",
	}, "\n")

	cmd := run.Command{
		Path: "powershell",
		Args: []string{"-NoProfile", "-ExecutionPolicy", "Bypass", "-Command", script},
	}
	if code := s.Runner.Run(ctx, cmd, sink); code != 0 {
		return fmt.Errorf("registering auto-update task failed with exit code %s", run.FormatExitCode(code))
	}
	return nil
}

// psQuote renders a single-quoted PowerShell string literal.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
