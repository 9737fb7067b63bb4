package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cliup/internal/core/platform"
	"cliup/internal/core/run"
)

// ShortcutWriter places desktop launchers for installed tools. Failures
// are per-tool warnings; a shortcut is never worth failing a run over.
type ShortcutWriter struct {
	Info   platform.Info
	Runner run.Runner
}

// Create writes a desktop launcher named label pointing at target.
func (w *ShortcutWriter) Create(ctx context.Context, label, target string, sink run.Sink) error {
	dir := desktopDir(w.Info)
	if dir == "" {
		return errors.New("no desktop directory found")
	}
	if w.Info.IsWindows() {
		return w.createWindows(ctx, dir, label, target, sink)
	}
	return w.createDesktopEntry(dir, label, target)
}

func (w *ShortcutWriter) createDesktopEntry(dir, label, target string) error {
	content := strings.Join([]string{
		"[Desktop Entry]",
		"Type=Application",
		"Name=" + label,
		"Exec=" + target,
		"Terminal=true",
	}, "\n") + "\n"
	path := filepath.Join(dir, sanitizeFileName(label)+".desktop")
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (w *ShortcutWriter) createWindows(ctx context.Context, dir, label, target string, sink run.Sink) error {
	lnk := filepath.Join(dir, sanitizeFileName(label)+".lnk")
	script := strings.Join([]string{
		"$ws = New-Object -ComObject WScript.Shell",
		"$s = $ws.CreateShortcut(" + psQuote(lnk) + ")",
		"$s.TargetPath = " + psQuote(target),
		"$s.Save()",
	}, "; ")
	cmd := run.Command{
		Path: "powershell",
		Args: []string{"-NoProfile", "-ExecutionPolicy", "Bypass", "-Command", script},
	}
	if code := w.Runner.Run(ctx, cmd, sink); code != 0 {
		return fmt.Errorf("creating shortcut %s failed with exit code %s", lnk, run.FormatExitCode(code))
	}
	return nil
}

// sanitizeFileName strips characters that are path separators or illegal
// in Windows file names.
func sanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return -1
		}
		return r
	}, name)
}
