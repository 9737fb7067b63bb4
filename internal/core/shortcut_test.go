//go:build !windows

package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cliup/internal/core/platform"
	"cliup/internal/core/run"
)

func TestCreateDesktopEntry(t *testing.T) {
	desktop := t.TempDir()
	t.Setenv("XDG_DESKTOP_DIR", desktop)

	w := &ShortcutWriter{Info: platform.Info{OS: "linux"}}
	if err := w.Create(context.Background(), "Claude Code", "/usr/local/bin/claude", run.Discard); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(desktop, "Claude Code.desktop")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, frag := range []string{
		"[Desktop Entry]",
		"Name=Claude Code",
		"Exec=/usr/local/bin/claude",
		"Terminal=true",
	} {
		if !strings.Contains(string(data), frag) {
			t.Errorf("desktop entry missing %q:\n%s", frag, data)
		}
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm()&0o111 == 0 {
		t.Fatal("desktop entry not executable")
	}
}

func TestCreateFailsWithoutDesktopDir(t *testing.T) {
	t.Setenv("XDG_DESKTOP_DIR", filepath.Join(t.TempDir(), "missing"))
	t.Setenv("HOME", t.TempDir()) // no ~/Desktop either

	w := &ShortcutWriter{Info: platform.Info{OS: "linux"}}
	if err := w.Create(context.Background(), "Tool", "/bin/tool", run.Discard); err == nil {
		t.Fatal("Create succeeded without a desktop directory")
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := sanitizeFileName(`A/B\C:D*E?F"G<H>I|J`); got != "ABCDEFGHIJ" {
		t.Fatalf("sanitizeFileName = %q", got)
	}
}
