package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cliup/internal/core/platform"
)

func newTestProfileReconciler(t *testing.T) (*profileReconciler, string) {
	t.Helper()
	profile := filepath.Join(t.TempDir(), ".profile")
	return &profileReconciler{
		info:        platform.Info{OS: "linux"},
		profilePath: profile,
	}, profile
}

func TestProfileReconcileAppendsMarkedLines(t *testing.T) {
	t.Setenv("PATH", "/usr/bin")
	r, profile := newTestProfileReconciler(t)
	dir := t.TempDir()

	added, err := r.Reconcile(ScopeUser, []string{dir})
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	if len(added) != 1 || added[0] != dir {
		t.Fatalf("added = %v, want [%s]", added, dir)
	}
	data, err := os.ReadFile(profile)
	if err != nil {
		t.Fatal(err)
	}
	line := `export PATH="$PATH:` + dir + `"  ` + profileMarker(dir)
	if !strings.Contains(string(data), line) {
		t.Fatalf("profile = %q, want line %q", data, line)
	}
}

func TestProfileReconcileIsIdempotent(t *testing.T) {
	t.Setenv("PATH", "/usr/bin")
	r, profile := newTestProfileReconciler(t)
	dir := t.TempDir()

	if _, err := r.Reconcile(ScopeUser, []string{dir}); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(profile)
	if err != nil {
		t.Fatal(err)
	}

	added, err := r.Reconcile(ScopeUser, []string{dir})
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 0 {
		t.Fatalf("second reconcile added %v, want nothing", added)
	}
	second, err := os.ReadFile(profile)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Fatalf("profile changed on second reconcile:\n%q\nvs\n%q", first, second)
	}
}

func TestProfileReconcileSkipsDirsAlreadyOnPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PATH", dir)
	r, profile := newTestProfileReconciler(t)

	added, err := r.Reconcile(ScopeUser, []string{dir})
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 0 {
		t.Fatalf("added = %v, want nothing for a dir already on PATH", added)
	}
	if _, err := os.Stat(profile); !os.IsNotExist(err) {
		t.Fatal("profile written even though nothing was added")
	}
}

func TestProfileReconcileIgnoresMissingDirs(t *testing.T) {
	t.Setenv("PATH", "/usr/bin")
	r, _ := newTestProfileReconciler(t)
	added, err := r.Reconcile(ScopeUser, []string{filepath.Join(t.TempDir(), "missing")})
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 0 {
		t.Fatalf("added = %v, want nothing for a nonexistent dir", added)
	}
}

func TestProfileReconcileSystemScopeIsNoOp(t *testing.T) {
	t.Setenv("PATH", "")
	r, profile := newTestProfileReconciler(t)
	added, err := r.Reconcile(ScopeSystem, []string{t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 0 {
		t.Fatalf("added = %v, want nothing for system scope", added)
	}
	if _, err := os.Stat(profile); !os.IsNotExist(err) {
		t.Fatal("system scope touched the profile")
	}
}

func TestFilterSystemDirsExcludesUserRoots(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	info := platform.Info{OS: "linux"}
	dirs := []string{
		filepath.Join(home, ".local", "bin"),
		"/usr/local/bin",
	}
	got := FilterSystemDirs(info, dirs)
	if len(got) != 1 || got[0] != "/usr/local/bin" {
		t.Fatalf("FilterSystemDirs = %v, want [/usr/local/bin]", got)
	}
}
