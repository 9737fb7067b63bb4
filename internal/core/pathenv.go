package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cliup/internal/core/locate"
	"cliup/internal/core/platform"
)

// Scope selects which persistent PATH is reconciled.
type Scope string

const (
	ScopeUser   Scope = "user"
	ScopeSystem Scope = "system"
)

// PathReconciler appends directories to a persistent PATH definition.
// Implementations are idempotent: reconciling the same directories twice
// adds nothing the second time.
type PathReconciler interface {
	// Reconcile returns the directories actually added. Errors are
	// advisory; callers downgrade them to warnings.
	Reconcile(scope Scope, dirs []string) (added []string, err error)
}

// NewPathReconciler returns the reconciler for the probed platform:
// registry-backed on Windows, profile-backed elsewhere.
func NewPathReconciler(info platform.Info) PathReconciler {
	return newPlatformReconciler(info)
}

// userRoots lists directories considered user-owned; system-scope PATH
// never gains entries underneath them.
func userRoots(info platform.Info) []string {
	var roots []string
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, home)
	}
	if info.IsWindows() {
		for _, name := range []string{"AppData", "LocalAppData", "UserProfile"} {
			if v := os.Getenv(name); v != "" {
				roots = append(roots, v)
			}
		}
	}
	return roots
}

// FilterSystemDirs drops directories that live under a user root.
func FilterSystemDirs(info platform.Info, dirs []string) []string {
	roots := userRoots(info)
	var out []string
	for _, dir := range dirs {
		inUser := false
		for _, root := range roots {
			if locate.IsPathWithin(info.OS, dir, root) {
				inUser = true
				break
			}
		}
		if !inUser {
			out = append(out, dir)
		}
	}
	return out
}

// profileReconciler persists user PATH additions as marked export lines
// in the shell profile. The marker comment is the idempotence key.
type profileReconciler struct {
	info        platform.Info
	profilePath string
}

func newProfileReconciler(info platform.Info) *profileReconciler {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &profileReconciler{info: info, profilePath: filepath.Join(home, ".profile")}
}

func profileMarker(dir string) string {
	return "# cliup PATH " + dir
}

func (r *profileReconciler) Reconcile(scope Scope, dirs []string) ([]string, error) {
	dirs = locate.DedupeDirs(r.info.OS, dirs)
	if len(dirs) == 0 {
		return nil, nil
	}
	if scope == ScopeSystem {
		// The conventional system dirs are already on every base PATH.
		return nil, nil
	}

	data, err := os.ReadFile(r.profilePath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", r.profilePath, err)
	}
	text := string(data)

	current := make(map[string]bool)
	for _, part := range filepath.SplitList(os.Getenv("PATH")) {
		if part != "" {
			current[locate.NormalizePath(r.info.OS, part)] = true
		}
	}

	var added []string
	var lines []string
	for _, dir := range dirs {
		if current[locate.NormalizePath(r.info.OS, dir)] {
			continue
		}
		marker := profileMarker(dir)
		if strings.Contains(text, marker) {
			continue
		}
		lines = append(lines, fmt.Sprintf("export PATH=\"$PATH:%s\"  %s", dir, marker))
		added = append(added, dir)
	}
	if len(lines) == 0 {
		return nil, nil
	}

	var b strings.Builder
	if len(text) > 0 && !strings.HasSuffix(text, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")

	f, err := os.OpenFile(r.profilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", r.profilePath, err)
	}
	defer f.Close()
	if _, err := f.WriteString(b.String()); err != nil {
		return nil, fmt.Errorf("updating %s: %w", r.profilePath, err)
	}
	return added, nil
}
