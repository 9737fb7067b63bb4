// Package locate finds executables and the conventional global-bin
// directories of the runtimes the backends install into.
//
// All decisions key off the probed platform value rather than
// runtime.GOOS, so Windows resolution rules are exercisable in tests on
// any host.
package locate

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"cliup/internal/core/platform"
	"cliup/internal/core/run"
)

// Locator resolves executables and runtime bin directories.
type Locator struct {
	Info   platform.Info
	Runner run.Runner // used for npm prefix queries; nil disables them
}

// extensionPriority ranks executable flavors when several siblings share a
// base name. On Windows the npm shim story makes .cmd the canonical entry
// point; .ps1 cannot be launched directly and ranks last. The empty string
// matches any remaining file.
func extensionPriority(goos string) []string {
	if goos == "windows" {
		return []string{".cmd", ".exe", ".bat", ".ps1"}
	}
	return []string{".sh", ""}
}

// FindExecutable resolves the first locatable command candidate.
//
// Phase one searches extraDirs followed by the current PATH for each
// candidate in order, ranking multiple hits by extension priority. Phase
// two probes extraDirs directly without requiring the executable bit,
// which catches freshly installed scripts whose mode has not settled.
// Returns "" when nothing matches.
func (l *Locator) FindExecutable(candidates []string, extraDirs []string) string {
	dirs := append(append([]string{}, extraDirs...), filepath.SplitList(os.Getenv("PATH"))...)

	for _, name := range candidates {
		if matches := l.matchesInDirs(dirs, name, true); len(matches) > 0 {
			return l.pickByExtension(matches)
		}
	}
	for _, name := range candidates {
		if matches := l.matchesInDirs(extraDirs, name, false); len(matches) > 0 {
			return l.pickByExtension(matches)
		}
	}
	return ""
}

func (l *Locator) matchesInDirs(dirs []string, name string, requireExec bool) []string {
	var matches []string
	seen := make(map[string]bool)
	exts := append([]string{""}, extensionPriority(l.Info.OS)...)
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		for _, ext := range exts {
			candidate := filepath.Join(dir, name+ext)
			key := NormalizePath(l.Info.OS, candidate)
			if seen[key] {
				continue
			}
			if l.isRunnableFile(candidate, requireExec) {
				seen[key] = true
				matches = append(matches, candidate)
			}
		}
	}
	return matches
}

func (l *Locator) isRunnableFile(path string, requireExec bool) bool {
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return false
	}
	if requireExec && l.Info.OS != "windows" {
		return fi.Mode().Perm()&0o111 != 0
	}
	return true
}

func (l *Locator) pickByExtension(matches []string) string {
	for _, ext := range extensionPriority(l.Info.OS) {
		for _, m := range matches {
			if ext == "" {
				return m
			}
			if strings.HasSuffix(strings.ToLower(m), ext) {
				return m
			}
		}
	}
	return matches[0]
}

var winEnvRef = regexp.MustCompile(`%([^%]+)%`)

// NormalizePath builds the comparison key used for membership and
// deduplication: environment references expanded (both %VAR% and $VAR
// forms), cleaned, and case-folded with uniform separators on Windows.
func NormalizePath(goos, p string) string {
	expanded := winEnvRef.ReplaceAllStringFunc(p, func(ref string) string {
		name := strings.Trim(ref, "%")
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return ref
	})
	expanded = os.ExpandEnv(expanded)
	cleaned := filepath.Clean(expanded)
	if goos == "windows" {
		cleaned = strings.ToLower(strings.ReplaceAll(cleaned, "/", `\`))
	}
	return cleaned
}

// IsPathWithin reports whether p equals root or sits underneath it,
// compared by normalized key.
func IsPathWithin(goos, p, root string) bool {
	np := NormalizePath(goos, p)
	nr := NormalizePath(goos, root)
	if np == nr {
		return true
	}
	sep := string(filepath.Separator)
	if goos == "windows" {
		sep = `\`
	}
	return strings.HasPrefix(np, strings.TrimRight(nr, sep)+sep)
}

// DedupeDirs keeps directories that exist on disk, removing duplicates by
// normalized key and preserving first-seen order.
func DedupeDirs(goos string, dirs []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		key := NormalizePath(goos, dir)
		if seen[key] {
			continue
		}
		fi, err := os.Stat(dir)
		if err != nil || !fi.IsDir() {
			continue
		}
		seen[key] = true
		out = append(out, dir)
	}
	return out
}

// NodeBinDirs discovers the directories npm-installed commands land in:
// vendor install roots, the per-user npm shim directory, and the global
// prefix npm itself reports. Each source is individually optional.
func (l *Locator) NodeBinDirs(ctx context.Context, npmPath string) []string {
	var dirs []string
	if l.Info.IsWindows() {
		dirs = append(dirs,
			filepath.Join(os.Getenv("ProgramFiles"), "nodejs"),
			filepath.Join(os.Getenv("ProgramFiles(x86)"), "nodejs"),
			filepath.Join(os.Getenv("LocalAppData"), "Programs", "nodejs"),
			filepath.Join(os.Getenv("AppData"), "npm"),
		)
	} else {
		dirs = append(dirs, "/usr/local/bin", "/usr/bin")
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs, filepath.Join(home, ".npm-global", "bin"))
		}
	}
	if prefix, ok := l.npmGlobalPrefix(ctx, npmPath); ok {
		if l.Info.IsWindows() {
			dirs = append(dirs, prefix)
		} else {
			dirs = append(dirs, filepath.Join(prefix, "bin"))
		}
	}
	return DedupeDirs(l.Info.OS, dirs)
}

// npmGlobalPrefix asks npm for its global prefix. Any failure or
// unparseable output is reported as absence, never an error; the
// conventional directories above still cover the common layouts.
func (l *Locator) npmGlobalPrefix(ctx context.Context, npmPath string) (string, bool) {
	if npmPath == "" || l.Runner == nil {
		return "", false
	}
	for _, args := range [][]string{
		{"prefix", "-g"},
		{"config", "get", "prefix"},
	} {
		out, code := run.Capture(ctx, l.Runner, run.Command{Path: npmPath, Args: args})
		if code != 0 {
			continue
		}
		if prefix, ok := parsePrefix(out); ok {
			return prefix, true
		}
	}
	return "", false
}

// parsePrefix extracts a directory path from npm's prefix output. npm may
// emit notices before the value, so only the last non-empty line counts,
// and it must be an absolute path to an existing directory.
func parsePrefix(out string) (string, bool) {
	lines := strings.Split(out, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if !filepath.IsAbs(line) {
			return "", false
		}
		fi, err := os.Stat(line)
		if err != nil || !fi.IsDir() {
			return "", false
		}
		return line, true
	}
	return "", false
}

// PythonBinDirs discovers where pip --user and uv tool installs place
// entry points.
func (l *Locator) PythonBinDirs() []string {
	var dirs []string
	home, _ := os.UserHomeDir()
	if l.Info.IsWindows() {
		for _, pattern := range []string{
			filepath.Join(os.Getenv("AppData"), "Python", "Python*", "Scripts"),
			filepath.Join(os.Getenv("LocalAppData"), "Programs", "Python", "Python*", "Scripts"),
		} {
			if globbed, err := filepath.Glob(pattern); err == nil {
				dirs = append(dirs, globbed...)
			}
		}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, ".local", "bin"))
		}
	} else if home != "" {
		dirs = append(dirs, filepath.Join(home, ".local", "bin"))
	}
	return DedupeDirs(l.Info.OS, dirs)
}

// OllamaBinDirs discovers the vendor installer's target directories.
func (l *Locator) OllamaBinDirs() []string {
	var dirs []string
	if l.Info.IsWindows() {
		dirs = append(dirs,
			filepath.Join(os.Getenv("LocalAppData"), "Programs", "Ollama"),
			filepath.Join(os.Getenv("ProgramFiles"), "Ollama"),
			filepath.Join(os.Getenv("ProgramFiles(x86)"), "Ollama"),
		)
	} else {
		dirs = append(dirs, "/usr/local/bin", "/usr/bin")
	}
	return DedupeDirs(l.Info.OS, dirs)
}
