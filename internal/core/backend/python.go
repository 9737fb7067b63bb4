package backend

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cliup/internal/core/locate"
	"cliup/internal/core/platform"
	"cliup/internal/core/run"
)

const (
	pythonWingetID   = "Python.Python.3.14"
	pythonMinorFloor = 12 // oldest 3.x the wrapped tools support
)

// pipQuietFlags keep pip from prompting or printing upgrade banners.
var pipQuietFlags = []string{
	"--disable-pip-version-check",
	"--no-input",
	"--quiet",
}

// Python installs pip/uv-distributed tools, provisioning a suitable
// interpreter, pip and uv when the host lacks them.
type Python struct {
	Info   platform.Info
	Runner run.Runner
	Loc    *locate.Locator
	Sys    *SystemPackages
	Winget *Winget

	python []string // interpreter invocation prefix, e.g. ["py", "-3.14"]
	uvPath string
}

func (p *Python) Kind() Kind { return KindPython }

func (p *Python) interpreterCandidates() [][]string {
	if p.Info.IsWindows() {
		return [][]string{
			{"py", "-3.14"},
			{"py", "-3"},
			{"python3.14"},
			{"python"},
		}
	}
	return [][]string{
		{"python3"},
		{"python"},
	}
}

// probeInterpreter checks one candidate and reports whether it is a
// usable CPython 3 at or above the supported floor.
func (p *Python) probeInterpreter(ctx context.Context, argv []string) bool {
	path := p.Loc.FindExecutable([]string{argv[0]}, nil)
	if path == "" {
		return false
	}
	cmd := run.Command{
		Path: path,
		Args: append(append([]string{}, argv[1:]...), "-c", "import sys; print('%d.%d' % sys.version_info[:2])"),
	}
	out, code := run.Capture(ctx, p.Runner, cmd)
	if code != 0 {
		return false
	}
	major, minor, ok := parsePythonVersion(out)
	if !ok || major != 3 || minor < pythonMinorFloor {
		return false
	}
	p.python = append([]string{path}, argv[1:]...)
	return true
}

// parsePythonVersion parses "major.minor" probe output. Malformed output
// counts as absence, not an error.
func parsePythonVersion(out string) (major, minor int, ok bool) {
	fields := strings.SplitN(strings.TrimSpace(out), ".", 2)
	if len(fields) != 2 {
		return 0, 0, false
	}
	major, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}

func (p *Python) findInterpreter(ctx context.Context) bool {
	for _, argv := range p.interpreterCandidates() {
		if p.probeInterpreter(ctx, argv) {
			return true
		}
	}
	return false
}

func (p *Python) distroPythonPackages() []string {
	if p.Info.Distro == platform.DistroArch {
		return []string{"python", "python-pip"}
	}
	return []string{"python3", "python3-pip"}
}

// Ensure provisions interpreter, pip and uv. A uv bootstrap failure is
// tolerated; Install falls back to pip.
func (p *Python) Ensure(ctx context.Context, sink run.Sink) error {
	if len(p.python) == 0 && !p.findInterpreter(ctx) {
		sink.Log("Suitable Python not found, installing it first...")
		var err error
		switch {
		case p.Info.IsWindows():
			err = p.Winget.InstallOrUpgrade(ctx, pythonWingetID, sink)
		case p.Info.IsLinux():
			err = p.Sys.Install(ctx, p.distroPythonPackages(), sink)
		default:
			return errors.New("python 3.12+ is required; install it and retry")
		}
		if err != nil {
			return fmt.Errorf("installing python: %w", err)
		}
		if !p.findInterpreter(ctx) {
			return errors.New("python still not found after install; open a new terminal and retry")
		}
	}
	sink.Log("Using python: " + strings.Join(p.python, " "))

	if err := p.ensurePip(ctx, sink); err != nil {
		return err
	}
	p.ensureUv(ctx, sink)
	return nil
}

func (p *Python) runPython(ctx context.Context, sink run.Sink, args ...string) int {
	cmd := run.Command{Path: p.python[0], Args: append(append([]string{}, p.python[1:]...), args...)}
	return p.Runner.Run(ctx, cmd, sink)
}

func (p *Python) ensurePip(ctx context.Context, sink run.Sink) error {
	if code := p.runPython(ctx, run.Discard, "-m", "pip", "--version"); code == 0 {
		return nil
	}
	sink.Log("pip missing, bootstrapping with ensurepip...")
	if code := p.runPython(ctx, sink, "-m", "ensurepip", "--upgrade"); code != 0 {
		return fmt.Errorf("ensurepip failed with exit code %s", run.FormatExitCode(code))
	}
	return nil
}

func (p *Python) ensureUv(ctx context.Context, sink run.Sink) {
	p.uvPath = p.Loc.FindExecutable([]string{"uv"}, p.Loc.PythonBinDirs())
	if p.uvPath != "" {
		return
	}
	sink.Log("uv not found, installing it with pip...")
	if code := p.pipInstall(ctx, "uv", sink); code != 0 {
		sink.Log("could not install uv; will fall back to pip installs")
		return
	}
	p.uvPath = p.Loc.FindExecutable([]string{"uv"}, p.Loc.PythonBinDirs())
}

func (p *Python) pipInstall(ctx context.Context, pkg string, sink run.Sink) int {
	args := append([]string{"-m", "pip", "install"}, pipQuietFlags...)
	args = append(args, "--upgrade", "--user", pkg)
	if p.Info.IsLinux() {
		// PEP 668 managed environments refuse user installs otherwise.
		args = append(args, "--break-system-packages")
	}
	return p.runPython(ctx, sink, args...)
}

// Install prefers an isolated uv tool install and falls back to a pip
// user install when uv is unavailable or fails.
func (p *Python) Install(ctx context.Context, pkg string, sink run.Sink) int {
	if len(p.python) == 0 {
		sink.Log("python is not available")
		return -1
	}
	if p.uvPath != "" {
		cmd := run.Command{Path: p.uvPath, Args: []string{"tool", "install", "--upgrade", pkg}}
		if code := p.Runner.Run(ctx, cmd, sink); code == 0 {
			return 0
		}
		sink.Log("uv tool install failed, falling back to pip")
	}
	return p.pipInstall(ctx, pkg, sink)
}

// BinDirs reports where pip --user and uv place entry points.
func (p *Python) BinDirs(context.Context) []string {
	return p.Loc.PythonBinDirs()
}
