package backend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cliup/internal/core/locate"
	"cliup/internal/core/platform"
	"cliup/internal/core/run"
)

// recordingRunner captures every command and replies with scripted exit
// codes (the last code repeats).
type recordingRunner struct {
	codes []int
	calls []run.Command
}

func (r *recordingRunner) Run(_ context.Context, c run.Command, _ run.Sink) int {
	r.calls = append(r.calls, c)
	if len(r.codes) == 0 {
		return 0
	}
	i := len(r.calls) - 1
	if i >= len(r.codes) {
		i = len(r.codes) - 1
	}
	return r.codes[i]
}

func argvString(c run.Command) string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

func TestSystemPackagesCommandSets(t *testing.T) {
	tests := []struct {
		distro platform.DistroFamily
		want   []string
	}{
		{platform.DistroDebian, []string{"apt-get update", "apt-get install -y curl"}},
		{platform.DistroFedora, []string{"dnf install -y curl"}},
		{platform.DistroArch, []string{"pacman -Sy --noconfirm curl"}},
	}
	for _, tt := range tests {
		s := &SystemPackages{Info: platform.Info{OS: "linux", Distro: tt.distro}}
		cmds, err := s.commandSets([]string{"curl"})
		if err != nil {
			t.Fatalf("%s: commandSets error: %v", tt.distro, err)
		}
		if len(cmds) != len(tt.want) {
			t.Fatalf("%s: got %d commands, want %d", tt.distro, len(cmds), len(tt.want))
		}
		for i, argv := range cmds {
			if got := strings.Join(argv, " "); got != tt.want[i] {
				t.Errorf("%s: command %d = %q, want %q", tt.distro, i, got, tt.want[i])
			}
		}
	}
}

func TestSystemPackagesUnknownDistroFailsClosed(t *testing.T) {
	s := &SystemPackages{Info: platform.Info{OS: "linux", Distro: platform.DistroUnknown}}
	err := s.Install(context.Background(), []string{"curl"}, run.Discard)
	if !errors.Is(err, ErrUnsupportedDistro) {
		t.Fatalf("err = %v, want ErrUnsupportedDistro", err)
	}
}

func TestSystemPackagesRequiresElevation(t *testing.T) {
	rec := &recordingRunner{}
	s := &SystemPackages{
		Info:   platform.Info{OS: "linux", Distro: platform.DistroDebian, Elevated: false},
		Runner: rec,
	}
	err := s.Install(context.Background(), []string{"curl"}, run.Discard)
	if !errors.Is(err, ErrNeedElevation) {
		t.Fatalf("err = %v, want ErrNeedElevation", err)
	}
	if len(rec.calls) != 0 {
		t.Fatalf("ran %d commands before the privilege check", len(rec.calls))
	}
}

func TestSystemPackagesRunsSequence(t *testing.T) {
	rec := &recordingRunner{}
	s := &SystemPackages{
		Info:   platform.Info{OS: "linux", Distro: platform.DistroDebian, Elevated: true},
		Runner: rec,
	}
	if err := s.Install(context.Background(), []string{"nodejs", "npm"}, run.Discard); err != nil {
		t.Fatal(err)
	}
	if len(rec.calls) != 2 {
		t.Fatalf("ran %d commands, want 2", len(rec.calls))
	}
	if got := argvString(rec.calls[1]); got != "apt-get install -y nodejs npm" {
		t.Fatalf("install command = %q", got)
	}
}

func TestWingetInstallOrUpgradeFallsBack(t *testing.T) {
	rec := &recordingRunner{codes: []int{1, 0}}
	w := &Winget{
		Info:     platform.Info{OS: "windows"},
		Runner:   rec,
		path:     `C:\winget.exe`,
		resolved: true,
	}
	if err := w.InstallOrUpgrade(context.Background(), "Ollama.Ollama", run.Discard); err != nil {
		t.Fatal(err)
	}
	if len(rec.calls) != 2 {
		t.Fatalf("ran %d commands, want install then upgrade", len(rec.calls))
	}
	if rec.calls[0].Args[0] != "install" || rec.calls[1].Args[0] != "upgrade" {
		t.Fatalf("verbs = %q, %q", rec.calls[0].Args[0], rec.calls[1].Args[0])
	}
	for _, flag := range wingetSilentFlags {
		if !strings.Contains(argvString(rec.calls[0]), flag) {
			t.Errorf("install args missing %s", flag)
		}
	}
}

func TestWingetInstallOrUpgradeReportsFinalCode(t *testing.T) {
	rec := &recordingRunner{codes: []int{1, 7}}
	w := &Winget{Info: platform.Info{OS: "windows"}, Runner: rec, path: "winget", resolved: true}
	err := w.InstallOrUpgrade(context.Background(), "Some.Id", run.Discard)
	if err == nil || !strings.Contains(err.Error(), "7") {
		t.Fatalf("err = %v, want final exit code in message", err)
	}
}

func TestNodeInstallArgs(t *testing.T) {
	rec := &recordingRunner{}
	n := &Node{
		Info:    platform.Info{OS: "linux"},
		Runner:  rec,
		npmPath: "/usr/bin/npm",
	}
	if code := n.Install(context.Background(), "@anthropic-ai/claude-code", run.Discard); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	got := argvString(rec.calls[0])
	want := "/usr/bin/npm --no-fund --no-audit --no-update-notifier --loglevel error install -g @anthropic-ai/claude-code"
	if got != want {
		t.Fatalf("argv = %q, want %q", got, want)
	}
	if rec.calls[0].Env["npm_config_update_notifier"] != "false" {
		t.Fatal("npm_config_update_notifier not disabled")
	}
	if !strings.HasPrefix(rec.calls[0].Env["PATH"], "/usr/bin") {
		t.Fatalf("PATH override = %q, want npm dir first", rec.calls[0].Env["PATH"])
	}
}

func TestParsePythonVersion(t *testing.T) {
	tests := []struct {
		in           string
		major, minor int
		ok           bool
	}{
		{"3.12", 3, 12, true},
		{"3.14\n", 3, 14, true},
		{"2.7", 2, 7, true},
		{"three.twelve", 0, 0, false},
		{"", 0, 0, false},
		{"3", 0, 0, false},
	}
	for _, tt := range tests {
		major, minor, ok := parsePythonVersion(tt.in)
		if major != tt.major || minor != tt.minor || ok != tt.ok {
			t.Errorf("parsePythonVersion(%q) = %d, %d, %v; want %d, %d, %v",
				tt.in, major, minor, ok, tt.major, tt.minor, tt.ok)
		}
	}
}

func TestPythonInstallFallsBackToPip(t *testing.T) {
	rec := &recordingRunner{codes: []int{5, 0}}
	p := &Python{
		Info:   platform.Info{OS: "linux"},
		Runner: rec,
		python: []string{"/usr/bin/python3"},
		uvPath: "/home/dev/.local/bin/uv",
	}
	if code := p.Install(context.Background(), "mistral-vibe", run.Discard); code != 0 {
		t.Fatalf("exit code = %d, want 0 after pip fallback", code)
	}
	if len(rec.calls) != 2 {
		t.Fatalf("ran %d commands, want uv then pip", len(rec.calls))
	}
	if got := argvString(rec.calls[0]); got != "/home/dev/.local/bin/uv tool install --upgrade mistral-vibe" {
		t.Fatalf("uv argv = %q", got)
	}
	pip := argvString(rec.calls[1])
	for _, frag := range []string{"-m pip install", "--user", "--break-system-packages", "mistral-vibe"} {
		if !strings.Contains(pip, frag) {
			t.Errorf("pip argv %q missing %q", pip, frag)
		}
	}
}

func TestOllamaInstallLinuxPipesVendorScript(t *testing.T) {
	rec := &recordingRunner{}
	o := &Ollama{
		Info:   platform.Info{OS: "linux", Distro: platform.DistroDebian},
		Runner: rec,
		Loc:    &locate.Locator{Info: platform.Info{OS: "linux"}},
	}
	// curl is resolvable on any CI host running these tests.
	if o.Loc.FindExecutable([]string{"curl"}, nil) == "" {
		t.Skip("curl not present on host")
	}
	if code := o.Install(context.Background(), "ollama", run.Discard); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	got := argvString(rec.calls[0])
	if !strings.Contains(got, "curl -fsSL https://ollama.com/install.sh | sh") {
		t.Fatalf("argv = %q, want piped vendor script", got)
	}
}

func TestOllamaInstallWindowsUpgradeFallback(t *testing.T) {
	rec := &recordingRunner{codes: []int{1, 0}}
	o := &Ollama{
		Info:   platform.Info{OS: "windows"},
		Runner: rec,
		Winget: &Winget{Info: platform.Info{OS: "windows"}, Runner: rec, path: "winget", resolved: true},
	}
	if code := o.Install(context.Background(), "Ollama.Ollama", run.Discard); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if rec.calls[0].Args[0] != "install" || rec.calls[1].Args[0] != "upgrade" {
		t.Fatalf("verbs = %q, %q", rec.calls[0].Args[0], rec.calls[1].Args[0])
	}
}
