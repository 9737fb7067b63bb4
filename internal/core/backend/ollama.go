package backend

import (
	"context"
	"fmt"

	"cliup/internal/core/locate"
	"cliup/internal/core/platform"
	"cliup/internal/core/run"
)

const ollamaInstallURL = "https://ollama.com/install.sh"

// Ollama installs the Ollama runtime through its vendor channels: winget
// on Windows, the official install script piped to sh on Linux. The
// package candidate it receives is the winget id.
type Ollama struct {
	Info   platform.Info
	Runner run.Runner
	Loc    *locate.Locator
	Sys    *SystemPackages
	Winget *Winget
}

func (o *Ollama) Kind() Kind { return KindVendor }

// Ensure is a no-op; the vendor channels carry their own prerequisites
// and Install provisions them on demand.
func (o *Ollama) Ensure(context.Context, run.Sink) error { return nil }

// Install runs the vendor install. Exit codes follow the underlying
// mechanism; prerequisite failures return 1 after logging.
func (o *Ollama) Install(ctx context.Context, pkg string, sink run.Sink) int {
	switch {
	case o.Info.IsWindows():
		if o.Winget.Path() == "" {
			sink.Log("winget not found; install \"App Installer\" from the Microsoft Store")
			return 1
		}
		if code := o.Winget.runVerb(ctx, "install", pkg, sink); code == 0 {
			return 0
		}
		sink.Log(fmt.Sprintf("winget install of %s failed, trying upgrade", pkg))
		return o.Winget.runVerb(ctx, "upgrade", pkg, sink)
	case o.Info.IsLinux():
		return o.installLinux(ctx, sink)
	default:
		sink.Log("ollama has no automated install for this platform; see https://ollama.com/download")
		return 1
	}
}

func (o *Ollama) installLinux(ctx context.Context, sink run.Sink) int {
	if o.Loc.FindExecutable([]string{"curl"}, nil) == "" {
		sink.Log("curl not found, installing it first...")
		if err := o.Sys.Install(ctx, []string{"curl"}, sink); err != nil {
			sink.Log("could not install curl: " + err.Error())
			return 1
		}
	}
	cmd := run.Command{
		Path: "sh",
		Args: []string{"-c", "curl -fsSL " + ollamaInstallURL + " | sh"},
	}
	return o.Runner.Run(ctx, cmd, sink)
}

// BinDirs reports the vendor installer's target directories.
func (o *Ollama) BinDirs(context.Context) []string {
	return o.Loc.OllamaBinDirs()
}
