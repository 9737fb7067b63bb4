package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cliup/internal/core/locate"
	"cliup/internal/core/platform"
	"cliup/internal/core/run"
)

const nodeWingetID = "OpenJS.NodeJS.LTS"

// npmQuietFlags suppress npm's funding banners, audit reports and
// self-update notices so the streamed output stays meaningful.
var npmQuietFlags = []string{
	"--no-fund",
	"--no-audit",
	"--no-update-notifier",
	"--loglevel", "error",
}

// Node installs global npm packages, provisioning Node.js itself when the
// host lacks it.
type Node struct {
	Info   platform.Info
	Runner run.Runner
	Loc    *locate.Locator
	Sys    *SystemPackages
	Winget *Winget

	npmPath string
}

func (n *Node) Kind() Kind { return KindNpm }

// NpmPath reports the resolved npm executable; empty until Ensure (or a
// successful probe) has run.
func (n *Node) NpmPath() string { return n.npmPath }

// Probe looks for npm without installing anything.
func (n *Node) Probe(ctx context.Context) bool {
	dirs := n.Loc.NodeBinDirs(ctx, "")
	n.npmPath = n.Loc.FindExecutable([]string{"npm"}, dirs)
	return n.npmPath != ""
}

// Ensure makes npm available, installing the Node.js LTS runtime when
// missing (winget on Windows, distro packages on Linux).
func (n *Node) Ensure(ctx context.Context, sink run.Sink) error {
	if n.npmPath != "" {
		return nil
	}
	if n.Probe(ctx) {
		sink.Log("Found npm: " + n.npmPath)
		return nil
	}
	sink.Log("Node.js not found, installing it first...")
	var err error
	switch {
	case n.Info.IsWindows():
		err = n.Winget.InstallOrUpgrade(ctx, nodeWingetID, sink)
	case n.Info.IsLinux():
		err = n.Sys.Install(ctx, []string{"nodejs", "npm"}, sink)
	default:
		return errors.New("node.js is required; install it from https://nodejs.org and retry")
	}
	if err != nil {
		return fmt.Errorf("installing node.js: %w", err)
	}
	if !n.Probe(ctx) {
		return errors.New("npm still not found after installing node.js; open a new terminal and retry")
	}
	sink.Log("Found npm: " + n.npmPath)
	return nil
}

// Install runs a global npm install of pkg. npm's own directory is
// prepended to PATH so the node binary next to it wins over stale ones,
// and the update notifier is disabled through the environment as well
// because older npm versions ignore the flag.
func (n *Node) Install(ctx context.Context, pkg string, sink run.Sink) int {
	if n.npmPath == "" && !n.Probe(ctx) {
		sink.Log("npm is not available")
		return -1
	}
	env := map[string]string{
		"npm_config_update_notifier": "false",
		"PATH": filepath.Dir(n.npmPath) + string(os.PathListSeparator) + os.Getenv("PATH"),
	}
	args := append(append([]string{}, npmQuietFlags...), "install", "-g", pkg)
	return n.Runner.Run(ctx, run.Command{Path: n.npmPath, Args: args, Env: env}, sink)
}

// BinDirs reports where npm places global command shims.
func (n *Node) BinDirs(ctx context.Context) []string {
	return n.Loc.NodeBinDirs(ctx, n.npmPath)
}
