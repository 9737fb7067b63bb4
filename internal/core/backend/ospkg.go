package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cliup/internal/core/platform"
	"cliup/internal/core/run"
)

// ErrUnsupportedDistro marks package operations on a Linux distribution
// whose package manager could not be classified.
var ErrUnsupportedDistro = errors.New("unsupported linux distribution")

// ErrNeedElevation marks system package operations attempted without root.
var ErrNeedElevation = errors.New("root privileges required")

// SystemPackages installs distro packages with the native package manager.
// It is a prerequisite mechanism used by the npm, python and vendor
// adapters on Linux, not a tool backend itself.
type SystemPackages struct {
	Info   platform.Info
	Runner run.Runner
}

// commandSets returns the command sequence for the distro family, or an
// error for unclassified families. Unknown distros fail closed; guessing
// a package manager risks wedging the host.
func (s *SystemPackages) commandSets(pkgs []string) ([][]string, error) {
	switch s.Info.Distro {
	case platform.DistroDebian:
		return [][]string{
			{"apt-get", "update"},
			append([]string{"apt-get", "install", "-y"}, pkgs...),
		}, nil
	case platform.DistroFedora:
		return [][]string{
			append([]string{"dnf", "install", "-y"}, pkgs...),
		}, nil
	case platform.DistroArch:
		return [][]string{
			append([]string{"pacman", "-Sy", "--noconfirm"}, pkgs...),
		}, nil
	default:
		return nil, fmt.Errorf("%w: install %s manually", ErrUnsupportedDistro, strings.Join(pkgs, ", "))
	}
}

// Install installs pkgs with the native package manager. It requires an
// elevated process and fails fast otherwise.
func (s *SystemPackages) Install(ctx context.Context, pkgs []string, sink run.Sink) error {
	cmds, err := s.commandSets(pkgs)
	if err != nil {
		return err
	}
	if !s.Info.Elevated {
		return fmt.Errorf("installing %s: %w (rerun with sudo)", strings.Join(pkgs, ", "), ErrNeedElevation)
	}
	for _, argv := range cmds {
		code := s.Runner.Run(ctx, run.Command{Path: argv[0], Args: argv[1:]}, sink)
		if code != 0 {
			return fmt.Errorf("%s exited with code %s", argv[0], run.FormatExitCode(code))
		}
	}
	return nil
}
