//go:build !windows

package run

import "os/exec"

func hideConsoleWindow(*exec.Cmd) {}
