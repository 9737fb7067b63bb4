//go:build !windows

package core

import "cliup/internal/core/platform"

func newPlatformReconciler(info platform.Info) PathReconciler {
	return newProfileReconciler(info)
}
