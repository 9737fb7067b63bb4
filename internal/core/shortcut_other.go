//go:build !windows

package core

import (
	"os"
	"path/filepath"

	"cliup/internal/core/platform"
)

func desktopDir(platform.Info) string {
	candidates := []string{os.Getenv("XDG_DESKTOP_DIR")}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, "Desktop"))
	}
	for _, dir := range candidates {
		if dir == "" {
			continue
		}
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			return dir
		}
	}
	return ""
}
