//go:build windows

package core

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/windows/registry"

	"cliup/internal/core/platform"
)

func desktopDir(platform.Info) string {
	var candidates []string
	if dir := desktopFromRegistry(); dir != "" {
		candidates = append(candidates, dir)
	}
	if profile := os.Getenv("UserProfile"); profile != "" {
		candidates = append(candidates,
			filepath.Join(profile, "Desktop"),
			filepath.Join(profile, "OneDrive", "Desktop"),
		)
	}
	for _, dir := range candidates {
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			return dir
		}
	}
	return ""
}

// desktopFromRegistry reads the redirected desktop location; OneDrive
// folder backup moves it away from %UserProfile%\Desktop.
func desktopFromRegistry() string {
	key, err := registry.OpenKey(registry.CURRENT_USER,
		`Software\Microsoft\Windows\CurrentVersion\Explorer\User Shell Folders`,
		registry.QUERY_VALUE)
	if err != nil {
		return ""
	}
	defer key.Close()
	value, _, err := key.GetStringValue("Desktop")
	if err != nil {
		return ""
	}
	expanded, err := registry.ExpandString(value)
	if err != nil {
		return value
	}
	return expanded
}
