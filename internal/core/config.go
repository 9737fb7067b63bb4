package core

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"cliup/internal/core/platform"
)

const (
	appDirName   = "cliup"
	settingsFile = "config.yaml"
	runLogFile   = "last_run.log"
)

// StateDir returns the per-user directory for persistent state: the
// auto-update package list and script, the run log, settings, and the
// user catalog.
func StateDir(info platform.Info) string {
	if info.IsWindows() {
		if lad := os.Getenv("LocalAppData"); lad != "" {
			return filepath.Join(lad, appDirName)
		}
	}
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return appDirName
	}
	return filepath.Join(home, ".local", "state", appDirName)
}

// Settings is the optional user-authored config.yaml in the state dir.
type Settings struct {
	AutoUpdate *bool  `yaml:"auto_update"` // nil = enabled
	DailyTime  string `yaml:"daily_time"`  // scheduled-task time override
}

// AutoUpdateEnabled reports whether the recurring update job should be
// registered after installs.
func (s Settings) AutoUpdateEnabled() bool {
	return s.AutoUpdate == nil || *s.AutoUpdate
}

// UpdateTime returns the configured daily trigger time.
func (s Settings) UpdateTime() string {
	if s.DailyTime != "" {
		return s.DailyTime
	}
	return autoUpdateDailyTime
}

// LoadSettings reads config.yaml from the state dir. A missing file
// yields defaults.
func LoadSettings(stateDir string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(filepath.Join(stateDir, settingsFile))
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("reading settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing %s: %w", settingsFile, err)
	}
	return s, nil
}

// writeFileAtomic writes via a temp file and rename so readers never see
// a partial file.
func writeFileAtomic(path string, data []byte, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, mode); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// RunLog persists the full line stream of the most recent run. Write
// failures never abort provisioning; callers surface them once.
type RunLog struct {
	path string
}

// NewRunLog returns the run log for the given state dir.
func NewRunLog(stateDir string) *RunLog {
	return &RunLog{path: filepath.Join(stateDir, runLogFile)}
}

// Path returns the log file location.
func (l *RunLog) Path() string { return l.path }

// Reset truncates the log and writes a header for a new run.
func (l *RunLog) Reset() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	header := fmt.Sprintf("run started %s\n", time.Now().Format(time.RFC3339))
	return os.WriteFile(l.path, []byte(header), 0o644)
}

// Append writes one line to the log.
func (l *RunLog) Append(line string) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line + "\n")
	return err
}
