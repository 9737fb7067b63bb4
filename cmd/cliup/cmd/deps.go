package cmd

import (
	"fmt"

	"cliup/internal/core"
	"cliup/internal/core/locate"
	"cliup/internal/core/platform"
	"cliup/internal/core/run"
)

// deps holds shared dependencies for CLI commands.
type deps struct {
	info     platform.Info
	runner   run.Runner
	loc      *locate.Locator
	stateDir string
	settings core.Settings
	catalog  []core.ToolSpec
}

// newDeps probes the platform and loads state-dir config. Called lazily
// by commands that need them.
func newDeps() (*deps, error) {
	info := platform.Detect()
	stateDir := core.StateDir(info)

	settings, err := core.LoadSettings(stateDir)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	catalog, err := core.FullCatalog(stateDir)
	if err != nil {
		return nil, err
	}

	runner := run.ExecRunner{}
	return &deps{
		info:     info,
		runner:   runner,
		loc:      &locate.Locator{Info: info, Runner: runner},
		stateDir: stateDir,
		settings: settings,
		catalog:  catalog,
	}, nil
}

// quietLocator resolves executables without shelling out (no npm prefix
// queries), for read-only commands that should stay fast.
func (d *deps) quietLocator() *locate.Locator {
	return &locate.Locator{Info: d.info}
}
