package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cliup/internal/core"
	"cliup/internal/core/run"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh the recurring auto-update task",
	Long: `Update regenerates the auto-update script from the recorded package
list and re-registers the scheduled task (Windows only). Useful after the
task was removed or the state directory moved.`,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	scheduler := &core.AutoUpdateScheduler{
		Info:      d.info,
		Runner:    d.runner,
		StateDir:  d.stateDir,
		DailyTime: d.settings.DailyTime,
	}
	pkgs, err := core.ReadPackageList(scheduler.PackagesPath())
	if err != nil {
		return fmt.Errorf("reading auto-update package list: %w", err)
	}
	if len(pkgs) == 0 {
		fmt.Println("No auto-update packages recorded yet; run `cliup install` first.")
		return nil
	}
	sink := run.SinkFunc(func(line string) { fmt.Println(line) })
	return scheduler.RegisterOrUpdate(context.Background(), pkgs, sink)
}
