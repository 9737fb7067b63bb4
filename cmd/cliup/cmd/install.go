package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"cliup/internal/core"
	"cliup/internal/core/run"
	"cliup/internal/tui"
)

var (
	installPlain        bool
	installNoAutoUpdate bool
	installNoShortcuts  bool
)

var installCmd = &cobra.Command{
	Use:   "install [tool...]",
	Short: "Install the selected AI CLI tools",
	Long: `Install provisions the named tools (or all of them when no names are
given), ensuring the required runtimes first and fixing up PATH after.

Tool names are catalog keys; run "cliup catalog" for the list.`,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installPlain, "plain", false, "print log lines instead of the progress UI")
	installCmd.Flags().BoolVar(&installNoAutoUpdate, "no-auto-update", false, "skip registering the recurring update task")
	installCmd.Flags().BoolVar(&installNoShortcuts, "no-shortcuts", false, "skip desktop shortcuts")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	selected, err := core.SelectTools(d.catalog, args)
	if err != nil {
		return err
	}

	runLog := core.NewRunLog(d.stateDir)
	if err := runLog.Reset(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: run log unavailable: %v\n", err)
	}

	opts := core.Options{
		AutoUpdate: d.settings.AutoUpdateEnabled() && !installNoAutoUpdate,
		Shortcuts:  !installNoShortcuts,
	}
	scheduler := &core.AutoUpdateScheduler{
		Info:      d.info,
		Runner:    d.runner,
		StateDir:  d.stateDir,
		DailyTime: d.settings.DailyTime,
	}
	shortcuts := &core.ShortcutWriter{Info: d.info, Runner: d.runner}

	if installPlain {
		return installPlainRun(d, selected, scheduler, shortcuts, runLog, opts)
	}
	return installWithUI(d, selected, scheduler, shortcuts, runLog, opts)
}

// loggingSink fans lines out to emit and the persistent run log. The
// first log write failure is reported once; later ones are dropped.
func loggingSink(runLog *core.RunLog, emit func(string)) run.Sink {
	warned := false
	return run.SinkFunc(func(line string) {
		emit(line)
		if err := runLog.Append(line); err != nil && !warned {
			warned = true
			fmt.Fprintf(os.Stderr, "warning: run log: %v\n", err)
		}
	})
}

func installPlainRun(d *deps, selected []core.ToolSpec, scheduler *core.AutoUpdateScheduler,
	shortcuts *core.ShortcutWriter, runLog *core.RunLog, opts core.Options) error {

	o := core.NewOrchestrator(core.Config{
		Info:      d.info,
		Runner:    d.runner,
		Locator:   d.loc,
		Scheduler: scheduler,
		Shortcuts: shortcuts,
		Sink:      loggingSink(runLog, func(line string) { fmt.Println(line) }),
		OnStatus:  func(s string) { fmt.Println("==> " + s) },
	})
	res, err := o.Run(context.Background(), selected, opts)
	if err != nil {
		return err
	}
	printSummary(os.Stdout, res)
	return nil
}

func installWithUI(d *deps, selected []core.ToolSpec, scheduler *core.AutoUpdateScheduler,
	shortcuts *core.ShortcutWriter, runLog *core.RunLog, opts core.Options) error {

	events := make(chan tea.Msg, 256)
	o := core.NewOrchestrator(core.Config{
		Info:       d.info,
		Runner:     d.runner,
		Locator:    d.loc,
		Scheduler:  scheduler,
		Shortcuts:  shortcuts,
		Sink:       loggingSink(runLog, func(line string) { events <- tui.LogMsg(line) }),
		OnStatus:   func(s string) { events <- tui.StatusMsg(s) },
		OnProgress: func(pct int) { events <- tui.ProgressMsg(pct) },
	})

	var res *core.Result
	var runErr error
	go func() {
		res, runErr = o.Run(context.Background(), selected, opts)
		events <- tui.DoneMsg{Err: runErr}
	}()

	if _, err := tea.NewProgram(tui.New(events)).Run(); err != nil {
		return fmt.Errorf("progress UI: %w", err)
	}
	if runErr != nil {
		return runErr
	}
	printSummary(os.Stdout, res)
	return nil
}

func printSummary(w io.Writer, res *core.Result) {
	fmt.Fprintf(w, "\n%d tool(s) ready.\n", len(res.Installed))
	for _, tool := range res.Installed {
		where := tool.Path
		if where == "" {
			where = "(open a new terminal to use it)"
		}
		note := ""
		if tool.Existing {
			note = "  [existing install]"
		}
		fmt.Fprintf(w, "  %-12s %s%s\n", tool.Spec.Key, where, note)
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintf(w, "Skipped optional: %s\n", strings.Join(res.Skipped, ", "))
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}
