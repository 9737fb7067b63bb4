package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cliup/internal/core"
	"cliup/internal/core/backend"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which tools are installed and where",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	loc := d.quietLocator()
	ctx := context.Background()

	dirsFor := func(spec core.ToolSpec) []string {
		switch spec.Backend {
		case backend.KindPython:
			return loc.PythonBinDirs()
		case backend.KindVendor:
			return loc.OllamaBinDirs()
		default:
			return loc.NodeBinDirs(ctx, "")
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tNAME\tSTATUS\tPATH")
	for _, spec := range d.catalog {
		status, path := "not installed", ""
		if found := loc.FindExecutable(spec.Commands, dirsFor(spec)); found != "" {
			status, path = "installed", found
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", spec.Key, spec.Label, status, path)
	}
	return w.Flush()
}
