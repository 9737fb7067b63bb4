package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"cliup/internal/core"
)

var infoCmd = &cobra.Command{
	Use:   "info <tool>",
	Short: "Show details about one tool",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	spec, ok := core.LookupTool(d.catalog, args[0])
	if !ok {
		return fmt.Errorf("unknown tool %q (run `cliup catalog` for the list)", args[0])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", spec.Label)
	if spec.Help != "" {
		fmt.Fprintf(&b, "%s\n\n", spec.Help)
	}
	fmt.Fprintf(&b, "## Install\n\n")
	fmt.Fprintf(&b, "- Backend: `%s`\n", spec.Backend)
	fmt.Fprintf(&b, "- Packages: `%s`\n", strings.Join(spec.Packages, "`, `"))
	fmt.Fprintf(&b, "- Commands: `%s`\n", strings.Join(spec.Commands, "`, `"))
	if spec.Optional {
		fmt.Fprintf(&b, "- Optional: install failures are skipped, not fatal\n")
	}

	out, err := glamour.Render(b.String(), "auto")
	if err != nil {
		// Fall back to the raw markdown rather than failing the command.
		fmt.Print(b.String())
		return nil
	}
	fmt.Print(out)
	return nil
}
