package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List installable tools",
	Long: `Catalog lists every tool cliup can install: the built-in set plus any
declared in catalog.jsonc in the state directory.`,
	RunE: runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tNAME\tBACKEND\tPACKAGES")
	for _, spec := range d.catalog {
		key := spec.Key
		if spec.Optional {
			key += " (optional)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", key, spec.Label, spec.Backend, strings.Join(spec.Packages, ", "))
	}
	return w.Flush()
}
