package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Report platform and runtime availability",
	Long: `Doctor reports what cliup detected about this host and which runtimes
the install backends would find, without installing anything.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}

	fmt.Printf("os:        %s\n", d.info.OS)
	fmt.Printf("elevated:  %v\n", d.info.Elevated)
	if d.info.IsLinux() {
		fmt.Printf("distro:    %s\n", d.info.Distro)
	}
	fmt.Printf("state dir: %s\n", d.stateDir)
	fmt.Printf("auto-update enabled: %v\n\n", d.settings.AutoUpdateEnabled())

	probes := []struct {
		name       string
		candidates []string
	}{
		{"node", []string{"node"}},
		{"npm", []string{"npm"}},
		{"python", []string{"python3", "python"}},
		{"uv", []string{"uv"}},
		{"ollama", []string{"ollama"}},
	}
	if d.info.IsWindows() {
		probes = append(probes, struct {
			name       string
			candidates []string
		}{"winget", []string{"winget"}})
	}

	loc := d.quietLocator()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUNTIME\tSTATUS\tPATH")
	for _, probe := range probes {
		status, path := "missing", ""
		if found := loc.FindExecutable(probe.candidates, nil); found != "" {
			status, path = "found", found
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", probe.name, status, path)
	}
	return w.Flush()
}
