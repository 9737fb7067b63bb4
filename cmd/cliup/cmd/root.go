package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "cliup",
	Short: "Install and keep AI CLI tools up to date",
	Long: `cliup provisions a workstation with command-line AI tools (Claude Code,
Codex, Gemini CLI and friends), driving npm, winget, the distro package
manager, pip/uv and vendor installers as needed.

It fixes up PATH so freshly installed commands resolve in new shells, and
on Windows registers a scheduled task that keeps the tools updated.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cliup %s (commit: %s, built: %s)\n", Version, Commit, Date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
