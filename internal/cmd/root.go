package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version of the repo-analyzer binary
var Version = "1.0.0"

// NewRootCommand builds the command tree. Running the root command without
// a subcommand scans the current directory.
func NewRootCommand() *cobra.Command {
	settings := loadScanSettings()

	rootCmd := &cobra.Command{
		Use:   "repo-analyzer [path]",
		Short: "Static analyzer for source repositories",
		Long: `Repo Analyzer inventories a source tree and reports unused files, duplicate
files, unused dependencies, security-sensitive code patterns and quality
metrics. The findings are written to a Markdown report at the scan root.`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, settings)
		},
	}
	addScanFlags(rootCmd, settings)

	rootCmd.AddCommand(newScanCommand())
	rootCmd.AddCommand(newRulesCommand())

	return rootCmd
}

// Execute runs the root command and exits with status 1 on failure
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
