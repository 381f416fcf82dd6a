package main

import (
	"github.com/spf13/cobra"

	"warntrace/internal/version"
)

var (
	repoFlag    string
	verboseFlag int
	quietFlag   bool
	formatFlag  string
	noColorFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "warntrace",
	Short: "warntrace - track static analysis warnings across code changes",
	Long: `warntrace fingerprints the warnings reported by static analysis tools using
the syntax tree around each warning, so that a warning keeps its identity when
unrelated code is added, removed or reformatted. Two fingerprinted scans can then
be compared to find new, outstanding and fixed warnings.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("warntrace version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "",
		"Repository root (default: nearest parent with .warntrace or .git)")
	rootCmd.PersistentFlags().CountVarP(&verboseFlag, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress all logs")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "human", "Output format (human, json, sarif)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
}
