package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"warntrace/internal/syntax"
	"warntrace/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, version.Full())
		if syntax.IsAvailable() {
			fmt.Fprintln(out, "Parser: tree-sitter")
		} else {
			fmt.Fprintln(out, "Parser: unavailable (built without cgo)")
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
