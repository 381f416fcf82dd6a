package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"warntrace/internal/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !stderrors.Is(err, errNewIssues) {
			printError(err)
		}
		os.Exit(exitStatus(err))
	}
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	for _, fix := range errors.GetSuggestedFixes(errors.CodeOf(err)) {
		if fix.Command != "" {
			fmt.Fprintf(os.Stderr, "  try: %s\n", fix.Command)
		}
		if fix.Description != "" {
			fmt.Fprintf(os.Stderr, "  hint: %s\n", fix.Description)
		}
	}
}

// exitStatus maps a command error to the process exit status. 1 is reserved
// for "new issues found" in compare and scan.
func exitStatus(err error) int {
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, errNewIssues):
		return 1
	default:
		return exitCode(errors.CodeOf(err))
	}
}

// exitCode maps error codes to process exit codes.
func exitCode(code errors.ErrorCode) int {
	switch code {
	case errors.ConfigInvalid, errors.MalformedFilterRegex:
		return 3
	default:
		return 2
	}
}
