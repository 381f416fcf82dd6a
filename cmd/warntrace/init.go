package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"warntrace/internal/config"
	"warntrace/internal/errors"
	"warntrace/internal/paths"
	"warntrace/internal/scope"
)

var (
	initForce  bool
	initScopes bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize warntrace configuration",
	Long: `Creates a .warntrace/ directory with the default configuration in the repository
root. With --scopes, also writes SCOPES.toml listing the built-in category to
scope variant table so it can be edited.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration")
	initCmd.Flags().BoolVar(&initScopes, "scopes", false, "Also write "+scope.DeclarationFile+" with the built-in declarations")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	repoRoot, err := getRepoRoot()
	if err != nil {
		return errors.New(errors.InternalError, "Failed to get current directory", err)
	}
	out := cmd.OutOrStdout()

	configPath := paths.ConfigPath(repoRoot)
	if _, statErr := os.Stat(configPath); statErr == nil && !initForce {
		// Already initialized is success, so CI can run init unconditionally.
		fmt.Fprintln(out, "warntrace already initialized.")
		fmt.Fprintf(out, "Configuration at: %s\n", configPath)
		fmt.Fprintln(out, "\nRun 'warntrace init --force' to reinitialize.")
		return nil
	}

	if err := config.DefaultConfig().Save(repoRoot); err != nil {
		return errors.New(errors.InternalError, "Failed to write config file", err)
	}
	fmt.Fprintf(out, "Configuration written to: %s\n", configPath)

	if initScopes {
		declPath := filepath.Join(repoRoot, scope.DeclarationFile)
		if _, statErr := os.Stat(declPath); statErr == nil && !initForce {
			fmt.Fprintf(out, "%s exists, leaving it unchanged.\n", declPath)
		} else {
			if err := scope.WriteDeclarationFile(declPath, scope.DefaultRules()); err != nil {
				return errors.New(errors.InternalError, "Failed to write scope declarations", err)
			}
			fmt.Fprintf(out, "Scope declarations written to: %s\n", declPath)
		}
	}

	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Run 'warntrace scan <report>' on the main branch to store a baseline")
	fmt.Fprintln(out, "  2. Run 'warntrace compare <report>' on a change to see new issues")
	return nil
}
