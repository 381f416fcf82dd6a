package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"warntrace/internal/fingerprint"
	"warntrace/internal/issues"
	"warntrace/internal/paths"
	"warntrace/internal/report"
)

var (
	scopeCategory string
	scopeModule   string
)

var scopeCmd = &cobra.Command{
	Use:   "scope <file> <line>",
	Short: "Show the scope and fingerprint an issue at a location would get",
	Long: `Parses a source file and prints the scope selected for an issue of the given
category at the given line, its canonical token stream and the resulting
fingerprint. Useful for checking SCOPES.toml declarations.

Examples:
  warntrace scope src/main/java/Foo.java 42 --category MethodName
  warntrace scope pkg/server.go 10 --category FileLength --format json`,
	Args: cobra.ExactArgs(2),
	RunE: runScope,
}

func init() {
	scopeCmd.Flags().StringVarP(&scopeCategory, "category", "c", "", "Issue category, used to pick the scope variant")
	scopeCmd.Flags().StringVar(&scopeModule, "module", "", "Module name, mixed in when fingerprint.includeModule is set")
	rootCmd.AddCommand(scopeCmd)
}

func runScope(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	format, err := outputFormat()
	if err != nil {
		return err
	}
	line, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid line %q: %w", args[1], err)
	}

	engine, err := s.newEngine(s.repoRoot)
	if err != nil {
		return err
	}

	ctx, cancel := newContext()
	defer cancel()

	issue := issues.Issue{
		FileName:   paths.RelativeTo(args[0], s.repoRoot),
		ModuleName: scopeModule,
		Category:   scopeCategory,
		Line:       line,
	}
	x, err := engine.Explain(ctx, issue)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == report.FormatHuman {
		return printExplanation(out, x)
	}
	return printJSON(out, x)
}

func printExplanation(w io.Writer, x *fingerprint.Explanation) error {
	var b strings.Builder
	fmt.Fprintf(&b, "File:        %s (%s)\n", x.Issue.FileName, x.Language)
	fmt.Fprintf(&b, "Line:        %d\n", x.Issue.Line)
	if x.Requested == x.Effective {
		fmt.Fprintf(&b, "Scope:       %s\n", x.Effective)
	} else {
		fmt.Fprintf(&b, "Scope:       %s (requested %s)\n", x.Effective, x.Requested)
	}
	b.WriteString("Nodes:\n")
	for _, n := range x.Nodes {
		shallow := ""
		if n.Shallow {
			shallow = " [kind only]"
		}
		fmt.Fprintf(&b, "  %-28s lines %d-%d%s\n", n.Kind, n.StartLine, n.EndLine, shallow)
	}
	fmt.Fprintf(&b, "Canonical:   %s\n", truncate(x.Canonical, 240))
	fmt.Fprintf(&b, "Context:     %s\n", strings.Join(x.Discriminators, ", "))
	fmt.Fprintf(&b, "Fingerprint: %s\n", x.Issue.Fingerprint)
	_, err := io.WriteString(w, b.String())
	return err
}
