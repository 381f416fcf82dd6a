package main

import (
	"context"

	"github.com/spf13/cobra"

	"warntrace/internal/filter"
	"warntrace/internal/issues"
	"warntrace/internal/report"
)

var (
	fpParser     string
	fpOutput     string
	fpSourceRoot string
	fpSave       string
	fpIncludes   []string
	fpExcludes   []string
)

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint <report>",
	Short: "Assign fingerprints to the issues of a tool report",
	Long: `Parses a tool report, applies the configured filter and assigns each issue a
fingerprint derived from the syntax tree around it.

Examples:
  warntrace fingerprint target/checkstyle-result.xml
  warntrace fingerprint --parser doxygen doxygen.log --format json -o issues.json
  warntrace fingerprint report.xml --save "main@$(git rev-parse --short HEAD)"`,
	Args: cobra.ExactArgs(1),
	RunE: runFingerprint,
}

func init() {
	fingerprintCmd.Flags().StringVarP(&fpParser, "parser", "p", "checkstyle", "Report parser (checkstyle, doxygen, json)")
	fingerprintCmd.Flags().StringVarP(&fpOutput, "output", "o", "", "Write output to a file instead of stdout")
	fingerprintCmd.Flags().StringVar(&fpSourceRoot, "source-root", "", "Directory the report's file names refer to (default: repository root)")
	fingerprintCmd.Flags().StringVar(&fpSave, "save", "", "Store the result in the scan store under this label")
	addFilterFlags(fingerprintCmd, &fpIncludes, &fpExcludes)
	rootCmd.AddCommand(fingerprintCmd)
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	format, err := outputFormat()
	if err != nil {
		return err
	}
	extra, err := filterFlagRules(fpIncludes, fpExcludes)
	if err != nil {
		return err
	}
	f, err := s.newFilter(extra)
	if err != nil {
		return err
	}

	ctx, cancel := newContext()
	defer cancel()

	sourceRoot := fpSourceRoot
	if sourceRoot == "" {
		sourceRoot = s.repoRoot
	}
	out, err := s.fingerprintReport(ctx, args[0], fpParser, sourceRoot, f)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("save") {
		if err := s.saveScan(ctx, fpSave, out.Issues); err != nil {
			return err
		}
	}

	w, err := openOutput(fpOutput)
	if err != nil {
		return err
	}
	defer w.Close()
	return report.RenderIssues(w, out.Issues, format, renderOptions(out.Diagnostics))
}

// saveScan stores issues and prunes old scans per storage.keepScans.
func (s *session) saveScan(ctx context.Context, label string, c issues.Collection) error {
	if !s.cfg.Storage.Enabled {
		s.logger.Warn("Scan store disabled in configuration; not saving")
		return nil
	}
	db, err := s.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	scan, err := db.SaveScan(ctx, label, c)
	if err != nil {
		return err
	}
	s.logger.Info("Scan saved", "id", scan.ID, "label", label, "issues", scan.IssueCount)

	if keep := s.cfg.Storage.KeepScans; keep > 0 {
		if _, err := db.Prune(ctx, keep); err != nil {
			return err
		}
	}
	return nil
}

func addFilterFlags(cmd *cobra.Command, includes, excludes *[]string) {
	cmd.Flags().StringArrayVar(includes, "include", nil, "Keep only issues matching property=regex (repeatable)")
	cmd.Flags().StringArrayVar(excludes, "exclude", nil, "Drop issues matching property=regex (repeatable)")
}

// filterFlagRules turns property=regex flag values into filter rules.
func filterFlagRules(includes, excludes []string) (*filter.Rules, error) {
	rules := &filter.Rules{Include: map[string][]string{}, Exclude: map[string][]string{}}
	for _, set := range []struct {
		values []string
		into   map[string][]string
	}{{includes, rules.Include}, {excludes, rules.Exclude}} {
		for _, v := range set.values {
			prop, pattern, err := splitFilterFlag(v)
			if err != nil {
				return nil, err
			}
			set.into[prop] = append(set.into[prop], pattern)
		}
	}
	return rules, nil
}
