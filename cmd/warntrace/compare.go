package main

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"warntrace/internal/errors"
	"warntrace/internal/filter"
	"warntrace/internal/fingerprint"
	"warntrace/internal/issues"
	"warntrace/internal/match"
	"warntrace/internal/report"
	"warntrace/internal/storage"
)

// errNewIssues makes the process exit with status 1 without printing an error.
var errNewIssues = stderrors.New("new issues found")

var (
	cmpParser        string
	cmpReference     string
	cmpRefParser     string
	cmpReferenceRoot string
	cmpScan          string
	cmpSourceRoot    string
	cmpOutput        string
	cmpFailOnNew     bool
	cmpIncludes      []string
	cmpExcludes      []string
)

var compareCmd = &cobra.Command{
	Use:   "compare <report>",
	Short: "Classify the issues of a report as new, outstanding or fixed",
	Long: `Fingerprints the current report and matches it against a reference: either a
fingerprinted issue list, a raw report whose sources are checked out elsewhere,
or a scan from the scan store (the latest one by default). Issues are paired
within the same file and category only, so issues of a renamed file are
reported as new and fixed.

Examples:
  warntrace compare checkstyle-result.xml
  warntrace compare checkstyle-result.xml --scan 3f2a...
  warntrace compare checkstyle-result.xml --reference base.json
  warntrace compare checkstyle-result.xml --reference base.xml --reference-parser checkstyle --reference-root ../base`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVarP(&cmpParser, "parser", "p", "checkstyle", "Report parser (checkstyle, doxygen, json)")
	compareCmd.Flags().StringVar(&cmpReference, "reference", "", "Reference report or fingerprinted issue list")
	compareCmd.Flags().StringVar(&cmpRefParser, "reference-parser", "json", "Parser for --reference")
	compareCmd.Flags().StringVar(&cmpReferenceRoot, "reference-root", "", "Source checkout of the reference; fingerprints --reference against it")
	compareCmd.Flags().StringVar(&cmpScan, "scan", "latest", "Stored scan to compare against when --reference is not given")
	compareCmd.Flags().StringVar(&cmpSourceRoot, "source-root", "", "Directory the current report's file names refer to (default: repository root)")
	compareCmd.Flags().StringVarP(&cmpOutput, "output", "o", "", "Write output to a file instead of stdout")
	compareCmd.Flags().BoolVar(&cmpFailOnNew, "fail-on-new", false, "Exit with status 1 when new issues are found")
	addFilterFlags(compareCmd, &cmpIncludes, &cmpExcludes)
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	format, err := outputFormat()
	if err != nil {
		return err
	}
	extra, err := filterFlagRules(cmpIncludes, cmpExcludes)
	if err != nil {
		return err
	}
	f, err := s.newFilter(extra)
	if err != nil {
		return err
	}

	ctx, cancel := newContext()
	defer cancel()

	sourceRoot := cmpSourceRoot
	if sourceRoot == "" {
		sourceRoot = s.repoRoot
	}
	current, err := s.fingerprintReport(ctx, args[0], cmpParser, sourceRoot, f)
	if err != nil {
		return err
	}

	reference, err := s.loadReference(ctx, f)
	if err != nil {
		return err
	}

	return s.classifyAndRender(ctx, reference, current, format, cmpOutput, cmpFailOnNew)
}

// loadReference resolves the reference collection from flags.
func (s *session) loadReference(ctx context.Context, f *filter.Filter) (issues.Collection, error) {
	if cmpReference != "" {
		if cmpReferenceRoot != "" {
			out, err := s.fingerprintReport(ctx, cmpReference, cmpRefParser, cmpReferenceRoot, f)
			if err != nil {
				return nil, err
			}
			return out.Issues, nil
		}
		ref, err := s.readReport(ctx, cmpReference, cmpRefParser, s.repoRoot)
		if err != nil {
			return nil, err
		}
		ref = f.Apply(ref)
		if len(ref) > 0 && ref.CountMatchable() == 0 {
			s.logger.Warn("Reference carries no fingerprints; every current issue will be NEW",
				"hint", "pass --reference-root to fingerprint it against its sources")
		}
		return ref, nil
	}

	db, err := s.openStore()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var scan *storage.Scan
	if cmpScan == "" || cmpScan == "latest" {
		scan, err = db.LatestScan(ctx)
	} else {
		scan, err = db.LoadScan(ctx, cmpScan)
	}
	if stderrors.Is(err, storage.ErrScanNotFound) {
		s.logger.Warn("No reference scan found; every issue is NEW", "scan", cmpScan)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("Comparing against stored scan", "id", scan.ID, "label", scan.Label, "issues", scan.IssueCount)
	return f.Apply(scan.Issues), nil
}

func (s *session) classifyAndRender(ctx context.Context, reference issues.Collection, current *fingerprint.Outcome, format report.Format, output string, failOnNew bool) error {
	matcher := match.NewMatcher(match.Options{Workers: s.cfg.Fingerprint.Workers, Logger: s.logger})
	result, err := matcher.Classify(ctx, reference, current.Issues)
	if err != nil {
		return errors.New(errors.InternalError, "Classification failed", err)
	}

	w, err := openOutput(output)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := report.Render(w, result, format, renderOptions(current.Diagnostics)); err != nil {
		return fmt.Errorf("render result: %w", err)
	}

	if failOnNew && len(result.New()) > 0 {
		return errNewIssues
	}
	return nil
}
