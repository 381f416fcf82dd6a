package main

import (
	stderrors "errors"

	"github.com/spf13/cobra"

	"warntrace/internal/issues"
	"warntrace/internal/storage"
)

var (
	scanParser     string
	scanLabel      string
	scanOutput     string
	scanSourceRoot string
	scanFailOnNew  bool
	scanIncludes   []string
	scanExcludes   []string
)

var scanCmd = &cobra.Command{
	Use:   "scan <report>",
	Short: "Fingerprint a report, compare it with the previous scan and store it",
	Long: `The CI entry point: fingerprints the report, classifies it against the latest
stored scan, prints the classification and stores the report as the new latest
scan. Old scans are pruned according to storage.keepScans.

Examples:
  warntrace scan target/checkstyle-result.xml --label "$CI_COMMIT_SHA"
  warntrace scan target/checkstyle-result.xml --fail-on-new --format sarif -o warntrace.sarif`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanParser, "parser", "p", "checkstyle", "Report parser (checkstyle, doxygen, json)")
	scanCmd.Flags().StringVar(&scanLabel, "label", "", "Label stored with the scan (e.g. a commit)")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "Write output to a file instead of stdout")
	scanCmd.Flags().StringVar(&scanSourceRoot, "source-root", "", "Directory the report's file names refer to (default: repository root)")
	scanCmd.Flags().BoolVar(&scanFailOnNew, "fail-on-new", false, "Exit with status 1 when new issues are found")
	addFilterFlags(scanCmd, &scanIncludes, &scanExcludes)
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	format, err := outputFormat()
	if err != nil {
		return err
	}
	extra, err := filterFlagRules(scanIncludes, scanExcludes)
	if err != nil {
		return err
	}
	f, err := s.newFilter(extra)
	if err != nil {
		return err
	}

	ctx, cancel := newContext()
	defer cancel()

	sourceRoot := scanSourceRoot
	if sourceRoot == "" {
		sourceRoot = s.repoRoot
	}
	current, err := s.fingerprintReport(ctx, args[0], scanParser, sourceRoot, f)
	if err != nil {
		return err
	}

	var reference issues.Collection
	if s.cfg.Storage.Enabled {
		db, err := s.openStore()
		if err != nil {
			return err
		}
		previous, err := db.LatestScan(ctx)
		db.Close()
		switch {
		case err == nil:
			s.logger.Info("Comparing against previous scan", "id", previous.ID, "label", previous.Label)
			reference = f.Apply(previous.Issues)
		case stderrors.Is(err, storage.ErrScanNotFound):
			s.logger.Info("First scan; every issue is NEW")
		default:
			return err
		}
	}

	renderErr := s.classifyAndRender(ctx, reference, current, format, scanOutput, scanFailOnNew)
	if renderErr != nil && !stderrors.Is(renderErr, errNewIssues) {
		return renderErr
	}
	if err := s.saveScan(ctx, scanLabel, current.Issues); err != nil {
		return err
	}
	return renderErr
}
