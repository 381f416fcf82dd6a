package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"warntrace/internal/report"
	"warntrace/internal/storage"
)

var (
	scansLimit int
	scansKeep  int
)

var scansCmd = &cobra.Command{
	Use:   "scans",
	Short: "Manage stored scans",
}

var scansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored scans, newest first",
	Args:  cobra.NoArgs,
	RunE:  runScansList,
}

var scansShowCmd = &cobra.Command{
	Use:   "show <id|latest>",
	Short: "Print the issues of a stored scan",
	Args:  cobra.ExactArgs(1),
	RunE:  runScansShow,
}

var scansPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest scans",
	Args:  cobra.NoArgs,
	RunE:  runScansPrune,
}

func init() {
	scansListCmd.Flags().IntVarP(&scansLimit, "limit", "n", 20, "Maximum number of scans to list (0 for all)")
	scansPruneCmd.Flags().IntVar(&scansKeep, "keep", -1, "Number of scans to keep (default: storage.keepScans)")
	scansCmd.AddCommand(scansListCmd, scansShowCmd, scansPruneCmd)
	rootCmd.AddCommand(scansCmd)
}

func runScansList(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	format, err := outputFormat()
	if err != nil {
		return err
	}
	db, err := s.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := newContext()
	defer cancel()

	scans, err := db.ListScans(ctx, scansLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format != report.FormatHuman {
		if scans == nil {
			scans = []storage.Scan{}
		}
		return printJSON(out, scans)
	}
	return printScanTable(out, scans)
}

func printScanTable(w io.Writer, scans []storage.Scan) error {
	if len(scans) == 0 {
		_, err := fmt.Fprintln(w, "No scans stored.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tLABEL\tISSUES\tFINGERPRINTED")
	for _, sc := range scans {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n",
			sc.ID, sc.CreatedAt.Local().Format("2006-01-02 15:04:05"), sc.Label, sc.IssueCount, sc.Fingerprinted)
	}
	return tw.Flush()
}

func runScansShow(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	format, err := outputFormat()
	if err != nil {
		return err
	}
	db, err := s.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := newContext()
	defer cancel()

	var scan *storage.Scan
	if args[0] == "latest" {
		scan, err = db.LatestScan(ctx)
	} else {
		scan, err = db.LoadScan(ctx, args[0])
	}
	if err != nil {
		return err
	}
	return report.RenderIssues(cmd.OutOrStdout(), scan.Issues, format, renderOptions(nil))
}

func runScansPrune(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	keep := scansKeep
	if keep < 0 {
		keep = s.cfg.Storage.KeepScans
	}
	db, err := s.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := newContext()
	defer cancel()

	removed, err := db.Prune(ctx, keep)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d scan(s), kept at most %d.\n", removed, keep)
	return nil
}
