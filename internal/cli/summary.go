package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/tailorworks/tailor-etl/internal/warehouse"
)

// WriteSummary renders report as an aligned table followed by the outcome.
func WriteSummary(w io.Writer, report *warehouse.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "STAGE\tTABLE\tREAD\tINSERTED\tEXISTING\tORPHANED\tINVALID\t")
	for _, t := range report.Tables {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t\n",
			t.Stage, t.Table, t.Read, t.Inserted, t.Existing, t.Orphaned, t.Invalid)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	mode := ""
	if report.DryRun {
		mode = " (dry run, nothing written)"
	}
	if report.Succeeded() {
		_, err := fmt.Fprintf(w, "\nETL run succeeded in %s%s\n", elapsed(report.Duration), mode)
		return err
	}
	_, err := fmt.Fprintf(w, "\nETL run failed at stage %s after %s%s: %v\n",
		report.FailedStage, elapsed(report.Duration), mode, report.Err)
	return err
}
