package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/arbitrage-cli/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the ordering sanity checks over the scored dataset",
	Long:  "Scores every listing, prints them in score order and evaluates the market ordering checks. Exits non-zero when any check fails.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runValidate(cmd.Context(), cmd.OutOrStdout())
	},
}

func runValidate(ctx context.Context, out io.Writer) error {
	repo, err := loadRepo(ctx)
	if err != nil {
		return err
	}

	r := validation.Run(repo)
	formatValidation(out, r)
	if !r.Passed {
		return eris.Errorf("validate: %d checks failed", len(r.Failed()))
	}
	return nil
}

// formatValidation writes the score table followed by the check results.
func formatValidation(out io.Writer, r validation.Report) {
	_, _ = fmt.Fprintf(out, "%d properties across %d cities\n\n", r.Properties, r.Cities)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCITY\tSUBMARKET\tTIER\tSCORE\tSTR YIELD\tSTR UPLIFT")
	_, _ = fmt.Fprintln(w, "--\t----\t---------\t----\t-----\t---------\t----------")
	for _, row := range r.Rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
			row.ID,
			row.City,
			row.Submarket,
			row.Tier,
			row.Score,
			pct(row.StrNetYieldPct),
			pct(row.StrUpliftPct),
		)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintln(out)
	for _, c := range r.Checks {
		mark := "PASS"
		switch {
		case !c.Passed && c.Advisory:
			mark = "WARN"
		case !c.Passed:
			mark = "FAIL"
		}
		if c.Detail != "" {
			_, _ = fmt.Fprintf(out, "[%s] %s (%s)\n", mark, c.Label, c.Detail)
		} else {
			_, _ = fmt.Fprintf(out, "[%s] %s\n", mark, c.Label)
		}
	}
}

func pct(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", *v)
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
