package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/arbitrage-cli/internal/model"
	"github.com/sells-group/arbitrage-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect saved score and ranking runs",
	Long:  "Commands for listing and viewing run snapshots saved with --save.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		kind, _ := cmd.Flags().GetString("kind")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{Kind: model.RunKind(kind), Limit: limit})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(cmd.OutOrStdout(), runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the entries of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		}
		formatRun(cmd.OutOrStdout(), run)
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("kind", "", "filter by run kind (raw, profile)")
	runsListCmd.Flags().Int("limit", 20, "max number of runs to display")

	runsShowCmd.Flags().Bool("json", false, "print the run as JSON")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []store.RunSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tKIND\tENTRIES\tTOP_SCORE\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t----\t-------\t---------\t-------")

	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%s\n",
			truncateID(r.ID),
			r.Kind,
			r.Entries,
			r.TopScore,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// formatRun writes a run header and its entries in saved order.
func formatRun(out io.Writer, run *model.Run) {
	_, _ = fmt.Fprintf(out, "Run %s (%s) created %s\n", run.ID, run.Kind, run.CreatedAt.Format("2006-01-02 15:04"))
	if p := run.Profile; p != nil {
		_, _ = fmt.Fprintf(out, "Profile: occupy=%t credit=%s risk=%s horizon=%s renovation=%d strategies=%v\n",
			p.WillOccupy, p.CreditTier, p.RiskTolerance, p.Horizon, p.RenovationComfort, p.StrategyPreferences)
	}
	_, _ = fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tOPPORTUNITY\tCITY\tSCORE\tSTR\tDRIVERS")
	for i, e := range run.Entries {
		strScore := "-"
		if e.StrScore != nil {
			strScore = fmt.Sprintf("%.2f", *e.StrScore)
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%s\t%s\n",
			i+1, e.OpportunityID, e.City, e.Score, strScore, strings.Join(e.Drivers, "; "))
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
