package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/arbitrage-cli/internal/dataset"
	"github.com/sells-group/arbitrage-cli/internal/report"
)

type scoreOptions struct {
	outputOptions
	City     string
	MinScore float64
	Save     bool
	Verbose  bool
}

var scoreOpts scoreOptions

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score every listing for raw regulatory arbitrage",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runScore(cmd.Context(), cmd.OutOrStdout(), scoreOpts)
	},
}

func runScore(ctx context.Context, out io.Writer, opts scoreOptions) error {
	repo, err := loadRepo(ctx)
	if err != nil {
		return err
	}

	listings := repo.List(dataset.Filter{City: opts.City, MinScore: opts.MinScore})
	sheet := report.Listings(listings)
	if opts.Verbose {
		if sheet, err = report.Breakdowns(listings, repo.Engine()); err != nil {
			return err
		}
	}
	if err := writeSheet(out, opts.outputOptions, sheet); err != nil {
		return err
	}

	if opts.Save {
		id, err := saveRun(ctx, rawRun(listings))
		if err != nil {
			return err
		}
		zap.L().Info("score: saved run", zap.String("run_id", id), zap.Int("entries", len(listings)))
	}
	return nil
}

func addOutputFlags(cmd *cobra.Command, o *outputOptions) {
	cmd.Flags().StringVar(&o.Format, "format", "table", "output format (table, csv, xlsx)")
	cmd.Flags().StringVarP(&o.Output, "output", "o", "", "write to file instead of stdout")
}

func init() {
	scoreCmd.Flags().StringVar(&scoreOpts.City, "city", "", "only listings in this city (case-insensitive)")
	scoreCmd.Flags().Float64Var(&scoreOpts.MinScore, "min-score", 0, "only listings scoring at least this")
	scoreCmd.Flags().BoolVar(&scoreOpts.Save, "save", false, "persist the scores as a run snapshot")
	scoreCmd.Flags().BoolVarP(&scoreOpts.Verbose, "verbose", "v", false, "show the factor breakdown behind each score")
	addOutputFlags(scoreCmd, &scoreOpts.outputOptions)
	rootCmd.AddCommand(scoreCmd)
}
