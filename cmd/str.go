package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/sells-group/arbitrage-cli/internal/dataset"
	"github.com/sells-group/arbitrage-cli/internal/report"
)

type strOptions struct {
	outputOptions
	City string
}

var strOpts strOptions

var strCmd = &cobra.Command{
	Use:   "str",
	Short: "Show short-term-rental economics per listing",
	Long:  "Shows the modelled STR economics of every listing with a resolvable market, in raw-score order.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSTR(cmd.Context(), cmd.OutOrStdout(), strOpts)
	},
}

func runSTR(ctx context.Context, out io.Writer, opts strOptions) error {
	repo, err := loadRepo(ctx)
	if err != nil {
		return err
	}
	return writeSheet(out, opts.outputOptions, report.STR(repo.List(dataset.Filter{City: opts.City})))
}

func init() {
	strCmd.Flags().StringVar(&strOpts.City, "city", "", "only listings in this city (case-insensitive)")
	addOutputFlags(strCmd, &strOpts.outputOptions)
	rootCmd.AddCommand(strCmd)
}
