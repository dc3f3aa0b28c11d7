package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/arbitrage-cli/internal/diligence"
)

var diligenceCmd = &cobra.Command{
	Use:   "diligence <id>",
	Short: "Print the due-diligence packet for one listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiligence(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

func runDiligence(ctx context.Context, out io.Writer, id string) error {
	repo, err := loadRepo(ctx)
	if err != nil {
		return err
	}

	l, ok := repo.Get(id)
	if !ok {
		return eris.Errorf("opportunity not found: %s", id)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(diligence.Build(l))
}

func init() {
	rootCmd.AddCommand(diligenceCmd)
}
