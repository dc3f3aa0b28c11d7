package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/arbitrage-cli/internal/model"
	"github.com/sells-group/arbitrage-cli/internal/report"
)

// profileFlags overrides the configured profile field by field. Only flags
// the user set are applied.
type profileFlags struct {
	Occupy      bool
	CurrentRent float64
	Credit      string
	Risk        string
	Horizon     string
	Renovation  int
	Strategies  []string
}

func (f profileFlags) apply(base model.ArbitrageProfile, changed func(name string) bool) model.ArbitrageProfile {
	p := base.Clone()
	if changed("occupy") {
		p.WillOccupy = f.Occupy
	}
	if changed("current-rent") {
		rent := f.CurrentRent
		p.CurrentRent = &rent
	}
	if changed("credit") {
		p.CreditTier = model.CreditTier(f.Credit)
	}
	if changed("risk") {
		p.RiskTolerance = model.RiskTolerance(f.Risk)
	}
	if changed("horizon") {
		p.Horizon = model.Horizon(f.Horizon)
	}
	if changed("renovation") {
		p.RenovationComfort = f.Renovation
	}
	if changed("strategies") {
		p.StrategyPreferences = make([]model.Strategy, len(f.Strategies))
		for i, s := range f.Strategies {
			p.StrategyPreferences[i] = model.Strategy(s)
		}
	}
	return p
}

type rankOptions struct {
	outputOptions
	Save bool
}

var (
	rankProfile profileFlags
	rankOpts    rankOptions
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank listings against an investor profile",
	Long:  "Ranks every listing by profile-aware score. The profile comes from config and is overridden by any profile flag given here.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		profile := rankProfile.apply(cfg.Profile, cmd.Flags().Changed)
		return runRank(cmd.Context(), cmd.OutOrStdout(), profile, rankOpts)
	},
}

func runRank(ctx context.Context, out io.Writer, profile model.ArbitrageProfile, opts rankOptions) error {
	repo, err := loadRepo(ctx)
	if err != nil {
		return err
	}

	ranked, err := repo.Rank(profile)
	if err != nil {
		return err
	}
	if err := writeSheet(out, opts.outputOptions, report.Rankings(ranked)); err != nil {
		return err
	}

	if opts.Save {
		id, err := saveRun(ctx, profileRun(ranked, profile))
		if err != nil {
			return err
		}
		zap.L().Info("rank: saved run", zap.String("run_id", id), zap.Int("entries", len(ranked)))
	}
	return nil
}

func init() {
	f := rankCmd.Flags()
	f.BoolVar(&rankProfile.Occupy, "occupy", false, "investor will occupy the property")
	f.Float64Var(&rankProfile.CurrentRent, "current-rent", 0, "investor's current monthly rent")
	f.StringVar(&rankProfile.Credit, "credit", "", "credit tier (A, B, C, D)")
	f.StringVar(&rankProfile.Risk, "risk", "", "risk tolerance (low, medium, high)")
	f.StringVar(&rankProfile.Horizon, "horizon", "", "hold horizon (short, medium, long)")
	f.IntVar(&rankProfile.Renovation, "renovation", 0, "renovation comfort (0-5)")
	f.StringSliceVar(&rankProfile.Strategies, "strategies", nil, "strategy preferences (ADU, HouseHack, SmallMF, Teardown, SB9)")
	f.BoolVar(&rankOpts.Save, "save", false, "persist the ranking as a run snapshot")
	addOutputFlags(rankCmd, &rankOpts.outputOptions)
	rootCmd.AddCommand(rankCmd)
}
