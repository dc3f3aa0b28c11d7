package main

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/arbitrage-cli/internal/dataset"
	"github.com/sells-group/arbitrage-cli/internal/model"
	"github.com/sells-group/arbitrage-cli/internal/report"
	"github.com/sells-group/arbitrage-cli/internal/scoring"
	"github.com/sells-group/arbitrage-cli/internal/store"
	"github.com/sells-group/arbitrage-cli/internal/str"
)

// loadRepo builds the scored repository from the configured dataset, market
// table and weights.
func loadRepo(ctx context.Context) (*dataset.Repository, error) {
	var (
		markets *str.MarketTable
		err     error
	)
	if cfg.Markets.Path != "" {
		markets, err = str.LoadMarketTable(cfg.Markets.Path)
	} else {
		markets, err = str.DefaultMarketTable()
	}
	if err != nil {
		return nil, err
	}

	var opps []model.Opportunity
	if cfg.Dataset.Path != "" {
		if opps, err = dataset.LoadFile(cfg.Dataset.Path); err != nil {
			return nil, err
		}
	} else {
		opps = dataset.SouthBay()
	}

	engine, err := scoring.NewEngine(cfg.Scoring.Weights)
	if err != nil {
		return nil, err
	}

	return dataset.Build(ctx, opps, dataset.BuildOptions{
		Engine:      engine,
		Markets:     markets,
		Concurrency: cfg.Engine.AttachConcurrency,
	})
}

func initStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, store.Options{
		Driver:      cfg.Store.Driver,
		DatabaseURL: cfg.Store.DatabaseURL,
		Pool: &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		},
		ConnectAttempts: cfg.Store.ConnectAttempts,
	})
}

// outputOptions are the flags shared by the tabular commands.
type outputOptions struct {
	Format string
	Output string
}

// writeSheet renders s to path, or to stdout when path is empty.
func writeSheet(stdout io.Writer, o outputOptions, s report.Sheet) error {
	format, err := report.ParseFormat(o.Format)
	if err != nil {
		return err
	}
	if o.Output == "" {
		return report.Write(stdout, format, s)
	}

	f, err := os.Create(o.Output)
	if err != nil {
		return eris.Wrapf(err, "create %s", o.Output)
	}
	if err := report.Write(f, format, s); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return eris.Wrapf(f.Close(), "close %s", o.Output)
}

// saveRun persists run and returns its assigned id.
func saveRun(ctx context.Context, run *model.Run) (string, error) {
	st, err := initStore(ctx)
	if err != nil {
		return "", err
	}
	defer st.Close() //nolint:errcheck

	if err := st.SaveRun(ctx, run); err != nil {
		return "", eris.Wrap(err, "save run")
	}
	return run.ID, nil
}

func rawRun(ls []dataset.Listing) *model.Run {
	run := &model.Run{Kind: model.RunKindRaw, Entries: make([]model.RunEntry, 0, len(ls))}
	for _, l := range ls {
		e := model.RunEntry{
			OpportunityID: l.Opportunity.ID,
			City:          l.Opportunity.City,
			Score:         l.ArbitrageScore,
			Drivers:       scoring.PropertyDrivers(l.Opportunity),
		}
		if l.STR != nil {
			v := l.STR.Score
			e.StrScore = &v
		}
		run.Entries = append(run.Entries, e)
	}
	return run
}

func profileRun(rs []dataset.Ranked, profile model.ArbitrageProfile) *model.Run {
	p := profile.Clone()
	run := &model.Run{Kind: model.RunKindProfile, Profile: &p, Entries: make([]model.RunEntry, 0, len(rs))}
	for _, r := range rs {
		e := model.RunEntry{
			OpportunityID: r.Opportunity.ID,
			City:          r.Opportunity.City,
			Score:         r.ProfileScore,
			Drivers:       r.Drivers,
		}
		if r.STR != nil {
			v := r.STR.Score
			e.StrScore = &v
		}
		run.Entries = append(run.Entries, e)
	}
	return run
}
