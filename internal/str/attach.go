package str

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/arbitrage-cli/internal/model"
)

const defaultAttachConcurrency = 8

// Attached pairs an opportunity with its STR result. STR is nil when no
// market config applies.
type Attached struct {
	Opportunity model.Opportunity `json:"opportunity"`
	STR         *Result           `json:"str,omitempty"`
}

// Attach resolves the market for opp and evaluates it. The returned
// opportunity is a copy; opp itself is never modified.
func Attach(opp model.Opportunity, table *MarketTable) (Attached, error) {
	out := Attached{Opportunity: opp.Clone()}
	if table == nil {
		return out, nil
	}
	cfg, ok := table.Resolve(opp)
	if !ok {
		return out, nil
	}
	res, err := Evaluate(opp, cfg)
	if err != nil {
		return Attached{}, eris.Wrapf(err, "str: attach %s", opp.ID)
	}
	out.STR = &res
	return out, nil
}

// AttachAll evaluates every opportunity concurrently and returns results in
// input order. The first error cancels the remaining work.
func AttachAll(ctx context.Context, opps []model.Opportunity, table *MarketTable, concurrency int) ([]Attached, error) {
	if concurrency <= 0 {
		concurrency = defaultAttachConcurrency
	}

	out := make([]Attached, len(opps))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, opp := range opps {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return eris.Wrap(err, "str: attach cancelled")
			}
			a, err := Attach(opp, table)
			if err != nil {
				return err
			}
			out[i] = a
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var modelled int
	for _, a := range out {
		if a.STR != nil {
			modelled++
		}
	}
	zap.L().Debug("str: attached market economics",
		zap.Int("opportunities", len(opps)),
		zap.Int("modelled", modelled),
	)
	return out, nil
}
