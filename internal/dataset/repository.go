package dataset

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/arbitrage-cli/internal/model"
	"github.com/sells-group/arbitrage-cli/internal/scoring"
	"github.com/sells-group/arbitrage-cli/internal/str"
)

// Listing is the scored view of one opportunity.
type Listing struct {
	Opportunity    model.Opportunity `json:"opportunity"`
	ArbitrageScore float64           `json:"arbitrage_score"`
	STR            *str.Result       `json:"str,omitempty"`
}

func (l Listing) clone() Listing {
	out := Listing{
		Opportunity:    l.Opportunity.Clone(),
		ArbitrageScore: l.ArbitrageScore,
	}
	if l.STR != nil {
		r := l.STR.Clone()
		out.STR = &r
	}
	return out
}

// Ranked is a listing scored against one investor profile.
type Ranked struct {
	Listing
	ProfileScore float64  `json:"profile_score"`
	Drivers      []string `json:"drivers"`
}

// BuildOptions configures Build. A nil Engine uses the default weights; a nil
// Markets table leaves every listing without STR economics.
type BuildOptions struct {
	Engine      *scoring.Engine
	Markets     *str.MarketTable
	Concurrency int
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	City     string
	MinScore float64
}

// Repository is an immutable, scored set of listings. All accessors return
// copies and it is safe for concurrent use.
type Repository struct {
	engine   *scoring.Engine
	listings []Listing
	byID     map[string]int
}

// Build validates opps, computes raw arbitrage scores and attaches STR
// economics. The input slice is not modified.
func Build(ctx context.Context, opps []model.Opportunity, opts BuildOptions) (*Repository, error) {
	start := time.Now()

	if err := validateAll(opps); err != nil {
		return nil, err
	}

	engine := opts.Engine
	if engine == nil {
		engine = scoring.DefaultEngine()
	}

	attached, err := str.AttachAll(ctx, opps, opts.Markets, opts.Concurrency)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: attach str")
	}

	repo := &Repository{
		engine:   engine,
		listings: make([]Listing, len(attached)),
		byID:     make(map[string]int, len(attached)),
	}
	for i, a := range attached {
		score, err := engine.Arbitrage(a.Opportunity)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: score %s", a.Opportunity.ID)
		}
		repo.listings[i] = Listing{
			Opportunity:    a.Opportunity,
			ArbitrageScore: score,
			STR:            a.STR,
		}
		repo.byID[a.Opportunity.ID] = i
	}

	zap.L().Info("dataset: repository built",
		zap.Int("listings", len(repo.listings)),
		zap.Bool("str_markets", opts.Markets != nil),
		zap.Duration("elapsed", time.Since(start)),
	)
	return repo, nil
}

// Len returns the number of listings.
func (r *Repository) Len() int { return len(r.listings) }

// Engine returns the scoring engine the repository was built with.
func (r *Repository) Engine() *scoring.Engine { return r.engine }

// All returns every listing in load order.
func (r *Repository) All() []Listing {
	out := make([]Listing, len(r.listings))
	for i, l := range r.listings {
		out[i] = l.clone()
	}
	return out
}

// Get returns the listing with the given id.
func (r *Repository) Get(id string) (Listing, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Listing{}, false
	}
	return r.listings[i].clone(), true
}

// List returns listings matching f, highest arbitrage score first. Ties keep
// load order.
func (r *Repository) List(f Filter) []Listing {
	city := strings.TrimSpace(f.City)
	out := make([]Listing, 0)
	for _, l := range r.listings {
		if city != "" && !strings.EqualFold(l.Opportunity.City, city) {
			continue
		}
		if l.ArbitrageScore < f.MinScore {
			continue
		}
		out = append(out, l.clone())
	}
	slices.SortStableFunc(out, func(a, b Listing) int {
		return cmp.Compare(b.ArbitrageScore, a.ArbitrageScore)
	})
	return out
}

// Rank scores every listing against profile, highest first. Ties keep load
// order.
func (r *Repository) Rank(profile model.ArbitrageProfile) ([]Ranked, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	out := make([]Ranked, 0, len(r.listings))
	for _, l := range r.listings {
		res, err := r.engine.Profile(l.Opportunity, profile)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: rank %s", l.Opportunity.ID)
		}
		out = append(out, Ranked{
			Listing:      l.clone(),
			ProfileScore: res.Score,
			Drivers:      res.Drivers,
		})
	}
	slices.SortStableFunc(out, func(a, b Ranked) int {
		return cmp.Compare(b.ProfileScore, a.ProfileScore)
	})
	return out, nil
}

// Cities returns the distinct cities in the repository, sorted.
func (r *Repository) Cities() []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range r.listings {
		if !seen[l.Opportunity.City] {
			seen[l.Opportunity.City] = true
			out = append(out, l.Opportunity.City)
		}
	}
	slices.Sort(out)
	return out
}
