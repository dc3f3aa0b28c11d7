// Package validation runs ordering sanity checks over a scored repository.
// The checks encode market expectations: prime coastal submarkets outrank
// generic Hawthorne, Hollyglen sits between them, and yield-only plays stay
// below density plays.
package validation

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/sells-group/arbitrage-cli/internal/dataset"
	"github.com/sells-group/arbitrage-cli/internal/model"
	"github.com/sells-group/arbitrage-cli/internal/scoring"
)

const (
	cityElSegundo = "El Segundo"
	cityHawthorne = "Hawthorne"
	cityRedondo   = "Redondo Beach"
	hollyglen     = "Hollyglen"
)

// Row is one listing in score order.
type Row struct {
	ID             string                 `json:"id"`
	Title          string                 `json:"title"`
	City           string                 `json:"city"`
	Submarket      string                 `json:"submarket"`
	Tier           model.NeighborhoodTier `json:"tier"`
	Score          float64                `json:"score"`
	Drivers        []string               `json:"drivers"`
	StrNetYieldPct *float64               `json:"str_net_yield_pct,omitempty"`
	StrUpliftPct   *float64               `json:"str_uplift_pct,omitempty"`
}

// Check is a single named expectation. Advisory checks are reported but do
// not affect Report.Passed.
type Check struct {
	Label    string `json:"label"`
	Passed   bool   `json:"passed"`
	Detail   string `json:"detail,omitempty"`
	Advisory bool   `json:"advisory,omitempty"`
}

// Report is the outcome of Run.
type Report struct {
	Properties int     `json:"properties"`
	Cities     int     `json:"cities"`
	Rows       []Row   `json:"rows"`
	Checks     []Check `json:"checks"`
	Passed     bool    `json:"passed"`
}

// Failed returns the gating checks that did not pass.
func (r Report) Failed() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.Passed && !c.Advisory {
			out = append(out, c)
		}
	}
	return out
}

// Warnings returns the advisory checks that did not pass.
func (r Report) Warnings() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.Passed && c.Advisory {
			out = append(out, c)
		}
	}
	return out
}

// Run scores every listing in repo and evaluates the ordering checks.
func Run(repo *dataset.Repository) Report {
	listings := repo.All()
	rows := make([]Row, 0, len(listings))
	for _, l := range listings {
		row := Row{
			ID:        l.Opportunity.ID,
			Title:     l.Opportunity.Title,
			City:      l.Opportunity.City,
			Submarket: l.Opportunity.NeighborhoodSubmarket,
			Tier:      l.Opportunity.NeighborhoodTier,
			Score:     l.ArbitrageScore,
			Drivers:   scoring.PropertyDrivers(l.Opportunity),
		}
		if l.STR != nil {
			yield, uplift := l.STR.StrNetYieldPct, l.STR.UpliftVsLongTermPct
			row.StrNetYieldPct = &yield
			row.StrUpliftPct = &uplift
		}
		rows = append(rows, row)
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		return cmp.Compare(b.Score, a.Score)
	})

	var (
		elSegundo, redondo, generic, prime, strong, value []Row
		hg                                                *Row
		fourplex                                          *Row
	)
	for i := range rows {
		r := &rows[i]
		switch r.City {
		case cityElSegundo:
			elSegundo = append(elSegundo, *r)
		case cityRedondo:
			redondo = append(redondo, *r)
		}
		if r.City == cityHawthorne && r.Tier == model.TierValue {
			generic = append(generic, *r)
		}
		switch r.Tier {
		case model.TierPrime:
			prime = append(prime, *r)
		case model.TierStrong:
			strong = append(strong, *r)
		case model.TierValue:
			value = append(value, *r)
		}
		if hg == nil && strings.Contains(r.Submarket, hollyglen) {
			hg = r
		}
		if fourplex == nil && isFourplex(*r) {
			fourplex = r
		}
	}

	maxES := maxScore(elSegundo, 0)
	maxGeneric := maxScore(generic, 0)
	maxRedondo := maxScore(redondo, 0)
	maxPrime := maxScore(prime, math.Inf(-1))
	maxStrong := maxScore(strong, math.Inf(-1))
	minStrong := minScore(strong, math.Inf(1))
	maxValue := maxScore(value, math.Inf(-1))

	checks := make([]Check, 0, 9)

	checks = append(checks, Check{
		Label:  "a) El Segundo (prime) > all generic Hawthorne",
		Passed: len(elSegundo) > 0 && len(generic) > 0 && maxES > maxGeneric,
		Detail: fmt.Sprintf("El Segundo max: %.1f, Hawthorne max: %.1f", maxES, maxGeneric),
	})

	aboveGeneric := hg != nil && allBelow(generic, hg.Score)
	hgDetail := "Hollyglen not found"
	if hg != nil {
		hgDetail = fmt.Sprintf("Hollyglen: %.1f", hg.Score)
	}
	checks = append(checks, Check{
		Label:  "b) Hollyglen > generic Hawthorne",
		Passed: aboveGeneric,
		Detail: hgDetail,
	})

	belowPrime := hg != nil && len(prime) > 0 && hg.Score < maxPrime
	var belowDetail string
	if hg != nil {
		belowDetail = fmt.Sprintf("Hollyglen: %.1f < Prime max: %.1f", hg.Score, maxPrime)
	}
	checks = append(checks, Check{
		Label:  "b') Hollyglen < El Segundo (prime)",
		Passed: belowPrime,
		Detail: belowDetail,
	})

	checks = append(checks, Check{
		Label:  "c) Redondo Beach > generic Hawthorne",
		Passed: len(redondo) > 0 && len(generic) > 0 && maxRedondo > maxGeneric,
		Detail: fmt.Sprintf("Redondo max: %.1f", maxRedondo),
	})

	fourplexDetail := "No fourplex found"
	if fourplex != nil {
		fourplexDetail = fmt.Sprintf("Fourplex: %.1f", fourplex.Score)
	}
	fourplexPassed := fourplex != nil && len(prime) > 0 && len(strong) > 0 &&
		fourplex.Score < maxPrime && fourplex.Score < maxStrong
	checks = append(checks, Check{
		Label:  "d) Fourplex yield < prime & strong tiers",
		Passed: fourplexPassed,
		Detail: fourplexDetail,
	})

	checks = append(checks, Check{
		Label:  "e) No generic Hawthorne > Hollyglen",
		Passed: hg == nil || allBelow(generic, hg.Score),
	})

	sfr := nonUnderbuiltSFR(listings)
	sfrPassed := len(prime) > 0 && len(strong) > 0
	for _, l := range sfr {
		if l.ArbitrageScore >= maxPrime || l.ArbitrageScore >= maxStrong {
			sfrPassed = false
		}
	}
	checks = append(checks, Check{
		Label:  "f) No non-underbuilt SFR > prime/strong",
		Passed: sfrPassed,
		Detail: fmt.Sprintf("%d non-underbuilt SFRs checked", len(sfr)),
	})

	checks = append(checks, Check{
		Label:    "Prime max > Strong max",
		Passed:   len(prime) > 0 && len(strong) > 0 && maxPrime > maxStrong,
		Detail:   fmt.Sprintf("Prime max: %.1f, Strong max: %.1f", maxPrime, maxStrong),
		Advisory: true,
	})

	checks = append(checks, Check{
		Label:    "Strong min > Value max",
		Passed:   len(strong) > 0 && len(value) > 0 && minStrong > maxValue,
		Detail:   fmt.Sprintf("Strong min: %.1f, Value max: %.1f", minStrong, maxValue),
		Advisory: true,
	})

	passed := true
	for _, c := range checks {
		passed = passed && (c.Passed || c.Advisory)
	}

	return Report{
		Properties: len(rows),
		Cities:     len(repo.Cities()),
		Rows:       rows,
		Checks:     checks,
		Passed:     passed,
	}
}

func maxScore(rows []Row, floor float64) float64 {
	m := floor
	for _, r := range rows {
		m = math.Max(m, r.Score)
	}
	return m
}

func minScore(rows []Row, ceiling float64) float64 {
	m := ceiling
	for _, r := range rows {
		m = math.Min(m, r.Score)
	}
	return m
}

// isFourplex matches on id or title, so custom datasets are found by name
// rather than by asset type.
func isFourplex(r Row) bool {
	return strings.Contains(r.ID, "fourplex") || strings.Contains(strings.ToLower(r.Title), "fourplex")
}

func allBelow(rows []Row, score float64) bool {
	for _, r := range rows {
		if r.Score >= score {
			return false
		}
	}
	return true
}

func nonUnderbuiltSFR(listings []dataset.Listing) []dataset.Listing {
	var out []dataset.Listing
	for _, l := range listings {
		o := l.Opportunity
		if o.UnderbuiltFlag || o.R2UnderbuiltFlag {
			continue
		}
		if o.AssetType == model.AssetSFRADU || o.AssetType == model.AssetSFRUnderbuilt {
			out = append(out, l)
		}
	}
	return out
}
