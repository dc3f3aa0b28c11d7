// Package report renders scored listings, rankings and STR economics as
// aligned tables, CSV or XLSX workbooks.
package report

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/arbitrage-cli/internal/dataset"
	"github.com/sells-group/arbitrage-cli/internal/scoring"
)

// Kind controls how a column's values are rendered.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindMoney
	KindScore
	KindPercent
)

// Column is a named, typed column.
type Column struct {
	Header string
	Kind   Kind
}

// Sheet is a rectangular result set. A nil cell renders as blank.
// Numeric kinds hold float64 or int values.
type Sheet struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// Format is an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatCSV, FormatXLSX:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", eris.Errorf("report: unknown format %q (want table, csv or xlsx)", s)
	}
}

func joinDrivers(d []string) string {
	return strings.Join(d, "; ")
}

// Listings builds the raw-score sheet.
func Listings(ls []dataset.Listing) Sheet {
	s := Sheet{
		Name: "Opportunities",
		Columns: []Column{
			{"ID", KindText},
			{"Title", KindText},
			{"City", KindText},
			{"Submarket", KindText},
			{"Tier", KindText},
			{"Zoning", KindText},
			{"Ask", KindMoney},
			{"Units", KindInt},
			{"Score", KindScore},
			{"STR Score", KindScore},
			{"Drivers", KindText},
		},
	}
	for _, l := range ls {
		o := l.Opportunity
		var strScore any
		if l.STR != nil {
			strScore = l.STR.Score
		}
		s.Rows = append(s.Rows, []any{
			o.ID,
			o.Title,
			o.City,
			o.NeighborhoodSubmarket,
			string(o.NeighborhoodTier),
			string(o.Zoning),
			o.AskPrice,
			o.LegalUnits,
			l.ArbitrageScore,
			strScore,
			joinDrivers(scoring.PropertyDrivers(o)),
		})
	}
	return s
}

// Rankings builds the profile-ranked sheet. Rows keep the given order.
func Rankings(rs []dataset.Ranked) Sheet {
	s := Sheet{
		Name: "Ranking",
		Columns: []Column{
			{"Rank", KindInt},
			{"ID", KindText},
			{"Title", KindText},
			{"City", KindText},
			{"Ask", KindMoney},
			{"Arbitrage", KindScore},
			{"Profile Score", KindScore},
			{"Drivers", KindText},
		},
	}
	for i, r := range rs {
		o := r.Opportunity
		s.Rows = append(s.Rows, []any{
			i + 1,
			o.ID,
			o.Title,
			o.City,
			o.AskPrice,
			r.ArbitrageScore,
			r.ProfileScore,
			joinDrivers(r.Drivers),
		})
	}
	return s
}

// STR builds the short-term-rental economics sheet. Listings without a
// modelled market are skipped.
func STR(ls []dataset.Listing) Sheet {
	s := Sheet{
		Name: "STR",
		Columns: []Column{
			{"ID", KindText},
			{"City", KindText},
			{"Regime", KindText},
			{"Nights", KindInt},
			{"Booked", KindInt},
			{"ADR", KindMoney},
			{"Gross", KindMoney},
			{"NOI", KindMoney},
			{"LT Yield", KindPercent},
			{"STR Yield", KindPercent},
			{"Uplift", KindPercent},
			{"Score", KindScore},
			{"Drivers", KindText},
		},
	}
	for _, l := range ls {
		if l.STR == nil {
			continue
		}
		r := l.STR
		s.Rows = append(s.Rows, []any{
			l.Opportunity.ID,
			l.Opportunity.City,
			string(r.Regime),
			r.AvailableNights,
			r.BookedNights,
			r.ADR,
			r.GrossRevenue,
			r.NetOperatingIncome,
			r.LongTermGrossYieldPct,
			r.StrNetYieldPct,
			r.UpliftVsLongTermPct,
			r.Score,
			joinDrivers(r.Drivers),
		})
	}
	return s
}

// Breakdowns builds the per-factor sheet behind each raw score.
func Breakdowns(ls []dataset.Listing, e *scoring.Engine) (Sheet, error) {
	s := Sheet{
		Name: "Breakdown",
		Columns: []Column{
			{"ID", KindText},
			{"Regulatory", KindScore},
			{"Zoning", KindScore},
			{"Density", KindScore},
			{"Underbuild", KindScore},
			{"Financing", KindScore},
			{"Yield", KindScore},
			{"Owner Fit", KindScore},
			{"Weighted", KindScore},
			{"Reg x", KindScore},
			{"Tier x", KindScore},
			{"Density x", KindScore},
			{"Yield x", KindScore},
			{"Capped", KindText},
			{"Score", KindScore},
		},
	}
	for _, l := range ls {
		b, err := e.Breakdown(l.Opportunity)
		if err != nil {
			return Sheet{}, eris.Wrapf(err, "report: breakdown %s", l.Opportunity.ID)
		}
		f := b.Factors
		capped := ""
		if b.Capped {
			capped = "yes"
		}
		s.Rows = append(s.Rows, []any{
			l.Opportunity.ID,
			f.RegulatoryUpside,
			f.ZoningFlex,
			f.DensityPotential,
			f.UnderbuildGap,
			f.FinancingAdvantage,
			f.RiskAdjustedYield,
			f.OwnerOccupiedFit,
			b.WeightedScore,
			b.RegulatoryMultiplier,
			b.NeighborhoodMultiplier,
			b.DensityMultiplier,
			b.YieldMultiplier,
			capped,
			b.Score,
		})
	}
	return s, nil
}
