// Package diligence assembles the per-opportunity diligence packet: yields,
// zoning capacity, owner-occupancy economics, redevelopment scenarios and a
// short written summary.
package diligence

import (
	"fmt"
	"strings"

	"github.com/sells-group/arbitrage-cli/internal/dataset"
	"github.com/sells-group/arbitrage-cli/internal/model"
	"github.com/sells-group/arbitrage-cli/internal/num"
	"github.com/sells-group/arbitrage-cli/internal/scoring"
)

// SB-9 eligibility grades.
const (
	Sb9Yes     = "yes"
	Sb9No      = "no"
	Sb9Partial = "partial"
)

// Comp types.
const (
	CompRent = "rent"
	CompSale = "sale"
	CompSTR  = "str"
)

const (
	scenarioAHardCost    = 350_000.0
	scenarioARentAdd     = 36_000.0
	scenarioAMargin      = 15.0
	scenarioBHardCost    = 1_500_000.0
	scenarioBRentFactor  = 2.2
	scenarioBMargin      = 20.0
	placeholderRentComp  = 3500.0
	placeholderNightComp = 275.0
	maxADUsWhereAllowed  = 2
)

// Owner-occupancy comments, from best to worst offset.
const (
	CommentFullyCovered = "Rents fully cover or exceed estimated PITI – aggressive house-hack."
	CommentSignificant  = "Rents significantly offset ownership cost, with strong equity upside potential."
	CommentPartial      = "Rents provide partial offset to ownership cost; arbitrage is more long-term / redevelopment-driven."
)

const recommendation = "Proceed to deeper diligence (rent roll, permits, survey, and contractor pricing) before writing an offer."

// LongTermYield is the unlevered long-term rental yield.
type LongTermYield struct {
	MonthlyRent   float64 `json:"monthly_rent"`
	AnnualRent    float64 `json:"annual_rent"`
	GrossYieldPct float64 `json:"gross_yield_pct"`
}

// STRYield summarizes the attached short-term-rental result.
type STRYield struct {
	NightlyRate         float64 `json:"nightly_rate"`
	OccupancyPct        float64 `json:"occupancy_pct"`
	GrossRevenue        float64 `json:"gross_revenue"`
	NetRevenue          float64 `json:"net_revenue"`
	NetYieldPct         float64 `json:"net_yield_pct"`
	UpliftVsLongTermPct float64 `json:"uplift_vs_long_term_pct"`
}

// OwnerOccupancy compares estimated PITI against combined rents.
type OwnerOccupancy struct {
	EstimatedPITI  float64 `json:"estimated_piti"`
	TotalRents     float64 `json:"total_rents"`
	NetHousingCost float64 `json:"net_housing_cost"`
	Comment        string  `json:"comment"`
}

// ADUAllowance describes accessory dwelling rules for the zone.
type ADUAllowance struct {
	JADUAllowed bool   `json:"jadu_allowed"`
	ADUAllowed  bool   `json:"adu_allowed"`
	MaxADUs     int    `json:"max_adus"`
	Notes       string `json:"notes"`
}

// Sb9Allowance describes SB-9 treatment in the jurisdiction.
type Sb9Allowance struct {
	Eligible              string `json:"eligible"`
	LotSplitAllowed       bool   `json:"lot_split_allowed"`
	FourUnitConfigAllowed bool   `json:"four_unit_config_allowed"`
	Notes                 string `json:"notes"`
}

// Density compares legal units with what the zone allows.
type Density struct {
	ExistingUnits int     `json:"existing_units"`
	AllowedUnits  int     `json:"allowed_units"`
	UnderbuiltPct float64 `json:"underbuilt_pct"`
}

// Zoning is the zoning capacity summary.
type Zoning struct {
	Zone              model.Zoning `json:"zone"`
	MaxUnitsAllowed   int          `json:"max_units_allowed"`
	HeightLimitFeet   *float64     `json:"height_limit_feet"`
	LotCoveragePct    *float64     `json:"lot_coverage_pct"`
	ParkingReqSummary string       `json:"parking_req_summary"`
	ADU               ADUAllowance `json:"adu"`
	Sb9               Sb9Allowance `json:"sb9"`
	Density           Density      `json:"density"`
	Risks             []string     `json:"risks"`
}

// Incentives lists mapped public incentives. None are mapped yet.
type Incentives struct {
	OpportunityZone     bool     `json:"opportunity_zone"`
	GPLET               bool     `json:"gplet"`
	TaxIncrementTools   []string `json:"tax_increment_tools"`
	LocalDensityBonuses []string `json:"local_density_bonuses"`
	Notes               string   `json:"notes"`
}

// Scenario is one redevelopment path.
type Scenario struct {
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	EstHardCosts       float64 `json:"est_hard_costs"`
	EstAnnualRent      float64 `json:"est_annual_rent"`
	YieldOnCostPct     float64 `json:"yield_on_cost_pct"`
	DeveloperMarginPct float64 `json:"developer_margin_pct"`
}

// Comp is a comparable rent, sale or nightly rate.
type Comp struct {
	Address     string  `json:"address"`
	Type        string  `json:"type"`
	PriceOrRent float64 `json:"price_or_rent"`
	Notes       string  `json:"notes"`
}

// Summary is the written verdict.
type Summary struct {
	Verdict        string   `json:"verdict"`
	KeyPositives   []string `json:"key_positives"`
	KeyRisks       []string `json:"key_risks"`
	Recommendation string   `json:"recommendation"`
}

// Yields groups the three yield views.
type Yields struct {
	LongTerm LongTermYield  `json:"long_term"`
	STR      *STRYield      `json:"str"`
	OwnerOcc OwnerOccupancy `json:"owner_occ"`
}

// Packet is the full diligence payload for one listing.
type Packet struct {
	ID                     string     `json:"id"`
	Title                  string     `json:"title"`
	Address                string     `json:"address,omitempty"`
	City                   string     `json:"city"`
	ArbitrageScore         float64    `json:"arbitrage_score"`
	TopDrivers             []string   `json:"top_drivers"`
	Zoning                 Zoning     `json:"zoning"`
	Incentives             Incentives `json:"incentives"`
	Yield                  Yields     `json:"yield"`
	RedevelopmentScenarios []Scenario `json:"redevelopment_scenarios"`
	RentComps              []Comp     `json:"rent_comps"`
	SalesComps             []Comp     `json:"sales_comps"`
	STRComps               []Comp     `json:"str_comps"`
	Summary                Summary    `json:"summary"`
}

// Build assembles the packet for l.
func Build(l dataset.Listing) Packet {
	opp := l.Opportunity
	drivers := scoring.PropertyDrivers(opp)

	longTerm := LongTerm(opp)
	zoning := ZoningSummary(opp)
	rent, sales, strComps := comps(opp)

	return Packet{
		ID:             opp.ID,
		Title:          opp.Title,
		Address:        opp.Address,
		City:           opp.City,
		ArbitrageScore: l.ArbitrageScore,
		TopDrivers:     drivers,
		Zoning:         zoning,
		Incentives: Incentives{
			TaxIncrementTools:   []string{},
			LocalDensityBonuses: []string{},
			Notes:               "No mapped incentives yet. OZ, GPLET, TIF/CFD/PID/SID, TOD bonuses and local programs are not integrated.",
		},
		Yield: Yields{
			LongTerm: longTerm,
			STR:      strYield(l, longTerm),
			OwnerOcc: OwnerOcc(opp, longTerm),
		},
		RedevelopmentScenarios: Scenarios(opp, longTerm),
		RentComps:              rent,
		SalesComps:             sales,
		STRComps:               strComps,
		Summary:                summarize(l.ArbitrageScore, drivers, zoning),
	}
}

// LongTerm computes the gross long-term yield on ask price, two decimals.
func LongTerm(opp model.Opportunity) LongTermYield {
	monthly := opp.TotalMonthlyRent()
	annual := monthly * 12
	return LongTermYield{
		MonthlyRent:   monthly,
		AnnualRent:    annual,
		GrossYieldPct: num.RoundTo(num.SafeDiv(annual, opp.AskPrice)*100, 2),
	}
}

// ZoningSummary estimates allowed units and ADU/SB-9 treatment.
func ZoningSummary(opp model.Opportunity) Zoning {
	legal := opp.LegalUnits
	allowed := legal
	switch opp.Zoning {
	case model.ZoningR3:
		allowed = max(legal, 4)
	case model.ZoningR2:
		allowed = max(legal, 2)
	}

	var underbuilt float64
	if allowed > 0 {
		underbuilt = num.RoundTo(float64(allowed-legal)/float64(allowed)*100, 1)
	}

	aduAllowed := opp.Zoning == model.ZoningR1 || opp.Zoning == model.ZoningR2
	adu := ADUAllowance{
		JADUAllowed: opp.Zoning == model.ZoningR1,
		ADUAllowed:  aduAllowed,
		Notes:       "ADUs likely limited or disallowed; requires case-by-case review.",
	}
	if aduAllowed {
		adu.MaxADUs = maxADUsWhereAllowed
		adu.Notes = "State ADU law generally overrides local minimums for this zone."
	}

	sb9 := Sb9Allowance{
		Eligible:              Sb9Partial,
		FourUnitConfigAllowed: true,
		Notes:                 "State SB-9 may permit lot split + up to 4 units; confirm local overlays.",
	}
	if strings.Contains(strings.ToLower(opp.City), "el segundo") {
		sb9 = Sb9Allowance{
			Eligible: Sb9No,
			Notes:    "City has effectively blocked SB-9 through local implementation; treat as non-SB-9 parcel for now.",
		}
	}

	return Zoning{
		Zone:              opp.Zoning,
		MaxUnitsAllowed:   allowed,
		ParkingReqSummary: "See local code; ADU parking exemptions may apply.",
		ADU:               adu,
		Sb9:               sb9,
		Density: Density{
			ExistingUnits: legal,
			AllowedUnits:  allowed,
			UnderbuiltPct: underbuilt,
		},
		Risks: []string{},
	}
}

// OwnerOcc estimates the house-hack position: PITI less combined rents.
func OwnerOcc(opp model.Opportunity, lt LongTermYield) OwnerOccupancy {
	piti := scoring.AssumedPITI(opp.AskPrice)
	net := piti - lt.MonthlyRent

	comment := CommentPartial
	switch {
	case net <= 0:
		comment = CommentFullyCovered
	case net <= piti*0.5:
		comment = CommentSignificant
	}

	return OwnerOccupancy{
		EstimatedPITI:  num.Round(piti),
		TotalRents:     num.Round(lt.MonthlyRent),
		NetHousingCost: num.Round(net),
		Comment:        comment,
	}
}

// strYield reads the attached STR result. Uplift is the relative change of
// STR net revenue over annual long-term rent.
func strYield(l dataset.Listing, lt LongTermYield) *STRYield {
	if l.STR == nil {
		return nil
	}
	r := l.STR
	var uplift float64
	if lt.AnnualRent > 0 {
		uplift = num.RoundTo((r.NetOperatingIncome-lt.AnnualRent)/lt.AnnualRent*100, 1)
	}
	return &STRYield{
		NightlyRate:         r.ADR,
		OccupancyPct:        num.RoundTo(r.OccupancyPct(), 1),
		GrossRevenue:        num.Round(r.GrossRevenue),
		NetRevenue:          num.Round(r.NetOperatingIncome),
		NetYieldPct:         num.RoundTo(r.StrNetYieldPct, 2),
		UpliftVsLongTermPct: uplift,
	}
}

// Scenarios returns the ADU-add and max-density redevelopment paths.
func Scenarios(opp model.Opportunity, lt LongTermYield) []Scenario {
	rentA := lt.AnnualRent + scenarioARentAdd
	rentB := lt.AnnualRent * scenarioBRentFactor
	return []Scenario{
		{
			Name:               "Scenario A – Keep Structure + Add ADU",
			Description:        "Retain existing improvements, add a conforming ADU in rear yard or above garage, and upgrade interiors to market standard.",
			EstHardCosts:       scenarioAHardCost,
			EstAnnualRent:      rentA,
			YieldOnCostPct:     num.RoundTo(num.SafeDiv(rentA, opp.AskPrice+scenarioAHardCost)*100, 1),
			DeveloperMarginPct: scenarioAMargin,
		},
		{
			Name:               "Scenario B – Full Redevelopment to Max Density",
			Description:        "Scrape existing improvements and rebuild to near-max density allowed by zoning (subject to design, parking and financing constraints).",
			EstHardCosts:       scenarioBHardCost,
			EstAnnualRent:      rentB,
			YieldOnCostPct:     num.RoundTo(num.SafeDiv(rentB, opp.AskPrice+scenarioBHardCost)*100, 1),
			DeveloperMarginPct: scenarioBMargin,
		},
	}
}

// comps returns placeholder rent, sales and nightly comps built from the
// listing itself. No comp data source is connected.
func comps(opp model.Opportunity) (rent, sales, nightly []Comp) {
	base := Comp{
		Address: opp.City + " – Placeholder Comp",
		Notes:   "Placeholder comp; no comp data source is connected.",
	}
	r, s, n := base, base, base
	r.Type, r.PriceOrRent = CompRent, placeholderRentComp
	s.Type, s.PriceOrRent = CompSale, opp.AskPrice
	n.Type, n.PriceOrRent = CompSTR, placeholderNightComp
	return []Comp{r}, []Comp{s}, []Comp{n}
}

func summarize(score float64, drivers []string, z Zoning) Summary {
	positives := []string{}
	risks := []string{}

	if z.Density.UnderbuiltPct > 0 {
		positives = append(positives, "Underbuilt relative to allowed density.")
	}
	if z.ADU.ADUAllowed {
		positives = append(positives, "ADU-eligible under state law.")
	}
	if z.Sb9.Eligible != Sb9No {
		positives = append(positives, "Potential SB-9 upside (subject to local constraints).")
	} else {
		risks = append(risks, "SB-9 impact limited or blocked in this jurisdiction.")
	}
	risks = append(risks, z.Risks...)

	verdict := fmt.Sprintf("This property scores %.1f/100 with key drivers: %s.", score, strings.Join(drivers, ", "))
	if len(drivers) == 0 {
		verdict = fmt.Sprintf("This property scores %.1f/100 with no standout drivers.", score)
	}

	return Summary{
		Verdict:        verdict,
		KeyPositives:   positives,
		KeyRisks:       risks,
		Recommendation: recommendation,
	}
}
