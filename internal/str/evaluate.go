// Package str models short-term-rental economics per market and compares
// them against long-term rent.
package str

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/arbitrage-cli/internal/model"
	"github.com/sells-group/arbitrage-cli/internal/num"
)

const (
	fullYearNights = 365
	fallbackADR    = 300.0
)

// Nightly rate as a multiple of the long-term daily rent.
const adrRentPremium = 1.6

// Uplift, in yield points, that earns a full base score of 10.
const upliftForFullScore = 8.0

// Driver strings.
const (
	DriverProhibited      = "Short-term rentals effectively prohibited in this jurisdiction"
	DriverFeeDrag         = "Platform/processing fees are a meaningful drag on yield"
	DriverHighOpCost      = "High STR operating cost assumption (cleaning, mgmt, supplies)"
	DriverDoubleDigitCoC  = "Double-digit cash-on-cash potential"
	DriverDebtConstrained = "Cash-on-cash return constrained by debt load"
	DriverUpliftStrong    = "STR net yield materially higher than long-term rent strategy"
	DriverUpliftWeak      = "STR yield does not clearly beat long-term rent"
	DriverSupportive      = "Local policy broadly supportive of STR activity"
	DriverHostile         = "Local policy hostile to STRs (enforcement / permitting risk)"
)

var regimeMultipliers = map[model.Regime]float64{
	model.RegimeForbidden:  0,
	model.RegimeHostile:    0.5,
	model.RegimeNeutral:    1.0,
	model.RegimeSupportive: 1.2,
}

var regimeBonuses = map[model.Regime]float64{
	model.RegimeHostile:    -1.5,
	model.RegimeSupportive: 1.0,
}

// RegimeMultiplier maps a regime to the multiplier applied to the STR score.
func RegimeMultiplier(r model.Regime) (float64, error) {
	m, ok := regimeMultipliers[r]
	if !ok {
		return 0, eris.Wrapf(model.ErrInvalidInput, "str: unknown regime %q", r)
	}
	return m, nil
}

// Result is the STR economics of one opportunity under one market config.
type Result struct {
	Allowed bool `json:"allowed"`

	AvailableNights int     `json:"available_nights"`
	BookedNights    int     `json:"booked_nights"`
	ADR             float64 `json:"adr"`

	GrossRevenue       float64 `json:"gross_revenue"`
	PlatformFees       float64 `json:"platform_fees"`
	OperatingCosts     float64 `json:"operating_costs"`
	NetOperatingIncome float64 `json:"net_operating_income"`

	LongTermGrossYieldPct float64 `json:"long_term_gross_yield_pct"`
	StrNetYieldPct        float64 `json:"str_net_yield_pct"`

	AnnualDebtService   *float64 `json:"annual_debt_service,omitempty"`
	CashOnCashReturnPct *float64 `json:"cash_on_cash_return_pct,omitempty"`

	UpliftVsLongTermPct float64      `json:"uplift_vs_long_term_pct"`
	Regime              model.Regime `json:"regime"`
	Score               float64      `json:"score_0_to_10"`
	Drivers             []string     `json:"drivers"`
}

// OccupancyPct is booked over available nights, as a percentage.
func (r Result) OccupancyPct() float64 {
	if r.AvailableNights <= 0 {
		return 0
	}
	return float64(r.BookedNights) / float64(r.AvailableNights) * 100
}

// Clone returns a deep copy of r.
func (r Result) Clone() Result {
	out := r
	out.AnnualDebtService = clonePtr(r.AnnualDebtService)
	out.CashOnCashReturnPct = clonePtr(r.CashOnCashReturnPct)
	if r.Drivers != nil {
		out.Drivers = append([]string(nil), r.Drivers...)
	}
	return out
}

// Evaluate computes STR economics for opp under cfg. It fails only when
// cfg.Regime is outside the known regimes.
func Evaluate(opp model.Opportunity, cfg Config) (Result, error) {
	mult, err := RegimeMultiplier(cfg.Regime)
	if err != nil {
		return Result{}, err
	}

	if cfg.Regime == model.RegimeForbidden {
		return prohibited(cfg), nil
	}

	var drivers []string

	maxNights := fullYearNights
	if cfg.MaxNightsPerYear != nil && *cfg.MaxNightsPerYear > 0 {
		maxNights = *cfg.MaxNightsPerYear
	}
	booked := int(num.Round(float64(maxNights) * num.Clamp(cfg.BaseOccupancy, 0, 1)))
	if maxNights < fullYearNights {
		drivers = append(drivers, fmt.Sprintf("Night cap of %d nights/year", maxNights))
	}

	adr := cfg.BaseADR
	if adr <= 0 {
		adr = inferADR(opp)
	}

	gross := adr * float64(booked)
	fees := gross * cfg.PlatformFeePct
	costs := gross * cfg.OperatingCostPct
	noi := gross - fees - costs

	if cfg.PlatformFeePct > 0.1 {
		drivers = append(drivers, DriverFeeDrag)
	}
	if cfg.OperatingCostPct >= 0.3 {
		drivers = append(drivers, DriverHighOpCost)
	}

	// Long-term baseline uses existing rent only; ADU rent is excluded.
	ltYield := num.SafeDiv(opp.RentExisting()*12, opp.AskPrice) * 100
	strYield := num.SafeDiv(noi, opp.AskPrice) * 100

	res := Result{
		Allowed:               true,
		AvailableNights:       maxNights,
		BookedNights:          booked,
		ADR:                   adr,
		GrossRevenue:          gross,
		PlatformFees:          fees,
		OperatingCosts:        costs,
		NetOperatingIncome:    noi,
		LongTermGrossYieldPct: ltYield,
		StrNetYieldPct:        strYield,
		Regime:                cfg.Regime,
	}

	if cfg.financed() {
		down := opp.AskPrice * *cfg.DownPaymentPct
		loan := opp.AskPrice - down
		debt := AnnualDebtService(loan, *cfg.InterestRatePct, float64(*cfg.AmortYears))

		var taxes, insurance float64
		if cfg.PropertyTaxPct != nil && *cfg.PropertyTaxPct != 0 {
			taxes = opp.AskPrice * *cfg.PropertyTaxPct
		}
		if cfg.InsurancePct != nil && *cfg.InsurancePct != 0 {
			insurance = opp.AskPrice * *cfg.InsurancePct
		}

		cashFlow := noi - debt - taxes - insurance
		if down > 0 {
			coc := cashFlow / down * 100
			res.CashOnCashReturnPct = &coc
			if coc >= 10 {
				drivers = append(drivers, DriverDoubleDigitCoC)
			}
			if coc <= 4 {
				drivers = append(drivers, DriverDebtConstrained)
			}
		}
		if debt != 0 {
			res.AnnualDebtService = &debt
		}
	}

	res.UpliftVsLongTermPct = strYield - ltYield
	switch {
	case res.UpliftVsLongTermPct >= 4:
		drivers = append(drivers, DriverUpliftStrong)
	case res.UpliftVsLongTermPct <= 0:
		drivers = append(drivers, DriverUpliftWeak)
	}

	base := num.Clamp(res.UpliftVsLongTermPct/upliftForFullScore*10, 0, 10)
	res.Score = num.Clamp((base+regimeBonuses[cfg.Regime])*mult, 0, 10)

	switch cfg.Regime {
	case model.RegimeSupportive:
		drivers = append(drivers, DriverSupportive)
	case model.RegimeHostile:
		drivers = append(drivers, DriverHostile)
	}

	res.Drivers = model.TopDrivers(drivers, model.MaxDrivers)
	return res, nil
}

func prohibited(cfg Config) Result {
	var available int
	if cfg.MaxNightsPerYear != nil {
		available = *cfg.MaxNightsPerYear
	}
	var zeroDebt, zeroCoC float64
	return Result{
		Allowed:             false,
		AvailableNights:     available,
		AnnualDebtService:   &zeroDebt,
		CashOnCashReturnPct: &zeroCoC,
		Regime:              cfg.Regime,
		Drivers:             []string{DriverProhibited},
	}
}

// inferADR approximates a nightly rate from the existing long-term rent, or
// falls back to a flat rate when no rent is known.
func inferADR(opp model.Opportunity) float64 {
	if rent := opp.RentExisting(); rent > 0 {
		return num.Round(rent / 30 * adrRentPremium)
	}
	return fallbackADR
}

// AnnualDebtService returns twelve monthly payments on a fully amortizing
// loan. ratePct is an annual percentage (6.5 means 6.5%). A non-positive
// rate falls back to straight-line repayment; a non-positive term has no
// payment schedule and yields zero.
func AnnualDebtService(principal, ratePct, years float64) float64 {
	if years <= 0 {
		return 0
	}
	r := ratePct / 100 / 12
	n := years * 12
	if r <= 0 {
		return principal / years
	}
	growth := math.Pow(1+r, n)
	payment := principal * r * growth / (growth - 1)
	return payment * 12
}
