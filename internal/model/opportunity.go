package model

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Opportunity is a curated property record. Flags such as UnderbuiltFlag are
// set during data curation and are never derived here.
type Opportunity struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
	City    string `json:"city" yaml:"city"`

	Zoning    Zoning    `json:"zoning" yaml:"zoning"`
	AssetType AssetType `json:"asset_type" yaml:"asset_type"`

	LotSizeSqft        float64 `json:"lot_size_sqft" yaml:"lot_size_sqft"`
	BuildingSqft       float64 `json:"building_sqft" yaml:"building_sqft"`
	LegalUnits         int     `json:"legal_units" yaml:"legal_units"`
	ExistingStructures int     `json:"existing_structures" yaml:"existing_structures"`
	ExistingUnits      *int    `json:"existing_units,omitempty" yaml:"existing_units,omitempty"`
	HasAlley           bool    `json:"has_alley" yaml:"has_alley"`
	HasGarage          bool    `json:"has_garage" yaml:"has_garage"`
	YearBuilt          int     `json:"year_built" yaml:"year_built"`

	AskPrice        float64  `json:"ask_price" yaml:"ask_price"`
	EstMarketValue  *float64 `json:"est_market_value,omitempty" yaml:"est_market_value,omitempty"`
	RentExistingEst *float64 `json:"rent_existing_est,omitempty" yaml:"rent_existing_est,omitempty"`
	RentADUEst      *float64 `json:"rent_adu_est,omitempty" yaml:"rent_adu_est,omitempty"`

	OperationalEnv  EnforcementLevel `json:"operational_env" yaml:"operational_env"`
	DevelopmentEnv  EnforcementLevel `json:"development_env" yaml:"development_env"`
	RegulatoryEnv   string           `json:"regulatory_env,omitempty" yaml:"regulatory_env,omitempty"`
	RentControlRisk string           `json:"rent_control_risk,omitempty" yaml:"rent_control_risk,omitempty"`

	UnderbuiltFlag   bool `json:"underbuilt_flag" yaml:"underbuilt_flag"`
	R2UnderbuiltFlag bool `json:"r2_underbuilt_flag" yaml:"r2_underbuilt_flag"`
	R3UnderbuiltFlag bool `json:"r3_underbuilt_flag" yaml:"r3_underbuilt_flag"`

	NeighborhoodSubmarket string           `json:"neighborhood_submarket" yaml:"neighborhood_submarket"`
	NeighborhoodTier      NeighborhoodTier `json:"neighborhood_tier" yaml:"neighborhood_tier"`

	// Descriptive curation notes; no scorer reads them.
	ADUPotential  string `json:"adu_potential,omitempty" yaml:"adu_potential,omitempty"`
	DirtValueTier string `json:"dirt_value_tier,omitempty" yaml:"dirt_value_tier,omitempty"`
	Condition     string `json:"condition,omitempty" yaml:"condition,omitempty"`

	Sb9Eligible bool    `json:"sb9_eligible" yaml:"sb9_eligible"`
	Sb9Type     Sb9Type `json:"sb9_type,omitempty" yaml:"sb9_type,omitempty"`

	StrRegime           *Regime `json:"str_regime,omitempty" yaml:"str_regime,omitempty"`
	StrMaxNightsPerYear *int    `json:"str_max_nights_per_year,omitempty" yaml:"str_max_nights_per_year,omitempty"`
}

// RentExisting returns the existing monthly rent estimate, zero when absent.
func (o Opportunity) RentExisting() float64 {
	if o.RentExistingEst == nil {
		return 0
	}
	return *o.RentExistingEst
}

// RentADU returns the ADU monthly rent estimate, zero when absent.
func (o Opportunity) RentADU() float64 {
	if o.RentADUEst == nil {
		return 0
	}
	return *o.RentADUEst
}

// TotalMonthlyRent is existing plus ADU rent.
func (o Opportunity) TotalMonthlyRent() float64 {
	return o.RentExisting() + o.RentADU()
}

// UnusedUnits is legal units not yet occupied by a structure, floored at zero.
func (o Opportunity) UnusedUnits() int {
	return max(0, o.LegalUnits-o.ExistingStructures)
}

// PricePerUnit divides the ask price across legal units. A non-positive unit
// count is treated as a single unit.
func (o Opportunity) PricePerUnit() float64 {
	return o.AskPrice / float64(max(o.LegalUnits, 1))
}

// IsStabilizedFourplex reports whether the fourplex yield ceiling applies.
func (o Opportunity) IsStabilizedFourplex() bool {
	return o.AssetType == AssetFourplexR3StabilizedYield && !o.UnderbuiltFlag && !o.R3UnderbuiltFlag
}

// Clone returns a deep copy so callers can never alias canonical records.
func (o Opportunity) Clone() Opportunity {
	c := o
	c.ExistingUnits = clonePtr(o.ExistingUnits)
	c.EstMarketValue = clonePtr(o.EstMarketValue)
	c.RentExistingEst = clonePtr(o.RentExistingEst)
	c.RentADUEst = clonePtr(o.RentADUEst)
	c.StrRegime = clonePtr(o.StrRegime)
	c.StrMaxNightsPerYear = clonePtr(o.StrMaxNightsPerYear)
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Validate checks required fields and every enumerated value. The returned
// error wraps ErrInvalidInput.
func (o Opportunity) Validate() error {
	var errs []string

	if strings.TrimSpace(o.ID) == "" {
		errs = append(errs, "id is required")
	}
	if strings.TrimSpace(o.City) == "" {
		errs = append(errs, "city is required")
	}
	if !o.Zoning.Valid() {
		errs = append(errs, fmt.Sprintf("unknown zoning %q", o.Zoning))
	}
	if !o.AssetType.Valid() {
		errs = append(errs, fmt.Sprintf("unknown asset_type %q", o.AssetType))
	}
	if !o.OperationalEnv.Valid() {
		errs = append(errs, fmt.Sprintf("unknown operational_env %q", o.OperationalEnv))
	}
	if !o.DevelopmentEnv.Valid() {
		errs = append(errs, fmt.Sprintf("unknown development_env %q", o.DevelopmentEnv))
	}
	if !o.NeighborhoodTier.Valid() {
		errs = append(errs, fmt.Sprintf("unknown neighborhood_tier %q", o.NeighborhoodTier))
	}
	if o.Sb9Type != "" && !o.Sb9Type.Valid() {
		errs = append(errs, fmt.Sprintf("unknown sb9_type %q", o.Sb9Type))
	}
	if o.StrRegime != nil && !o.StrRegime.Valid() {
		errs = append(errs, fmt.Sprintf("unknown str_regime %q", *o.StrRegime))
	}
	if o.AskPrice < 0 {
		errs = append(errs, "ask_price must be >= 0")
	}
	if o.LotSizeSqft < 0 || o.BuildingSqft < 0 {
		errs = append(errs, "lot and building area must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Wrapf(ErrInvalidInput, "opportunity %q: %s", o.ID, strings.Join(errs, "; "))
	}
	return nil
}
