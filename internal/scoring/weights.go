package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// Weights are the arbitrage factor weights, expressed as percentages.
type Weights struct {
	RegulatoryUpside   float64 `json:"regulatory_upside" yaml:"regulatory_upside" mapstructure:"regulatory_upside"`
	ZoningFlex         float64 `json:"zoning_flex" yaml:"zoning_flex" mapstructure:"zoning_flex"`
	DensityPotential   float64 `json:"density_potential" yaml:"density_potential" mapstructure:"density_potential"`
	UnderbuildGap      float64 `json:"underbuild_gap" yaml:"underbuild_gap" mapstructure:"underbuild_gap"`
	FinancingAdvantage float64 `json:"financing_advantage" yaml:"financing_advantage" mapstructure:"financing_advantage"`
	RiskAdjustedYield  float64 `json:"risk_adjusted_yield" yaml:"risk_adjusted_yield" mapstructure:"risk_adjusted_yield"`
	OwnerOccupiedFit   float64 `json:"owner_occupied_fit" yaml:"owner_occupied_fit" mapstructure:"owner_occupied_fit"`
}

// DefaultWeights returns the production weights. They sum to 100.
func DefaultWeights() Weights {
	return Weights{
		RegulatoryUpside:   18,
		ZoningFlex:         15,
		DensityPotential:   20,
		UnderbuildGap:      15,
		FinancingAdvantage: 12,
		RiskAdjustedYield:  15,
		OwnerOccupiedFit:   5,
	}
}

// WeightSum returns the sum of all factor weights.
func WeightSum(w Weights) float64 {
	return w.RegulatoryUpside + w.ZoningFlex + w.DensityPotential + w.UnderbuildGap +
		w.FinancingAdvantage + w.RiskAdjustedYield + w.OwnerOccupiedFit
}

// weightSumTolerance absorbs float noise in configured percentages.
const weightSumTolerance = 0.01

// ValidateWeights checks that weights are non-negative and sum to 100.
func ValidateWeights(w Weights) error {
	var errs []string

	named := []struct {
		name string
		v    float64
	}{
		{"regulatory_upside", w.RegulatoryUpside},
		{"zoning_flex", w.ZoningFlex},
		{"density_potential", w.DensityPotential},
		{"underbuild_gap", w.UnderbuildGap},
		{"financing_advantage", w.FinancingAdvantage},
		{"risk_adjusted_yield", w.RiskAdjustedYield},
		{"owner_occupied_fit", w.OwnerOccupiedFit},
	}
	for _, n := range named {
		if n.v < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", n.name))
		}
	}

	if sum := WeightSum(w); math.Abs(sum-100) > weightSumTolerance {
		errs = append(errs, fmt.Sprintf("weights should sum to 100, got %.2f", sum))
	}

	if len(errs) > 0 {
		return eris.Errorf("scoring: weight validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// fractions returns the weights in factor order as fractions of one.
func (w Weights) fractions() [7]float64 {
	return [7]float64{
		w.RegulatoryUpside / 100,
		w.ZoningFlex / 100,
		w.DensityPotential / 100,
		w.UnderbuildGap / 100,
		w.FinancingAdvantage / 100,
		w.RiskAdjustedYield / 100,
		w.OwnerOccupiedFit / 100,
	}
}
