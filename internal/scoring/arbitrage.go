package scoring

import (
	"math"

	"github.com/sells-group/arbitrage-cli/internal/model"
	"github.com/sells-group/arbitrage-cli/internal/num"
)

const (
	densityMultiplierR2     = 1.06
	densityMultiplierR3     = 1.07
	fourplexYieldMultiplier = 0.84

	// FourplexCeiling caps every score for a stabilized fourplex.
	FourplexCeiling = 6.8
)

// Factors are the seven 0–10 inputs to the weighted arbitrage score.
type Factors struct {
	RegulatoryUpside   float64 `json:"regulatory_upside"`
	ZoningFlex         float64 `json:"zoning_flex"`
	DensityPotential   float64 `json:"density_potential"`
	UnderbuildGap      float64 `json:"underbuild_gap"`
	FinancingAdvantage float64 `json:"financing_advantage"`
	RiskAdjustedYield  float64 `json:"risk_adjusted_yield"`
	OwnerOccupiedFit   float64 `json:"owner_occupied_fit"`
}

func (f Factors) values() [7]float64 {
	return [7]float64{
		f.RegulatoryUpside,
		f.ZoningFlex,
		f.DensityPotential,
		f.UnderbuildGap,
		f.FinancingAdvantage,
		f.RiskAdjustedYield,
		f.OwnerOccupiedFit,
	}
}

// Breakdown exposes every intermediate of the arbitrage score.
type Breakdown struct {
	Factors                Factors `json:"factors"`
	WeightedScore          float64 `json:"weighted_score"`
	RegulatoryMultiplier   float64 `json:"regulatory_multiplier"`
	NeighborhoodMultiplier float64 `json:"neighborhood_multiplier"`
	DensityMultiplier      float64 `json:"density_multiplier"`
	YieldMultiplier        float64 `json:"yield_multiplier"`
	Capped                 bool    `json:"capped"`
	Score                  float64 `json:"score"`
}

// Engine scores opportunities with a fixed set of arbitrage weights.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	weights [7]float64
}

// NewEngine validates w and returns an Engine using it.
func NewEngine(w Weights) (*Engine, error) {
	if err := ValidateWeights(w); err != nil {
		return nil, err
	}
	return &Engine{weights: w.fractions()}, nil
}

var defaultEngine = &Engine{weights: DefaultWeights().fractions()}

// DefaultEngine returns an Engine with DefaultWeights.
func DefaultEngine() *Engine { return defaultEngine }

// ArbitrageScore computes the property-only score with default weights.
func ArbitrageScore(opp model.Opportunity) (float64, error) {
	return defaultEngine.Arbitrage(opp)
}

// Arbitrage computes the property-only score in [0, 100].
func (e *Engine) Arbitrage(opp model.Opportunity) (float64, error) {
	b, err := e.Breakdown(opp)
	if err != nil {
		return 0, err
	}
	return b.Score, nil
}

// Factors derives the seven weighted inputs for opp.
func (e *Engine) Factors(opp model.Opportunity) (Factors, error) {
	reg, err := RegulatoryMultiplier(opp)
	if err != nil {
		return Factors{}, err
	}
	return computeFactors(opp, reg), nil
}

func computeFactors(opp model.Opportunity, reg float64) Factors {
	var f Factors

	f.RegulatoryUpside = num.Round(reg * 10)

	switch opp.Zoning {
	case model.ZoningR3:
		f.ZoningFlex = 9
	case model.ZoningR2:
		f.ZoningFlex = 7
	default:
		f.ZoningFlex = 4
	}

	density := float64(opp.UnusedUnits() * 2)
	if opp.UnderbuiltFlag {
		density += 3
	}
	if opp.R2UnderbuiltFlag {
		density += 2
	}
	if opp.R3UnderbuiltFlag {
		density += 2
	}
	density += math.Min(4, math.Floor(Sb9Potential(opp)/3))
	f.DensityPotential = math.Min(10, density)

	lotToBuild := opp.LotSizeSqft / math.Max(opp.BuildingSqft, 1)
	f.UnderbuildGap = math.Min(10, num.Round(lotToBuild*1.5))

	switch ppu := opp.PricePerUnit(); {
	case ppu < 400_000:
		f.FinancingAdvantage = 10
	case ppu < 500_000:
		f.FinancingAdvantage = 8
	case ppu < 600_000:
		f.FinancingAdvantage = 6
	case ppu < 750_000:
		f.FinancingAdvantage = 4
	default:
		f.FinancingAdvantage = 2
	}

	grossYield := num.SafeDiv(opp.TotalMonthlyRent()*12, opp.AskPrice)
	f.RiskAdjustedYield = math.Min(10, num.Round(grossYield*100))

	smallMF := opp.LegalUnits >= 2 && opp.LegalUnits <= 4
	switch {
	case smallMF && opp.RentADU() > 0:
		f.OwnerOccupiedFit = 9
	case smallMF:
		f.OwnerOccupiedFit = 7
	case opp.AssetType == model.AssetSFRADU || opp.AssetType == model.AssetSFRUnderbuilt:
		f.OwnerOccupiedFit = 6
	default:
		f.OwnerOccupiedFit = 3
	}

	return f
}

// Weighted returns the rounded weighted sum of f.
func (e *Engine) Weighted(f Factors) float64 {
	vals := f.values()
	var sum float64
	for i, v := range vals {
		// Explicit conversion keeps each product rounded before the add.
		sum += float64(v * e.weights[i])
	}
	return num.Round(sum)
}

// Breakdown computes the arbitrage score along with its intermediates.
// The regulatory multiplier feeds both the regulatory factor and the final
// product, and the fourplex ceiling applies before the [0, 100] clamp.
func (e *Engine) Breakdown(opp model.Opportunity) (Breakdown, error) {
	reg, err := RegulatoryMultiplier(opp)
	if err != nil {
		return Breakdown{}, err
	}
	nm, err := NeighborhoodMultiplier(opp.NeighborhoodTier)
	if err != nil {
		return Breakdown{}, err
	}

	b := Breakdown{
		Factors:                computeFactors(opp, reg),
		RegulatoryMultiplier:   reg,
		NeighborhoodMultiplier: nm,
		DensityMultiplier:      1.0,
		YieldMultiplier:        1.0,
	}
	b.WeightedScore = e.Weighted(b.Factors)

	switch {
	case opp.Zoning == model.ZoningR2 && (opp.UnderbuiltFlag || opp.R2UnderbuiltFlag):
		b.DensityMultiplier = densityMultiplierR2
	case opp.Zoning == model.ZoningR3 && (opp.UnderbuiltFlag || opp.R3UnderbuiltFlag):
		b.DensityMultiplier = densityMultiplierR3
	}

	fourplex := opp.IsStabilizedFourplex()
	if fourplex {
		b.YieldMultiplier = fourplexYieldMultiplier
	}

	score := b.WeightedScore * reg
	score *= nm * b.DensityMultiplier * b.YieldMultiplier

	if fourplex && score > FourplexCeiling {
		score = FourplexCeiling
		b.Capped = true
	}

	b.Score = num.Clamp(score, 0, 100)
	return b, nil
}
