package scoring

import (
	"math"

	"github.com/sells-group/arbitrage-cli/internal/model"
	"github.com/sells-group/arbitrage-cli/internal/num"
)

// Profile driver strings.
const (
	DriverLowRegulatory    = "Low regulatory / rent-control risk"
	DriverUnderbuiltR2     = "Underbuilt R2 lot with density upside"
	DriverUnderbuiltR3     = "Underbuilt R3 lot with multifamily upside"
	DriverSb9Both          = "SB-9 two-unit + lot-split potential"
	DriverSb9TwoUnit       = "SB-9 two-unit prime candidate"
	DriverSb9LotSplit      = "SB-9 flag-lot / split potential"
	DriverADUIncome        = "Strong ADU income and equity potential"
	DriverOwnerCostCovered = "Owner-occupied net housing cost at or below current rent"
	DriverOwnerCostNear    = "Owner-occupied cost slightly above current rent with high equity upside"
	DriverStrategySmallMF  = "Aligns with Small Multifamily strategy preference"
	DriverStrategyADU      = "Aligns with ADU / SFR density strategy preference"
	DriverStrategyTeardown = "Teardown / redevelopment candidate"
	DriverStrategySb9      = "SB-9 friendly for your strategy"
	DriverDirtExceptional  = "Exceptional dirt value per unit"
	DriverDirtStrong       = "Strong dirt value per unit"
)

const (
	assumedPITIRate         = 0.0055
	assumedPITIFloor        = 4000.0
	ownerCostToleranceRatio = 1.2
)

// Result is a profile-aware score with at most three distinct drivers.
type Result struct {
	Score   float64  `json:"score"`
	Drivers []string `json:"drivers"`
}

// ScoreOpportunity scores opp for profile using the default engine.
func ScoreOpportunity(opp model.Opportunity, profile model.ArbitrageProfile) (Result, error) {
	return defaultEngine.Profile(opp, profile)
}

// AssumedPITI estimates monthly principal, interest, taxes and insurance.
func AssumedPITI(askPrice float64) float64 {
	return math.Max(askPrice*assumedPITIRate, assumedPITIFloor)
}

// Profile computes the investor-specific score. Additive bonuses come first,
// then multiplicative adjustments in a fixed order; the underbuilt
// multipliers compound when several flags are set.
func (e *Engine) Profile(opp model.Opportunity, profile model.ArbitrageProfile) (Result, error) {
	reg, err := RegulatoryMultiplier(opp)
	if err != nil {
		return Result{}, err
	}
	nm, err := NeighborhoodMultiplier(opp.NeighborhoodTier)
	if err != nil {
		return Result{}, err
	}
	penalty, err := CreditPenalty(profile.CreditTier)
	if err != nil {
		return Result{}, err
	}

	var score float64
	var drivers []string

	switch {
	case reg >= 0.9:
		score += 12
		drivers = append(drivers, DriverLowRegulatory)
	case reg >= 0.6:
		score += 7
	default:
		score += 2
	}

	var density float64
	if opp.Zoning == model.ZoningR2 && (opp.UnderbuiltFlag || opp.R2UnderbuiltFlag) {
		density += 12
		drivers = append(drivers, DriverUnderbuiltR2)
	}
	if opp.Zoning == model.ZoningR3 && (opp.UnderbuiltFlag || opp.R3UnderbuiltFlag) {
		density += 14
		drivers = append(drivers, DriverUnderbuiltR3)
	}
	if opp.UnusedUnits() > 0 {
		density += 4
	}
	if Sb9Potential(opp) >= 6 {
		density += 4
		switch opp.Sb9Type {
		case model.Sb9Both:
			drivers = append(drivers, DriverSb9Both)
		case model.Sb9TwoUnit:
			drivers = append(drivers, DriverSb9TwoUnit)
		case model.Sb9LotSplit:
			drivers = append(drivers, DriverSb9LotSplit)
		}
	}
	score += density

	if ADUFeasible(opp) && opp.RentADU() > 0 {
		score += 10
		drivers = append(drivers, DriverADUIncome)
	}

	if profile.WillOccupy && opp.RentExisting() != 0 && opp.RentADU() != 0 {
		net := AssumedPITI(opp.AskPrice) - opp.TotalMonthlyRent()
		rent := profile.Rent()
		switch {
		case rent != 0 && net <= rent:
			score += 16
			drivers = append(drivers, DriverOwnerCostCovered)
		case rent != 0 && net <= rent*ownerCostToleranceRatio:
			score += 8
			drivers = append(drivers, DriverOwnerCostNear)
		}
	}

	var strategy float64
	if profile.Prefers(model.StrategySmallMF) && opp.AssetType == model.AssetSmallMF {
		strategy += 6
		drivers = append(drivers, DriverStrategySmallMF)
	}
	if profile.Prefers(model.StrategyADU) &&
		(opp.AssetType == model.AssetSFRADU || opp.AssetType == model.AssetSFRR2GarageADU) {
		strategy += 6
		drivers = append(drivers, DriverStrategyADU)
	}
	if profile.Prefers(model.StrategyTeardown) && opp.AssetType == model.AssetTeardown {
		strategy += 5
		drivers = append(drivers, DriverStrategyTeardown)
	}
	if profile.Prefers(model.StrategySB9) && opp.Sb9Eligible {
		strategy += 4
		drivers = append(drivers, DriverStrategySb9)
	}
	score += strategy

	score += penalty

	if opp.UnderbuiltFlag {
		score *= 1.25
	}
	if opp.R2UnderbuiltFlag {
		score *= 1.15
	}
	if opp.R3UnderbuiltFlag {
		score *= 1.1
	}

	if opp.Zoning == model.ZoningR1 || opp.Zoning == model.ZoningR2 {
		if opp.LotSizeSqft >= 6000 {
			score *= 1.1
		}
		if opp.HasAlley {
			score *= 1.05
		}
	}

	if profile.WillOccupy {
		score *= 1.1
		if opp.Zoning == model.ZoningR2 || opp.Zoning == model.ZoningR3 {
			score *= 1.05
		}
	}

	switch ppu := opp.PricePerUnit(); {
	case ppu < 500_000:
		score *= 1.2
		drivers = append(drivers, DriverDirtExceptional)
	case ppu < 600_000:
		score *= 1.1
		drivers = append(drivers, DriverDirtStrong)
	}

	score *= reg
	score *= nm

	if opp.IsStabilizedFourplex() {
		score = math.Min(score, FourplexCeiling)
	}

	return Result{
		Score:   num.Clamp(score, 0, 100),
		Drivers: model.TopDrivers(drivers, model.MaxDrivers),
	}, nil
}

// ADUFeasible reports whether an ADU can plausibly be added: either the asset
// is already an SFR+ADU play, or it is an R1 lot of at least 5,000 sqft with
// alley or garage access.
func ADUFeasible(opp model.Opportunity) bool {
	if opp.AssetType == model.AssetSFRADU {
		return true
	}
	return opp.Zoning == model.ZoningR1 && opp.LotSizeSqft >= 5000 && (opp.HasAlley || opp.HasGarage)
}
