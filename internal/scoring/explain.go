package scoring

import "github.com/sells-group/arbitrage-cli/internal/model"

// PropertyDrivers explains a raw arbitrage score without reference to any
// investor: tier, underbuilt flags, ADU income, zoning, regulatory friction
// and dirt value, first three that apply.
func PropertyDrivers(opp model.Opportunity) []string {
	var d []string

	switch opp.NeighborhoodTier {
	case model.TierPrime:
		d = append(d, "Prime-tier (+15%)")
	case model.TierStrong:
		d = append(d, "Strong-tier (+12%)")
	case model.TierValue:
		d = append(d, "Value-tier (-8%)")
	}
	if opp.R2UnderbuiltFlag {
		d = append(d, "R2 underbuilt")
	}
	if opp.R3UnderbuiltFlag {
		d = append(d, "R3 underbuilt")
	}
	if opp.RentADU() > 0 {
		d = append(d, "ADU income potential")
	}
	switch opp.Zoning {
	case model.ZoningR3:
		d = append(d, "R3 zoning")
	case model.ZoningR2:
		d = append(d, "R2 zoning")
	}
	if opp.OperationalEnv == model.EnforcementLow && opp.DevelopmentEnv == model.EnforcementLow {
		d = append(d, "Low reg friction")
	}
	switch ppu := opp.PricePerUnit(); {
	case ppu < 500_000:
		d = append(d, "Exceptional dirt value")
	case ppu < 600_000:
		d = append(d, "Strong dirt value")
	}

	return model.TopDrivers(d, model.MaxDrivers)
}
