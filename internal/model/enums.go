package model

import (
	"github.com/rotisserie/eris"
)

// ErrInvalidInput marks a value outside one of the closed enumerations below.
var ErrInvalidInput = eris.New("invalid input")

// Zoning is the parcel's zoning classification.
type Zoning string

const (
	ZoningR1    Zoning = "R1"
	ZoningR2    Zoning = "R2"
	ZoningR3    Zoning = "R3"
	ZoningOther Zoning = "Other"
)

// Valid reports whether z is a known zoning class.
func (z Zoning) Valid() bool {
	switch z {
	case ZoningR1, ZoningR2, ZoningR3, ZoningOther:
		return true
	}
	return false
}

// AssetType tags the structural or strategy archetype of a property.
type AssetType string

const (
	AssetSFRADU                    AssetType = "SFR_ADU"
	AssetSFRUnderbuilt             AssetType = "SFR_Underbuilt"
	AssetSFRUnderbuiltR2           AssetType = "SFR_Underbuilt_R2"
	AssetTriplex                   AssetType = "Triplex"
	AssetTriplexUnderbuiltR2       AssetType = "Triplex_Underbuilt_R2"
	AssetTriplexCoastalCompound    AssetType = "Triplex_Coastal_Compound"
	AssetFourplex                  AssetType = "Fourplex"
	AssetFourplexStabilized        AssetType = "Fourplex_Stabilized"
	AssetSmallMF                   AssetType = "Small_MF"
	AssetValueAddMultifamily       AssetType = "ValueAdd_Multifamily"
	AssetLargeMultifamily          AssetType = "LargeMultifamily"
	AssetTeardown                  AssetType = "Teardown"
	AssetLand                      AssetType = "Land"
	AssetTriplexR2UnderbuiltADU    AssetType = "Triplex_R2_Underbuilt_ADU"
	AssetR3DevTeardown             AssetType = "R3_Dev_Teardown"
	AssetDuplexR2DeepLotADU        AssetType = "Duplex_R2_DeepLot_ADU"
	AssetSFRR2UnderbuiltADUStack   AssetType = "SFR_R2_Underbuilt_ADUStack"
	AssetTriplexR3ValueAdd         AssetType = "Triplex_R3_ValueAdd"
	AssetSFRR2GarageADU            AssetType = "SFR_R2_GarageADU"
	AssetFourplexR3StabilizedYield AssetType = "Fourplex_R3_Stabilized_Yield"
	AssetDuplex                    AssetType = "Duplex"
)

var assetTypes = map[AssetType]bool{
	AssetSFRADU: true, AssetSFRUnderbuilt: true, AssetSFRUnderbuiltR2: true,
	AssetTriplex: true, AssetTriplexUnderbuiltR2: true, AssetTriplexCoastalCompound: true,
	AssetFourplex: true, AssetFourplexStabilized: true, AssetSmallMF: true,
	AssetValueAddMultifamily: true, AssetLargeMultifamily: true, AssetTeardown: true,
	AssetLand: true, AssetTriplexR2UnderbuiltADU: true, AssetR3DevTeardown: true,
	AssetDuplexR2DeepLotADU: true, AssetSFRR2UnderbuiltADUStack: true, AssetTriplexR3ValueAdd: true,
	AssetSFRR2GarageADU: true, AssetFourplexR3StabilizedYield: true, AssetDuplex: true,
}

// Valid reports whether a is a known asset type.
func (a AssetType) Valid() bool { return assetTypes[a] }

// EnforcementLevel grades how aggressively a jurisdiction enforces rules.
type EnforcementLevel string

const (
	EnforcementLow     EnforcementLevel = "low"
	EnforcementMedium  EnforcementLevel = "medium"
	EnforcementHigh    EnforcementLevel = "high"
	EnforcementExtreme EnforcementLevel = "extreme"
)

// Valid reports whether e is a known enforcement level.
func (e EnforcementLevel) Valid() bool {
	switch e {
	case EnforcementLow, EnforcementMedium, EnforcementHigh, EnforcementExtreme:
		return true
	}
	return false
}

// NeighborhoodTier is the qualitative grade of a submarket.
type NeighborhoodTier string

const (
	TierPrime      NeighborhoodTier = "prime"
	TierStrong     NeighborhoodTier = "strong"
	TierMiddle     NeighborhoodTier = "middle"
	TierValue      NeighborhoodTier = "value"
	TierDistressed NeighborhoodTier = "distressed"
)

// Valid reports whether t is a known tier.
func (t NeighborhoodTier) Valid() bool {
	switch t {
	case TierPrime, TierStrong, TierMiddle, TierValue, TierDistressed:
		return true
	}
	return false
}

// Sb9Type is the kind of SB-9 upside a parcel carries.
type Sb9Type string

const (
	Sb9TwoUnit  Sb9Type = "two_unit"
	Sb9LotSplit Sb9Type = "lot_split"
	Sb9Both     Sb9Type = "both"
)

// Valid reports whether s is a known SB-9 type.
func (s Sb9Type) Valid() bool {
	switch s {
	case Sb9TwoUnit, Sb9LotSplit, Sb9Both:
		return true
	}
	return false
}

// Regime is a jurisdiction's short-term-rental posture.
type Regime string

const (
	RegimeForbidden  Regime = "forbidden"
	RegimeHostile    Regime = "hostile"
	RegimeNeutral    Regime = "neutral"
	RegimeSupportive Regime = "supportive"
)

// Valid reports whether r is a known regime.
func (r Regime) Valid() bool {
	switch r {
	case RegimeForbidden, RegimeHostile, RegimeNeutral, RegimeSupportive:
		return true
	}
	return false
}

// CreditTier grades the investor's borrowing profile.
type CreditTier string

const (
	CreditA CreditTier = "A"
	CreditB CreditTier = "B"
	CreditC CreditTier = "C"
	CreditD CreditTier = "D"
)

// Valid reports whether c is a known credit tier.
func (c CreditTier) Valid() bool {
	switch c {
	case CreditA, CreditB, CreditC, CreditD:
		return true
	}
	return false
}

// Horizon is the investor's hold period.
type Horizon string

const (
	HorizonShort  Horizon = "short"
	HorizonMedium Horizon = "medium"
	HorizonLong   Horizon = "long"
)

// Valid reports whether h is a known horizon.
func (h Horizon) Valid() bool {
	switch h {
	case HorizonShort, HorizonMedium, HorizonLong:
		return true
	}
	return false
}

// RiskTolerance is the investor's appetite for execution risk.
type RiskTolerance string

const (
	RiskLow    RiskTolerance = "low"
	RiskMedium RiskTolerance = "medium"
	RiskHigh   RiskTolerance = "high"
)

// Valid reports whether r is a known risk tolerance.
func (r RiskTolerance) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// Strategy is an investor strategy preference tag.
type Strategy string

const (
	StrategyADU       Strategy = "ADU"
	StrategyHouseHack Strategy = "HouseHack"
	StrategySmallMF   Strategy = "SmallMF"
	StrategyTeardown  Strategy = "Teardown"
	StrategySB9       Strategy = "SB9"
)

// Valid reports whether s is a known strategy tag.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyADU, StrategyHouseHack, StrategySmallMF, StrategyTeardown, StrategySB9:
		return true
	}
	return false
}
