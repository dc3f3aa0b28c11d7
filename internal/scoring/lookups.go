// Package scoring ranks opportunities with two independent scorers: a
// property-only arbitrage score and a profile-aware score that also explains
// itself through driver strings.
package scoring

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/arbitrage-cli/internal/model"
)

var operationalFactors = map[model.EnforcementLevel]float64{
	model.EnforcementLow:     1.0,
	model.EnforcementMedium:  0.85,
	model.EnforcementHigh:    0.65,
	model.EnforcementExtreme: 0.4,
}

var developmentFactors = map[model.EnforcementLevel]float64{
	model.EnforcementLow:     1.0,
	model.EnforcementMedium:  0.8,
	model.EnforcementHigh:    0.55,
	model.EnforcementExtreme: 0.35,
}

var tierMultipliers = map[model.NeighborhoodTier]float64{
	model.TierPrime:      1.2,
	model.TierStrong:     1.15,
	model.TierMiddle:     1.0,
	model.TierValue:      0.87,
	model.TierDistressed: 0.85,
}

var creditPenalties = map[model.CreditTier]float64{
	model.CreditA: 0,
	model.CreditB: -3,
	model.CreditC: -7,
	model.CreditD: -12,
}

// RegulatoryMultiplier combines the operational and development enforcement
// factors into one multiplier in (0, 1].
func RegulatoryMultiplier(opp model.Opportunity) (float64, error) {
	op, ok := operationalFactors[opp.OperationalEnv]
	if !ok {
		return 0, eris.Wrapf(model.ErrInvalidInput, "scoring: unknown operational env %q", opp.OperationalEnv)
	}
	dev, ok := developmentFactors[opp.DevelopmentEnv]
	if !ok {
		return 0, eris.Wrapf(model.ErrInvalidInput, "scoring: unknown development env %q", opp.DevelopmentEnv)
	}
	return op * dev, nil
}

// NeighborhoodMultiplier maps a tier to its score multiplier.
func NeighborhoodMultiplier(tier model.NeighborhoodTier) (float64, error) {
	m, ok := tierMultipliers[tier]
	if !ok {
		return 0, eris.Wrapf(model.ErrInvalidInput, "scoring: unknown neighborhood tier %q", tier)
	}
	return m, nil
}

// CreditPenalty is the additive profile-score penalty for a credit tier.
func CreditPenalty(tier model.CreditTier) (float64, error) {
	p, ok := creditPenalties[tier]
	if !ok {
		return 0, eris.Wrapf(model.ErrInvalidInput, "scoring: unknown credit tier %q", tier)
	}
	return p, nil
}

// Posture is a city's stance on SB-9 lot splits and two-unit conversions.
type Posture string

const (
	PostureForbidden  Posture = "forbidden"
	PostureNeutral    Posture = "neutral"
	PostureSupportive Posture = "supportive"
)

// Factor scales the SB-9 base score.
func (p Posture) Factor() float64 {
	switch p {
	case PostureSupportive:
		return 1.0
	case PostureNeutral:
		return 0.5
	}
	return 0
}

// sb9Postures is keyed by lower-cased city name.
var sb9Postures = map[string]Posture{
	"el segundo":      PostureForbidden,
	"redondo beach":   PostureNeutral,
	"hawthorne":       PostureNeutral,
	"manhattan beach": PostureForbidden,
	"torrance":        PostureSupportive,
	"hollyglen":       PostureNeutral,
	"wiseburn":        PostureNeutral,
}

// CityPosture returns the SB-9 posture for a city. Unlisted cities are neutral.
func CityPosture(city string) Posture {
	if p, ok := sb9Postures[strings.ToLower(strings.TrimSpace(city))]; ok {
		return p
	}
	return PostureNeutral
}

// Sb9Potential scores SB-9 upside: a type-dependent base scaled by the city
// posture. Ineligible parcels score zero.
func Sb9Potential(opp model.Opportunity) float64 {
	if !opp.Sb9Eligible {
		return 0
	}

	var base float64
	switch opp.Sb9Type {
	case model.Sb9TwoUnit, model.Sb9LotSplit:
		base = 2
	case model.Sb9Both:
		base = 4
	}
	return base * CityPosture(opp.City).Factor()
}
