package model

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
)

// ArbitrageProfile captures an investor's preferences. Scorers only read it.
type ArbitrageProfile struct {
	WillOccupy          bool          `json:"will_occupy" yaml:"will_occupy" mapstructure:"will_occupy"`
	CurrentRent         *float64      `json:"current_rent,omitempty" yaml:"current_rent,omitempty" mapstructure:"current_rent"`
	TargetMonthlyMax    *float64      `json:"target_monthly_max,omitempty" yaml:"target_monthly_max,omitempty" mapstructure:"target_monthly_max"`
	DownPaymentMin      *float64      `json:"down_payment_min,omitempty" yaml:"down_payment_min,omitempty" mapstructure:"down_payment_min"`
	DownPaymentMax      *float64      `json:"down_payment_max,omitempty" yaml:"down_payment_max,omitempty" mapstructure:"down_payment_max"`
	Horizon             Horizon       `json:"horizon" yaml:"horizon" mapstructure:"horizon"`
	RiskTolerance       RiskTolerance `json:"risk_tolerance" yaml:"risk_tolerance" mapstructure:"risk_tolerance"`
	RenovationComfort   int           `json:"renovation_comfort" yaml:"renovation_comfort" mapstructure:"renovation_comfort"`
	CreditTier          CreditTier    `json:"credit_tier" yaml:"credit_tier" mapstructure:"credit_tier"`
	StrategyPreferences []Strategy    `json:"strategy_preferences" yaml:"strategy_preferences" mapstructure:"strategy_preferences"`
}

// DefaultProfile is the profile a new session starts with.
func DefaultProfile() ArbitrageProfile {
	return ArbitrageProfile{
		Horizon:             HorizonMedium,
		RiskTolerance:       RiskMedium,
		RenovationComfort:   2,
		CreditTier:          CreditB,
		StrategyPreferences: []Strategy{StrategySmallMF},
	}
}

// Clone returns a deep copy.
func (p ArbitrageProfile) Clone() ArbitrageProfile {
	c := p
	c.CurrentRent = clonePtr(p.CurrentRent)
	c.TargetMonthlyMax = clonePtr(p.TargetMonthlyMax)
	c.DownPaymentMin = clonePtr(p.DownPaymentMin)
	c.DownPaymentMax = clonePtr(p.DownPaymentMax)
	c.StrategyPreferences = slices.Clone(p.StrategyPreferences)
	return c
}

// Rent returns the investor's current monthly rent, zero when unset.
func (p ArbitrageProfile) Rent() float64 {
	if p.CurrentRent == nil {
		return 0
	}
	return *p.CurrentRent
}

// Prefers reports whether s is among the strategy preferences.
func (p ArbitrageProfile) Prefers(s Strategy) bool {
	return slices.Contains(p.StrategyPreferences, s)
}

// Validate checks every enumerated field. The returned error wraps ErrInvalidInput.
func (p ArbitrageProfile) Validate() error {
	var errs []string

	if !p.Horizon.Valid() {
		errs = append(errs, fmt.Sprintf("unknown horizon %q", p.Horizon))
	}
	if !p.RiskTolerance.Valid() {
		errs = append(errs, fmt.Sprintf("unknown risk_tolerance %q", p.RiskTolerance))
	}
	if !p.CreditTier.Valid() {
		errs = append(errs, fmt.Sprintf("unknown credit_tier %q", p.CreditTier))
	}
	if p.RenovationComfort < 0 || p.RenovationComfort > 5 {
		errs = append(errs, "renovation_comfort must be between 0 and 5")
	}
	for _, s := range p.StrategyPreferences {
		if !s.Valid() {
			errs = append(errs, fmt.Sprintf("unknown strategy %q", s))
		}
	}
	if p.DownPaymentMin != nil && p.DownPaymentMax != nil && *p.DownPaymentMin > *p.DownPaymentMax {
		errs = append(errs, "down_payment_min must be <= down_payment_max")
	}

	if len(errs) > 0 {
		return eris.Wrapf(ErrInvalidInput, "profile: %s", strings.Join(errs, "; "))
	}
	return nil
}
