package str

import (
	_ "embed"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/arbitrage-cli/internal/model"
)

// Defaults used when a market is synthesized from an opportunity's own
// regime rather than looked up in the table.
const (
	synthADR          = 250.0
	synthOccupancy    = 0.55
	synthPlatformFee  = 0.15
	synthOperatingPct = 0.28
	synthMaxNights    = 180
)

//go:embed markets.yaml
var defaultMarketsYAML []byte

// Config holds the STR assumptions for one market. Financing fields are
// optional; cash-on-cash is only computed when down payment, rate and
// amortization are all present.
type Config struct {
	City                   string       `yaml:"city" json:"city"`
	Submarket              string       `yaml:"submarket,omitempty" json:"submarket,omitempty"`
	Regime                 model.Regime `yaml:"regime" json:"regime"`
	BaseADR                float64      `yaml:"base_adr" json:"base_adr"`
	BaseOccupancy          float64      `yaml:"base_occupancy" json:"base_occupancy"`
	PlatformFeePct         float64      `yaml:"platform_fee_pct" json:"platform_fee_pct"`
	OperatingCostPct       float64      `yaml:"operating_cost_pct" json:"operating_cost_pct"`
	MaxNightsPerYear       *int         `yaml:"max_nights_per_year,omitempty" json:"max_nights_per_year,omitempty"`
	OwnerOccupancyRequired bool         `yaml:"owner_occupancy_required" json:"owner_occupancy_required"`

	DownPaymentPct  *float64 `yaml:"down_payment_pct,omitempty" json:"down_payment_pct,omitempty"`
	InterestRatePct *float64 `yaml:"interest_rate_pct,omitempty" json:"interest_rate_pct,omitempty"`
	AmortYears      *int     `yaml:"amort_years,omitempty" json:"amort_years,omitempty"`
	PropertyTaxPct  *float64 `yaml:"property_tax_pct,omitempty" json:"property_tax_pct,omitempty"`
	InsurancePct    *float64 `yaml:"insurance_pct,omitempty" json:"insurance_pct,omitempty"`
}

func (c Config) financed() bool {
	return c.DownPaymentPct != nil && *c.DownPaymentPct != 0 &&
		c.InterestRatePct != nil && *c.InterestRatePct != 0 &&
		c.AmortYears != nil && *c.AmortYears != 0
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	out := c
	out.MaxNightsPerYear = clonePtr(c.MaxNightsPerYear)
	out.DownPaymentPct = clonePtr(c.DownPaymentPct)
	out.InterestRatePct = clonePtr(c.InterestRatePct)
	out.AmortYears = clonePtr(c.AmortYears)
	out.PropertyTaxPct = clonePtr(c.PropertyTaxPct)
	out.InsurancePct = clonePtr(c.InsurancePct)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Validate checks that c is usable by Evaluate.
func (c Config) Validate() error {
	var errs []string
	if strings.TrimSpace(c.City) == "" {
		errs = append(errs, "city is required")
	}
	if !c.Regime.Valid() {
		errs = append(errs, "unknown regime "+string(c.Regime))
	}
	if c.BaseADR < 0 {
		errs = append(errs, "base_adr must be >= 0")
	}
	if c.BaseOccupancy < 0 || c.BaseOccupancy > 1 {
		errs = append(errs, "base_occupancy must be within [0, 1]")
	}
	if c.PlatformFeePct < 0 || c.PlatformFeePct > 1 {
		errs = append(errs, "platform_fee_pct must be within [0, 1]")
	}
	if c.OperatingCostPct < 0 || c.OperatingCostPct > 1 {
		errs = append(errs, "operating_cost_pct must be within [0, 1]")
	}
	if c.MaxNightsPerYear != nil && (*c.MaxNightsPerYear < 0 || *c.MaxNightsPerYear > fullYearNights) {
		errs = append(errs, "max_nights_per_year must be within [0, 365]")
	}
	if len(errs) > 0 {
		return eris.Wrapf(model.ErrInvalidInput, "str: market %s/%s: %s", c.City, c.Submarket, strings.Join(errs, "; "))
	}
	return nil
}

// MarketKey identifies a market by city and optional submarket. Both parts
// are compared case-insensitively.
type MarketKey struct {
	City      string
	Submarket string
}

// NewMarketKey normalizes city and submarket into a lookup key.
func NewMarketKey(city, submarket string) MarketKey {
	return MarketKey{
		City:      normalize(city),
		Submarket: normalize(submarket),
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// MarketTable resolves STR configs by submarket, then by city.
type MarketTable struct {
	submarkets map[MarketKey]Config
	cities     map[string]Config
}

type marketFile struct {
	Submarkets []Config `yaml:"submarkets"`
	Cities     []Config `yaml:"cities"`
}

// NewMarketTable builds a table from submarket configs and city defaults.
// Later entries with the same key replace earlier ones.
func NewMarketTable(submarkets, cities []Config) (*MarketTable, error) {
	t := &MarketTable{
		submarkets: make(map[MarketKey]Config, len(submarkets)),
		cities:     make(map[string]Config, len(cities)),
	}
	for _, c := range submarkets {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if normalize(c.Submarket) == "" {
			return nil, eris.Wrapf(model.ErrInvalidInput, "str: submarket config for %s has no submarket", c.City)
		}
		t.submarkets[NewMarketKey(c.City, c.Submarket)] = c.Clone()
	}
	for _, c := range cities {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		t.cities[normalize(c.City)] = c.Clone()
	}
	return t, nil
}

// ParseMarketTable decodes a YAML market file.
func ParseMarketTable(data []byte) (*MarketTable, error) {
	var f marketFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "str: parse market table")
	}
	return NewMarketTable(f.Submarkets, f.Cities)
}

// LoadMarketTable reads and parses a YAML market file from path.
func LoadMarketTable(path string) (*MarketTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "str: read market table %s", path)
	}
	return ParseMarketTable(data)
}

// DefaultMarketTable returns the built-in South Bay market table.
func DefaultMarketTable() (*MarketTable, error) {
	return ParseMarketTable(defaultMarketsYAML)
}

// Len returns the number of submarket and city entries.
func (t *MarketTable) Len() int {
	return len(t.submarkets) + len(t.cities)
}

// Resolve picks the STR config for opp: an exact submarket match, then the
// city default, then a config synthesized from the opportunity's own regime.
// It reports false when none applies, meaning STR is not modelled.
func (t *MarketTable) Resolve(opp model.Opportunity) (Config, bool) {
	if c, ok := t.submarkets[NewMarketKey(opp.City, opp.NeighborhoodSubmarket)]; ok {
		return c.Clone(), true
	}
	if c, ok := t.cities[normalize(opp.City)]; ok {
		return c.Clone(), true
	}
	if opp.StrRegime == nil {
		return Config{}, false
	}

	nights := synthMaxNights
	if opp.StrMaxNightsPerYear != nil {
		nights = *opp.StrMaxNightsPerYear
	}
	return Config{
		City:             opp.City,
		Submarket:        opp.NeighborhoodSubmarket,
		Regime:           *opp.StrRegime,
		BaseADR:          synthADR,
		BaseOccupancy:    synthOccupancy,
		PlatformFeePct:   synthPlatformFee,
		OperatingCostPct: synthOperatingPct,
		MaxNightsPerYear: &nights,
	}, true
}
