package str

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/arbitrage-cli/internal/model"
)

func ptr[T any](v T) *T { return &v }

func pennSt() model.Opportunity {
	return model.Opportunity{
		ID:                    "es_848_penn",
		City:                  "El Segundo",
		NeighborhoodSubmarket: "El Segundo – Core",
		NeighborhoodTier:      model.TierPrime,
		Zoning:                model.ZoningR2,
		AssetType:             model.AssetTriplexR2UnderbuiltADU,
		LotSizeSqft:           7268,
		BuildingSqft:          1793,
		LegalUnits:            3,
		ExistingStructures:    1,
		AskPrice:              1_699_000,
		RentExistingEst:       ptr(6650.0),
		RentADUEst:            ptr(2500.0),
		OperationalEnv:        model.EnforcementLow,
		DevelopmentEnv:        model.EnforcementMedium,
	}
}

func mapleSFR() model.Opportunity {
	return model.Opportunity{
		ID:                    "1220-maple",
		City:                  "Torrance",
		NeighborhoodSubmarket: "Torrance – Central",
		NeighborhoodTier:      model.TierMiddle,
		Zoning:                model.ZoningR1,
		AssetType:             model.AssetSFRADU,
		LotSizeSqft:           6500,
		BuildingSqft:          1800,
		LegalUnits:            2,
		ExistingStructures:    1,
		AskPrice:              1_250_000,
		RentExistingEst:       ptr(2800.0),
		RentADUEst:            ptr(2400.0),
		OperationalEnv:        model.EnforcementMedium,
		DevelopmentEnv:        model.EnforcementMedium,
	}
}

func defaultTable(t *testing.T) *MarketTable {
	t.Helper()
	table, err := DefaultMarketTable()
	require.NoError(t, err)
	return table
}

func TestEvaluate_Forbidden(t *testing.T) {
	t.Parallel()

	res, err := Evaluate(pennSt(), Config{
		City:             "Anywhere",
		Regime:           model.RegimeForbidden,
		BaseADR:          400,
		BaseOccupancy:    0.7,
		MaxNightsPerYear: ptr(30),
	})
	require.NoError(t, err)

	assert.False(t, res.Allowed)
	assert.Equal(t, 30, res.AvailableNights)
	assert.Zero(t, res.BookedNights)
	assert.Zero(t, res.GrossRevenue)
	assert.Zero(t, res.NetOperatingIncome)
	assert.Zero(t, res.Score)
	require.NotNil(t, res.AnnualDebtService)
	require.NotNil(t, res.CashOnCashReturnPct)
	assert.Zero(t, *res.AnnualDebtService)
	assert.Zero(t, *res.CashOnCashReturnPct)
	assert.Equal(t, []string{DriverProhibited}, res.Drivers)
}

func TestEvaluate_NightCap(t *testing.T) {
	t.Parallel()

	res, err := Evaluate(pennSt(), Config{
		City:             "x",
		Regime:           model.RegimeNeutral,
		BaseADR:          200,
		BaseOccupancy:    0.5,
		PlatformFeePct:   0.05,
		OperatingCostPct: 0.1,
		MaxNightsPerYear: ptr(120),
	})
	require.NoError(t, err)

	assert.Equal(t, 120, res.AvailableNights)
	assert.Equal(t, 60, res.BookedNights)
	assert.InDelta(t, 12000, res.GrossRevenue, 1e-9)
	assert.InDelta(t, 10200, res.NetOperatingIncome, 1e-9)
	assert.InDelta(t, 50, res.OccupancyPct(), 1e-9)
	assert.Equal(t, []string{"Night cap of 120 nights/year", DriverUpliftWeak}, res.Drivers)
	assert.Nil(t, res.AnnualDebtService)
	assert.Nil(t, res.CashOnCashReturnPct)
}

func TestEvaluate_ReferenceMarkets(t *testing.T) {
	t.Parallel()
	table := defaultTable(t)

	tests := []struct {
		name      string
		opp       model.Opportunity
		available int
		booked    int
		adr       float64
		noi       float64
		ltYield   float64
		strYield  float64
		score     float64
		drivers   []string
	}{
		{
			name:      "hostile core with night cap",
			opp:       pennSt(),
			available: 120,
			booked:    70,
			adr:       325,
			noi:       12967.5,
			ltYield:   4.696880517951736,
			strYield:  0.7632430841671571,
			score:     0,
			drivers:   []string{"Night cap of 120 nights/year", DriverFeeDrag, DriverUpliftWeak},
		},
		{
			name:      "supportive torrance",
			opp:       mapleSFR(),
			available: 365,
			booked:    219,
			adr:       260,
			noi:       34164,
			ltYield:   2.688,
			strYield:  2.73312,
			score:     1.26768,
			drivers:   []string{DriverFeeDrag, DriverSupportive},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, ok := table.Resolve(tt.opp)
			require.True(t, ok)

			res, err := Evaluate(tt.opp, cfg)
			require.NoError(t, err)

			assert.True(t, res.Allowed)
			assert.Equal(t, tt.available, res.AvailableNights)
			assert.Equal(t, tt.booked, res.BookedNights)
			assert.InDelta(t, tt.adr, res.ADR, 1e-9)
			assert.InDelta(t, tt.noi, res.NetOperatingIncome, 1e-6)
			assert.InDelta(t, tt.ltYield, res.LongTermGrossYieldPct, 1e-9)
			assert.InDelta(t, tt.strYield, res.StrNetYieldPct, 1e-9)
			assert.InDelta(t, tt.strYield-tt.ltYield, res.UpliftVsLongTermPct, 1e-9)
			assert.InDelta(t, tt.score, res.Score, 1e-9)
			assert.Equal(t, tt.drivers, res.Drivers)
		})
	}
}

func TestEvaluate_StrongUpliftSaturates(t *testing.T) {
	t.Parallel()

	res, err := Evaluate(mapleSFR(), Config{
		City:             "Torrance",
		Regime:           model.RegimeSupportive,
		BaseADR:          600,
		BaseOccupancy:    0.8,
		PlatformFeePct:   0.05,
		OperatingCostPct: 0.1,
		MaxNightsPerYear: ptr(365),
	})
	require.NoError(t, err)

	assert.Equal(t, 292, res.BookedNights)
	assert.InDelta(t, 148920, res.NetOperatingIncome, 1e-6)
	assert.Equal(t, 10.0, res.Score)
	assert.Equal(t, []string{DriverUpliftStrong, DriverSupportive}, res.Drivers)
}

func TestEvaluate_NeutralModerateUplift(t *testing.T) {
	t.Parallel()

	res, err := Evaluate(mapleSFR(), Config{
		City:             "Torrance",
		Regime:           model.RegimeNeutral,
		BaseADR:          300,
		BaseOccupancy:    0.6,
		PlatformFeePct:   0.1,
		OperatingCostPct: 0.2,
	})
	require.NoError(t, err)

	assert.Equal(t, 365, res.AvailableNights)
	assert.Equal(t, 219, res.BookedNights)
	assert.InDelta(t, 1.239, res.Score, 1e-9)
	assert.Empty(t, res.Drivers)
}

func TestEvaluate_Financing(t *testing.T) {
	t.Parallel()

	res, err := Evaluate(pennSt(), Config{
		City:             "El Segundo",
		Regime:           model.RegimeNeutral,
		BaseADR:          400,
		BaseOccupancy:    0.7,
		PlatformFeePct:   0.1,
		OperatingCostPct: 0.2,
		DownPaymentPct:   ptr(0.25),
		InterestRatePct:  ptr(6.5),
		AmortYears:       ptr(30),
		PropertyTaxPct:   ptr(0.012),
		InsurancePct:     ptr(0.003),
	})
	require.NoError(t, err)

	assert.Equal(t, 255, res.BookedNights)
	assert.InDelta(t, 71400, res.NetOperatingIncome, 1e-6)
	require.NotNil(t, res.AnnualDebtService)
	assert.InDelta(t, 96649.52147230932, *res.AnnualDebtService, 1e-6)
	require.NotNil(t, res.CashOnCashReturnPct)
	assert.InDelta(t, -11.944560676235273, *res.CashOnCashReturnPct, 1e-6)
	assert.Equal(t, []string{DriverDebtConstrained, DriverUpliftWeak}, res.Drivers)
}

func TestEvaluate_PartialFinancingSkipsCashOnCash(t *testing.T) {
	t.Parallel()

	res, err := Evaluate(pennSt(), Config{
		City:           "El Segundo",
		Regime:         model.RegimeNeutral,
		BaseADR:        400,
		BaseOccupancy:  0.7,
		DownPaymentPct: ptr(0.25),
		AmortYears:     ptr(30),
	})
	require.NoError(t, err)
	assert.Nil(t, res.AnnualDebtService)
	assert.Nil(t, res.CashOnCashReturnPct)
}

func TestEvaluate_InferredADR(t *testing.T) {
	t.Parallel()

	cfg := Config{City: "x", Regime: model.RegimeNeutral, BaseOccupancy: 0.5}

	res, err := Evaluate(pennSt(), cfg)
	require.NoError(t, err)
	assert.InDelta(t, 355, res.ADR, 1e-9)

	noRent := pennSt()
	noRent.RentExistingEst = nil
	res, err = Evaluate(noRent, cfg)
	require.NoError(t, err)
	assert.InDelta(t, 300, res.ADR, 1e-9)
	assert.Zero(t, res.LongTermGrossYieldPct)
}

func TestEvaluate_ZeroAskPrice(t *testing.T) {
	t.Parallel()

	opp := pennSt()
	opp.AskPrice = 0
	res, err := Evaluate(opp, Config{City: "x", Regime: model.RegimeNeutral, BaseADR: 300, BaseOccupancy: 0.5})
	require.NoError(t, err)
	assert.Zero(t, res.LongTermGrossYieldPct)
	assert.Zero(t, res.StrNetYieldPct)
}

func TestEvaluate_UnknownRegime(t *testing.T) {
	t.Parallel()

	_, err := Evaluate(pennSt(), Config{City: "x", Regime: "tolerated"})
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrInvalidInput))
}

func TestAnnualDebtService(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 56886.122114366866, AnnualDebtService(750_000, 6.5, 30), 1e-6)
	assert.InDelta(t, 25_000, AnnualDebtService(750_000, 0, 30), 1e-9)
	assert.Zero(t, AnnualDebtService(750_000, 0, 0))
	assert.Zero(t, AnnualDebtService(750_000, 6.5, -1))
}

func TestResolve(t *testing.T) {
	t.Parallel()
	table := defaultTable(t)

	tests := []struct {
		name   string
		opp    model.Opportunity
		ok     bool
		adr    float64
		regime model.Regime
		nights int
	}{
		{
			name:   "exact submarket",
			opp:    model.Opportunity{City: "Hawthorne", NeighborhoodSubmarket: "Hollyglen"},
			ok:     true,
			adr:    280,
			regime: model.RegimeNeutral,
			nights: 365,
		},
		{
			name:   "submarket match ignores case",
			opp:    model.Opportunity{City: "  el segundo", NeighborhoodSubmarket: "EL SEGUNDO – CORE "},
			ok:     true,
			adr:    325,
			regime: model.RegimeHostile,
			nights: 120,
		},
		{
			name:   "unknown submarket falls back to city",
			opp:    model.Opportunity{City: "Torrance", NeighborhoodSubmarket: "Old Torrance"},
			ok:     true,
			adr:    250,
			regime: model.RegimeSupportive,
			nights: 365,
		},
		{
			name:   "hollyglen sub-areas use the hawthorne default",
			opp:    model.Opportunity{City: "Hawthorne", NeighborhoodSubmarket: "Hollyglen – Core"},
			ok:     true,
			adr:    225,
			regime: model.RegimeNeutral,
			nights: 365,
		},
		{
			name: "synthesized from opportunity regime",
			opp: model.Opportunity{
				City:                "Lomita",
				StrRegime:           ptr(model.RegimeHostile),
				StrMaxNightsPerYear: ptr(60),
			},
			ok:     true,
			adr:    250,
			regime: model.RegimeHostile,
			nights: 60,
		},
		{
			name:   "synthesized default night cap",
			opp:    model.Opportunity{City: "Lomita", StrRegime: ptr(model.RegimeNeutral)},
			ok:     true,
			adr:    250,
			regime: model.RegimeNeutral,
			nights: 180,
		},
		{
			name: "not modelled",
			opp:  model.Opportunity{City: "Lomita"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, ok := table.Resolve(tt.opp)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.InDelta(t, tt.adr, cfg.BaseADR, 1e-9)
			assert.Equal(t, tt.regime, cfg.Regime)
			require.NotNil(t, cfg.MaxNightsPerYear)
			assert.Equal(t, tt.nights, *cfg.MaxNightsPerYear)
		})
	}
}

func TestResolve_ReturnsCopy(t *testing.T) {
	t.Parallel()
	table := defaultTable(t)

	cfg, ok := table.Resolve(pennSt())
	require.True(t, ok)
	*cfg.MaxNightsPerYear = 1

	again, ok := table.Resolve(pennSt())
	require.True(t, ok)
	assert.Equal(t, 120, *again.MaxNightsPerYear)
}

func TestDefaultMarketTable(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 14, defaultTable(t).Len())
}

func TestLoadMarketTable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "markets.yaml")
	data := []byte(`
cities:
  - city: Lomita
    regime: supportive
    base_adr: 210
    base_occupancy: 0.5
    platform_fee_pct: 0.12
    operating_cost_pct: 0.25
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	table, err := LoadMarketTable(path)
	require.NoError(t, err)

	cfg, ok := table.Resolve(model.Opportunity{City: "Lomita"})
	require.True(t, ok)
	assert.Equal(t, model.RegimeSupportive, cfg.Regime)
	assert.Nil(t, cfg.MaxNightsPerYear)

	_, err = LoadMarketTable(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestParseMarketTable_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{name: "bad yaml", data: "cities: [::"},
		{name: "unknown regime", data: "cities:\n  - city: X\n    regime: tolerated\n"},
		{name: "occupancy out of range", data: "cities:\n  - city: X\n    regime: neutral\n    base_occupancy: 1.5\n"},
		{name: "submarket entry without submarket", data: "submarkets:\n  - city: X\n    regime: neutral\n"},
		{name: "missing city", data: "cities:\n  - regime: neutral\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseMarketTable([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestAttachAll(t *testing.T) {
	t.Parallel()
	table := defaultTable(t)

	unmodelled := model.Opportunity{ID: "lomita", City: "Lomita", AskPrice: 900_000}
	opps := []model.Opportunity{pennSt(), unmodelled, mapleSFR()}
	before := pennSt()

	got, err := AttachAll(context.Background(), opps, table, 2)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "es_848_penn", got[0].Opportunity.ID)
	assert.Equal(t, "lomita", got[1].Opportunity.ID)
	assert.Equal(t, "1220-maple", got[2].Opportunity.ID)

	require.NotNil(t, got[0].STR)
	assert.Equal(t, model.RegimeHostile, got[0].STR.Regime)
	assert.Nil(t, got[1].STR)
	require.NotNil(t, got[2].STR)
	assert.InDelta(t, 1.26768, got[2].STR.Score, 1e-9)

	assert.Equal(t, before, opps[0])
}

func TestAttachAll_NilTable(t *testing.T) {
	t.Parallel()

	got, err := AttachAll(context.Background(), []model.Opportunity{pennSt()}, nil, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].STR)
}

func TestAttachAll_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AttachAll(ctx, []model.Opportunity{pennSt(), mapleSFR()}, defaultTable(t), 1)
	assert.Error(t, err)
}

func TestAttach_BadMarketRegime(t *testing.T) {
	t.Parallel()

	table, err := NewMarketTable(nil, nil)
	require.NoError(t, err)

	opp := pennSt()
	opp.StrRegime = ptr(model.Regime("tolerated"))
	_, err = Attach(opp, table)
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrInvalidInput))
}
