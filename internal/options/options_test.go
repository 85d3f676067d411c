package options

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/REP-LNG-Traders/portfolio-sub000/internal/config"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/errors"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/models"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/pricing"
)

func testConfig() *config.Config {
	return &config.Config{
		Horizon: config.HorizonConfig{StartMonth: "2026-01", Months: 3, DecisionDate: "2025-10-15"},
		Contracts: config.ContractsConfig{
			Purchase: config.PurchaseContractConfig{BaseVolume: 4_000_000, TolerancePct: 0.10, FixedAdder: 0.30},
			Sales:    config.SalesContractConfig{BaseVolume: 3_700_000, TolerancePct: 0.10},
		},
		Vessel: config.VesselConfig{LossRatePerDay: 0.0005, Flag: "US"},
		Destinations: config.DestinationsConfig{
			Singapore: config.DestinationConfig{TransitDays: 48, Slope: 1.0},
			Tokyo:     config.DestinationConfig{TransitDays: 20, Slope: 0.12, Intercept: 2.5},
			Rotterdam: config.DestinationConfig{TransitDays: 30, Slope: 1.1, Intercept: 1.0},
		},
		Counterparties: []config.CounterpartyConfig{
			{Name: "ALPHA_LNG", Premium: 0.50, DefaultProb: 0.02, RecoveryRate: 0.40, MinNoticeDays: 30, MaxNoticeDays: 180},
		},
		Demand: config.DemandConfig{Model: "discount"},
		Risk: config.RiskConfig{
			Volatility: map[string]float64{"HENRY_HUB": 0.40, "JKM": 0.55, "BRENT": 0.30},
		},
		Options: config.OptionsConfig{
			TollingFee:        2.5,
			AncillaryUnitCost: 1.0,
			RiskFreeRate:      0.045,
			IntrinsicHigh:     2.0,
			TotalLow:          0.5,
			DemandHigh:        0.8,
			DemandLow:         0.5,
		},
	}
}

func testForecast(cfg *config.Config) *models.PriceForecast {
	f := models.NewPriceForecast()
	for _, m := range cfg.Months() {
		f.Set(models.HenryHub, m, 2.798)
		f.Set(models.JKM, m, 11.27)
		f.Set(models.Brent, m, 67.96)
	}
	return f
}

func newTestValuer(t *testing.T, cfg *config.Config) *Valuer {
	t.Helper()
	engine, err := pricing.NewEngine(cfg)
	require.NoError(t, err)
	return NewValuer(engine, cfg, zerolog.Nop())
}

func TestValueDeepInTheMoneyHighConfidence(t *testing.T) {
	cfg := testConfig()
	cfg.Options.Candidates = []config.OptionCandidateConfig{
		{Month: "2026-01", Destination: "SINGAPORE", Counterparty: "ALPHA_LNG", Volume: 1_000_000},
	}
	v := newTestValuer(t, cfg)

	scenarios, err := v.Value(testForecast(cfg))
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	s := scenarios[0]

	// Strike = HH forward 2.798 + tolling 2.5; ancillary 1.0 folds into the
	// effective strike against the 11.77 achieved sale price.
	assert.InDelta(t, 5.298, s.Strike, 1e-9)
	assert.InDelta(t, 11.77, s.SalePrice, 1e-9)
	assert.InDelta(t, (11.77-6.298)*1_000_000, s.IntrinsicValue, 1e-3)
	assert.GreaterOrEqual(t, s.TimeValue, 0.0)
	assert.InDelta(t, s.IntrinsicValue+s.TimeValue, s.TotalValue, 1e-6)

	assert.True(t, s.Exercise)
	assert.Equal(t, models.ExerciseHigh, s.Confidence)
}

func TestValueOutOfTheMoneyDeclines(t *testing.T) {
	cfg := testConfig()
	cfg.Options.Candidates = []config.OptionCandidateConfig{
		{Month: "2026-01", Destination: "ROTTERDAM", Counterparty: "ALPHA_LNG", Volume: 1_000_000},
	}
	v := newTestValuer(t, cfg)

	scenarios, err := v.Value(testForecast(cfg))
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	s := scenarios[0]

	// Rotterdam nets 4.578/MMBtu against a 6.298 effective strike.
	assert.Zero(t, s.IntrinsicValue)
	assert.GreaterOrEqual(t, s.TimeValue, 0.0)
	assert.False(t, s.Exercise)
	assert.Equal(t, models.ExerciseNone, s.Confidence)
}

func TestValueSoftDemandDowngradesToMedium(t *testing.T) {
	cfg := testConfig()
	cfg.Demand.Levels = map[string]map[string]float64{
		"SINGAPORE": {"2026-01": 0.6},
	}
	cfg.Options.Candidates = []config.OptionCandidateConfig{
		{Month: "2026-01", Destination: "SINGAPORE", Counterparty: "ALPHA_LNG", Volume: 1_000_000},
	}
	v := newTestValuer(t, cfg)

	scenarios, err := v.Value(testForecast(cfg))
	require.NoError(t, err)
	require.Len(t, scenarios, 1)

	// Deep intrinsic but demand under the high bar: only the medium tier fires.
	assert.True(t, scenarios[0].Exercise)
	assert.Equal(t, models.ExerciseMedium, scenarios[0].Confidence)
	assert.Equal(t, 0.6, scenarios[0].DemandLevel)
}

func TestValuePortfolioCapKeepsTopK(t *testing.T) {
	cfg := testConfig()
	cfg.Options.MaxExercised = 1
	cfg.Options.Candidates = []config.OptionCandidateConfig{
		{Month: "2026-01", Destination: "TOKYO", Counterparty: "ALPHA_LNG", Volume: 500_000},
		{Month: "2026-02", Destination: "SINGAPORE", Counterparty: "ALPHA_LNG", Volume: 1_000_000},
	}
	v := newTestValuer(t, cfg)

	scenarios, err := v.Value(testForecast(cfg))
	require.NoError(t, err)
	require.Len(t, scenarios, 2)

	// Both clear the exercise rule; the smaller Tokyo cargo is demoted.
	assert.Greater(t, scenarios[1].TotalValue, scenarios[0].TotalValue)
	assert.False(t, scenarios[0].Exercise)
	assert.Equal(t, models.ExerciseNone, scenarios[0].Confidence)
	assert.True(t, scenarios[1].Exercise)
}

func TestValueUncappedKeepsAllExercised(t *testing.T) {
	cfg := testConfig()
	cfg.Options.Candidates = []config.OptionCandidateConfig{
		{Month: "2026-01", Destination: "TOKYO", Counterparty: "ALPHA_LNG", Volume: 500_000},
		{Month: "2026-02", Destination: "SINGAPORE", Counterparty: "ALPHA_LNG", Volume: 1_000_000},
	}
	v := newTestValuer(t, cfg)

	scenarios, err := v.Value(testForecast(cfg))
	require.NoError(t, err)
	for _, s := range scenarios {
		assert.True(t, s.Exercise)
	}
}

func TestValueMissingForecast(t *testing.T) {
	cfg := testConfig()
	cfg.Options.Candidates = []config.OptionCandidateConfig{
		{Month: "2026-06", Destination: "SINGAPORE", Counterparty: "ALPHA_LNG", Volume: 1_000_000},
	}
	v := newTestValuer(t, cfg)

	_, err := v.Value(testForecast(cfg))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrForecastMissing))
}

func TestBlackScholesCall(t *testing.T) {
	// Time value keeps a European call above intrinsic.
	call := blackScholesCall(11.77, 6.298, 0.25, 0.045, 0.55)
	assert.Greater(t, call, 11.77-6.298)

	// Degenerate inputs collapse to discounted intrinsic.
	assert.InDelta(t, 5.0, blackScholesCall(15, 10, 0, 0.045, 0.55), 1e-9)
	assert.InDelta(t, 15-10*math.Exp(-0.045*0.25), blackScholesCall(15, 10, 0.25, 0.045, 0), 1e-9)
	assert.Zero(t, blackScholesCall(5, 10, 0, 0.045, 0.55))

	// Deep out of the money is worth almost nothing.
	assert.Less(t, blackScholesCall(1, 100, 0.25, 0.045, 0.2), 1e-9)
}

func TestNormCDF(t *testing.T) {
	assert.InDelta(t, 0.5, normCDF(0), 1e-12)
	assert.InDelta(t, 0.8413, normCDF(1), 1e-4)
	assert.InDelta(t, 0.1587, normCDF(-1), 1e-4)
	assert.InDelta(t, 1.0, normCDF(8), 1e-9)
}
