package optimizer

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/REP-LNG-Traders/portfolio-sub000/internal/config"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/constraints"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/errors"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/models"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/pricing"
)

func testConfig() *config.Config {
	return &config.Config{
		Horizon: config.HorizonConfig{StartMonth: "2026-01", Months: 3, DecisionDate: "2025-10-15"},
		Contracts: config.ContractsConfig{
			Purchase: config.PurchaseContractConfig{
				BaseVolume:      4_000_000,
				TolerancePct:    0.10,
				FixedAdder:      0.30,
				CancellationFee: 0.25,
			},
			Sales: config.SalesContractConfig{BaseVolume: 3_700_000, TolerancePct: 0.10},
		},
		Vessel: config.VesselConfig{LossRatePerDay: 0.0005, Flag: "US"},
		Destinations: config.DestinationsConfig{
			Singapore: config.DestinationConfig{TransitDays: 48, BerthingFee: 150_000, PaymentDelayDays: 30, Slope: 1.0},
			Tokyo:     config.DestinationConfig{TransitDays: 20, BerthingFee: 120_000, Slope: 0.12, Intercept: 2.5},
			Rotterdam: config.DestinationConfig{TransitDays: 30, BerthingFee: 100_000, Slope: 1.1, Intercept: 1.0},
		},
		Transport: config.TransportConfig{
			DayRate: 50_000, Insurance: 40_000, BrokeragePct: 0.0125,
			CapitalRate: 0.05, DelayProb: 0.10, DelayDays: 2,
			FinancingFloor: 50_000, FinancingPct: 0.002,
		},
		Credit: config.CreditConfig{DiscountRate: 0.05},
		Counterparties: []config.CounterpartyConfig{
			{Name: "ALPHA_LNG", Premium: 0.50, DefaultProb: 0.02, RecoveryRate: 0.40, MinNoticeDays: 30, MaxNoticeDays: 180},
			{Name: "BETA_GAS", Premium: 0.30, DefaultProb: 0.005, RecoveryRate: 0.60, MinNoticeDays: 45, MaxNoticeDays: 180},
		},
		Deadlines: config.DeadlineConfig{MandatoryOffsetMonths: 2, OptionalOffsetMonths: 3, ConfirmOffsetMonths: 1},
		Demand:    config.DemandConfig{Model: "discount"},
		Optimizer: config.OptimizerConfig{VolumeLevels: []float64{0.90, 1.00, 1.10}, Workers: 2},
	}
}

func testForecast(cfg *config.Config) *models.PriceForecast {
	f := models.NewPriceForecast()
	for i, m := range cfg.Months() {
		f.Set(models.HenryHub, m, 2.798+0.01*float64(i))
		f.Set(models.JKM, m, 11.27+0.05*float64(i))
		f.Set(models.Brent, m, 67.96+0.20*float64(i))
	}
	return f
}

func newTestOptimizer(t *testing.T, cfg *config.Config) *Optimizer {
	t.Helper()
	engine, err := pricing.NewEngine(cfg)
	require.NoError(t, err)
	return New(engine, constraints.NewValidator(cfg), cfg, zerolog.Nop())
}

func TestOptimizeCoversWholeHorizon(t *testing.T) {
	cfg := testConfig()
	o := newTestOptimizer(t, cfg)

	strategy, err := o.Optimize(testForecast(cfg))
	require.NoError(t, err)
	require.Len(t, strategy.Months, 3)

	var sum float64
	for i, m := range strategy.Months {
		assert.Equal(t, cfg.Months()[i], m.Decision.Month)
		sum += m.PnL.NetValue
	}
	assert.InDelta(t, sum, strategy.TotalValue, 1e-6)
	assert.Equal(t, "discount", strategy.DemandModel)
}

func TestOptimizeNeverWorseThanCancellation(t *testing.T) {
	cfg := testConfig()
	o := newTestOptimizer(t, cfg)

	strategy, err := o.Optimize(testForecast(cfg))
	require.NoError(t, err)

	cancellationValue := -cfg.Contracts.Purchase.CancellationFee * cfg.Contracts.Purchase.BaseVolume
	for _, m := range strategy.Months {
		assert.GreaterOrEqual(t, m.PnL.NetValue, cancellationValue)
	}
}

func TestOptimizeCancelsWhenMarginCollapses(t *testing.T) {
	cfg := testConfig()
	o := newTestOptimizer(t, cfg)

	// Sale prices far below the purchase cost at every destination.
	f := models.NewPriceForecast()
	for _, m := range cfg.Months() {
		f.Set(models.HenryHub, m, 10.0)
		f.Set(models.JKM, m, 0.5)
		f.Set(models.Brent, m, 1.0)
	}

	strategy, err := o.Optimize(f)
	require.NoError(t, err)
	for _, m := range strategy.Months {
		assert.Equal(t, models.ActionCancel, m.Decision.Action)
		assert.InDelta(t, -1_000_000, m.PnL.NetValue, 1e-6)
	}
}

func TestOptimizeDeterministicAcrossWorkerCounts(t *testing.T) {
	cfg1 := testConfig()
	cfg1.Optimizer.Workers = 1
	cfg8 := testConfig()
	cfg8.Optimizer.Workers = 8

	s1, err := newTestOptimizer(t, cfg1).Optimize(testForecast(cfg1))
	require.NoError(t, err)
	s8, err := newTestOptimizer(t, cfg8).Optimize(testForecast(cfg8))
	require.NoError(t, err)

	require.Equal(t, len(s1.Months), len(s8.Months))
	for i := range s1.Months {
		assert.Equal(t, s1.Months[i].Decision, s8.Months[i].Decision)
	}
	assert.Equal(t, s1.TotalValue, s8.TotalValue)
}

func TestOptimizeMissingForecastFailsUpfront(t *testing.T) {
	cfg := testConfig()
	o := newTestOptimizer(t, cfg)

	f := testForecast(cfg)
	partial := models.NewPriceForecast()
	for _, com := range models.AllCommodities() {
		for _, m := range cfg.Months()[:2] { // drop the last month
			p, _ := f.Price(com, m)
			partial.Set(com, m, p)
		}
	}

	_, err := o.Optimize(partial)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrForecastMissing))
}

func TestCandidatesShapeAndOrder(t *testing.T) {
	cfg := testConfig()
	o := newTestOptimizer(t, cfg)
	month := cfg.StartMonth()

	candidates := o.Candidates(month)
	require.NotEmpty(t, candidates)

	last := candidates[len(candidates)-1]
	assert.Equal(t, models.ActionCancel, last.Action)

	// Fixed destination-major order with the configured counterparty order.
	assert.Equal(t, models.Singapore, candidates[0].Destination)
	assert.Equal(t, "ALPHA_LNG", candidates[0].Counterparty)
	for _, c := range candidates[:len(candidates)-1] {
		assert.Equal(t, models.ActionLift, c.Action)
		assert.Equal(t, month, c.Month)
	}
}

func TestCandidatesIncludeSaturationVolume(t *testing.T) {
	cfg := testConfig()
	o := newTestOptimizer(t, cfg)
	engine, err := pricing.NewEngine(cfg)
	require.NoError(t, err)

	saturation := engine.SalesMax() / (1 - engine.LossFraction(models.Singapore))
	found := false
	for _, c := range o.Candidates(cfg.StartMonth()) {
		if c.Destination == models.Singapore && math.Abs(c.PurchaseVolume-saturation) < 1e-6 {
			found = true
			break
		}
	}
	assert.True(t, found, "saturation volume %f missing from candidate set", saturation)
}

func TestOptimizeSaturationEliminatesStranding(t *testing.T) {
	cfg := testConfig()
	o := newTestOptimizer(t, cfg)

	strategy, err := o.Optimize(testForecast(cfg))
	require.NoError(t, err)

	// With a positive unit margin the optimizer prefers the saturating
	// volume, so nothing profitable is left stranded.
	for _, m := range strategy.Months {
		require.Equal(t, models.ActionLift, m.Decision.Action)
		assert.InDelta(t, 0, m.PnL.StrandedVolume, 1e-3)
	}
}

func TestStrictModeFallsBackToCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Horizon.Months = 1
	cfg.Horizon.DecisionDate = "2025-11-20" // 42 days before delivery
	for i := range cfg.Counterparties {
		cfg.Counterparties[i].MinNoticeDays = 60
	}
	cfg.Optimizer.Strict = true

	o := newTestOptimizer(t, cfg)
	strategy, err := o.Optimize(testForecast(cfg))
	require.NoError(t, err)

	// Every lift breaches the notice minimum; only the cancel path is clean.
	require.Len(t, strategy.Months, 1)
	assert.Equal(t, models.ActionCancel, strategy.Months[0].Decision.Action)
}

func TestNonStrictKeepsViolatingBest(t *testing.T) {
	cfg := testConfig()
	cfg.Horizon.Months = 1
	cfg.Horizon.DecisionDate = "2025-11-20"
	for i := range cfg.Counterparties {
		cfg.Counterparties[i].MinNoticeDays = 60
	}

	o := newTestOptimizer(t, cfg)
	strategy, err := o.Optimize(testForecast(cfg))
	require.NoError(t, err)

	require.Len(t, strategy.Months, 1)
	assert.Equal(t, models.ActionLift, strategy.Months[0].Decision.Action)
	assert.NotEmpty(t, strategy.Months[0].Violations)
}
