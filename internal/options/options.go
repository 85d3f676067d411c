// Package options values candidate optional cargoes as real options.
//
// Each candidate is decomposed into intrinsic value (exercise today) and
// Black-Scholes time value, then run through a tiered exercise rule. When a
// portfolio cap applies, exercise-eligible scenarios are ranked by total
// value and only the top K stay exercised.
package options

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/REP-LNG-Traders/portfolio-sub000/internal/config"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/errors"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/logging"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/models"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/pricing"
)

// Valuer prices optional cargoes.
type Valuer struct {
	engine *pricing.Engine
	cfg    *config.Config
	logger zerolog.Logger
}

// NewValuer creates a valuer sharing the pricing engine's formulas and the
// risk simulator's volatility inputs.
func NewValuer(engine *pricing.Engine, cfg *config.Config, logger zerolog.Logger) *Valuer {
	return &Valuer{
		engine: engine,
		cfg:    cfg,
		logger: logging.WithComponent(logger, "options"),
	}
}

// Value evaluates every configured candidate and applies the portfolio cap.
func (v *Valuer) Value(forecast *models.PriceForecast) ([]models.OptionScenario, error) {
	scenarios := make([]models.OptionScenario, 0, len(v.cfg.Options.Candidates))

	for _, cand := range v.cfg.Options.Candidates {
		scenario, err := v.valueCandidate(cand, forecast)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, scenario)
	}

	v.applyPortfolioCap(scenarios)

	for _, s := range scenarios {
		v.logger.Info().
			Str("event", "option").
			Str("month", s.Month.String()).
			Str("destination", string(s.Destination)).
			Float64("intrinsic", s.IntrinsicValue).
			Float64("time_value", s.TimeValue).
			Bool("exercise", s.Exercise).
			Str("confidence", string(s.Confidence)).
			Msg("Option scenario valued")
	}

	return scenarios, nil
}

func (v *Valuer) valueCandidate(cand config.OptionCandidateConfig, forecast *models.PriceForecast) (models.OptionScenario, error) {
	month, err := models.ParseMonth(cand.Month)
	if err != nil {
		return models.OptionScenario{}, err
	}
	dest := models.Destination(cand.Destination)
	opt := v.cfg.Options

	// Strike: procurement forward plus the tolling fee. A single forward
	// curve per run means the delivery-month forward stands in for the
	// value observed at the option's decision deadline.
	forward, ok := forecast.Price(models.HenryHub, month)
	if !ok {
		return models.OptionScenario{}, errors.NewForecastError(string(models.HenryHub), month.String())
	}
	strike := forward + opt.TollingFee

	salePrice, err := v.engine.SalePriceFor(dest, cand.Counterparty, month, forecast)
	if err != nil {
		return models.OptionScenario{}, err
	}

	// Effective strike folds the per-unit ancillary costs, so intrinsic and
	// time value share one exercise boundary.
	effStrike := strike + opt.AncillaryUnitCost
	intrinsicUnit := salePrice - effStrike
	if intrinsicUnit < 0 {
		intrinsicUnit = 0
	}

	monthsAhead := monthsFromDecision(v.cfg, month)
	tYears := float64(monthsAhead) / 12.0
	sigma := v.cfg.Risk.Volatility[string(pricing.SaleIndex(dest))]

	callUnit := blackScholesCall(salePrice, effStrike, tYears, opt.RiskFreeRate, sigma)
	timeUnit := callUnit - intrinsicUnit
	if timeUnit < 0 {
		timeUnit = 0
	}

	demand := v.engine.DemandLevel(dest, month)

	scenario := models.OptionScenario{
		Month:          month,
		Destination:    dest,
		Counterparty:   cand.Counterparty,
		Volume:         cand.Volume,
		ForwardPrice:   forward,
		Strike:         strike,
		SalePrice:      salePrice,
		IntrinsicValue: intrinsicUnit * cand.Volume,
		TimeValue:      timeUnit * cand.Volume,
		DemandLevel:    demand,
	}
	scenario.TotalValue = scenario.IntrinsicValue + scenario.TimeValue

	// Tiered exercise rule: deep intrinsic in a firm market exercises with
	// high confidence; total value in a workable market exercises with
	// lower confidence; otherwise decline.
	switch {
	case intrinsicUnit > opt.IntrinsicHigh && demand >= opt.DemandHigh:
		scenario.Exercise = true
		scenario.Confidence = models.ExerciseHigh
	case intrinsicUnit+timeUnit > opt.TotalLow && demand >= opt.DemandLow:
		scenario.Exercise = true
		scenario.Confidence = models.ExerciseMedium
	default:
		scenario.Exercise = false
		scenario.Confidence = models.ExerciseNone
	}

	return scenario, nil
}

// applyPortfolioCap keeps only the top-K exercised scenarios by total value.
// Ranking is stable over the fixed candidate order, so equal values resolve
// deterministically.
func (v *Valuer) applyPortfolioCap(scenarios []models.OptionScenario) {
	capK := v.cfg.Options.MaxExercised
	if capK <= 0 {
		return
	}

	exercised := make([]int, 0, len(scenarios))
	for i, s := range scenarios {
		if s.Exercise {
			exercised = append(exercised, i)
		}
	}
	if len(exercised) <= capK {
		return
	}

	sort.SliceStable(exercised, func(a, b int) bool {
		return scenarios[exercised[a]].TotalValue > scenarios[exercised[b]].TotalValue
	})
	for _, idx := range exercised[capK:] {
		scenarios[idx].Exercise = false
		scenarios[idx].Confidence = models.ExerciseNone
	}
}

func monthsFromDecision(cfg *config.Config, month models.Month) int {
	d := cfg.DecisionDate()
	decisionMonth := models.NewMonth(d.Year(), d.Month())
	n := decisionMonth.MonthsUntil(month)
	if n < 0 {
		return 0
	}
	return n
}

// blackScholesCall prices a European call. Degenerate inputs (zero time or
// volatility) collapse to discounted intrinsic value.
func blackScholesCall(s, k, t, r, sigma float64) float64 {
	if s <= 0 || k <= 0 {
		return math.Max(s-k, 0)
	}
	if t <= 0 || sigma <= 0 {
		v := s - k*math.Exp(-r*t)
		if v < 0 {
			return 0
		}
		return v
	}

	d1 := (math.Log(s/k) + (r+0.5*sigma*sigma)*t) / (sigma * math.Sqrt(t))
	d2 := d1 - sigma*math.Sqrt(t)
	return s*normCDF(d1) - k*math.Exp(-r*t)*normCDF(d2)
}

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}
