// Package optimizer selects the expected-value-maximizing decision per
// delivery month.
//
// The decision space is produced by a candidate generator and consumed by a
// max-reduction, so evaluating candidates concurrently is a mechanical
// transformation: reduction order never affects the chosen decision because
// ties keep the lowest candidate index and candidate order is fixed.
package optimizer

import (
	"math"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/REP-LNG-Traders/portfolio-sub000/internal/config"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/constraints"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/errors"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/logging"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/models"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/pricing"
)

// volumeEpsilon collapses grid volumes that coincide with the analytic
// saturation volume.
const volumeEpsilon = 1e-6

// Optimizer enumerates the decision space and keeps the best candidate.
type Optimizer struct {
	engine    *pricing.Engine
	validator *constraints.Validator
	cfg       *config.Config
	logger    zerolog.Logger
}

// New creates an optimizer.
func New(engine *pricing.Engine, validator *constraints.Validator, cfg *config.Config, logger zerolog.Logger) *Optimizer {
	return &Optimizer{
		engine:    engine,
		validator: validator,
		cfg:       cfg,
		logger:    logging.WithComponent(logger, "optimizer"),
	}
}

// Optimize produces the full-horizon strategy. Each month is treated
// independently; the cancel option is always in the running, so every chosen
// decision's net value is at least the cancellation value.
func (o *Optimizer) Optimize(forecast *models.PriceForecast) (*models.StrategyResult, error) {
	months := o.cfg.Months()

	if gaps := forecast.Missing(models.AllCommodities(), months); len(gaps) > 0 {
		g := gaps[0]
		return nil, errors.NewForecastError(string(g.Commodity), g.Month.String())
	}

	result := &models.StrategyResult{
		DemandModel: o.engine.DemandModelName(),
		StrictMode:  o.cfg.Optimizer.Strict,
	}

	for _, month := range months {
		monthResult, err := o.optimizeMonth(month, forecast)
		if err != nil {
			return nil, err
		}
		result.Months = append(result.Months, monthResult)
		result.TotalValue += monthResult.PnL.NetValue

		logging.LogDecision(o.logger, month.String(), string(monthResult.Decision.Action),
			string(monthResult.Decision.Destination), monthResult.Decision.Counterparty,
			monthResult.PnL.NetValue)
	}

	return result, nil
}

func (o *Optimizer) optimizeMonth(month models.Month, forecast *models.PriceForecast) (models.MonthResult, error) {
	candidates := o.Candidates(month)

	type evaluated struct {
		pnl        models.PnLResult
		violations []models.Violation
		skipped    bool
		err        error
	}

	results := make([]evaluated, len(candidates))

	workers := o.cfg.Optimizer.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				cand := candidates[i]
				violations := o.validator.Check(cand, o.cfg.DecisionDate())
				if o.cfg.Optimizer.Strict && len(violations) > 0 {
					results[i] = evaluated{violations: violations, skipped: true}
					continue
				}
				pnl, err := o.engine.Price(cand, forecast)
				results[i] = evaluated{pnl: pnl, violations: violations, err: err}
			}
		}()
	}
	for i := range candidates {
		indices <- i
	}
	close(indices)
	wg.Wait()

	// Fail fast on any pricing error rather than optimizing over a partial
	// space.
	for i, r := range results {
		if r.err != nil {
			cand := candidates[i]
			return models.MonthResult{}, errors.NewPricingError(
				month.String(), string(cand.Destination), cand.Counterparty, r.err)
		}
	}

	// Max-reduction over candidate index order; strictly-greater keeps the
	// tie-break deterministic.
	best := -1
	bestValue := math.Inf(-1)
	for i, r := range results {
		if r.skipped {
			continue
		}
		if r.pnl.NetValue > bestValue {
			best = i
			bestValue = r.pnl.NetValue
		}
	}
	if best < 0 {
		return models.MonthResult{}, errors.Wrapf(errors.ErrNoCandidates, "month %s (strict mode)", month)
	}

	chosen := results[best]
	for _, v := range chosen.violations {
		logging.LogViolation(o.logger, v.Month.String(), v.Rule, v.Detail)
	}

	return models.MonthResult{
		Decision:   candidates[best],
		PnL:        chosen.pnl,
		Violations: chosen.violations,
	}, nil
}

// Candidates generates the month's decision space in fixed order:
// destinations x counterparties x volume levels, then the cancel option.
//
// Besides the configured grid levels, every (destination, volume) pairing
// includes the volume that exactly saturates the sales-contract maximum net
// of boil-off, salesMax / (1 - lossRate x transitDays), clamped to the
// purchase tolerance band. That analytic point is what drives stranded
// volume to zero whenever the unit margin is positive.
func (o *Optimizer) Candidates(month models.Month) []models.CargoDecision {
	purchase := o.engine.PurchaseBand()
	var out []models.CargoDecision

	for _, dest := range models.AllDestinations() {
		volumes := o.volumeLevels(dest, purchase)
		for _, party := range o.cfg.CounterpartyList() {
			for _, vol := range volumes {
				out = append(out, models.CargoDecision{
					Month:          month,
					Type:           models.CargoMandatory,
					Destination:    dest,
					Counterparty:   party.Name,
					PurchaseVolume: vol,
					Action:         models.ActionLift,
				})
			}
		}
	}

	out = append(out, models.CargoDecision{
		Month:  month,
		Type:   models.CargoMandatory,
		Action: models.ActionCancel,
	})

	return out
}

// volumeLevels returns the candidate purchase volumes for one destination:
// the configured grid fractions of the purchase base that fall inside the
// tolerance band, plus the clamped saturation volume.
func (o *Optimizer) volumeLevels(dest models.Destination, purchase models.VolumeContract) []float64 {
	var volumes []float64
	for _, frac := range o.cfg.Optimizer.VolumeLevels {
		v := purchase.BaseVolume * frac
		if purchase.Within(v) {
			volumes = append(volumes, v)
		}
	}

	if sat, ok := o.saturationVolume(dest, purchase); ok {
		duplicate := false
		for _, v := range volumes {
			if math.Abs(v-sat) < volumeEpsilon {
				duplicate = true
				break
			}
		}
		if !duplicate {
			volumes = append(volumes, sat)
		}
	}

	return volumes
}

// saturationVolume solves delivered == salesMax for the purchase volume and
// clamps it to the tolerance band.
func (o *Optimizer) saturationVolume(dest models.Destination, purchase models.VolumeContract) (float64, bool) {
	loss := o.engine.LossFraction(dest)
	if loss >= 1 {
		return 0, false
	}
	v := o.engine.SalesMax() / (1 - loss)
	if v < purchase.Min() {
		v = purchase.Min()
	}
	if v > purchase.Max() {
		v = purchase.Max()
	}
	return v, true
}
