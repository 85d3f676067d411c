// Package hedge evaluates the P&L effect of locking one commodity leg's
// price ahead of delivery.
package hedge

import (
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/errors"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/models"
)

// PriceSource supplies the forward price locked at the hedge decision date
// and the realized spot at delivery for one commodity leg. It is pluggable
// so the forecast proxy and true historical snapshots are interchangeable
// without touching the evaluator.
type PriceSource interface {
	// Forward returns the price locked at decisionMonth for delivery.
	Forward(c models.Commodity, decisionMonth, delivery models.Month) (float64, error)
	// Spot returns the realized price at delivery.
	Spot(c models.Commodity, delivery models.Month) (float64, error)
}

// ForecastProxySource stands in for historical forward-curve snapshots,
// which are unavailable: it serves the delivery-month forward from the
// forecast for both legs of the comparison.
type ForecastProxySource struct {
	Forecast *models.PriceForecast
}

// Forward implements PriceSource.
func (s ForecastProxySource) Forward(c models.Commodity, decisionMonth, delivery models.Month) (float64, error) {
	return s.lookup(c, delivery)
}

// Spot implements PriceSource.
func (s ForecastProxySource) Spot(c models.Commodity, delivery models.Month) (float64, error) {
	return s.lookup(c, delivery)
}

func (s ForecastProxySource) lookup(c models.Commodity, m models.Month) (float64, error) {
	p, ok := s.Forecast.Price(c, m)
	if !ok {
		return 0, errors.NewForecastError(string(c), m.String())
	}
	return p, nil
}

// TableSource serves fixed forward and spot tables; used by tests and by
// callers holding true historical snapshots.
type TableSource struct {
	Forwards map[models.Commodity]map[models.Month]float64
	Spots    map[models.Commodity]map[models.Month]float64
}

// Forward implements PriceSource.
func (s TableSource) Forward(c models.Commodity, decisionMonth, delivery models.Month) (float64, error) {
	if p, ok := s.Forwards[c][delivery]; ok {
		return p, nil
	}
	return 0, errors.NewForecastError(string(c), delivery.String())
}

// Spot implements PriceSource.
func (s TableSource) Spot(c models.Commodity, delivery models.Month) (float64, error) {
	if p, ok := s.Spots[c][delivery]; ok {
		return p, nil
	}
	return 0, errors.NewForecastError(string(c), delivery.String())
}

// Result is the hedge overlay for one cargo.
type Result struct {
	Commodity      models.Commodity
	DeliveryMonth  models.Month
	ForwardPrice   float64
	SpotPrice      float64
	HedgeVolume    float64
	Delta          float64 // (spot - forward) x volume
	UnhedgedValue  float64
	HedgedValue    float64
}

// Evaluator computes hedged P&L. Hedging moves variance, not expected value:
// with the proxy source the delta is identically zero.
type Evaluator struct {
	source PriceSource
}

// NewEvaluator creates an evaluator over the given price source.
func NewEvaluator(source PriceSource) *Evaluator {
	return &Evaluator{source: source}
}

// Evaluate returns the hedged P&L for one unhedged result:
// hedged = unhedged + (spot - forward) x hedge volume.
func (e *Evaluator) Evaluate(unhedged models.PnLResult, c models.Commodity, decisionMonth models.Month, hedgeVolume float64) (Result, error) {
	delivery := unhedged.Decision.Month

	forward, err := e.source.Forward(c, decisionMonth, delivery)
	if err != nil {
		return Result{}, err
	}
	spot, err := e.source.Spot(c, delivery)
	if err != nil {
		return Result{}, err
	}

	delta := (spot - forward) * hedgeVolume
	return Result{
		Commodity:     c,
		DeliveryMonth: delivery,
		ForwardPrice:  forward,
		SpotPrice:     spot,
		HedgeVolume:   hedgeVolume,
		Delta:         delta,
		UnhedgedValue: unhedged.NetValue,
		HedgedValue:   unhedged.NetValue + delta,
	}, nil
}

// EvaluateStrategy hedges the procurement leg of every lifted cargo in a
// strategy, sizing each hedge at the cargo's purchase volume.
func (e *Evaluator) EvaluateStrategy(strategy *models.StrategyResult, decisionMonth models.Month) ([]Result, error) {
	if len(strategy.Months) == 0 {
		return nil, errors.ErrEmptyStrategy
	}

	var out []Result
	for _, m := range strategy.Months {
		if m.Decision.Action != models.ActionLift {
			continue
		}
		r, err := e.Evaluate(m.PnL, models.HenryHub, decisionMonth, m.Decision.PurchaseVolume)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
