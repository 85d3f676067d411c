// Package pricing implements the cargo pricing engine.
//
// The engine is a pure function from (decision, forecast, configuration) to a
// full cost/revenue breakdown. Identical inputs yield bit-identical results,
// which is what lets the optimizer and the risk simulator share it freely
// across goroutines.
package pricing

import (
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/config"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/errors"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/models"
)

const daysPerYear = 365.0

// Engine prices one cargo decision against a forecast. All fields are
// read-only after construction; an Engine is safe for concurrent use.
type Engine struct {
	cfg      *config.Config
	purchase models.VolumeContract
	sales    models.VolumeContract
	demand   DemandModel
	curve    *models.DemandCurve
}

// NewEngine builds an engine from validated configuration.
func NewEngine(cfg *config.Config) (*Engine, error) {
	model, err := NewDemandModel(cfg.Demand.Model)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		purchase: cfg.PurchaseContract(),
		sales:    cfg.SalesContract(),
		demand:   model,
		curve:    cfg.DemandCurve(),
	}, nil
}

// DemandModelName returns the active demand model's name.
func (e *Engine) DemandModelName() string {
	return e.demand.Name()
}

// Price computes the full breakdown for one decision.
//
// Volumes outside the purchase tolerance band and missing forecast entries
// are fatal input errors, never clamped or defaulted. The sales-contract
// maximum, by contrast, is a hard cap inside the formula: delivered volume
// beyond it becomes stranded volume and is costed explicitly.
func (e *Engine) Price(decision models.CargoDecision, forecast *models.PriceForecast) (models.PnLResult, error) {
	if decision.Action == models.ActionCancel {
		return e.priceCancellation(decision), nil
	}

	if !decision.Destination.Valid() {
		return models.PnLResult{}, errors.Wrapf(errors.ErrUnknownDest, "pricing %s", decision.Destination)
	}
	destCfg, _ := e.cfg.Destinations.ByDestination(decision.Destination)

	party, ok := e.cfg.CounterpartyByName(decision.Counterparty)
	if !ok {
		return models.PnLResult{}, errors.Wrapf(errors.ErrUnknownParty, "pricing %q", decision.Counterparty)
	}

	if !e.purchase.Within(decision.PurchaseVolume) {
		return models.PnLResult{}, errors.NewValidationError(
			"purchase_volume", decision.PurchaseVolume,
			"outside purchase contract tolerance band")
	}

	// 1. Purchase cost: procurement index for the loading month plus the
	// fixed adder, on the full loaded volume.
	hh, ok := forecast.Price(models.HenryHub, decision.Month)
	if !ok {
		return models.PnLResult{}, errors.NewForecastError(string(models.HenryHub), decision.Month.String())
	}
	purchaseUnit := hh + e.cfg.Contracts.Purchase.FixedAdder
	purchaseCost := purchaseUnit * decision.PurchaseVolume

	// 2. Boil-off during transit.
	transitDays := float64(destCfg.TransitDays)
	lossFraction := e.cfg.Vessel.LossRatePerDay * transitDays
	delivered := decision.PurchaseVolume * (1 - lossFraction)

	// 3. Sales-contract cap. Excess is stranded, never silently discarded.
	salesVolume := delivered
	if max := e.sales.Max(); salesVolume > max {
		salesVolume = max
	}
	stranded := delivered - salesVolume
	strandedCost := stranded * purchaseUnit

	// 4. Destination sale price.
	unitPrice, err := e.salePrice(decision.Destination, destCfg, party, decision.Month, forecast)
	if err != nil {
		return models.PnLResult{}, err
	}
	saleValue := unitPrice * salesVolume
	revenue := saleValue - destCfg.BerthingFee

	// 5. Transport cost components.
	transport := e.transportCost(transitDays, purchaseCost, saleValue)

	// 6. Regulatory penalties.
	penalty := e.regulatoryPenalty(destCfg, decision.Month, salesVolume)

	// 7. Credit risk: expected loss on default plus time value of delayed
	// payment terms.
	creditCost := revenue * party.DefaultProb * (1 - party.RecoveryRate)
	if destCfg.PaymentDelayDays > 0 {
		creditCost += revenue * e.cfg.Credit.DiscountRate * float64(destCfg.PaymentDelayDays) / daysPerYear
	}
	if creditCost < 0 {
		creditCost = 0
	}

	// 8. Demand adjustment through the configured model.
	level := e.curve.Level(decision.Destination, decision.Month)
	adjustment := e.demand.Adjustment(level, unitPrice, salesVolume, revenue)

	result := models.PnLResult{
		Decision:          decision,
		DeliveredVolume:   delivered,
		SalesVolume:       salesVolume,
		StrandedVolume:    stranded,
		UnitSalePrice:     unitPrice,
		Revenue:           revenue,
		PurchaseCost:      purchaseCost,
		Transport:         transport,
		RegulatoryPenalty: penalty,
		CreditRiskCost:    creditCost,
		StrandedCost:      strandedCost,
		DemandAdjustment:  adjustment,
		DemandLevel:       level,
		DemandModel:       e.demand.Name(),
	}

	// 9. Net value.
	result.NetValue = result.Recompute()
	return result, nil
}

// priceCancellation prices the always-available cancel path: a fixed penalty
// on the contract base volume, no other terms.
func (e *Engine) priceCancellation(decision models.CargoDecision) models.PnLResult {
	fee := e.cfg.Contracts.Purchase.CancellationFee * e.purchase.BaseVolume
	decision.Action = models.ActionCancel
	result := models.PnLResult{
		Decision:        decision,
		CancellationFee: fee,
		DemandModel:     e.demand.Name(),
	}
	result.NetValue = result.Recompute()
	return result
}

// salePrice evaluates the destination's linear pricing formula plus the
// counterparty premium. Each destination references a different index; the
// switch is exhaustive over the closed destination set.
func (e *Engine) salePrice(dest models.Destination, destCfg config.DestinationConfig, party models.Counterparty, month models.Month, forecast *models.PriceForecast) (float64, error) {
	var index models.Commodity
	switch dest {
	case models.Singapore:
		index = models.JKM
	case models.Tokyo:
		index = models.Brent
	case models.Rotterdam:
		index = models.HenryHub
	default:
		return 0, errors.Wrapf(errors.ErrUnknownDest, "sale price %s", dest)
	}

	indexPrice, ok := forecast.Price(index, month)
	if !ok {
		return 0, errors.NewForecastError(string(index), month.String())
	}
	return destCfg.Slope*indexPrice + destCfg.Intercept + party.Premium, nil
}

// transportCost computes the independent freight sub-costs.
func (e *Engine) transportCost(transitDays, purchaseCost, saleValue float64) models.TransportCost {
	t := e.cfg.Transport

	charter := t.DayRate * transitDays
	financing := t.FinancingPct * saleValue
	if financing < t.FinancingFloor {
		financing = t.FinancingFloor
	}

	return models.TransportCost{
		Charter:       charter,
		Insurance:     t.Insurance,
		Brokerage:     charter * t.BrokeragePct,
		CostOfCapital: purchaseCost * t.CapitalRate * transitDays / daysPerYear,
		Emissions:     t.CO2TonsPerDay * t.CO2Price * transitDays,
		DelayRisk:     t.DelayProb * t.DelayDays * t.DayRate,
		FinancingFee:  financing,
	}
}

// regulatoryPenalty applies destination-specific penalties: the emissions
// mandate shortfall per unit sold, and the per-call port fee when the vessel
// flag is on the fee schedule and the month falls inside the fee window.
func (e *Engine) regulatoryPenalty(destCfg config.DestinationConfig, month models.Month, salesVolume float64) float64 {
	var penalty float64
	p := e.cfg.Penalties

	if destCfg.EmissionsMandate {
		penalty += p.EmissionsPerMMBtu * salesVolume
	}

	if destCfg.PortFeeApplies && e.portFeeInEffect(month) {
		for _, flag := range p.PortFeeFlags {
			if flag == e.cfg.Vessel.Flag {
				penalty += p.PortFee
				break
			}
		}
	}

	return penalty
}

func (e *Engine) portFeeInEffect(month models.Month) bool {
	p := e.cfg.Penalties
	if p.PortFeeStart != "" {
		start, err := models.ParseMonth(p.PortFeeStart)
		if err != nil || month.Before(start) {
			return false
		}
	}
	if p.PortFeeEnd != "" {
		end, err := models.ParseMonth(p.PortFeeEnd)
		if err != nil || end.Before(month) {
			return false
		}
	}
	return true
}

// SalePriceFor exposes the destination pricing formula for callers that
// need the achieved unit price without a full breakdown (option valuation).
func (e *Engine) SalePriceFor(dest models.Destination, counterparty string, month models.Month, forecast *models.PriceForecast) (float64, error) {
	if !dest.Valid() {
		return 0, errors.Wrapf(errors.ErrUnknownDest, "sale price %s", dest)
	}
	destCfg, _ := e.cfg.Destinations.ByDestination(dest)
	party, ok := e.cfg.CounterpartyByName(counterparty)
	if !ok {
		return 0, errors.Wrapf(errors.ErrUnknownParty, "sale price %q", counterparty)
	}
	return e.salePrice(dest, destCfg, party, month, forecast)
}

// SaleIndex returns the commodity index a destination's formula references.
func SaleIndex(dest models.Destination) models.Commodity {
	switch dest {
	case models.Singapore:
		return models.JKM
	case models.Tokyo:
		return models.Brent
	default:
		return models.HenryHub
	}
}

// DemandLevel returns the demand level for a destination and month.
func (e *Engine) DemandLevel(dest models.Destination, month models.Month) float64 {
	return e.curve.Level(dest, month)
}

// LossFraction returns the boil-off fraction for a destination's transit.
func (e *Engine) LossFraction(dest models.Destination) float64 {
	destCfg, _ := e.cfg.Destinations.ByDestination(dest)
	return e.cfg.Vessel.LossRatePerDay * float64(destCfg.TransitDays)
}

// PurchaseBand returns the purchase contract tolerance band.
func (e *Engine) PurchaseBand() models.VolumeContract {
	return e.purchase
}

// SalesMax returns the sales contract maximum.
func (e *Engine) SalesMax() float64 {
	return e.sales.Max()
}
