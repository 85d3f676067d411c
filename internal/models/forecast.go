package models

// PriceForecast holds one scalar forward price per commodity per delivery
// month. It is produced by an external forecasting collaborator, loaded once
// per run, and never mutated afterwards.
type PriceForecast struct {
	prices map[Commodity]map[Month]float64
}

// NewPriceForecast creates an empty forecast.
func NewPriceForecast() *PriceForecast {
	return &PriceForecast{prices: make(map[Commodity]map[Month]float64)}
}

// Set records the price for a commodity and month.
func (f *PriceForecast) Set(c Commodity, m Month, price float64) {
	if f.prices[c] == nil {
		f.prices[c] = make(map[Month]float64)
	}
	f.prices[c][m] = price
}

// Price returns the forecast price. The second return is false when the
// entry is missing; callers must treat that as a fatal input error, never
// substitute a default.
func (f *PriceForecast) Price(c Commodity, m Month) (float64, bool) {
	byMonth, ok := f.prices[c]
	if !ok {
		return 0, false
	}
	p, ok := byMonth[m]
	return p, ok
}

// Missing returns every (commodity, month) pair from the given sets that the
// forecast does not cover, in fixed iteration order.
func (f *PriceForecast) Missing(commodities []Commodity, months []Month) []ForecastGap {
	var gaps []ForecastGap
	for _, c := range commodities {
		for _, m := range months {
			if _, ok := f.Price(c, m); !ok {
				gaps = append(gaps, ForecastGap{Commodity: c, Month: m})
			}
		}
	}
	return gaps
}

// ForecastGap identifies a missing forecast entry.
type ForecastGap struct {
	Commodity Commodity
	Month     Month
}

// DemandCurve holds the per-month, per-destination demand level in [0,1].
type DemandCurve struct {
	levels map[Destination]map[Month]float64
}

// NewDemandCurve creates an empty demand curve.
func NewDemandCurve() *DemandCurve {
	return &DemandCurve{levels: make(map[Destination]map[Month]float64)}
}

// Set records the demand level for a destination and month.
func (d *DemandCurve) Set(dest Destination, m Month, level float64) {
	if d.levels[dest] == nil {
		d.levels[dest] = make(map[Month]float64)
	}
	d.levels[dest][m] = level
}

// Level returns the demand level, defaulting to 1.0 (full demand) when no
// entry exists for the destination and month.
func (d *DemandCurve) Level(dest Destination, m Month) float64 {
	if byMonth, ok := d.levels[dest]; ok {
		if level, ok := byMonth[m]; ok {
			return level
		}
	}
	return 1.0
}
