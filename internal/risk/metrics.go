package risk

import (
	"math"
	"sort"
)

// Metrics summarizes the distribution of simulated total P&L.
type Metrics struct {
	Paths  int
	Seed   int64
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64

	// Percentiles holds the ladder keyed by percent (5, 10, 25, 50, 75, 90, 95).
	Percentiles map[int]float64

	// VaR and CVaR are loss amounts (positive numbers) keyed by confidence
	// level, e.g. 0.95.
	VaR  map[float64]float64
	CVaR map[float64]float64

	ProbPositive float64
	// SharpeRatio is mean over standard deviation, a risk-adjusted return
	// against a zero baseline.
	SharpeRatio float64

	// DeterministicValue is the strategy's P&L under the unshocked forecast.
	DeterministicValue float64
	// PSDLoadingApplied is nonzero when the nearest-PSD fallback repaired
	// the correlation matrix.
	PSDLoadingApplied float64
	DemandModel       string
}

// percentileLadder is the fixed set of reported percentiles.
var percentileLadder = []int{5, 10, 25, 50, 75, 90, 95}

// computeMetrics aggregates path totals. totals is consumed (sorted in place
// on a copy).
func computeMetrics(totals []float64, confidences []float64) Metrics {
	n := len(totals)
	m := Metrics{
		Paths:       n,
		Percentiles: make(map[int]float64, len(percentileLadder)),
		VaR:         make(map[float64]float64, len(confidences)),
		CVaR:        make(map[float64]float64, len(confidences)),
	}
	if n == 0 {
		return m
	}

	sorted := make([]float64, n)
	copy(sorted, totals)
	sort.Float64s(sorted)

	var sum float64
	var positive int
	for _, v := range totals {
		sum += v
		if v > 0 {
			positive++
		}
	}
	m.Mean = sum / float64(n)
	m.Min = sorted[0]
	m.Max = sorted[n-1]
	m.ProbPositive = float64(positive) / float64(n)

	var sqSum float64
	for _, v := range totals {
		d := v - m.Mean
		sqSum += d * d
	}
	if n > 1 {
		m.StdDev = math.Sqrt(sqSum / float64(n-1))
	}
	if m.StdDev > 0 {
		m.SharpeRatio = m.Mean / m.StdDev
	}

	for _, p := range percentileLadder {
		m.Percentiles[p] = quantile(sorted, float64(p)/100)
	}

	for _, conf := range confidences {
		cutoff := quantile(sorted, 1-conf)
		m.VaR[conf] = -cutoff

		// CVaR: expected loss beyond the VaR threshold.
		var tailSum float64
		var tailCount int
		for _, v := range sorted {
			if v > cutoff {
				break
			}
			tailSum += v
			tailCount++
		}
		if tailCount > 0 {
			m.CVaR[conf] = -tailSum / float64(tailCount)
		} else {
			m.CVaR[conf] = m.VaR[conf]
		}
	}

	return m
}

// quantile interpolates linearly on a sorted slice. q is in [0,1].
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
