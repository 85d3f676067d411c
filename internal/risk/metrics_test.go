package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}

	assert.Equal(t, 10.0, quantile(sorted, 0))
	assert.Equal(t, 50.0, quantile(sorted, 1))
	assert.Equal(t, 30.0, quantile(sorted, 0.5))
	// Linear interpolation between ranks.
	assert.InDelta(t, 15.0, quantile(sorted, 0.125), 1e-9)
	assert.InDelta(t, 45.0, quantile(sorted, 0.875), 1e-9)

	assert.Equal(t, 0.0, quantile(nil, 0.5))
	assert.Equal(t, 7.0, quantile([]float64{7}, 0.25))
}

func TestComputeMetricsBasics(t *testing.T) {
	totals := []float64{-10, -5, 0, 5, 10, 15, 20, 25, 30, 35}
	m := computeMetrics(totals, []float64{0.9})

	assert.Equal(t, 10, m.Paths)
	assert.InDelta(t, 12.5, m.Mean, 1e-9)
	assert.Equal(t, -10.0, m.Min)
	assert.Equal(t, 35.0, m.Max)
	assert.InDelta(t, 0.7, m.ProbPositive, 1e-9)

	// Sample standard deviation over n-1.
	assert.InDelta(t, 15.138, m.StdDev, 1e-3)
	assert.InDelta(t, m.Mean/m.StdDev, m.SharpeRatio, 1e-9)

	require.Contains(t, m.Percentiles, 50)
	assert.InDelta(t, 12.5, m.Percentiles[50], 1e-9)
	for _, p := range []int{5, 10, 25, 50, 75, 90, 95} {
		assert.Contains(t, m.Percentiles, p)
	}
}

func TestComputeMetricsVaR(t *testing.T) {
	// 100 evenly spread outcomes from -50 to 49.
	totals := make([]float64, 100)
	for i := range totals {
		totals[i] = float64(i - 50)
	}
	m := computeMetrics(totals, []float64{0.95})

	// The 5th percentile outcome is about -45.05; VaR is the loss magnitude.
	require.Contains(t, m.VaR, 0.95)
	assert.InDelta(t, 45.05, m.VaR[0.95], 1e-9)

	// CVaR averages the tail at or below the cutoff, so it is a worse loss.
	require.Contains(t, m.CVaR, 0.95)
	assert.Greater(t, m.CVaR[0.95], m.VaR[0.95])
}

func TestComputeMetricsDegenerate(t *testing.T) {
	m := computeMetrics(nil, []float64{0.95})
	assert.Equal(t, 0, m.Paths)
	assert.Zero(t, m.Mean)

	m = computeMetrics([]float64{42}, []float64{0.95})
	assert.Equal(t, 42.0, m.Mean)
	assert.Zero(t, m.StdDev)
	assert.Zero(t, m.SharpeRatio)
	assert.Equal(t, 1.0, m.ProbPositive)
}
