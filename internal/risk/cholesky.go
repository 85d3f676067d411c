package risk

import (
	"math"

	"github.com/REP-LNG-Traders/portfolio-sub000/internal/errors"
)

// symmetryTolerance is the largest acceptable asymmetry in a correlation
// matrix before it is rejected outright.
const symmetryTolerance = 1e-9

// Cholesky returns the lower-triangular factor L with L x L^T = m.
// It fails with ErrMatrixNotPSD when the matrix is not positive
// semi-definite.
func Cholesky(m [][]float64) ([][]float64, error) {
	n := len(m)
	for i := range m {
		if len(m[i]) != n {
			return nil, errors.Wrap(errors.ErrMatrixNotPSD, "matrix is not square")
		}
		for j := 0; j < i; j++ {
			if math.Abs(m[i][j]-m[j][i]) > symmetryTolerance {
				return nil, errors.Wrap(errors.ErrMatrixNotPSD, "matrix is not symmetric")
			}
		}
	}

	lower := make([][]float64, n)
	for i := range lower {
		lower[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := m[i][j]
			for k := 0; k < j; k++ {
				sum -= lower[i][k] * lower[j][k]
			}
			if i == j {
				if sum < 0 {
					return nil, errors.Wrapf(errors.ErrMatrixNotPSD,
						"negative pivot %g at row %d", sum, i)
				}
				lower[i][j] = math.Sqrt(sum)
			} else {
				if lower[j][j] == 0 {
					lower[i][j] = 0
					continue
				}
				lower[i][j] = sum / lower[j][j]
			}
		}
	}

	return lower, nil
}

// NearestPSD nudges a near-PSD matrix onto the PSD cone by diagonal loading:
// a small multiple of the identity is added and doubled until the Cholesky
// factorization succeeds. The loaded diagonal is renormalized so the result
// stays a correlation matrix. Returns the repaired matrix and the loading
// that was applied.
func NearestPSD(m [][]float64) ([][]float64, float64, error) {
	const (
		initialLoading = 1e-10
		maxLoading     = 0.5
	)

	n := len(m)
	for loading := initialLoading; loading <= maxLoading; loading *= 2 {
		repaired := make([][]float64, n)
		for i := range m {
			repaired[i] = make([]float64, n)
			for j := range m[i] {
				if i == j {
					repaired[i][j] = 1
				} else {
					// Shrink off-diagonals toward zero as loading grows.
					repaired[i][j] = m[i][j] / (1 + loading)
				}
			}
		}
		if _, err := Cholesky(repaired); err == nil {
			return repaired, loading, nil
		}
	}

	return nil, 0, errors.Wrap(errors.ErrMatrixNotPSD, "nearest-PSD repair failed")
}
