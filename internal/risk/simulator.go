// Package risk propagates correlated stochastic commodity prices through a
// fixed strategy to build a P&L distribution and summary risk metrics.
package risk

import (
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/REP-LNG-Traders/portfolio-sub000/internal/config"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/errors"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/logging"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/models"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/pricing"
)

// SimulationPath is one Monte Carlo draw: the simulated prices and the
// resulting total P&L. Paths are ephemeral; only the aggregate is retained.
type SimulationPath struct {
	Index  int
	Prices *models.PriceForecast
	Total  float64
}

// Simulator re-prices a finalized strategy under correlated GBM price paths.
type Simulator struct {
	engine *pricing.Engine
	cfg    *config.Config
	logger zerolog.Logger
}

// NewSimulator creates a simulator.
func NewSimulator(engine *pricing.Engine, cfg *config.Config, logger zerolog.Logger) *Simulator {
	return &Simulator{
		engine: engine,
		cfg:    cfg,
		logger: logging.WithComponent(logger, "risk"),
	}
}

// Run simulates cfg.Risk.Paths price paths and aggregates the distribution.
//
// Decisions stay exactly as chosen; only prices move. Each path owns an RNG
// seeded from (run seed, path index), so the distribution is bit-identical
// for any worker count or scheduling order. Any path failure aborts the
// whole run: silently dropped paths would bias the distribution.
func (s *Simulator) Run(strategy *models.StrategyResult, forecast *models.PriceForecast) (*Metrics, error) {
	if len(strategy.Months) == 0 {
		return nil, errors.ErrEmptyStrategy
	}
	start := time.Now()

	lower, psdLoading, err := s.factorCorrelation()
	if err != nil {
		return nil, err
	}

	decisions := strategy.Decisions()
	nPaths := s.cfg.Risk.Paths
	totals := make([]float64, nPaths)
	pathErrs := make([]error, nPaths)

	workers := s.cfg.Risk.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > nPaths {
		workers = nPaths
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range indices {
				total, err := s.runPath(p, decisions, forecast, lower)
				totals[p] = total
				pathErrs[p] = err
			}
		}()
	}
	for p := 0; p < nPaths; p++ {
		indices <- p
	}
	close(indices)
	wg.Wait()

	for p, err := range pathErrs {
		if err != nil {
			return nil, errors.NewSimulationError(p, "", err)
		}
	}

	metrics := computeMetrics(totals, s.cfg.Risk.Confidences)
	metrics.Seed = s.cfg.Risk.Seed
	metrics.PSDLoadingApplied = psdLoading
	metrics.DemandModel = strategy.DemandModel
	metrics.DeterministicValue = strategy.TotalValue

	logging.LogSimulation(s.logger, nPaths, s.cfg.Risk.Seed, metrics.Mean, metrics.StdDev, time.Since(start))
	return &metrics, nil
}

// factorCorrelation factors the configured correlation matrix, falling back
// to nearest-PSD repair only when explicitly enabled.
func (s *Simulator) factorCorrelation() ([][]float64, float64, error) {
	lower, err := Cholesky(s.cfg.Risk.Correlation)
	if err == nil {
		return lower, 0, nil
	}
	if !s.cfg.Risk.AllowNearestPSD {
		return nil, 0, err
	}

	repaired, loading, repairErr := NearestPSD(s.cfg.Risk.Correlation)
	if repairErr != nil {
		return nil, 0, repairErr
	}
	s.logger.Warn().
		Float64("loading", loading).
		Msg("Correlation matrix repaired via nearest-PSD fallback")

	lower, err = Cholesky(repaired)
	if err != nil {
		return nil, 0, err
	}
	return lower, loading, nil
}

// runPath simulates one price path and re-prices the fixed decisions.
func (s *Simulator) runPath(pathIndex int, decisions []models.CargoDecision, forecast *models.PriceForecast, lower [][]float64) (float64, error) {
	rng := rand.New(rand.NewSource(pathSeed(s.cfg.Risk.Seed, pathIndex)))
	simulated, err := s.simulatePrices(rng, forecast, lower)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, decision := range decisions {
		pnl, err := s.engine.Price(decision, simulated)
		if err != nil {
			return 0, errors.Wrapf(err, "re-pricing %s", decision.Month)
		}
		total += pnl.NetValue
	}
	return total, nil
}

// simulatePrices applies one GBM step per commodity per month, seeded from
// the deterministic forecast. The draw order (month-major, commodity-minor)
// is fixed so a path's prices depend only on its RNG stream.
func (s *Simulator) simulatePrices(rng *rand.Rand, forecast *models.PriceForecast, lower [][]float64) (*models.PriceForecast, error) {
	commodities := models.AllCommodities()
	n := len(commodities)
	decisionMonth := models.NewMonth(s.cfg.DecisionDate().Year(), s.cfg.DecisionDate().Month())

	simulated := models.NewPriceForecast()
	independent := make([]float64, n)
	correlated := make([]float64, n)

	for _, month := range s.monthsToSimulate() {
		for i := range independent {
			independent[i] = rng.NormFloat64()
		}
		for i := 0; i < n; i++ {
			var sum float64
			for j := 0; j <= i; j++ {
				sum += lower[i][j] * independent[j]
			}
			correlated[i] = sum
		}

		// Time fraction from the decision date to delivery, in years.
		monthsAhead := decisionMonth.MonthsUntil(month)
		if monthsAhead < 0 {
			monthsAhead = 0
		}
		t := float64(monthsAhead) / 12.0

		for i, com := range commodities {
			base, ok := forecast.Price(com, month)
			if !ok {
				return nil, errors.NewForecastError(string(com), month.String())
			}
			sigma, _ := s.cfg.Risk.Volatility[string(com)]
			drift := s.cfg.Risk.Drift

			price := base * math.Exp((drift-0.5*sigma*sigma)*t+sigma*math.Sqrt(t)*correlated[i])
			simulated.Set(com, month, price)
		}
	}

	return simulated, nil
}

func (s *Simulator) monthsToSimulate() []models.Month {
	return s.cfg.Months()
}

// pathSeed mixes the run seed with the path index (splitmix64 finalizer) so
// consecutive paths get well-separated RNG streams.
func pathSeed(seed int64, path int) int64 {
	z := uint64(seed) + uint64(path)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z = z ^ (z >> 31)
	return int64(z)
}
