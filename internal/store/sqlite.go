// Package store persists run artifacts.
//
// The store is an append-only journal of exported results: nothing written
// here is read back into a later run.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/REP-LNG-Traders/portfolio-sub000/internal/models"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/risk"
)

// ResultStore implements the results journal using SQLite.
type ResultStore struct {
	db *sql.DB
}

// NewResultStore opens (or creates) the journal at dbPath.
func NewResultStore(dbPath string) (*ResultStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &ResultStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables.
func (s *ResultStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME NOT NULL,
		demand_model TEXT NOT NULL,
		strict_mode INTEGER NOT NULL,
		total_value REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		month TEXT NOT NULL,
		action TEXT NOT NULL,
		destination TEXT,
		counterparty TEXT,
		purchase_volume REAL NOT NULL,
		delivered_volume REAL NOT NULL,
		sales_volume REAL NOT NULL,
		stranded_volume REAL NOT NULL,
		net_value REAL NOT NULL,
		violations INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS risk_metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		paths INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		mean REAL NOT NULL,
		stddev REAL NOT NULL,
		var_95 REAL,
		cvar_95 REAL,
		prob_positive REAL NOT NULL,
		sharpe_ratio REAL NOT NULL,
		psd_loading REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS option_scenarios (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		month TEXT NOT NULL,
		destination TEXT NOT NULL,
		counterparty TEXT NOT NULL,
		intrinsic_value REAL NOT NULL,
		time_value REAL NOT NULL,
		demand_level REAL NOT NULL,
		exercise INTEGER NOT NULL,
		confidence TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun journals one run's strategy plus optional risk metrics and option
// scenarios, and returns the run id.
func (s *ResultStore) SaveRun(strategy *models.StrategyResult, metrics *risk.Metrics, scenarios []models.OptionScenario) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	strict := 0
	if strategy.StrictMode {
		strict = 1
	}
	res, err := tx.Exec(
		`INSERT INTO runs (created_at, demand_model, strict_mode, total_value) VALUES (?, ?, ?, ?)`,
		time.Now().UTC(), strategy.DemandModel, strict, strategy.TotalValue,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, m := range strategy.Months {
		_, err := tx.Exec(
			`INSERT INTO decisions (run_id, month, action, destination, counterparty,
				purchase_volume, delivered_volume, sales_volume, stranded_volume, net_value, violations)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, m.Decision.Month.String(), string(m.Decision.Action),
			string(m.Decision.Destination), m.Decision.Counterparty,
			m.Decision.PurchaseVolume, m.PnL.DeliveredVolume, m.PnL.SalesVolume,
			m.PnL.StrandedVolume, m.PnL.NetValue, len(m.Violations),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting decision %s: %w", m.Decision.Month, err)
		}
	}

	if metrics != nil {
		_, err := tx.Exec(
			`INSERT INTO risk_metrics (run_id, paths, seed, mean, stddev, var_95, cvar_95,
				prob_positive, sharpe_ratio, psd_loading)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, metrics.Paths, metrics.Seed, metrics.Mean, metrics.StdDev,
			metrics.VaR[0.95], metrics.CVaR[0.95], metrics.ProbPositive,
			metrics.SharpeRatio, metrics.PSDLoadingApplied,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting risk metrics: %w", err)
		}
	}

	for _, sc := range scenarios {
		exercise := 0
		if sc.Exercise {
			exercise = 1
		}
		_, err := tx.Exec(
			`INSERT INTO option_scenarios (run_id, month, destination, counterparty,
				intrinsic_value, time_value, demand_level, exercise, confidence)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, sc.Month.String(), string(sc.Destination), sc.Counterparty,
			sc.IntrinsicValue, sc.TimeValue, sc.DemandLevel, exercise, string(sc.Confidence),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting option scenario %s: %w", sc.Month, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// Close closes the underlying database.
func (s *ResultStore) Close() error {
	return s.db.Close()
}
