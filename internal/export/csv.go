// Package export writes run artifacts for external consumers.
package export

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/REP-LNG-Traders/portfolio-sub000/internal/models"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/risk"
)

// StrategyRow is one delivery month in the strategy CSV.
type StrategyRow struct {
	Month           string  `csv:"month"`
	Action          string  `csv:"action"`
	Destination     string  `csv:"destination"`
	Counterparty    string  `csv:"counterparty"`
	PurchaseVolume  float64 `csv:"purchase_volume"`
	DeliveredVolume float64 `csv:"delivered_volume"`
	SalesVolume     float64 `csv:"sales_volume"`
	StrandedVolume  float64 `csv:"stranded_volume"`
	Revenue         float64 `csv:"revenue"`
	PurchaseCost    float64 `csv:"purchase_cost"`
	TransportCost   float64 `csv:"transport_cost"`
	Penalties       float64 `csv:"regulatory_penalties"`
	CreditRiskCost  float64 `csv:"credit_risk_cost"`
	StrandedCost    float64 `csv:"stranded_cost"`
	DemandAdj       float64 `csv:"demand_adjustment"`
	NetValue        float64 `csv:"net_value"`
	Violations      int     `csv:"violations"`
}

// WriteStrategyCSV writes the per-month breakdown to path.
func WriteStrategyCSV(path string, strategy *models.StrategyResult) error {
	rows := make([]StrategyRow, 0, len(strategy.Months))
	for _, m := range strategy.Months {
		rows = append(rows, StrategyRow{
			Month:           m.Decision.Month.String(),
			Action:          string(m.Decision.Action),
			Destination:     string(m.Decision.Destination),
			Counterparty:    m.Decision.Counterparty,
			PurchaseVolume:  m.Decision.PurchaseVolume,
			DeliveredVolume: m.PnL.DeliveredVolume,
			SalesVolume:     m.PnL.SalesVolume,
			StrandedVolume:  m.PnL.StrandedVolume,
			Revenue:         m.PnL.Revenue,
			PurchaseCost:    m.PnL.PurchaseCost,
			TransportCost:   m.PnL.Transport.Total(),
			Penalties:       m.PnL.RegulatoryPenalty,
			CreditRiskCost:  m.PnL.CreditRiskCost,
			StrandedCost:    m.PnL.StrandedCost,
			DemandAdj:       m.PnL.DemandAdjustment,
			NetValue:        m.PnL.NetValue,
			Violations:      len(m.Violations),
		})
	}
	return writeCSV(path, &rows)
}

// RiskRow is one metric in the risk CSV.
type RiskRow struct {
	Metric string  `csv:"metric"`
	Value  float64 `csv:"value"`
}

// WriteRiskCSV writes the risk metric ladder to path.
func WriteRiskCSV(path string, m *risk.Metrics) error {
	rows := []RiskRow{
		{Metric: "paths", Value: float64(m.Paths)},
		{Metric: "seed", Value: float64(m.Seed)},
		{Metric: "mean", Value: m.Mean},
		{Metric: "stddev", Value: m.StdDev},
		{Metric: "min", Value: m.Min},
		{Metric: "max", Value: m.Max},
		{Metric: "prob_positive", Value: m.ProbPositive},
		{Metric: "sharpe_ratio", Value: m.SharpeRatio},
		{Metric: "deterministic_value", Value: m.DeterministicValue},
	}
	for _, p := range []int{5, 10, 25, 50, 75, 90, 95} {
		rows = append(rows, RiskRow{Metric: fmt.Sprintf("p%02d", p), Value: m.Percentiles[p]})
	}
	for conf, v := range m.VaR {
		rows = append(rows, RiskRow{Metric: fmt.Sprintf("var_%.0f", conf*100), Value: v})
	}
	for conf, v := range m.CVaR {
		rows = append(rows, RiskRow{Metric: fmt.Sprintf("cvar_%.0f", conf*100), Value: v})
	}
	return writeCSV(path, &rows)
}

// OptionRow is one scenario in the options CSV.
type OptionRow struct {
	Month        string  `csv:"month"`
	Destination  string  `csv:"destination"`
	Counterparty string  `csv:"counterparty"`
	Volume       float64 `csv:"volume"`
	Forward      float64 `csv:"forward_price"`
	Strike       float64 `csv:"strike"`
	SalePrice    float64 `csv:"sale_price"`
	Intrinsic    float64 `csv:"intrinsic_value"`
	TimeValue    float64 `csv:"time_value"`
	TotalValue   float64 `csv:"total_value"`
	DemandLevel  float64 `csv:"demand_level"`
	Exercise     bool    `csv:"exercise"`
	Confidence   string  `csv:"confidence"`
}

// WriteOptionsCSV writes option scenarios to path.
func WriteOptionsCSV(path string, scenarios []models.OptionScenario) error {
	rows := make([]OptionRow, 0, len(scenarios))
	for _, s := range scenarios {
		rows = append(rows, OptionRow{
			Month:        s.Month.String(),
			Destination:  string(s.Destination),
			Counterparty: s.Counterparty,
			Volume:       s.Volume,
			Forward:      s.ForwardPrice,
			Strike:       s.Strike,
			SalePrice:    s.SalePrice,
			Intrinsic:    s.IntrinsicValue,
			TimeValue:    s.TimeValue,
			TotalValue:   s.TotalValue,
			DemandLevel:  s.DemandLevel,
			Exercise:     s.Exercise,
			Confidence:   string(s.Confidence),
		})
	}
	return writeCSV(path, &rows)
}

func writeCSV(path string, rows interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
