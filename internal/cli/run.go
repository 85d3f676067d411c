package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/REP-LNG-Traders/portfolio-sub000/internal/config"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/constraints"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/export"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/hedge"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/models"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/optimizer"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/options"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/pricing"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/risk"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/store"
)

// buildStrategy wires the engine, validator, and optimizer, then runs the
// deterministic optimization.
func buildStrategy(app *App, forecastPath string) (*models.StrategyResult, *pricing.Engine, *models.PriceForecast, error) {
	forecast, err := config.LoadForecast(forecastPath)
	if err != nil {
		return nil, nil, nil, err
	}

	engine, err := pricing.NewEngine(app.Config)
	if err != nil {
		return nil, nil, nil, err
	}

	validator := constraints.NewValidator(app.Config)
	opt := optimizer.New(engine, validator, app.Config, app.Logger)

	strategy, err := opt.Optimize(forecast)
	if err != nil {
		return nil, nil, nil, err
	}
	return strategy, engine, forecast, nil
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("forecast", "forecast.toml", "forecast file path")
	cmd.Flags().String("out", "", "write CSV output to this path")
	cmd.Flags().String("db", "", "journal results to this SQLite file")
}

func newOptimizeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Select the value-maximizing decision per delivery month",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			forecastPath, _ := cmd.Flags().GetString("forecast")

			strategy, _, _, err := buildStrategy(app, forecastPath)
			if err != nil {
				return err
			}

			if out, _ := cmd.Flags().GetString("out"); out != "" {
				if err := export.WriteStrategyCSV(out, strategy); err != nil {
					return err
				}
				output.Dim("Strategy written to %s", out)
			}
			if db, _ := cmd.Flags().GetString("db"); db != "" {
				if err := journalRun(db, strategy, nil, nil); err != nil {
					return err
				}
			}

			if output.IsJSON() {
				return output.JSON(strategy)
			}
			printStrategy(output, strategy)
			return nil
		},
	}
	addRunFlags(cmd)
	return cmd
}

func newSimulateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Optimize, then run the Monte Carlo risk simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			forecastPath, _ := cmd.Flags().GetString("forecast")

			strategy, engine, forecast, err := buildStrategy(app, forecastPath)
			if err != nil {
				return err
			}

			sim := risk.NewSimulator(engine, app.Config, app.Logger)
			metrics, err := sim.Run(strategy, forecast)
			if err != nil {
				return err
			}

			if out, _ := cmd.Flags().GetString("out"); out != "" {
				if err := export.WriteRiskCSV(out, metrics); err != nil {
					return err
				}
				output.Dim("Risk metrics written to %s", out)
			}
			if db, _ := cmd.Flags().GetString("db"); db != "" {
				if err := journalRun(db, strategy, metrics, nil); err != nil {
					return err
				}
			}

			if output.IsJSON() {
				return output.JSON(metrics)
			}
			printStrategy(output, strategy)
			printMetrics(output, metrics)
			return nil
		},
	}
	addRunFlags(cmd)
	return cmd
}

func newOptionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Value optional cargoes and apply the exercise rule",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			forecastPath, _ := cmd.Flags().GetString("forecast")

			forecast, err := config.LoadForecast(forecastPath)
			if err != nil {
				return err
			}
			engine, err := pricing.NewEngine(app.Config)
			if err != nil {
				return err
			}

			valuer := options.NewValuer(engine, app.Config, app.Logger)
			scenarios, err := valuer.Value(forecast)
			if err != nil {
				return err
			}

			if out, _ := cmd.Flags().GetString("out"); out != "" {
				if err := export.WriteOptionsCSV(out, scenarios); err != nil {
					return err
				}
				output.Dim("Option scenarios written to %s", out)
			}

			if output.IsJSON() {
				return output.JSON(scenarios)
			}
			printOptions(output, scenarios)
			return nil
		},
	}
	addRunFlags(cmd)
	return cmd
}

func newHedgeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hedge",
		Short: "Report the procurement-leg hedge overlay for the strategy",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			forecastPath, _ := cmd.Flags().GetString("forecast")

			strategy, _, forecast, err := buildStrategy(app, forecastPath)
			if err != nil {
				return err
			}

			d := app.Config.DecisionDate()
			decisionMonth := models.NewMonth(d.Year(), d.Month())
			evaluator := hedge.NewEvaluator(hedge.ForecastProxySource{Forecast: forecast})

			results, err := evaluator.EvaluateStrategy(strategy, decisionMonth)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(results)
			}
			output.Bold("Hedge overlay (%s leg)", models.HenryHub)
			for _, r := range results {
				output.Printf("  %s  fwd %.3f  spot %.3f  vol %.0f  delta %+.0f  hedged %.0f\n",
					r.DeliveryMonth, r.ForwardPrice, r.SpotPrice, r.HedgeVolume, r.Delta, r.HedgedValue)
			}
			return nil
		},
	}
	addRunFlags(cmd)
	return cmd
}

func journalRun(dbPath string, strategy *models.StrategyResult, metrics *risk.Metrics, scenarios []models.OptionScenario) error {
	st, err := store.NewResultStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()
	_, err = st.SaveRun(strategy, metrics, scenarios)
	return err
}

func printStrategy(output *Output, strategy *models.StrategyResult) {
	output.Bold("Strategy (%s demand model)", strategy.DemandModel)
	for _, m := range strategy.Months {
		if m.Decision.Action == models.ActionCancel {
			output.Printf("  %s  CANCEL                                 net %+.0f\n",
				m.Decision.Month, m.PnL.NetValue)
			continue
		}
		output.Printf("  %s  LIFT %-10s %-14s %.0f MMBtu  net %+.0f",
			m.Decision.Month, m.Decision.Destination, m.Decision.Counterparty,
			m.Decision.PurchaseVolume, m.PnL.NetValue)
		if m.PnL.StrandedVolume > 0 {
			output.Printf("  (stranded %.0f)", m.PnL.StrandedVolume)
		}
		output.Println()
		for _, v := range m.Violations {
			output.Warn("    ! %s: %s", v.Rule, v.Detail)
		}
	}
	output.Bold("Total expected value: %s", formatUSD(strategy.TotalValue))
}

func printMetrics(output *Output, m *risk.Metrics) {
	output.Println()
	output.Bold("Risk (N=%d, seed=%d)", m.Paths, m.Seed)
	output.Printf("  Mean:          %s\n", formatUSD(m.Mean))
	output.Printf("  StdDev:        %s\n", formatUSD(m.StdDev))
	output.Printf("  P5 / P50 / P95: %s / %s / %s\n",
		formatUSD(m.Percentiles[5]), formatUSD(m.Percentiles[50]), formatUSD(m.Percentiles[95]))
	for _, conf := range []float64{0.95, 0.99} {
		if v, ok := m.VaR[conf]; ok {
			output.Printf("  VaR %.0f%%:       %s (CVaR %s)\n",
				conf*100, formatUSD(v), formatUSD(m.CVaR[conf]))
		}
	}
	output.Printf("  P(positive):   %.1f%%\n", m.ProbPositive*100)
	output.Printf("  Sharpe:        %.2f\n", m.SharpeRatio)
	if m.PSDLoadingApplied > 0 {
		output.Warn("  Correlation matrix repaired (loading %g)", m.PSDLoadingApplied)
	}
}

func printOptions(output *Output, scenarios []models.OptionScenario) {
	output.Bold("Option scenarios")
	for _, s := range scenarios {
		marker := " "
		if s.Exercise {
			marker = "*"
		}
		output.Printf("  %s %s  %-10s %-14s intrinsic %s  time %s  demand %.2f  %s\n",
			marker, s.Month, s.Destination, s.Counterparty,
			formatUSD(s.IntrinsicValue), formatUSD(s.TimeValue), s.DemandLevel, s.Confidence)
	}
}

func formatUSD(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.0f", -v)
	}
	return fmt.Sprintf("$%.0f", v)
}
