// Package cli provides the command-line interface for the cargo trading engine.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/REP-LNG-Traders/portfolio-sub000/internal/config"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/logging"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "lngtrader",
		Short: "LNG cargo decision and risk engine",
		Long: `lngtrader computes, optimizes, and risk-assesses cargo decisions for a
multi-month physical delivery contract with optional embedded cargoes.

It prices each candidate decision, searches the decision space per delivery
month, propagates correlated price shocks through the chosen strategy, and
values optional cargoes as real options.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/lng-trader)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newOptimizeCmd(app))
	rootCmd.AddCommand(newSimulateCmd(app))
	rootCmd.AddCommand(newOptionsCmd(app))
	rootCmd.AddCommand(newHedgeCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("lngtrader v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Horizon")
	output.Printf("  Start:          %s\n", cfg.Horizon.StartMonth)
	output.Printf("  Months:         %d\n", cfg.Horizon.Months)
	output.Printf("  Decision date:  %s\n", cfg.Horizon.DecisionDate)
	output.Println()

	output.Bold("Contracts")
	output.Printf("  Purchase base:  %.0f MMBtu (+/-%.0f%%)\n",
		cfg.Contracts.Purchase.BaseVolume, cfg.Contracts.Purchase.TolerancePct*100)
	output.Printf("  Sales base:     %.0f MMBtu (+/-%.0f%%)\n",
		cfg.Contracts.Sales.BaseVolume, cfg.Contracts.Sales.TolerancePct*100)
	output.Println()

	output.Bold("Counterparties")
	for _, cp := range cfg.Counterparties {
		output.Printf("  %-16s premium %.2f, default %.1f%%, recovery %.0f%%\n",
			cp.Name, cp.Premium, cp.DefaultProb*100, cp.RecoveryRate*100)
	}
	output.Println()

	output.Bold("Risk")
	output.Printf("  Paths:          %d\n", cfg.Risk.Paths)
	output.Printf("  Seed:           %d\n", cfg.Risk.Seed)
	output.Printf("  Demand model:   %s\n", cfg.Demand.Model)
	output.Printf("  Strict mode:    %v\n", cfg.Optimizer.Strict)

	return nil
}
