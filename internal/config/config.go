// Package config provides configuration management for the cargo trading engine.
//
// The business bundle (contracts, counterparties, cost rates, penalty
// schedules, demand levels) is loaded once per run, validated, and injected
// into every component as an immutable value. Nothing reads configuration
// globals after load.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/REP-LNG-Traders/portfolio-sub000/internal/models"
)

// Config holds all engine configuration.
type Config struct {
	Horizon        HorizonConfig        `mapstructure:"horizon"`
	Contracts      ContractsConfig      `mapstructure:"contracts"`
	Vessel         VesselConfig         `mapstructure:"vessel"`
	Destinations   DestinationsConfig   `mapstructure:"destinations"`
	Transport      TransportConfig      `mapstructure:"transport"`
	Penalties      PenaltyConfig        `mapstructure:"penalties"`
	Credit         CreditConfig         `mapstructure:"credit"`
	Counterparties []CounterpartyConfig `mapstructure:"counterparties"`
	Deadlines      DeadlineConfig       `mapstructure:"deadlines"`
	Demand         DemandConfig         `mapstructure:"demand"`
	Optimizer      OptimizerConfig      `mapstructure:"optimizer"`
	Risk           RiskConfig           `mapstructure:"risk"`
	Options        OptionsConfig        `mapstructure:"options"`
}

// HorizonConfig defines the delivery horizon and the reference decision date.
type HorizonConfig struct {
	StartMonth   string `mapstructure:"start_month"` // "2026-01"
	Months       int    `mapstructure:"months"`
	DecisionDate string `mapstructure:"decision_date"` // "2025-10-15"
}

// ContractsConfig holds the two independent volume bases.
type ContractsConfig struct {
	Purchase PurchaseContractConfig `mapstructure:"purchase"`
	Sales    SalesContractConfig    `mapstructure:"sales"`
}

// PurchaseContractConfig is the FOB purchase contract.
type PurchaseContractConfig struct {
	BaseVolume      float64 `mapstructure:"base_volume"`
	TolerancePct    float64 `mapstructure:"tolerance_pct"`
	FixedAdder      float64 `mapstructure:"fixed_adder"`      // USD/MMBtu on the procurement index
	CancellationFee float64 `mapstructure:"cancellation_fee"` // USD/MMBtu on base volume
}

// SalesContractConfig is the DES sales contract.
type SalesContractConfig struct {
	BaseVolume   float64 `mapstructure:"base_volume"`
	TolerancePct float64 `mapstructure:"tolerance_pct"`
}

// VesselConfig holds vessel characteristics.
type VesselConfig struct {
	LossRatePerDay float64 `mapstructure:"loss_rate_per_day"` // boil-off, fraction/day
	Flag           string  `mapstructure:"flag"`
}

// DestinationsConfig carries one strongly-typed record per destination. The
// destination set is closed; adding a port means adding a field here and a
// case to the pricing switch.
type DestinationsConfig struct {
	Singapore DestinationConfig `mapstructure:"singapore"`
	Tokyo     DestinationConfig `mapstructure:"tokyo"`
	Rotterdam DestinationConfig `mapstructure:"rotterdam"`
}

// DestinationConfig is the per-port parameter record.
type DestinationConfig struct {
	TransitDays      int     `mapstructure:"transit_days"`
	BerthingFee      float64 `mapstructure:"berthing_fee"` // USD per call
	PaymentDelayDays int     `mapstructure:"payment_delay_days"`
	Slope            float64 `mapstructure:"slope"`     // linear formula on the port's index
	Intercept        float64 `mapstructure:"intercept"` // USD/MMBtu
	EmissionsMandate bool    `mapstructure:"emissions_mandate"`
	PortFeeApplies   bool    `mapstructure:"port_fee_applies"`
}

// ByDestination returns the record for dest.
func (d DestinationsConfig) ByDestination(dest models.Destination) (DestinationConfig, bool) {
	switch dest {
	case models.Singapore:
		return d.Singapore, true
	case models.Tokyo:
		return d.Tokyo, true
	case models.Rotterdam:
		return d.Rotterdam, true
	}
	return DestinationConfig{}, false
}

// TransportConfig holds freight cost rates.
type TransportConfig struct {
	DayRate        float64 `mapstructure:"day_rate"`         // USD/day charter
	Insurance      float64 `mapstructure:"insurance"`        // USD per voyage
	BrokeragePct   float64 `mapstructure:"brokerage_pct"`    // of charter cost
	CapitalRate    float64 `mapstructure:"capital_rate"`     // annual, on purchase cost in transit
	CO2TonsPerDay  float64 `mapstructure:"co2_tons_per_day"`
	CO2Price       float64 `mapstructure:"co2_price"`        // USD/ton
	DelayProb      float64 `mapstructure:"delay_prob"`
	DelayDays      float64 `mapstructure:"delay_days"`       // expected extra days when delayed
	FinancingFloor float64 `mapstructure:"financing_floor"`  // USD
	FinancingPct   float64 `mapstructure:"financing_pct"`    // of sale value
}

// PenaltyConfig holds regulatory penalty schedules.
type PenaltyConfig struct {
	EmissionsPerMMBtu float64  `mapstructure:"emissions_per_mmbtu"` // mandate shortfall, USD/MMBtu sold
	PortFee           float64  `mapstructure:"port_fee"`            // USD per call
	PortFeeFlags      []string `mapstructure:"port_fee_flags"`      // vessel flags subject to the fee
	PortFeeStart      string   `mapstructure:"port_fee_start"`      // "2026-04"
	PortFeeEnd        string   `mapstructure:"port_fee_end"`        // inclusive
}

// CreditConfig holds credit risk parameters.
type CreditConfig struct {
	DiscountRate float64 `mapstructure:"discount_rate"` // annual, for delayed payment terms
}

// CounterpartyConfig is one buyer record.
type CounterpartyConfig struct {
	Name          string  `mapstructure:"name"`
	Premium       float64 `mapstructure:"premium"`
	DefaultProb   float64 `mapstructure:"default_prob"`
	RecoveryRate  float64 `mapstructure:"recovery_rate"`
	MinNoticeDays int     `mapstructure:"min_notice_days"`
	MaxNoticeDays int     `mapstructure:"max_notice_days"`
}

// DeadlineConfig holds decision deadline offsets, in months before delivery.
type DeadlineConfig struct {
	MandatoryOffsetMonths int `mapstructure:"mandatory_offset_months"`
	OptionalOffsetMonths  int `mapstructure:"optional_offset_months"`
	ConfirmOffsetMonths   int `mapstructure:"confirm_offset_months"`
}

// DemandConfig selects the demand model and carries the demand curve.
// Levels are keyed destination then "YYYY-MM".
type DemandConfig struct {
	Model  string                        `mapstructure:"model"` // "discount" or "sale_probability"
	Levels map[string]map[string]float64 `mapstructure:"levels"`
}

// OptimizerConfig holds search parameters.
type OptimizerConfig struct {
	Strict       bool      `mapstructure:"strict"`
	Workers      int       `mapstructure:"workers"`       // 0 => NumCPU
	VolumeLevels []float64 `mapstructure:"volume_levels"` // fractions of purchase base
}

// RiskConfig holds Monte Carlo parameters.
type RiskConfig struct {
	Paths           int                `mapstructure:"paths"`
	Seed            int64              `mapstructure:"seed"`
	Workers         int                `mapstructure:"workers"`
	Drift           float64            `mapstructure:"drift"` // annual, 0 for driftless GBM
	Confidences     []float64          `mapstructure:"confidences"`
	AllowNearestPSD bool               `mapstructure:"allow_nearest_psd"`
	Volatility      map[string]float64 `mapstructure:"volatility"`  // annualized, by commodity
	Correlation     [][]float64        `mapstructure:"correlation"` // order: HENRY_HUB, JKM, BRENT
}

// OptionsConfig holds real-option valuation parameters and candidates.
type OptionsConfig struct {
	TollingFee        float64                 `mapstructure:"tolling_fee"`         // USD/MMBtu on the forward strike
	AncillaryUnitCost float64                 `mapstructure:"ancillary_unit_cost"` // USD/MMBtu freight/berthing proxy
	RiskFreeRate      float64                 `mapstructure:"risk_free_rate"`
	IntrinsicHigh     float64                 `mapstructure:"intrinsic_high"` // USD/MMBtu
	TotalLow          float64                 `mapstructure:"total_low"`      // USD/MMBtu
	DemandHigh        float64                 `mapstructure:"demand_high"`
	DemandLow         float64                 `mapstructure:"demand_low"`
	MaxExercised      int                     `mapstructure:"max_exercised"` // 0 => uncapped
	Candidates        []OptionCandidateConfig `mapstructure:"candidates"`
}

// OptionCandidateConfig describes one candidate optional cargo.
type OptionCandidateConfig struct {
	Month        string  `mapstructure:"month"`
	Destination  string  `mapstructure:"destination"`
	Counterparty string  `mapstructure:"counterparty"`
	Volume       float64 `mapstructure:"volume"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/lng-trader"
	}
	return filepath.Join(home, ".config", "lng-trader")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config.toml: %w", err)
	}

	cfg.normalize()
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deadlines.mandatory_offset_months", 2)
	v.SetDefault("deadlines.optional_offset_months", 3)
	v.SetDefault("deadlines.confirm_offset_months", 1)
	v.SetDefault("demand.model", "discount")
	v.SetDefault("optimizer.volume_levels", []float64{0.90, 1.00, 1.10})
	v.SetDefault("risk.paths", 10000)
	v.SetDefault("risk.seed", 42)
	v.SetDefault("risk.confidences", []float64{0.95, 0.99})
	v.SetDefault("options.risk_free_rate", 0.045)
}

// normalize undoes viper's key lowercasing on the maps that are keyed by
// commodity or destination names.
func (c *Config) normalize() {
	if c.Risk.Volatility != nil {
		vol := make(map[string]float64, len(c.Risk.Volatility))
		for k, v := range c.Risk.Volatility {
			vol[strings.ToUpper(k)] = v
		}
		c.Risk.Volatility = vol
	}
	if c.Demand.Levels != nil {
		levels := make(map[string]map[string]float64, len(c.Demand.Levels))
		for dest, byMonth := range c.Demand.Levels {
			levels[strings.ToUpper(dest)] = byMonth
		}
		c.Demand.Levels = levels
	}
	for i := range c.Options.Candidates {
		c.Options.Candidates[i].Destination = strings.ToUpper(c.Options.Candidates[i].Destination)
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LNGTRADER_PATHS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Risk.Paths = n
		}
	}
	if v := os.Getenv("LNGTRADER_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Risk.Seed = n
		}
	}
	if v := os.Getenv("LNGTRADER_STRICT"); v != "" {
		cfg.Optimizer.Strict = v == "1" || v == "true"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := models.ParseMonth(c.Horizon.StartMonth); err != nil {
		return fmt.Errorf("horizon.start_month: %w", err)
	}
	if c.Horizon.Months <= 0 {
		return fmt.Errorf("horizon.months must be positive")
	}
	if _, err := time.Parse("2006-01-02", c.Horizon.DecisionDate); err != nil {
		return fmt.Errorf("horizon.decision_date: %w", err)
	}

	if c.Contracts.Purchase.BaseVolume <= 0 {
		return fmt.Errorf("contracts.purchase.base_volume must be positive")
	}
	if c.Contracts.Sales.BaseVolume <= 0 {
		return fmt.Errorf("contracts.sales.base_volume must be positive")
	}
	for _, tol := range []float64{c.Contracts.Purchase.TolerancePct, c.Contracts.Sales.TolerancePct} {
		if tol < 0 || tol >= 1 {
			return fmt.Errorf("contract tolerance_pct must be in [0,1)")
		}
	}

	if c.Vessel.LossRatePerDay < 0 || c.Vessel.LossRatePerDay >= 0.01 {
		return fmt.Errorf("vessel.loss_rate_per_day out of range: %f", c.Vessel.LossRatePerDay)
	}

	for _, dest := range models.AllDestinations() {
		dc, _ := c.Destinations.ByDestination(dest)
		if dc.TransitDays <= 0 {
			return fmt.Errorf("destinations.%s.transit_days must be positive", dest)
		}
		if dc.Slope <= 0 {
			return fmt.Errorf("destinations.%s.slope must be positive", dest)
		}
	}

	if len(c.Counterparties) == 0 {
		return fmt.Errorf("at least one counterparty is required")
	}
	seen := make(map[string]bool)
	for _, cp := range c.Counterparties {
		if cp.Name == "" {
			return fmt.Errorf("counterparty name must not be empty")
		}
		if seen[cp.Name] {
			return fmt.Errorf("duplicate counterparty %q", cp.Name)
		}
		seen[cp.Name] = true
		if cp.DefaultProb < 0 || cp.DefaultProb > 1 {
			return fmt.Errorf("counterparty %s: default_prob must be in [0,1]", cp.Name)
		}
		if cp.RecoveryRate < 0 || cp.RecoveryRate > 1 {
			return fmt.Errorf("counterparty %s: recovery_rate must be in [0,1]", cp.Name)
		}
		if cp.MinNoticeDays < 0 || cp.MaxNoticeDays < cp.MinNoticeDays {
			return fmt.Errorf("counterparty %s: invalid notice window", cp.Name)
		}
	}

	switch c.Demand.Model {
	case "discount", "sale_probability":
	default:
		return fmt.Errorf("demand.model must be 'discount' or 'sale_probability', got %q", c.Demand.Model)
	}
	for dest, byMonth := range c.Demand.Levels {
		if !models.Destination(dest).Valid() {
			return fmt.Errorf("demand.levels: unknown destination %q", dest)
		}
		for month, level := range byMonth {
			if _, err := models.ParseMonth(month); err != nil {
				return fmt.Errorf("demand.levels.%s: %w", dest, err)
			}
			if level < 0 || level > 1 {
				return fmt.Errorf("demand.levels.%s.%s must be in [0,1]", dest, month)
			}
		}
	}

	for _, lvl := range c.Optimizer.VolumeLevels {
		if lvl <= 0 {
			return fmt.Errorf("optimizer.volume_levels must be positive")
		}
	}

	if c.Risk.Paths <= 0 {
		return fmt.Errorf("risk.paths must be positive")
	}
	for _, conf := range c.Risk.Confidences {
		if conf <= 0 || conf >= 1 {
			return fmt.Errorf("risk.confidences must be in (0,1)")
		}
	}
	n := len(models.AllCommodities())
	if len(c.Risk.Correlation) != n {
		return fmt.Errorf("risk.correlation must be %dx%d", n, n)
	}
	for i, row := range c.Risk.Correlation {
		if len(row) != n {
			return fmt.Errorf("risk.correlation row %d must have %d entries", i, n)
		}
	}
	for _, com := range models.AllCommodities() {
		vol, ok := c.Risk.Volatility[string(com)]
		if !ok {
			return fmt.Errorf("risk.volatility missing commodity %s", com)
		}
		if vol < 0 {
			return fmt.Errorf("risk.volatility.%s must be non-negative", com)
		}
	}

	if c.Penalties.PortFeeStart != "" {
		if _, err := models.ParseMonth(c.Penalties.PortFeeStart); err != nil {
			return fmt.Errorf("penalties.port_fee_start: %w", err)
		}
	}
	if c.Penalties.PortFeeEnd != "" {
		if _, err := models.ParseMonth(c.Penalties.PortFeeEnd); err != nil {
			return fmt.Errorf("penalties.port_fee_end: %w", err)
		}
	}

	for _, cand := range c.Options.Candidates {
		if _, err := models.ParseMonth(cand.Month); err != nil {
			return fmt.Errorf("options.candidates: %w", err)
		}
		if !models.Destination(cand.Destination).Valid() {
			return fmt.Errorf("options.candidates: unknown destination %q", cand.Destination)
		}
		if !seen[cand.Counterparty] {
			return fmt.Errorf("options.candidates: unknown counterparty %q", cand.Counterparty)
		}
		if cand.Volume <= 0 {
			return fmt.Errorf("options.candidates: volume must be positive")
		}
	}

	return nil
}

// StartMonth returns the parsed horizon start.
func (c *Config) StartMonth() models.Month {
	m, _ := models.ParseMonth(c.Horizon.StartMonth)
	return m
}

// Months returns the delivery months in order.
func (c *Config) Months() []models.Month {
	return models.MonthRange(c.StartMonth(), c.Horizon.Months)
}

// DecisionDate returns the parsed reference decision date.
func (c *Config) DecisionDate() time.Time {
	t, _ := time.Parse("2006-01-02", c.Horizon.DecisionDate)
	return t
}

// PurchaseContract returns the purchase volume contract.
func (c *Config) PurchaseContract() models.VolumeContract {
	return models.VolumeContract{
		BaseVolume:   c.Contracts.Purchase.BaseVolume,
		TolerancePct: c.Contracts.Purchase.TolerancePct,
	}
}

// SalesContract returns the sales volume contract.
func (c *Config) SalesContract() models.VolumeContract {
	return models.VolumeContract{
		BaseVolume:   c.Contracts.Sales.BaseVolume,
		TolerancePct: c.Contracts.Sales.TolerancePct,
	}
}

// CounterpartyList returns validated counterparty records in config order.
func (c *Config) CounterpartyList() []models.Counterparty {
	out := make([]models.Counterparty, 0, len(c.Counterparties))
	for _, cp := range c.Counterparties {
		out = append(out, models.Counterparty{
			Name:          cp.Name,
			Premium:       cp.Premium,
			DefaultProb:   cp.DefaultProb,
			RecoveryRate:  cp.RecoveryRate,
			MinNoticeDays: cp.MinNoticeDays,
			MaxNoticeDays: cp.MaxNoticeDays,
		})
	}
	return out
}

// CounterpartyByName returns the counterparty record for name.
func (c *Config) CounterpartyByName(name string) (models.Counterparty, bool) {
	for _, cp := range c.CounterpartyList() {
		if cp.Name == name {
			return cp, true
		}
	}
	return models.Counterparty{}, false
}

// DemandCurve converts the raw demand table into a typed curve.
func (c *Config) DemandCurve() *models.DemandCurve {
	curve := models.NewDemandCurve()
	for dest, byMonth := range c.Demand.Levels {
		for month, level := range byMonth {
			m, err := models.ParseMonth(month)
			if err != nil {
				continue // rejected by Validate already
			}
			curve.Set(models.Destination(dest), m, level)
		}
	}
	return curve
}
