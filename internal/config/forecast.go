package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/REP-LNG-Traders/portfolio-sub000/internal/models"
)

// LoadForecast reads a forecast file produced by the external forecasting
// collaborator. The file is TOML with one table per commodity:
//
//	[prices.HENRY_HUB]
//	"2026-01" = 2.798
//
// Viper lowercases keys, so commodity tables are matched case-insensitively.
func LoadForecast(path string) (*models.PriceForecast, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("loading forecast %s: %w", path, err)
	}

	forecast := models.NewPriceForecast()
	for _, com := range models.AllCommodities() {
		key := "prices." + strings.ToLower(string(com))
		table := v.GetStringMap(key)
		if len(table) == 0 {
			return nil, fmt.Errorf("forecast %s: no entries for commodity %s", path, com)
		}
		for monthStr, raw := range table {
			m, err := models.ParseMonth(monthStr)
			if err != nil {
				return nil, fmt.Errorf("forecast %s [%s]: %w", path, com, err)
			}
			price, err := toFloat(raw)
			if err != nil {
				return nil, fmt.Errorf("forecast %s [%s %s]: %w", path, com, monthStr, err)
			}
			if price <= 0 {
				return nil, fmt.Errorf("forecast %s [%s %s]: price must be positive, got %f", path, com, monthStr, price)
			}
			forecast.Set(com, m, price)
		}
	}

	return forecast, nil
}

func toFloat(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", raw)
	}
}
