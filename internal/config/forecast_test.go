package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/REP-LNG-Traders/portfolio-sub000/internal/models"
)

func writeForecast(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "forecast.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadForecast(t *testing.T) {
	path := writeForecast(t, `
[prices.HENRY_HUB]
"2026-01" = 2.798
"2026-02" = 2.81

[prices.JKM]
"2026-01" = 11.27
"2026-02" = 11.32

[prices.BRENT]
"2026-01" = 67.96
"2026-02" = 68
`)

	forecast, err := LoadForecast(path)
	require.NoError(t, err)

	jan := models.NewMonth(2026, time.January)
	feb := models.NewMonth(2026, time.February)

	p, ok := forecast.Price(models.HenryHub, jan)
	require.True(t, ok)
	assert.Equal(t, 2.798, p)

	// Integer prices are accepted as floats.
	p, ok = forecast.Price(models.Brent, feb)
	require.True(t, ok)
	assert.Equal(t, 68.0, p)

	assert.Empty(t, forecast.Missing(models.AllCommodities(), []models.Month{jan, feb}))
}

func TestLoadForecastMissingCommodity(t *testing.T) {
	path := writeForecast(t, `
[prices.HENRY_HUB]
"2026-01" = 2.798

[prices.JKM]
"2026-01" = 11.27
`)
	_, err := LoadForecast(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BRENT")
}

func TestLoadForecastRejectsBadEntries(t *testing.T) {
	_, err := LoadForecast(writeForecast(t, `
[prices.HENRY_HUB]
"January" = 2.798

[prices.JKM]
"2026-01" = 11.27

[prices.BRENT]
"2026-01" = 67.96
`))
	assert.Error(t, err)

	_, err = LoadForecast(writeForecast(t, `
[prices.HENRY_HUB]
"2026-01" = -1.0

[prices.JKM]
"2026-01" = 11.27

[prices.BRENT]
"2026-01" = 67.96
`))
	assert.Error(t, err)
}

func TestLoadForecastMissingFile(t *testing.T) {
	_, err := LoadForecast(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
