package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/REP-LNG-Traders/portfolio-sub000/internal/models"
)

func captureOutput(t *testing.T, jsonMode bool) (*Output, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.Flags().Bool("json", jsonMode, "")
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	return NewOutput(cmd), buf
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$1000000", formatUSD(1_000_000))
	assert.Equal(t, "-$1000000", formatUSD(-1_000_000))
	assert.Equal(t, "$0", formatUSD(0))
}

func TestOutputJSONMode(t *testing.T) {
	output, buf := captureOutput(t, true)
	require.True(t, output.IsJSON())

	require.NoError(t, output.JSON(map[string]int{"paths": 100}))

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 100, decoded["paths"])
}

func TestPrintStrategyText(t *testing.T) {
	output, buf := captureOutput(t, false)

	strategy := &models.StrategyResult{
		Months: []models.MonthResult{
			{
				Decision: models.CargoDecision{
					Month:          models.NewMonth(2026, time.January),
					Destination:    models.Singapore,
					Counterparty:   "ALPHA_LNG",
					PurchaseVolume: 4_000_000,
					Action:         models.ActionLift,
				},
				PnL: models.PnLResult{NetValue: 28_000_000},
			},
			{
				Decision: models.CargoDecision{Month: models.NewMonth(2026, time.February), Action: models.ActionCancel},
				PnL:      models.PnLResult{NetValue: -1_000_000},
			},
		},
		TotalValue:  27_000_000,
		DemandModel: "discount",
	}
	printStrategy(output, strategy)

	text := buf.String()
	assert.Contains(t, text, "2026-01")
	assert.Contains(t, text, "LIFT")
	assert.Contains(t, text, "SINGAPORE")
	assert.Contains(t, text, "CANCEL")
	assert.Contains(t, text, "$27000000")
}
