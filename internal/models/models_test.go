package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2026-01")
	require.NoError(t, err)
	assert.Equal(t, 2026, m.Year)
	assert.Equal(t, time.January, m.Mon)
	assert.Equal(t, "2026-01", m.String())

	_, err = ParseMonth("2026-13")
	assert.Error(t, err)
	_, err = ParseMonth("Jan 2026")
	assert.Error(t, err)
}

func TestMonthArithmetic(t *testing.T) {
	m := NewMonth(2026, time.November)

	assert.Equal(t, NewMonth(2027, time.February), m.AddMonths(3))
	assert.Equal(t, NewMonth(2026, time.August), m.AddMonths(-3))
	assert.Equal(t, 3, m.MonthsUntil(NewMonth(2027, time.February)))
	assert.Equal(t, -3, m.MonthsUntil(NewMonth(2026, time.August)))
	assert.True(t, m.Before(NewMonth(2026, time.December)))
	assert.False(t, m.Before(m))
	assert.False(t, NewMonth(2026, time.December).Before(m))
}

func TestMonthRange(t *testing.T) {
	months := MonthRange(NewMonth(2026, time.November), 4)
	require.Len(t, months, 4)
	assert.Equal(t, "2026-11", months[0].String())
	assert.Equal(t, "2026-12", months[1].String())
	assert.Equal(t, "2027-01", months[2].String())
	assert.Equal(t, "2027-02", months[3].String())
}

func TestVolumeContractBand(t *testing.T) {
	c := VolumeContract{BaseVolume: 4_000_000, TolerancePct: 0.10}

	assert.InDelta(t, 3_600_000, c.Min(), 1e-6)
	assert.InDelta(t, 4_400_000, c.Max(), 1e-6)
	assert.True(t, c.Within(4_000_000))
	assert.True(t, c.Within(3_600_000))
	assert.True(t, c.Within(4_400_000))
	assert.False(t, c.Within(3_599_999))
	assert.False(t, c.Within(4_400_001))
}

func TestPriceForecastMissing(t *testing.T) {
	f := NewPriceForecast()
	jan := NewMonth(2026, time.January)
	feb := NewMonth(2026, time.February)

	f.Set(HenryHub, jan, 2.798)
	f.Set(JKM, jan, 11.27)
	f.Set(Brent, jan, 67.96)
	f.Set(HenryHub, feb, 2.81)

	p, ok := f.Price(HenryHub, jan)
	require.True(t, ok)
	assert.Equal(t, 2.798, p)

	_, ok = f.Price(JKM, feb)
	assert.False(t, ok)

	gaps := f.Missing(AllCommodities(), []Month{jan, feb})
	require.Len(t, gaps, 2)
	assert.Equal(t, JKM, gaps[0].Commodity)
	assert.Equal(t, feb, gaps[0].Month)
	assert.Equal(t, Brent, gaps[1].Commodity)
}

func TestDemandCurveDefaultsToFull(t *testing.T) {
	d := NewDemandCurve()
	jan := NewMonth(2026, time.January)

	assert.Equal(t, 1.0, d.Level(Singapore, jan))

	d.Set(Singapore, jan, 0.6)
	assert.Equal(t, 0.6, d.Level(Singapore, jan))
	assert.Equal(t, 1.0, d.Level(Tokyo, jan))
}

func TestTransportCostTotal(t *testing.T) {
	tc := TransportCost{
		Charter:       2_400_000,
		Insurance:     40_000,
		Brokerage:     30_000,
		CostOfCapital: 75_000,
		Emissions:     120_000,
		DelayRisk:     25_000,
		FinancingFee:  100_000,
	}
	assert.InDelta(t, 2_790_000, tc.Total(), 1e-6)
}

func TestRecomputeLift(t *testing.T) {
	r := PnLResult{
		Decision:          CargoDecision{Action: ActionLift},
		Revenue:           40_000_000,
		PurchaseCost:      12_000_000,
		Transport:         TransportCost{Charter: 2_400_000, Insurance: 40_000},
		RegulatoryPenalty: 50_000,
		CreditRiskCost:    200_000,
		StrandedCost:      10_000,
		DemandAdjustment:  -925_000,
	}
	want := 40_000_000.0 - 12_000_000 - 2_440_000 - 50_000 - 200_000 - 10_000 - 925_000
	assert.InDelta(t, want, r.Recompute(), 1e-6)
}

func TestRecomputeCancel(t *testing.T) {
	r := PnLResult{
		Decision:        CargoDecision{Action: ActionCancel},
		Revenue:         99, // ignored on the cancel path
		CancellationFee: 1_000_000,
	}
	assert.Equal(t, -1_000_000.0, r.Recompute())
}

func TestStrategyResultAccessors(t *testing.T) {
	jan := NewMonth(2026, time.January)
	feb := NewMonth(2026, time.February)
	s := &StrategyResult{
		Months: []MonthResult{
			{
				Decision:   CargoDecision{Month: jan, Action: ActionLift},
				Violations: []Violation{{Month: jan, Rule: "NOTICE_MIN"}},
			},
			{
				Decision: CargoDecision{Month: feb, Action: ActionCancel},
			},
		},
	}

	decisions := s.Decisions()
	require.Len(t, decisions, 2)
	assert.Equal(t, jan, decisions[0].Month)
	assert.Equal(t, ActionCancel, decisions[1].Action)

	require.Len(t, s.Violations(), 1)
	assert.Equal(t, "NOTICE_MIN", s.Violations()[0].Rule)
}

func TestDestinationValid(t *testing.T) {
	for _, d := range AllDestinations() {
		assert.True(t, d.Valid())
	}
	assert.False(t, Destination("OSLO").Valid())
	assert.False(t, Destination("").Valid())
}
