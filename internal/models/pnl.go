package models

// TransportCost is the multi-component freight cost for one cargo. Each
// component is computed independently; Total sums them.
type TransportCost struct {
	Charter       float64 // day rate x transit days
	Insurance     float64 // fixed per voyage
	Brokerage     float64 // percentage of charter
	CostOfCapital float64 // purchase cost x annual rate x transit fraction
	Emissions     float64 // carbon charge proportional to transit days
	DelayRisk     float64 // expected-value charge for port delays
	FinancingFee  float64 // floor / percentage on sale value
}

// Total returns the sum of all transport cost components.
func (t TransportCost) Total() float64 {
	return t.Charter + t.Insurance + t.Brokerage + t.CostOfCapital +
		t.Emissions + t.DelayRisk + t.FinancingFee
}

// PnLResult is the immutable output of one pricing call. NetValue is always
// recomputable from the components; Recompute checks that identity.
type PnLResult struct {
	Decision CargoDecision

	// Volumes, MMBtu.
	DeliveredVolume float64 // purchase volume net of transit loss
	SalesVolume     float64 // min(delivered, sales contract max)
	StrandedVolume  float64 // delivered volume the sales contract cannot absorb

	// Revenue and unit economics.
	UnitSalePrice float64 // achieved USD/MMBtu before demand adjustment
	Revenue       float64

	// Costs.
	PurchaseCost      float64
	Transport         TransportCost
	RegulatoryPenalty float64
	CreditRiskCost    float64
	StrandedCost      float64
	CancellationFee   float64

	// DemandAdjustment is a signed value added to net (discounts are negative).
	DemandAdjustment float64
	DemandLevel      float64
	DemandModel      string

	NetValue float64
}

// Recompute returns net value rebuilt from the components. A correct result
// satisfies Recompute() == NetValue to within float tolerance.
func (r PnLResult) Recompute() float64 {
	if r.Decision.Action == ActionCancel {
		return -r.CancellationFee
	}
	return r.Revenue -
		r.PurchaseCost -
		r.Transport.Total() -
		r.RegulatoryPenalty -
		r.CreditRiskCost -
		r.StrandedCost +
		r.DemandAdjustment
}

// MonthResult pairs a finalized decision with its pricing breakdown and any
// constraint violations surfaced while choosing it.
type MonthResult struct {
	Decision   CargoDecision
	PnL        PnLResult
	Violations []Violation
}

// StrategyResult is the full horizon's decision sequence, the unit handed to
// the risk simulator and the export collaborators.
type StrategyResult struct {
	Months      []MonthResult
	TotalValue  float64
	DemandModel string
	StrictMode  bool
}

// Decisions returns the decision sequence in month order.
func (s *StrategyResult) Decisions() []CargoDecision {
	out := make([]CargoDecision, len(s.Months))
	for i, m := range s.Months {
		out[i] = m.Decision
	}
	return out
}

// Violations returns all violations across the horizon.
func (s *StrategyResult) Violations() []Violation {
	var out []Violation
	for _, m := range s.Months {
		out = append(out, m.Violations...)
	}
	return out
}
