package models

// ExerciseConfidence grades the tiered exercise rule's outcome.
type ExerciseConfidence string

const (
	ExerciseHigh   ExerciseConfidence = "HIGH"   // intrinsic and demand both clear the high bar
	ExerciseMedium ExerciseConfidence = "MEDIUM" // total value and demand clear the lower bar
	ExerciseNone   ExerciseConfidence = "NONE"
)

// OptionScenario is the valuation of one candidate optional cargo.
type OptionScenario struct {
	Month        Month
	Destination  Destination
	Counterparty string
	Volume       float64

	ForwardPrice float64 // procurement index forward at the decision deadline
	Strike       float64 // forward plus the fixed tolling fee
	SalePrice    float64 // expected achieved sale price per unit

	IntrinsicValue float64 // per cargo, never negative
	TimeValue      float64 // Black-Scholes time value, per cargo
	DemandLevel    float64

	Exercise   bool
	Confidence ExerciseConfidence

	// TotalValue ranks scenarios when a portfolio cap applies.
	TotalValue float64
}
