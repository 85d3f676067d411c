package pricing

import (
	"fmt"
)

// DemandModel turns a per-month, per-destination demand level into a signed
// adjustment on net value. The source material admits two incompatible
// readings of the demand input, so the interpretation is a named, selectable
// strategy rather than a hidden constant; results record which one produced
// them.
type DemandModel interface {
	Name() string
	// Adjustment returns the signed value added to net (discounts are
	// negative). level is in [0,1].
	Adjustment(level, unitPrice, salesVolume, revenue float64) float64
}

// NewDemandModel returns the model registered under name.
func NewDemandModel(name string) (DemandModel, error) {
	switch name {
	case "discount", "":
		return DiscountDemandModel{}, nil
	case "sale_probability":
		return SaleProbabilityDemandModel{}, nil
	default:
		return nil, fmt.Errorf("unknown demand model %q", name)
	}
}

// DiscountDemandModel reads the demand level as a price-discount driver: a
// soft market forces a per-unit discount to place the cargo. The step
// function is monotonic in the level.
type DiscountDemandModel struct{}

// Name implements DemandModel.
func (DiscountDemandModel) Name() string { return "discount" }

// Adjustment implements DemandModel.
func (DiscountDemandModel) Adjustment(level, unitPrice, salesVolume, revenue float64) float64 {
	return -unitDiscount(level) * salesVolume
}

// unitDiscount is the USD/MMBtu concession at a given demand level.
func unitDiscount(level float64) float64 {
	switch {
	case level >= 0.8:
		return 0
	case level >= 0.5:
		return 0.25
	case level >= 0.3:
		return 0.75
	default:
		return 1.50
	}
}

// SaleProbabilityDemandModel reads the demand level as the probability the
// cargo clears at the modeled price; the shortfall haircuts expected revenue.
type SaleProbabilityDemandModel struct{}

// Name implements DemandModel.
func (SaleProbabilityDemandModel) Name() string { return "sale_probability" }

// Adjustment implements DemandModel.
func (SaleProbabilityDemandModel) Adjustment(level, unitPrice, salesVolume, revenue float64) float64 {
	if level > 1 {
		level = 1
	}
	if level < 0 {
		level = 0
	}
	return -(1 - level) * revenue
}
