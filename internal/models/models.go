// Package models provides domain models for the cargo trading engine.
package models

// Commodity identifies a price index used by the engine.
type Commodity string

const (
	HenryHub Commodity = "HENRY_HUB" // procurement index (USD/MMBtu)
	JKM      Commodity = "JKM"       // Asian spot sale index (USD/MMBtu)
	Brent    Commodity = "BRENT"     // oil index (USD/bbl)
)

// AllCommodities returns every commodity in fixed order.
func AllCommodities() []Commodity {
	return []Commodity{HenryHub, JKM, Brent}
}

// Destination identifies a delivery port. The set is closed: pricing
// formulas dispatch on it with an exhaustive switch.
type Destination string

const (
	Singapore Destination = "SINGAPORE"
	Tokyo     Destination = "TOKYO"
	Rotterdam Destination = "ROTTERDAM"
)

// AllDestinations returns every destination in fixed order. The optimizer
// iterates in this order, which makes tie-breaks deterministic.
func AllDestinations() []Destination {
	return []Destination{Singapore, Tokyo, Rotterdam}
}

// Valid reports whether d is a known destination.
func (d Destination) Valid() bool {
	switch d {
	case Singapore, Tokyo, Rotterdam:
		return true
	}
	return false
}

// Action represents the action taken for one delivery month.
type Action string

const (
	ActionLift   Action = "LIFT"
	ActionCancel Action = "CANCEL"
)

// CargoType distinguishes mandatory from optional (embedded-option) cargoes.
// The two carry different decision deadlines.
type CargoType string

const (
	CargoMandatory CargoType = "MANDATORY"
	CargoOptional  CargoType = "OPTIONAL"
)

// Counterparty is a sale destination's buyer, validated at load time.
type Counterparty struct {
	Name          string
	Premium       float64 // USD/MMBtu on top of the destination formula
	DefaultProb   float64 // in [0,1]
	RecoveryRate  float64 // in [0,1]
	MinNoticeDays int     // minimum advance notice before delivery
	MaxNoticeDays int     // soft maximum advance notice
}

// VolumeContract is one volume base with a symmetric tolerance band.
type VolumeContract struct {
	BaseVolume   float64 // MMBtu
	TolerancePct float64 // e.g. 0.10 for +/-10%
}

// Min returns the smallest volume the contract permits.
func (c VolumeContract) Min() float64 {
	return c.BaseVolume * (1 - c.TolerancePct)
}

// Max returns the largest volume the contract permits.
func (c VolumeContract) Max() float64 {
	return c.BaseVolume * (1 + c.TolerancePct)
}

// Within reports whether v lies inside the tolerance band.
func (c VolumeContract) Within(v float64) bool {
	return v >= c.Min() && v <= c.Max()
}

// CargoDecision is one candidate or chosen action for one delivery month.
type CargoDecision struct {
	Month          Month
	Type           CargoType
	Destination    Destination
	Counterparty   string
	PurchaseVolume float64 // MMBtu at the loading port
	Action         Action
}

// Violation is a non-fatal constraint breach attached to a result.
type Violation struct {
	Month  Month
	Rule   string
	Detail string
}
