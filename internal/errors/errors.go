// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrForecastMissing  = errors.New("forecast entry missing")
	ErrVolumeOutOfBand  = errors.New("purchase volume outside contract tolerance")
	ErrUnknownParty     = errors.New("unknown counterparty")
	ErrUnknownDest      = errors.New("unknown destination")
	ErrMatrixNotPSD     = errors.New("correlation matrix not positive semi-definite")
	ErrStrictViolation  = errors.New("constraint violation in strict mode")
	ErrNoCandidates     = errors.New("no feasible candidate for month")
	ErrEmptyStrategy    = errors.New("strategy has no decisions")
	ErrInputValidation  = errors.New("input validation failed")
)

// ValidationError represents a fatal input validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInputValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ForecastError identifies the exact missing forecast entry so a run can be
// diagnosed without re-running.
type ForecastError struct {
	Commodity string
	Month     string
}

func (e *ForecastError) Error() string {
	return fmt.Sprintf("forecast entry missing [%s %s]", e.Commodity, e.Month)
}

func (e *ForecastError) Unwrap() error {
	return ErrForecastMissing
}

// NewForecastError creates a new ForecastError.
func NewForecastError(commodity, month string) *ForecastError {
	return &ForecastError{Commodity: commodity, Month: month}
}

// ConstraintError represents a constraint violation promoted to fatal in
// strict mode.
type ConstraintError struct {
	Month  string
	Rule   string
	Detail string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint violation [%s] %s: %s", e.Rule, e.Month, e.Detail)
}

func (e *ConstraintError) Unwrap() error {
	return ErrStrictViolation
}

// NewConstraintError creates a new ConstraintError.
func NewConstraintError(month, rule, detail string) *ConstraintError {
	return &ConstraintError{Month: month, Rule: rule, Detail: detail}
}

// SimulationError represents a failure inside the Monte Carlo run. The whole
// run fails fast rather than dropping paths and biasing the distribution.
type SimulationError struct {
	Path  int
	Month string
	Err   error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulation error [path %d] %s: %v", e.Path, e.Month, e.Err)
}

func (e *SimulationError) Unwrap() error {
	return e.Err
}

// NewSimulationError creates a new SimulationError.
func NewSimulationError(path int, month string, err error) *SimulationError {
	return &SimulationError{Path: path, Month: month, Err: err}
}

// PricingError wraps a pricing failure with the decision that caused it.
type PricingError struct {
	Month        string
	Destination  string
	Counterparty string
	Err          error
}

func (e *PricingError) Error() string {
	return fmt.Sprintf("pricing error [%s %s/%s]: %v", e.Month, e.Destination, e.Counterparty, e.Err)
}

func (e *PricingError) Unwrap() error {
	return e.Err
}

// NewPricingError creates a new PricingError.
func NewPricingError(month, destination, counterparty string, err error) *PricingError {
	return &PricingError{Month: month, Destination: destination, Counterparty: counterparty, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
