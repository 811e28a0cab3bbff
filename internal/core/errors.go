package core

import "errors"

// Sentinel errors for the domain core. Services and the pure calculation
// functions wrap these with fmt.Errorf("...: %w", ...) so callers can match
// with errors.Is while still getting a contextual message.
var (
	// ErrInvalidInput is returned for malformed quantities, discounts, or prices.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingSelection is returned when a product requires a size variant
	// and none was chosen.
	ErrMissingSelection = errors.New("variant selection required")

	// ErrNotFound is returned when a referenced record or line item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when a status change is not allowed
	// from the current state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidAmount is returned when a payment amount is not positive or
	// exceeds the outstanding balance.
	ErrInvalidAmount = errors.New("invalid payment amount")

	// ErrMissingBank is returned when a bank transfer payment omits the bank.
	ErrMissingBank = errors.New("bank required for transfer payments")

	// ErrInsufficientStock is returned when a stock adjustment would drive a
	// variant's stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// IsClientError reports whether err is caused by invalid caller input rather
// than a system failure. Adapters use this to choose an HTTP status.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrMissingSelection) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrMissingBank)
}
