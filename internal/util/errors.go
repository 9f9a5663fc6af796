// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidInput         = errors.New("invalid input provided")
	ErrPriceUnavailable     = errors.New("cryptocurrency price not available")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrNoHolding            = errors.New("no holding for cryptocurrency")
	ErrDuplicateEntry       = errors.New("duplicate entry")
	// Add more specific errors as needed
)

// IsError reports whether err matches the target sentinel, unwrapping as needed.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
