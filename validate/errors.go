package validate

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrAddressValidatorRequired is returned when no address validator
	// is configured.
	ErrAddressValidatorRequired = errors.New("address validator is required")

	// ErrInvalidAddress is returned when the address collaborator rejects
	// the destination.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrAddressRequired is returned for an empty destination address.
	ErrAddressRequired = fmt.Errorf("%w: address is required",
		ErrInvalidAddress)

	// ErrAmountRequired is returned when no amount, or a zero amount, is
	// set.
	ErrAmountRequired = errors.New("amount is required")

	// ErrNegativeAmount is returned for an amount below zero.
	ErrNegativeAmount = errors.New("amount must not be negative")

	// ErrInsufficientBalance is returned when the amount exceeds the
	// spendable balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrBelowRequiredBalance is returned when sending the amount would
	// leave less than the account's required minimum balance.
	ErrBelowRequiredBalance = errors.New("remaining balance below required minimum")

	// ErrBelowMinimum is returned when the amount is below the smallest
	// spendable amount.
	ErrBelowMinimum = errors.New("amount below minimum")

	// ErrAboveMaximum is returned when the amount exceeds the largest
	// allowed amount.
	ErrAboveMaximum = errors.New("amount above maximum")

	// ErrTooPrecise is returned when the amount has more fractional
	// digits than the coin supports.
	ErrTooPrecise = errors.New("amount exceeds coin precision")
)

// AmountError reports why an amount was rejected. Reason is one of the
// sentinel errors of this package.
type AmountError struct {
	Amount decimal.Decimal
	Reason error
}

// Error implements the error interface.
func (e *AmountError) Error() string {
	return fmt.Sprintf("invalid amount %v: %v", e.Amount, e.Reason)
}

// Unwrap returns the reason so callers can match it with errors.Is.
func (e *AmountError) Unwrap() error {
	return e.Reason
}

// NewAmountError wraps reason for amount.
func NewAmountError(amount decimal.Decimal, reason error) *AmountError {
	return &AmountError{
		Amount: amount,
		Reason: reason,
	}
}
