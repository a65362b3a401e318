package validate

import "github.com/shopspring/decimal"

// Constraints are the account limits an amount is checked against.
type Constraints struct {
	// Available is the spendable balance after fees.
	Available decimal.Decimal

	// MinimumRequired is the balance that must remain after the send.
	MinimumRequired decimal.Decimal

	// Minimum is the smallest amount that may be sent, if any.
	Minimum decimal.NullDecimal

	// Maximum is the largest amount that may be sent, if any.
	Maximum decimal.NullDecimal

	// Decimals is the coin precision. Zero disables the precision check.
	Decimals int32
}

// AmountValidator checks a positive amount against the account limits and
// returns its normalized form. Failures are *AmountError.
type AmountValidator interface {
	ValidAmount(amount decimal.Decimal, c Constraints) (decimal.Decimal,
		error)
}

// AmountValidatorFunc adapts a function to AmountValidator.
type AmountValidatorFunc func(decimal.Decimal, Constraints) (decimal.Decimal,
	error)

// ValidAmount calls f.
func (f AmountValidatorFunc) ValidAmount(amount decimal.Decimal,
	c Constraints) (decimal.Decimal, error) {

	return f(amount, c)
}

// Limits is the default AmountValidator. It enforces precision, balance,
// required balance, then the minimum and maximum, in that order.
type Limits struct{}

// ValidAmount implements AmountValidator.
func (Limits) ValidAmount(amount decimal.Decimal,
	c Constraints) (decimal.Decimal, error) {

	if c.Decimals > 0 && !amount.Equal(amount.Truncate(c.Decimals)) {
		return decimal.Zero, NewAmountError(amount, ErrTooPrecise)
	}

	if amount.GreaterThan(c.Available) {
		return decimal.Zero, NewAmountError(amount, ErrInsufficientBalance)
	}

	if c.MinimumRequired.IsPositive() &&
		c.Available.Sub(amount).LessThan(c.MinimumRequired) {

		return decimal.Zero, NewAmountError(
			amount, ErrBelowRequiredBalance,
		)
	}

	if c.Minimum.Valid && amount.LessThan(c.Minimum.Decimal) {
		return decimal.Zero, NewAmountError(amount, ErrBelowMinimum)
	}

	if c.Maximum.Valid && amount.GreaterThan(c.Maximum.Decimal) {
		return decimal.Zero, NewAmountError(amount, ErrAboveMaximum)
	}

	return amount, nil
}

var _ AmountValidator = Limits{}
