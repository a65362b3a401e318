package validate

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// AddressValidator checks a non-empty destination address and returns its
// normalized form. Failures must wrap ErrInvalidAddress.
type AddressValidator interface {
	ValidateAddress(address string) (string, error)
}

// AddressValidatorFunc adapts a function to AddressValidator.
type AddressValidatorFunc func(address string) (string, error)

// ValidateAddress calls f.
func (f AddressValidatorFunc) ValidateAddress(address string) (string, error) {
	return f(address)
}

// Config configures a Validator.
type Config struct {
	// Address performs chain specific address checks.
	Address AddressValidator

	// Amount checks amounts against account limits.
	// Default: Limits{}
	Amount AmountValidator
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Address == nil {
		return ErrAddressValidatorRequired
	}

	return nil
}

// Result is the outcome of validating a draft.
type Result struct {
	// Address is the normalized address. Set only if it passed.
	Address string

	// Amount is the normalized amount. Set only if it passed.
	Amount decimal.Decimal

	// Reasons lists every check that failed.
	Reasons []error
}

// Valid reports whether every check passed.
func (r Result) Valid() bool {
	return len(r.Reasons) == 0
}

// Err joins the reasons into one error, or returns nil if valid.
func (r Result) Err() error {
	return errors.Join(r.Reasons...)
}

// Validator runs the amount and address checks for a draft. It is pure and
// synchronous.
type Validator struct {
	cfg *Config
}

// New creates a new Validator.
func New(cfg *Config) (*Validator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Amount == nil {
		cfg.Amount = Limits{}
	}

	return &Validator{cfg: cfg}, nil
}

// Validate checks amount then address and collects every failure.
func (v *Validator) Validate(address string, amount decimal.NullDecimal,
	c Constraints) Result {

	var res Result

	normAmount, err := v.ValidAmount(amount, c)
	if err != nil {
		res.Reasons = append(res.Reasons, err)
	} else {
		res.Amount = normAmount
	}

	normAddress, err := v.ValidAddress(address)
	if err != nil {
		res.Reasons = append(res.Reasons, err)
	} else {
		res.Address = normAddress
	}

	return res
}

// ValidAmount checks a single amount.
func (v *Validator) ValidAmount(amount decimal.NullDecimal,
	c Constraints) (decimal.Decimal, error) {

	switch {
	case !amount.Valid || amount.Decimal.IsZero():
		return decimal.Zero, NewAmountError(
			amount.Decimal, ErrAmountRequired,
		)

	case amount.Decimal.IsNegative():
		return decimal.Zero, NewAmountError(
			amount.Decimal, ErrNegativeAmount,
		)
	}

	return v.cfg.Amount.ValidAmount(amount.Decimal, c)
}

// ValidAddress checks a single address. An empty address is rejected
// without consulting the address collaborator.
func (v *Validator) ValidAddress(address string) (string, error) {
	if address == "" {
		return "", ErrAddressRequired
	}

	norm, err := v.cfg.Address.ValidateAddress(address)
	if err != nil {
		if errors.Is(err, ErrInvalidAddress) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	return norm, nil
}
