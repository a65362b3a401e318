package feerate

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Unit describes how a rate is shown to users. Decimals is the number of
// decimal places between the base unit and the presentation unit, for
// example 9 between wei and gwei.
type Unit struct {
	Name     string
	Decimals int32
}

var (
	// SatPerVByte is the usual bitcoin presentation unit.
	SatPerVByte = Unit{Name: "sat/vB", Decimals: 0}

	// Gwei is the usual EVM presentation unit for wei rates.
	Gwei = Unit{Name: "gwei", Decimals: 9}
)

// ToPresentation converts a base unit rate to the presentation unit.
func (u Unit) ToPresentation(r Rate) decimal.Decimal {
	return decimal.NewFromUint64(uint64(r)).Shift(-u.Decimals)
}

// FromPresentation converts a presentation value to a base unit rate.
func (u Unit) FromPresentation(d decimal.Decimal) (Rate, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %v", ErrNegativeRate, d)
	}

	base := d.Shift(u.Decimals)
	if !base.IsInteger() {
		return 0, fmt.Errorf("%w: %v %s", ErrTooPrecise, d, u.Name)
	}

	if base.GreaterThan(decimal.NewFromUint64(math.MaxUint64)) {
		return 0, fmt.Errorf("fee rate %v %s overflows", d, u.Name)
	}

	return Rate(base.BigInt().Uint64()), nil
}

// Format renders r in the presentation unit.
func (u Unit) Format(r Rate) string {
	return fmt.Sprintf("%s %s", u.ToPresentation(r).String(), u.Name)
}
