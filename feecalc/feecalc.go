package feecalc

import (
	"errors"
	"math/big"

	"github.com/lightninglabs/sendsync/estimate"
	"github.com/lightninglabs/sendsync/feerate"
	"github.com/shopspring/decimal"
)

// ErrInsufficientFeeBalance is returned when the fee is paid in a separate
// coin and that balance cannot cover it.
var ErrInsufficientFeeBalance = errors.New("insufficient balance to cover fee")

// Balances are the account figures a send is computed against. All amounts
// are in presentation units of their coin.
type Balances struct {
	// Balance is the spendable balance of the coin being sent.
	Balance decimal.Decimal

	// FeeBalance is the balance of the fee coin when it differs from the
	// coin being sent, as with token transfers. Unset when the fee is
	// paid from Balance.
	FeeBalance decimal.NullDecimal

	// MinimumRequired is the balance that must remain after the send.
	MinimumRequired decimal.Decimal

	// MinimumAmount is the smallest amount that may be sent, if any.
	MinimumAmount decimal.NullDecimal

	// MaximumAmount is the largest amount that may be sent, if any.
	MaximumAmount decimal.NullDecimal
}

// FeeFromBalance reports whether the fee is deducted from Balance.
func (b Balances) FeeFromBalance() bool {
	return !b.FeeBalance.Valid
}

// Result holds the derived fee figures.
type Result struct {
	Fee              decimal.Decimal
	AvailableBalance decimal.Decimal
}

// Calculator turns a fee rate and a resource estimate into a fee. Decimals
// is the number of decimal places between the rate's base unit and the
// fee coin's presentation unit: 8 for sat to BTC, 18 for wei to ETH.
type Calculator struct {
	Decimals int32
}

// Fee returns rate * units in presentation units. The product is computed
// with arbitrary precision and cannot overflow.
func (c Calculator) Fee(rate feerate.Rate, units estimate.Units) decimal.Decimal {
	product := new(big.Int).Mul(
		new(big.Int).SetUint64(uint64(rate)),
		new(big.Int).SetUint64(uint64(units)),
	)

	return decimal.NewFromBigInt(product, -c.Decimals)
}

// Compute derives the fee and the balance left for the send. The fee is
// returned alongside ErrInsufficientFeeBalance so callers can still show it.
func (c Calculator) Compute(rate feerate.Rate, units estimate.Units,
	b Balances) (Result, error) {

	fee := c.Fee(rate, units)

	if !b.FeeFromBalance() {
		res := Result{Fee: fee, AvailableBalance: b.Balance}
		if fee.GreaterThan(b.FeeBalance.Decimal) {
			return res, ErrInsufficientFeeBalance
		}
		return res, nil
	}

	return Result{
		Fee:              fee,
		AvailableBalance: AvailableBalance(b.Balance, fee),
	}, nil
}

// AvailableBalance returns balance - fee clamped at zero.
func AvailableBalance(balance, fee decimal.Decimal) decimal.Decimal {
	available := balance.Sub(fee)
	if available.IsNegative() {
		return decimal.Zero
	}

	return available
}
