package sendsync

import (
	"github.com/lightninglabs/sendsync/asyncval"
	"github.com/lightninglabs/sendsync/estimate"
	"github.com/lightninglabs/sendsync/feecalc"
	"github.com/lightninglabs/sendsync/feerate"
	"github.com/lightninglabs/sendsync/validate"
	"github.com/shopspring/decimal"
)

// Draft is the user editable part of a transaction.
type Draft struct {
	// Address is the destination as entered. Empty means none.
	Address string

	// Amount is the amount to send, unset until entered.
	Amount decimal.NullDecimal

	// Priority is the selected fee priority.
	Priority feerate.Priority
}

// AggregateState is the derived readiness of a draft. It is recomputed from
// the draft and the fetched inputs every time either changes.
type AggregateState struct {
	// Valid is true iff the draft validates, both fetched inputs hold a
	// value and the fee could be computed.
	Valid bool

	// Loading is true iff a fee rate fetch or an estimation is in flight.
	Loading bool

	// Fee is the total fee, zero unless both inputs hold a value.
	Fee decimal.Decimal

	// AvailableBalance is the balance left for the amount after the fee.
	AvailableBalance decimal.Decimal

	// ExternalError is the fetch failure, if any. The fee rate error wins
	// when both inputs failed.
	ExternalError error

	// ValidationErrors lists every local check that failed.
	ValidationErrors []error
}

// Equal reports whether two states carry the same figures and errors.
func (s AggregateState) Equal(o AggregateState) bool {
	if s.Valid != o.Valid || s.Loading != o.Loading ||
		!s.Fee.Equal(o.Fee) ||
		!s.AvailableBalance.Equal(o.AvailableBalance) {

		return false
	}

	if !sameError(s.ExternalError, o.ExternalError) {
		return false
	}

	if len(s.ValidationErrors) != len(o.ValidationErrors) {
		return false
	}
	for i := range s.ValidationErrors {
		if !sameError(s.ValidationErrors[i], o.ValidationErrors[i]) {
			return false
		}
	}

	return true
}

func sameError(a, b error) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.Error() == b.Error()
}

// Submission is the snapshot handed to signing and broadcast.
type Submission struct {
	// Address is the normalized destination.
	Address string

	// Amount is the normalized amount.
	Amount decimal.Decimal

	// FeeRate is the resolved fee rate in base units.
	FeeRate feerate.Rate

	// Units is the resolved resource limit, the gas limit on account
	// chains.
	Units estimate.Units

	// Fee is the total fee in presentation units.
	Fee decimal.Decimal
}

// snapshot holds every input the aggregate state is derived from.
type snapshot struct {
	draft    Draft
	balances feecalc.Balances
	feeRate  asyncval.State[feerate.Rate]
	units    asyncval.State[estimate.Units]
}

// build derives the aggregate state. It has no side effects, so two calls on
// the same snapshot give equal results.
func (s snapshot) build(v *validate.Validator, calc feecalc.Calculator,
	decimals int32) (AggregateState, validate.Result) {

	state := AggregateState{
		Loading:          s.feeRate.IsLoading() || s.units.IsLoading(),
		Fee:              decimal.Zero,
		AvailableBalance: s.balances.Balance,
	}

	var (
		feeReady bool
		feeErr   error
	)
	if !state.Loading {
		switch {
		case s.feeRate.IsError():
			state.ExternalError = s.feeRate.Err()

		case s.units.IsError():
			state.ExternalError = s.units.Err()

		default:
			rate, rateOK := s.feeRate.Value()
			units, unitsOK := s.units.Value()
			if !rateOK || !unitsOK {
				break
			}

			res, err := calc.Compute(rate, units, s.balances)
			state.Fee = res.Fee
			state.AvailableBalance = res.AvailableBalance
			feeErr = err
			feeReady = err == nil
		}
	}

	result := v.Validate(s.draft.Address, s.draft.Amount,
		validate.Constraints{
			Available:       state.AvailableBalance,
			MinimumRequired: s.balances.MinimumRequired,
			Minimum:         s.balances.MinimumAmount,
			Maximum:         s.balances.MaximumAmount,
			Decimals:        decimals,
		},
	)

	state.ValidationErrors = append(
		make([]error, 0, len(result.Reasons)+1), result.Reasons...,
	)
	if feeErr != nil {
		state.ValidationErrors = append(state.ValidationErrors, feeErr)
	}

	state.Valid = feeReady && result.Valid()

	return state, result
}
