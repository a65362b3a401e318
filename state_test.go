package sendsync

import (
	"testing"

	"github.com/lightninglabs/sendsync/asyncval"
	"github.com/lightninglabs/sendsync/estimate"
	"github.com/lightninglabs/sendsync/feecalc"
	"github.com/lightninglabs/sendsync/feerate"
	"github.com/lightninglabs/sendsync/validate"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// TestSnapshot_Build covers the derivation rules of the aggregate state.
func TestSnapshot_Build(t *testing.T) {
	t.Parallel()

	validator, err := validate.New(&validate.Config{Address: testAddresses})
	require.NoError(t, err)

	calc := feecalc.Calculator{Decimals: 9}
	draft := Draft{
		Address: "addr1",
		Amount:  decimal.NewNullDecimal(dec("1.5")),
	}
	balances := feecalc.Balances{Balance: decimal.NewFromInt(2)}

	tests := []struct {
		name     string
		feeRate  asyncval.State[feerate.Rate]
		units    asyncval.State[estimate.Units]
		valid    bool
		loading  bool
		fee      string
		external error
	}{
		{
			name:    "idle",
			feeRate: asyncval.Idle[feerate.Rate](),
			units:   asyncval.Idle[estimate.Units](),
			fee:     "0",
		},
		{
			name:    "loading dominates error",
			feeRate: asyncval.Failed[feerate.Rate](ErrNetwork),
			units:   asyncval.Loading[estimate.Units](),
			loading: true,
			fee:     "0",
		},
		{
			name:    "loading dominates value",
			feeRate: asyncval.Loading[feerate.Rate](),
			units:   asyncval.Ready[estimate.Units](21000),
			loading: true,
			fee:     "0",
		},
		{
			name:     "fee rate error wins",
			feeRate:  asyncval.Failed[feerate.Rate](ErrNetwork),
			units:    asyncval.Failed[estimate.Units](ErrEstimation),
			fee:      "0",
			external: ErrNetwork,
		},
		{
			name:     "estimation error",
			feeRate:  asyncval.Ready[feerate.Rate](20),
			units:    asyncval.Failed[estimate.Units](ErrEstimation),
			fee:      "0",
			external: ErrEstimation,
		},
		{
			name:    "resolved",
			feeRate: asyncval.Ready[feerate.Rate](20),
			units:   asyncval.Ready[estimate.Units](21000),
			valid:   true,
			fee:     "0.00042",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			snap := snapshot{
				draft:    draft,
				balances: balances,
				feeRate:  tc.feeRate,
				units:    tc.units,
			}

			state, result := snap.build(validator, calc, 18)
			require.True(t, result.Valid())
			require.Equal(t, tc.valid, state.Valid)
			require.Equal(t, tc.loading, state.Loading)
			require.True(t, state.Fee.Equal(dec(tc.fee)))
			require.Equal(t, tc.external, state.ExternalError)

			again, _ := snap.build(validator, calc, 18)
			require.True(t, state.Equal(again))
		})
	}
}

// TestAggregateState_Equal checks state comparison.
func TestAggregateState_Equal(t *testing.T) {
	t.Parallel()

	a := AggregateState{
		Fee:              dec("0.10"),
		AvailableBalance: dec("1"),
		ValidationErrors: []error{validate.ErrAddressRequired},
	}
	b := a
	b.Fee = dec("0.1")
	require.True(t, a.Equal(b))

	b.ExternalError = ErrNetwork
	require.False(t, a.Equal(b))

	b = a
	b.ValidationErrors = nil
	require.False(t, a.Equal(b))
}
