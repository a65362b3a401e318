package lnd

import (
	"context"
	"errors"
	"testing"

	"github.com/lightninglabs/sendsync/feerate"
	"github.com/lightningnetwork/lnd/lnwallet/chainfee"
	"github.com/stretchr/testify/require"
)

// mockWalletKit returns a fixed rate per confirmation target.
type mockWalletKit struct {
	rates map[int32]chainfee.SatPerKWeight
	err   error
}

func (m *mockWalletKit) EstimateFeeRate(_ context.Context,
	confTarget int32) (chainfee.SatPerKWeight, error) {

	if m.err != nil {
		return 0, m.err
	}

	return m.rates[confTarget], nil
}

// TestFeeSource tests the sat/kw to sat/vB conversion per priority.
func TestFeeSource(t *testing.T) {
	t.Parallel()

	source, err := NewFeeSource(DefaultConfig(&mockWalletKit{
		rates: map[int32]chainfee.SatPerKWeight{
			2:  12_500,
			6:  2_500,
			12: 100,
		},
	}))
	require.NoError(t, err)

	tests := []struct {
		priority feerate.Priority
		want     feerate.Rate
	}{
		{feerate.High(), 50},
		{feerate.Recommended(), 10},

		// Raised to the relay floor.
		{feerate.Low(), 1},

		{feerate.Custom(3, feerate.Range{Min: 1}), 3},
	}

	for _, tc := range tests {
		rate, err := source.FetchFeeRate(context.Background(), tc.priority)
		require.NoError(t, err, tc.priority.String())
		require.Equal(t, tc.want, rate, tc.priority.String())
	}
}

// TestFeeSourceErrors tests error propagation and config validation.
func TestFeeSourceErrors(t *testing.T) {
	t.Parallel()

	errRPC := errors.New("rpc unavailable")
	source, err := NewFeeSource(DefaultConfig(&mockWalletKit{err: errRPC}))
	require.NoError(t, err)

	_, err = source.FetchFeeRate(context.Background(), feerate.High())
	require.ErrorIs(t, err, errRPC)

	cfg := DefaultConfig(&mockWalletKit{})
	delete(cfg.ConfTargets, feerate.LevelLow)
	source, err = NewFeeSource(cfg)
	require.NoError(t, err)

	_, err = source.FetchFeeRate(context.Background(), feerate.Low())
	require.ErrorIs(t, err, feerate.ErrUnsupportedPriority)

	cfg = DefaultConfig(&mockWalletKit{})
	cfg.ConfTargets[feerate.LevelHigh] = 1
	_, err = NewFeeSource(cfg)
	require.Error(t, err)

	_, err = NewFeeSource(DefaultConfig(nil))
	require.Error(t, err)
}
