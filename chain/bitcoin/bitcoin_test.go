package bitcoin

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightninglabs/sendsync/estimate"
	"github.com/lightninglabs/sendsync/validate"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	mainnetP2WPKH = "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"
	mainnetP2PKH  = "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2"
	testnetP2WPKH = "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"
)

// TestAddressValidator tests address decoding against the network.
func TestAddressValidator(t *testing.T) {
	t.Parallel()

	mainnet := NewAddressValidator(&chaincfg.MainNetParams)
	testnet := NewAddressValidator(&chaincfg.TestNet3Params)

	tests := []struct {
		name      string
		validator *AddressValidator
		address   string
		valid     bool
	}{
		{"mainnet p2wpkh", mainnet, mainnetP2WPKH, true},
		{"mainnet p2pkh", mainnet, mainnetP2PKH, true},
		{"testnet p2wpkh", testnet, testnetP2WPKH, true},
		{"testnet on mainnet", mainnet, testnetP2WPKH, false},
		{"mainnet on testnet", testnet, mainnetP2PKH, false},
		{"garbage", mainnet, "not-an-address", false},
		{"bad checksum", mainnet, mainnetP2WPKH[:len(mainnetP2WPKH)-1] +
			"x", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := tc.validator.ValidateAddress(tc.address)
			if !tc.valid {
				require.ErrorIs(t, err, validate.ErrInvalidAddress)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.address, got)
		})
	}
}

// TestSizeEstimator tests virtual size estimates for common outputs.
func TestSizeEstimator(t *testing.T) {
	t.Parallel()

	estimator, err := NewSizeEstimator(
		DefaultSizeEstimatorConfig(&chaincfg.MainNetParams),
	)
	require.NoError(t, err)

	ctx := context.Background()
	amount := decimal.RequireFromString("0.001")

	// One P2WPKH input, a P2WPKH output and P2WPKH change.
	units, err := estimator.EstimateResources(ctx, estimate.Request{
		Address: mainnetP2WPKH,
		Amount:  amount,
	})
	require.NoError(t, err)
	require.EqualValues(t, 141, units)

	// Without an address a P2WPKH output is assumed.
	units, err = estimator.EstimateResources(ctx, estimate.Request{
		Amount: amount,
	})
	require.NoError(t, err)
	require.EqualValues(t, 141, units)

	// P2PKH scripts are three bytes longer.
	units, err = estimator.EstimateResources(ctx, estimate.Request{
		Address: mainnetP2PKH,
		Amount:  amount,
	})
	require.NoError(t, err)
	require.EqualValues(t, 144, units)

	_, err = estimator.EstimateResources(ctx, estimate.Request{
		Address: testnetP2WPKH,
	})
	require.ErrorIs(t, err, estimate.ErrNoEstimate)
	require.ErrorIs(t, err, validate.ErrInvalidAddress)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = estimator.EstimateResources(cancelled, estimate.Request{})
	require.ErrorIs(t, err, context.Canceled)
}

// TestSizeEstimatorConfig tests configuration validation.
func TestSizeEstimatorConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultSizeEstimatorConfig(&chaincfg.MainNetParams)
	require.NoError(t, cfg.Validate())

	cfg.Inputs = InputProfile{}
	require.ErrorIs(t, cfg.Validate(), ErrNoInputs)

	cfg = DefaultSizeEstimatorConfig(nil)
	require.Error(t, cfg.Validate())
}

// TestDustValidator tests that dust is rejected after the standard limits.
func TestDustValidator(t *testing.T) {
	t.Parallel()

	v := DustValidator{}
	threshold := v.Threshold()
	require.Positive(t, int64(threshold))

	c := validate.Constraints{
		Available: decimal.NewFromInt(1),
		Decimals:  8,
	}

	dust := decimal.NewFromInt(int64(threshold - 1)).Shift(-8)
	_, err := v.ValidAmount(dust, c)
	require.ErrorIs(t, err, ErrDustAmount)
	require.ErrorIs(t, err, validate.ErrBelowMinimum)

	var amountErr *validate.AmountError
	require.ErrorAs(t, err, &amountErr)

	ok := decimal.NewFromInt(int64(threshold)).Shift(-8)
	got, err := v.ValidAmount(ok, c)
	require.NoError(t, err)
	require.True(t, ok.Equal(got))

	// Standard limits run first.
	_, err = v.ValidAmount(decimal.NewFromInt(2), c)
	require.ErrorIs(t, err, validate.ErrInsufficientBalance)

	_, err = v.ValidAmount(decimal.RequireFromString("0.000000001"), c)
	require.ErrorIs(t, err, validate.ErrTooPrecise)

	// A higher relay fee raises the threshold.
	strict := DustValidator{RelayFeePerKb: 10 * btcutil.SatoshiPerBitcent}
	require.Greater(t, int64(strict.Threshold()), int64(threshold))
}
