package bitcoin

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/btcsuite/btcwallet/wallet/txsizes"
	"github.com/lightninglabs/sendsync/validate"
	"github.com/shopspring/decimal"
)

// ErrDustAmount is returned for an amount the network would not relay.
var ErrDustAmount = fmt.Errorf("%w: output would be dust",
	validate.ErrBelowMinimum)

// DustValidator applies the standard limits and then rejects outputs below
// the dust threshold.
type DustValidator struct {
	// ScriptSize is the output script size the threshold is computed
	// for.
	// Default: P2WPKH
	ScriptSize int

	// RelayFeePerKb is the minimum relay fee.
	// Default: txrules.DefaultRelayFeePerKb
	RelayFeePerKb btcutil.Amount
}

// Threshold returns the smallest amount that is not dust.
func (v DustValidator) Threshold() btcutil.Amount {
	scriptSize := v.ScriptSize
	if scriptSize == 0 {
		scriptSize = txsizes.P2WPKHPkScriptSize
	}

	relayFee := v.RelayFeePerKb
	if relayFee == 0 {
		relayFee = txrules.DefaultRelayFeePerKb
	}

	return txrules.GetDustThreshold(scriptSize, relayFee)
}

// ValidAmount implements validate.AmountValidator.
func (v DustValidator) ValidAmount(amount decimal.Decimal,
	c validate.Constraints) (decimal.Decimal, error) {

	amount, err := validate.Limits{}.ValidAmount(amount, c)
	if err != nil {
		return decimal.Zero, err
	}

	sats := btcutil.Amount(amount.Shift(8).IntPart())
	if sats < v.Threshold() {
		return decimal.Zero, validate.NewAmountError(amount, ErrDustAmount)
	}

	return amount, nil
}

var _ validate.AmountValidator = DustValidator{}
