package bitcoin

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txsizes"
	"github.com/lightninglabs/sendsync/estimate"
)

// ErrNoInputs is returned when the input profile spends nothing.
var ErrNoInputs = errors.New("input profile has no inputs")

// InputProfile is the number of inputs of each type a send is assumed to
// spend.
type InputProfile struct {
	P2PKH        int
	P2TR         int
	P2WPKH       int
	NestedP2WPKH int
}

// count returns the total number of inputs.
func (p InputProfile) count() int {
	return p.P2PKH + p.P2TR + p.P2WPKH + p.NestedP2WPKH
}

// SizeEstimatorConfig holds configuration for the SizeEstimator.
type SizeEstimatorConfig struct {
	// Params is the network destination addresses are decoded for.
	Params *chaincfg.Params

	// Inputs is the assumed input set.
	// Default: one P2WPKH input
	Inputs InputProfile

	// ChangeScriptSize is the size of the change output script. Zero
	// means no change output.
	// Default: P2WPKH
	ChangeScriptSize int
}

// DefaultSizeEstimatorConfig returns default configuration.
func DefaultSizeEstimatorConfig(params *chaincfg.Params) *SizeEstimatorConfig {
	return &SizeEstimatorConfig{
		Params: params,
		Inputs: InputProfile{
			P2WPKH: 1,
		},
		ChangeScriptSize: txsizes.P2WPKHPkScriptSize,
	}
}

// Validate validates the configuration.
func (c *SizeEstimatorConfig) Validate() error {
	if c.Params == nil {
		return errors.New("network params are required")
	}

	if c.Inputs.count() == 0 {
		return ErrNoInputs
	}

	if c.ChangeScriptSize < 0 {
		return fmt.Errorf("invalid change script size %d",
			c.ChangeScriptSize)
	}

	return nil
}

// SizeEstimator estimates the virtual size of a send in vbytes.
type SizeEstimator struct {
	cfg       *SizeEstimatorConfig
	addresses *AddressValidator
}

// NewSizeEstimator creates a new SizeEstimator.
func NewSizeEstimator(cfg *SizeEstimatorConfig) (*SizeEstimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &SizeEstimator{
		cfg:       cfg,
		addresses: NewAddressValidator(cfg.Params),
	}, nil
}

// EstimateResources returns the virtual size of a transaction paying
// req.Amount to req.Address. Without an address a P2WPKH output is assumed.
func (e *SizeEstimator) EstimateResources(ctx context.Context,
	req estimate.Request) (estimate.Units, error) {

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	pkScript := make([]byte, txsizes.P2WPKHPkScriptSize)
	if req.Address != "" {
		var err error
		pkScript, err = e.addresses.PkScript(req.Address)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", estimate.ErrNoEstimate, err)
		}
	}

	sats := req.Amount.Shift(8).IntPart()
	txOut := wire.NewTxOut(sats, pkScript)

	in := e.cfg.Inputs
	vsize := txsizes.EstimateVirtualSize(
		in.P2PKH, in.P2TR, in.P2WPKH, in.NestedP2WPKH,
		[]*wire.TxOut{txOut}, e.cfg.ChangeScriptSize,
	)

	log.Tracef("Estimated %d vbytes for %v to %q", vsize,
		btcutil.Amount(sats), req.Address)

	return estimate.Units(vsize), nil
}

var _ estimate.Estimator = (*SizeEstimator)(nil)
