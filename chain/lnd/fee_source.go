package lnd

import (
	"context"
	"errors"
	"fmt"

	"github.com/lightninglabs/lndclient"
	"github.com/lightninglabs/sendsync/feerate"
	"github.com/lightningnetwork/lnd/lnwallet/chainfee"
)

// FeeEstimator is the part of lnd's wallet kit that estimates on-chain
// fees.
type FeeEstimator interface {
	// EstimateFeeRate returns the fee rate for a confirmation target.
	EstimateFeeRate(ctx context.Context,
		confTarget int32) (chainfee.SatPerKWeight, error)
}

var _ FeeEstimator = (lndclient.WalletKitClient)(nil)

// Config holds configuration for the FeeSource.
type Config struct {
	// WalletKit is the connected lnd wallet kit.
	WalletKit FeeEstimator

	// ConfTargets maps fee priority levels to confirmation targets.
	// Default: low 12, recommended 6, high 2
	ConfTargets map[feerate.Level]int32
}

// DefaultConfig returns default configuration.
func DefaultConfig(walletKit FeeEstimator) *Config {
	return &Config{
		WalletKit: walletKit,
		ConfTargets: map[feerate.Level]int32{
			feerate.LevelLow:         12,
			feerate.LevelRecommended: 6,
			feerate.LevelHigh:        2,
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.WalletKit == nil {
		return errors.New("wallet kit is required")
	}

	for level, target := range c.ConfTargets {
		// lnd rejects targets below two blocks.
		if target < 2 {
			return fmt.Errorf("invalid conf target %d for %v",
				target, level)
		}
	}

	return nil
}

// FeeSource serves sat/vB fee rates estimated by an lnd node.
type FeeSource struct {
	cfg *Config
}

// NewFeeSource creates a new FeeSource.
func NewFeeSource(cfg *Config) (*FeeSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &FeeSource{
		cfg: cfg,
	}, nil
}

// FetchFeeRate implements feerate.Fetcher.
func (s *FeeSource) FetchFeeRate(ctx context.Context,
	priority feerate.Priority) (feerate.Rate, error) {

	if priority.IsCustom() {
		return priority.Value, nil
	}

	confTarget, ok := s.cfg.ConfTargets[priority.Level]
	if !ok {
		return 0, fmt.Errorf("%w: %v", feerate.ErrUnsupportedPriority,
			priority.Level)
	}

	feePerKw, err := s.cfg.WalletKit.EstimateFeeRate(ctx, confTarget)
	if err != nil {
		return 0, fmt.Errorf("unable to estimate fee rate for target "+
			"%d: %w", confTarget, err)
	}

	if feePerKw < chainfee.FeePerKwFloor {
		feePerKw = chainfee.FeePerKwFloor
	}

	satPerVByte := uint64(feePerKw.FeePerKVByte() / 1000)

	log.Debugf("lnd fee rate for %v (target %d): %v, %d sat/vB",
		priority, confTarget, feePerKw, satPerVByte)

	return feerate.Rate(satPerVByte), nil
}

var _ feerate.Fetcher = (*FeeSource)(nil)
