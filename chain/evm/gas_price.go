package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/lightninglabs/sendsync/feerate"
)

// ErrGasPriceOverflow is returned for a gas price that does not fit a
// feerate.Rate.
var ErrGasPriceOverflow = errors.New("gas price overflows")

// GasPriceConfig holds configuration for the GasPriceSource.
type GasPriceConfig struct {
	// Backend is the node to query.
	Backend Backend

	// Multipliers scale the suggested price per priority level.
	// Default: low 0.8, recommended 1.0, high 1.5
	Multipliers map[feerate.Level]float64

	// MaxGasPrice caps the scaled price in wei. Nil means no cap.
	MaxGasPrice *big.Int
}

// DefaultGasPriceConfig returns default configuration.
func DefaultGasPriceConfig(backend Backend) *GasPriceConfig {
	return &GasPriceConfig{
		Backend: backend,
		Multipliers: map[feerate.Level]float64{
			feerate.LevelLow:         0.8,
			feerate.LevelRecommended: 1.0,
			feerate.LevelHigh:        1.5,
		},
	}
}

// GasPriceSource serves gas prices in wei.
type GasPriceSource struct {
	cfg *GasPriceConfig
}

// NewGasPriceSource creates a new GasPriceSource.
func NewGasPriceSource(cfg *GasPriceConfig) *GasPriceSource {
	return &GasPriceSource{
		cfg: cfg,
	}
}

// FetchFeeRate implements feerate.Fetcher.
func (s *GasPriceSource) FetchFeeRate(ctx context.Context,
	priority feerate.Priority) (feerate.Rate, error) {

	if priority.IsCustom() {
		return priority.Value, nil
	}

	multiplier, ok := s.cfg.Multipliers[priority.Level]
	if !ok {
		return 0, fmt.Errorf("%w: %v", feerate.ErrUnsupportedPriority,
			priority.Level)
	}

	gasPrice, err := s.cfg.Backend.SuggestGasPrice(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get gas price: %w", err)
	}

	gasPrice = applyMultiplier(gasPrice, multiplier)

	if s.cfg.MaxGasPrice != nil && gasPrice.Cmp(s.cfg.MaxGasPrice) > 0 {
		log.Debugf("Capping gas price %v at %v", gasPrice,
			s.cfg.MaxGasPrice)

		gasPrice = new(big.Int).Set(s.cfg.MaxGasPrice)
	}

	if !gasPrice.IsUint64() {
		return 0, fmt.Errorf("%w: %v", ErrGasPriceOverflow, gasPrice)
	}

	log.Debugf("Gas price for %v: %s", priority,
		feerate.Gwei.Format(feerate.Rate(gasPrice.Uint64())))

	return feerate.Rate(gasPrice.Uint64()), nil
}

// applyMultiplier scales a gas price, truncating to whole wei.
func applyMultiplier(gasPrice *big.Int, multiplier float64) *big.Int {
	result := new(big.Float).Mul(
		new(big.Float).SetInt(gasPrice), big.NewFloat(multiplier),
	)
	adjusted, _ := result.Int(nil)

	return adjusted
}

var _ feerate.Fetcher = (*GasPriceSource)(nil)
