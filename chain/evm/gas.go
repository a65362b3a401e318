package evm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"github.com/lightninglabs/neutrino/cache"
	"github.com/lightninglabs/neutrino/cache/lru"
	"github.com/lightninglabs/sendsync/estimate"
	"github.com/lightningnetwork/lnd/clock"
)

const (
	// weiDecimals is the number of decimals of the native coin.
	weiDecimals = 18

	// DefaultGasCacheSize is the default number of cached gas estimates.
	DefaultGasCacheSize = 1024

	// DefaultGasCacheTTL is how long a gas estimate is reused. Contract
	// calls depend on chain state, so entries go stale within blocks.
	DefaultGasCacheTTL = 30 * time.Second
)

// gasKey identifies a call whose gas use has been estimated.
type gasKey struct {
	to    common.Address
	value string
}

// gasEntry is a cached estimate.
type gasEntry struct {
	units     uint64
	expiresAt time.Time
}

// Size implements cache.Value. Every entry counts as one.
func (*gasEntry) Size() (uint64, error) {
	return 1, nil
}

// GasEstimatorConfig holds configuration for the GasEstimator.
type GasEstimatorConfig struct {
	// Backend is the node to query.
	Backend Backend

	// From is the sending account.
	From common.Address

	// CacheSize bounds the number of memoized estimates.
	// Default: 1024
	CacheSize uint64

	// CacheTTL is how long a memoized estimate stays valid.
	// Default: 30s
	CacheTTL time.Duration

	// Clock is used to expire memoized estimates.
	Clock clock.Clock
}

// GasEstimator estimates the gas of a native coin transfer. Without a
// destination the intrinsic transfer cost is returned.
type GasEstimator struct {
	cfg   *GasEstimatorConfig
	ttl   time.Duration
	clock clock.Clock
	cache *lru.Cache[gasKey, *gasEntry]
}

// NewGasEstimator creates a new GasEstimator.
func NewGasEstimator(cfg *GasEstimatorConfig) *GasEstimator {
	size := cfg.CacheSize
	if size == 0 {
		size = DefaultGasCacheSize
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultGasCacheTTL
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewDefaultClock()
	}

	return &GasEstimator{
		cfg:   cfg,
		ttl:   ttl,
		clock: clk,
		cache: lru.NewCache[gasKey, *gasEntry](size),
	}
}

// EstimateResources implements estimate.Estimator.
func (e *GasEstimator) EstimateResources(ctx context.Context,
	req estimate.Request) (estimate.Units, error) {

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if req.Address == "" {
		return estimate.Units(params.TxGas), nil
	}

	to := common.HexToAddress(req.Address)
	value := req.Amount.Shift(weiDecimals).BigInt()
	key := gasKey{
		to:    to,
		value: value.String(),
	}

	now := e.clock.Now()
	cached, err := e.cache.Get(key)
	switch {
	case err == nil && now.Before(cached.expiresAt):
		return estimate.Units(cached.units), nil

	case err == nil:
		e.cache.Delete(key)

	case !errors.Is(err, cache.ErrElementNotFound):
		return 0, err
	}

	gas, err := e.cfg.Backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  e.cfg.From,
		To:    &to,
		Value: value,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to estimate gas: %w", err)
	}

	entry := &gasEntry{
		units:     gas,
		expiresAt: now.Add(e.ttl),
	}
	if _, err := e.cache.Put(key, entry); err != nil {
		log.Warnf("Unable to cache gas estimate: %v", err)
	}

	log.Tracef("Estimated %d gas for %v wei to %v", gas, value, to)

	return estimate.Units(gas), nil
}

var _ estimate.Estimator = (*GasEstimator)(nil)
