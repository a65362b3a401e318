package mempool

import (
	"context"
	"fmt"
	"time"

	"github.com/lightninglabs/sendsync/feerate"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/lnwallet/chainfee"
	"golang.org/x/sync/singleflight"
)

// FeeSourceConfig holds configuration for the FeeSource.
type FeeSourceConfig struct {
	// Client is the mempool.space API client.
	Client *Client

	// CacheTTL is how long fetched estimates are reused.
	// Default: 30 seconds
	CacheTTL time.Duration

	// Clock drives cache expiry.
	// Default: clock.NewDefaultClock()
	Clock clock.Clock

	// ConfTargets maps fee priority levels to confirmation targets.
	// Default: low 12, recommended 3, high 1
	ConfTargets map[feerate.Level]uint32
}

// DefaultFeeSourceConfig returns default configuration.
func DefaultFeeSourceConfig(client *Client) *FeeSourceConfig {
	return &FeeSourceConfig{
		Client:   client,
		CacheTTL: 30 * time.Second,
		Clock:    clock.NewDefaultClock(),
		ConfTargets: map[feerate.Level]uint32{
			feerate.LevelLow:         12,
			feerate.LevelRecommended: 3,
			feerate.LevelHigh:        1,
		},
	}
}

// FeeSource serves bitcoin fee rates in sat/vB from mempool.space.
// Concurrent fetches share one request and results are cached for CacheTTL.
type FeeSource struct {
	cfg *FeeSourceConfig

	cache *cache
	group singleflight.Group
}

// NewFeeSource creates a new FeeSource.
func NewFeeSource(cfg *FeeSourceConfig) *FeeSource {
	if cfg == nil {
		cfg = DefaultFeeSourceConfig(NewClient(nil))
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewDefaultClock()
	}

	return &FeeSource{
		cfg:   cfg,
		cache: newCache(cfg.Clock, cfg.CacheTTL),
	}
}

// FetchFeeRate returns the sat/vB rate for a priority. Custom priorities
// return their own value.
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

	feePerKw, err := s.EstimateFee(ctx, confTarget)
	if err != nil {
		return 0, err
	}

	satPerVByte := uint64(feePerKw.FeePerKVByte() / 1000)

	log.Debugf("Fee rate for %v (target %d): %d sat/vB", priority,
		confTarget, satPerVByte)

	return feerate.Rate(satPerVByte), nil
}

// EstimateFee estimates the fee for a given confirmation target, never
// below the relay floor.
func (s *FeeSource) EstimateFee(ctx context.Context,
	confTarget uint32) (chainfee.SatPerKWeight, error) {

	fees, err := s.feeEstimates(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get fee estimates: %w", err)
	}

	satPerVByte := fees.ForTarget(confTarget)

	// 1 vB = 4 weight units.
	satPerKW := chainfee.SatPerKVByte(satPerVByte * 1000).FeePerKWeight()
	if satPerKW < chainfee.FeePerKwFloor {
		satPerKW = chainfee.FeePerKwFloor
	}

	return satPerKW, nil
}

// feeEstimates returns cached estimates or fetches fresh ones, collapsing
// concurrent fetches into one request. Each caller stops waiting when its own
// ctx is done, without failing the other callers.
func (s *FeeSource) feeEstimates(ctx context.Context) (*FeeEstimates, error) {
	if fees, ok := s.cache.get(); ok {
		return fees, nil
	}

	resultChan := s.group.DoChan("fees", func() (interface{}, error) {
		// The request is shared, so it is detached from the cancellation
		// of the caller that happened to start it.
		reqCtx, cancel := context.WithTimeout(
			context.WithoutCancel(ctx), s.cfg.Client.requestBudget(),
		)
		defer cancel()

		fees, err := s.cfg.Client.GetFeeEstimates(reqCtx)
		if err != nil {
			return nil, err
		}

		s.cache.set(fees)

		return fees, nil
	})

	select {
	case res := <-resultChan:
		if res.Err != nil {
			return nil, res.Err
		}

		if res.Shared {
			log.Tracef("Shared in-flight fee estimate request")
		}

		fees := *res.Val.(*FeeEstimates)
		return &fees, nil

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

var _ feerate.Fetcher = (*FeeSource)(nil)
