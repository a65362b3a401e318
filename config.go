package sendsync

import (
	"time"

	"github.com/lightninglabs/sendsync/estimate"
	"github.com/lightninglabs/sendsync/feecalc"
	"github.com/lightninglabs/sendsync/feerate"
	"github.com/lightninglabs/sendsync/validate"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/ticker"
	"github.com/prometheus/client_golang/prometheus"
)

// BalanceSource provides the account figures captured on Initialize.
type BalanceSource interface {
	Balances() feecalc.Balances
}

// StaticBalances is a BalanceSource returning fixed figures.
type StaticBalances feecalc.Balances

// Balances returns the figures.
func (s StaticBalances) Balances() feecalc.Balances {
	return feecalc.Balances(s)
}

// Config holds the collaborators and tuning of a Coordinator.
type Config struct {
	// FeeRates fetches the network fee rate.
	FeeRates feerate.Fetcher

	// Estimator sizes the transaction.
	Estimator estimate.Estimator

	// Validator checks the draft.
	Validator *validate.Validator

	// Calculator converts rate and units into a fee.
	Calculator feecalc.Calculator

	// Balances supplies the account figures.
	Balances BalanceSource

	// Observer receives every recomputed aggregate state. Optional.
	Observer Observer

	// AmountDecimals is the precision of the coin being sent. Zero
	// disables the precision check.
	AmountDecimals int32

	// InitialPriority is the fee priority of a new draft.
	// Default: feerate.Recommended()
	InitialPriority feerate.Priority

	// FetchTimeout bounds every fee rate fetch and estimation.
	// Default: 30 seconds
	FetchTimeout time.Duration

	// FeeRateTicker, if set, re-fetches the fee rate on every tick. The
	// coordinator takes ownership and stops it on Stop.
	FeeRateTicker ticker.Ticker

	// Clock is used to time fetches.
	// Default: clock.NewDefaultClock()
	Clock clock.Clock

	// Registerer receives the coordinator metrics. Optional.
	Registerer prometheus.Registerer

	// InboxSize is the capacity of the event inbox.
	// Default: 16
	InboxSize int
}

// DefaultConfig returns a configuration with default tuning. Collaborators
// must still be set.
func DefaultConfig() *Config {
	return &Config{
		InitialPriority: feerate.Recommended(),
		FetchTimeout:    30 * time.Second,
		Clock:           clock.NewDefaultClock(),
		InboxSize:       16,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.FeeRates == nil {
		return ErrFeeRateSourceRequired
	}

	if c.Estimator == nil {
		return ErrEstimatorRequired
	}

	if c.Validator == nil {
		return ErrValidatorRequired
	}

	if c.Balances == nil {
		return ErrBalanceSourceRequired
	}

	if c.FetchTimeout <= 0 {
		return ErrInvalidFetchTimeout
	}

	return c.InitialPriority.Validate()
}
