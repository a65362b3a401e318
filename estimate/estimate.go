package estimate

import (
	"context"
	"errors"

	"github.com/lightninglabs/sendsync/feerate"
	"github.com/shopspring/decimal"
)

// ErrNoEstimate is returned by an estimator that cannot size a transaction
// for the given request.
var ErrNoEstimate = errors.New("unable to estimate transaction resources")

// Units is the amount of the network resource a transaction consumes: gas
// for account chains, virtual bytes for UTXO chains.
type Units uint64

// Request is the snapshot an estimate is computed for.
type Request struct {
	// Address is the normalized destination, or empty if the draft has
	// no valid address yet.
	Address string

	// Amount is the amount to send. Zero if unset.
	Amount decimal.Decimal

	// FeeRate is the current fee rate, or zero if not yet known.
	FeeRate feerate.Rate
}

// Estimator computes the resources a transaction will consume. Calls may
// block on the network and must honor ctx cancellation.
type Estimator interface {
	EstimateResources(ctx context.Context, req Request) (Units, error)
}

// EstimatorFunc adapts a function to the Estimator interface.
type EstimatorFunc func(ctx context.Context, req Request) (Units, error)

// EstimateResources calls f.
func (f EstimatorFunc) EstimateResources(ctx context.Context,
	req Request) (Units, error) {

	return f(ctx, req)
}

// Fixed is an Estimator that always returns the same amount, such as 21000
// gas for a plain value transfer.
type Fixed Units

// EstimateResources returns f.
func (f Fixed) EstimateResources(ctx context.Context, _ Request) (Units,
	error) {

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	return Units(f), nil
}
