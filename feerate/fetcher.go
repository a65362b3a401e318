package feerate

import (
	"context"
	"fmt"
)

// Fetcher returns the current network fee rate for a priority. Fetches may
// block on the network and must honor ctx cancellation.
type Fetcher interface {
	FetchFeeRate(ctx context.Context, priority Priority) (Rate, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, priority Priority) (Rate, error)

// FetchFeeRate calls f.
func (f FetcherFunc) FetchFeeRate(ctx context.Context,
	priority Priority) (Rate, error) {

	return f(ctx, priority)
}

// Static is a Fetcher serving fixed rates per level. Custom priorities
// return their own value.
type Static map[Level]Rate

// FetchFeeRate returns the configured rate for priority.Level.
func (s Static) FetchFeeRate(ctx context.Context,
	priority Priority) (Rate, error) {

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if priority.IsCustom() {
		return priority.Value, nil
	}

	rate, ok := s[priority.Level]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedPriority,
			priority.Level)
	}

	return rate, nil
}

var _ Fetcher = (Static)(nil)
var _ Fetcher = (FetcherFunc)(nil)
