package sendsync

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lightninglabs/sendsync/estimate"
	"github.com/lightninglabs/sendsync/feecalc"
	"github.com/lightninglabs/sendsync/feerate"
	"github.com/lightninglabs/sendsync/validate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	defaultTimeout = 5 * time.Second
	pollInterval   = 5 * time.Millisecond
)

// testAddresses accepts addresses starting with "addr" and lowercases them.
var testAddresses = validate.AddressValidatorFunc(
	func(address string) (string, error) {
		if !strings.HasPrefix(strings.ToLower(address), "addr") {
			return "", validate.ErrInvalidAddress
		}
		return strings.ToLower(address), nil
	},
)

type fakeResult[T any] struct {
	value T
	err   error
}

// fakeCall is one blocked call to a fake collaborator.
type fakeCall[Req, Resp any] struct {
	ctx  context.Context
	req  Req
	resp chan fakeResult[Resp]
}

// resolve releases the call with the given outcome.
func (c *fakeCall[Req, Resp]) resolve(v Resp, err error) {
	c.resp <- fakeResult[Resp]{value: v, err: err}
}

// fake is a collaborator whose calls block until the test resolves them.
type fake[Req, Resp any] struct {
	calls chan *fakeCall[Req, Resp]

	// ignoreCancel makes calls wait for resolve even after their context
	// is cancelled, to deliver late results.
	ignoreCancel bool

	quit chan struct{}
}

func newFake[Req, Resp any]() *fake[Req, Resp] {
	return &fake[Req, Resp]{
		calls: make(chan *fakeCall[Req, Resp], 32),
		quit:  make(chan struct{}),
	}
}

func (f *fake[Req, Resp]) call(ctx context.Context, req Req) (Resp, error) {
	c := &fakeCall[Req, Resp]{
		ctx:  ctx,
		req:  req,
		resp: make(chan fakeResult[Resp], 1),
	}
	f.calls <- c

	var zero Resp

	done := ctx.Done()
	if f.ignoreCancel {
		done = nil
	}

	select {
	case r := <-c.resp:
		return r.value, r.err
	case <-done:
		return zero, ctx.Err()
	case <-f.quit:
		return zero, context.Canceled
	}
}

// next returns the next call made to the fake.
func (f *fake[Req, Resp]) next(t *testing.T) *fakeCall[Req, Resp] {
	t.Helper()

	select {
	case c := <-f.calls:
		return c
	case <-time.After(defaultTimeout):
		t.Fatalf("no call received")
		return nil
	}
}

type fakeFeeRates struct {
	*fake[feerate.Priority, feerate.Rate]
}

func (f fakeFeeRates) FetchFeeRate(ctx context.Context,
	p feerate.Priority) (feerate.Rate, error) {

	return f.call(ctx, p)
}

type fakeEstimator struct {
	*fake[estimate.Request, estimate.Units]
}

func (f fakeEstimator) EstimateResources(ctx context.Context,
	req estimate.Request) (estimate.Units, error) {

	return f.call(ctx, req)
}

// harness runs a coordinator against blocking fakes.
type harness struct {
	t *testing.T

	c         *Coordinator
	feeRates  *fake[feerate.Priority, feerate.Rate]
	estimator *fake[estimate.Request, estimate.Units]

	mu     sync.Mutex
	states []AggregateState
}

func newHarness(t *testing.T, opts ...func(*harness, *Config)) *harness {
	t.Helper()

	h := &harness{
		t:         t,
		feeRates:  newFake[feerate.Priority, feerate.Rate](),
		estimator: newFake[estimate.Request, estimate.Units](),
	}

	validator, err := validate.New(&validate.Config{
		Address: testAddresses,
	})
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.FeeRates = fakeFeeRates{h.feeRates}
	cfg.Estimator = fakeEstimator{h.estimator}
	cfg.Validator = validator
	cfg.Calculator = feecalc.Calculator{Decimals: 9}
	cfg.Balances = StaticBalances{Balance: decimal.NewFromInt(2)}
	cfg.AmountDecimals = 18
	cfg.Registerer = prometheus.NewRegistry()
	cfg.Observer = ObserverFunc(func(s AggregateState) {
		h.mu.Lock()
		h.states = append(h.states, s)
		h.mu.Unlock()
	})

	for _, opt := range opts {
		opt(h, cfg)
	}

	h.c, err = New(cfg)
	require.NoError(t, err)
	require.NoError(t, h.c.Start())

	t.Cleanup(func() {
		close(h.feeRates.quit)
		close(h.estimator.quit)
		require.NoError(t, h.c.Stop())
	})

	return h
}

// notifications returns the number of states published so far.
func (h *harness) notifications() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.states)
}

// waitState waits for a published state matching pred and returns it.
func (h *harness) waitState(pred func(AggregateState) bool) AggregateState {
	h.t.Helper()

	var state AggregateState
	require.Eventually(h.t, func() bool {
		s, err := h.c.State()
		if err != nil {
			return false
		}
		state = s
		return pred(s)
	}, defaultTimeout, pollInterval)

	return state
}

// settled waits for a state with nothing in flight.
func (h *harness) settled() AggregateState {
	h.t.Helper()

	return h.waitState(func(s AggregateState) bool {
		return !s.Loading
	})
}

// count reads one slot of a coordinator counter.
func (h *harness) count(vec *prometheus.CounterVec, slot string) int {
	return int(testutil.ToFloat64(vec.WithLabelValues(slot)))
}

// waitCount waits for a counter to reach n.
func (h *harness) waitCount(vec *prometheus.CounterVec, slot string, n int) {
	h.t.Helper()

	require.Eventually(h.t, func() bool {
		return h.count(vec, slot) == n
	}, defaultTimeout, pollInterval)
}

func withEstimator(e estimate.Estimator) func(*harness, *Config) {
	return func(_ *harness, cfg *Config) {
		cfg.Estimator = e
	}
}

func withBalances(b feecalc.Balances) func(*harness, *Config) {
	return func(_ *harness, cfg *Config) {
		cfg.Balances = StaticBalances(b)
	}
}

func ignoringCancel() func(*harness, *Config) {
	return func(h *harness, _ *Config) {
		h.feeRates.ignoreCancel = true
		h.estimator.ignoreCancel = true
	}
}
