package sendsync

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/lightninglabs/sendsync/asyncval"
	"github.com/lightninglabs/sendsync/estimate"
	"github.com/lightninglabs/sendsync/feecalc"
	"github.com/lightninglabs/sendsync/feerate"
	"github.com/lightninglabs/sendsync/validate"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/shopspring/decimal"
)

// Observer is notified of every recomputed aggregate state. It is called on
// the coordinator goroutine and must not call back into the coordinator.
type Observer interface {
	OnAggregateStateChanged(state AggregateState)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(state AggregateState)

// OnAggregateStateChanged calls f.
func (f ObserverFunc) OnAggregateStateChanged(state AggregateState) {
	f(state)
}

// event is anything delivered to the event loop.
type event interface {
	eventName() string
}

// request runs fn on the event loop and reports its error on done.
type request struct {
	fn   func() error
	done chan error
}

func (*request) eventName() string { return "request" }

// feeRateResult carries the outcome of one fee rate fetch.
type feeRateResult struct {
	gen     asyncval.Generation
	rate    feerate.Rate
	err     error
	latency time.Duration
}

func (*feeRateResult) eventName() string { return "fee rate result" }

// estimateResult carries the outcome of one resource estimation.
type estimateResult struct {
	gen     asyncval.Generation
	units   estimate.Units
	err     error
	latency time.Duration
}

func (*estimateResult) eventName() string { return "estimate result" }

// Coordinator keeps a transaction draft, its fee rate and its resource
// estimate consistent and derives the aggregate state from them.
//
// All state is owned by a single goroutine. Caller operations and fetch
// results are events on one inbox, so edits apply in issue order and a
// fetch result is accepted only if it belongs to the live generation of its
// slot.
type Coordinator struct {
	started int32 // To be used atomically.
	stopped int32 // To be used atomically.

	cfg     *Config
	metrics *metrics

	inbox chan event

	// ctx is the parent of every fetch and is cancelled on Stop.
	ctx    context.Context
	cancel context.CancelFunc

	quit chan struct{}
	wg   sync.WaitGroup

	// The fields below are only accessed by the event loop.
	draft          Draft
	balances       feecalc.Balances
	initialized    bool
	feeRate        asyncval.Slot[feerate.Rate]
	units          asyncval.Slot[estimate.Units]
	cancelFeeRate  context.CancelFunc
	cancelEstimate context.CancelFunc
	state          AggregateState
}

// New creates a new Coordinator. Start must be called before use.
func New(cfg *Config) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Clock == nil {
		cfg.Clock = clock.NewDefaultClock()
	}
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = DefaultConfig().InboxSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Coordinator{
		cfg:     cfg,
		metrics: newMetrics(cfg.Registerer),
		inbox:   make(chan event, cfg.InboxSize),
		ctx:     ctx,
		cancel:  cancel,
		quit:    make(chan struct{}),
		draft: Draft{
			Priority: cfg.InitialPriority,
		},
	}
	c.state, _ = c.snapshot().build(
		cfg.Validator, cfg.Calculator, cfg.AmountDecimals,
	)

	return c, nil
}

// Start launches the event loop.
func (c *Coordinator) Start() error {
	if !atomic.CompareAndSwapInt32(&c.started, 0, 1) {
		return nil
	}

	log.Infof("Send coordinator starting")

	if c.cfg.FeeRateTicker != nil {
		c.cfg.FeeRateTicker.Resume()
	}

	c.wg.Add(1)
	go c.eventLoop()

	return nil
}

// Stop cancels outstanding fetches and waits for every goroutine to exit.
func (c *Coordinator) Stop() error {
	if !atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		return nil
	}

	log.Infof("Send coordinator shutting down")

	close(c.quit)
	c.cancel()
	c.wg.Wait()

	if c.cfg.FeeRateTicker != nil {
		c.cfg.FeeRateTicker.Stop()
	}

	return nil
}

// Initialize captures the account balances, starts the first fee rate
// fetch and estimation, and publishes the initial loading state.
func (c *Coordinator) Initialize() error {
	return c.do(c.initialize)
}

// SetAmount replaces the draft amount. Negative amounts are rejected with a
// *validate.AmountError and leave the draft unchanged.
func (c *Coordinator) SetAmount(amount decimal.Decimal) error {
	return c.do(func() error {
		return c.setAmount(decimal.NewNullDecimal(amount))
	})
}

// ClearAmount unsets the draft amount.
func (c *Coordinator) ClearAmount() error {
	return c.do(func() error {
		return c.setAmount(decimal.NullDecimal{})
	})
}

// SetAddress replaces the draft destination.
func (c *Coordinator) SetAddress(address string) error {
	return c.do(func() error {
		c.draft.Address = strings.TrimSpace(address)
		c.draftChanged()

		return nil
	})
}

// SetFeePriority replaces the fee priority and re-fetches the fee rate. An
// invalid priority is rejected and leaves the draft unchanged.
func (c *Coordinator) SetFeePriority(priority feerate.Priority) error {
	return c.do(func() error {
		return c.setFeePriority(priority)
	})
}

// Revalidate validates the draft, publishes the resulting state and reports
// whether validation passed. Fetches are not touched.
func (c *Coordinator) Revalidate() (bool, error) {
	var valid bool
	err := c.do(func() error {
		valid = c.revalidate()
		return nil
	})

	return valid, err
}

// Recompute derives and publishes the aggregate state.
func (c *Coordinator) Recompute() (AggregateState, error) {
	var state AggregateState
	err := c.do(func() error {
		state = c.recompute()
		return nil
	})

	return state, err
}

// Retry re-fetches the fee rate and the estimate. It returns
// ErrNothingToRetry unless one of them failed.
func (c *Coordinator) Retry() error {
	return c.do(c.retry)
}

// PrepareSubmission returns the snapshot to sign and broadcast. It fails
// with ErrNoFeeAvailable until both the fee rate and the estimate are
// resolved, and with *ValidationError if the draft is invalid.
func (c *Coordinator) PrepareSubmission() (*Submission, error) {
	var sub *Submission
	err := c.do(func() error {
		var err error
		sub, err = c.prepareSubmission()
		return err
	})

	return sub, err
}

// State returns the last published aggregate state.
func (c *Coordinator) State() (AggregateState, error) {
	var state AggregateState
	err := c.do(func() error {
		state = c.state
		return nil
	})

	return state, err
}

// Draft returns the current draft.
func (c *Coordinator) Draft() (Draft, error) {
	var draft Draft
	err := c.do(func() error {
		draft = c.draft
		return nil
	})

	return draft, err
}

// do runs fn on the event loop and waits for it to finish.
func (c *Coordinator) do(fn func() error) error {
	if atomic.LoadInt32(&c.started) == 0 {
		return ErrNotStarted
	}

	req := &request{
		fn:   fn,
		done: make(chan error, 1),
	}

	select {
	case c.inbox <- req:
	case <-c.quit:
		return ErrShuttingDown
	}

	select {
	case err := <-req.done:
		return err

	case <-c.quit:
		// The request may have completed right before shutdown.
		select {
		case err := <-req.done:
			return err
		default:
			return ErrShuttingDown
		}
	}
}

// deliver hands a fetch result to the event loop unless it is shutting
// down.
func (c *Coordinator) deliver(ev event) {
	select {
	case c.inbox <- ev:
	case <-c.quit:
	}
}

// eventLoop is the only goroutine touching coordinator state.
//
// NOTE: This MUST be run as a goroutine.
func (c *Coordinator) eventLoop() {
	defer c.wg.Done()

	var ticks <-chan time.Time
	if c.cfg.FeeRateTicker != nil {
		ticks = c.cfg.FeeRateTicker.Ticks()
	}

	for {
		select {
		case ev := <-c.inbox:
			c.processEvent(ev)

		case <-ticks:
			c.periodicFeeRateRefresh()

		case <-c.quit:
			c.cancelFetches()
			return
		}
	}
}

func (c *Coordinator) processEvent(ev event) {
	switch e := ev.(type) {
	case *request:
		e.done <- e.fn()

	case *feeRateResult:
		c.handleFeeRateResult(e)

	case *estimateResult:
		c.handleEstimateResult(e)

	default:
		log.Errorf("Unknown event: %v", ev.eventName())
	}
}

func (c *Coordinator) initialize() error {
	if c.initialized {
		return ErrAlreadyInitialized
	}

	c.initialized = true
	c.balances = c.cfg.Balances.Balances()

	log.Debugf("Initializing with balance %v, priority %v",
		c.balances.Balance, c.draft.Priority)

	c.fetchFeeRate()
	c.refreshEstimate()
	c.recompute()

	return nil
}

func (c *Coordinator) setAmount(amount decimal.NullDecimal) error {
	if amount.Valid && amount.Decimal.IsNegative() {
		return validate.NewAmountError(
			amount.Decimal, validate.ErrNegativeAmount,
		)
	}

	c.draft.Amount = amount
	c.draftChanged()

	return nil
}

func (c *Coordinator) setFeePriority(priority feerate.Priority) error {
	if err := priority.Validate(); err != nil {
		return err
	}

	c.draft.Priority = priority

	if c.initialized {
		c.fetchFeeRate()
	}
	c.draftChanged()

	return nil
}

// draftChanged re-estimates if the edited draft is valid and publishes the
// new state. An estimate still in flight for an earlier draft is dropped when
// the edit leaves the draft invalid. Before Initialize only the state is
// published.
func (c *Coordinator) draftChanged() {
	switch {
	case c.initialized && c.draftValid():
		c.refreshEstimate()

	case c.initialized && c.units.State().IsLoading():
		c.abandonEstimate()
	}
	c.recompute()
}

func (c *Coordinator) draftValid() bool {
	_, result := c.snapshot().build(
		c.cfg.Validator, c.cfg.Calculator, c.cfg.AmountDecimals,
	)

	return result.Valid()
}

func (c *Coordinator) revalidate() bool {
	state, result := c.snapshot().build(
		c.cfg.Validator, c.cfg.Calculator, c.cfg.AmountDecimals,
	)
	c.publish(state)

	return result.Valid()
}

func (c *Coordinator) recompute() AggregateState {
	state, _ := c.snapshot().build(
		c.cfg.Validator, c.cfg.Calculator, c.cfg.AmountDecimals,
	)
	c.publish(state)

	return state
}

// publish stores state as current and notifies the observer.
func (c *Coordinator) publish(state AggregateState) {
	c.state = state
	c.metrics.recomputes.Inc()

	log.Tracef("Aggregate state: %v", newLogClosure(func() string {
		return spew.Sdump(state)
	}))

	if c.cfg.Observer != nil {
		c.cfg.Observer.OnAggregateStateChanged(state)
	}
}

func (c *Coordinator) retry() error {
	if !c.feeRate.State().IsError() && !c.units.State().IsError() {
		return ErrNothingToRetry
	}

	log.Infof("Retrying fee rate fetch and estimation")

	c.fetchFeeRate()
	c.refreshEstimate()
	c.recompute()

	return nil
}

func (c *Coordinator) prepareSubmission() (*Submission, error) {
	rate, rateOK := c.feeRate.State().Value()
	units, unitsOK := c.units.State().Value()
	if !rateOK || !unitsOK {
		return nil, ErrNoFeeAvailable
	}

	state, result := c.snapshot().build(
		c.cfg.Validator, c.cfg.Calculator, c.cfg.AmountDecimals,
	)
	if !state.Valid {
		return nil, &ValidationError{Reasons: state.ValidationErrors}
	}

	return &Submission{
		Address: result.Address,
		Amount:  result.Amount,
		FeeRate: rate,
		Units:   units,
		Fee:     state.Fee,
	}, nil
}

func (c *Coordinator) snapshot() snapshot {
	return snapshot{
		draft:    c.draft,
		balances: c.balances,
		feeRate:  c.feeRate.State(),
		units:    c.units.State(),
	}
}

// fetchFeeRate supersedes any in-flight fee rate fetch with a new one. A
// custom priority carries its rate and resolves immediately.
func (c *Coordinator) fetchFeeRate() {
	if c.cancelFeeRate != nil {
		c.cancelFeeRate()
		c.cancelFeeRate = nil
	}

	gen := c.feeRate.Begin()
	priority := c.draft.Priority

	if priority.IsCustom() {
		log.Debugf("Using custom fee rate %d", priority.Value)
		c.feeRate.Settle(gen, priority.Value, nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.cfg.FetchTimeout)
	c.cancelFeeRate = cancel
	c.metrics.fetches.WithLabelValues(slotFeeRate).Inc()

	log.Debugf("Fetching %v fee rate, generation %d", priority, gen)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		start := c.cfg.Clock.Now()
		rate, err := c.cfg.FeeRates.FetchFeeRate(ctx, priority)

		c.deliver(&feeRateResult{
			gen:     gen,
			rate:    rate,
			err:     err,
			latency: c.cfg.Clock.Now().Sub(start),
		})
	}()
}

// refreshEstimate supersedes any in-flight estimation with one for the
// current draft.
func (c *Coordinator) refreshEstimate() {
	if c.cancelEstimate != nil {
		c.cancelEstimate()
		c.cancelEstimate = nil
	}

	gen := c.units.Begin()

	req := estimate.Request{
		Amount: decimal.Zero,
	}
	if addr, err := c.cfg.Validator.ValidAddress(c.draft.Address); err == nil {
		req.Address = addr
	}
	if c.draft.Amount.Valid {
		req.Amount = c.draft.Amount.Decimal
	}
	if rate, ok := c.feeRate.State().Value(); ok {
		req.FeeRate = rate
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.cfg.FetchTimeout)
	c.cancelEstimate = cancel
	c.metrics.fetches.WithLabelValues(slotEstimate).Inc()

	log.Debugf("Estimating resources for %v to %q, generation %d",
		req.Amount, req.Address, gen)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		start := c.cfg.Clock.Now()
		units, err := c.cfg.Estimator.EstimateResources(ctx, req)

		c.deliver(&estimateResult{
			gen:     gen,
			units:   units,
			err:     err,
			latency: c.cfg.Clock.Now().Sub(start),
		})
	}()
}

// abandonEstimate cancels the in-flight estimation and returns the units
// slot to Idle, so its result is dropped as stale.
func (c *Coordinator) abandonEstimate() {
	if c.cancelEstimate != nil {
		c.cancelEstimate()
		c.cancelEstimate = nil
	}

	c.units.Reset()

	log.Debugf("Abandoned estimate for superseded draft, generation %d",
		c.units.Generation())
}

func (c *Coordinator) handleFeeRateResult(e *feeRateResult) {
	var err error
	if e.err != nil {
		err = fmt.Errorf("%w: %w", ErrNetwork, e.err)
	}

	if !c.feeRate.Settle(e.gen, e.rate, err) {
		c.metrics.stale.WithLabelValues(slotFeeRate).Inc()
		log.Debugf("Dropping stale fee rate result, generation %d "+
			"(current %d)", e.gen, c.feeRate.Generation())
		return
	}

	if c.cancelFeeRate != nil {
		c.cancelFeeRate()
		c.cancelFeeRate = nil
	}

	c.metrics.latency.WithLabelValues(slotFeeRate).Observe(
		e.latency.Seconds(),
	)
	if err != nil {
		c.metrics.failures.WithLabelValues(slotFeeRate).Inc()
		log.Warnf("Fee rate fetch failed: %v", e.err)
	} else {
		log.Debugf("Fee rate resolved: %d", e.rate)
	}

	c.recompute()
}

func (c *Coordinator) handleEstimateResult(e *estimateResult) {
	var err error
	if e.err != nil {
		err = fmt.Errorf("%w: %w", ErrEstimation, e.err)
	}

	if !c.units.Settle(e.gen, e.units, err) {
		c.metrics.stale.WithLabelValues(slotEstimate).Inc()
		log.Debugf("Dropping stale estimate result, generation %d "+
			"(current %d)", e.gen, c.units.Generation())
		return
	}

	if c.cancelEstimate != nil {
		c.cancelEstimate()
		c.cancelEstimate = nil
	}

	c.metrics.latency.WithLabelValues(slotEstimate).Observe(
		e.latency.Seconds(),
	)
	if err != nil {
		c.metrics.failures.WithLabelValues(slotEstimate).Inc()
		log.Warnf("Resource estimation failed: %v", e.err)
	} else {
		log.Debugf("Resource estimate resolved: %d", e.units)
	}

	c.recompute()
}

// periodicFeeRateRefresh re-fetches a network fee rate that is not already
// being fetched.
func (c *Coordinator) periodicFeeRateRefresh() {
	if !c.initialized || c.draft.Priority.IsCustom() ||
		c.feeRate.State().IsLoading() {

		return
	}

	log.Debugf("Refreshing fee rate")

	c.fetchFeeRate()
	c.recompute()
}

func (c *Coordinator) cancelFetches() {
	if c.cancelFeeRate != nil {
		c.cancelFeeRate()
	}
	if c.cancelEstimate != nil {
		c.cancelEstimate()
	}
}
