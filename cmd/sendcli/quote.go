package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lightninglabs/sendsync"
	"github.com/lightninglabs/sendsync/feecalc"
	"github.com/lightninglabs/sendsync/feerate"
	"github.com/lightningnetwork/lnd/ticker"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli"
)

var quoteCommand = cli.Command{
	Name:      "quote",
	Usage:     "Validate a send and quote its fee.",
	ArgsUsage: "address amount",
	Description: `
	Runs the draft through validation, fetches the network fee rate and
	estimates the transaction size, then prints the resulting state. If the
	draft is ready, the submission that would be signed is printed too.
	`,
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "balance",
			Usage: "spendable balance of the coin being sent",
		},
		cli.StringFlag{
			Name: "feebalance",
			Usage: "balance of the fee coin, if fees are paid in " +
				"another coin",
		},
		cli.StringFlag{
			Name:  "priority",
			Value: "recommended",
			Usage: "fee priority: low, recommended or high",
		},
		cli.StringFlag{
			Name: "feerate",
			Usage: "custom fee rate in sat/vB or gwei, overrides " +
				"--priority",
		},
		cli.DurationFlag{
			Name:  "refresh",
			Usage: "re-fetch the fee rate at this interval while waiting",
		},
	},
	Action: quote,
}

type quoteResponse struct {
	Valid            bool     `json:"valid"`
	Fee              string   `json:"fee"`
	AvailableBalance string   `json:"available_balance"`
	ExternalError    string   `json:"external_error,omitempty"`
	ValidationErrors []string `json:"validation_errors,omitempty"`

	Submission *submissionResponse `json:"submission,omitempty"`
}

type submissionResponse struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
	FeeRate string `json:"fee_rate"`
	Units   uint64 `json:"units"`
	Fee     string `json:"fee"`
}

func quote(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return cli.ShowCommandHelp(ctx, "quote")
	}

	cfg, err := getConfig(ctx)
	if err != nil {
		return err
	}

	address := ctx.Args().Get(0)
	amount, err := decimal.NewFromString(ctx.Args().Get(1))
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	balances, err := parseBalances(ctx)
	if err != nil {
		return err
	}

	dialCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	b, err := newBackend(dialCtx, cfg)
	if err != nil {
		return err
	}
	defer b.close()

	priority, err := parsePriority(ctx, b.unit)
	if err != nil {
		return err
	}

	updates := make(chan struct{}, 1)

	coordCfg := sendsync.DefaultConfig()
	coordCfg.FeeRates = b.feeRates
	coordCfg.Estimator = b.estimator
	coordCfg.Validator = b.validator
	coordCfg.Calculator = b.calculator
	coordCfg.Balances = sendsync.StaticBalances(balances)
	coordCfg.AmountDecimals = b.decimals
	coordCfg.InitialPriority = priority
	coordCfg.FetchTimeout = cfg.Timeout
	coordCfg.Observer = sendsync.ObserverFunc(
		func(sendsync.AggregateState) {
			select {
			case updates <- struct{}{}:
			default:
			}
		},
	)
	if interval := ctx.Duration("refresh"); interval > 0 {
		coordCfg.FeeRateTicker = ticker.New(interval)
	}

	coord, err := sendsync.New(coordCfg)
	if err != nil {
		return err
	}
	if err := coord.Start(); err != nil {
		return err
	}
	defer func() {
		_ = coord.Stop()
	}()

	if err := coord.SetAddress(address); err != nil {
		return err
	}
	if err := coord.SetAmount(amount); err != nil {
		return err
	}
	if err := coord.Initialize(); err != nil {
		return err
	}

	state, err := waitSettled(coord, updates, cfg.Timeout)
	if err != nil {
		return err
	}

	resp := &quoteResponse{
		Valid:            state.Valid,
		Fee:              state.Fee.String(),
		AvailableBalance: state.AvailableBalance.String(),
	}
	if state.ExternalError != nil {
		resp.ExternalError = state.ExternalError.Error()
	}
	for _, reason := range state.ValidationErrors {
		resp.ValidationErrors = append(
			resp.ValidationErrors, reason.Error(),
		)
	}

	if state.Valid {
		sub, err := coord.PrepareSubmission()
		if err != nil {
			return err
		}

		resp.Submission = &submissionResponse{
			Address: sub.Address,
			Amount:  sub.Amount.String(),
			FeeRate: b.unit.Format(sub.FeeRate),
			Units:   uint64(sub.Units),
			Fee:     sub.Fee.String(),
		}
	}

	printJSON(resp)

	return nil
}

// waitSettled blocks until no fetch is in flight.
func waitSettled(coord *sendsync.Coordinator, updates <-chan struct{},
	timeout time.Duration) (sendsync.AggregateState, error) {

	deadline := time.After(timeout)
	for {
		state, err := coord.State()
		if err != nil {
			return state, err
		}
		if !state.Loading {
			return state, nil
		}

		select {
		case <-updates:
		case <-deadline:
			return state, errors.New("timed out waiting for quote")
		}
	}
}

func parseBalances(ctx *cli.Context) (feecalc.Balances, error) {
	var balances feecalc.Balances

	if !ctx.IsSet("balance") {
		return balances, errors.New("--balance is required")
	}

	balance, err := decimal.NewFromString(ctx.String("balance"))
	if err != nil {
		return balances, fmt.Errorf("invalid balance: %w", err)
	}
	balances.Balance = balance

	if ctx.IsSet("feebalance") {
		feeBalance, err := decimal.NewFromString(ctx.String("feebalance"))
		if err != nil {
			return balances, fmt.Errorf("invalid fee balance: %w",
				err)
		}
		balances.FeeBalance = decimal.NewNullDecimal(feeBalance)
	}

	return balances, nil
}

func parsePriority(ctx *cli.Context, unit feerate.Unit) (feerate.Priority,
	error) {

	if ctx.IsSet("feerate") {
		value, err := decimal.NewFromString(ctx.String("feerate"))
		if err != nil {
			return feerate.Priority{}, fmt.Errorf("invalid fee "+
				"rate: %w", err)
		}

		rate, err := unit.FromPresentation(value)
		if err != nil {
			return feerate.Priority{}, err
		}

		return feerate.Custom(rate, feerate.Range{Min: 1}), nil
	}

	switch ctx.String("priority") {
	case "low":
		return feerate.Low(), nil
	case "recommended":
		return feerate.Recommended(), nil
	case "high":
		return feerate.High(), nil
	default:
		return feerate.Priority{}, fmt.Errorf("unknown priority %q",
			ctx.String("priority"))
	}
}
