package main

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/lightninglabs/lndclient"
	"github.com/lightninglabs/sendsync/chain/bitcoin"
	"github.com/lightninglabs/sendsync/chain/evm"
	"github.com/lightninglabs/sendsync/chain/lnd"
	"github.com/lightninglabs/sendsync/chain/mempool"
	"github.com/lightninglabs/sendsync/estimate"
	"github.com/lightninglabs/sendsync/feecalc"
	"github.com/lightninglabs/sendsync/feerate"
	"github.com/lightninglabs/sendsync/validate"
	"github.com/shopspring/decimal"
)

// backend bundles the chain specific collaborators of a coordinator.
type backend struct {
	feeRates   feerate.Fetcher
	estimator  estimate.Estimator
	validator  *validate.Validator
	calculator feecalc.Calculator
	decimals   int32
	unit       feerate.Unit
	close      func()
}

func newBackend(ctx context.Context, cfg *config) (*backend, error) {
	switch cfg.Chain {
	case "btc":
		return newBitcoinBackend(cfg)
	case "evm":
		return newEVMBackend(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown chain %q", cfg.Chain)
	}
}

func newBitcoinBackend(cfg *config) (*backend, error) {
	params, err := cfg.netParams()
	if err != nil {
		return nil, err
	}

	b := &backend{
		calculator: feecalc.Calculator{Decimals: 8},
		decimals:   8,
		unit:       feerate.SatPerVByte,
		close:      func() {},
	}

	switch cfg.FeeSource {
	case "mempool":
		clientCfg := mempool.DefaultConfig()
		clientCfg.BaseURL = cfg.MempoolURL
		if err := clientCfg.Validate(); err != nil {
			return nil, err
		}

		b.feeRates = mempool.NewFeeSource(
			mempool.DefaultFeeSourceConfig(mempool.NewClient(clientCfg)),
		)

	case "lnd":
		services, err := lndclient.NewLndServices(
			&lndclient.LndServicesConfig{
				LndAddress:  cfg.Lnd.Host,
				Network:     lndclient.Network(cfg.Network),
				MacaroonDir: cfg.Lnd.MacaroonDir,
				TLSPath:     cfg.Lnd.TLSPath,
			},
		)
		if err != nil {
			return nil, fmt.Errorf("unable to connect to lnd: %w",
				err)
		}

		source, err := lnd.NewFeeSource(lnd.DefaultConfig(
			services.WalletKit,
		))
		if err != nil {
			services.Close()
			return nil, err
		}

		b.feeRates = source
		b.close = services.Close

	default:
		return nil, fmt.Errorf("unknown fee source %q", cfg.FeeSource)
	}

	b.estimator, err = bitcoin.NewSizeEstimator(
		bitcoin.DefaultSizeEstimatorConfig(params),
	)
	if err != nil {
		b.close()
		return nil, err
	}

	b.validator, err = validate.New(&validate.Config{
		Address: bitcoin.NewAddressValidator(params),
		Amount:  bitcoin.DustValidator{},
	})
	if err != nil {
		b.close()
		return nil, err
	}

	return b, nil
}

func newEVMBackend(ctx context.Context, cfg *config) (*backend, error) {
	if cfg.Evm.RPCURL == "" {
		return nil, fmt.Errorf("evm.rpcurl is required")
	}

	client, err := ethclient.DialContext(ctx, cfg.Evm.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("unable to dial %v: %w", cfg.Evm.RPCURL,
			err)
	}

	priceCfg := evm.DefaultGasPriceConfig(client)
	if cfg.Evm.MaxGasPrice > 0 {
		maxGwei := decimal.NewFromFloat(cfg.Evm.MaxGasPrice)
		maxRate, err := feerate.Gwei.FromPresentation(maxGwei)
		if err != nil {
			client.Close()
			return nil, err
		}
		priceCfg.MaxGasPrice = new(big.Int).SetUint64(uint64(maxRate))
	}

	validator, err := validate.New(&validate.Config{
		Address: evm.AddressValidator{},
	})
	if err != nil {
		client.Close()
		return nil, err
	}

	return &backend{
		feeRates: evm.NewGasPriceSource(priceCfg),
		estimator: evm.NewGasEstimator(&evm.GasEstimatorConfig{
			Backend: client,
			From:    common.HexToAddress(cfg.Evm.From),
		}),
		validator:  validator,
		calculator: feecalc.Calculator{Decimals: 18},
		decimals:   18,
		unit:       feerate.Gwei,
		close:      client.Close,
	}, nil
}
