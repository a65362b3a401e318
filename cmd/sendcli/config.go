package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "sendcli.conf"
	defaultChain          = "btc"
	defaultNetwork        = "mainnet"
	defaultFeeSource      = "mempool"
	defaultDebugLevel     = "info"
	defaultTimeout        = 30 * time.Second
)

var (
	defaultConfigDir  = btcutil.AppDataDir("sendcli", false)
	defaultConfigFile = filepath.Join(defaultConfigDir, defaultConfigFilename)
)

type lndConfig struct {
	Host        string `long:"host" description:"lnd gRPC host:port"`
	MacaroonDir string `long:"macaroondir" description:"Directory holding lnd's macaroons"`
	TLSPath     string `long:"tlspath" description:"Path to lnd's TLS certificate"`
}

type evmConfig struct {
	RPCURL      string  `long:"rpcurl" description:"JSON-RPC endpoint of the node"`
	From        string  `long:"from" description:"Sending account, used for gas estimation"`
	MaxGasPrice float64 `long:"maxgasprice" description:"Cap on the gas price in gwei, 0 for none"`
}

// config is the file backed configuration of sendcli. Command line flags
// override it.
type config struct {
	Chain      string        `long:"chain" description:"Chain to quote for" choice:"btc" choice:"evm"`
	Network    string        `long:"network" description:"Bitcoin network" choice:"mainnet" choice:"testnet" choice:"regtest" choice:"signet"`
	FeeSource  string        `long:"feesource" description:"Bitcoin fee source" choice:"mempool" choice:"lnd"`
	MempoolURL string        `long:"mempoolurl" description:"mempool.space API base URL"`
	DebugLevel string        `long:"debuglevel" description:"Logging level for all subsystems"`
	Timeout    time.Duration `long:"timeout" description:"How long to wait for a quote"`

	Lnd *lndConfig `group:"lnd" namespace:"lnd"`
	Evm *evmConfig `group:"evm" namespace:"evm"`
}

func defaultConfig() *config {
	return &config{
		Chain:      defaultChain,
		Network:    defaultNetwork,
		FeeSource:  defaultFeeSource,
		MempoolURL: "https://mempool.space/api",
		DebugLevel: defaultDebugLevel,
		Timeout:    defaultTimeout,
		Lnd: &lndConfig{
			Host: "localhost:10009",
		},
		Evm: &evmConfig{},
	}
}

// loadConfig reads the INI file at path on top of the defaults. A missing
// file at the default location is not an error.
func loadConfig(path string) (*config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = defaultConfigFile
	}

	parser := flags.NewParser(cfg, flags.IgnoreUnknown)
	err := flags.NewIniParser(parser).ParseFile(path)
	switch {
	case err == nil:

	case errors.Is(err, os.ErrNotExist) && path == defaultConfigFile:

	default:
		return nil, fmt.Errorf("unable to load config %v: %w", path, err)
	}

	return cfg, cfg.validate()
}

func (c *config) validate() error {
	switch c.Chain {
	case "btc", "evm":
	default:
		return fmt.Errorf("unknown chain %q", c.Chain)
	}

	if _, err := c.netParams(); err != nil {
		return err
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %v", c.Timeout)
	}

	return nil
}

func (c *config) netParams() (*chaincfg.Params, error) {
	switch c.Network {
	case "mainnet":
		return &chaincfg.MainNetParams, nil
	case "testnet":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	default:
		return nil, fmt.Errorf("unknown network %q", c.Network)
	}
}
