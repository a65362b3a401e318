package main

import (
	"fmt"
	"os"

	"github.com/btcsuite/btclog"
	"github.com/lightninglabs/sendsync"
	"github.com/lightninglabs/sendsync/chain/bitcoin"
	"github.com/lightninglabs/sendsync/chain/evm"
	"github.com/lightninglabs/sendsync/chain/lnd"
	"github.com/lightninglabs/sendsync/chain/mempool"
	"github.com/lightningnetwork/lnd/build"
)

// setupLoggers routes every subsystem to stderr at the given level.
func setupLoggers(debugLevel string) error {
	level, ok := btclog.LevelFromString(debugLevel)
	if !ok {
		return fmt.Errorf("invalid debug level %q", debugLevel)
	}

	backend := btclog.NewBackend(os.Stderr)
	genLogger := func(subsystem string) btclog.Logger {
		logger := backend.Logger(subsystem)
		logger.SetLevel(level)
		return logger
	}

	sendsync.UseLogger(build.NewSubLogger(sendsync.Subsystem, genLogger))
	mempool.UseLogger(build.NewSubLogger(mempool.Subsystem, genLogger))
	bitcoin.UseLogger(build.NewSubLogger(bitcoin.Subsystem, genLogger))
	evm.UseLogger(build.NewSubLogger(evm.Subsystem, genLogger))
	lnd.UseLogger(build.NewSubLogger(lnd.Subsystem, genLogger))

	return nil
}
