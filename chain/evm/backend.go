package evm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Backend is the subset of an Ethereum JSON-RPC client used for fee
// quotes.
type Backend interface {
	// SuggestGasPrice returns the node's gas price suggestion in wei.
	SuggestGasPrice(ctx context.Context) (*big.Int, error)

	// EstimateGas returns the gas a call would consume.
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
}

var _ Backend = (*ethclient.Client)(nil)
