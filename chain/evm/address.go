package evm

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lightninglabs/sendsync/validate"
)

// AddressValidator accepts hex addresses and returns them in EIP-55 form.
// Mixed case input must carry a valid checksum.
type AddressValidator struct{}

// ValidateAddress implements validate.AddressValidator.
func (AddressValidator) ValidateAddress(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("%w: not a hex address",
			validate.ErrInvalidAddress)
	}

	checksummed := common.HexToAddress(address).Hex()

	hex := strings.TrimPrefix(strings.TrimPrefix(address, "0x"), "0X")
	mixed := hex != strings.ToLower(hex) && hex != strings.ToUpper(hex)
	if mixed && "0x"+hex != checksummed {
		return "", fmt.Errorf("%w: bad checksum",
			validate.ErrInvalidAddress)
	}

	return checksummed, nil
}

var _ validate.AddressValidator = AddressValidator{}
