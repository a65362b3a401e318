package bitcoin

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/lightninglabs/sendsync/validate"
)

// AddressValidator accepts addresses encoded for a single network.
type AddressValidator struct {
	params *chaincfg.Params
}

// NewAddressValidator creates an AddressValidator for the given network.
func NewAddressValidator(params *chaincfg.Params) *AddressValidator {
	return &AddressValidator{
		params: params,
	}
}

// ValidateAddress decodes the address and returns its canonical encoding.
func (v *AddressValidator) ValidateAddress(address string) (string, error) {
	addr, err := v.decode(address)
	if err != nil {
		return "", err
	}

	return addr.EncodeAddress(), nil
}

func (v *AddressValidator) decode(address string) (btcutil.Address, error) {
	addr, err := btcutil.DecodeAddress(address, v.params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", validate.ErrInvalidAddress, err)
	}

	if !addr.IsForNet(v.params) {
		return nil, fmt.Errorf("%w: address is not for %s",
			validate.ErrInvalidAddress, v.params.Name)
	}

	return addr, nil
}

// PkScript returns the output script paying to address.
func (v *AddressValidator) PkScript(address string) ([]byte, error) {
	addr, err := v.decode(address)
	if err != nil {
		return nil, err
	}

	return txscript.PayToAddrScript(addr)
}

var _ validate.AddressValidator = (*AddressValidator)(nil)
