package messages

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bangjelkoski/injective-dexly/crypto"
	"github.com/bangjelkoski/injective-dexly/txerrors"
)

const (
	// Fractional digits kept from a bridged amount before it is scaled
	PeggyAmountPrecision = 3

	maxUint256Bits = 256
)

// PeggyTransfer moves an ERC-20 token from an execution layer account into a chain account
// through the peggy bridge contract.
type PeggyTransfer struct {
	token       common.Address
	amount      *big.Int
	source      common.Address
	destination common.Address
	gasPrice    *big.Int
}

// NewPeggyTransfer builds a bridge deposit. source is the 0x account paying for the deposit, destination
// may be either a 0x or a bech32 address. gasPrice is in wei and must be positive.
func NewPeggyTransfer(token, amount, source, destination string, gasPrice *big.Int, decimals int32) (*PeggyTransfer, error) {
	if !common.IsHexAddress(token) {
		return nil, txerrors.Encoding("token", fmt.Errorf("invalid token contract %q", token))
	}
	if !common.IsHexAddress(source) {
		return nil, txerrors.Encoding("source", fmt.Errorf("invalid ethereum address %q", source))
	}
	destinationAddress, err := parseAnyAddress(destination)
	if err != nil {
		return nil, txerrors.Encoding("destination", err)
	}
	if gasPrice == nil || gasPrice.Sign() <= 0 {
		return nil, txerrors.Encoding("gas_price", fmt.Errorf("gas price must be positive"))
	}

	scaled, err := ScaleAmountAtPrecision(amount, PeggyAmountPrecision, decimals)
	if err != nil {
		return nil, err
	}
	value, ok := new(big.Int).SetString(scaled, 10)
	if !ok {
		return nil, txerrors.Encoding("amount", fmt.Errorf("not an integer: %s", scaled))
	}
	// uint256 calldata would silently wrap anything wider
	if value.BitLen() > maxUint256Bits {
		return nil, txerrors.Encoding("amount", fmt.Errorf("%s base units does not fit in uint256", scaled))
	}

	return &PeggyTransfer{
		token:       common.HexToAddress(token),
		amount:      value,
		source:      common.HexToAddress(source),
		destination: destinationAddress,
		gasPrice:    new(big.Int).Set(gasPrice),
	}, nil
}

func (m *PeggyTransfer) Kind() Kind { return KindPeggyTransfer }
func (m *PeggyTransfer) isMessage() {}

func (m *PeggyTransfer) Token() common.Address       { return m.token }
func (m *PeggyTransfer) Source() common.Address      { return m.source }
func (m *PeggyTransfer) Destination() common.Address { return m.destination }

// Amount in the token's base units. Callers receive a copy.
func (m *PeggyTransfer) Amount() *big.Int { return new(big.Int).Set(m.amount) }

func (m *PeggyTransfer) GasPrice() *big.Int { return new(big.Int).Set(m.gasPrice) }

// DestinationBytes32 is the destination address left padded to 32 bytes, as the bridge contract expects.
func (m *PeggyTransfer) DestinationBytes32() [32]byte {
	var out [32]byte
	copy(out[12:], m.destination.Bytes())
	return out
}

func parseAnyAddress(address string) (common.Address, error) {
	if strings.HasPrefix(address, "0x") || strings.HasPrefix(address, "0X") {
		if !common.IsHexAddress(address) {
			return common.Address{}, fmt.Errorf("invalid ethereum address %q", address)
		}
		return common.HexToAddress(address), nil
	}
	return crypto.EthereumAddressFromBech32(address)
}
