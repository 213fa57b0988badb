package crypto

import (
	"fmt"
	"strings"

	"github.com/cosmos/cosmos-sdk/types/bech32"
	"github.com/ethereum/go-ethereum/common"
)

// EthereumAddressFromBech32 returns the 20-byte address underlying a bech32 account address.
func EthereumAddressFromBech32(address string) (common.Address, error) {
	_, bz, err := bech32.DecodeAndConvert(address)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid bech32 address %q: %w", address, err)
	}
	if len(bz) != common.AddressLength {
		return common.Address{}, fmt.Errorf("address %q has %d bytes, expected %d", address, len(bz), common.AddressLength)
	}
	return common.BytesToAddress(bz), nil
}

// Bech32FromEthereumAddress encodes a 0x address under the given prefix.
func Bech32FromEthereumAddress(prefix, ethereumAddress string) (string, error) {
	if !common.IsHexAddress(ethereumAddress) {
		return "", fmt.Errorf("invalid ethereum address: %s", ethereumAddress)
	}
	return bech32.ConvertAndEncode(prefix, common.HexToAddress(ethereumAddress).Bytes())
}

// HasPrefix reports whether a bech32 address uses the expected human readable part.
func HasPrefix(address, prefix string) bool {
	hrp, _, err := bech32.DecodeAndConvert(address)
	return err == nil && strings.EqualFold(hrp, prefix)
}
