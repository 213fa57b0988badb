package tx

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/bangjelkoski/injective-dexly/cosmos/rpc"
)

const (
	// Gas units requested by every chain transaction. Not simulated.
	DefaultGasLimit uint64 = 400_000

	// Price per gas unit, in the fee denom's base units.
	DefaultGasPrice int64 = 160_000_000

	// Blocks after the current tip during which a signed transaction stays valid.
	DefaultBlockTimeoutHeight uint64 = 90
)

// Fee is the fee paid by the signer for a single transaction.
type Fee struct {
	Amount   sdk.Coins
	GasLimit uint64
}

// DefaultFee pays DefaultGasPrice for DefaultGasLimit units, in denom.
func DefaultFee(denom string) Fee {
	return NewFee(denom, sdk.NewInt(DefaultGasPrice), DefaultGasLimit)
}

func NewFee(denom string, gasPrice sdk.Int, gasLimit uint64) Fee {
	amount := gasPrice.Mul(sdk.NewIntFromUint64(gasLimit))
	return Fee{
		Amount:   sdk.NewCoins(sdk.NewCoin(denom, amount)),
		GasLimit: gasLimit,
	}
}

func (f Fee) String() string {
	return fmt.Sprintf("%s (gas %d)", f.Amount, f.GasLimit)
}

// TimeoutHeight is the last height at which a transaction signed now may be included.
func TimeoutHeight(tip *rpc.ChainTip) uint64 {
	return tip.Height + DefaultBlockTimeoutHeight
}
