package rpc

import (
	"context"

	txtypes "github.com/cosmos/cosmos-sdk/types/tx"
	"github.com/ethereum/go-ethereum/common"
)

// Account is the signing state of an address, fetched fresh for every transaction.
type Account struct {
	Address         string
	EthereumAddress common.Address
	AccountNumber   uint64
	Sequence        uint64
}

// ChainTip is the latest committed block height.
type ChainTip struct {
	Height uint64
}

// StateClient reads the account and block state needed to sign a transaction.
type StateClient interface {
	Account(ctx context.Context, address string) (*Account, error)
	LatestHeight(ctx context.Context) (*ChainTip, error)
}

// TxClient submits signed transactions to a node.
type TxClient interface {
	Broadcast(ctx context.Context, txBytes []byte) (*txtypes.BroadcastTxResponse, error)
}
