package tx

import "github.com/bangjelkoski/injective-dexly/cosmos/rpc"

// SigningMetadata is the live chain state a single transaction is signed against.
type SigningMetadata struct {
	account       *rpc.Account
	timeoutHeight uint64
}

func (sm *SigningMetadata) Account() *rpc.Account {
	return sm.account
}

func (sm *SigningMetadata) AccountNumber() uint64 {
	return sm.account.AccountNumber
}

func (sm *SigningMetadata) Sequence() uint64 {
	return sm.account.Sequence
}

func (sm *SigningMetadata) TimeoutHeight() uint64 {
	return sm.timeoutHeight
}

// BroadcastResult is a transaction the node accepted into its mempool. Code is always zero.
type BroadcastResult struct {
	Code      uint32
	RawLog    string
	Codespace string
	TxHash    string
}
