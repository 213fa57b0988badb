// Package web3 handles the execution layer side of a peggy bridge deposit.
package web3

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/bangjelkoski/injective-dexly/messages"
	"github.com/bangjelkoski/injective-dexly/txerrors"
	"github.com/bangjelkoski/injective-dexly/wallet"
)

// Gas limits for bridge transactions
const (
	DefaultPeggyGasLimit   uint64 = 200_000
	DefaultApproveGasLimit uint64 = 60_000
)

const peggyABI = `[{
	"name": "sendToInjective",
	"type": "function",
	"stateMutability": "nonpayable",
	"inputs": [
		{"name": "_tokenContract", "type": "address"},
		{"name": "_destination", "type": "bytes32"},
		{"name": "_amount", "type": "uint256"}
	],
	"outputs": []
}]`

const erc20ABI = `[{
	"name": "approve",
	"type": "function",
	"stateMutability": "nonpayable",
	"inputs": [
		{"name": "spender", "type": "address"},
		{"name": "amount", "type": "uint256"}
	],
	"outputs": [{"name": "", "type": "bool"}]
}]`

var (
	peggyContractABI = mustParseABI(peggyABI)
	erc20ContractABI = mustParseABI(erc20ABI)
)

// ComposePeggyTransfer builds the sendToInjective call depositing msg's tokens into the bridge.
func ComposePeggyTransfer(msg *messages.PeggyTransfer, peggyContract common.Address, gasLimit uint64) (wallet.TransactionRequest, error) {
	if msg == nil {
		return wallet.TransactionRequest{}, txerrors.Encoding("peggy_transfer", fmt.Errorf("no message"))
	}
	if gasLimit == 0 {
		return wallet.TransactionRequest{}, txerrors.Encoding("gas", fmt.Errorf("gas limit is required"))
	}

	data, err := peggyContractABI.Pack("sendToInjective", msg.Token(), msg.DestinationBytes32(), msg.Amount())
	if err != nil {
		return wallet.TransactionRequest{}, txerrors.Encoding("data", err)
	}

	return wallet.TransactionRequest{
		From:     msg.Source(),
		To:       &peggyContract,
		Gas:      hexutil.Uint64(gasLimit),
		GasPrice: (*hexutil.Big)(msg.GasPrice()),
		Data:     data,
	}, nil
}

// ComposeApproval lets the bridge contract pull up to msg's amount of its token from the source account.
// A deposit fails on chain without a sufficient allowance.
func ComposeApproval(msg *messages.PeggyTransfer, peggyContract common.Address, gasLimit uint64) (wallet.TransactionRequest, error) {
	if msg == nil {
		return wallet.TransactionRequest{}, txerrors.Encoding("peggy_transfer", fmt.Errorf("no message"))
	}
	if gasLimit == 0 {
		return wallet.TransactionRequest{}, txerrors.Encoding("gas", fmt.Errorf("gas limit is required"))
	}

	data, err := erc20ContractABI.Pack("approve", peggyContract, msg.Amount())
	if err != nil {
		return wallet.TransactionRequest{}, txerrors.Encoding("data", err)
	}

	token := msg.Token()
	return wallet.TransactionRequest{
		From:     msg.Source(),
		To:       &token,
		Gas:      hexutil.Uint64(gasLimit),
		GasPrice: (*hexutil.Big)(msg.GasPrice()),
		Data:     data,
	}, nil
}

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return parsed
}
