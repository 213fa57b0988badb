// Package wallet talks to the external signing authority holding the user's key.
package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// Provider is an EIP-1193 style request channel. The result is decoded from the JSON response into result.
type Provider interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

const (
	MethodSignTypedData      = "eth_signTypedData_v4"
	MethodSendTransaction    = "eth_sendTransaction"
	MethodTransactionReceipt = "eth_getTransactionReceipt"
	MethodAccounts           = "eth_accounts"
	MethodRequestAccounts    = "eth_requestAccounts"
)

// TransactionRequest is the eth_sendTransaction parameter object. The wallet fills in nonce and signs.
type TransactionRequest struct {
	From     common.Address  `json:"from"`
	To       *common.Address `json:"to,omitempty"`
	Gas      hexutil.Uint64  `json:"gas"`
	GasPrice *hexutil.Big    `json:"gasPrice,omitempty"`
	Value    *hexutil.Big    `json:"value,omitempty"`
	Data     hexutil.Bytes   `json:"data,omitempty"`
}

// RpcProvider forwards requests to a wallet bridge over HTTP, WebSocket or IPC.
type RpcProvider struct {
	client *rpc.Client
}

// Ensure that RpcProvider implements Provider
var _ Provider = (*RpcProvider)(nil)

func DialRpcProvider(ctx context.Context, url string) (*RpcProvider, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return &RpcProvider{client: client}, nil
}

func (p *RpcProvider) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	return p.client.CallContext(ctx, result, method, args...)
}

func (p *RpcProvider) Close() {
	p.client.Close()
}
