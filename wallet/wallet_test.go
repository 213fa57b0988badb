package wallet_test

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bangjelkoski/injective-dexly/crypto"
	"github.com/bangjelkoski/injective-dexly/log"
	"github.com/bangjelkoski/injective-dexly/txerrors"
	"github.com/bangjelkoski/injective-dexly/wallet"
)

const testPrivateKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

var testAddress = common.HexToAddress("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23")

// stubProvider answers every request with a fixed JSON response or error.
type stubProvider struct {
	response string
	err      error

	method string
	args   []interface{}
}

func (p *stubProvider) CallContext(_ context.Context, result interface{}, method string, args ...interface{}) error {
	p.method = method
	p.args = args
	if p.err != nil {
		return p.err
	}
	return json.Unmarshal([]byte(p.response), result)
}

// fakeNode records submitted transactions and serves receipts once they are "mined".
type fakeNode struct {
	nonce    uint64
	sent     []*types.Transaction
	receipts map[common.Hash]*types.Receipt
}

func (n *fakeNode) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return n.nonce, nil
}

func (n *fakeNode) SendTransaction(_ context.Context, tx *types.Transaction) error {
	n.sent = append(n.sent, tx)
	return nil
}

func (n *fakeNode) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, found := n.receipts[hash]
	if !found {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

func newLocalProvider(t *testing.T) *wallet.LocalProvider {
	t.Helper()

	privateKey, err := ethcrypto.HexToECDSA(testPrivateKey)
	require.NoError(t, err)
	return wallet.NewLocalProvider(crypto.NewEthermintKeyPairFromECDSA(privateKey), log.Discard())
}

func testTypedData() apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
			},
			"Order": {
				{Name: "order_type", Type: "int32"},
				{Name: "price", Type: "string"},
			},
		},
		PrimaryType: "Order",
		Domain: apitypes.TypedDataDomain{
			Name:    "Test",
			Version: "1",
			ChainId: math.NewHexOrDecimal256(888),
		},
		Message: apitypes.TypedDataMessage{
			"order_type": float64(2),
			"price":      "1.5",
		},
	}
}

func TestSignTypedDataWithLocalProvider(t *testing.T) {
	provider := newLocalProvider(t)
	signer := wallet.NewSigner(provider, nil, log.Discard())

	typedData := testTypedData()
	payload, err := json.Marshal(typedData)
	require.NoError(t, err)

	signature, err := signer.SignTypedData(context.Background(), testAddress, payload)
	require.NoError(t, err)
	require.Len(t, signature, crypto.SignatureLength)

	recovered, err := crypto.RecoverTypedDataPubKey(typedData, signature)
	require.NoError(t, err)
	assert.Equal(t, testAddress, recovered.EthereumAddress())
}

func TestLocalProviderRejectsForeignAccount(t *testing.T) {
	signer := wallet.NewSigner(newLocalProvider(t), nil, log.Discard())

	payload, err := json.Marshal(testTypedData())
	require.NoError(t, err)

	_, err = signer.SignTypedData(context.Background(), common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"), payload)
	require.Error(t, err)
	assert.True(t, txerrors.IsWalletError(err))
	assert.ErrorIs(t, err, wallet.ErrUnknownAccount)
}

func TestSignTypedDataFailures(t *testing.T) {
	rejected := errors.New("User denied message signature")

	cases := map[string]wallet.Provider{
		"user rejection": &stubProvider{err: rejected},
		"not hex":        &stubProvider{response: `"zz"`},
		"short":          &stubProvider{response: `"0x1234"`},
		"not a string":   &stubProvider{response: `{"signature":"0x00"}`},
		"no provider":    nil,
	}

	for name, provider := range cases {
		t.Run(name, func(t *testing.T) {
			signer := wallet.NewSigner(provider, nil, log.Discard())

			_, err := signer.SignTypedData(context.Background(), testAddress, []byte(`{}`))
			require.Error(t, err)
			assert.True(t, txerrors.IsWalletError(err))
		})
	}

	signer := wallet.NewSigner(&stubProvider{err: rejected}, nil, log.Discard())
	_, err := signer.SignTypedData(context.Background(), testAddress, []byte(`{}`))
	assert.ErrorIs(t, err, rejected)
}

func TestSignTypedDataRequestShape(t *testing.T) {
	signature := "0x" + common.Bytes2Hex(make([]byte, 65))
	provider := &stubProvider{response: `"` + signature + `"`}
	signer := wallet.NewSigner(provider, nil, log.Discard())

	_, err := signer.SignTypedData(context.Background(), testAddress, []byte(`{"primaryType":"Tx"}`))
	require.NoError(t, err)

	assert.Equal(t, wallet.MethodSignTypedData, provider.method)
	assert.Equal(t, []interface{}{testAddress.Hex(), `{"primaryType":"Tx"}`}, provider.args)
}

func TestLocalProviderSendTransaction(t *testing.T) {
	node := &fakeNode{nonce: 7, receipts: map[common.Hash]*types.Receipt{}}
	provider := newLocalProvider(t).WithExecutionNode(node, 11155111)
	signer := wallet.NewSigner(provider, nil, log.Discard())

	to := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	hash, err := signer.SendTransaction(context.Background(), wallet.TransactionRequest{
		From:     testAddress,
		To:       &to,
		Gas:      hexutil.Uint64(21000),
		GasPrice: (*hexutil.Big)(big.NewInt(1_000_000_000)),
		Data:     hexutil.Bytes{0x01, 0x02},
	})
	require.NoError(t, err)

	require.Len(t, node.sent, 1)
	sent := node.sent[0]
	assert.Equal(t, hash, sent.Hash())
	assert.Equal(t, uint64(7), sent.Nonce())
	assert.Equal(t, uint64(21000), sent.Gas())
	assert.Equal(t, &to, sent.To())

	sender, err := types.Sender(types.NewEIP155Signer(big.NewInt(11155111)), sent)
	require.NoError(t, err)
	assert.Equal(t, testAddress, sender)

	// Pending until the node has a receipt
	var receipt *types.Receipt
	require.NoError(t, provider.CallContext(context.Background(), &receipt, wallet.MethodTransactionReceipt, hash))
	assert.Nil(t, receipt)

	node.receipts[hash] = &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash, Logs: []*types.Log{}}
	require.NoError(t, provider.CallContext(context.Background(), &receipt, wallet.MethodTransactionReceipt, hash.Hex()))
	require.NotNil(t, receipt)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	assert.Equal(t, hash, receipt.TxHash)
}

func TestLocalProviderWithoutNode(t *testing.T) {
	signer := wallet.NewSigner(newLocalProvider(t), nil, log.Discard())

	_, err := signer.SendTransaction(context.Background(), wallet.TransactionRequest{From: testAddress})
	assert.True(t, txerrors.IsWalletError(err))
	assert.ErrorIs(t, err, wallet.ErrNoExecutionNode)
}

func TestLocalProviderAccounts(t *testing.T) {
	var accounts []common.Address
	require.NoError(t, newLocalProvider(t).CallContext(context.Background(), &accounts, wallet.MethodAccounts))
	assert.Equal(t, []common.Address{testAddress}, accounts)

	var ignored interface{}
	err := newLocalProvider(t).CallContext(context.Background(), &ignored, "eth_sign")
	assert.ErrorIs(t, err, wallet.ErrMethodNotAllowed)
}

func TestSignerAccountsFromLocalProvider(t *testing.T) {
	signer := wallet.NewSigner(newLocalProvider(t), nil, log.Discard())

	accounts, err := signer.Accounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []common.Address{testAddress}, accounts)
}

func TestSignerAccountsFailures(t *testing.T) {
	cases := map[string]struct {
		provider wallet.Provider
		target   error
	}{
		"user rejection": {provider: &stubProvider{err: errors.New("User rejected the request")}},
		"no accounts":    {provider: &stubProvider{response: `[]`}, target: wallet.ErrNoAccounts},
		"no provider":    {provider: nil, target: wallet.ErrNoProvider},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := wallet.NewSigner(tc.provider, nil, log.Discard()).Accounts(context.Background())
			require.Error(t, err)
			assert.True(t, txerrors.IsWalletError(err))
			if tc.target != nil {
				assert.ErrorIs(t, err, tc.target)
			}
		})
	}

	provider := &stubProvider{response: `["0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"]`}
	_, err := wallet.NewSigner(provider, nil, log.Discard()).Accounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, wallet.MethodRequestAccounts, provider.method)
}

func TestSignTypedDataAcceptsUnprefixedHex(t *testing.T) {
	provider := &stubProvider{response: `"` + common.Bytes2Hex(make([]byte, 65)) + `"`}

	signature, err := wallet.NewSigner(provider, nil, log.Discard()).SignTypedData(context.Background(), testAddress, []byte(`{}`))
	require.NoError(t, err)
	assert.Len(t, signature, crypto.SignatureLength)

	provider = &stubProvider{response: `"0x` + common.Bytes2Hex(make([]byte, 66)) + `"`}
	_, err = wallet.NewSigner(provider, nil, log.Discard()).SignTypedData(context.Background(), testAddress, []byte(`{}`))
	assert.True(t, txerrors.IsWalletError(err))
}
