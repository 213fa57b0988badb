package web3_test

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bangjelkoski/injective-dexly/log"
	"github.com/bangjelkoski/injective-dexly/messages"
	"github.com/bangjelkoski/injective-dexly/metrics"
	"github.com/bangjelkoski/injective-dexly/txerrors"
	"github.com/bangjelkoski/injective-dexly/wallet"
	"github.com/bangjelkoski/injective-dexly/web3"
)

const (
	pollInterval = 25 * time.Millisecond

	usdt  = "0xdAC17F958D2ee523a2206206994597C13D831ec7"
	peggy = "0xF955C57f9EA9Dc8781965FEaE0b6A2acE2BAD6f3"
	owner = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

var txHash = common.HexToHash("0x5d1d3e2b0e2fbb7b44f1ef5f0c8a5b1b8b7c8e5a1a3f4e6d7c8b9a0f1e2d3c4b")

var receiptJSON = `{
	"type": "0x0",
	"root": "0x",
	"status": "0x1",
	"cumulativeGasUsed": "0x5208",
	"logsBloom": "0x` + zeroBloom + `",
	"logs": [],
	"transactionHash": "0x5d1d3e2b0e2fbb7b44f1ef5f0c8a5b1b8b7c8e5a1a3f4e6d7c8b9a0f1e2d3c4b",
	"contractAddress": "0x0000000000000000000000000000000000000000",
	"gasUsed": "0x5208",
	"blockHash": "0x0000000000000000000000000000000000000000000000000000000000000001",
	"blockNumber": "0x10",
	"transactionIndex": "0x0"
}`

var zeroBloom = strings.Repeat("0", 2*types.BloomByteLength)

// scriptedProvider answers eth_sendTransaction with txHash and eth_getTransactionReceipt from a script.
type scriptedProvider struct {
	lock *sync.Mutex

	receipts []string
	err      error

	sent     []wallet.TransactionRequest
	polledAt []time.Time
}

func newScriptedProvider(receipts ...string) *scriptedProvider {
	return &scriptedProvider{lock: &sync.Mutex{}, receipts: receipts}
}

func (p *scriptedProvider) CallContext(_ context.Context, result interface{}, method string, args ...interface{}) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	switch method {
	case wallet.MethodSendTransaction:
		p.sent = append(p.sent, args[0].(wallet.TransactionRequest))
		return json.Unmarshal([]byte(`"`+txHash.Hex()+`"`), result)
	case wallet.MethodTransactionReceipt:
		p.polledAt = append(p.polledAt, time.Now())
		if p.err != nil {
			return p.err
		}

		response := "null"
		if len(p.receipts) > 0 {
			response = p.receipts[0]
			p.receipts = p.receipts[1:]
		}
		return json.Unmarshal([]byte(response), result)
	}
	return errors.New("unexpected method " + method)
}

func newConfirmer(provider wallet.Provider, attempts uint, recorder *metrics.Metrics) *web3.ReceiptConfirmer {
	signer := wallet.NewSigner(provider, recorder, log.Discard())
	return web3.NewReceiptConfirmer("test", provider, signer, attempts, recorder, log.Discard()).WithPollInterval(pollInterval)
}

func newTransfer(t *testing.T) *messages.PeggyTransfer {
	t.Helper()

	transfer, err := messages.NewPeggyTransfer(usdt, "12.3456", owner, "inj1wzvhjux9rqfdcwspp37srdgwp5tac7wgplgfd7", big.NewInt(20_000_000_000), 6)
	require.NoError(t, err)
	return transfer
}

func TestConfirmerResolvesAfterTwoEmptyPolls(t *testing.T) {
	provider := newScriptedProvider("null", "null", receiptJSON)
	confirmer := newConfirmer(provider, 10, nil)

	start := time.Now()
	receipt, err := confirmer.WaitForReceipt(context.Background(), txHash)
	elapsed := time.Since(start)
	require.NoError(t, err)

	assert.Equal(t, txHash, receipt.TxHash)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	assert.Equal(t, int64(16), receipt.BlockNumber.Int64())

	require.Len(t, provider.polledAt, 3)
	assert.GreaterOrEqual(t, elapsed, 2*pollInterval)
	assert.GreaterOrEqual(t, provider.polledAt[1].Sub(provider.polledAt[0]), pollInterval)
	assert.GreaterOrEqual(t, provider.polledAt[2].Sub(provider.polledAt[1]), pollInterval)
}

func TestConfirmerFirstPollIsImmediate(t *testing.T) {
	provider := newScriptedProvider(receiptJSON)
	confirmer := newConfirmer(provider, 10, nil).WithPollInterval(time.Hour)

	receipt, err := confirmer.WaitForReceipt(context.Background(), txHash)
	require.NoError(t, err)
	assert.NotNil(t, receipt)
	assert.Len(t, provider.polledAt, 1)
}

func TestConfirmerTimesOut(t *testing.T) {
	registry := prometheus.NewRegistry()
	provider := newScriptedProvider()
	confirmer := newConfirmer(provider, 3, metrics.New(registry))

	_, err := confirmer.WaitForReceipt(context.Background(), txHash)
	require.Error(t, err)
	assert.True(t, txerrors.IsTimeoutError(err))

	var timeout *txerrors.TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, uint(3), timeout.Attempts)
	assert.Len(t, provider.polledAt, 3)

	count, err := testutil.GatherAndCount(registry, "dexly_receipt_polls")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestConfirmerStopsOnTransportError(t *testing.T) {
	provider := newScriptedProvider()
	provider.err = errors.New("connection refused")
	confirmer := newConfirmer(provider, 10, nil)

	_, err := confirmer.WaitForReceipt(context.Background(), txHash)
	require.Error(t, err)
	assert.True(t, txerrors.IsNetworkError(err))
	assert.Len(t, provider.polledAt, 1)
}

func TestConfirmerMalformedReceipt(t *testing.T) {
	provider := newScriptedProvider(`{"status":"0x1"}`)
	confirmer := newConfirmer(provider, 10, nil)

	_, err := confirmer.WaitForReceipt(context.Background(), txHash)
	assert.True(t, txerrors.IsNetworkError(err))
}

func TestConfirmerHonorsCancellation(t *testing.T) {
	provider := newScriptedProvider()
	confirmer := newConfirmer(provider, 1000, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 3*pollInterval)
	defer cancel()

	_, err := confirmer.WaitForReceipt(ctx, txHash)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, txerrors.IsTimeoutError(err))
}

func TestComposePeggyTransfer(t *testing.T) {
	transfer := newTransfer(t)

	request, err := web3.ComposePeggyTransfer(transfer, common.HexToAddress(peggy), web3.DefaultPeggyGasLimit)
	require.NoError(t, err)

	assert.Equal(t, common.HexToAddress(owner), request.From)
	assert.Equal(t, common.HexToAddress(peggy), *request.To)
	assert.Equal(t, uint64(web3.DefaultPeggyGasLimit), uint64(request.Gas))
	assert.Equal(t, "20000000000", request.GasPrice.ToInt().String())

	data := []byte(request.Data)
	require.Len(t, data, 4+3*32)
	assert.Equal(t, crypto.Keccak256([]byte("sendToInjective(address,bytes32,uint256)"))[:4], data[:4])
	assert.Equal(t, common.HexToAddress(usdt), common.BytesToAddress(data[4:36]))

	destination := transfer.DestinationBytes32()
	assert.Equal(t, destination[:], data[36:68])
	// 12.3456 is cut to 12.345 before scaling by 6 decimals
	assert.Equal(t, "12345000", new(big.Int).SetBytes(data[68:100]).String())
}

func TestComposeApproval(t *testing.T) {
	request, err := web3.ComposeApproval(newTransfer(t), common.HexToAddress(peggy), web3.DefaultApproveGasLimit)
	require.NoError(t, err)

	assert.Equal(t, common.HexToAddress(usdt), *request.To)
	data := []byte(request.Data)
	require.Len(t, data, 4+2*32)
	assert.Equal(t, crypto.Keccak256([]byte("approve(address,uint256)"))[:4], data[:4])
	assert.Equal(t, common.HexToAddress(peggy), common.BytesToAddress(data[4:36]))
}

func TestComposeRejectsMissingInput(t *testing.T) {
	_, err := web3.ComposePeggyTransfer(nil, common.HexToAddress(peggy), 1)
	assert.True(t, txerrors.IsEncodingError(err))

	_, err = web3.ComposePeggyTransfer(newTransfer(t), common.HexToAddress(peggy), 0)
	assert.True(t, txerrors.IsEncodingError(err))
}

func TestBridgeTransfer(t *testing.T) {
	provider := newScriptedProvider("null", receiptJSON)
	bridge := web3.NewBridge(common.HexToAddress(peggy), 0, newConfirmer(provider, 5, nil), log.Discard())

	receipt, err := bridge.Transfer(context.Background(), newTransfer(t))
	require.NoError(t, err)
	assert.Equal(t, txHash, receipt.TxHash)

	require.Len(t, provider.sent, 1)
	assert.Equal(t, uint64(web3.DefaultPeggyGasLimit), uint64(provider.sent[0].Gas))
	assert.Len(t, provider.polledAt, 2)
}

func TestBridgeTransferWalletRejection(t *testing.T) {
	provider := &rejectingProvider{}
	bridge := web3.NewBridge(common.HexToAddress(peggy), 0, newConfirmer(provider, 5, nil), log.Discard())

	_, err := bridge.Transfer(context.Background(), newTransfer(t))
	assert.True(t, txerrors.IsWalletError(err))
}

type rejectingProvider struct{}

func (rejectingProvider) CallContext(context.Context, interface{}, string, ...interface{}) error {
	return errors.New("User denied transaction signature")
}
