package tx

import (
	"context"
	"fmt"

	txtypes "github.com/cosmos/cosmos-sdk/types/tx"

	"github.com/bangjelkoski/injective-dexly/coding"
	"github.com/bangjelkoski/injective-dexly/cosmos/rpc"
	"github.com/bangjelkoski/injective-dexly/log"
	"github.com/bangjelkoski/injective-dexly/metrics"
	"github.com/bangjelkoski/injective-dexly/txerrors"
)

// Broadcaster submits signed transactions once and classifies the node's answer. It never retries.
type Broadcaster struct {
	endpoint string

	txClient rpc.TxClient
	metrics  *metrics.Metrics
	logger   *log.Logger
}

// NewBroadcaster makes a Broadcaster. endpoint only labels errors. recorder may be nil.
func NewBroadcaster(endpoint string, txClient rpc.TxClient, recorder *metrics.Metrics, logger *log.Logger) *Broadcaster {
	return &Broadcaster{
		endpoint: endpoint,

		txClient: txClient,
		metrics:  recorder,
		logger:   logger,
	}
}

// Broadcast returns a result for code 0, and a *txerrors.ChainRejectionError carrying the node's response
// verbatim for any other code.
func (b *Broadcaster) Broadcast(ctx context.Context, signedTx *SignedTransaction) (*BroadcastResult, error) {
	logger := b.logger.With("tx_hash", signedTx.Hash())
	logger.Debug("broadcasting transaction", "tx_bytes", coding.PayloadFingerprint(signedTx.Bytes()))

	response, err := b.txClient.Broadcast(ctx, signedTx.Bytes())
	if err != nil {
		b.metrics.RecordBroadcast(metrics.OutcomeNetworkFailed)
		logger.Error("failed to broadcast transaction", "error", err)
		return nil, txerrors.Network(b.endpoint, err)
	}

	isSuccess, err := IsSuccess(response)
	if err != nil {
		b.metrics.RecordBroadcast(metrics.OutcomeNetworkFailed)
		return nil, txerrors.Network(b.endpoint, err)
	}

	txResponse := response.TxResponse
	logger = logger.With("code", txResponse.Code, "codespace", txResponse.Codespace)

	if !isSuccess {
		b.metrics.RecordBroadcast(metrics.OutcomeRejected)

		rejection := &txerrors.ChainRejectionError{
			Code:      txResponse.Code,
			RawLog:    txResponse.RawLog,
			Codespace: txResponse.Codespace,
			TxHash:    txResponse.TxHash,
		}
		logger.Error("broadcasted, but got non-success response code", "error", rejection.RawLog, "gas_related", rejection.IsGasRelated())
		return nil, rejection
	}

	b.metrics.RecordBroadcast(metrics.OutcomeAccepted)
	logger.Info("📣 broadcasted transaction")

	return &BroadcastResult{
		Code:      txResponse.Code,
		RawLog:    txResponse.RawLog,
		Codespace: txResponse.Codespace,
		TxHash:    txResponse.TxHash,
	}, nil
}

// Helpers

func IsSuccess(broadcastResult *txtypes.BroadcastTxResponse) (bool, error) {
	if broadcastResult == nil {
		return false, fmt.Errorf("received nil broadcast tx result")
	}
	if broadcastResult.TxResponse == nil {
		return false, fmt.Errorf("received nil tx response in broadcast tx result")
	}

	// Note: Zero codes do not have a codespace on them
	return broadcastResult.TxResponse.Code == 0, nil
}
