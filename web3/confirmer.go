package web3

import (
	"context"
	"errors"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/bangjelkoski/injective-dexly/log"
	"github.com/bangjelkoski/injective-dexly/metrics"
	"github.com/bangjelkoski/injective-dexly/txerrors"
	"github.com/bangjelkoski/injective-dexly/wallet"
)

const (
	// Fixed delay between receipt queries. There is no backoff.
	DefaultPollInterval = 1 * time.Second

	DefaultReceiptPollAttempts uint = 120
)

// ErrReceiptPending means the node has no receipt for the transaction yet.
var ErrReceiptPending = errors.New("transaction receipt not yet available")

// ReceiptConfirmer submits execution layer transactions through the wallet and waits for their receipts.
type ReceiptConfirmer struct {
	// Parameters
	endpoint     string
	pollInterval time.Duration
	attempts     uint

	// Services
	logger   *log.Logger
	metrics  *metrics.Metrics
	provider wallet.Provider
	signer   *wallet.Signer
}

// NewReceiptConfirmer makes a confirmer polling at DefaultPollInterval. endpoint only labels errors. recorder may be nil.
// An attempts value of zero is replaced by DefaultReceiptPollAttempts.
func NewReceiptConfirmer(endpoint string, provider wallet.Provider, signer *wallet.Signer, attempts uint, recorder *metrics.Metrics, logger *log.Logger) *ReceiptConfirmer {
	if attempts == 0 {
		attempts = DefaultReceiptPollAttempts
	}

	return &ReceiptConfirmer{
		endpoint:     endpoint,
		pollInterval: DefaultPollInterval,
		attempts:     attempts,

		logger:   logger,
		metrics:  recorder,
		provider: provider,
		signer:   signer,
	}
}

// WithPollInterval overrides the delay between receipt queries.
func (rc *ReceiptConfirmer) WithPollInterval(interval time.Duration) *ReceiptConfirmer {
	rc.pollInterval = interval
	return rc
}

// SendAndConfirm submits request through the wallet and blocks until it is included, ctx is done, or attempts run out.
func (rc *ReceiptConfirmer) SendAndConfirm(ctx context.Context, request wallet.TransactionRequest) (*types.Receipt, error) {
	txHash, err := rc.signer.SendTransaction(ctx, request)
	if err != nil {
		return nil, err
	}
	rc.logger.Info("submitted execution layer transaction", "tx_hash", txHash.Hex())

	return rc.WaitForReceipt(ctx, txHash)
}

// WaitForReceipt polls for txHash's receipt. The first query is immediate and each empty answer schedules the next
// one a poll interval later. Transport errors end polling at once. Exhausting attempts yields a *txerrors.TimeoutError.
func (rc *ReceiptConfirmer) WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	logger := rc.logger.With("tx_hash", txHash.Hex())

	var (
		receipt *types.Receipt
		polls   uint
	)
	err := retry.Do(
		func() error {
			polls++

			var response *types.Receipt
			if err := rc.provider.CallContext(ctx, &response, wallet.MethodTransactionReceipt, txHash); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return txerrors.Network(rc.endpoint, err)
			}
			if response == nil {
				return ErrReceiptPending
			}

			receipt = response
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(rc.attempts),
		retry.Delay(rc.pollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrReceiptPending)
		}),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("transaction still not included", "attempt", n+1, "max_attempts", rc.attempts)
		}),
	)
	rc.metrics.RecordReceiptPolls(polls)

	if err != nil {
		if errors.Is(err, ErrReceiptPending) {
			logger.Error("polling finished without a receipt", "attempts", polls)
			return nil, &txerrors.TimeoutError{Operation: "receipt for " + txHash.Hex(), Attempts: polls}
		}
		return nil, err
	}

	logger.Info("transaction included", "block", receipt.BlockNumber, "status", receipt.Status, "polls", polls)
	return receipt, nil
}
