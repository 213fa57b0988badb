package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bangjelkoski/injective-dexly/coding"
	"github.com/bangjelkoski/injective-dexly/crypto"
	"github.com/bangjelkoski/injective-dexly/log"
	"github.com/bangjelkoski/injective-dexly/metrics"
	"github.com/bangjelkoski/injective-dexly/txerrors"
)

var (
	ErrNoProvider = errors.New("no wallet provider")
	ErrNoAccounts = errors.New("wallet exposed no accounts")
)

// Signer requests signatures and transactions from the wallet. Every failure is a *txerrors.WalletError,
// including user rejection.
type Signer struct {
	provider Provider

	metrics *metrics.Metrics
	logger  *log.Logger
}

// NewSigner makes a Signer. recorder may be nil.
func NewSigner(provider Provider, recorder *metrics.Metrics, logger *log.Logger) *Signer {
	return &Signer{
		provider: provider,

		metrics: recorder,
		logger:  logger,
	}
}

// Accounts asks the wallet to connect and returns the addresses it exposes, the selected account first.
func (s *Signer) Accounts(ctx context.Context) ([]common.Address, error) {
	if s.provider == nil {
		return nil, s.fail(MethodRequestAccounts, ErrNoProvider)
	}

	var accounts []common.Address
	if err := s.provider.CallContext(ctx, &accounts, MethodRequestAccounts); err != nil {
		return nil, s.fail(MethodRequestAccounts, err)
	}
	if len(accounts) == 0 {
		return nil, s.fail(MethodRequestAccounts, ErrNoAccounts)
	}
	return accounts, nil
}

// SignTypedData asks the wallet to sign an EIP-712 document with address's key, returning the 65 byte signature.
func (s *Signer) SignTypedData(ctx context.Context, address common.Address, typedDataJSON []byte) ([]byte, error) {
	if s.provider == nil {
		return nil, s.fail(MethodSignTypedData, ErrNoProvider)
	}

	s.logger.Debug("requesting typed data signature", "address", address.Hex())

	var result string
	if err := s.provider.CallContext(ctx, &result, MethodSignTypedData, address.Hex(), string(typedDataJSON)); err != nil {
		return nil, s.fail(MethodSignTypedData, err)
	}

	signature, err := coding.DecodeFixedHex(result, crypto.SignatureLength)
	if err != nil {
		return nil, s.fail(MethodSignTypedData, fmt.Errorf("malformed signature: %w", err))
	}
	return signature, nil
}

// SendTransaction asks the wallet to sign and submit an execution layer transaction, returning its hash.
func (s *Signer) SendTransaction(ctx context.Context, request TransactionRequest) (common.Hash, error) {
	if s.provider == nil {
		return common.Hash{}, s.fail(MethodSendTransaction, ErrNoProvider)
	}

	s.logger.Debug("requesting transaction", "from", request.From.Hex())

	var result common.Hash
	if err := s.provider.CallContext(ctx, &result, MethodSendTransaction, request); err != nil {
		return common.Hash{}, s.fail(MethodSendTransaction, err)
	}
	if result == (common.Hash{}) {
		return common.Hash{}, s.fail(MethodSendTransaction, fmt.Errorf("wallet returned an empty transaction hash"))
	}
	return result, nil
}

func (s *Signer) fail(method string, err error) error {
	s.metrics.RecordWalletRejection()
	s.logger.Warn("wallet request failed", "method", method, "error", err)
	return txerrors.Wallet(method, err)
}
