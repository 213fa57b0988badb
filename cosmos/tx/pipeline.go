package tx

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/bangjelkoski/injective-dexly/crypto"
	"github.com/bangjelkoski/injective-dexly/log"
	"github.com/bangjelkoski/injective-dexly/messages"
	"github.com/bangjelkoski/injective-dexly/txerrors"
)

// TypedDataSigner obtains an eth_signTypedData_v4 signature from outside the process.
type TypedDataSigner interface {
	SignTypedData(ctx context.Context, address common.Address, typedDataJSON []byte) ([]byte, error)
}

// Pipeline turns a chain message into a broadcast transaction. Every failure surfaces immediately; nothing is retried.
type Pipeline struct {
	// Parameters
	chainID               string
	ethereumChainID       uint64
	fee                   Fee
	memo                  string
	verifyRecoveredSigner bool

	// Services
	broadcaster             *Broadcaster
	locker                  *AccountLocker
	logger                  *log.Logger
	signer                  TypedDataSigner
	signingMetadataProvider *SigningMetadataProvider
}

type PipelineOption func(*Pipeline)

// WithFee replaces the default fee.
func WithFee(fee Fee) PipelineOption {
	return func(p *Pipeline) { p.fee = fee }
}

func WithMemo(memo string) PipelineOption {
	return func(p *Pipeline) { p.memo = memo }
}

// WithVerifyRecoveredSigner rejects a signature whose recovered key does not control the signing account,
// before anything is broadcast.
func WithVerifyRecoveredSigner(verify bool) PipelineOption {
	return func(p *Pipeline) { p.verifyRecoveredSigner = verify }
}

// WithAccountLocker shares a locker between pipelines.
func WithAccountLocker(locker *AccountLocker) PipelineOption {
	return func(p *Pipeline) { p.locker = locker }
}

func NewPipeline(
	chainID string,
	ethereumChainID uint64,
	feeDenom string,
	signingMetadataProvider *SigningMetadataProvider,
	signer TypedDataSigner,
	broadcaster *Broadcaster,
	logger *log.Logger,
	opts ...PipelineOption,
) *Pipeline {
	pipeline := &Pipeline{
		chainID:               chainID,
		ethereumChainID:       ethereumChainID,
		fee:                   DefaultFee(feeDenom),
		verifyRecoveredSigner: true,

		broadcaster:             broadcaster,
		locker:                  NewAccountLocker(),
		logger:                  logger,
		signer:                  signer,
		signingMetadataProvider: signingMetadataProvider,
	}
	for _, opt := range opts {
		opt(pipeline)
	}
	return pipeline
}

// SignAndBroadcast holds the signer's account lock for the whole run, so pipelines for one address never overlap.
func (p *Pipeline) SignAndBroadcast(ctx context.Context, msg messages.ChainMessage) (*BroadcastResult, error) {
	address := msg.Signer()
	logger := p.logger.With("address", address, "kind", msg.Kind())

	unlock, err := p.locker.Lock(ctx, address)
	if err != nil {
		return nil, err
	}
	defer unlock()

	signingMetadata, err := p.signingMetadataProvider.SigningMetadataForAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	account := signingMetadata.Account()
	logger = logger.With("sequence", account.Sequence, "timeout_height", signingMetadata.TimeoutHeight())
	logger.Debug("pipeline received signer metadata")

	typedData, err := BuildTypedData(TypedDataRequest{
		Message:         msg,
		Fee:             p.fee,
		Memo:            p.memo,
		Account:         account,
		TimeoutHeight:   signingMetadata.TimeoutHeight(),
		ChainID:         p.chainID,
		EthereumChainID: p.ethereumChainID,
	})
	if err != nil {
		return nil, err
	}
	payload, err := MarshalTypedData(typedData)
	if err != nil {
		return nil, err
	}

	signature, err := p.signer.SignTypedData(ctx, account.EthereumAddress, payload)
	if err != nil {
		return nil, err
	}
	logger.Debug("pipeline received signature")

	publicKey, err := crypto.RecoverTypedDataPubKey(typedData, signature)
	if err != nil {
		return nil, err
	}
	logger.Debug("recovered signer public key", "public_key", publicKey.Base64())
	if p.verifyRecoveredSigner && publicKey.EthereumAddress() != account.EthereumAddress {
		logger.Error("wallet signed with a different key", "recovered_address", publicKey.EthereumAddress().Hex(), "recovered_public_key", publicKey.Hex())
		return nil, txerrors.Crypto(errors.Wrapf(ErrSignerMismatch, "recovered %s, account is %s", publicKey.EthereumAddress().Hex(), account.EthereumAddress.Hex()))
	}

	signedTx, err := Assemble(AssembleRequest{
		Message:         msg,
		Fee:             p.fee,
		Memo:            p.memo,
		Account:         account,
		TimeoutHeight:   signingMetadata.TimeoutHeight(),
		EthereumChainID: p.ethereumChainID,

		TypedData: typedData,
		PublicKey: publicKey.Bytes(),
		Signature: signature,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("pipeline assembled transaction", "tx_hash", signedTx.Hash())

	return p.broadcaster.Broadcast(ctx, signedTx)
}
