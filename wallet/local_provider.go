package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/bangjelkoski/injective-dexly/crypto"
	"github.com/bangjelkoski/injective-dexly/log"
)

var (
	ErrUnknownAccount   = errors.New("account is not managed by this wallet")
	ErrNoExecutionNode  = errors.New("no execution node configured")
	ErrMethodNotAllowed = errors.New("method not supported")
)

// ExecutionNode is the subset of an execution layer client the local wallet needs. *ethclient.Client satisfies it.
type ExecutionNode interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// LocalProvider is a development wallet holding an Ethermint key in process. It answers the same requests
// a browser wallet would.
type LocalProvider struct {
	keyPair *crypto.EthermintKeyPair

	// Optional. Without a node, only signing requests are served.
	node    ExecutionNode
	chainID *big.Int

	logger *log.Logger
}

// Ensure that LocalProvider implements Provider
var _ Provider = (*LocalProvider)(nil)

func NewLocalProvider(keyPair *crypto.EthermintKeyPair, logger *log.Logger) *LocalProvider {
	return &LocalProvider{
		keyPair: keyPair,
		logger:  logger,
	}
}

// WithExecutionNode lets the wallet submit transactions signed for ethereumChainID through node.
func (p *LocalProvider) WithExecutionNode(node ExecutionNode, ethereumChainID uint64) *LocalProvider {
	p.node = node
	p.chainID = new(big.Int).SetUint64(ethereumChainID)
	return p
}

func (p *LocalProvider) Address() common.Address {
	return p.keyPair.EthereumAddress()
}

func (p *LocalProvider) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	p.logger.Debug("local wallet request", "method", method)

	var (
		response interface{}
		err      error
	)
	switch method {
	case MethodAccounts, MethodRequestAccounts:
		response = []string{p.Address().Hex()}
	case MethodSignTypedData:
		response, err = p.signTypedData(args)
	case MethodSendTransaction:
		response, err = p.sendTransaction(ctx, args)
	case MethodTransactionReceipt:
		response, err = p.transactionReceipt(ctx, args)
	default:
		err = fmt.Errorf("%w: %s", ErrMethodNotAllowed, method)
	}
	if err != nil {
		return err
	}

	// Round trip through JSON so results decode exactly as they would from a remote wallet
	bytes, err := json.Marshal(response)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, result)
}

// Private helpers

func (p *LocalProvider) signTypedData(args []interface{}) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("expected [address, typedData], got %d params", len(args))
	}
	if err := p.checkAccount(args[0]); err != nil {
		return "", err
	}

	var payload []byte
	switch typedData := args[1].(type) {
	case string:
		payload = []byte(typedData)
	case []byte:
		payload = typedData
	default:
		return "", fmt.Errorf("typed data must be a JSON string, got %T", args[1])
	}

	var typedData apitypes.TypedData
	if err := json.Unmarshal(payload, &typedData); err != nil {
		return "", fmt.Errorf("malformed typed data: %w", err)
	}

	digest, err := crypto.TypedDataDigest(typedData)
	if err != nil {
		return "", err
	}

	signature, err := p.keyPair.SignDigest(digest)
	if err != nil {
		return "", err
	}
	return "0x" + common.Bytes2Hex(signature), nil
}

func (p *LocalProvider) sendTransaction(ctx context.Context, args []interface{}) (common.Hash, error) {
	if p.node == nil {
		return common.Hash{}, ErrNoExecutionNode
	}
	if len(args) != 1 {
		return common.Hash{}, fmt.Errorf("expected [transaction], got %d params", len(args))
	}

	request, err := toTransactionRequest(args[0])
	if err != nil {
		return common.Hash{}, err
	}
	if err := p.checkAccount(request.From.Hex()); err != nil {
		return common.Hash{}, err
	}

	nonce, err := p.node.PendingNonceAt(ctx, request.From)
	if err != nil {
		return common.Hash{}, err
	}

	value := new(big.Int)
	if request.Value != nil {
		value = request.Value.ToInt()
	}
	gasPrice := new(big.Int)
	if request.GasPrice != nil {
		gasPrice = request.GasPrice.ToInt()
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      uint64(request.Gas),
		To:       request.To,
		Value:    value,
		Data:     request.Data,
	})

	privateKey, err := p.keyPair.ECDSA()
	if err != nil {
		return common.Hash{}, err
	}
	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(p.chainID), privateKey)
	if err != nil {
		return common.Hash{}, err
	}

	if err := p.node.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, err
	}
	p.logger.Info("local wallet submitted transaction", "tx_hash", signedTx.Hash().Hex(), "nonce", nonce)

	return signedTx.Hash(), nil
}

// Returns nil while the transaction is pending, which encodes as JSON null.
func (p *LocalProvider) transactionReceipt(ctx context.Context, args []interface{}) (*types.Receipt, error) {
	if p.node == nil {
		return nil, ErrNoExecutionNode
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("expected [hash], got %d params", len(args))
	}

	var hash common.Hash
	switch value := args[0].(type) {
	case common.Hash:
		hash = value
	case string:
		hash = common.HexToHash(value)
	default:
		return nil, fmt.Errorf("transaction hash must be a hex string, got %T", args[0])
	}

	receipt, err := p.node.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	return receipt, err
}

func (p *LocalProvider) checkAccount(raw interface{}) error {
	var address string
	switch value := raw.(type) {
	case string:
		address = value
	case common.Address:
		address = value.Hex()
	default:
		return fmt.Errorf("address must be a hex string, got %T", raw)
	}

	if !strings.EqualFold(address, p.Address().Hex()) {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, address)
	}
	return nil
}

func toTransactionRequest(raw interface{}) (TransactionRequest, error) {
	if request, ok := raw.(TransactionRequest); ok {
		return request, nil
	}

	bytes, err := json.Marshal(raw)
	if err != nil {
		return TransactionRequest{}, err
	}
	var request TransactionRequest
	if err := json.Unmarshal(bytes, &request); err != nil {
		return TransactionRequest{}, fmt.Errorf("malformed transaction: %w", err)
	}
	return request, nil
}
