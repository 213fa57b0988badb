package tx

import (
	"fmt"
	"strconv"

	"github.com/cometbft/cometbft/crypto/tmhash"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	txtypes "github.com/cosmos/cosmos-sdk/types/tx"
	"github.com/cosmos/cosmos-sdk/types/tx/signing"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/bangjelkoski/injective-dexly/cosmos/rpc"
	"github.com/bangjelkoski/injective-dexly/crypto"
	"github.com/bangjelkoski/injective-dexly/messages"
	"github.com/bangjelkoski/injective-dexly/txerrors"
)

const (
	web3ExtensionTypeUrl = "/injective.types.v1beta1.ExtensionOptionsWeb3Tx"
	ethPubKeyTypeUrl     = "/injective.crypto.v1beta1.ethsecp256k1.PubKey"

	compressedPubKeyLength = 33
)

// AssembleRequest is the input to Assemble. TypedData must be the document the wallet signed.
type AssembleRequest struct {
	Message         messages.ChainMessage
	Fee             Fee
	Memo            string
	Account         *rpc.Account
	TimeoutHeight   uint64
	EthereumChainID uint64

	TypedData apitypes.TypedData
	PublicKey []byte
	Signature []byte
}

// SignedTransaction is an encoded TxRaw carrying exactly one signature. It cannot be modified once assembled.
type SignedTransaction struct {
	txBytes []byte
	txHash  string
}

// Bytes returns a copy of the encoded TxRaw.
func (st *SignedTransaction) Bytes() []byte {
	out := make([]byte, len(st.txBytes))
	copy(out, st.txBytes)
	return out
}

// Hash is the upper case hex sha256 of the encoded transaction, as reported by the node.
func (st *SignedTransaction) Hash() string {
	return st.txHash
}

// Assemble builds the chain transaction authenticated by a Web3 extension signature. The recovered public key
// is declared as the signer's key, and the signature becomes the sole entry of the signature list.
func Assemble(req AssembleRequest) (*SignedTransaction, error) {
	if err := validateAssembleRequest(req); err != nil {
		return nil, err
	}

	msgAny, err := req.Message.ProtoAny()
	if err != nil {
		return nil, err
	}

	body := &txtypes.TxBody{
		Messages:         []*codectypes.Any{msgAny},
		Memo:             req.Memo,
		TimeoutHeight:    req.TimeoutHeight,
		ExtensionOptions: []*codectypes.Any{web3Extension(req.EthereumChainID)},
	}
	bodyBytes, err := body.Marshal()
	if err != nil {
		return nil, txerrors.Encoding("body", err)
	}

	authInfo := &txtypes.AuthInfo{
		SignerInfos: []*txtypes.SignerInfo{
			{
				PublicKey: ethPubKey(req.PublicKey),
				ModeInfo: &txtypes.ModeInfo{
					Sum: &txtypes.ModeInfo_Single_{
						Single: &txtypes.ModeInfo_Single{Mode: signing.SignMode_SIGN_MODE_LEGACY_AMINO_JSON},
					},
				},
				Sequence: req.Account.Sequence,
			},
		},
		Fee: &txtypes.Fee{
			Amount:   req.Fee.Amount,
			GasLimit: req.Fee.GasLimit,
		},
	}
	authInfoBytes, err := authInfo.Marshal()
	if err != nil {
		return nil, txerrors.Encoding("auth_info", err)
	}

	signature := make([]byte, len(req.Signature))
	copy(signature, req.Signature)

	raw := &txtypes.TxRaw{
		BodyBytes:     bodyBytes,
		AuthInfoBytes: authInfoBytes,
		Signatures:    [][]byte{signature},
	}
	txBytes, err := raw.Marshal()
	if err != nil {
		return nil, txerrors.Encoding("tx_raw", err)
	}

	return &SignedTransaction{
		txBytes: txBytes,
		txHash:  fmt.Sprintf("%X", tmhash.Sum(txBytes)),
	}, nil
}

// Private helpers

func validateAssembleRequest(req AssembleRequest) error {
	if req.Message == nil {
		return txerrors.Encoding("msgs", fmt.Errorf("no message"))
	}
	if req.Account == nil {
		return txerrors.Encoding("account", fmt.Errorf("no account"))
	}
	if len(req.PublicKey) != compressedPubKeyLength {
		return txerrors.Encoding("public_key", fmt.Errorf("%w: expected %d bytes, got %d", ErrNoPublicKey, compressedPubKeyLength, len(req.PublicKey)))
	}
	if len(req.Signature) != crypto.SignatureLength {
		return txerrors.Encoding("signature", fmt.Errorf("%w: expected %d bytes, got %d", ErrNoSignature, crypto.SignatureLength, len(req.Signature)))
	}

	// The signed document and the transaction must agree on replay protection
	if err := expectNumericField(req.TypedData, "account_number", req.Account.AccountNumber); err != nil {
		return err
	}
	if err := expectNumericField(req.TypedData, "sequence", req.Account.Sequence); err != nil {
		return err
	}
	return expectNumericField(req.TypedData, "timeout_height", req.TimeoutHeight)
}

func expectNumericField(typedData apitypes.TypedData, field string, expected uint64) error {
	raw, ok := typedData.Message[field]
	if !ok {
		return txerrors.Encoding(field, fmt.Errorf("missing from signed document"))
	}
	str, ok := raw.(string)
	if !ok {
		return txerrors.Encoding(field, fmt.Errorf("expected a decimal string, got %T", raw))
	}
	value, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return txerrors.Encoding(field, fmt.Errorf("not numeric: %q", str))
	}
	if value != expected {
		return txerrors.Encoding(field, fmt.Errorf("signed document has %d, transaction has %d", value, expected))
	}
	return nil
}

// ExtensionOptionsWeb3Tx{typedDataChainID = 1}
func web3Extension(ethereumChainID uint64) *codectypes.Any {
	var value []byte
	if ethereumChainID != 0 {
		value = protowire.AppendTag(value, 1, protowire.VarintType)
		value = protowire.AppendVarint(value, ethereumChainID)
	}
	return &codectypes.Any{TypeUrl: web3ExtensionTypeUrl, Value: value}
}

// ethsecp256k1.PubKey{key = 1}
func ethPubKey(compressed []byte) *codectypes.Any {
	var value []byte
	value = protowire.AppendTag(value, 1, protowire.BytesType)
	value = protowire.AppendBytes(value, compressed)
	return &codectypes.Any{TypeUrl: ethPubKeyTypeUrl, Value: value}
}
