package crypto

import (
	"encoding/base64"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/bangjelkoski/injective-dexly/coding"
	"github.com/bangjelkoski/injective-dexly/txerrors"
)

// SignatureLength is the length of an [R || S || V] secp256k1 signature.
const SignatureLength = 65

// RecoveredPublicKey is a compressed secp256k1 public key recovered from a signature.
type RecoveredPublicKey struct {
	compressed []byte
	address    common.Address
}

// Bytes returns a copy of the 33 byte compressed key.
func (k *RecoveredPublicKey) Bytes() []byte {
	out := make([]byte, len(k.compressed))
	copy(out, k.compressed)
	return out
}

func (k *RecoveredPublicKey) Hex() string {
	return coding.NormalizeBytesToHex(k.compressed)
}

func (k *RecoveredPublicKey) Base64() string {
	return base64.StdEncoding.EncodeToString(k.compressed)
}

// EthereumAddress is the address controlled by the recovered key.
func (k *RecoveredPublicKey) EthereumAddress() common.Address {
	return k.address
}

// TypedDataDigest is the EIP-712 digest: keccak256(0x19 0x01 || domainSeparator || hashStruct(message)).
func TypedDataDigest(typedData apitypes.TypedData) ([]byte, error) {
	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return nil, fmt.Errorf("failed to hash domain: %w", err)
	}

	messageHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return nil, fmt.Errorf("failed to hash message: %w", err)
	}

	rawData := make([]byte, 0, 2+len(domainSeparator)+len(messageHash))
	rawData = append(rawData, 0x19, 0x01)
	rawData = append(rawData, domainSeparator...)
	rawData = append(rawData, messageHash...)

	return ethcrypto.Keccak256(rawData), nil
}

// RecoverTypedDataPubKey recovers the key that produced signature over the typed data's digest.
// The key is not checked against any claimed signer.
func RecoverTypedDataPubKey(typedData apitypes.TypedData, signature []byte) (*RecoveredPublicKey, error) {
	digest, err := TypedDataDigest(typedData)
	if err != nil {
		return nil, txerrors.Crypto(err)
	}

	return RecoverDigestPubKey(digest, signature)
}

// RecoverDigestPubKey recovers a key from a 32 byte digest and a 65 byte signature with V in {0, 1, 27, 28}.
func RecoverDigestPubKey(digest, signature []byte) (*RecoveredPublicKey, error) {
	if len(signature) != SignatureLength {
		return nil, txerrors.Crypto(fmt.Errorf("signature must be %d bytes, got %d", SignatureLength, len(signature)))
	}

	// Copy so the caller's signature is never mutated
	normalized := make([]byte, SignatureLength)
	copy(normalized, signature)

	v := normalized[ethcrypto.RecoveryIDOffset]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return nil, txerrors.Crypto(fmt.Errorf("invalid recovery id: %d", signature[ethcrypto.RecoveryIDOffset]))
	}
	normalized[ethcrypto.RecoveryIDOffset] = v

	publicKey, err := ethcrypto.SigToPub(digest, normalized)
	if err != nil {
		return nil, txerrors.Crypto(fmt.Errorf("failed to recover public key: %w", err))
	}

	return &RecoveredPublicKey{
		compressed: ethcrypto.CompressPubkey(publicKey),
		address:    ethcrypto.PubkeyToAddress(*publicKey),
	}, nil
}
