package crypto

import (
	"crypto/ecdsa"
	"fmt"

	btcec "github.com/btcsuite/btcd/btcec/v2"
	"github.com/evmos/evmos/v14/crypto/ethsecp256k1"
	"github.com/evmos/evmos/v14/crypto/hd"
	"golang.org/x/crypto/sha3"

	"github.com/cosmos/cosmos-sdk/crypto/keyring"
	cryptotypes "github.com/cosmos/cosmos-sdk/crypto/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/bech32"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Default derivation path for Ethermint accounts (coin type 60)
const EthermintHDPath = "m/44'/60'/0'/0/0"

// DigestSigner signs 32 byte digests, producing 65 byte [R || S || V] signatures.
type DigestSigner interface {
	EthereumAddress() common.Address
	SignDigest(digest []byte) ([]byte, error)
}

type EthermintKeyPair struct {
	Public  cryptotypes.PubKey
	Private cryptotypes.PrivKey
}

var _ DigestSigner = (*EthermintKeyPair)(nil)

// NewEthermintKeyPairFromMnemonic derives the first Ethermint account from a mnemonic.
func NewEthermintKeyPairFromMnemonic(mnemonic string) (*EthermintKeyPair, error) {
	algo := hd.EthSecp256k1
	derivedPriv, err := algo.Derive()(mnemonic, keyring.DefaultBIP39Passphrase, EthermintHDPath)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key from mnemonic: %w", err)
	}
	privKey := algo.Generate()(derivedPriv)

	return &EthermintKeyPair{
		Public:  privKey.PubKey(),
		Private: privKey,
	}, nil
}

// NewEthermintKeyPairFromECDSA wraps an existing secp256k1 key.
func NewEthermintKeyPairFromECDSA(key *ecdsa.PrivateKey) *EthermintKeyPair {
	privKey := &ethsecp256k1.PrivKey{Key: ethcrypto.FromECDSA(key)}

	return &EthermintKeyPair{
		Public:  privKey.PubKey(),
		Private: privKey,
	}
}

// GetAddress returns the bech32 account address for the key under the given prefix.
func (e *EthermintKeyPair) GetAddress(prefix string) (string, error) {
	address := sdk.AccAddress(e.EthereumAddress().Bytes())
	return bech32.ConvertAndEncode(prefix, address)
}

// EthereumAddress is keccak256 of the uncompressed public key, less the prefix byte, truncated to 20 bytes.
func (e *EthermintKeyPair) EthereumAddress() common.Address {
	parsed, err := btcec.ParsePubKey(e.Public.Bytes())
	if err != nil {
		// Keys are generated locally, so an unparseable key is a programming error.
		panic(err)
	}
	decompressedPublicKey := parsed.SerializeUncompressed()

	hash := sha3.NewLegacyKeccak256()
	hash.Write(decompressedPublicKey[1:])
	return common.BytesToAddress(hash.Sum(nil)[12:])
}

// SignDigest signs a digest and returns the signature with V in {27, 28}, the way browser wallets do.
func (e *EthermintKeyPair) SignDigest(digest []byte) ([]byte, error) {
	if len(digest) != ethcrypto.DigestLength {
		return nil, fmt.Errorf("digest must be %d bytes, got %d", ethcrypto.DigestLength, len(digest))
	}

	privateKey, err := e.ECDSA()
	if err != nil {
		return nil, err
	}

	signature, err := ethcrypto.Sign(digest, privateKey)
	if err != nil {
		return nil, err
	}
	signature[ethcrypto.RecoveryIDOffset] += 27

	return signature, nil
}

// ECDSA exposes the key for execution-layer transaction signing.
func (e *EthermintKeyPair) ECDSA() (*ecdsa.PrivateKey, error) {
	return ethcrypto.ToECDSA(e.Private.Bytes())
}
