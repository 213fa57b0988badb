package crypto_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bangjelkoski/injective-dexly/crypto"
	"github.com/bangjelkoski/injective-dexly/txerrors"
)

// Well known development mnemonic; account 0 is 0xf39F...2266.
const testMnemonic = "test test test test test test test test test test test junk"

const testPrivateKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func testTypedData() apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
			},
			"Note": {
				{Name: "body", Type: "string"},
				{Name: "sequence", Type: "string"},
			},
		},
		PrimaryType: "Note",
		Domain: apitypes.TypedDataDomain{
			Name:    "Test",
			Version: "1",
			ChainId: math.NewHexOrDecimal256(1),
		},
		Message: apitypes.TypedDataMessage{
			"body":     "hello",
			"sequence": "5",
		},
	}
}

func TestKeyPairFromMnemonic(t *testing.T) {
	keyPair, err := crypto.NewEthermintKeyPairFromMnemonic(testMnemonic)
	require.NoError(t, err)

	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), keyPair.EthereumAddress())

	address, err := keyPair.GetAddress("inj")
	require.NoError(t, err)

	roundTripped, err := crypto.EthereumAddressFromBech32(address)
	require.NoError(t, err)
	assert.Equal(t, keyPair.EthereumAddress(), roundTripped)
	assert.True(t, crypto.HasPrefix(address, "inj"))
}

func TestBech32Conversions(t *testing.T) {
	address, err := crypto.Bech32FromEthereumAddress("inj", "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	require.NoError(t, err)

	ethereumAddress, err := crypto.EthereumAddressFromBech32(address)
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", ethereumAddress.Hex())

	_, err = crypto.Bech32FromEthereumAddress("inj", "not-an-address")
	require.Error(t, err)

	_, err = crypto.EthereumAddressFromBech32("inj1notvalid")
	require.Error(t, err)
}

func TestRecoverTypedDataPubKey_RoundTrip(t *testing.T) {
	privateKey, err := ethcrypto.HexToECDSA(testPrivateKey)
	require.NoError(t, err)
	keyPair := crypto.NewEthermintKeyPairFromECDSA(privateKey)

	typedData := testTypedData()
	digest, err := crypto.TypedDataDigest(typedData)
	require.NoError(t, err)

	signature, err := keyPair.SignDigest(digest)
	require.NoError(t, err)
	require.Len(t, signature, crypto.SignatureLength)
	assert.Contains(t, []byte{27, 28}, signature[64])

	recovered, err := crypto.RecoverTypedDataPubKey(typedData, signature)
	require.NoError(t, err)

	assert.Equal(t, ethcrypto.CompressPubkey(&privateKey.PublicKey), recovered.Bytes())
	assert.Equal(t, keyPair.Public.Bytes(), recovered.Bytes())
	assert.Equal(t, keyPair.EthereumAddress(), recovered.EthereumAddress())

	// Raw recovery ids are accepted too, and the input is left untouched.
	signature[64] -= 27
	original := append([]byte{}, signature...)
	recoveredAgain, err := crypto.RecoverTypedDataPubKey(typedData, signature)
	require.NoError(t, err)
	assert.Equal(t, recovered.Hex(), recoveredAgain.Hex())
	assert.Equal(t, original, signature)
}

func TestRecoverTypedDataPubKey_DifferentMessageRecoversDifferentKey(t *testing.T) {
	privateKey, err := ethcrypto.HexToECDSA(testPrivateKey)
	require.NoError(t, err)
	keyPair := crypto.NewEthermintKeyPairFromECDSA(privateKey)

	typedData := testTypedData()
	digest, err := crypto.TypedDataDigest(typedData)
	require.NoError(t, err)
	signature, err := keyPair.SignDigest(digest)
	require.NoError(t, err)

	typedData.Message["sequence"] = "6"
	recovered, err := crypto.RecoverTypedDataPubKey(typedData, signature)
	if err == nil {
		assert.NotEqual(t, keyPair.EthereumAddress(), recovered.EthereumAddress())
	}
}

func TestRecoverTypedDataPubKey_MalformedSignature(t *testing.T) {
	typedData := testTypedData()

	_, err := crypto.RecoverTypedDataPubKey(typedData, make([]byte, 64))
	require.Error(t, err)
	assert.True(t, txerrors.IsCryptoError(err))

	badV := make([]byte, 65)
	badV[64] = 31
	_, err = crypto.RecoverTypedDataPubKey(typedData, badV)
	require.Error(t, err)
	assert.True(t, txerrors.IsCryptoError(err))

	zeroes := make([]byte, 65)
	_, err = crypto.RecoverTypedDataPubKey(typedData, zeroes)
	require.Error(t, err)
	assert.True(t, txerrors.IsCryptoError(err))
}

func TestSignDigest_RejectsWrongLength(t *testing.T) {
	privateKey, err := ethcrypto.HexToECDSA(testPrivateKey)
	require.NoError(t, err)
	keyPair := crypto.NewEthermintKeyPairFromECDSA(privateKey)

	_, err = keyPair.SignDigest([]byte{1, 2, 3})
	require.Error(t, err)
}
