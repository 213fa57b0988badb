// Package messages holds the operations a wallet holder can submit.
//
// Message is a closed set: only the variants in this package implement it, and each
// constructor validates its required fields so a built value is always encodable.
package messages

import (
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

type Kind string

const (
	KindSend                 Kind = "send"
	KindCreateSpotLimitOrder Kind = "create_spot_limit_order"
	KindPeggyTransfer        Kind = "peggy_transfer"
)

// Message is any operation the pipeline can submit.
type Message interface {
	Kind() Kind

	isMessage()
}

// ChainMessage is a Message executed as a chain transaction through EIP-712 signing.
type ChainMessage interface {
	Message

	// Bech32 address of the account that must sign.
	Signer() string

	// Amino route, used as the "type" of the typed-data Msg.
	AminoType() string

	// Type definitions for "MsgValue" and every nested struct it references.
	TypedDataTypes() apitypes.Types

	// Amino JSON shaped value matching TypedDataTypes.
	TypedDataValue() map[string]interface{}

	// Direct (protobuf) encoding for the transaction body.
	ProtoAny() (*codectypes.Any, error)
}

// MsgValueType is the name of the typed-data struct holding a message's value.
const MsgValueType = "MsgValue"

var (
	_ ChainMessage = (*Send)(nil)
	_ ChainMessage = (*CreateSpotLimitOrder)(nil)
	_ Message      = (*PeggyTransfer)(nil)
)
