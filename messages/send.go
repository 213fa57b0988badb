package messages

import (
	"fmt"

	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/bangjelkoski/injective-dexly/crypto"
	"github.com/bangjelkoski/injective-dexly/txerrors"
)

// Send transfers tokens between two accounts.
type Send struct {
	source      string
	destination string
	amount      sdk.Coin
}

// NewSend builds a transfer of amount (human readable) of denom, which has the given decimals.
func NewSend(source, destination, denom, amount string, decimals int32) (*Send, error) {
	if err := validateAccount("source", source); err != nil {
		return nil, err
	}
	if err := validateAccount("destination", destination); err != nil {
		return nil, err
	}
	if err := sdk.ValidateDenom(denom); err != nil {
		return nil, txerrors.Encoding("denom", err)
	}

	scaled, err := ScaleAmount(amount, decimals)
	if err != nil {
		return nil, err
	}
	baseUnits, err := parseBaseUnits(scaled)
	if err != nil {
		return nil, err
	}
	return NewSendBaseUnits(source, destination, sdk.Coin{Denom: denom, Amount: baseUnits})
}

// NewSendBaseUnits builds a transfer from an amount already expressed in base units.
func NewSendBaseUnits(source, destination string, amount sdk.Coin) (*Send, error) {
	if err := validateAccount("source", source); err != nil {
		return nil, err
	}
	if err := validateAccount("destination", destination); err != nil {
		return nil, err
	}
	if amount.Amount.IsNil() || !amount.Amount.IsPositive() {
		return nil, txerrors.Encoding("amount", fmt.Errorf("amount must be positive"))
	}
	if err := sdk.ValidateDenom(amount.Denom); err != nil {
		return nil, txerrors.Encoding("denom", err)
	}

	return &Send{
		source:      source,
		destination: destination,
		amount:      amount,
	}, nil
}

func (m *Send) Kind() Kind { return KindSend }
func (m *Send) isMessage() {}

func (m *Send) Signer() string      { return m.source }
func (m *Send) Destination() string { return m.destination }
func (m *Send) Amount() sdk.Coin    { return m.amount }
func (m *Send) AminoType() string   { return "cosmos-sdk/MsgSend" }

func (m *Send) TypedDataTypes() apitypes.Types {
	return apitypes.Types{
		MsgValueType: {
			{Name: "amount", Type: "TypeAmount[]"},
			{Name: "from_address", Type: "string"},
			{Name: "to_address", Type: "string"},
		},
		"TypeAmount": {
			{Name: "amount", Type: "string"},
			{Name: "denom", Type: "string"},
		},
	}
}

func (m *Send) TypedDataValue() map[string]interface{} {
	return map[string]interface{}{
		"amount": []interface{}{
			map[string]interface{}{
				"amount": m.amount.Amount.String(),
				"denom":  m.amount.Denom,
			},
		},
		"from_address": m.source,
		"to_address":   m.destination,
	}
}

func (m *Send) ProtoAny() (*codectypes.Any, error) {
	msg := &banktypes.MsgSend{
		FromAddress: m.source,
		ToAddress:   m.destination,
		Amount:      sdk.NewCoins(m.amount),
	}

	any, err := codectypes.NewAnyWithValue(msg)
	if err != nil {
		return nil, txerrors.Encoding("msg_send", err)
	}
	return any, nil
}

// Helpers

func validateAccount(field, address string) error {
	if address == "" {
		return txerrors.Encoding(field, fmt.Errorf("address is required"))
	}
	if _, err := crypto.EthereumAddressFromBech32(address); err != nil {
		return txerrors.Encoding(field, err)
	}
	return nil
}

// sdk.Int holds at most 256 bits; NewIntFromString refuses anything larger.
func parseBaseUnits(value string) (sdk.Int, error) {
	parsed, ok := sdk.NewIntFromString(value)
	if !ok {
		return sdk.Int{}, txerrors.Encoding("amount", fmt.Errorf("%s base units does not fit in 256 bits", value))
	}
	return parsed, nil
}
