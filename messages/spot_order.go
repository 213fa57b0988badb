package messages

import (
	"fmt"
	"strings"

	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/bangjelkoski/injective-dexly/crypto"
	"github.com/bangjelkoski/injective-dexly/txerrors"
)

const spotLimitOrderTypeUrl = "/injective.exchange.v1beta1.MsgCreateSpotLimitOrder"

// Side is the exchange module's order type.
type Side int32

const (
	SideBuy  Side = 1
	SideSell Side = 2
)

func ParseSide(input string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "buy":
		return SideBuy, nil
	case "sell":
		return SideSell, nil
	}
	return 0, txerrors.Encoding("side", fmt.Errorf("unknown order side %q", input))
}

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	}
	return fmt.Sprintf("side(%d)", int32(s))
}

// SpotOrderParams are the human readable inputs to a spot limit order.
type SpotOrderParams struct {
	Sender        string
	MarketID      string
	SubaccountID  string
	FeeRecipient  string
	Price         string
	Quantity      string
	Side          Side
	BaseDecimals  int32
	QuoteDecimals int32
}

// CreateSpotLimitOrder places a limit order on a spot market.
type CreateSpotLimitOrder struct {
	sender       string
	marketID     string
	subaccountID string
	feeRecipient string

	// Chain representations, 18 fractional digits
	price    sdk.Dec
	quantity sdk.Dec

	side Side
}

func NewCreateSpotLimitOrder(params SpotOrderParams) (*CreateSpotLimitOrder, error) {
	if err := validateAccount("sender", params.Sender); err != nil {
		return nil, err
	}
	if err := validateAccount("fee_recipient", params.FeeRecipient); err != nil {
		return nil, err
	}
	if err := validateHash("market_id", params.MarketID); err != nil {
		return nil, err
	}
	if err := validateHash("subaccount_id", params.SubaccountID); err != nil {
		return nil, err
	}
	if params.Side != SideBuy && params.Side != SideSell {
		return nil, txerrors.Encoding("side", fmt.Errorf("unsupported side %d", params.Side))
	}

	price, err := spotPriceToChainPrice(params.Price, params.BaseDecimals, params.QuoteDecimals)
	if err != nil {
		return nil, err
	}
	quantity, err := spotQuantityToChainQuantity(params.Quantity, params.BaseDecimals)
	if err != nil {
		return nil, err
	}

	return &CreateSpotLimitOrder{
		sender:       params.Sender,
		marketID:     strings.ToLower(params.MarketID),
		subaccountID: strings.ToLower(params.SubaccountID),
		feeRecipient: params.FeeRecipient,

		price:    price,
		quantity: quantity,

		side: params.Side,
	}, nil
}

// DefaultSubaccountID is the account's first subaccount: its 20 byte address followed by a 12 byte zero nonce.
func DefaultSubaccountID(address string) (string, error) {
	ethereumAddress, err := crypto.EthereumAddressFromBech32(address)
	if err != nil {
		return "", txerrors.Encoding("address", err)
	}
	return strings.ToLower(ethereumAddress.Hex()) + strings.Repeat("0", 24), nil
}

func (m *CreateSpotLimitOrder) Kind() Kind { return KindCreateSpotLimitOrder }
func (m *CreateSpotLimitOrder) isMessage() {}

func (m *CreateSpotLimitOrder) Signer() string    { return m.sender }
func (m *CreateSpotLimitOrder) Price() sdk.Dec    { return m.price }
func (m *CreateSpotLimitOrder) Quantity() sdk.Dec { return m.quantity }
func (m *CreateSpotLimitOrder) Side() Side        { return m.side }
func (m *CreateSpotLimitOrder) AminoType() string { return "exchange/MsgCreateSpotLimitOrder" }

func (m *CreateSpotLimitOrder) TypedDataTypes() apitypes.Types {
	return apitypes.Types{
		MsgValueType: {
			{Name: "order", Type: "TypeOrder"},
			{Name: "sender", Type: "string"},
		},
		"TypeOrder": {
			{Name: "market_id", Type: "string"},
			{Name: "order_info", Type: "TypeOrderOrderInfo"},
			{Name: "order_type", Type: "int32"},
		},
		"TypeOrderOrderInfo": {
			{Name: "fee_recipient", Type: "string"},
			{Name: "price", Type: "string"},
			{Name: "quantity", Type: "string"},
			{Name: "subaccount_id", Type: "string"},
		},
	}
}

func (m *CreateSpotLimitOrder) TypedDataValue() map[string]interface{} {
	return map[string]interface{}{
		"order": map[string]interface{}{
			"market_id": m.marketID,
			"order_info": map[string]interface{}{
				"fee_recipient": m.feeRecipient,
				"price":         m.price.String(),
				"quantity":      m.quantity.String(),
				"subaccount_id": m.subaccountID,
			},
			// JSON numbers decode as float64, so keep the in-memory form identical to what the wallet sees
			"order_type": float64(m.side),
		},
		"sender": m.sender,
	}
}

// ProtoAny hand encodes MsgCreateSpotLimitOrder. Dec fields are encoded as their scaled integer strings.
func (m *CreateSpotLimitOrder) ProtoAny() (*codectypes.Any, error) {
	var orderInfo []byte
	orderInfo = appendString(orderInfo, 1, m.subaccountID)
	orderInfo = appendString(orderInfo, 2, m.feeRecipient)
	orderInfo = appendString(orderInfo, 3, m.price.BigInt().String())
	orderInfo = appendString(orderInfo, 4, m.quantity.BigInt().String())

	var order []byte
	order = appendString(order, 1, m.marketID)
	order = appendBytes(order, 2, orderInfo)
	order = protowire.AppendTag(order, 3, protowire.VarintType)
	order = protowire.AppendVarint(order, uint64(m.side))

	var msg []byte
	msg = appendString(msg, 1, m.sender)
	msg = appendBytes(msg, 2, order)

	return &codectypes.Any{TypeUrl: spotLimitOrderTypeUrl, Value: msg}, nil
}

// Helpers

// chain price = price * 10^(quote - base)
func spotPriceToChainPrice(price string, baseDecimals, quoteDecimals int32) (sdk.Dec, error) {
	parsed, err := ParsePositiveDecimal("price", price)
	if err != nil {
		return sdk.Dec{}, err
	}
	return toDec("price", parsed, quoteDecimals-baseDecimals)
}

// chain quantity = quantity * 10^base
func spotQuantityToChainQuantity(quantity string, baseDecimals int32) (sdk.Dec, error) {
	parsed, err := ParsePositiveDecimal("quantity", quantity)
	if err != nil {
		return sdk.Dec{}, err
	}
	return toDec("quantity", parsed, baseDecimals)
}

func toDec(field string, value decimal.Decimal, exponent int32) (sdk.Dec, error) {
	fixed, err := toChainDecimal(field, value, exponent)
	if err != nil {
		return sdk.Dec{}, err
	}

	dec, err := sdk.NewDecFromStr(fixed)
	if err != nil {
		return sdk.Dec{}, txerrors.Encoding(field, err)
	}
	return dec, nil
}

func validateHash(field, value string) error {
	if !strings.HasPrefix(value, "0x") || len(value) != 2+2*common.HashLength {
		return txerrors.Encoding(field, fmt.Errorf("expected a 0x prefixed 32 byte hex string, got %q", value))
	}
	if _, err := hexutil.Decode(value); err != nil {
		return txerrors.Encoding(field, err)
	}
	return nil
}

func appendString(b []byte, num protowire.Number, value string) []byte {
	if value == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, value)
}

func appendBytes(b []byte, num protowire.Number, value []byte) []byte {
	if len(value) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, value)
}
