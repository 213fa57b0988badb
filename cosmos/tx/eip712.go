package tx

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/bangjelkoski/injective-dexly/cosmos/rpc"
	"github.com/bangjelkoski/injective-dexly/messages"
	"github.com/bangjelkoski/injective-dexly/txerrors"
)

// Legacy Ethermint EIP-712 domain
const (
	domainName              = "Injective Web3"
	domainVersion           = "1.0.0"
	domainVerifyingContract = "cosmos"
	domainSalt              = "0"

	primaryType = "Tx"
)

// TypedDataRequest holds everything a typed data document is derived from.
type TypedDataRequest struct {
	Message         messages.ChainMessage
	Fee             Fee
	Memo            string
	Account         *rpc.Account
	TimeoutHeight   uint64
	ChainID         string
	EthereumChainID uint64
}

// BuildTypedData produces the EIP-712 document the wallet signs. It does no I/O and the same request always
// yields the same document.
func BuildTypedData(req TypedDataRequest) (apitypes.TypedData, error) {
	if req.Message == nil {
		return apitypes.TypedData{}, txerrors.Encoding("msgs", fmt.Errorf("no message"))
	}
	if req.Account == nil {
		return apitypes.TypedData{}, txerrors.Encoding("account", fmt.Errorf("no account"))
	}
	if req.ChainID == "" {
		return apitypes.TypedData{}, txerrors.Encoding("chain_id", fmt.Errorf("chain id is required"))
	}
	if req.Fee.Amount.Len() == 0 || req.Fee.GasLimit == 0 {
		return apitypes.TypedData{}, txerrors.Encoding("fee", fmt.Errorf("fee amount and gas limit are required"))
	}

	types, err := typesFor(req.Message)
	if err != nil {
		return apitypes.TypedData{}, err
	}

	feeAmount := make([]interface{}, 0, req.Fee.Amount.Len())
	for _, coin := range req.Fee.Amount {
		feeAmount = append(feeAmount, map[string]interface{}{
			"amount": coin.Amount.String(),
			"denom":  coin.Denom,
		})
	}

	message := apitypes.TypedDataMessage{
		"account_number": strconv.FormatUint(req.Account.AccountNumber, 10),
		"chain_id":       req.ChainID,
		"fee": map[string]interface{}{
			"amount": feeAmount,
			"gas":    strconv.FormatUint(req.Fee.GasLimit, 10),
		},
		"memo": req.Memo,
		"msgs": []interface{}{
			map[string]interface{}{
				"type":  req.Message.AminoType(),
				"value": req.Message.TypedDataValue(),
			},
		},
		"sequence":       strconv.FormatUint(req.Account.Sequence, 10),
		"timeout_height": strconv.FormatUint(req.TimeoutHeight, 10),
	}

	return apitypes.TypedData{
		Types:       types,
		PrimaryType: primaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              domainName,
			Version:           domainVersion,
			ChainId:           (*math.HexOrDecimal256)(new(big.Int).SetUint64(req.EthereumChainID)),
			VerifyingContract: domainVerifyingContract,
			Salt:              domainSalt,
		},
		Message: message,
	}, nil
}

// MarshalTypedData renders the document as the JSON payload of eth_signTypedData_v4.
func MarshalTypedData(typedData apitypes.TypedData) ([]byte, error) {
	payload, err := json.Marshal(typedData)
	if err != nil {
		return nil, txerrors.Encoding("typed_data", err)
	}
	return payload, nil
}

// Field order within every type is alphabetical.
func typesFor(msg messages.ChainMessage) (apitypes.Types, error) {
	types := apitypes.Types{
		"EIP712Domain": {
			{Name: "name", Type: "string"},
			{Name: "version", Type: "string"},
			{Name: "chainId", Type: "uint256"},
			{Name: "verifyingContract", Type: "string"},
			{Name: "salt", Type: "string"},
		},
		primaryType: {
			{Name: "account_number", Type: "string"},
			{Name: "chain_id", Type: "string"},
			{Name: "fee", Type: "Fee"},
			{Name: "memo", Type: "string"},
			{Name: "msgs", Type: "Msg[]"},
			{Name: "sequence", Type: "string"},
			{Name: "timeout_height", Type: "string"},
		},
		"Fee": {
			{Name: "amount", Type: "Coin[]"},
			{Name: "gas", Type: "string"},
		},
		"Coin": {
			{Name: "amount", Type: "string"},
			{Name: "denom", Type: "string"},
		},
		"Msg": {
			{Name: "type", Type: "string"},
			{Name: "value", Type: messages.MsgValueType},
		},
	}

	messageTypes := msg.TypedDataTypes()
	if _, ok := messageTypes[messages.MsgValueType]; !ok {
		return nil, txerrors.Encoding("msgs", fmt.Errorf("%s does not define %s", msg.Kind(), messages.MsgValueType))
	}
	for name, fields := range messageTypes {
		if _, exists := types[name]; exists {
			return nil, txerrors.Encoding("msgs", fmt.Errorf("%s redefines type %s", msg.Kind(), name))
		}
		types[name] = fields
	}
	return types, nil
}
