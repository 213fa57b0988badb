package messages

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bangjelkoski/injective-dexly/txerrors"
)

// Decimals carried by sdk.Dec values on chain
const chainDecPrecision = 18

// ParsePositiveDecimal parses a human readable amount, rejecting zero, negatives, and garbage.
func ParsePositiveDecimal(field, amount string) (decimal.Decimal, error) {
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Decimal{}, txerrors.Encoding(field, fmt.Errorf("malformed decimal %q: %w", amount, err))
	}
	if parsed.Sign() <= 0 {
		return decimal.Decimal{}, txerrors.Encoding(field, fmt.Errorf("amount must be positive, got %q", amount))
	}
	return parsed, nil
}

// ScaleAmount converts a human readable amount into base units, rounding down.
// Ex. ScaleAmount("1.23456789", 6) = "1234567"
func ScaleAmount(amount string, decimals int32) (string, error) {
	parsed, err := ParsePositiveDecimal("amount", amount)
	if err != nil {
		return "", err
	}
	return scale(parsed, decimals)
}

// ScaleAmountAtPrecision truncates amount to precision fractional digits before scaling to base units.
// Ex. ScaleAmountAtPrecision("1.23456789", 3, 6) = "1234000"
func ScaleAmountAtPrecision(amount string, precision, decimals int32) (string, error) {
	parsed, err := ParsePositiveDecimal("amount", amount)
	if err != nil {
		return "", err
	}
	return scale(parsed.Truncate(precision), decimals)
}

func scale(amount decimal.Decimal, decimals int32) (string, error) {
	if decimals < 0 {
		return "", txerrors.Encoding("decimals", fmt.Errorf("decimals must not be negative, got %d", decimals))
	}

	scaled := amount.Shift(decimals).Truncate(0)
	if scaled.Sign() <= 0 {
		return "", txerrors.Encoding("amount", fmt.Errorf("amount %s is below the smallest unit", amount))
	}
	return scaled.String(), nil
}

// toChainDecimal shifts a value by exponent and renders it with the chain's 18 fractional digits, rounding down.
func toChainDecimal(field string, value decimal.Decimal, exponent int32) (string, error) {
	shifted := value.Shift(exponent).Truncate(chainDecPrecision)
	if shifted.Sign() <= 0 {
		return "", txerrors.Encoding(field, fmt.Errorf("value %s is below chain precision", value))
	}
	return shifted.StringFixed(chainDecPrecision), nil
}
