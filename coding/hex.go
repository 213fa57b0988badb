package coding

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// DecodeHex decodes a hex string, with or without a 0x prefix.
func DecodeHex(in string) ([]byte, error) {
	return hex.DecodeString(strip0x(strings.TrimSpace(in)))
}

// DecodeFixedHex decodes a hex string and requires an exact byte length.
func DecodeFixedHex(in string, length int) ([]byte, error) {
	decoded, err := DecodeHex(in)
	if err != nil {
		return nil, err
	}
	if len(decoded) != length {
		return nil, fmt.Errorf("expected %d bytes, got %d", length, len(decoded))
	}
	return decoded, nil
}

func NormalizeBytesToHex(input []byte) string {
	return strings.ToLower("0x" + hex.EncodeToString(input))
}

// PayloadFingerprint pretty prints a hex payload in an identifiable and succinct way.
func PayloadFingerprint(payload []byte) string {
	if len(payload) < 8 {
		return NormalizeMaybeEmptyBytes(payload)
	}

	return fmt.Sprintf("[%s...%s]", hex.EncodeToString(payload[0:4]), hex.EncodeToString(payload[len(payload)-4:]))
}

// Returns an empty byte slice rather than no output for empty byte arrays
func NormalizeMaybeEmptyBytes(bytes []byte) string {
	if len(bytes) > 0 {
		return hex.EncodeToString(bytes)
	}
	return "[]"
}

func strip0x(in string) string {
	if strings.HasPrefix(in, "0x") || strings.HasPrefix(in, "0X") {
		return in[2:]
	}
	return in
}
