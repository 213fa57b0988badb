// Package txerrors defines the failure kinds surfaced by the transaction pipeline.
//
// Every step of the pipeline returns one of these kinds so that callers can decide how to react
// without parsing messages. Use the Is* helpers rather than type assertions, since kinds are usually wrapped.
package txerrors

import (
	"errors"
	"fmt"
)

// WalletError indicates the external signing authority rejected a request, was absent, or its transport failed.
type WalletError struct {
	Method string
	Err    error
}

func (e *WalletError) Error() string {
	return fmt.Sprintf("wallet error in %s: %s", e.Method, e.Err)
}

func (e *WalletError) Unwrap() error { return e.Err }

// NetworkError indicates a chain endpoint was unreachable or returned malformed data.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error from %s: %s", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// EncodingError indicates malformed input that cannot be encoded into a transaction.
type EncodingError struct {
	Field string
	Err   error
}

func (e *EncodingError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("encoding error: %s", e.Err)
	}
	return fmt.Sprintf("encoding error in %s: %s", e.Field, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// CryptoError indicates a signature could not be used to recover a public key.
type CryptoError struct {
	Err error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("crypto error: %s", e.Err)
}

func (e *CryptoError) Unwrap() error { return e.Err }

// ChainRejectionError carries a non-zero broadcast result verbatim.
type ChainRejectionError struct {
	Code      uint32
	RawLog    string
	Codespace string
	TxHash    string
}

func (e *ChainRejectionError) Error() string {
	return fmt.Sprintf("transaction rejected by chain (codespace=%q code=%d): %s", e.Codespace, e.Code, e.RawLog)
}

// IsGasRelated reports whether the rejection was caused by too low a gas price or too few gas units.
func (e *ChainRejectionError) IsGasRelated() bool {
	return e.Codespace == "sdk" && (e.Code == 11 || e.Code == 13)
}

// TimeoutError indicates an asynchronous confirmation did not arrive within its attempt budget.
type TimeoutError struct {
	Operation string
	Attempts  uint
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s did not complete after %d attempts", e.Operation, e.Attempts)
}

// Constructors

func Wallet(method string, err error) error {
	return &WalletError{Method: method, Err: err}
}

func Network(endpoint string, err error) error {
	return &NetworkError{Endpoint: endpoint, Err: err}
}

func Encoding(field string, err error) error {
	return &EncodingError{Field: field, Err: err}
}

func Crypto(err error) error {
	return &CryptoError{Err: err}
}

// Classification helpers

func IsWalletError(err error) bool {
	var target *WalletError
	return errors.As(err, &target)
}

func IsNetworkError(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

func IsEncodingError(err error) bool {
	var target *EncodingError
	return errors.As(err, &target)
}

func IsCryptoError(err error) bool {
	var target *CryptoError
	return errors.As(err, &target)
}

func IsTimeoutError(err error) bool {
	var target *TimeoutError
	return errors.As(err, &target)
}

// AsChainRejection extracts a ChainRejectionError, if present.
func AsChainRejection(err error) (*ChainRejectionError, bool) {
	var target *ChainRejectionError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
