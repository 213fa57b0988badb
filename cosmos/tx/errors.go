package tx

import "errors"

var (
	// The key recovered from a wallet signature does not control the signing account.
	ErrSignerMismatch = errors.New("recovered public key does not match signer")

	ErrNoSignature = errors.New("no signature")
	ErrNoPublicKey = errors.New("no public key")
)
