package txerrors_test

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bangjelkoski/injective-dexly/txerrors"
)

func TestKindsSurviveWrapping(t *testing.T) {
	cause := errors.New("user denied")
	err := pkgerrors.Wrap(txerrors.Wallet("eth_signTypedData_v4", cause), "signing")

	assert.True(t, txerrors.IsWalletError(err))
	assert.False(t, txerrors.IsNetworkError(err))
	assert.False(t, txerrors.IsEncodingError(err))
	assert.True(t, errors.Is(err, cause))
}

func TestChainRejection(t *testing.T) {
	var err error = &txerrors.ChainRejectionError{Code: 5, RawLog: "insufficient funds", Codespace: "sdk"}
	err = pkgerrors.Wrap(err, "broadcast")

	rejection, ok := txerrors.AsChainRejection(err)
	require.True(t, ok)
	assert.Equal(t, uint32(5), rejection.Code)
	assert.Equal(t, "insufficient funds", rejection.RawLog)
	assert.False(t, rejection.IsGasRelated())

	gas := &txerrors.ChainRejectionError{Code: 13, Codespace: "sdk"}
	assert.True(t, gas.IsGasRelated())
}

func TestTimeoutError(t *testing.T) {
	err := pkgerrors.Wrap(&txerrors.TimeoutError{Operation: "receipt", Attempts: 3}, "confirm")
	assert.True(t, txerrors.IsTimeoutError(err))
	assert.Contains(t, err.Error(), "3 attempts")
}
