package tx

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/bangjelkoski/injective-dexly/cosmos/rpc"
)

// SigningMetadataProvider fetches the account state and chain tip a transaction is signed against.
// Nothing is cached: sequence must reflect the latest committed state.
type SigningMetadataProvider struct {
	stateClient rpc.StateClient
}

func NewSigningMetadataProvider(stateClient rpc.StateClient) *SigningMetadataProvider {
	return &SigningMetadataProvider{
		stateClient: stateClient,
	}
}

// SigningMetadataForAccount issues the account and block queries concurrently and fails with the first error.
func (smp *SigningMetadataProvider) SigningMetadataForAccount(ctx context.Context, address string) (*SigningMetadata, error) {
	var (
		account *rpc.Account
		tip     *rpc.ChainTip
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		account, err = smp.stateClient.Account(groupCtx, address)
		return err
	})
	group.Go(func() error {
		var err error
		tip, err = smp.stateClient.LatestHeight(groupCtx)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return &SigningMetadata{
		account:       account,
		timeoutHeight: TimeoutHeight(tip),
	}, nil
}
