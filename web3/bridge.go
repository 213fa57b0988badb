package web3

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/bangjelkoski/injective-dexly/log"
	"github.com/bangjelkoski/injective-dexly/messages"
)

// Bridge deposits ERC-20 tokens into chain accounts through the peggy contract.
type Bridge struct {
	peggyContract common.Address
	gasLimit      uint64

	confirmer *ReceiptConfirmer
	logger    *log.Logger
}

func NewBridge(peggyContract common.Address, gasLimit uint64, confirmer *ReceiptConfirmer, logger *log.Logger) *Bridge {
	if gasLimit == 0 {
		gasLimit = DefaultPeggyGasLimit
	}

	return &Bridge{
		peggyContract: peggyContract,
		gasLimit:      gasLimit,

		confirmer: confirmer,
		logger:    logger,
	}
}

// Transfer sends the deposit and waits for its receipt.
func (b *Bridge) Transfer(ctx context.Context, msg *messages.PeggyTransfer) (*types.Receipt, error) {
	request, err := ComposePeggyTransfer(msg, b.peggyContract, b.gasLimit)
	if err != nil {
		return nil, err
	}

	b.logger.Info("depositing into bridge", "token", msg.Token().Hex(), "amount", msg.Amount().String(), "destination", msg.Destination().Hex())
	return b.confirmer.SendAndConfirm(ctx, request)
}

// Approve grants the bridge contract an allowance covering msg, and waits for its receipt.
func (b *Bridge) Approve(ctx context.Context, msg *messages.PeggyTransfer) (*types.Receipt, error) {
	request, err := ComposeApproval(msg, b.peggyContract, DefaultApproveGasLimit)
	if err != nil {
		return nil, err
	}

	b.logger.Info("approving bridge allowance", "token", msg.Token().Hex(), "amount", msg.Amount().String())
	return b.confirmer.SendAndConfirm(ctx, request)
}
