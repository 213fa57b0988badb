package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bangjelkoski/injective-dexly/crypto"
	"github.com/bangjelkoski/injective-dexly/messages"
)

const (
	gasPriceFlag = "gas-price"
	approveFlag  = "approve"

	gweiDecimals = 9
)

func newPeggyTransferCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "peggy-transfer <token> <amount> [destination]",
		Short:   "Deposit ERC-20 tokens into an Injective account through the bridge",
		Example: "dexly peggy-transfer USDT 12.5 --approve",
		Args:    cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rawGasPrice, _ := cmd.Flags().GetString(gasPriceFlag)
			gasPriceGwei, err := decimal.NewFromString(rawGasPrice)
			if err != nil {
				return fmt.Errorf("invalid --%s: %w", gasPriceFlag, err)
			}
			gasPrice := gasPriceGwei.Shift(gweiDecimals).BigInt()

			s, err := newSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			denom, err := s.registry.Denom(args[0])
			if err != nil {
				return err
			}
			if denom.Erc20Contract == "" {
				return fmt.Errorf("%s is not bridged", denom.Symbol)
			}

			source, err := crypto.EthereumAddressFromBech32(s.sender)
			if err != nil {
				return err
			}
			destination := s.sender
			if len(args) == 3 {
				destination = args[2]
			}

			msg, err := messages.NewPeggyTransfer(denom.Erc20Contract, args[1], source.Hex(), destination, gasPrice, denom.Decimals)
			if err != nil {
				return err
			}

			if approve, _ := cmd.Flags().GetBool(approveFlag); approve {
				receipt, err := s.client.ApproveBridge(ctx, msg)
				if err != nil {
					return err
				}
				printReceipt(cmd, receipt)
			}

			receipt, err := s.client.Submit(ctx, msg)
			if err != nil {
				return err
			}
			printReceipt(cmd, receipt)
			return nil
		},
	}

	cmd.Flags().String(gasPriceFlag, "20", "execution layer gas price, in gwei")
	cmd.Flags().Bool(approveFlag, false, "grant the bridge an allowance for the amount before depositing")
	return cmd
}
