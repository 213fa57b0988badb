package main

import (
	"github.com/spf13/cobra"

	"github.com/bangjelkoski/injective-dexly/messages"
)

const (
	subaccountFlag    = "subaccount"
	feeRecipientFlag  = "fee-recipient"
	baseDecimalsFlag  = "base-decimals"
	quoteDecimalsFlag = "quote-decimals"
)

func newSpotOrderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "spot-order <market-id> <buy|sell> <price> <quantity>",
		Short:   "Place a spot limit order",
		Example: "dexly spot-order 0x0611780ba69656949525013d947713300f56c37b6175e02f26bffa495c3208fe buy 25.5 2",
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			side, err := messages.ParseSide(args[1])
			if err != nil {
				return err
			}

			s, err := newSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			subaccountID, _ := cmd.Flags().GetString(subaccountFlag)
			if subaccountID == "" {
				subaccountID, err = messages.DefaultSubaccountID(s.sender)
				if err != nil {
					return err
				}
			}
			feeRecipient, _ := cmd.Flags().GetString(feeRecipientFlag)
			if feeRecipient == "" {
				feeRecipient = s.sender
			}
			baseDecimals, _ := cmd.Flags().GetInt32(baseDecimalsFlag)
			quoteDecimals, _ := cmd.Flags().GetInt32(quoteDecimalsFlag)

			msg, err := messages.NewCreateSpotLimitOrder(messages.SpotOrderParams{
				Sender:        s.sender,
				MarketID:      args[0],
				SubaccountID:  subaccountID,
				FeeRecipient:  feeRecipient,
				Price:         args[2],
				Quantity:      args[3],
				Side:          side,
				BaseDecimals:  baseDecimals,
				QuoteDecimals: quoteDecimals,
			})
			if err != nil {
				return err
			}

			receipt, err := s.client.Submit(ctx, msg)
			if err != nil {
				return err
			}
			printReceipt(cmd, receipt)
			return nil
		},
	}

	cmd.Flags().String(subaccountFlag, "", "subaccount to trade from (default: the sender's default subaccount)")
	cmd.Flags().String(feeRecipientFlag, "", "address receiving the relayer fee share (default: the sender)")
	cmd.Flags().Int32(baseDecimalsFlag, 18, "decimals of the market's base token")
	cmd.Flags().Int32(quoteDecimalsFlag, 6, "decimals of the market's quote token")
	return cmd
}
