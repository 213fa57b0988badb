package main

import (
	"github.com/spf13/cobra"

	"github.com/bangjelkoski/injective-dexly/messages"
)

func newSendCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "send <destination> <amount> <denom>",
		Short:   "Transfer tokens to another Injective account",
		Example: "dexly send inj1wzvhjux9rqfdcwspp37srdgwp5tac7wgplgfd7 1.5 inj",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := newSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			denom, err := s.registry.Denom(args[2])
			if err != nil {
				return err
			}
			msg, err := messages.NewSend(s.sender, args[0], denom.Denom, args[1], denom.Decimals)
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
}
