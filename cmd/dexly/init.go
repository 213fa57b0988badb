package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bangjelkoski/injective-dexly/config"
	"github.com/bangjelkoski/injective-dexly/log"
)

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configFile, _ := cmd.Flags().GetString(configFlag)

			written, err := config.WriteDefault(configFile, log.Default())
			if err != nil {
				return err
			}
			if written {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", config.ExpandHomeDir(configFile))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, left untouched\n", config.ExpandHomeDir(configFile))
			}
			return nil
		},
	}
}
