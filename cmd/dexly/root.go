package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/bangjelkoski/injective-dexly/client"
	"github.com/bangjelkoski/injective-dexly/config"
	"github.com/bangjelkoski/injective-dexly/crypto"
	"github.com/bangjelkoski/injective-dexly/log"
	"github.com/bangjelkoski/injective-dexly/networks"
	"github.com/bangjelkoski/injective-dexly/wallet"
)

const (
	configFlag        = "config"
	mnemonicFlag      = "mnemonic"
	fromFlag          = "from"
	metricsListenFlag = "metrics-listen"

	mnemonicEnv = "DEXLY_MNEMONIC"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dexly",
		Short: "Sign and submit Injective transactions through an Ethereum wallet",
		Long: `dexly builds Injective transactions, has them signed as EIP-712 typed data by an
Ethereum wallet, and broadcasts them. Bridge deposits are sent through the wallet
to the peggy contract and confirmed on the execution layer.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String(configFlag, config.DefaultConfigFile, "path to the configuration file")
	rootCmd.PersistentFlags().String(mnemonicFlag, "", "sign with a local key derived from this mnemonic instead of the configured wallet (or set "+mnemonicEnv+")")
	rootCmd.PersistentFlags().String(fromFlag, "", "bech32 address of the sender when signing with a remote wallet (default: the wallet's selected account)")
	rootCmd.PersistentFlags().String(metricsListenFlag, "", "serve prometheus metrics on this address while the command runs")

	rootCmd.AddCommand(
		newInitCommand(),
		newSendCommand(),
		newSpotOrderCommand(),
		newPeggyTransferCommand(),
	)
	return rootCmd
}

// session is everything a submitting command needs, built from flags and the config file.
type session struct {
	client   *client.Client
	registry *networks.Registry
	sender   string
	logger   *log.Logger

	closers []func()
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func newSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	configFile, _ := cmd.Flags().GetString(configFlag)
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	logger := log.NewLogger(cfg.LogLevel)
	registry := networks.NewRegistry()
	network, err := cfg.ResolveNetwork(registry)
	if err != nil {
		return nil, err
	}

	s := &session{
		registry: registry,
		logger:   logger,
	}
	opts := []client.Option{client.WithRegistry(registry)}

	if listen, _ := cmd.Flags().GetString(metricsListenFlag); listen != "" {
		promRegistry := prometheus.NewRegistry()
		opts = append(opts, client.WithRegisterer(promRegistry))

		server := &http.Server{Addr: listen, Handler: promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		s.closers = append(s.closers, func() { _ = server.Close() })
	}

	mnemonic, _ := cmd.Flags().GetString(mnemonicFlag)
	if mnemonic == "" {
		mnemonic = os.Getenv(mnemonicEnv)
	}
	if mnemonic != "" {
		keyPair, err := crypto.NewEthermintKeyPairFromMnemonic(mnemonic)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.sender, err = keyPair.GetAddress(network.Bech32Prefix)
		if err != nil {
			s.Close()
			return nil, err
		}

		provider := wallet.NewLocalProvider(keyPair, logger.ApplyPrefix("[local wallet] "))
		if network.Web3Url != "" {
			node, err := ethclient.DialContext(ctx, network.Web3Url)
			if err != nil {
				s.Close()
				return nil, fmt.Errorf("failed to connect to execution layer at %s: %w", network.Web3Url, err)
			}
			s.closers = append(s.closers, node.Close)
			provider = provider.WithExecutionNode(node, network.EthereumChainID)
		}
		opts = append(opts, client.WithProvider(provider))
	} else {
		s.sender, _ = cmd.Flags().GetString(fromFlag)
		if s.sender != "" && !crypto.HasPrefix(s.sender, network.Bech32Prefix) {
			s.Close()
			return nil, fmt.Errorf("--%s must be a %s address, got %s", fromFlag, network.Bech32Prefix, s.sender)
		}
	}

	s.client, err = client.New(ctx, *cfg, logger, opts...)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.closers = append(s.closers, func() {
		if err := s.client.Close(); err != nil {
			logger.Warn("failed to close connections", "error", err)
		}
	})

	if s.sender == "" {
		s.sender, err = senderFromWallet(ctx, s.client, network.Bech32Prefix)
		if err != nil {
			s.Close()
			return nil, err
		}
		logger.Info("connected to wallet", "address", s.sender)
	}
	return s, nil
}

type accountSource interface {
	Accounts(ctx context.Context) ([]common.Address, error)
}

// senderFromWallet uses the wallet's selected account as the sender.
func senderFromWallet(ctx context.Context, source accountSource, prefix string) (string, error) {
	accounts, err := source.Accounts(ctx)
	if err != nil {
		return "", err
	}
	return crypto.Bech32FromEthereumAddress(prefix, accounts[0].Hex())
}

func printReceipt(cmd *cobra.Command, receipt *client.Receipt) {
	out := cmd.OutOrStdout()
	switch {
	case receipt.Chain != nil:
		fmt.Fprintf(out, "kind=%s tx_hash=%s code=%d\n", receipt.Kind, receipt.TxHash(), receipt.Chain.Code)
	case receipt.Execution != nil:
		fmt.Fprintf(out, "kind=%s tx_hash=%s block=%s status=%d\n", receipt.Kind, receipt.TxHash(), receipt.Execution.BlockNumber, receipt.Execution.Status)
	}
}
