// Package client wires the chain pipeline and the bridge behind a single Submit call.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bangjelkoski/injective-dexly/config"
	"github.com/bangjelkoski/injective-dexly/cosmos/rpc"
	"github.com/bangjelkoski/injective-dexly/cosmos/tx"
	"github.com/bangjelkoski/injective-dexly/log"
	"github.com/bangjelkoski/injective-dexly/messages"
	"github.com/bangjelkoski/injective-dexly/metrics"
	"github.com/bangjelkoski/injective-dexly/networks"
	"github.com/bangjelkoski/injective-dexly/wallet"
	"github.com/bangjelkoski/injective-dexly/web3"
)

var ErrUnsupportedMessage = errors.New("unsupported message")

// Receipt is the outcome of Submit. Exactly one of Chain and Execution is set, depending on Kind.
type Receipt struct {
	Kind messages.Kind

	Chain     *tx.BroadcastResult
	Execution *types.Receipt
}

func (r *Receipt) TxHash() string {
	if r.Execution != nil {
		return r.Execution.TxHash.Hex()
	}
	if r.Chain != nil {
		return r.Chain.TxHash
	}
	return ""
}

// Client owns every collaborator needed to submit messages on one network.
type Client struct {
	network networks.Network

	signer   *wallet.Signer
	pipeline *tx.Pipeline
	bridge   *web3.Bridge

	closers []func() error
	logger  *log.Logger
}

type options struct {
	registry     *networks.Registry
	registerer   prometheus.Registerer
	provider     wallet.Provider
	stateClient  rpc.StateClient
	txClient     rpc.TxClient
	pollInterval time.Duration
}

type Option func(*options)

// WithProvider uses provider instead of dialing the configured wallet endpoint.
func WithProvider(provider wallet.Provider) Option {
	return func(o *options) { o.provider = provider }
}

func WithStateClient(stateClient rpc.StateClient) Option {
	return func(o *options) { o.stateClient = stateClient }
}

func WithTxClient(txClient rpc.TxClient) Option {
	return func(o *options) { o.txClient = txClient }
}

// WithRegisterer records pipeline metrics on registerer. Without it nothing is recorded.
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(o *options) { o.registerer = registerer }
}

func WithRegistry(registry *networks.Registry) Option {
	return func(o *options) { o.registry = registry }
}

func WithPollInterval(interval time.Duration) Option {
	return func(o *options) { o.pollInterval = interval }
}

// New builds a client from cfg. Collaborators not supplied through options are dialed from the resolved network.
func New(ctx context.Context, cfg config.Config, logger *log.Logger, opts ...Option) (*Client, error) {
	o := &options{
		registry:     networks.NewRegistry(),
		pollInterval: web3.DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	network, err := cfg.ResolveNetwork(o.registry)
	if err != nil {
		return nil, err
	}
	if !common.IsHexAddress(network.PeggyContract) {
		return nil, fmt.Errorf("network %s has an invalid peggy contract %q", network.Name, network.PeggyContract)
	}

	client := &Client{
		network: network,
		logger:  logger,
	}

	var recorder *metrics.Metrics
	if o.registerer != nil {
		recorder = metrics.New(o.registerer)
	}

	stateClient := o.stateClient
	if stateClient == nil {
		stateClient = rpc.NewRestClient(network.RestUrl, logger.ApplyPrefix("[rest] "))
	}

	txClient := o.txClient
	if txClient == nil {
		grpcClient, err := rpc.NewGrpcTxClient(network.GrpcUrl, logger.ApplyPrefix("[grpc] "))
		if err != nil {
			return nil, err
		}
		client.closers = append(client.closers, grpcClient.Close)
		txClient = grpcClient
	}

	provider, walletEndpoint := o.provider, "wallet"
	if provider == nil {
		rpcProvider, err := wallet.DialRpcProvider(ctx, cfg.WalletUrl)
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to wallet at %s: %w", cfg.WalletUrl, err)
		}
		client.closers = append(client.closers, func() error {
			rpcProvider.Close()
			return nil
		})
		provider, walletEndpoint = rpcProvider, cfg.WalletUrl
	}

	walletLogger := logger.ApplyPrefix("[wallet] ")
	signer := wallet.NewSigner(provider, recorder, walletLogger)
	client.signer = signer

	pipelineLogger := logger.ApplyPrefix("[chain] ")
	client.pipeline = tx.NewPipeline(
		network.ChainID,
		network.EthereumChainID,
		network.FeeDenom,
		tx.NewSigningMetadataProvider(stateClient),
		signer,
		tx.NewBroadcaster(network.GrpcUrl, txClient, recorder, pipelineLogger),
		pipelineLogger,
		tx.WithVerifyRecoveredSigner(cfg.VerifyRecoveredSigner),
	)

	bridgeLogger := logger.ApplyPrefix("[bridge] ")
	confirmer := web3.NewReceiptConfirmer(walletEndpoint, provider, signer, cfg.ReceiptPollAttempts, recorder, bridgeLogger).
		WithPollInterval(o.pollInterval)
	client.bridge = web3.NewBridge(common.HexToAddress(network.PeggyContract), cfg.PeggyGasLimit, confirmer, bridgeLogger)

	logger.Debug("client ready", "network", network.Name, "chain_id", network.ChainID)
	return client, nil
}

func (c *Client) Network() networks.Network {
	return c.network
}

// Accounts connects to the wallet and returns the addresses it exposes, the selected account first.
func (c *Client) Accounts(ctx context.Context) ([]common.Address, error) {
	return c.signer.Accounts(ctx)
}

// Submit sends chain messages through the signing pipeline and bridge deposits through the execution layer.
func (c *Client) Submit(ctx context.Context, msg messages.Message) (*Receipt, error) {
	switch m := msg.(type) {
	case messages.ChainMessage:
		result, err := c.pipeline.SignAndBroadcast(ctx, m)
		if err != nil {
			return nil, err
		}
		return &Receipt{Kind: m.Kind(), Chain: result}, nil

	case *messages.PeggyTransfer:
		receipt, err := c.bridge.Transfer(ctx, m)
		if err != nil {
			return nil, err
		}
		return &Receipt{Kind: m.Kind(), Execution: receipt}, nil

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedMessage, msg)
	}
}

// ApproveBridge grants the bridge an allowance for msg's token and amount.
func (c *Client) ApproveBridge(ctx context.Context, msg *messages.PeggyTransfer) (*Receipt, error) {
	receipt, err := c.bridge.Approve(ctx, msg)
	if err != nil {
		return nil, err
	}
	return &Receipt{Kind: msg.Kind(), Execution: receipt}, nil
}

// Close releases every connection New dialed.
func (c *Client) Close() error {
	var errs []error
	for _, closer := range c.closers {
		if err := closer(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
