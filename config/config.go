// Package config holds the settings every dexly collaborator is built from.
package config

import (
	"fmt"
	os2 "os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/bangjelkoski/injective-dexly/log"
	"github.com/bangjelkoski/injective-dexly/networks"
	"github.com/bangjelkoski/injective-dexly/web3"
)

const (
	DefaultConfigFile = "~/.dexly/config.yaml"

	fileHeader = "dexly configuration"
)

// Config is the on-disk configuration. Empty endpoints fall back to the selected network's preset.
type Config struct {
	Network string `yaml:"network" comment:"Network preset to use: mainnet, testnet or local"`

	RestUrl   string `yaml:"rest_url" comment:"Chain REST endpoint. Leave empty to use the network preset"`
	GrpcUrl   string `yaml:"grpc_url" comment:"Chain gRPC endpoint, used to broadcast. Leave empty to use the network preset"`
	Web3Url   string `yaml:"web3_url" comment:"Execution layer JSON-RPC endpoint. Leave empty to use the network preset"`
	WalletUrl string `yaml:"wallet_url" comment:"JSON-RPC endpoint of the wallet that signs requests. Ignored when a mnemonic is supplied"`

	LogLevel string `yaml:"log_level" comment:"One of debug, info, warn, error"`

	VerifyRecoveredSigner bool   `yaml:"verify_recovered_signer" comment:"Refuse to broadcast when the wallet signed with a key other than the sender's"`
	ReceiptPollAttempts   uint   `yaml:"receipt_poll_attempts" comment:"How many times to query for an execution layer receipt, one second apart"`
	PeggyGasLimit         uint64 `yaml:"peggy_gas_limit" comment:"Gas limit for bridge deposits"`
}

func Default() Config {
	return Config{
		Network:               "testnet",
		WalletUrl:             "http://localhost:1248",
		LogLevel:              "info",
		VerifyRecoveredSigner: true,
		ReceiptPollAttempts:   web3.DefaultReceiptPollAttempts,
		PeggyGasLimit:         web3.DefaultPeggyGasLimit,
	}
}

// Load reads the file at path over the defaults, so omitted keys keep their default values.
func Load(path string) (*Config, error) {
	resolved, err := ResolveFile(path)
	if err != nil {
		return nil, err
	}

	data, err := os2.ReadFile(resolved)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", resolved)
	}

	cfg := Default()
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", resolved)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid configuration in %s", resolved)
	}
	return &cfg, nil
}

// WriteDefault writes the default configuration to path, creating its directory. An existing file is kept.
func WriteDefault(path string, logger *log.Logger) (bool, error) {
	if err := CreateDirectoryIfNeeded(filepath.Dir(ExpandHomeDir(path)), logger); err != nil {
		return false, err
	}
	return WriteYamlWithComments(Default(), fileHeader, path, logger)
}

func (c *Config) Validate() error {
	if c.Network == "" {
		return fmt.Errorf("network is required")
	}
	if !log.IsValidLogLevel(c.LogLevel) {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.ReceiptPollAttempts == 0 {
		return fmt.Errorf("receipt_poll_attempts must be positive")
	}
	if c.PeggyGasLimit == 0 {
		return fmt.Errorf("peggy_gas_limit must be positive")
	}
	return nil
}

// ResolveNetwork looks up the configured preset and applies endpoint overrides to it.
func (c *Config) ResolveNetwork(registry *networks.Registry) (networks.Network, error) {
	network, err := registry.Network(c.Network)
	if err != nil {
		return networks.Network{}, err
	}

	if c.RestUrl != "" {
		network.RestUrl = c.RestUrl
	}
	if c.GrpcUrl != "" {
		network.GrpcUrl = c.GrpcUrl
	}
	if c.Web3Url != "" {
		network.Web3Url = c.Web3Url
	}
	return network, nil
}
