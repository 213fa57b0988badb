package config_test

import (
	"os"
	"os/user"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bangjelkoski/injective-dexly/config"
	"github.com/bangjelkoski/injective-dexly/log"
	"github.com/bangjelkoski/injective-dexly/networks"
)

func TestWriteDefaultThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	written, err := config.WriteDefault(path, log.Discard())
	require.NoError(t, err)
	assert.True(t, written)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "# dexly configuration\n")
	assert.Contains(t, string(contents), "\n# Network preset to use: mainnet, testnet or local\nnetwork: testnet\n")
	assert.Contains(t, string(contents), "\n# Gas limit for bridge deposits\npeggy_gas_limit: 200000\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), *cfg)
}

func TestWriteDefaultKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network: mainnet\n"), 0o644))

	written, err := config.WriteDefault(path, log.Discard())
	require.NoError(t, err)
	assert.False(t, written)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mainnet", cfg.Network)
	assert.True(t, cfg.VerifyRecoveredSigner)
}

func TestLoadFailures(t *testing.T) {
	dir := t.TempDir()

	_, err := config.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	cases := map[string]string{
		"unknown key":       "network: testnet\ngas_price: 1\n",
		"bad log level":     "log_level: loud\n",
		"zero poll budget":  "receipt_poll_attempts: 0\n",
		"not yaml":          "network: [",
		"empty network":     "network: \"\"\n",
		"zero peggy gas":    "peggy_gas_limit: 0\n",
		"negative attempts": "receipt_poll_attempts: -1\n",
	}
	for name, contents := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

			_, err := config.Load(path)
			assert.Error(t, err)
		})
	}
}

func TestResolveNetwork(t *testing.T) {
	registry := networks.NewRegistry()

	cfg := config.Default()
	network, err := cfg.ResolveNetwork(registry)
	require.NoError(t, err)
	assert.Equal(t, "injective-888", network.ChainID)
	assert.Equal(t, "https://testnet.sentry.lcd.injective.network:443", network.RestUrl)

	cfg.GrpcUrl = "localhost:9090"
	network, err = cfg.ResolveNetwork(registry)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9090", network.GrpcUrl)

	preset, err := registry.Network("testnet")
	require.NoError(t, err)
	assert.Equal(t, "testnet.sentry.chain.grpc.injective.network:443", preset.GrpcUrl)

	cfg.Network = "devnet-42"
	_, err = cfg.ResolveNetwork(registry)
	assert.Error(t, err)
}

func TestExpandHomeDir(t *testing.T) {
	assert.Equal(t, "/etc/dexly.yaml", config.ExpandHomeDir("/etc/dexly.yaml"))

	usr, err := user.Current()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(usr.HomeDir, ".dexly/config.yaml"), config.ExpandHomeDir("~/.dexly/config.yaml"))
}
