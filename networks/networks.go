package networks

import (
	"fmt"
	"strings"
)

// Network is the endpoint set and chain identity for one Injective deployment.
type Network struct {
	Name            string
	ChainID         string
	EthereumChainID uint64
	Bech32Prefix    string
	FeeDenom        string

	RestUrl string
	GrpcUrl string
	Web3Url string

	PeggyContract string
}

// Denom describes a token and how many decimals its base unit carries.
type Denom struct {
	Denom    string
	Symbol   string
	Decimals int32

	// Execution-layer contract, if the token is bridged.
	Erc20Contract string
}

// Registry holds network presets and a denom table. Read-only after construction.
type Registry struct {
	nameToNetwork map[string]*Network
	denoms        map[string]*Denom
}

func NewRegistry() *Registry {
	registry := &Registry{
		nameToNetwork: make(map[string]*Network),
		denoms:        make(map[string]*Denom),
	}

	registry.addNetwork("mainnet", "injective-1", 1, "https://sentry.lcd.injective.network:443", "sentry.chain.grpc.injective.network:443", "https://mainnet.infura.io/v3", "0xF955C57f9EA9Dc8781965FEaE0b6A2acE2BAD6f3")
	registry.addNetwork("testnet", "injective-888", 11155111, "https://testnet.sentry.lcd.injective.network:443", "testnet.sentry.chain.grpc.injective.network:443", "https://sepolia.infura.io/v3", "0x12e1181a741b70BE6A9D81f85af3E92B6ba41897")
	registry.addNetwork("local", "injective-1", 1, "http://localhost:10337", "localhost:9900", "http://localhost:8545", "0x0000000000000000000000000000000000000000")

	registry.addDenom("inj", "INJ", 18, "0xe28b3B32B6c345A34Ff64674606124Dd5Aceca30")
	registry.addDenom("peggy0xdAC17F958D2ee523a2206206994597C13D831ec7", "USDT", 6, "0xdAC17F958D2ee523a2206206994597C13D831ec7")

	return registry
}

func (r *Registry) addNetwork(name, chainID string, ethereumChainID uint64, restUrl, grpcUrl, web3Url, peggyContract string) {
	r.nameToNetwork[name] = &Network{
		Name:            name,
		ChainID:         chainID,
		EthereumChainID: ethereumChainID,
		Bech32Prefix:    "inj",
		FeeDenom:        "inj",

		RestUrl: restUrl,
		GrpcUrl: grpcUrl,
		Web3Url: web3Url,

		PeggyContract: peggyContract,
	}
}

func (r *Registry) addDenom(denom, symbol string, decimals int32, erc20Contract string) {
	r.denoms[strings.ToLower(denom)] = &Denom{
		Denom:         denom,
		Symbol:        symbol,
		Decimals:      decimals,
		Erc20Contract: erc20Contract,
	}
}

// Network returns a copy of the named preset, so callers may override endpoints freely.
func (r *Registry) Network(name string) (Network, error) {
	network, ok := r.nameToNetwork[strings.ToLower(name)]
	if !ok {
		return Network{}, fmt.Errorf("unknown network: %s", name)
	}
	return *network, nil
}

// Denom looks a token up by chain denom, symbol, or ERC20 contract address.
func (r *Registry) Denom(needle string) (Denom, error) {
	if denom, ok := r.denoms[strings.ToLower(needle)]; ok {
		return *denom, nil
	}

	for _, denom := range r.denoms {
		if strings.EqualFold(denom.Symbol, needle) || strings.EqualFold(denom.Erc20Contract, needle) {
			return *denom, nil
		}
	}
	return Denom{}, fmt.Errorf("unknown denom: %s", needle)
}
