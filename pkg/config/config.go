package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names for wallet configuration
const (
	EnvNetwork          = "ZKWALLET_NETWORK"
	EnvOperatorEndpoint = "ZKWALLET_OPERATOR_ENDPOINT"
	EnvEthPrivateKey    = "ZKWALLET_ETH_PRIVATE_KEY"
	EnvL2Seed           = "ZKWALLET_L2_SEED"
	EnvCachePath        = "ZKWALLET_CACHE_PATH"
	EnvRedisAddress     = "ZKWALLET_REDIS_ADDRESS"
	EnvVerbose          = "ZKWALLET_VERBOSE"
)

// Network identifies which rollup deployment the wallet talks to.
type Network string

func (n Network) String() string {
	return string(n)
}

const (
	NetworkMainnet   Network = "mainnet"
	NetworkGoerli    Network = "goerli"
	NetworkSepolia   Network = "sepolia"
	NetworkLocalhost Network = "localhost"
)

// Default operator JSON-RPC endpoints per network.
var networkEndpoints = map[Network]string{
	NetworkMainnet:   "https://api.zksync.io/jsrpc",
	NetworkGoerli:    "https://goerli-api.zksync.io/jsrpc",
	NetworkSepolia:   "https://sepolia-api.zksync.io/jsrpc",
	NetworkLocalhost: "http://127.0.0.1:3030",
}

// L1 chain ids backing each network.
var networkChainIDs = map[Network]uint64{
	NetworkMainnet:   1,
	NetworkGoerli:    5,
	NetworkSepolia:   11155111,
	NetworkLocalhost: 9,
}

// GetEndpointForNetwork returns the default operator endpoint for a network.
func GetEndpointForNetwork(network Network) (string, error) {
	endpoint, ok := networkEndpoints[network]
	if !ok {
		return "", fmt.Errorf("unsupported network: %s. Supported: %s", network, GetSupportedNetworksString())
	}
	return endpoint, nil
}

// GetChainIDForNetwork returns the L1 chain id backing a network.
func GetChainIDForNetwork(network Network) (uint64, error) {
	chainID, ok := networkChainIDs[network]
	if !ok {
		return 0, fmt.Errorf("unsupported network: %s. Supported: %s", network, GetSupportedNetworksString())
	}
	return chainID, nil
}

// GetSupportedNetworks returns all supported networks.
func GetSupportedNetworks() []Network {
	return []Network{
		NetworkMainnet,
		NetworkGoerli,
		NetworkSepolia,
		NetworkLocalhost,
	}
}

// GetSupportedNetworksString returns supported networks for CLI help.
func GetSupportedNetworksString() string {
	return strings.Join(networkNames(), ", ")
}

// CacheBackend selects how slow-changing network metadata is persisted.
type CacheBackend string

const (
	CacheBackendNone   CacheBackend = "none"
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendBadger CacheBackend = "badger"
	CacheBackendRedis  CacheBackend = "redis"
)

// WalletConfig is the complete configuration for constructing a wallet.
type WalletConfig struct {
	// Network selection; Endpoint overrides the network default when set.
	Network  Network `json:"network"`
	Endpoint string  `json:"endpoint,omitempty"`

	// Ethereum account. EthPrivateKey may be empty for watch-only wallets,
	// in which case EthAddress must be set.
	EthPrivateKey string `json:"eth_private_key,omitempty"`
	EthAddress    string `json:"eth_address,omitempty"`

	// L2Seed is the hex-encoded seed for the rollup signing key. Empty means
	// the wallet can only read state and verify, not sign.
	L2Seed string `json:"l2_seed,omitempty"`

	// Token cache settings
	CacheBackend CacheBackend `json:"cache_backend,omitempty"`
	CachePath    string       `json:"cache_path,omitempty"`
	RedisAddress string       `json:"redis_address,omitempty"`

	// Operator RPC settings
	RequestTimeout    time.Duration `json:"request_timeout,omitempty"`
	RequestsPerSecond float64       `json:"requests_per_second,omitempty"`

	// Operational settings
	Debug bool `json:"debug"`
}

// Validate checks the configuration and fills in network-derived defaults.
func (c *WalletConfig) Validate() error {
	var allErrors field.ErrorList

	if c.Network == "" && c.Endpoint == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("network"), "network or endpoint is required"))
	}
	if c.Network != "" {
		if _, ok := networkEndpoints[c.Network]; !ok {
			allErrors = append(allErrors, field.NotSupported(field.NewPath("network"), c.Network, networkNames()))
		}
	}
	if c.EthPrivateKey == "" && c.EthAddress == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("ethPrivateKey"), "an Ethereum key or a watch-only address is required"))
	}
	if c.EthAddress != "" && !common.IsHexAddress(c.EthAddress) {
		allErrors = append(allErrors, field.Invalid(field.NewPath("ethAddress"), c.EthAddress, "not a valid Ethereum address"))
	}
	if c.CacheBackend == CacheBackendBadger && c.CachePath == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("cachePath"), "cachePath is required for the badger backend"))
	}
	if c.CacheBackend == CacheBackendRedis && c.RedisAddress == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("redisAddress"), "redisAddress is required for the redis backend"))
	}
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}

	if c.Endpoint == "" {
		endpoint, err := GetEndpointForNetwork(c.Network)
		if err != nil {
			return err
		}
		c.Endpoint = endpoint
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = 10
	}
	return nil
}

func networkNames() []string {
	networks := GetSupportedNetworks()
	out := make([]string, len(networks))
	for i, n := range networks {
		out[i] = n.String()
	}
	return out
}
