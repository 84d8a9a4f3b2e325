package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletConfig_Validate_Defaults(t *testing.T) {
	cfg := &WalletConfig{
		Network:       NetworkSepolia,
		EthPrivateKey: "0x0123",
	}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://sepolia-api.zksync.io/jsrpc", cfg.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, float64(10), cfg.RequestsPerSecond)
}

func TestWalletConfig_Validate_EndpointOverride(t *testing.T) {
	cfg := &WalletConfig{
		Network:       NetworkLocalhost,
		Endpoint:      "http://10.0.0.5:3030",
		EthPrivateKey: "0x0123",
	}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://10.0.0.5:3030", cfg.Endpoint)
}

func TestWalletConfig_Validate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     WalletConfig
		wantErr string
	}{
		{
			name:    "missing network and endpoint",
			cfg:     WalletConfig{EthPrivateKey: "0x01"},
			wantErr: "network",
		},
		{
			name:    "unknown network",
			cfg:     WalletConfig{Network: "ropsten", EthPrivateKey: "0x01"},
			wantErr: "supported values",
		},
		{
			name:    "no key and no address",
			cfg:     WalletConfig{Network: NetworkMainnet},
			wantErr: "ethPrivateKey",
		},
		{
			name:    "malformed watch-only address",
			cfg:     WalletConfig{Network: NetworkMainnet, EthAddress: "0x123"},
			wantErr: "ethAddress",
		},
		{
			name:    "badger without path",
			cfg:     WalletConfig{Network: NetworkMainnet, EthPrivateKey: "0x01", CacheBackend: CacheBackendBadger},
			wantErr: "cachePath",
		},
		{
			name:    "redis without address",
			cfg:     WalletConfig{Network: NetworkMainnet, EthPrivateKey: "0x01", CacheBackend: CacheBackendRedis},
			wantErr: "redisAddress",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWalletConfig_Validate_WatchOnly(t *testing.T) {
	cfg := &WalletConfig{
		Network:    NetworkMainnet,
		EthAddress: "0xaabbccddeeff00112233445566778899aabbccdd",
	}
	require.NoError(t, cfg.Validate())
}

func TestGetChainIDForNetwork(t *testing.T) {
	id, err := GetChainIDForNetwork(NetworkMainnet)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	_, err = GetChainIDForNetwork("ropsten")
	require.Error(t, err)
}
