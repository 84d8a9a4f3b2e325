package redis

import (
	"os"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncwave/zkwallet-go/pkg/logger"
	"github.com/syncwave/zkwallet-go/pkg/token"
	"github.com/syncwave/zkwallet-go/pkg/types"
)

// getTestRedisAddress returns the Redis address for testing.
// Uses REDIS_TEST_ADDRESS env var if set, otherwise defaults to localhost:6379.
func getTestRedisAddress() string {
	if addr := os.Getenv("REDIS_TEST_ADDRESS"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

// requireRedis skips the test if Redis is not available
func requireRedis(t *testing.T) *RedisCache {
	t.Helper()

	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	cfg := &RedisConfig{
		Address:   getTestRedisAddress(),
		DB:        15, // Use DB 15 for tests to avoid conflicts
		KeyPrefix: "test:",
	}

	rc, err := NewRedisCache(cfg, testLogger)
	if err != nil {
		t.Skipf("Redis not available at %s: %v", cfg.Address, err)
		return nil
	}
	return rc
}

func TestRedisCache_SaveAndLoadTokens(t *testing.T) {
	rc := requireRedis(t)
	defer func() { _ = rc.Close() }()

	tokens := []*token.Token{
		{ID: 0, Symbol: "ETH", Decimals: 18},
		{ID: 4, Address: common.HexToAddress("0xeb8f08a975ab53e34d8a0330e0d34de942c95926"), Symbol: "USDC", Decimals: 6},
	}
	require.NoError(t, rc.SaveTokens(tokens))

	loaded, err := rc.LoadTokens()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, types.TokenID(4), loaded[1].ID)
	assert.Equal(t, "USDC", loaded[1].Symbol)
}

func TestRedisCache_AccountID(t *testing.T) {
	rc := requireRedis(t)
	defer func() { _ = rc.Close() }()

	addr := common.HexToAddress("0xaabbccddeeff00112233445566778899aabbccdd")
	require.NoError(t, rc.SaveAccountID(addr, types.AccountID(77)))

	id, err := rc.LoadAccountID(addr)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, types.AccountID(77), *id)
}

func TestRedisCache_LoadAccountID_NotFound(t *testing.T) {
	rc := requireRedis(t)
	defer func() { _ = rc.Close() }()

	id, err := rc.LoadAccountID(common.HexToAddress("0x0000000000000000000000000000000000000042"))
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestRedisCache_Close(t *testing.T) {
	rc := requireRedis(t)

	require.NoError(t, rc.Close())
	require.NoError(t, rc.Close())

	_, err := rc.LoadTokens()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}

func TestRedisCache_Config_Nil(t *testing.T) {
	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	_, err := NewRedisCache(nil, testLogger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil")
}

func TestRedisCache_Config_EmptyAddress(t *testing.T) {
	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	_, err := NewRedisCache(&RedisConfig{}, testLogger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}
