package badger

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncwave/zkwallet-go/pkg/logger"
	"github.com/syncwave/zkwallet-go/pkg/token"
	"github.com/syncwave/zkwallet-go/pkg/types"
)

func newTestCache(t *testing.T) *BadgerCache {
	t.Helper()

	testLogger, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	require.NoError(t, err)

	cache, err := NewBadgerCache(t.TempDir(), testLogger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestBadgerCache_SaveAndLoadTokens(t *testing.T) {
	cache := newTestCache(t)

	loaded, err := cache.LoadTokens()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	tokens := []*token.Token{
		{ID: 0, Symbol: "ETH", Decimals: 18},
		{ID: 1, Address: common.HexToAddress("0x6b175474e89094c44da98b954eedeac495271d0f"), Symbol: "DAI", Decimals: 18},
	}
	require.NoError(t, cache.SaveTokens(tokens))

	loaded, err = cache.LoadTokens()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, types.TokenID(1), loaded[1].ID)
	assert.Equal(t, "DAI", loaded[1].Symbol)
	assert.Equal(t, tokens[1].Address, loaded[1].Address)
}

func TestBadgerCache_AccountID(t *testing.T) {
	cache := newTestCache(t)

	addr := common.HexToAddress("0xaabbccddeeff00112233445566778899aabbccdd")

	id, err := cache.LoadAccountID(addr)
	require.NoError(t, err)
	assert.Nil(t, id)

	require.NoError(t, cache.SaveAccountID(addr, types.AccountID(1234)))

	id, err = cache.LoadAccountID(addr)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, types.AccountID(1234), *id)

	// Distinct addresses keep distinct entries
	other := common.HexToAddress("0x1122334455667788990011223344556677889900")
	id, err = cache.LoadAccountID(other)
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestBadgerCache_PersistsAcrossReopen(t *testing.T) {
	testLogger, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	require.NoError(t, err)
	dir := t.TempDir()

	cache, err := NewBadgerCache(dir, testLogger)
	require.NoError(t, err)
	require.NoError(t, cache.SaveTokens([]*token.Token{{ID: 0, Symbol: "ETH", Decimals: 18}}))
	require.NoError(t, cache.Close())

	reopened, err := NewBadgerCache(dir, testLogger)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	loaded, err := reopened.LoadTokens()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "ETH", loaded[0].Symbol)
}

func TestBadgerCache_Close(t *testing.T) {
	cache := newTestCache(t)

	require.NoError(t, cache.Close())
	require.NoError(t, cache.Close())

	err := cache.SaveTokens([]*token.Token{{ID: 0, Symbol: "ETH", Decimals: 18}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")

	err = cache.HealthCheck()
	require.Error(t, err)
}

func TestBadgerCache_HealthCheck(t *testing.T) {
	cache := newTestCache(t)
	require.NoError(t, cache.HealthCheck())
}
