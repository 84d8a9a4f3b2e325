package memory

import (
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncwave/zkwallet-go/pkg/token"
	"github.com/syncwave/zkwallet-go/pkg/types"
)

func sampleTokens() []*token.Token {
	return []*token.Token{
		{ID: 0, Address: common.Address{}, Symbol: "ETH", Decimals: 18},
		{ID: 2, Address: common.HexToAddress("0xeb8f08a975ab53e34d8a0330e0d34de942c95926"), Symbol: "USDC", Decimals: 6},
	}
}

func TestMemoryCache_SaveAndLoadTokens(t *testing.T) {
	cache := NewMemoryCache()
	defer func() { _ = cache.Close() }()

	loaded, err := cache.LoadTokens()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	require.NoError(t, cache.SaveTokens(sampleTokens()))

	loaded, err = cache.LoadTokens()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "USDC", loaded[1].Symbol)
	assert.Equal(t, uint8(6), loaded[1].Decimals)
}

func TestMemoryCache_LoadTokensReturnsCopy(t *testing.T) {
	cache := NewMemoryCache()
	defer func() { _ = cache.Close() }()

	require.NoError(t, cache.SaveTokens(sampleTokens()))

	loaded, err := cache.LoadTokens()
	require.NoError(t, err)
	loaded[0].Symbol = "MUTATED"

	again, err := cache.LoadTokens()
	require.NoError(t, err)
	assert.Equal(t, "ETH", again[0].Symbol)
}

func TestMemoryCache_SaveTokens_Nil(t *testing.T) {
	cache := NewMemoryCache()
	defer func() { _ = cache.Close() }()

	err := cache.SaveTokens(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil")
}

func TestMemoryCache_AccountID(t *testing.T) {
	cache := NewMemoryCache()
	defer func() { _ = cache.Close() }()

	addr := common.HexToAddress("0xaabbccddeeff00112233445566778899aabbccdd")

	id, err := cache.LoadAccountID(addr)
	require.NoError(t, err)
	assert.Nil(t, id)

	require.NoError(t, cache.SaveAccountID(addr, types.AccountID(44)))

	id, err = cache.LoadAccountID(addr)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, types.AccountID(44), *id)

	// Overwrites are idempotent
	require.NoError(t, cache.SaveAccountID(addr, types.AccountID(44)))
}

func TestMemoryCache_Close(t *testing.T) {
	cache := NewMemoryCache()

	require.NoError(t, cache.Close())
	require.NoError(t, cache.Close())

	err := cache.SaveTokens(sampleTokens())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")

	_, err = cache.LoadTokens()
	require.Error(t, err)

	err = cache.HealthCheck()
	require.Error(t, err)
}

func TestMemoryCache_ThreadSafety(t *testing.T) {
	cache := NewMemoryCache()
	defer func() { _ = cache.Close() }()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.NoError(t, cache.SaveTokens(sampleTokens()))
				addr := common.BigToAddress(common.Big1)
				assert.NoError(t, cache.SaveAccountID(addr, types.AccountID(n)))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, err := cache.LoadTokens()
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}
