package memory

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/syncwave/zkwallet-go/pkg/token"
	"github.com/syncwave/zkwallet-go/pkg/tokencache"
	"github.com/syncwave/zkwallet-go/pkg/types"
)

// MemoryCache is an in-memory tokencache.Cache. Nothing survives the
// process; every wallet session starts cold. Thread-safe via sync.RWMutex,
// with deep copies to prevent external mutation.
type MemoryCache struct {
	mu sync.RWMutex

	tokens     []*token.Token
	accountIDs map[common.Address]types.AccountID
	closed     bool
}

var _ tokencache.Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		accountIDs: make(map[common.Address]types.AccountID),
	}
}

func copyTokens(tokens []*token.Token) []*token.Token {
	out := make([]*token.Token, len(tokens))
	for i, t := range tokens {
		copied := *t
		out[i] = &copied
	}
	return out
}

func (m *MemoryCache) SaveTokens(tokens []*token.Token) error {
	if tokens == nil {
		return fmt.Errorf("cannot save nil token list")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("cache is closed")
	}
	m.tokens = copyTokens(tokens)
	return nil
}

func (m *MemoryCache) LoadTokens() ([]*token.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("cache is closed")
	}
	if m.tokens == nil {
		return nil, nil
	}
	return copyTokens(m.tokens), nil
}

func (m *MemoryCache) SaveAccountID(address common.Address, id types.AccountID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("cache is closed")
	}
	m.accountIDs[address] = id
	return nil
}

func (m *MemoryCache) LoadAccountID(address common.Address) (*types.AccountID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("cache is closed")
	}
	id, found := m.accountIDs[address]
	if !found {
		return nil, nil
	}
	return &id, nil
}

func (m *MemoryCache) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MemoryCache) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return fmt.Errorf("cache is closed")
	}
	return nil
}
