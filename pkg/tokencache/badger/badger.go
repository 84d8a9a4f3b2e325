package badger

import (
	"encoding/binary"
	"fmt"
	"path/filepath"
	"sync"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/syncwave/zkwallet-go/pkg/token"
	"github.com/syncwave/zkwallet-go/pkg/tokencache"
	"github.com/syncwave/zkwallet-go/pkg/types"
)

// Key prefixes for namespacing
const (
	keyTokenList       = "tokens:list"
	keyPrefixAccountID = "account:"
	keySchemaVersion   = "metadata:schema_version"

	currentSchemaVersion = "v1"
)

// BadgerCache is a disk-backed tokencache.Cache. Suitable for CLI tooling
// where the token list should survive between invocations.
type BadgerCache struct {
	db     *badgerdb.DB
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

var _ tokencache.Cache = (*BadgerCache)(nil)

// NewBadgerCache opens (or creates) the cache database at dataPath.
func NewBadgerCache(dataPath string, logger *zap.Logger) (*BadgerCache, error) {
	absPath, err := filepath.Abs(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	opts := badgerdb.DefaultOptions(absPath)
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	// Cache data is re-fetchable; trade durability for faster writes.
	opts.SyncWrites = false
	opts.CompactL0OnClose = true
	opts.NumVersionsToKeep = 1

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", absPath, err)
	}

	bc := &BadgerCache{
		db:     db,
		logger: logger,
	}

	if err := bc.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Sugar().Debugw("badger token cache initialized", "path", absPath)
	return bc, nil
}

// initSchema initializes or validates the schema version
func (b *BadgerCache) initSchema() error {
	return b.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keySchemaVersion))
		if err == badgerdb.ErrKeyNotFound {
			return txn.Set([]byte(keySchemaVersion), []byte(currentSchemaVersion))
		}
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}

		var existing string
		if err := item.Value(func(val []byte) error {
			existing = string(val)
			return nil
		}); err != nil {
			return fmt.Errorf("failed to read schema version value: %w", err)
		}
		if existing != currentSchemaVersion {
			return fmt.Errorf("unsupported schema version: %s (expected: %s)", existing, currentSchemaVersion)
		}
		return nil
	})
}

func (b *BadgerCache) SaveTokens(tokens []*token.Token) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("cache is closed")
	}

	data, err := tokencache.MarshalTokens(tokens)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(keyTokenList), data)
	})
}

func (b *BadgerCache) LoadTokens() ([]*token.Token, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("cache is closed")
	}

	var data []byte
	err := b.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keyTokenList))
		if err == badgerdb.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load token list: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	return tokencache.UnmarshalTokens(data)
}

func accountKey(address common.Address) []byte {
	return append([]byte(keyPrefixAccountID), address.Bytes()...)
}

func (b *BadgerCache) SaveAccountID(address common.Address, id types.AccountID) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("cache is closed")
	}

	var value [4]byte
	binary.BigEndian.PutUint32(value[:], uint32(id))
	return b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(accountKey(address), value[:])
	})
}

func (b *BadgerCache) LoadAccountID(address common.Address) (*types.AccountID, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("cache is closed")
	}

	var id *types.AccountID
	err := b.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(accountKey(address))
		if err == badgerdb.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 4 {
				return fmt.Errorf("corrupt account id entry: %d bytes", len(val))
			}
			parsed := types.AccountID(binary.BigEndian.Uint32(val))
			id = &parsed
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load account id: %w", err)
	}
	return id, nil
}

func (b *BadgerCache) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return b.db.Close()
}

func (b *BadgerCache) HealthCheck() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("cache is closed")
	}
	return b.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get([]byte(keySchemaVersion))
		return err
	})
}
