package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/syncwave/zkwallet-go/pkg/token"
	"github.com/syncwave/zkwallet-go/pkg/tokencache"
	"github.com/syncwave/zkwallet-go/pkg/types"
)

// Key prefixes for namespacing in Redis
const (
	keyTokenList         = "zkwallet:tokens:list"
	keyPrefixAccountID   = "zkwallet:account:"
	keySchemaVersion     = "zkwallet:metadata:schema_version"
	currentSchemaVersion = "v1"
)

// RedisCache is a tokencache.Cache backed by Redis. Suitable for services
// where several wallet instances share one cache.
type RedisCache struct {
	client    *redis.Client
	logger    *zap.Logger
	keyPrefix string // Custom prefix for all keys
	mu        sync.RWMutex
	closed    bool
}

var _ tokencache.Cache = (*RedisCache)(nil)

// RedisConfig holds the configuration for connecting to Redis
type RedisConfig struct {
	// Address is the Redis server address (host:port)
	Address string
	// Password is the optional Redis password
	Password string
	// DB is the Redis database number (0-15)
	DB int
	// KeyPrefix is an optional custom prefix for all keys (for multi-tenant
	// setups). If set, keys become e.g. "myapp:zkwallet:tokens:list".
	KeyPrefix string
}

// NewRedisCache creates a new Redis-backed token cache.
func NewRedisCache(cfg *RedisConfig, logger *zap.Logger) (*RedisCache, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	rc := &RedisCache{
		client:    client,
		logger:    logger,
		keyPrefix: cfg.KeyPrefix,
	}

	if err := rc.initSchema(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Sugar().Debugw("Redis token cache initialized", "address", cfg.Address, "db", cfg.DB)
	return rc, nil
}

// prefixKey adds the custom key prefix (if configured) to a key
func (r *RedisCache) prefixKey(key string) string {
	if r.keyPrefix == "" {
		return key
	}
	return r.keyPrefix + key
}

// initSchema initializes or validates the schema version
func (r *RedisCache) initSchema(ctx context.Context) error {
	schemaKey := r.prefixKey(keySchemaVersion)

	existingVersion, err := r.client.Get(ctx, schemaKey).Result()
	if err == redis.Nil {
		return r.client.Set(ctx, schemaKey, currentSchemaVersion, 0).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if existingVersion != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
	}
	return nil
}

func (r *RedisCache) SaveTokens(tokens []*token.Token) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("cache is closed")
	}

	data, err := tokencache.MarshalTokens(tokens)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return r.client.Set(ctx, r.prefixKey(keyTokenList), data, 0).Err()
}

func (r *RedisCache) LoadTokens() ([]*token.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("cache is closed")
	}

	ctx := context.Background()
	data, err := r.client.Get(ctx, r.prefixKey(keyTokenList)).Bytes()
	if err == redis.Nil {
		return nil, nil // Not cached yet is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token list: %w", err)
	}
	return tokencache.UnmarshalTokens(data)
}

func (r *RedisCache) accountKey(address common.Address) string {
	return r.prefixKey(keyPrefixAccountID + address.Hex())
}

func (r *RedisCache) SaveAccountID(address common.Address, id types.AccountID) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("cache is closed")
	}

	var value [4]byte
	binary.BigEndian.PutUint32(value[:], uint32(id))

	ctx := context.Background()
	return r.client.Set(ctx, r.accountKey(address), value[:], 0).Err()
}

func (r *RedisCache) LoadAccountID(address common.Address) (*types.AccountID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("cache is closed")
	}

	ctx := context.Background()
	data, err := r.client.Get(ctx, r.accountKey(address)).Bytes()
	if err == redis.Nil {
		return nil, nil // Unknown is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account id: %w", err)
	}
	if len(data) != 4 {
		return nil, fmt.Errorf("corrupt account id entry: %d bytes", len(data))
	}

	id := types.AccountID(binary.BigEndian.Uint32(data))
	return &id, nil
}

func (r *RedisCache) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil // Already closed, idempotent
	}
	r.closed = true
	r.mu.Unlock()

	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}
	return nil
}

func (r *RedisCache) HealthCheck() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("cache is closed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}
