// Package promptcache provides compiled prompt caching with memory and Redis
// backends. The cache is best effort: callers validate the stored input hash
// before trusting an entry, so a cold or flushed cache only costs a
// recompile.
package promptcache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"zooworld/assistant-api/internal/domain/assistant"
)

// Driver selects the cache backend.
type Driver string

const (
	DriverMemory Driver = "memory"
	DriverRedis  Driver = "redis"
)

var (
	ErrInvalidDriver = errors.New("promptcache: unknown driver")
	ErrInvalidConfig = errors.New("promptcache: invalid configuration")
)

const keyPrefix = "prompt:"

// StoreOption is a functional option for configuring a cache store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// WithRedisClient sets the Redis client for the Redis driver.
func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) {
		c.redisClient = client
	}
}

// WithTTL sets the entry lifetime. Zero or negative falls back to one hour.
func WithTTL(ttl time.Duration) StoreOption {
	return func(c *storeConfig) {
		c.ttl = ttl
	}
}

// NewStore creates a prompt cache for the given driver. "memory" needs no
// options; "redis" requires WithRedisClient.
func NewStore(driver Driver, opts ...StoreOption) (assistant.PromptCache, error) {
	config := &storeConfig{}
	for _, opt := range opts {
		opt(config)
	}
	if config.ttl <= 0 {
		config.ttl = time.Hour
	}

	switch driver {
	case DriverMemory:
		return &memoryStore{
			entries: make(map[string]memoryEntry),
			ttl:     config.ttl,
		}, nil

	case DriverRedis:
		if config.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		return &redisStore{
			client: config.redisClient,
			ttl:    config.ttl,
		}, nil

	default:
		return nil, ErrInvalidDriver
	}
}

type memoryEntry struct {
	cached    assistant.CachedPrompt
	expiresAt time.Time
}

type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

// Get returns nil without error on a miss.
func (s *memoryStore) Get(ctx context.Context, assistantID string) (*assistant.CachedPrompt, error) {
	s.mu.RLock()
	entry, ok := s.entries[assistantID]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, assistantID)
		s.mu.Unlock()
		return nil, nil
	}

	cached := entry.cached
	return &cached, nil
}

func (s *memoryStore) Set(ctx context.Context, assistantID string, entry *assistant.CachedPrompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[assistantID] = memoryEntry{
		cached:    *entry,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, assistantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, assistantID)
	return nil
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// Get returns nil without error on a miss.
func (s *redisStore) Get(ctx context.Context, assistantID string) (*assistant.CachedPrompt, error) {
	val, err := s.client.Get(ctx, keyPrefix+assistantID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cached assistant.CachedPrompt
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return nil, err
	}
	return &cached, nil
}

func (s *redisStore) Set(ctx context.Context, assistantID string, entry *assistant.CachedPrompt) error {
	val, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+assistantID, val, s.ttl).Err()
}

func (s *redisStore) Delete(ctx context.Context, assistantID string) error {
	return s.client.Del(ctx, keyPrefix+assistantID).Err()
}
