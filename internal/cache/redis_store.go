package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultOpTimeout = 2 * time.Second
	defaultScanCount = 500
)

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Address   string
	Password  string
	DB        int
	PoolSize  int
	Prefix    string
	OpTimeout time.Duration
	ScanCount int64
}

// RedisStore is a Store backed by Redis. Keys and patterns are stored under
// the configured prefix.
type RedisStore struct {
	client     *redis.Client
	ownsClient bool
	prefix     string
	opTimeout  time.Duration
	scanCount  int64
}

// NewRedisStore creates a store with its own client. Call Connect before use.
func NewRedisStore(cfg RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	s := NewRedisStoreFromClient(client, cfg)
	s.ownsClient = true
	return s
}

// NewRedisStoreFromClient wraps an existing client. Close leaves the client open.
func NewRedisStoreFromClient(client *redis.Client, cfg RedisConfig) *RedisStore {
	timeout := cfg.OpTimeout
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	count := cfg.ScanCount
	if count <= 0 {
		count = defaultScanCount
	}
	return &RedisStore{
		client:    client,
		prefix:    cfg.Prefix,
		opTimeout: timeout,
		scanCount: count,
	}
}

// Connect verifies the connection with PING.
func (s *RedisStore) Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: failed to connect to redis: %w", ErrCacheUnavailable, err)
	}
	return nil
}

func (s *RedisStore) k(key string) string {
	return s.prefix + key
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, s.k(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, unavailable("get", key, err)
	}
	return data, nil
}

func (s *RedisStore) SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := checkTTL(ttl); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.k(key), value, ttl).Err(); err != nil {
		return unavailable("set", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = s.k(key)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Del(ctx, prefixed...).Err(); err != nil {
		return unavailable("delete", keys[0], err)
	}
	return nil
}

// DeleteByPattern walks the keyspace with SCAN MATCH and removes matches with
// UNLINK one batch at a time, so it never blocks Redis the way KEYS would.
func (s *RedisStore) DeleteByPattern(ctx context.Context, pattern string) error {
	if _, err := patternPrefix(pattern); err != nil {
		return err
	}

	match := s.k(pattern)
	var cursor uint64
	for {
		keys, next, err := s.scan(ctx, cursor, match)
		if err != nil {
			return unavailable("scan", pattern, err)
		}

		if len(keys) > 0 {
			if err := s.unlink(ctx, keys); err != nil {
				return unavailable("unlink", pattern, err)
			}
		}

		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (s *RedisStore) scan(ctx context.Context, cursor uint64, match string) ([]string, uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	return s.client.Scan(ctx, cursor, match, s.scanCount).Result()
}

func (s *RedisStore) unlink(ctx context.Context, keys []string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	return s.client.Unlink(ctx, keys...).Err()
}

func (s *RedisStore) Close() error {
	if !s.ownsClient {
		return nil
	}
	return s.client.Close()
}
