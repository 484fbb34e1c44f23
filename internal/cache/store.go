package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrCacheMiss is returned by Store.Get when the key is absent or expired.
	ErrCacheMiss = errors.New("cache miss")
	// ErrCacheUnavailable wraps infrastructure failures of a store.
	ErrCacheUnavailable = errors.New("cache unavailable")
	// ErrCorruptEntry marks a stored value that cannot be decoded.
	ErrCorruptEntry = errors.New("corrupt cache entry")
	// ErrInvalidTTL is returned when an entry is written without a positive TTL.
	ErrInvalidTTL = errors.New("cache ttl must be positive")
	// ErrInvalidPattern is returned for patterns other than "prefix*".
	ErrInvalidPattern = errors.New("cache pattern must end with a single trailing wildcard")
)

// Store is the key-value collaborator behind the cache.
type Store interface {
	// Get returns the stored bytes or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)
	// SetWithExpiry stores value under key for ttl, which must be positive.
	SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// DeleteByPattern removes every key starting with the pattern's prefix.
	// Only a single trailing "*" is supported.
	DeleteByPattern(ctx context.Context, pattern string) error
	Close() error
}

// patternPrefix returns the literal prefix of a trailing-wildcard pattern.
func patternPrefix(pattern string) (string, error) {
	prefix, ok := strings.CutSuffix(pattern, "*")
	if !ok || prefix == "" || strings.ContainsAny(prefix, `*?[]\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}
	return prefix, nil
}

func checkTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
	}
	return nil
}

func unavailable(op, key string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrCacheUnavailable, op, key, err)
}
