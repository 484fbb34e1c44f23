package cache

import (
	"context"
	"errors"
	"time"
)

// TieredStore puts an in-process L1 in front of a shared L2. Reads check L1,
// then L2, promoting L2 hits into L1. L1 entries live for at most l1TTL so
// peers converge even if an invalidation broadcast is lost.
type TieredStore struct {
	l1    *MemoryStore
	l2    Store
	l1TTL time.Duration
}

// NewTieredStore creates a two-level store.
func NewTieredStore(l1 *MemoryStore, l2 Store, l1TTL time.Duration) *TieredStore {
	if l1TTL <= 0 {
		l1TTL = 30 * time.Second
	}
	return &TieredStore{l1: l1, l2: l2, l1TTL: l1TTL}
}

// Local returns the in-process layer.
func (t *TieredStore) Local() *MemoryStore {
	return t.l1
}

func (t *TieredStore) Get(ctx context.Context, key string) ([]byte, error) {
	if v, err := t.l1.Get(ctx, key); err == nil {
		return v, nil
	}

	v, err := t.l2.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	_ = t.l1.SetWithExpiry(ctx, key, v, t.l1TTL)
	return v, nil
}

func (t *TieredStore) SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := checkTTL(ttl); err != nil {
		return err
	}

	l1TTL := t.l1TTL
	if ttl < l1TTL {
		l1TTL = ttl
	}
	_ = t.l1.SetWithExpiry(ctx, key, value, l1TTL)

	return t.l2.SetWithExpiry(ctx, key, value, ttl)
}

func (t *TieredStore) Delete(ctx context.Context, keys ...string) error {
	_ = t.l1.Delete(ctx, keys...)
	return t.l2.Delete(ctx, keys...)
}

func (t *TieredStore) DeleteByPattern(ctx context.Context, pattern string) error {
	if err := t.l1.DeleteByPattern(ctx, pattern); err != nil {
		return err
	}
	return t.l2.DeleteByPattern(ctx, pattern)
}

func (t *TieredStore) Close() error {
	return errors.Join(t.l1.Close(), t.l2.Close())
}
