package cache

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// MemoryStore is an in-process Store backed by ristretto. Ristretto cannot
// enumerate its keys, so the store keeps an index of live keys and their
// expiry to serve DeleteByPattern.
type MemoryStore struct {
	rc      *ristretto.Cache[string, []byte]
	maxKeys int64

	mu    sync.Mutex
	index map[string]time.Time
	now   func() time.Time
}

// NewMemoryStore creates a store holding up to maxKeys entries (each entry
// has a cost of 1).
func NewMemoryStore(maxKeys int64) (*MemoryStore, error) {
	if maxKeys <= 0 {
		maxKeys = 10000
	}
	rc, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxKeys * 10,
		MaxCost:     maxKeys,
		BufferItems: 64,
		// Cost counts entries, not bytes.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	return &MemoryStore{
		rc:      rc,
		maxKeys: maxKeys,
		index:   make(map[string]time.Time),
		now:     time.Now,
	}, nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	exp, ok := m.index[key]
	if ok && !m.now().Before(exp) {
		delete(m.index, key)
		m.rc.Del(key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return nil, ErrCacheMiss
	}

	v, found := m.rc.Get(key)
	if !found {
		// Evicted by ristretto's admission policy.
		m.forget(key)
		return nil, ErrCacheMiss
	}
	return bytes.Clone(v), nil
}

func (m *MemoryStore) SetWithExpiry(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if err := checkTTL(ttl); err != nil {
		return err
	}

	if !m.rc.SetWithTTL(key, bytes.Clone(value), 1, ttl) {
		// Rejected by admission; make sure no older value survives.
		m.rc.Del(key)
		m.forget(key)
		return nil
	}
	m.rc.Wait()

	m.mu.Lock()
	m.index[key] = m.now().Add(ttl)
	if int64(len(m.index)) > 2*m.maxKeys {
		m.pruneLocked()
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.index, key)
		m.rc.Del(key)
	}
	return nil
}

func (m *MemoryStore) DeleteByPattern(_ context.Context, pattern string) error {
	prefix, err := patternPrefix(pattern)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.index {
		if strings.HasPrefix(key, prefix) {
			delete(m.index, key)
			m.rc.Del(key)
		}
	}
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.index = make(map[string]time.Time)
	m.mu.Unlock()
	m.rc.Close()
	return nil
}

func (m *MemoryStore) forget(key string) {
	m.mu.Lock()
	delete(m.index, key)
	m.mu.Unlock()
}

// pruneLocked drops expired keys and keys ristretto no longer holds.
func (m *MemoryStore) pruneLocked() {
	now := m.now()
	for key, exp := range m.index {
		if !now.Before(exp) {
			delete(m.index, key)
			continue
		}
		if _, ok := m.rc.Get(key); !ok {
			delete(m.index, key)
		}
	}
}
