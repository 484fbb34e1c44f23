package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/weiawesome/wes-estate/pkg/pubsub"
)

// opStore records the operations it receives.
type opStore struct {
	Store
	mu       sync.Mutex
	deletes  [][]string
	patterns []string
}

func (o *opStore) Delete(ctx context.Context, keys ...string) error {
	o.mu.Lock()
	o.deletes = append(o.deletes, keys)
	o.mu.Unlock()
	return o.Store.Delete(ctx, keys...)
}

func (o *opStore) DeleteByPattern(ctx context.Context, pattern string) error {
	o.mu.Lock()
	o.patterns = append(o.patterns, pattern)
	o.mu.Unlock()
	return o.Store.DeleteByPattern(ctx, pattern)
}

func TestInvalidateTargets(t *testing.T) {
	mem, _ := newMemoryStore(t)
	store := &opStore{Store: mem}
	c := New(store, time.Minute)
	ctx := context.Background()

	propKey, _ := DeriveKey("property", map[string]any{"id": "p1"})
	otherKey, _ := DeriveKey("property", map[string]any{"id": "p2"})
	listKey, _ := DeriveKey("properties", map[string]any{"page": 1, "limit": 10})
	favKey, _ := DeriveKey(Scope("favorites", "u1"), map[string]any{"page": 1, "limit": 10})
	for _, k := range []string{propKey, otherKey, listKey, favKey} {
		_ = mem.SetWithExpiry(ctx, k, []byte(`1`), time.Minute)
	}

	c.Invalidate(ctx,
		Key(propKey), Namespace("properties"), Namespace("search"),
		Namespace("properties"), Key(propKey), Namespace("favorites"),
	)

	if len(store.deletes) != 1 || len(store.deletes[0]) != 1 || store.deletes[0][0] != propKey {
		t.Errorf("deletes = %v", store.deletes)
	}
	wantPatterns := []string{"properties:*", "search:*", "favorites:*"}
	if len(store.patterns) != len(wantPatterns) {
		t.Fatalf("patterns = %v, want %v", store.patterns, wantPatterns)
	}
	for i := range wantPatterns {
		if store.patterns[i] != wantPatterns[i] {
			t.Errorf("patterns[%d] = %q, want %q", i, store.patterns[i], wantPatterns[i])
		}
	}

	for _, k := range []string{propKey, listKey, favKey} {
		if _, err := mem.Get(ctx, k); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("Get(%q) error = %v, want miss", k, err)
		}
	}
	if _, err := mem.Get(ctx, otherKey); err != nil {
		t.Errorf("unrelated property key removed: %v", err)
	}
}

func TestInvalidateNoTargets(t *testing.T) {
	store := &failingStore{err: errors.New("should not be called")}
	New(store, time.Minute).Invalidate(context.Background())
	if store.calls.Load() != 0 {
		t.Errorf("store called %d times", store.calls.Load())
	}
}

func TestInvalidateSwallowsFailures(t *testing.T) {
	store := &failingStore{err: ErrCacheUnavailable}
	reg := prometheus.NewRegistry()
	c := New(store, time.Minute, WithMetrics(NewMetrics(reg)))

	c.Invalidate(context.Background(), Key("property:x"), Namespace("properties"), Namespace("bad*ns"))

	if store.calls.Load() != 2 {
		t.Errorf("store called %d times, want 2", store.calls.Load())
	}
	m := c.metrics
	if v := testutil.ToFloat64(m.Invalidations.WithLabelValues(kindNamespace, "error")); v != 2 {
		t.Errorf("namespace errors = %v, want 2", v)
	}
	if v := testutil.ToFloat64(m.Invalidations.WithLabelValues(kindKey, "error")); v != 1 {
		t.Errorf("key errors = %v, want 1", v)
	}
}

func TestReadAfterInvalidateRecomputes(t *testing.T) {
	store, _ := newRedisStore(t, "estate:")
	c := New(store, time.Minute)
	ctx := context.Background()

	key, _ := DeriveKey("properties", map[string]any{"page": 1, "limit": 10})
	v1, _ := Read(ctx, c, key, 0, func(context.Context) (string, error) { return "old", nil })
	c.Invalidate(ctx, Namespace("properties"))
	v2, _ := Read(ctx, c, key, 0, func(context.Context) (string, error) { return "new", nil })

	if v1 != "old" || v2 != "new" {
		t.Errorf("reads = %q, %q; want old, new", v1, v2)
	}
}

func TestBusPropagatesToPeerL1(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	shared := NewRedisStoreFromClient(client, RedisConfig{})

	newNode := func(id string) (*Cache, *MemoryStore, *Bus) {
		l1, _ := newMemoryStore(t)
		ps := pubsub.NewRedisPubSubFromClient(client)
		t.Cleanup(func() { ps.Close() })
		bus := NewBus(ps, id, l1, nil)
		return New(NewTieredStore(l1, shared, time.Hour), time.Hour, WithBus(bus)), l1, bus
	}

	nodeA, l1A, busA := newNode("a")
	nodeB, l1B, busB := newNode("b")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for _, bus := range []*Bus{busA, busB} {
		ready := make(chan struct{})
		wg.Add(1)
		go func(b *Bus) {
			defer wg.Done()
			if err := b.Run(ctx, ready); err != nil {
				t.Errorf("Run() error = %v", err)
			}
		}(bus)
		<-ready
	}

	key, _ := DeriveKey("properties", map[string]any{"page": 1})
	_, _ = Read(ctx, nodeA, key, 0, func(context.Context) (int, error) { return 1, nil })
	_, _ = Read(ctx, nodeB, key, 0, func(context.Context) (int, error) { return 1, nil })
	if _, err := l1B.Get(ctx, key); err != nil {
		t.Fatalf("node B L1 not populated: %v", err)
	}

	nodeA.Invalidate(ctx, Namespace("properties"))

	if _, err := l1A.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("node A L1 still holds key: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := l1B.Get(ctx, key); errors.Is(err, ErrCacheMiss) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("node B L1 was not invalidated by peer broadcast")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	wg.Wait()
}

func TestBusIgnoresOwnAndForeignEvents(t *testing.T) {
	l1, _ := newMemoryStore(t)
	store := &opStore{Store: l1}
	bus := NewBus(nil, "self", store, nil)
	ctx := context.Background()

	own, _ := pubsub.NewEvent(pubsub.EventCacheInvalidate, "self", []Target{Namespace("properties")})
	other, _ := pubsub.NewEvent("something_else", "peer", []Target{Namespace("properties")})
	bad := &pubsub.Event{Type: pubsub.EventCacheInvalidate, Source: "peer", Payload: []byte(`{`)}
	good, _ := pubsub.NewEvent(pubsub.EventCacheInvalidate, "peer", []Target{Namespace("search"), Key("property:1")})

	for _, ev := range []*pubsub.Event{own, other, bad, good} {
		bus.handle(ctx, ev)
	}

	if len(store.patterns) != 1 || store.patterns[0] != "search:*" {
		t.Errorf("patterns = %v", store.patterns)
	}
	if len(store.deletes) != 1 || store.deletes[0][0] != "property:1" {
		t.Errorf("deletes = %v", store.deletes)
	}
}
