package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// failingStore fails every operation with err.
type failingStore struct {
	err   error
	calls atomic.Int32
}

func (f *failingStore) Get(context.Context, string) ([]byte, error) {
	f.calls.Add(1)
	return nil, f.err
}

func (f *failingStore) SetWithExpiry(context.Context, string, []byte, time.Duration) error {
	f.calls.Add(1)
	return f.err
}

func (f *failingStore) Delete(context.Context, ...string) error {
	f.calls.Add(1)
	return f.err
}

func (f *failingStore) DeleteByPattern(context.Context, string) error {
	f.calls.Add(1)
	return f.err
}

func (f *failingStore) Close() error { return nil }

// recordingStore wraps a Store and remembers the TTLs it was given.
type recordingStore struct {
	Store
	mu   sync.Mutex
	ttls []time.Duration
}

func (r *recordingStore) SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	r.mu.Lock()
	r.ttls = append(r.ttls, ttl)
	r.mu.Unlock()
	return r.Store.SetWithExpiry(ctx, key, value, ttl)
}

type listing struct {
	ID    string  `json:"id"`
	Price float64 `json:"price"`
}

func counter[T any](v T, calls *atomic.Int32) func(context.Context) (T, error) {
	return func(context.Context) (T, error) {
		calls.Add(1)
		return v, nil
	}
}

func TestReadMissThenHit(t *testing.T) {
	store, _ := newMemoryStore(t)
	c := New(store, time.Minute)
	ctx := context.Background()

	var calls atomic.Int32
	want := listing{ID: "p1", Price: 1200}

	for i := 0; i < 3; i++ {
		got, err := Read(ctx, c, "property:p1", 0, counter(want, &calls))
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if got != want {
			t.Fatalf("Read() = %+v, want %+v", got, want)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("compute called %d times, want 1", n)
	}
}

func TestReadUsesTTL(t *testing.T) {
	mem, _ := newMemoryStore(t)
	store := &recordingStore{Store: mem}
	c := New(store, 30*time.Minute)
	ctx := context.Background()

	var calls atomic.Int32
	_, _ = Read(ctx, c, "search:a", time.Hour, counter(1, &calls))
	_, _ = Read(ctx, c, "search:b", 0, counter(1, &calls))
	_, _ = Read(ctx, c, "search:c", -time.Second, counter(1, &calls))

	want := []time.Duration{time.Hour, 30 * time.Minute, 30 * time.Minute}
	if len(store.ttls) != len(want) {
		t.Fatalf("ttls = %v, want %v", store.ttls, want)
	}
	for i := range want {
		if store.ttls[i] != want[i] {
			t.Errorf("ttls[%d] = %s, want %s", i, store.ttls[i], want[i])
		}
	}
}

func TestReadExpiresWithTTL(t *testing.T) {
	store, mr := newRedisStore(t, "")
	c := New(store, time.Minute)
	ctx := context.Background()

	var calls atomic.Int32
	_, _ = Read(ctx, c, "property:p1", time.Minute, counter("v", &calls))
	_, _ = Read(ctx, c, "property:p1", time.Minute, counter("v", &calls))
	mr.FastForward(61 * time.Second)
	_, _ = Read(ctx, c, "property:p1", time.Minute, counter("v", &calls))

	if n := calls.Load(); n != 2 {
		t.Errorf("compute called %d times, want 2", n)
	}
}

func TestReadComputeErrorNotCached(t *testing.T) {
	store, _ := newMemoryStore(t)
	c := New(store, time.Minute)
	ctx := context.Background()
	boom := errors.New("db down")

	_, err := Read(ctx, c, "property:p1", 0, func(context.Context) (listing, error) {
		return listing{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Read() error = %v, want %v", err, boom)
	}
	if _, err := store.Get(ctx, "property:p1"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("failed compute was cached: %v", err)
	}
}

func TestReadCorruptEntryRecomputes(t *testing.T) {
	store, _ := newMemoryStore(t)
	reg := prometheus.NewRegistry()
	c := New(store, time.Minute, WithMetrics(NewMetrics(reg)))
	ctx := context.Background()

	_ = store.SetWithExpiry(ctx, "property:p1", []byte("{not json"), time.Minute)

	var calls atomic.Int32
	got, err := Read(ctx, c, "property:p1", 0, counter(listing{ID: "p1"}, &calls))
	if err != nil || got.ID != "p1" || calls.Load() != 1 {
		t.Fatalf("Read() = %+v, %v (calls=%d)", got, err, calls.Load())
	}

	// The entry was overwritten with a valid value.
	got, err = Read(ctx, c, "property:p1", 0, counter(listing{ID: "other"}, &calls))
	if err != nil || got.ID != "p1" {
		t.Fatalf("Read() after repair = %+v, %v", got, err)
	}

	m := c.metrics
	if v := testutil.ToFloat64(m.Reads.WithLabelValues("property", OutcomeCorrupt)); v != 1 {
		t.Errorf("corrupt reads = %v, want 1", v)
	}
	if v := testutil.ToFloat64(m.Reads.WithLabelValues("property", OutcomeHit)); v != 1 {
		t.Errorf("hits = %v, want 1", v)
	}
}

func TestReadStoreUnavailable(t *testing.T) {
	store := &failingStore{err: ErrCacheUnavailable}
	reg := prometheus.NewRegistry()
	c := New(store, time.Minute, WithMetrics(NewMetrics(reg)))

	var calls atomic.Int32
	got, err := Read(context.Background(), c, "favorites:u1:abc", 0, counter(42, &calls))
	if err != nil || got != 42 {
		t.Fatalf("Read() = %v, %v; want 42, nil", got, err)
	}
	if calls.Load() != 1 {
		t.Errorf("compute called %d times, want 1", calls.Load())
	}

	m := c.metrics
	if v := testutil.ToFloat64(m.Reads.WithLabelValues("favorites", OutcomeUnavailable)); v != 1 {
		t.Errorf("unavailable reads = %v, want 1", v)
	}
	if v := testutil.ToFloat64(m.Writes.WithLabelValues("favorites", "error")); v != 1 {
		t.Errorf("failed writes = %v, want 1", v)
	}
}

func TestReadUnencodableValue(t *testing.T) {
	store, _ := newMemoryStore(t)
	c := New(store, time.Minute)

	got, err := Read(context.Background(), c, "k:1", 0, func(context.Context) (chan int, error) {
		return nil, nil
	})
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v", got, err)
	}
	if _, err := store.Get(context.Background(), "k:1"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("unencodable value was stored: %v", err)
	}
}

func TestReadConcurrentMisses(t *testing.T) {
	tests := []struct {
		name      string
		opts      []Option
		wantCalls int32
	}{
		{"herd", nil, 8},
		{"single flight", []Option{WithSingleFlight()}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newMemoryStore(t)
			c := New(store, time.Minute, tt.opts...)

			var calls atomic.Int32
			release := make(chan struct{})
			var started sync.WaitGroup
			started.Add(1)
			var once sync.Once

			compute := func(context.Context) (int, error) {
				calls.Add(1)
				once.Do(started.Done)
				<-release
				return 7, nil
			}

			var wg sync.WaitGroup
			results := make([]int, 8)
			errs := make([]error, 8)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], errs[i] = Read(context.Background(), c, "search:same", 0, compute)
				}(i)
			}

			started.Wait()
			// Give the remaining goroutines time to reach the store and miss.
			time.Sleep(50 * time.Millisecond)
			close(release)
			wg.Wait()

			for i := range results {
				if errs[i] != nil || results[i] != 7 {
					t.Fatalf("reader %d got %d, %v", i, results[i], errs[i])
				}
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("compute called %d times, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestReadSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	store, _ := newMemoryStore(t)
	c := New(store, time.Minute, WithTracerProvider(tp))

	var calls atomic.Int32
	_, _ = Read(context.Background(), c, "properties:x", 0, counter(1, &calls))

	spans := rec.Ended()
	if len(spans) != 1 || spans[0].Name() != "cache.read" {
		t.Fatalf("spans = %v", spans)
	}
	var outcome string
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "cache.outcome" {
			outcome = kv.Value.AsString()
		}
	}
	if outcome != OutcomeMiss {
		t.Errorf("cache.outcome = %q, want %q", outcome, OutcomeMiss)
	}
}

func TestSingleFlightFollowerSurvivesCancelledLeader(t *testing.T) {
	store, _ := newMemoryStore(t)
	c := New(store, time.Minute, WithSingleFlight())

	leaderCtx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	var calls atomic.Int32

	compute := func(ctx context.Context) (int, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			return 0, ctx.Err()
		}
		return 9, nil
	}

	leaderErr := make(chan error, 1)
	go func() {
		_, err := Read(leaderCtx, c, "property:shared", 0, compute)
		leaderErr <- err
	}()
	<-started

	type result struct {
		v   int
		err error
	}
	follower := make(chan result, 1)
	go func() {
		v, err := Read(context.Background(), c, "property:shared", 0, compute)
		follower <- result{v, err}
	}()

	// Let the follower join the leader's flight before cancelling it.
	time.Sleep(50 * time.Millisecond)
	cancel()

	if err := <-leaderErr; !errors.Is(err, context.Canceled) {
		t.Errorf("leader error = %v, want context.Canceled", err)
	}
	got := <-follower
	if got.err != nil || got.v != 9 {
		t.Fatalf("follower got %d, %v", got.v, got.err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("compute called %d times, want 2", n)
	}
}
