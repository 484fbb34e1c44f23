package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T, prefix string) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := NewRedisStore(RedisConfig{Address: mr.Addr(), Prefix: prefix, ScanCount: 2})
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, mr
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newMemoryStore(t *testing.T) (*MemoryStore, *fakeClock) {
	t.Helper()
	m, err := NewMemoryStore(1000)
	if err != nil {
		t.Fatalf("NewMemoryStore() error = %v", err)
	}
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	m.now = clock.now
	t.Cleanup(func() { m.Close() })
	return m, clock
}

// storeContract runs the behaviour every Store must share. expire moves the
// store's clock forward.
func storeContract(t *testing.T, s Store, expire func(time.Duration)) {
	ctx := context.Background()

	t.Run("miss", func(t *testing.T) {
		if _, err := s.Get(ctx, "nope"); !errors.Is(err, ErrCacheMiss) {
			t.Fatalf("Get() error = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("set get expire", func(t *testing.T) {
		if err := s.SetWithExpiry(ctx, "property:1", []byte("v1"), time.Minute); err != nil {
			t.Fatalf("SetWithExpiry() error = %v", err)
		}
		got, err := s.Get(ctx, "property:1")
		if err != nil || string(got) != "v1" {
			t.Fatalf("Get() = %q, %v", got, err)
		}
		expire(2 * time.Minute)
		if _, err := s.Get(ctx, "property:1"); !errors.Is(err, ErrCacheMiss) {
			t.Fatalf("Get() after expiry error = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		for _, ttl := range []time.Duration{0, -time.Second} {
			if err := s.SetWithExpiry(ctx, "k:1", []byte("v"), ttl); !errors.Is(err, ErrInvalidTTL) {
				t.Errorf("SetWithExpiry(ttl=%s) error = %v, want ErrInvalidTTL", ttl, err)
			}
		}
	})

	t.Run("delete", func(t *testing.T) {
		_ = s.SetWithExpiry(ctx, "a:1", []byte("1"), time.Minute)
		_ = s.SetWithExpiry(ctx, "a:2", []byte("2"), time.Minute)
		if err := s.Delete(ctx, "a:1", "a:2", "a:missing"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		for _, k := range []string{"a:1", "a:2"} {
			if _, err := s.Get(ctx, k); !errors.Is(err, ErrCacheMiss) {
				t.Errorf("Get(%q) error = %v, want ErrCacheMiss", k, err)
			}
		}
		if err := s.Delete(ctx); err != nil {
			t.Errorf("Delete() with no keys error = %v", err)
		}
	})

	t.Run("delete by pattern", func(t *testing.T) {
		keys := []string{"properties:x", "properties:y", "property:z", "favorites:u1:p", "favorites:u2:p"}
		for _, k := range keys {
			if err := s.SetWithExpiry(ctx, k, []byte(k), time.Minute); err != nil {
				t.Fatalf("SetWithExpiry(%q) error = %v", k, err)
			}
		}

		if err := s.DeleteByPattern(ctx, "properties:*"); err != nil {
			t.Fatalf("DeleteByPattern() error = %v", err)
		}
		if err := s.DeleteByPattern(ctx, "favorites:*"); err != nil {
			t.Fatalf("DeleteByPattern() error = %v", err)
		}

		for _, k := range []string{"properties:x", "properties:y", "favorites:u1:p", "favorites:u2:p"} {
			if _, err := s.Get(ctx, k); !errors.Is(err, ErrCacheMiss) {
				t.Errorf("Get(%q) error = %v, want ErrCacheMiss", k, err)
			}
		}
		if got, err := s.Get(ctx, "property:z"); err != nil || string(got) != "property:z" {
			t.Errorf("unrelated key was removed: %q, %v", got, err)
		}
	})

	t.Run("invalid pattern", func(t *testing.T) {
		for _, p := range []string{"properties", "*", "prop*erties:*", "a:?*"} {
			if err := s.DeleteByPattern(ctx, p); !errors.Is(err, ErrInvalidPattern) {
				t.Errorf("DeleteByPattern(%q) error = %v, want ErrInvalidPattern", p, err)
			}
		}
	})
}

func TestRedisStoreContract(t *testing.T) {
	s, mr := newRedisStore(t, "")
	storeContract(t, s, mr.FastForward)
}

func TestMemoryStoreContract(t *testing.T) {
	s, clock := newMemoryStore(t)
	storeContract(t, s, clock.advance)
}

func TestTieredStoreContract(t *testing.T) {
	l1, clock := newMemoryStore(t)
	l2, mr := newRedisStore(t, "")
	s := NewTieredStore(l1, l2, time.Hour)
	storeContract(t, s, func(d time.Duration) {
		clock.advance(d)
		mr.FastForward(d)
	})
}

func TestRedisStorePrefix(t *testing.T) {
	s, mr := newRedisStore(t, "estate:")
	ctx := context.Background()

	if err := s.SetWithExpiry(ctx, "property:1", []byte("v"), time.Minute); err != nil {
		t.Fatalf("SetWithExpiry() error = %v", err)
	}
	if !mr.Exists("estate:property:1") {
		t.Fatal("prefixed key not written")
	}
	if ttl := mr.TTL("estate:property:1"); ttl != time.Minute {
		t.Errorf("TTL = %s, want 1m", ttl)
	}

	mr.Set("property:2", "foreign")
	if err := s.DeleteByPattern(ctx, "property:*"); err != nil {
		t.Fatalf("DeleteByPattern() error = %v", err)
	}
	if mr.Exists("estate:property:1") {
		t.Error("prefixed key survived pattern delete")
	}
	if !mr.Exists("property:2") {
		t.Error("key outside prefix was removed")
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	s, mr := newRedisStore(t, "")
	mr.Close()
	ctx := context.Background()

	if _, err := s.Get(ctx, "k:1"); !errors.Is(err, ErrCacheUnavailable) {
		t.Errorf("Get() error = %v, want ErrCacheUnavailable", err)
	}
	if err := s.SetWithExpiry(ctx, "k:1", []byte("v"), time.Minute); !errors.Is(err, ErrCacheUnavailable) {
		t.Errorf("SetWithExpiry() error = %v, want ErrCacheUnavailable", err)
	}
	if err := s.Delete(ctx, "k:1"); !errors.Is(err, ErrCacheUnavailable) {
		t.Errorf("Delete() error = %v, want ErrCacheUnavailable", err)
	}
	if err := s.DeleteByPattern(ctx, "k:*"); !errors.Is(err, ErrCacheUnavailable) {
		t.Errorf("DeleteByPattern() error = %v, want ErrCacheUnavailable", err)
	}
}

func TestRedisStoreConnectFails(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	s := NewRedisStore(RedisConfig{Address: addr, OpTimeout: 200 * time.Millisecond})
	defer s.Close()
	if err := s.Connect(context.Background()); !errors.Is(err, ErrCacheUnavailable) {
		t.Fatalf("Connect() error = %v, want ErrCacheUnavailable", err)
	}
}

func TestRedisStoreSharedClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewRedisStoreFromClient(client, RedisConfig{})
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("shared client closed by store: %v", err)
	}
}

func TestTieredStorePromotesAndCapsL1TTL(t *testing.T) {
	l1, clock := newMemoryStore(t)
	l2, mr := newRedisStore(t, "")
	s := NewTieredStore(l1, l2, 10*time.Second)
	ctx := context.Background()

	mr.Set("property:1", "from-l2")
	if got, err := s.Get(ctx, "property:1"); err != nil || string(got) != "from-l2" {
		t.Fatalf("Get() = %q, %v", got, err)
	}
	if got, err := l1.Get(ctx, "property:1"); err != nil || string(got) != "from-l2" {
		t.Fatalf("L2 hit not promoted: %q, %v", got, err)
	}

	if err := s.SetWithExpiry(ctx, "property:2", []byte("v"), time.Hour); err != nil {
		t.Fatalf("SetWithExpiry() error = %v", err)
	}
	clock.advance(11 * time.Second)
	if _, err := l1.Get(ctx, "property:2"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("L1 entry outlived l1TTL: %v", err)
	}
	if got, err := s.Get(ctx, "property:2"); err != nil || string(got) != "v" {
		t.Errorf("L2 entry lost: %q, %v", got, err)
	}
}

func TestTieredStoreDegradesToL1(t *testing.T) {
	l1, _ := newMemoryStore(t)
	l2, mr := newRedisStore(t, "")
	s := NewTieredStore(l1, l2, time.Minute)
	ctx := context.Background()

	_ = s.SetWithExpiry(ctx, "property:1", []byte("v"), time.Minute)
	mr.Close()

	if got, err := s.Get(ctx, "property:1"); err != nil || string(got) != "v" {
		t.Fatalf("Get() = %q, %v; want L1 hit", got, err)
	}
	if _, err := s.Get(ctx, "property:2"); !errors.Is(err, ErrCacheUnavailable) {
		t.Errorf("Get() error = %v, want ErrCacheUnavailable", err)
	}
}
