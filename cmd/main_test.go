package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/weiawesome/wes-estate/internal/cache"
	"github.com/weiawesome/wes-estate/internal/config"
)

// downRedis returns a miniredis server that has been stopped, so its
// address refuses connections until Restart.
func downRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	mr.Close()
	return mr
}

func storeConfig(driver, addr string) *config.Config {
	return &config.Config{
		Redis: config.RedisConfig{Address: addr},
		Cache: config.CacheConfig{
			Driver:    driver,
			OpTimeout: 200 * time.Millisecond,
			L1MaxKeys: 100,
			L1TTL:     time.Minute,
		},
	}
}

func TestNewStoreStartsWithoutRedis(t *testing.T) {
	ctx := context.Background()
	mr := downRedis(t)

	store, local, err := newStore(ctx, storeConfig("redis", mr.Addr()))
	if err != nil {
		t.Fatalf("newStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if local != nil {
		t.Errorf("redis driver local = %v, want nil", local)
	}

	if _, err := store.Get(ctx, "property:x"); !errors.Is(err, cache.ErrCacheUnavailable) {
		t.Fatalf("Get() with redis down error = %v, want ErrCacheUnavailable", err)
	}

	c := cache.New(store, time.Minute)
	got, err := cache.Read(ctx, c, "property:x", 0, func(context.Context) (string, error) { return "from db", nil })
	if err != nil || got != "from db" {
		t.Fatalf("Read() with redis down = %q, %v", got, err)
	}

	if err := mr.Restart(); err != nil {
		t.Fatalf("Restart() error = %v", err)
	}
	// The client redials in the background once it has seen enough failures.
	deadline := time.Now().Add(5 * time.Second)
	for {
		err := store.SetWithExpiry(ctx, "property:x", []byte(`"cached"`), time.Minute)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("SetWithExpiry() after restart error = %v", err)
		}
		time.Sleep(100 * time.Millisecond)
	}
	if v, err := store.Get(ctx, "property:x"); err != nil || string(v) != `"cached"` {
		t.Errorf("Get() after restart = %q, %v", v, err)
	}
}

func TestNewStoreTieredWithoutRedis(t *testing.T) {
	ctx := context.Background()
	mr := downRedis(t)

	store, local, err := newStore(ctx, storeConfig("tiered", mr.Addr()))
	if err != nil {
		t.Fatalf("newStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if local == nil {
		t.Fatal("tiered driver should expose its local tier")
	}

	if err := store.SetWithExpiry(ctx, "search:a", []byte("1"), time.Minute); !errors.Is(err, cache.ErrCacheUnavailable) {
		t.Errorf("SetWithExpiry() error = %v, want ErrCacheUnavailable", err)
	}
	if v, err := store.Get(ctx, "search:a"); err != nil || string(v) != "1" {
		t.Errorf("Get() should be served by the local tier, got %q, %v", v, err)
	}
	if v, err := local.Get(ctx, "search:a"); err != nil || string(v) != "1" {
		t.Errorf("local Get() = %q, %v", v, err)
	}
}

func TestNewStoreMemory(t *testing.T) {
	store, local, err := newStore(context.Background(), storeConfig("memory", ""))
	if err != nil {
		t.Fatalf("newStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if local != store {
		t.Error("memory driver should be its own local tier")
	}
}
