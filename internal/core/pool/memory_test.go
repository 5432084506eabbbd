package pool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	"bento-planner/internal/core/bento"
	"bento-planner/internal/infrastructure/config"
	"bento-planner/internal/pkg/common"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func setupStore(t *testing.T, maxSize int) (*MemoryStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)}
	store := newMemoryStore(config.PoolConfig{MaxSize: maxSize, TTL: time.Hour}, clock.now)
	return store, clock
}

func samplePool() *Pool {
	return &Pool{Recipes: []bento.RecipeRecord{
		{ID: "r1", Title: "Chicken Teriyaki"},
		{ID: "r2", Title: "Potato Salad"},
	}}
}

func TestMemoryStoreSaveGet(t *testing.T) {
	store, _ := setupStore(t, 10)
	ctx := context.Background()

	id, err := store.Save(ctx, samplePool())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Recipes) != 2 || got.Recipes[0].ID != "r1" {
		t.Fatalf("unexpected pool %+v", got)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, common.ErrPoolNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	stats := store.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Size != 1 || stats.HitRatio != 0.5 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store, clock := setupStore(t, 10)
	ctx := context.Background()

	id, _ := store.Save(ctx, samplePool())
	clock.advance(59 * time.Minute)
	if _, err := store.Get(ctx, id); err != nil {
		t.Fatalf("expected pool before ttl, got %v", err)
	}

	clock.advance(2 * time.Minute)
	if _, err := store.Get(ctx, id); !errors.Is(err, common.ErrPoolNotFound) {
		t.Fatalf("expected expired pool, got %v", err)
	}
	if store.Stats().Evictions != 1 {
		t.Fatalf("expected one eviction, got %d", store.Stats().Evictions)
	}
}

func TestMemoryStoreEvictsLeastUsed(t *testing.T) {
	store, clock := setupStore(t, 2)
	ctx := context.Background()

	first, _ := store.Save(ctx, &Pool{ID: "first"})
	clock.advance(time.Second)
	second, _ := store.Save(ctx, &Pool{ID: "second"})

	// first 被讀取過，應保留
	if _, err := store.Get(ctx, first); err != nil {
		t.Fatalf("get first: %v", err)
	}

	clock.advance(time.Second)
	if _, err := store.Save(ctx, &Pool{ID: "third"}); err != nil {
		t.Fatalf("save third: %v", err)
	}

	if _, err := store.Get(ctx, second); !errors.Is(err, common.ErrPoolNotFound) {
		t.Fatalf("expected second evicted, got %v", err)
	}
	if _, err := store.Get(ctx, first); err != nil {
		t.Fatalf("expected first kept, got %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store, _ := setupStore(t, 10)
	ctx := context.Background()

	id, _ := store.Save(ctx, samplePool())
	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, id); !errors.Is(err, common.ErrPoolNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestMemoryStoreClose(t *testing.T) {
	store := NewMemoryStore(config.PoolConfig{MaxSize: 5, TTL: time.Hour, CleanupInterval: time.Millisecond})
	if _, err := store.Save(context.Background(), samplePool()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if store.Stats().Size != 0 {
		t.Fatal("expected empty store after close")
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	store := NewRedisStoreWithClient(client, "", time.Hour)
	defer store.Close()

	if got := store.key("abc"); got != "bento:pool:abc" {
		t.Fatalf("unexpected key %q", got)
	}

	ctx := context.Background()
	if _, err := store.Get(ctx, "abc"); !errors.Is(err, common.ErrPoolStoreError) {
		t.Fatalf("expected store error, got %v", err)
	}
	if _, err := store.Save(ctx, samplePool()); !errors.Is(err, common.ErrPoolStoreError) {
		t.Fatalf("expected store error, got %v", err)
	}
	if store.Stats().Errors != 2 {
		t.Fatalf("expected 2 errors, got %d", store.Stats().Errors)
	}
}

func TestNewUnknownBackend(t *testing.T) {
	cfg := &config.Config{Pool: config.PoolConfig{Backend: "sqlite"}}
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestMongoStoreUnavailable(t *testing.T) {
	cfg := &config.Config{
		Pool: config.PoolConfig{Backend: "mongo", TTL: time.Hour},
		Mongo: config.MongoConfig{
			URI:      "mongodb://127.0.0.1:1/?connectTimeoutMS=100",
			Database: "bento_test",
			Timeout:  300 * time.Millisecond,
		},
	}
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error when mongodb is unreachable")
	}
}
