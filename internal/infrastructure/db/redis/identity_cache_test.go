package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"

	"github.com/99minutos/task-tracker/internal/core/domain"
)

type countingResolver struct {
	calls int
	err   error
}

func (r *countingResolver) Resolve(_ context.Context, id string) (*domain.Identity, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &domain.Identity{ID: id, Name: "Ann", Email: "ann@x.com"}, nil
}

func setupIdentityCache(t *testing.T, next *countingResolver, ttl time.Duration) (*IdentityCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	cache, err := OpenIdentityCache(context.Background(), CacheConfig{Addr: mr.Addr(), TTL: ttl}, next, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	return cache, mr
}

func TestIdentityCache_ReadThrough(t *testing.T) {
	next := &countingResolver{}
	cache, mr := setupIdentityCache(t, next, time.Minute)

	for i := 0; i < 3; i++ {
		identity, err := cache.Resolve(context.Background(), "u1")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if identity.ID != "u1" || identity.Email != "ann@x.com" {
			t.Fatalf("unexpected identity: %+v", identity)
		}
	}
	if next.calls != 1 {
		t.Fatalf("expected one backing lookup, got %d", next.calls)
	}
	if !mr.Exists("identity:u1") {
		t.Fatalf("expected identity:u1 to be cached")
	}
	if ttl := mr.TTL("identity:u1"); ttl != time.Minute {
		t.Fatalf("expected ttl 1m, got %s", ttl)
	}
}

func TestIdentityCache_Expiry(t *testing.T) {
	next := &countingResolver{}
	cache, mr := setupIdentityCache(t, next, time.Minute)

	_, _ = cache.Resolve(context.Background(), "u1")
	mr.FastForward(2 * time.Minute)
	_, _ = cache.Resolve(context.Background(), "u1")

	if next.calls != 2 {
		t.Fatalf("expected lookup after expiry, got %d calls", next.calls)
	}
}

func TestIdentityCache_NotFoundIsNotCached(t *testing.T) {
	next := &countingResolver{err: domain.ErrAccountNotFound}
	cache, mr := setupIdentityCache(t, next, time.Minute)

	if _, err := cache.Resolve(context.Background(), "gone"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if mr.Exists("identity:gone") {
		t.Fatalf("misses must not be cached")
	}
}

func TestIdentityCache_CorruptEntry(t *testing.T) {
	next := &countingResolver{}
	cache, mr := setupIdentityCache(t, next, time.Minute)

	_ = mr.Set("identity:u1", "{not json")

	identity, err := cache.Resolve(context.Background(), "u1")
	if err != nil || identity.ID != "u1" {
		t.Fatalf("expected fallback resolve, got %+v %v", identity, err)
	}
	if next.calls != 1 {
		t.Fatalf("expected backing lookup, got %d", next.calls)
	}
}

func TestIdentityCache_RedisDown(t *testing.T) {
	next := &countingResolver{}
	cache, mr := setupIdentityCache(t, next, time.Minute)
	mr.Close()

	identity, err := cache.Resolve(context.Background(), "u1")
	if err != nil || identity.ID != "u1" {
		t.Fatalf("expected degraded resolve, got %+v %v", identity, err)
	}
}

func TestOpenIdentityCache_UnreachableRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	_, err = OpenIdentityCache(context.Background(), CacheConfig{Addr: addr, Timeout: 200 * time.Millisecond}, &countingResolver{}, zerolog.Nop())
	if err == nil {
		t.Fatalf("expected an error when redis is down at startup")
	}
}

func TestOpenIdentityCache_DefaultTTL(t *testing.T) {
	next := &countingResolver{}
	cache, mr := setupIdentityCache(t, next, 0)

	_, _ = cache.Resolve(context.Background(), "u1")
	if ttl := mr.TTL("identity:u1"); ttl != defaultIdentityTTL {
		t.Fatalf("expected default ttl %s, got %s", defaultIdentityTTL, ttl)
	}
}

func TestIdentityCache_Ping(t *testing.T) {
	cache, mr := setupIdentityCache(t, &countingResolver{}, time.Minute)

	if err := cache.Ping(context.Background()); err != nil {
		t.Fatalf("expected healthy ping, got %v", err)
	}
	mr.Close()
	if err := cache.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping to fail once redis is gone")
	}
}
