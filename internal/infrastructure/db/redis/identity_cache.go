package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/task-tracker/internal/core/domain"
	"github.com/99minutos/task-tracker/internal/core/ports"
)

const (
	defaultIdentityTTL = 5 * time.Minute
	defaultTimeout     = 2 * time.Second
)

// CacheConfig locates the Redis instance backing the identity cache.
type CacheConfig struct {
	Addr string
	DB   int
	// TTL bounds how long an identity is served from Redis.
	TTL time.Duration
	// Timeout applies to the initial ping and to every read and write.
	Timeout time.Duration
}

// IdentityCache is a read-through cache in front of an IdentityResolver.
// Key format: identity:<account_id>
//
// Accounts are immutable once registered, so entries are never invalidated,
// only expired.
type IdentityCache struct {
	client *redis.Client
	next   ports.IdentityResolver
	ttl    time.Duration
	log    zerolog.Logger
}

// OpenIdentityCache dials Redis, refuses to start if it does not answer, and
// puts the cache in front of next. Short timeouts keep a slow Redis from
// holding up the auth gate; the cache degrades to next instead.
func OpenIdentityCache(ctx context.Context, cfg CacheConfig, next ports.IdentityResolver, log zerolog.Logger) (*IdentityCache, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultIdentityTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("identity cache: ping %s: %w", cfg.Addr, err)
	}

	return &IdentityCache{client: client, next: next, ttl: ttl, log: log}, nil
}

// Ping satisfies ports.Pinger so readiness reports the cache backend.
func (c *IdentityCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis connection pool.
func (c *IdentityCache) Close() error {
	return c.client.Close()
}

// Resolve serves from Redis when possible. Redis failures fall through to the
// wrapped resolver; only its errors are returned.
func (c *IdentityCache) Resolve(ctx context.Context, id string) (*domain.Identity, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	switch {
	case err == nil:
		var identity domain.Identity
		if jsonErr := json.Unmarshal(raw, &identity); jsonErr == nil {
			return &identity, nil
		}
		c.log.Warn().Str("user_id", id).Msg("discarding corrupt identity cache entry")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("user_id", id).Msg("identity cache read failed")
	}

	identity, err := c.next.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.store(ctx, identity); err != nil {
		c.log.Warn().Err(err).Str("user_id", id).Msg("identity cache write failed")
	}
	return identity, nil
}

func (c *IdentityCache) store(ctx context.Context, identity *domain.Identity) error {
	payload, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	return c.client.Set(ctx, c.key(identity.ID), payload, c.ttl).Err()
}

func (c *IdentityCache) key(id string) string {
	return fmt.Sprintf("identity:%s", id)
}
