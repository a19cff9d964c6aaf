// Package cache stores JSON encoded values in an in-process cache backed
// by Redis. Either level may be absent.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const DefaultTTL = time.Hour

// Cache is the read-through cache used by services for reference data.
type Cache interface {
	// Get decodes the cached value into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Observer receives hit/miss notifications, typically prometheus counters.
type Observer interface {
	CacheHit(level string)
	CacheMiss()
}

type Config struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

type layered struct {
	local    *gocache.Cache
	remote   *redis.Client
	ttl      time.Duration
	observer Observer
}

// New builds a two level cache. remote may be nil.
func New(cfg Config, remote *redis.Client, observer Observer) Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 10 * time.Minute
	}

	// The local level keeps entries for a fraction of the shared TTL so
	// that invalidations on other replicas are picked up quickly.
	localTTL := cfg.TTL / 6
	if localTTL < time.Second {
		localTTL = cfg.TTL
	}

	return &layered{
		local:    gocache.New(localTTL, cfg.CleanupInterval),
		remote:   remote,
		ttl:      cfg.TTL,
		observer: observer,
	}
}

// Key joins a prefix and its arguments with ":".
func Key(prefix string, parts ...interface{}) string {
	b := strings.Builder{}
	b.WriteString(prefix)
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(fmt.Sprint(p))
	}
	return b.String()
}

func (c *layered) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if raw, ok := c.local.Get(key); ok {
		c.hit("local")
		return true, json.Unmarshal(raw.([]byte), dest)
	}

	if c.remote == nil {
		c.miss()
		return false, nil
	}

	raw, err := c.remote.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.miss()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}

	c.hit("redis")
	c.local.SetDefault(key, raw)
	return true, json.Unmarshal(raw, dest)
}

func (c *layered) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	c.local.SetDefault(key, raw)
	if c.remote == nil {
		return nil
	}
	if err := c.remote.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

func (c *layered) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		c.local.Delete(k)
	}
	if c.remote == nil || len(keys) == 0 {
		return nil
	}
	if err := c.remote.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}

func (c *layered) hit(level string) {
	if c.observer != nil {
		c.observer.CacheHit(level)
	}
}

func (c *layered) miss() {
	if c.observer != nil {
		c.observer.CacheMiss()
	}
}
