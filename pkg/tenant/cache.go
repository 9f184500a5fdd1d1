package tenant

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores resolved scopes keyed by a hash of the API key, so raw
// credentials never sit in a cache backend.
type Cache interface {
	Get(ctx context.Context, key string) (Scope, bool)
	Set(ctx context.Context, key string, scope Scope, ttl time.Duration)
}

// CachingResolver decorates a Resolver with a cache so hot API keys skip
// the credential-backend round trip. Only successful resolutions are
// cached; failures always go back to the backend.
type CachingResolver struct {
	next  Resolver
	cache Cache
	ttl   time.Duration
}

// NewCachingResolver wraps next with the given cache. ttl defaults to
// one minute when non-positive.
func NewCachingResolver(next Resolver, cache Cache, ttl time.Duration) *CachingResolver {
	if next == nil {
		panic("tenant: resolver cannot be nil")
	}
	if cache == nil {
		panic("tenant: cache cannot be nil")
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingResolver{next: next, cache: cache, ttl: ttl}
}

func (r *CachingResolver) Resolve(ctx context.Context, apiKey string) (Scope, error) {
	key := hashKey(apiKey)
	if scope, ok := r.cache.Get(ctx, key); ok {
		return scope, nil
	}

	scope, err := r.next.Resolve(ctx, apiKey)
	if err != nil {
		return Scope{}, err
	}

	r.cache.Set(ctx, key, scope, r.ttl)
	return scope, nil
}

func hashKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}

// memoryCache is the default single-instance cache.
type memoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryItem
}

type memoryItem struct {
	scope     Scope
	expiresAt time.Time
}

// NewMemoryCache creates an in-process cache suitable for a single
// gateway instance.
func NewMemoryCache() Cache {
	return &memoryCache{items: make(map[string]memoryItem)}
}

func (c *memoryCache) Get(_ context.Context, key string) (Scope, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return Scope{}, false
	}
	if time.Now().After(item.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return Scope{}, false
	}
	return item.scope, true
}

func (c *memoryCache) Set(_ context.Context, key string, scope Scope, ttl time.Duration) {
	c.mu.Lock()
	c.items[key] = memoryItem{scope: scope, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// redisCache shares resolved scopes across gateway instances.
type redisCache struct {
	client *redis.Client
	prefix string
	log    *slog.Logger
}

// NewRedisCache creates a Redis-backed cache. Cache errors are logged and
// treated as misses so Redis outages degrade to backend lookups instead
// of failing requests.
func NewRedisCache(client *redis.Client, prefix string, log *slog.Logger) Cache {
	if client == nil {
		panic("tenant: redis client cannot be nil")
	}
	if prefix == "" {
		prefix = "tenant:scope:"
	}
	if log == nil {
		log = slog.Default()
	}
	return &redisCache{client: client, prefix: prefix, log: log}
}

func (c *redisCache) Get(ctx context.Context, key string) (Scope, bool) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WarnContext(ctx, "tenant cache read failed", slog.Any("error", err))
		}
		return Scope{}, false
	}
	var scope Scope
	if err := json.Unmarshal(raw, &scope); err != nil {
		return Scope{}, false
	}
	return scope, true
}

func (c *redisCache) Set(ctx context.Context, key string, scope Scope, ttl time.Duration) {
	raw, err := json.Marshal(scope)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "tenant cache write failed", slog.Any("error", err))
	}
}
