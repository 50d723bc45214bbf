package service

import (
	"context"
	"encoding/json"
	"time"

	"character-dialog-service/backend/pkg/cache"

	"github.com/redis/go-redis/v9"
)

// CachedCharacter is the slice of a character row the turn pipeline needs.
type CachedCharacter struct {
	ID          uint   `json:"id"`
	Description string `json:"description"`
}

// DescriptionCache fronts character lookups. Characters are seed data and
// never change underneath us, so a TTL cache is safe.
type DescriptionCache interface {
	Get(ctx context.Context, name string) (CachedCharacter, bool)
	Set(ctx context.Context, name string, character CachedCharacter)
}

// memoryCache keeps characters in-process.
type memoryCache struct {
	items *cache.Cache
}

// NewMemoryCache builds an in-process description cache.
func NewMemoryCache(ttl, purgeWindow time.Duration, maxItems int) DescriptionCache {
	return &memoryCache{items: cache.New(ttl, purgeWindow, maxItems)}
}

func (m *memoryCache) Get(ctx context.Context, name string) (CachedCharacter, bool) {
	value, ok := m.items.Get(name)
	if !ok {
		return CachedCharacter{}, false
	}
	character, ok := value.(CachedCharacter)
	return character, ok
}

func (m *memoryCache) Set(ctx context.Context, name string, character CachedCharacter) {
	m.items.Set(name, character)
}

// redisCache shares character lookups across instances.
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache builds a redis-backed description cache.
func NewRedisCache(addr string, ttl time.Duration) DescriptionCache {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &redisCache{client: client, ttl: ttl}
}

func (r *redisCache) key(name string) string { return "character:" + name }

func (r *redisCache) Get(ctx context.Context, name string) (CachedCharacter, bool) {
	payload, err := r.client.Get(ctx, r.key(name)).Result()
	if err != nil {
		return CachedCharacter{}, false
	}
	var character CachedCharacter
	if err := json.Unmarshal([]byte(payload), &character); err != nil {
		return CachedCharacter{}, false
	}
	return character, true
}

func (r *redisCache) Set(ctx context.Context, name string, character CachedCharacter) {
	payload, err := json.Marshal(character)
	if err != nil {
		return
	}
	// Best effort: a cache write failure must not fail the turn.
	r.client.Set(ctx, r.key(name), payload, r.ttl)
}

// noopCache disables caching.
type noopCache struct{}

// NewNoopCache returns a cache that never hits.
func NewNoopCache() DescriptionCache { return noopCache{} }

func (noopCache) Get(ctx context.Context, name string) (CachedCharacter, bool) {
	return CachedCharacter{}, false
}

func (noopCache) Set(ctx context.Context, name string, character CachedCharacter) {}
