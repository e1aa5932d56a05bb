package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/zatekoja/phr/backend/internal/domain/providers"
)

// MemoryAdapter implements the CacheProvider interface in process. It is used
// when Redis is disabled.
type MemoryAdapter struct {
	cache *gocache.Cache
}

// NewMemoryAdapter creates an in-process cache
func NewMemoryAdapter(defaultTTL, cleanupInterval time.Duration) providers.CacheProvider {
	return &MemoryAdapter{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a value from cache
func (a *MemoryAdapter) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := a.cache.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", providers.ErrCacheMiss, key)
	}
	data, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected cached type %T for %s", v, key)
	}
	return data, nil
}

// Set stores a value in cache with expiration. A non-positive expiration
// keeps the value until deleted.
func (a *MemoryAdapter) Set(_ context.Context, key string, value []byte, expirationSeconds int) error {
	expiration := gocache.NoExpiration
	if expirationSeconds > 0 {
		expiration = time.Duration(expirationSeconds) * time.Second
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	a.cache.Set(key, stored, expiration)
	return nil
}

// Delete removes a value from cache
func (a *MemoryAdapter) Delete(_ context.Context, key string) error {
	a.cache.Delete(key)
	return nil
}

// Exists checks if a key exists in cache
func (a *MemoryAdapter) Exists(_ context.Context, key string) (bool, error) {
	_, ok := a.cache.Get(key)
	return ok, nil
}
