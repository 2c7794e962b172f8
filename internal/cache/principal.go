package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spendlens/spendlens/internal/model"
)

const (
	// principalCachePrefix is the Redis key prefix for resolved principals.
	principalCachePrefix = "auth:principal:"
	// principalCacheTTL bounds how long a stale principal can authenticate.
	// Transaction data is never cached; only the username-to-identity lookup is.
	principalCacheTTL = 60 * time.Second
)

// cachedPrincipal is the stored form of a resolved bearer subject.
type cachedPrincipal struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// GetPrincipal retrieves a cached principal by cache key.
// Returns nil on a cache miss; misses are not errors.
func (c *Cache) GetPrincipal(ctx context.Context, cacheKey string) (*model.AuthContext, error) {
	key := principalCachePrefix + cacheKey

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached cachedPrincipal
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.AuthContext{
		UserID:   cached.UserID,
		Username: cached.Username,
	}, nil
}

// SetPrincipal caches a resolved principal.
func (c *Cache) SetPrincipal(ctx context.Context, cacheKey string, auth *model.AuthContext) error {
	key := principalCachePrefix + cacheKey

	data, err := json.Marshal(cachedPrincipal{
		UserID:   auth.UserID,
		Username: auth.Username,
	})
	if err != nil {
		return fmt.Errorf("marshal principal: %w", err)
	}

	return c.client.Set(ctx, key, data, principalCacheTTL).Err()
}

// DeletePrincipal removes a cached principal.
func (c *Cache) DeletePrincipal(ctx context.Context, cacheKey string) error {
	key := principalCachePrefix + cacheKey
	return c.client.Del(ctx, key).Err()
}
