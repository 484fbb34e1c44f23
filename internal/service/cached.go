package service

import (
	"context"
	"time"

	"github.com/weiawesome/wes-estate/internal/cache"
	"github.com/weiawesome/wes-estate/internal/domain"
	"github.com/weiawesome/wes-estate/pkg/log"
)

// Cache namespaces. Reads and invalidations both go through these names.
const (
	NamespaceProperty   = "property"
	NamespaceProperties = "properties"
	NamespaceSearch     = "search"
	NamespaceTextSearch = "text-search"
	NamespaceFavorites  = "favorites"
)

// TTLs holds the cache lifetime of each namespace.
type TTLs struct {
	Property   time.Duration
	Properties time.Duration
	Search     time.Duration
	TextSearch time.Duration
	Favorites  time.Duration
}

// DefaultTTLs are used when no configuration overrides them.
var DefaultTTLs = TTLs{
	Property:   30 * time.Minute,
	Properties: 30 * time.Minute,
	Search:     time.Hour,
	TextSearch: time.Hour,
	Favorites:  30 * time.Minute,
}

// cachedRead reads through c. A nil cache or params that cannot form a key
// run compute directly.
func cachedRead[T any](ctx context.Context, c *cache.Cache, namespace string, params map[string]any, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return compute(ctx)
	}
	key, err := cache.DeriveKey(namespace, params)
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldCacheNamespace, namespace).Msg("bypassing cache")
		return compute(ctx)
	}
	return cache.Read(ctx, c, key, ttl, compute)
}

func invalidate(ctx context.Context, c *cache.Cache, targets ...cache.Target) {
	if c != nil {
		c.Invalidate(ctx, targets...)
	}
}

func propertyKey(id string) (string, error) {
	return cache.DeriveKey(NamespaceProperty, map[string]any{"id": id})
}

func pageParams(p domain.PageRequest) map[string]any {
	return map[string]any{"page": p.Page, "limit": p.Limit}
}
