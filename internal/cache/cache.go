package cache

import (
	"context"
	"log"
	"time"
)

const (
	CatalogCacheTTL = 10 * time.Minute
	AdminListTTL    = 30 * time.Minute
)

// Storefront keys, dropped whenever the admin changes the underlying collection.
const (
	KeyActiveCategories = "store:categories:active"
	KeyActiveBanners    = "store:banners:active"
	KeyFeaturedProducts = "store:products:featured"
	KeySiteSettings     = "store:settings"
)

// AdminListKey is where the admin copy of a collection lives.
func AdminListKey(collection string) string {
	return "admin:list:" + collection
}

// Remember returns the cached value under key, or calls load and caches its result.
func Remember[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var v T
	if c != nil {
		if err := c.GetJSON(ctx, key, &v); err == nil {
			return v, nil
		} else if err != ErrMiss {
			log.Printf("⚠️ Cache read %s: %v", key, err)
		}
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	if c != nil {
		if err := c.SetJSON(ctx, key, v, ttl); err != nil {
			log.Printf("⚠️ Cache write %s: %v", key, err)
		}
	}
	return v, nil
}

// Invalidate drops keys, logging instead of failing.
func Invalidate(ctx context.Context, c *Cache, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	if err := c.Delete(ctx, keys...); err != nil {
		log.Printf("⚠️ Cache invalidation %v: %v", keys, err)
	}
}
