package admin

import (
	"context"
	"log"
	"sync"

	"techshop_back_end/internal/cache"
)

// Source is the remote side of a collection. Save and Delete may be nil for
// collections the admin only edits through dedicated operations (orders, reviews).
type Source[T any] struct {
	Fetch  func(context.Context) ([]T, error)
	Save   func(context.Context, *T) error
	Delete func(context.Context, string) error
}

// Collection is an admin list kept in Redis. Every mutation hits the store
// once and is then applied to the cached list in place; the list is only
// reloaded when it does not contain the record being changed.
type Collection[T any] struct {
	name  string
	cache *cache.Cache
	src   Source[T]
	idOf  func(T) string
	sort  func([]T)

	// storefront keys that depend on this collection
	dependents []string

	mu sync.Mutex
}

func NewCollection[T any](name string, c *cache.Cache, src Source[T], idOf func(T) string, sort func([]T), dependents ...string) *Collection[T] {
	return &Collection[T]{name: name, cache: c, src: src, idOf: idOf, sort: sort, dependents: dependents}
}

func (c *Collection[T]) key() string { return cache.AdminListKey(c.name) }

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	list, err := cache.Remember(ctx, c.cache, c.key(), cache.AdminListTTL, c.src.Fetch)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}

// Refresh reloads the list from the store and replaces the cached copy.
func (c *Collection[T]) Refresh(ctx context.Context) ([]T, error) {
	list, err := c.src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		if err := c.cache.SetJSON(ctx, c.key(), list, cache.AdminListTTL); err != nil {
			log.Printf("⚠️ Cache write %s: %v", c.key(), err)
		}
	}
	return list, nil
}

func (c *Collection[T]) Create(ctx context.Context, item *T) error {
	if err := c.src.Save(ctx, item); err != nil {
		return err
	}
	c.Created(ctx, *item)
	return nil
}

func (c *Collection[T]) Update(ctx context.Context, item *T) error {
	if err := c.src.Save(ctx, item); err != nil {
		return err
	}
	c.Updated(ctx, *item)
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := c.src.Delete(ctx, id); err != nil {
		return err
	}
	c.Removed(ctx, id)
	return nil
}

// Created appends a record written elsewhere to the cached list.
func (c *Collection[T]) Created(ctx context.Context, item T) {
	id := c.idOf(item)
	c.reconcile(ctx, func(list []T) ([]T, bool) {
		if c.indexOf(list, id) >= 0 {
			return list, false
		}
		return append(list, item), true
	})
}

// Updated replaces a record written elsewhere in the cached list.
func (c *Collection[T]) Updated(ctx context.Context, item T) {
	id := c.idOf(item)
	c.reconcile(ctx, func(list []T) ([]T, bool) {
		i := c.indexOf(list, id)
		if i < 0 {
			return list, false
		}
		list[i] = item
		return list, true
	})
}

// Removed drops a deleted record from the cached list.
func (c *Collection[T]) Removed(ctx context.Context, id string) {
	c.reconcile(ctx, func(list []T) ([]T, bool) {
		i := c.indexOf(list, id)
		if i < 0 {
			return list, false
		}
		return append(list[:i], list[i+1:]...), true
	})
}

func (c *Collection[T]) reconcile(ctx context.Context, apply func([]T) ([]T, bool)) {
	cache.Invalidate(ctx, c.cache, c.dependents...)
	if c.cache == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var list []T
	if err := c.cache.GetJSON(ctx, c.key(), &list); err != nil {
		// nothing cached: the next List loads from the store
		return
	}

	list, ok := apply(list)
	if !ok {
		log.Printf("⚠️ Admin list %s out of sync, reloading", c.name)
		if _, err := c.Refresh(ctx); err != nil {
			log.Printf("❌ Reload %s: %v", c.name, err)
			cache.Invalidate(ctx, c.cache, c.key())
		}
		return
	}

	if c.sort != nil {
		c.sort(list)
	}
	if err := c.cache.SetJSON(ctx, c.key(), list, cache.AdminListTTL); err != nil {
		log.Printf("⚠️ Cache write %s: %v", c.key(), err)
	}
}

func (c *Collection[T]) indexOf(list []T, id string) int {
	for i := range list {
		if c.idOf(list[i]) == id {
			return i
		}
	}
	return -1
}
