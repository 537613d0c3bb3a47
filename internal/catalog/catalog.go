// Package catalog caches the category list. Categories only change through
// migrations, so the list is loaded once and shared until invalidated.
package catalog

import (
	"context"
	"sync"

	"snackspot/internal/domain/categories"

	"golang.org/x/sync/singleflight"
)

const loadKey = "categories"

// Cache owns the loaded list. Concurrent first callers share one load.
type Cache struct {
	store categories.Store
	group singleflight.Group

	mu     sync.RWMutex
	loaded bool
	list   []categories.Category
	byID   map[int64]categories.Category
}

func New(store categories.Store) *Cache {
	return &Cache{store: store}
}

func (c *Cache) cached() ([]categories.Category, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.list, c.loaded
}

// List returns all categories, loading them on first use. A failed load is
// not cached; the next call retries.
func (c *Cache) List(ctx context.Context) ([]categories.Category, error) {
	if list, ok := c.cached(); ok {
		return list, nil
	}

	v, err, _ := c.group.Do(loadKey, func() (any, error) {
		if list, ok := c.cached(); ok {
			return list, nil
		}
		list, err := c.store.List(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if list == nil {
			list = []categories.Category{}
		}
		byID := make(map[int64]categories.Category, len(list))
		for _, cat := range list {
			byID[cat.ID] = cat
		}

		c.mu.Lock()
		c.list, c.byID, c.loaded = list, byID, true
		c.mu.Unlock()
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]categories.Category), nil
}

// Get looks a category up by id.
func (c *Cache) Get(ctx context.Context, id int64) (*categories.Category, error) {
	if _, err := c.List(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	cat, ok := c.byID[id]
	c.mu.RUnlock()
	if !ok {
		return nil, categories.ErrNotFound
	}
	return &cat, nil
}

// Invalidate forgets the cached list.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.list, c.byID, c.loaded = nil, nil, false
	c.mu.Unlock()
}
