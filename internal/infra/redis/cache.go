package redis

import (
	"context"
	"log/slog"

	"github.com/vietddude/fintrack/internal/core/domain"
	"github.com/vietddude/fintrack/internal/infra/storage"
	"github.com/vietddude/fintrack/internal/metrics"
)

// Cache is the subset of Client the cached repositories need.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, keys ...string) error
}

const (
	resourceStatuses   = "statuses"
	resourceTypes      = "types"
	resourceCategories = "categories"
)

// Key helpers
func listKey(resource string, activeOnly bool) string {
	if activeOnly {
		return "fintrack:" + resource + ":active"
	}
	return "fintrack:" + resource + ":all"
}

func listKeys(resource string) []string {
	return []string{listKey(resource, true), listKey(resource, false)}
}

// Wrap returns a store whose reference-list reads go through cache. Writes
// invalidate the affected lists. Transactions are not cached.
func Wrap(store *storage.Store, cache Cache) *storage.Store {
	return &storage.Store{
		Statuses:     &StatusCache{next: store.Statuses, cache: cache},
		Types:        &TypeCache{next: store.Types, cache: cache},
		Categories:   &CategoryCache{next: store.Categories, cache: cache},
		Transactions: store.Transactions,
	}
}

// cachedList serves key from cache, falling back to load on a miss or any
// cache error. Cache failures never fail the read.
func cachedList[T any](
	ctx context.Context,
	cache Cache,
	resource, key string,
	load func() ([]T, error),
) ([]T, error) {
	var cached []T
	found, err := cache.GetJSON(ctx, key, &cached)
	switch {
	case err != nil:
		metrics.CacheRequests.WithLabelValues(resource, "error").Inc()
		slog.Debug("Cache read failed", "key", key, "error", err)
	case found:
		metrics.CacheRequests.WithLabelValues(resource, "hit").Inc()
		return cached, nil
	default:
		metrics.CacheRequests.WithLabelValues(resource, "miss").Inc()
	}

	items, err := load()
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, key, items); err != nil {
		slog.Debug("Cache write failed", "key", key, "error", err)
	}
	return items, nil
}

func invalidate(ctx context.Context, cache Cache, resources ...string) {
	var keys []string
	for _, r := range resources {
		keys = append(keys, listKeys(r)...)
	}
	if err := cache.Delete(ctx, keys...); err != nil {
		slog.Warn("Cache invalidation failed", "keys", keys, "error", err)
	}
}

// -----------------------------------------------------------------------------
// Statuses
// -----------------------------------------------------------------------------

// StatusCache caches status lists.
type StatusCache struct {
	next  storage.StatusRepository
	cache Cache
}

func (r *StatusCache) List(ctx context.Context, activeOnly bool) ([]*domain.Status, error) {
	return cachedList(ctx, r.cache, resourceStatuses, listKey(resourceStatuses, activeOnly),
		func() ([]*domain.Status, error) { return r.next.List(ctx, activeOnly) })
}

func (r *StatusCache) Get(ctx context.Context, id int64) (*domain.Status, error) {
	return r.next.Get(ctx, id)
}

// Category lists embed status names, so status writes drop them too.
func (r *StatusCache) Create(ctx context.Context, s *domain.Status) error {
	if err := r.next.Create(ctx, s); err != nil {
		return err
	}
	invalidate(ctx, r.cache, resourceStatuses, resourceCategories)
	return nil
}

func (r *StatusCache) Update(ctx context.Context, s *domain.Status) error {
	if err := r.next.Update(ctx, s); err != nil {
		return err
	}
	invalidate(ctx, r.cache, resourceStatuses, resourceCategories)
	return nil
}

func (r *StatusCache) Delete(ctx context.Context, id int64) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, r.cache, resourceStatuses, resourceCategories)
	return nil
}

// -----------------------------------------------------------------------------
// Transaction types
// -----------------------------------------------------------------------------

// TypeCache caches transaction type lists.
type TypeCache struct {
	next  storage.TransactionTypeRepository
	cache Cache
}

func (r *TypeCache) List(ctx context.Context, activeOnly bool) ([]*domain.TransactionType, error) {
	return cachedList(ctx, r.cache, resourceTypes, listKey(resourceTypes, activeOnly),
		func() ([]*domain.TransactionType, error) { return r.next.List(ctx, activeOnly) })
}

func (r *TypeCache) Get(ctx context.Context, id int64) (*domain.TransactionType, error) {
	return r.next.Get(ctx, id)
}

func (r *TypeCache) Create(ctx context.Context, t *domain.TransactionType) error {
	if err := r.next.Create(ctx, t); err != nil {
		return err
	}
	invalidate(ctx, r.cache, resourceTypes)
	return nil
}

func (r *TypeCache) Update(ctx context.Context, t *domain.TransactionType) error {
	if err := r.next.Update(ctx, t); err != nil {
		return err
	}
	invalidate(ctx, r.cache, resourceTypes)
	return nil
}

func (r *TypeCache) Delete(ctx context.Context, id int64) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, r.cache, resourceTypes)
	return nil
}

// -----------------------------------------------------------------------------
// Categories
// -----------------------------------------------------------------------------

// categoryEntry keeps the joined names that domain.Category hides from JSON.
type categoryEntry struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	ParentID   *int64  `json:"parent_id"`
	StatusID   int64   `json:"status_id"`
	IsActive   bool    `json:"is_active"`
	ParentName *string `json:"parent_name"`
	StatusName string  `json:"status_name"`
}

func toEntry(c *domain.Category) categoryEntry {
	return categoryEntry{
		ID:         c.ID,
		Name:       c.Name,
		ParentID:   c.ParentID,
		StatusID:   c.StatusID,
		IsActive:   c.IsActive,
		ParentName: c.ParentName,
		StatusName: c.StatusName,
	}
}

func (e categoryEntry) category() *domain.Category {
	return &domain.Category{
		ID:         e.ID,
		Name:       e.Name,
		ParentID:   e.ParentID,
		StatusID:   e.StatusID,
		IsActive:   e.IsActive,
		ParentName: e.ParentName,
		StatusName: e.StatusName,
	}
}

// CategoryCache caches category lists.
type CategoryCache struct {
	next  storage.CategoryRepository
	cache Cache
}

func (r *CategoryCache) List(ctx context.Context, activeOnly bool) ([]*domain.Category, error) {
	entries, err := cachedList(ctx, r.cache, resourceCategories, listKey(resourceCategories, activeOnly),
		func() ([]categoryEntry, error) {
			cats, err := r.next.List(ctx, activeOnly)
			if err != nil {
				return nil, err
			}
			out := make([]categoryEntry, len(cats))
			for i, c := range cats {
				out[i] = toEntry(c)
			}
			return out, nil
		})
	if err != nil {
		return nil, err
	}

	cats := make([]*domain.Category, len(entries))
	for i, e := range entries {
		cats[i] = e.category()
	}
	return cats, nil
}

func (r *CategoryCache) Get(ctx context.Context, id int64) (*domain.Category, error) {
	return r.next.Get(ctx, id)
}

func (r *CategoryCache) Create(ctx context.Context, c *domain.Category) error {
	if err := r.next.Create(ctx, c); err != nil {
		return err
	}
	invalidate(ctx, r.cache, resourceCategories)
	return nil
}

func (r *CategoryCache) Update(ctx context.Context, c *domain.Category) error {
	if err := r.next.Update(ctx, c); err != nil {
		return err
	}
	invalidate(ctx, r.cache, resourceCategories)
	return nil
}

func (r *CategoryCache) Delete(ctx context.Context, id int64) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, r.cache, resourceCategories)
	return nil
}
