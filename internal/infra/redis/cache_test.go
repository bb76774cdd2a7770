package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/fintrack/internal/core/domain"
	"github.com/vietddude/fintrack/internal/infra/storage/memory"
)

// =============================================================================
// Mocks
// =============================================================================

type mapCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (m *mapCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return false, errors.New("cache down")
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m *mapCache) SetJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *mapCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *mapCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// =============================================================================
// Tests
// =============================================================================

func TestListKey(t *testing.T) {
	assert.Equal(t, "fintrack:statuses:active", listKey(resourceStatuses, true))
	assert.Equal(t, "fintrack:statuses:all", listKey(resourceStatuses, false))
	assert.Len(t, listKeys(resourceCategories), 2)
}

func TestStatusCache_ServesFromCacheUntilWrite(t *testing.T) {
	ctx := context.Background()
	base := memory.NewMemoryStorage().Store()
	cache := newMapCache()
	cached := Wrap(base, cache)

	require.NoError(t, base.Statuses.Create(ctx, &domain.Status{Name: "Done", Slug: "done", IsActive: true}))

	first, err := cached.Statuses.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, cache.has(listKey(resourceStatuses, true)))

	// Bypass the cache: the cached list is stale until a write goes through it.
	require.NoError(t, base.Statuses.Create(ctx, &domain.Status{Name: "Planned", Slug: "planned", IsActive: true}))
	stale, err := cached.Statuses.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	require.NoError(t, cached.Statuses.Create(ctx, &domain.Status{Name: "Void", Slug: "void", IsActive: true}))
	assert.False(t, cache.has(listKey(resourceStatuses, true)))

	fresh, err := cached.Statuses.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

func TestStatusCache_WriteInvalidatesCategories(t *testing.T) {
	ctx := context.Background()
	base := memory.NewMemoryStorage().Store()
	cache := newMapCache()
	cached := Wrap(base, cache)

	st := &domain.Status{Name: "Done", Slug: "done", IsActive: true}
	require.NoError(t, cached.Statuses.Create(ctx, st))
	require.NoError(t, cached.Categories.Create(ctx, &domain.Category{Name: "Food", StatusID: st.ID, IsActive: true}))

	_, err := cached.Categories.List(ctx, true)
	require.NoError(t, err)
	require.True(t, cache.has(listKey(resourceCategories, true)))

	st.Name = "Completed"
	require.NoError(t, cached.Statuses.Update(ctx, st))
	assert.False(t, cache.has(listKey(resourceCategories, true)))

	cats, err := cached.Categories.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Completed", cats[0].StatusName)
}

func TestCategoryCache_KeepsJoinedNames(t *testing.T) {
	ctx := context.Background()
	base := memory.NewMemoryStorage().Store()
	cached := Wrap(base, newMapCache())

	st := &domain.Status{Name: "Done", Slug: "done", IsActive: true}
	require.NoError(t, base.Statuses.Create(ctx, st))
	food := &domain.Category{Name: "Food", StatusID: st.ID, IsActive: true}
	require.NoError(t, base.Categories.Create(ctx, food))
	require.NoError(t, base.Categories.Create(ctx, &domain.Category{
		Name: "Groceries", ParentID: &food.ID, StatusID: st.ID, IsActive: true,
	}))

	// Second call is a hit and must decode the same labels.
	for i := 0; i < 2; i++ {
		cats, err := cached.Categories.List(ctx, true)
		require.NoError(t, err)
		require.Len(t, cats, 2)
		assert.Equal(t, "Food → Groceries", cats[1].String())
		assert.Equal(t, "Done", cats[1].StatusName)
	}
}

func TestCachedList_FallsBackOnCacheError(t *testing.T) {
	ctx := context.Background()
	base := memory.NewMemoryStorage().Store()
	cache := newMapCache()
	cache.failGet = true
	cached := Wrap(base, cache)

	require.NoError(t, base.Types.Create(ctx, &domain.TransactionType{Name: "Income", Slug: "income", IsIncome: true, IsActive: true}))

	types, err := cached.Types.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, types, 1)
}

func TestClient_BreakerOpensAfterFailures(t *testing.T) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	c := newClient(rdb, 0)
	defer c.Close()

	assert.Equal(t, DefaultCacheTTL, c.ttl)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.Error(t, c.Ping(ctx))
	}
	assert.Equal(t, "open", c.BreakerState())

	var dst []string
	_, err := c.GetJSON(ctx, "k", &dst)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
