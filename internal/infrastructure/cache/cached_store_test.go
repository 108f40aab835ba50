package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/example/ec-chatbot/internal/infrastructure/store"
	"github.com/example/ec-chatbot/internal/infrastructure/store/mocks"
	"github.com/example/ec-chatbot/internal/logger"
	"github.com/example/ec-chatbot/internal/readmodel"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func newTestCachedStore(t *testing.T) (*CachedStore, *mocks.MockReadStore, *miniredis.Miniredis) {
	t.Helper()
	mr, client := setupTestRedis(t)

	backing := mocks.NewMockReadStore()
	backing.SetData(&store.Dataset{
		Products: []*readmodel.ProductReadModel{
			{ID: "P1", Name: "Blue Jacket", Brand: "Acme", Category: "Outerwear", Department: "Men"},
			{ID: "P2", Name: "Red Scarf", Brand: "Nordic", Category: "Accessories", Department: "Women"},
		},
	})

	return NewCachedStore(backing, client, time.Minute, logger.NewTestLogger(t)), backing, mr
}

func TestCachedStore_DistinctBrands_CachesAfterFirstCall(t *testing.T) {
	cached, backing, mr := newTestCachedStore(t)
	ctx := context.Background()

	brands, err := cached.DistinctBrands(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Nordic"}, brands)

	brands, err = cached.DistinctBrands(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Nordic"}, brands)

	assert.Equal(t, 1, backing.CallCount("DistinctBrands"))
	assert.True(t, mr.Exists(DefaultKeyPrefix+"brands"))
	assert.Equal(t, time.Minute, mr.TTL(DefaultKeyPrefix+"brands"))
}

func TestCachedStore_ListProducts_KeyedByLimit(t *testing.T) {
	cached, backing, _ := newTestCachedStore(t)
	ctx := context.Background()

	first, err := cached.ListProducts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, first, 1)

	all, err := cached.ListProducts(ctx, 5)
	require.NoError(t, err)
	require.Len(t, all, 2)

	again, err := cached.ListProducts(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "P1", again[0].ID)

	assert.Equal(t, 2, backing.CallCount("ListProducts"))
}

func TestCachedStore_PassesThroughUncachedLookups(t *testing.T) {
	cached, backing, _ := newTestCachedStore(t)
	ctx := context.Background()

	_, err := cached.SearchProductsByName(ctx, "jacket")
	require.NoError(t, err)
	_, err = cached.SearchProductsByName(ctx, "jacket")
	require.NoError(t, err)

	assert.Equal(t, 2, backing.CallCount("SearchProductsByName"))
}

func TestCachedStore_BackingErrorNotCached(t *testing.T) {
	cached, backing, mr := newTestCachedStore(t)
	ctx := context.Background()
	backing.FailWith("DistinctCategories", errors.New("db down"))

	_, err := cached.DistinctCategories(ctx)
	assert.Error(t, err)
	assert.False(t, mr.Exists(DefaultKeyPrefix+"categories"))

	backing.Reset()
	categories, err := cached.DistinctCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Outerwear", "Accessories"}, categories)
}

func TestCachedStore_RedisDownFallsBackToStore(t *testing.T) {
	cached, _, mr := newTestCachedStore(t)
	mr.Close()

	departments, err := cached.DistinctDepartments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Men", "Women"}, departments)
}

func TestCachedStore_Invalidate(t *testing.T) {
	cached, backing, mr := newTestCachedStore(t)
	ctx := context.Background()

	_, err := cached.DistinctBrands(ctx)
	require.NoError(t, err)
	_, err = cached.DistinctCategories(ctx)
	require.NoError(t, err)
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, cached.Invalidate(ctx))

	assert.False(t, mr.Exists(DefaultKeyPrefix+"brands"))
	assert.False(t, mr.Exists(DefaultKeyPrefix+"categories"))
	assert.True(t, mr.Exists("unrelated"))

	_, err = cached.DistinctBrands(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, backing.CallCount("DistinctBrands"))
}

func TestCachedStore_ConcurrentMisses(t *testing.T) {
	cached, _, _ := newTestCachedStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			brands, err := cached.DistinctBrands(ctx)
			assert.NoError(t, err)
			assert.Len(t, brands, 2)
		}()
	}
	wg.Wait()
}
