package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/ec-chatbot/internal/infrastructure/store"
	"github.com/example/ec-chatbot/internal/logger"
	"github.com/example/ec-chatbot/internal/metrics"
	"github.com/example/ec-chatbot/internal/readmodel"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const DefaultKeyPrefix = "chatbot:"

// CachedStore is a cache-aside decorator over a CatalogReader. It caches the
// catalog-wide lookups that only change on a bulk load: distinct value lists
// and the head of the product list. Order and stock lookups pass through.
// Redis failures degrade to the underlying store.
type CachedStore struct {
	store.CatalogReader

	client *redis.Client
	ttl    time.Duration
	prefix string
	group  singleflight.Group
	log    logger.Logger
}

func NewCachedStore(next store.CatalogReader, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{
		CatalogReader: next,
		client:        client,
		ttl:           ttl,
		prefix:        DefaultKeyPrefix,
		log:           logger.Component(log, "cache"),
	}
}

func (c *CachedStore) DistinctCategories(ctx context.Context) ([]string, error) {
	return getOrLoad(ctx, c, "categories", c.CatalogReader.DistinctCategories)
}

func (c *CachedStore) DistinctBrands(ctx context.Context) ([]string, error) {
	return getOrLoad(ctx, c, "brands", c.CatalogReader.DistinctBrands)
}

func (c *CachedStore) DistinctDepartments(ctx context.Context) ([]string, error) {
	return getOrLoad(ctx, c, "departments", c.CatalogReader.DistinctDepartments)
}

func (c *CachedStore) ListProducts(ctx context.Context, limit int) ([]*readmodel.ProductReadModel, error) {
	key := fmt.Sprintf("products:head:%d", limit)
	return getOrLoad(ctx, c, key, func(ctx context.Context) ([]*readmodel.ProductReadModel, error) {
		return c.CatalogReader.ListProducts(ctx, limit)
	})
}

// Invalidate drops every key this decorator wrote. Call it after a bulk load.
func (c *CachedStore) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete cache keys: %w", err)
	}
	c.log.Info("cache invalidated", map[string]any{"keys": len(keys)})
	return nil
}

func getOrLoad[T any](ctx context.Context, c *CachedStore, key string, load func(context.Context) (T, error)) (T, error) {
	fullKey := c.prefix + key

	if cached, ok := readCache[T](ctx, c, fullKey); ok {
		metrics.CacheRequestsTotal.WithLabelValues(key, "hit").Inc()
		return cached, nil
	}
	metrics.CacheRequestsTotal.WithLabelValues(key, "miss").Inc()

	// concurrent misses for the same key share one load
	v, err, _ := c.group.Do(fullKey, func() (any, error) {
		if cached, ok := readCache[T](ctx, c, fullKey); ok {
			return cached, nil
		}
		fresh, err := load(ctx)
		if err != nil {
			return fresh, err
		}
		c.writeCache(ctx, fullKey, fresh)
		return fresh, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func readCache[T any](ctx context.Context, c *CachedStore, key string) (T, bool) {
	var out T
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("cache read failed", map[string]any{"key": key, "error": err.Error()})
		}
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.Warn("cache entry corrupt", map[string]any{"key": key, "error": err.Error()})
		return out, false
	}
	return out, true
}

func (c *CachedStore) writeCache(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", map[string]any{"key": key, "error": err.Error()})
	}
}
