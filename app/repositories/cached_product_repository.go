package repositories

import (
	"context"
	"time"

	"github.com/shashiranjanraj/pricebook/app/models"
	"github.com/shashiranjanraj/pricebook/pkg/cache"
	"github.com/shashiranjanraj/pricebook/pkg/logger"
	"github.com/shashiranjanraj/pricebook/pkg/metrics"
)

// CatalogCacheKey is the Redis key holding the serialised product list.
const CatalogCacheKey = "catalog:products"

// CachedProductRepository puts a Redis read-through cache in front of
// ListProducts. Writes go to the inner store and then drop the cached list.
type CachedProductRepository struct {
	ProductStore
	ttl time.Duration
}

func NewCachedProductRepository(inner ProductStore, ttl time.Duration) *CachedProductRepository {
	return &CachedProductRepository{ProductStore: inner, ttl: ttl}
}

func (r *CachedProductRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var cached []models.Product
	if cache.Get(ctx, CatalogCacheKey, &cached) {
		metrics.CacheHits.WithLabelValues(CatalogCacheKey).Inc()
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues(CatalogCacheKey).Inc()

	products, err := r.ProductStore.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	if err := cache.Set(ctx, CatalogCacheKey, products, r.ttl); err != nil {
		logger.WithCtx(ctx).Warn("catalog cache: set failed", "error", err)
	}
	return products, nil
}

func (r *CachedProductRepository) UpsertProducts(ctx context.Context, products []models.Product) (int, error) {
	n, err := r.ProductStore.UpsertProducts(ctx, products)
	if delErr := cache.Del(ctx, CatalogCacheKey); delErr != nil {
		logger.WithCtx(ctx).Warn("catalog cache: invalidate failed", "error", delErr)
	}
	return n, err
}
