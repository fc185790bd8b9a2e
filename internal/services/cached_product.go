package service

import (
	"context"
	"time"

	"github.com/onlinestore/catalog-admin/internal/cache"
	"github.com/onlinestore/catalog-admin/internal/config"
	"github.com/onlinestore/catalog-admin/internal/models"
	"github.com/onlinestore/catalog-admin/internal/tenant"
)

const productCacheEntity = "product"

// cachedProductService decorates a ProductService the same way
// cachedCategoryService decorates categories, with a wider invalidation
// fan-out: stock and publish changes move products in and out of the
// published, low-stock and out-of-stock views, so any product mutation
// clears all of them for the affected category.
type cachedProductService struct {
	inner ProductService
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedProductService(inner ProductService, store cache.Cache, cfg *config.CacheConfig) ProductService {
	return &cachedProductService{
		inner: inner,
		cache: store,
		ttl:   cfg.ProductTTL,
	}
}

func (s *cachedProductService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {

	key := cache.ProductByIDKey(tenant.Scope(ctx), id)

	var product models.Product

	missed := false

	err := s.cache.GetOrAdd(ctx, key, &product, s.ttl, func(ctx context.Context) (any, error) {
		missed = true

		return s.inner.GetProduct(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	observeCacheRead(productCacheEntity, missed)

	return &product, nil
}

// ListProducts is never cached: arbitrary filter combinations would grow the
// key space unboundedly.
func (s *cachedProductService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error) {
	return s.inner.ListProducts(ctx, filter)
}

func (s *cachedProductService) GetProductsByCategory(ctx context.Context, categoryID int, onlyPublished bool) ([]*models.Product, error) {

	key := cache.ProductsByCategoryKey(tenant.Scope(ctx), categoryID, onlyPublished)

	return s.readThroughList(ctx, key, func(ctx context.Context) (any, error) {
		return s.inner.GetProductsByCategory(ctx, categoryID, onlyPublished)
	})
}

func (s *cachedProductService) GetPublishedProducts(ctx context.Context, categoryID *int) ([]*models.Product, error) {

	key := cache.PublishedProductsKey(tenant.Scope(ctx), categoryID)

	return s.readThroughList(ctx, key, func(ctx context.Context) (any, error) {
		return s.inner.GetPublishedProducts(ctx, categoryID)
	})
}

// GetLowStockProducts caches only the default-threshold view. Invalidation
// cannot enumerate arbitrary thresholds, so a custom threshold always goes
// to the inner service.
func (s *cachedProductService) GetLowStockProducts(ctx context.Context, threshold *int) ([]*models.Product, error) {

	if threshold != nil && *threshold != models.DefaultLowStockThreshold {
		return s.inner.GetLowStockProducts(ctx, threshold)
	}

	key := cache.LowStockKey(tenant.Scope(ctx), models.DefaultLowStockThreshold)

	return s.readThroughList(ctx, key, func(ctx context.Context) (any, error) {
		return s.inner.GetLowStockProducts(ctx, threshold)
	})
}

func (s *cachedProductService) GetOutOfStockProducts(ctx context.Context) ([]*models.Product, error) {

	key := cache.OutOfStockKey(tenant.Scope(ctx))

	return s.readThroughList(ctx, key, func(ctx context.Context) (any, error) {
		return s.inner.GetOutOfStockProducts(ctx)
	})
}

func (s *cachedProductService) CheckStock(ctx context.Context, req *models.CheckStockRequest) (*models.StockCheckResult, error) {
	return s.inner.CheckStock(ctx, req)
}

func (s *cachedProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {

	product, err := s.inner.CreateProduct(ctx, req)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, product.CategoryID, &product.ID)

	return product, nil
}

func (s *cachedProductService) UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error) {

	// Capture the pre-update category so a move between categories clears
	// both category key sets.
	oldProduct, err := s.inner.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	oldCategoryID := oldProduct.CategoryID

	product, err := s.inner.UpdateProduct(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, oldCategoryID, &id)

	if oldCategoryID != product.CategoryID {
		s.invalidate(ctx, product.CategoryID, &id)
	}

	return product, nil
}

func (s *cachedProductService) DeleteProduct(ctx context.Context, id int64) error {

	// The category id is gone after the delete, so read it first.
	product, err := s.inner.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	if err := s.inner.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, product.CategoryID, &id)

	return nil
}

func (s *cachedProductService) PublishProduct(ctx context.Context, id int64) (*models.Product, error) {

	product, err := s.inner.PublishProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, product.CategoryID, &id)

	return product, nil
}

func (s *cachedProductService) UnpublishProduct(ctx context.Context, id int64) (*models.Product, error) {

	product, err := s.inner.UnpublishProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, product.CategoryID, &id)

	return product, nil
}

func (s *cachedProductService) UpdateStock(ctx context.Context, id int64, req *models.UpdateStockRequest) (*models.Product, error) {

	product, err := s.inner.UpdateStock(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, product.CategoryID, &id)

	return product, nil
}

func (s *cachedProductService) AdjustStock(ctx context.Context, id int64, req *models.AdjustStockRequest) (*models.Product, error) {

	product, err := s.inner.AdjustStock(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, product.CategoryID, &id)

	return product, nil
}

// BulkUpdateStock clears the global aggregate views and every affected
// product's by-id entry. Per-category keys are not threaded through bulk
// updates; those entries expire by TTL.
func (s *cachedProductService) BulkUpdateStock(ctx context.Context, req *models.BulkUpdateStockRequest) error {

	if err := s.inner.BulkUpdateStock(ctx, req); err != nil {
		return err
	}

	scope := tenant.Scope(ctx)

	keys := []string{
		cache.PublishedProductsKey(scope, nil),
		cache.LowStockKey(scope, models.DefaultLowStockThreshold),
		cache.OutOfStockKey(scope),
	}

	for _, item := range req.Items {
		keys = append(keys, cache.ProductByIDKey(scope, item.ProductID))
	}

	removeKeys(ctx, s.cache, productCacheEntity, keys)

	return nil
}

func (s *cachedProductService) readThroughList(ctx context.Context, key string, factory func(ctx context.Context) (any, error)) ([]*models.Product, error) {

	var products []*models.Product

	missed := false

	err := s.cache.GetOrAdd(ctx, key, &products, s.ttl, func(ctx context.Context) (any, error) {
		missed = true

		return factory(ctx)
	})
	if err != nil {
		return nil, err
	}

	observeCacheRead(productCacheEntity, missed)

	return products, nil
}

// invalidate removes every product view a mutation of a product in the given
// category could have changed. Best-effort, never fails the caller.
func (s *cachedProductService) invalidate(ctx context.Context, categoryID int, productID *int64) {

	scope := tenant.Scope(ctx)

	keys := []string{
		cache.ProductsByCategoryKey(scope, categoryID, true),
		cache.ProductsByCategoryKey(scope, categoryID, false),
		cache.PublishedProductsKey(scope, &categoryID),
		cache.PublishedProductsKey(scope, nil),
		cache.LowStockKey(scope, models.DefaultLowStockThreshold),
		cache.OutOfStockKey(scope),
	}

	if productID != nil {
		keys = append(keys, cache.ProductByIDKey(scope, *productID))
	}

	removeKeys(ctx, s.cache, productCacheEntity, keys)
}
