package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/onlinestore/catalog-admin/internal/cache"
	"github.com/onlinestore/catalog-admin/internal/config"
	"github.com/onlinestore/catalog-admin/internal/metrics"
	"github.com/onlinestore/catalog-admin/internal/models"
	"github.com/onlinestore/catalog-admin/internal/tenant"
)

const categoryCacheEntity = "category"

// cachedCategoryService decorates a CategoryService with read-through caching
// and write-through invalidation. It is a drop-in substitute for the plain
// service: callers observe identical behavior apart from latency and the
// bounded staleness window.
//
// Reads of the fixed views (by id, active list) are served from the cache and
// populated on miss. Paginated and filtered listings are never cached: their
// parameter space is unbounded and would grow the key space without limit.
// Writes delegate to the inner service first and invalidate only after the
// mutation succeeded, so a failed mutation never clears a valid entry.
type cachedCategoryService struct {
	inner CategoryService
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedCategoryService(inner CategoryService, store cache.Cache, cfg *config.CacheConfig) CategoryService {
	return &cachedCategoryService{
		inner: inner,
		cache: store,
		ttl:   cfg.CategoryTTL,
	}
}

func (s *cachedCategoryService) GetCategory(ctx context.Context, id int) (*models.Category, error) {

	key := cache.CategoryByIDKey(tenant.Scope(ctx), id)

	var category models.Category

	missed := false

	err := s.cache.GetOrAdd(ctx, key, &category, s.ttl, func(ctx context.Context) (any, error) {
		missed = true

		return s.inner.GetCategory(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	observeCacheRead(categoryCacheEntity, missed)

	return &category, nil
}

func (s *cachedCategoryService) ListCategories(ctx context.Context, filter models.CategoryFilter) ([]*models.Category, int, error) {
	return s.inner.ListCategories(ctx, filter)
}

func (s *cachedCategoryService) GetActiveCategories(ctx context.Context) ([]*models.Category, error) {

	key := cache.ActiveCategoriesKey(tenant.Scope(ctx))

	var categories []*models.Category

	missed := false

	err := s.cache.GetOrAdd(ctx, key, &categories, s.ttl, func(ctx context.Context) (any, error) {
		missed = true

		return s.inner.GetActiveCategories(ctx)
	})
	if err != nil {
		return nil, err
	}

	observeCacheRead(categoryCacheEntity, missed)

	return categories, nil
}

func (s *cachedCategoryService) CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {

	category, err := s.inner.CreateCategory(ctx, req)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, &category.ID)

	return category, nil
}

func (s *cachedCategoryService) UpdateCategory(ctx context.Context, id int, req *models.UpdateCategoryRequest) (*models.Category, error) {

	category, err := s.inner.UpdateCategory(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, &id)

	return category, nil
}

func (s *cachedCategoryService) DeleteCategory(ctx context.Context, id int) error {

	if err := s.inner.DeleteCategory(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, &id)

	return nil
}

func (s *cachedCategoryService) CanDeleteCategory(ctx context.Context, id int) (bool, error) {
	return s.inner.CanDeleteCategory(ctx, id)
}

func (s *cachedCategoryService) ActivateCategory(ctx context.Context, id int) (*models.Category, error) {

	category, err := s.inner.ActivateCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, &id)

	return category, nil
}

func (s *cachedCategoryService) DeactivateCategory(ctx context.Context, id int) (*models.Category, error) {

	category, err := s.inner.DeactivateCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, &id)

	return category, nil
}

func (s *cachedCategoryService) ChangeDisplayOrder(ctx context.Context, id, newOrder int) (*models.Category, error) {

	category, err := s.inner.ChangeDisplayOrder(ctx, id, newOrder)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, &id)

	return category, nil
}

// invalidate removes every category view the mutation could have changed:
// the tenant's active list, and the by-id entry when the id is known. It is
// best-effort and never fails the caller: a stale entry expires by TTL,
// whereas failing a committed write over a cache fault would be wrong.
func (s *cachedCategoryService) invalidate(ctx context.Context, categoryID *int) {

	scope := tenant.Scope(ctx)

	keys := []string{cache.ActiveCategoriesKey(scope)}

	if categoryID != nil {
		keys = append(keys, cache.CategoryByIDKey(scope, *categoryID))
	}

	removeKeys(ctx, s.cache, categoryCacheEntity, keys)
}

func observeCacheRead(entity string, missed bool) {
	if missed {
		metrics.CacheMiss(entity)
	} else {
		metrics.CacheHit(entity)
	}
}

// removeKeys deletes each key independently, logging and counting failures
// without propagating them. One failed delete never stops the rest.
func removeKeys(ctx context.Context, store cache.Cache, entity string, keys []string) {
	for _, key := range keys {
		if err := store.Delete(ctx, key); err != nil {
			metrics.CacheInvalidationFailure(entity)
			slog.Warn("Failed to invalidate cache entry, it will expire by TTL",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}
}
