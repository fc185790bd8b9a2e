package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/onlinestore/catalog-admin/internal/cache"
	"github.com/onlinestore/catalog-admin/internal/config"
	appErrors "github.com/onlinestore/catalog-admin/internal/errors"
	"github.com/onlinestore/catalog-admin/internal/models"
	service "github.com/onlinestore/catalog-admin/internal/services"
	"github.com/onlinestore/catalog-admin/internal/services/mocks"
	"github.com/onlinestore/catalog-admin/internal/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupCachedProductTest() (service.ProductService, *mocks.ProductService, *fakeCache) {
	mockInner := new(mocks.ProductService)
	store := newFakeCache()
	cfg := &config.CacheConfig{
		CategoryTTL: 30 * time.Minute,
		ProductTTL:  15 * time.Minute,
		DefaultTTL:  10 * time.Minute,
	}

	return service.NewCachedProductService(mockInner, store, cfg), mockInner, store
}

func TestCachedGetProduct(t *testing.T) {
	ctx := tenant.WithTenant(context.Background(), nil)

	t.Run("Success - Second Read Served From Cache", func(t *testing.T) {
		// Arrange
		cachedService, mockInner, _ := setupCachedProductTest()

		expected := &models.Product{ID: 101, CategoryID: 7, NameEn: "Laptop", SKU: "LAP-001"}

		mockInner.On("GetProduct", mock.Anything, int64(101)).Return(expected, nil).Once()

		// Act
		first, err1 := cachedService.GetProduct(ctx, 101)
		second, err2 := cachedService.GetProduct(ctx, 101)

		// Assert
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, expected.SKU, first.SKU)
		assert.Equal(t, expected.SKU, second.SKU)
		mockInner.AssertNumberOfCalls(t, "GetProduct", 1)
	})

	t.Run("Success - Entry Expires After Product TTL", func(t *testing.T) {
		// Arrange
		cachedService, mockInner, store := setupCachedProductTest()

		expected := &models.Product{ID: 101, CategoryID: 7, NameEn: "Laptop"}

		mockInner.On("GetProduct", mock.Anything, int64(101)).Return(expected, nil).Twice()

		// Act
		_, err1 := cachedService.GetProduct(ctx, 101)
		store.Advance(15*time.Minute + time.Second)
		_, err2 := cachedService.GetProduct(ctx, 101)

		// Assert
		require.NoError(t, err1)
		require.NoError(t, err2)
		mockInner.AssertNumberOfCalls(t, "GetProduct", 2)
	})

	t.Run("Failure - Inner Error Propagates", func(t *testing.T) {
		// Arrange
		cachedService, mockInner, store := setupCachedProductTest()

		mockInner.On("GetProduct", mock.Anything, int64(404)).Return(nil, appErrors.NotFoundError("Product not found")).Once()

		// Act
		product, err := cachedService.GetProduct(ctx, 404)

		// Assert
		require.Error(t, err)
		assert.Nil(t, product)
		assert.Empty(t, store.entries)
		mockInner.AssertExpectations(t)
	})
}

func TestCachedProductListViews(t *testing.T) {
	ctx := tenant.WithTenant(context.Background(), nil)
	categoryID := 7

	t.Run("By Category - Read Through", func(t *testing.T) {
		// Arrange
		cachedService, mockInner, _ := setupCachedProductTest()

		expected := []*models.Product{{ID: 101, CategoryID: 7}}

		mockInner.On("GetProductsByCategory", mock.Anything, 7, true).Return(expected, nil).Once()

		// Act
		_, err1 := cachedService.GetProductsByCategory(ctx, 7, true)
		_, err2 := cachedService.GetProductsByCategory(ctx, 7, true)

		// Assert
		require.NoError(t, err1)
		require.NoError(t, err2)
		mockInner.AssertNumberOfCalls(t, "GetProductsByCategory", 1)
	})

	t.Run("Published Views - Global And Per Category Are Distinct Entries", func(t *testing.T) {
		// Arrange
		cachedService, mockInner, store := setupCachedProductTest()

		mockInner.On("GetPublishedProducts", mock.Anything, (*int)(nil)).Return([]*models.Product{}, nil).Once()
		mockInner.On("GetPublishedProducts", mock.Anything, &categoryID).Return([]*models.Product{}, nil).Once()

		// Act
		_, err1 := cachedService.GetPublishedProducts(ctx, nil)
		_, err2 := cachedService.GetPublishedProducts(ctx, &categoryID)

		// Assert
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.True(t, store.Contains(cache.PublishedProductsKey(tenant.HostScope, nil)))
		assert.True(t, store.Contains(cache.PublishedProductsKey(tenant.HostScope, &categoryID)))
		mockInner.AssertExpectations(t)
	})

	t.Run("Low Stock - Default Threshold Cached", func(t *testing.T) {
		// Arrange
		cachedService, mockInner, _ := setupCachedProductTest()

		mockInner.On("GetLowStockProducts", mock.Anything, (*int)(nil)).Return([]*models.Product{}, nil).Once()

		// Act
		_, err1 := cachedService.GetLowStockProducts(ctx, nil)
		_, err2 := cachedService.GetLowStockProducts(ctx, nil)

		// Assert
		require.NoError(t, err1)
		require.NoError(t, err2)
		mockInner.AssertNumberOfCalls(t, "GetLowStockProducts", 1)
	})

	t.Run("Low Stock - Custom Threshold Bypasses Cache", func(t *testing.T) {
		// Arrange
		cachedService, mockInner, store := setupCachedProductTest()
		threshold := 25

		mockInner.On("GetLowStockProducts", mock.Anything, &threshold).Return([]*models.Product{}, nil).Twice()

		// Act
		_, err1 := cachedService.GetLowStockProducts(ctx, &threshold)
		_, err2 := cachedService.GetLowStockProducts(ctx, &threshold)

		// Assert
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Empty(t, store.entries, "only the default-threshold view is cached")
		mockInner.AssertNumberOfCalls(t, "GetLowStockProducts", 2)
	})

	t.Run("Out Of Stock - Read Through", func(t *testing.T) {
		// Arrange
		cachedService, mockInner, _ := setupCachedProductTest()

		mockInner.On("GetOutOfStockProducts", mock.Anything).Return([]*models.Product{}, nil).Once()

		// Act
		_, err1 := cachedService.GetOutOfStockProducts(ctx)
		_, err2 := cachedService.GetOutOfStockProducts(ctx)

		// Assert
		require.NoError(t, err1)
		require.NoError(t, err2)
		mockInner.AssertNumberOfCalls(t, "GetOutOfStockProducts", 1)
	})

	t.Run("List And CheckStock Are Passthroughs", func(t *testing.T) {
		// Arrange
		cachedService, mockInner, store := setupCachedProductTest()

		filter := models.ProductFilter{Page: 1, PageSize: 20}
		checkReq := &models.CheckStockRequest{Items: []models.StockCheckItem{{ProductID: 101, Quantity: 2}}}

		mockInner.On("ListProducts", mock.Anything, filter).Return([]*models.Product{}, 0, nil).Twice()
		mockInner.On("CheckStock", mock.Anything, checkReq).Return(&models.StockCheckResult{}, nil).Twice()

		// Act
		_, _, _ = cachedService.ListProducts(ctx, filter)
		_, _, _ = cachedService.ListProducts(ctx, filter)
		_, _ = cachedService.CheckStock(ctx, checkReq)
		_, _ = cachedService.CheckStock(ctx, checkReq)

		// Assert
		assert.Empty(t, store.entries)
		mockInner.AssertExpectations(t)
	})
}

func TestCachedProductWriteInvalidation(t *testing.T) {
	ctx := tenant.WithTenant(context.Background(), nil)
	categoryID := 7

	productViewKeys := func(catID int, productID int64) []string {
		return []string{
			cache.ProductsByCategoryKey(tenant.HostScope, catID, true),
			cache.ProductsByCategoryKey(tenant.HostScope, catID, false),
			cache.PublishedProductsKey(tenant.HostScope, &catID),
			cache.PublishedProductsKey(tenant.HostScope, nil),
			cache.LowStockKey(tenant.HostScope, models.DefaultLowStockThreshold),
			cache.OutOfStockKey(tenant.HostScope),
			cache.ProductByIDKey(tenant.HostScope, productID),
		}
	}

	t.Run("Create - Category Views Invalidated", func(t *testing.T) {
		// Arrange
		cachedService, mockInner, store := setupCachedProductTest()

		created := &models.Product{ID: 101, CategoryID: 7}
		req := &models.CreateProductRequest{CategoryID: 7, NameEn: "Laptop", SKU: "LAP-001", Price: 999.99}

		mockInner.On("CreateProduct", mock.Anything, req).Return(created, nil).Once()

		// Act
		_, err := cachedService.CreateProduct(ctx, req)

		// Assert
		require.NoError(t, err)

		deleted := store.DeletedKeys()
		for _, key := range productViewKeys(7, 101) {
			assert.Contains(t, deleted, key)
		}
		mockInner.AssertExpectations(t)
	})

	t.Run("Update - Stale Read Gone After Write", func(t *testing.T) {
		// Arrange
		cachedService, mockInner, _ := setupCachedProductTest()

		before := &models.Product{ID: 101, CategoryID: 7, Price: 999.99}
		after := &models.Product{ID: 101, CategoryID: 7, Price: 899.99}
		newPrice := 899.99
		req := &models.UpdateProductRequest{Price: &newPrice}

		mockInner.On("GetProduct", mock.Anything, int64(101)).Return(before, nil).Twice()
		mockInner.On("UpdateProduct", mock.Anything, int64(101), req).Return(after, nil).Once()

		// Act
		_, err := cachedService.GetProduct(ctx, 101)
		require.NoError(t, err)

		_, err = cachedService.UpdateProduct(ctx, 101, req)
		require.NoError(t, err)

		mockInner.On("GetProduct", mock.Anything, int64(101)).Return(after, nil).Once()
		got, err := cachedService.GetProduct(ctx, 101)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 899.99, got.Price, "a read after a write must observe the new price")
		mockInner.AssertExpectations(t)
	})

	t.Run("Update - Category Move Clears Both Key Sets", func(t *testing.T) {
		// Arrange
		cachedService, mockInner, store := setupCachedProductTest()

		before := &models.Product{ID: 101, CategoryID: 7}
		after := &models.Product{ID: 101, CategoryID: 9}
		newCategory := 9
		req := &models.UpdateProductRequest{CategoryID: &newCategory}

		mockInner.On("GetProduct", mock.Anything, int64(101)).Return(before, nil).Once()
		mockInner.On("UpdateProduct", mock.Anything, int64(101), req).Return(after, nil).Once()

		// Act
		_, err := cachedService.UpdateProduct(ctx, 101, req)

		// Assert
		require.NoError(t, err)

		deleted := store.DeletedKeys()
		assert.Contains(t, deleted, cache.ProductsByCategoryKey(tenant.HostScope, 7, true), "old category views must be cleared")
		assert.Contains(t, deleted, cache.ProductsByCategoryKey(tenant.HostScope, 9, true), "new category views must be cleared")
		assert.Contains(t, deleted, cache.PublishedProductsKey(tenant.HostScope, &categoryID))
		mockInner.AssertExpectations(t)
	})

	t.Run("Delete - Reads Category First, Then Invalidates", func(t *testing.T) {
		// Arrange
		cachedService, mockInner, store := setupCachedProductTest()

		existing := &models.Product{ID: 101, CategoryID: 7}

		mockInner.On("GetProduct", mock.Anything, int64(101)).Return(existing, nil).Once()
		mockInner.On("DeleteProduct", mock.Anything, int64(101)).Return(nil).Once()

		// Act
		err := cachedService.DeleteProduct(ctx, 101)

		// Assert
		require.NoError(t, err)

		deleted := store.DeletedKeys()
		for _, key := range productViewKeys(7, 101) {
			assert.Contains(t, deleted, key)
		}
		mockInner.AssertExpectations(t)
	})

	t.Run("Publish And Stock Mutations Invalidate", func(t *testing.T) {
		// Arrange
		cachedService, mockInner, store := setupCachedProductTest()

		product := &models.Product{ID: 101, CategoryID: 7}
		stockReq := &models.UpdateStockRequest{StockQuantity: 50}
		adjustReq := &models.AdjustStockRequest{QuantityChange: -5}

		mockInner.On("PublishProduct", mock.Anything, int64(101)).Return(product, nil).Once()
		mockInner.On("UnpublishProduct", mock.Anything, int64(101)).Return(product, nil).Once()
		mockInner.On("UpdateStock", mock.Anything, int64(101), stockReq).Return(product, nil).Once()
		mockInner.On("AdjustStock", mock.Anything, int64(101), adjustReq).Return(product, nil).Once()

		// Act
		_, err1 := cachedService.PublishProduct(ctx, 101)
		_, err2 := cachedService.UnpublishProduct(ctx, 101)
		_, err3 := cachedService.UpdateStock(ctx, 101, stockReq)
		_, err4 := cachedService.AdjustStock(ctx, 101, adjustReq)

		// Assert
		require.NoError(t, err1)
		require.NoError(t, err2)
		require.NoError(t, err3)
		require.NoError(t, err4)

		deleted := store.DeletedKeys()
		assert.Contains(t, deleted, cache.PublishedProductsKey(tenant.HostScope, nil))
		assert.Contains(t, deleted, cache.LowStockKey(tenant.HostScope, models.DefaultLowStockThreshold))
		assert.Contains(t, deleted, cache.OutOfStockKey(tenant.HostScope))
		mockInner.AssertExpectations(t)
	})

	t.Run("Bulk Stock Update - Aggregate Views And Each Product Invalidated", func(t *testing.T) {
		// Arrange
		cachedService, mockInner, store := setupCachedProductTest()

		req := &models.BulkUpdateStockRequest{Items: []models.BulkStockItem{
			{ProductID: 101, StockQuantity: 5},
			{ProductID: 102, StockQuantity: 0},
		}}

		mockInner.On("BulkUpdateStock", mock.Anything, req).Return(nil).Once()

		// Act
		err := cachedService.BulkUpdateStock(ctx, req)

		// Assert
		require.NoError(t, err)

		deleted := store.DeletedKeys()
		assert.Contains(t, deleted, cache.PublishedProductsKey(tenant.HostScope, nil))
		assert.Contains(t, deleted, cache.LowStockKey(tenant.HostScope, models.DefaultLowStockThreshold))
		assert.Contains(t, deleted, cache.OutOfStockKey(tenant.HostScope))
		assert.Contains(t, deleted, cache.ProductByIDKey(tenant.HostScope, 101))
		assert.Contains(t, deleted, cache.ProductByIDKey(tenant.HostScope, 102))
		mockInner.AssertExpectations(t)
	})

	t.Run("Failed Write - Cache Untouched", func(t *testing.T) {
		// Arrange
		cachedService, mockInner, store := setupCachedProductTest()

		stockReq := &models.UpdateStockRequest{StockQuantity: 50}

		mockInner.On("UpdateStock", mock.Anything, int64(101), stockReq).Return(nil, appErrors.DatabaseError("update failed")).Once()

		// Act
		_, err := cachedService.UpdateStock(ctx, 101, stockReq)

		// Assert
		require.Error(t, err)
		assert.Empty(t, store.DeletedKeys(), "a failed mutation must not invalidate anything")
		mockInner.AssertExpectations(t)
	})

	t.Run("Invalidation Failure - Write Still Succeeds", func(t *testing.T) {
		// Arrange
		cachedService, mockInner, store := setupCachedProductTest()
		store.deleteErr = errors.New("redis connection refused")

		product := &models.Product{ID: 101, CategoryID: 7}

		mockInner.On("PublishProduct", mock.Anything, int64(101)).Return(product, nil).Once()

		// Act
		got, err := cachedService.PublishProduct(ctx, 101)

		// Assert
		require.NoError(t, err, "a cache fault during invalidation must never fail the committed write")
		assert.Equal(t, int64(101), got.ID)
		mockInner.AssertExpectations(t)
	})
}
