package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/onlinestore/catalog-admin/internal/api/handlers"
	appErrors "github.com/onlinestore/catalog-admin/internal/errors"
	"github.com/onlinestore/catalog-admin/internal/models"
	"github.com/onlinestore/catalog-admin/internal/services/mocks"
	"github.com/onlinestore/catalog-admin/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCreateProduct(t *testing.T) {
	mockProductService := new(mocks.ProductService)
	productHandler := handlers.NewProductHandler(mockProductService)
	userID := uuid.New()
	tenantID := uuid.New()

	t.Run("Success - Product Created", func(t *testing.T) {
		// Arrange
		reqBody := models.CreateProductRequest{
			CategoryID:    3,
			NameEn:        "Test Laptop",
			NameAr:        "حاسوب محمول",
			SKU:           "LAP-001",
			Price:         999.99,
			StockQuantity: 10,
			IsActive:      true,
		}
		reqBodyBytes, _ := json.Marshal(reqBody)

		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/products", bytes.NewReader(reqBodyBytes), userID, &tenantID, nil)
		req.Header.Set("Content-Type", "application/json")

		expectedProduct := &models.Product{
			ID:            101,
			CategoryID:    3,
			NameEn:        reqBody.NameEn,
			SKU:           reqBody.SKU,
			Price:         reqBody.Price,
			StockQuantity: reqBody.StockQuantity,
			IsActive:      true,
			TenantID:      &tenantID,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}

		mockProductService.On("CreateProduct", mock.Anything, &reqBody).Return(expectedProduct, nil).Once()

		// Act
		handler := productHandler.CreateProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)

		var respProduct models.Product
		decodeData(t, rr.Body.Bytes(), &respProduct)
		assert.Equal(t, expectedProduct.ID, respProduct.ID)
		assert.Equal(t, expectedProduct.SKU, respProduct.SKU)

		mockProductService.AssertExpectations(t)
	})

	t.Run("Invalid Input - Bad JSON", func(t *testing.T) {
		// Arrange
		mockProductService := new(mocks.ProductService)
		productHandler := handlers.NewProductHandler(mockProductService)
		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/products", bytes.NewReader([]byte("{invalid json")), userID, &tenantID, nil)
		req.Header.Set("Content-Type", "application/json")

		// Act
		handler := productHandler.CreateProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockProductService.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	})

	t.Run("Invalid Input - Bad SKU Format", func(t *testing.T) {
		// Arrange
		mockProductService := new(mocks.ProductService)
		productHandler := handlers.NewProductHandler(mockProductService)
		reqBody := models.CreateProductRequest{
			CategoryID:    3,
			NameEn:        "Test Laptop",
			NameAr:        "حاسوب محمول",
			SKU:           "lap 001", // space and lowercase fail the sku tag
			Price:         999.99,
			StockQuantity: 10,
		}
		reqBodyBytes, _ := json.Marshal(reqBody)

		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/products", bytes.NewReader(reqBodyBytes), userID, &tenantID, nil)
		req.Header.Set("Content-Type", "application/json")

		// Act
		handler := productHandler.CreateProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockProductService.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Inactive Category", func(t *testing.T) {
		// Arrange
		reqBody := models.CreateProductRequest{
			CategoryID:    4,
			NameEn:        "Test Laptop",
			NameAr:        "حاسوب محمول",
			SKU:           "LAP-002",
			Price:         999.99,
			StockQuantity: 10,
		}
		reqBodyBytes, _ := json.Marshal(reqBody)

		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/products", bytes.NewReader(reqBodyBytes), userID, &tenantID, nil)
		req.Header.Set("Content-Type", "application/json")

		mockProductService.On("CreateProduct", mock.Anything, &reqBody).Return(nil, appErrors.BusinessRuleError("Category is not active")).Once()

		// Act
		handler := productHandler.CreateProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), appErrors.ErrCodeBusinessRule)
		mockProductService.AssertExpectations(t)
	})
}

func TestGetProduct(t *testing.T) {
	mockProductService := new(mocks.ProductService)
	productHandler := handlers.NewProductHandler(mockProductService)
	userID := uuid.New()
	tenantID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/products/101", nil, userID, &tenantID, map[string]string{"id": "101"})

		expectedProduct := &models.Product{ID: 101, NameEn: "Fetched Laptop", SKU: "LAP-001", Price: 149.50}

		mockProductService.On("GetProduct", mock.Anything, int64(101)).Return(expectedProduct, nil).Once()

		// Act
		handler := productHandler.GetProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var respProduct models.Product
		decodeData(t, rr.Body.Bytes(), &respProduct)
		assert.Equal(t, expectedProduct.ID, respProduct.ID)
		assert.Equal(t, expectedProduct.NameEn, respProduct.NameEn)

		mockProductService.AssertExpectations(t)
	})

	t.Run("Invalid ID Format", func(t *testing.T) {
		// Arrange
		mockProductService := new(mocks.ProductService)
		productHandler := handlers.NewProductHandler(mockProductService)
		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/products/not-a-number", nil, userID, &tenantID, map[string]string{"id": "not-a-number"})

		// Act
		handler := productHandler.GetProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid product id")
		mockProductService.AssertNotCalled(t, "GetProduct", mock.Anything, mock.Anything)
	})

	t.Run("Product Not Found", func(t *testing.T) {
		// Arrange
		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/products/999", nil, userID, &tenantID, map[string]string{"id": "999"})

		mockProductService.On("GetProduct", mock.Anything, int64(999)).Return(nil, appErrors.NotFoundError("Product not found")).Once()

		// Act
		handler := productHandler.GetProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), appErrors.ErrCodeNotFound)
		mockProductService.AssertExpectations(t)
	})
}

func TestListProducts(t *testing.T) {
	mockProductService := new(mocks.ProductService)
	productHandler := handlers.NewProductHandler(mockProductService)
	userID := uuid.New()
	tenantID := uuid.New()

	t.Run("Success - Filters Parsed", func(t *testing.T) {
		// Arrange
		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/products?page=2&pageSize=5&categoryId=3&isPublished=true&minPrice=10.5", nil, userID, &tenantID, nil)

		expectedProducts := []*models.Product{
			{ID: 101, NameEn: "Laptop", Price: 999.99},
		}

		mockProductService.On("ListProducts", mock.Anything, mock.MatchedBy(func(f models.ProductFilter) bool {
			return f.Page == 2 && f.PageSize == 5 &&
				f.CategoryID != nil && *f.CategoryID == 3 &&
				f.IsPublished != nil && *f.IsPublished &&
				f.MinPrice != nil && *f.MinPrice == 10.5
		})).Return(expectedProducts, 8, nil).Once()

		// Act
		handler := productHandler.ListProducts()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp models.PaginatedResponse
		decodeData(t, rr.Body.Bytes(), &resp)
		assert.Equal(t, 2, resp.Page)
		assert.Equal(t, 5, resp.PageSize)
		assert.Equal(t, 8, resp.Total)
		assert.Equal(t, 2, resp.TotalPages)

		mockProductService.AssertExpectations(t)
	})

	t.Run("Service Error", func(t *testing.T) {
		// Arrange
		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/products", nil, userID, &tenantID, nil)

		mockProductService.On("ListProducts", mock.Anything, mock.Anything).Return(nil, 0, appErrors.DatabaseError("DB Query Failed")).Once()

		// Act
		handler := productHandler.ListProducts()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), appErrors.ErrCodeDatabaseError)
		mockProductService.AssertExpectations(t)
	})
}

func TestGetProductsByCategory(t *testing.T) {
	mockProductService := new(mocks.ProductService)
	productHandler := handlers.NewProductHandler(mockProductService)
	userID := uuid.New()
	tenantID := uuid.New()

	t.Run("Success - Only Published", func(t *testing.T) {
		// Arrange
		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/categories/3/products?onlyPublished=true", nil, userID, &tenantID, map[string]string{"categoryId": "3"})

		expectedProducts := []*models.Product{
			{ID: 101, CategoryID: 3, NameEn: "Laptop", IsPublished: true},
		}

		mockProductService.On("GetProductsByCategory", mock.Anything, 3, true).Return(expectedProducts, nil).Once()

		// Act
		handler := productHandler.GetProductsByCategory()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var respProducts []*models.Product
		decodeData(t, rr.Body.Bytes(), &respProducts)
		assert.Len(t, respProducts, 1)

		mockProductService.AssertExpectations(t)
	})

	t.Run("Invalid Category ID", func(t *testing.T) {
		// Arrange
		mockProductService := new(mocks.ProductService)
		productHandler := handlers.NewProductHandler(mockProductService)
		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/categories/abc/products", nil, userID, &tenantID, map[string]string{"categoryId": "abc"})

		// Act
		handler := productHandler.GetProductsByCategory()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockProductService.AssertNotCalled(t, "GetProductsByCategory", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetPublishedProducts(t *testing.T) {
	mockProductService := new(mocks.ProductService)
	productHandler := handlers.NewProductHandler(mockProductService)
	userID := uuid.New()
	tenantID := uuid.New()

	t.Run("Success - All Categories", func(t *testing.T) {
		// Arrange
		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/products/published", nil, userID, &tenantID, nil)

		expectedProducts := []*models.Product{
			{ID: 101, NameEn: "Laptop", IsPublished: true},
			{ID: 102, NameEn: "Phone", IsPublished: true},
		}

		mockProductService.On("GetPublishedProducts", mock.Anything, (*int)(nil)).Return(expectedProducts, nil).Once()

		// Act
		handler := productHandler.GetPublishedProducts()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		mockProductService.AssertExpectations(t)
	})

	t.Run("Success - Single Category", func(t *testing.T) {
		// Arrange
		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/products/published?categoryId=3", nil, userID, &tenantID, nil)

		mockProductService.On("GetPublishedProducts", mock.Anything, mock.MatchedBy(func(id *int) bool {
			return id != nil && *id == 3
		})).Return([]*models.Product{}, nil).Once()

		// Act
		handler := productHandler.GetPublishedProducts()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		mockProductService.AssertExpectations(t)
	})

	t.Run("Invalid Category ID", func(t *testing.T) {
		// Arrange
		mockProductService := new(mocks.ProductService)
		productHandler := handlers.NewProductHandler(mockProductService)
		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/products/published?categoryId=0", nil, userID, &tenantID, nil)

		// Act
		handler := productHandler.GetPublishedProducts()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockProductService.AssertNotCalled(t, "GetPublishedProducts", mock.Anything, mock.Anything)
	})
}

func TestGetLowStockProducts(t *testing.T) {
	mockProductService := new(mocks.ProductService)
	productHandler := handlers.NewProductHandler(mockProductService)
	userID := uuid.New()
	tenantID := uuid.New()

	t.Run("Success - Default Threshold", func(t *testing.T) {
		// Arrange
		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/products/low-stock", nil, userID, &tenantID, nil)

		mockProductService.On("GetLowStockProducts", mock.Anything, (*int)(nil)).Return([]*models.Product{}, nil).Once()

		// Act
		handler := productHandler.GetLowStockProducts()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		mockProductService.AssertExpectations(t)
	})

	t.Run("Success - Custom Threshold", func(t *testing.T) {
		// Arrange
		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/products/low-stock?threshold=25", nil, userID, &tenantID, nil)

		mockProductService.On("GetLowStockProducts", mock.Anything, mock.MatchedBy(func(threshold *int) bool {
			return threshold != nil && *threshold == 25
		})).Return([]*models.Product{}, nil).Once()

		// Act
		handler := productHandler.GetLowStockProducts()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		mockProductService.AssertExpectations(t)
	})

	t.Run("Invalid Threshold", func(t *testing.T) {
		// Arrange
		mockProductService := new(mocks.ProductService)
		productHandler := handlers.NewProductHandler(mockProductService)
		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/products/low-stock?threshold=-1", nil, userID, &tenantID, nil)

		// Act
		handler := productHandler.GetLowStockProducts()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockProductService.AssertNotCalled(t, "GetLowStockProducts", mock.Anything, mock.Anything)
	})
}

func TestUpdateProduct(t *testing.T) {
	mockProductService := new(mocks.ProductService)
	productHandler := handlers.NewProductHandler(mockProductService)
	userID := uuid.New()
	tenantID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		newName := "Updated Laptop"
		newPrice := 899.99
		reqBody := models.UpdateProductRequest{NameEn: &newName, Price: &newPrice}
		reqBodyBytes, _ := json.Marshal(reqBody)

		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodPut, "/api/v1/products/101", bytes.NewReader(reqBodyBytes), userID, &tenantID, map[string]string{"id": "101"})
		req.Header.Set("Content-Type", "application/json")

		expectedProduct := &models.Product{ID: 101, NameEn: newName, Price: newPrice}

		mockProductService.On("UpdateProduct", mock.Anything, int64(101), &reqBody).Return(expectedProduct, nil).Once()

		// Act
		handler := productHandler.UpdateProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var respProduct models.Product
		decodeData(t, rr.Body.Bytes(), &respProduct)
		assert.Equal(t, newName, respProduct.NameEn)
		assert.Equal(t, newPrice, respProduct.Price)

		mockProductService.AssertExpectations(t)
	})

	t.Run("Invalid Input - Negative Price", func(t *testing.T) {
		// Arrange
		mockProductService := new(mocks.ProductService)
		productHandler := handlers.NewProductHandler(mockProductService)
		badPrice := -10.0
		reqBody := models.UpdateProductRequest{Price: &badPrice}
		reqBodyBytes, _ := json.Marshal(reqBody)

		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodPut, "/api/v1/products/101", bytes.NewReader(reqBodyBytes), userID, &tenantID, map[string]string{"id": "101"})
		req.Header.Set("Content-Type", "application/json")

		// Act
		handler := productHandler.UpdateProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockProductService.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Product Not Found", func(t *testing.T) {
		// Arrange
		newName := "Updated Laptop"
		reqBody := models.UpdateProductRequest{NameEn: &newName}
		reqBodyBytes, _ := json.Marshal(reqBody)

		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodPut, "/api/v1/products/999", bytes.NewReader(reqBodyBytes), userID, &tenantID, map[string]string{"id": "999"})
		req.Header.Set("Content-Type", "application/json")

		mockProductService.On("UpdateProduct", mock.Anything, int64(999), &reqBody).Return(nil, appErrors.NotFoundError("Product not found")).Once()

		// Act
		handler := productHandler.UpdateProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockProductService.AssertExpectations(t)
	})
}

func TestDeleteProduct(t *testing.T) {
	mockProductService := new(mocks.ProductService)
	productHandler := handlers.NewProductHandler(mockProductService)
	userID := uuid.New()
	tenantID := uuid.New()

	t.Run("Success - No Content", func(t *testing.T) {
		// Arrange
		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/api/v1/products/101", nil, userID, &tenantID, map[string]string{"id": "101"})

		mockProductService.On("DeleteProduct", mock.Anything, int64(101)).Return(nil).Once()

		// Act
		handler := productHandler.DeleteProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusNoContent, rr.Code)
		mockProductService.AssertExpectations(t)
	})
}

func TestPublishUnpublishProduct(t *testing.T) {
	mockProductService := new(mocks.ProductService)
	productHandler := handlers.NewProductHandler(mockProductService)
	userID := uuid.New()
	tenantID := uuid.New()

	t.Run("Publish Success", func(t *testing.T) {
		// Arrange
		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/products/101/publish", nil, userID, &tenantID, map[string]string{"id": "101"})

		expectedProduct := &models.Product{ID: 101, NameEn: "Laptop", IsActive: true, IsPublished: true}

		mockProductService.On("PublishProduct", mock.Anything, int64(101)).Return(expectedProduct, nil).Once()

		// Act
		handler := productHandler.PublishProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var respProduct models.Product
		decodeData(t, rr.Body.Bytes(), &respProduct)
		assert.True(t, respProduct.IsPublished)

		mockProductService.AssertExpectations(t)
	})

	t.Run("Publish Failure - Inactive Product", func(t *testing.T) {
		// Arrange
		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/products/102/publish", nil, userID, &tenantID, map[string]string{"id": "102"})

		mockProductService.On("PublishProduct", mock.Anything, int64(102)).Return(nil, appErrors.BusinessRuleError("Inactive product cannot be published")).Once()

		// Act
		handler := productHandler.PublishProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		mockProductService.AssertExpectations(t)
	})

	t.Run("Unpublish Success", func(t *testing.T) {
		// Arrange
		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/products/101/unpublish", nil, userID, &tenantID, map[string]string{"id": "101"})

		expectedProduct := &models.Product{ID: 101, NameEn: "Laptop", IsActive: true, IsPublished: false}

		mockProductService.On("UnpublishProduct", mock.Anything, int64(101)).Return(expectedProduct, nil).Once()

		// Act
		handler := productHandler.UnpublishProduct()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var respProduct models.Product
		decodeData(t, rr.Body.Bytes(), &respProduct)
		assert.False(t, respProduct.IsPublished)

		mockProductService.AssertExpectations(t)
	})
}

func TestUpdateStock(t *testing.T) {
	mockProductService := new(mocks.ProductService)
	productHandler := handlers.NewProductHandler(mockProductService)
	userID := uuid.New()
	tenantID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		reqBody := models.UpdateStockRequest{StockQuantity: 50}
		reqBodyBytes, _ := json.Marshal(reqBody)

		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodPut, "/api/v1/products/101/stock", bytes.NewReader(reqBodyBytes), userID, &tenantID, map[string]string{"id": "101"})
		req.Header.Set("Content-Type", "application/json")

		expectedProduct := &models.Product{ID: 101, NameEn: "Laptop", StockQuantity: 50}

		mockProductService.On("UpdateStock", mock.Anything, int64(101), &reqBody).Return(expectedProduct, nil).Once()

		// Act
		handler := productHandler.UpdateStock()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var respProduct models.Product
		decodeData(t, rr.Body.Bytes(), &respProduct)
		assert.Equal(t, 50, respProduct.StockQuantity)

		mockProductService.AssertExpectations(t)
	})

	t.Run("Invalid Input - Negative Quantity", func(t *testing.T) {
		// Arrange
		mockProductService := new(mocks.ProductService)
		productHandler := handlers.NewProductHandler(mockProductService)
		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodPut, "/api/v1/products/101/stock", bytes.NewReader([]byte(`{"stockQuantity":-5}`)), userID, &tenantID, map[string]string{"id": "101"})
		req.Header.Set("Content-Type", "application/json")

		// Act
		handler := productHandler.UpdateStock()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockProductService.AssertNotCalled(t, "UpdateStock", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAdjustStock(t *testing.T) {
	mockProductService := new(mocks.ProductService)
	productHandler := handlers.NewProductHandler(mockProductService)
	userID := uuid.New()
	tenantID := uuid.New()

	t.Run("Success - Decrement", func(t *testing.T) {
		// Arrange
		reqBody := models.AdjustStockRequest{QuantityChange: -4}
		reqBodyBytes, _ := json.Marshal(reqBody)

		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/products/101/stock/adjust", bytes.NewReader(reqBodyBytes), userID, &tenantID, map[string]string{"id": "101"})
		req.Header.Set("Content-Type", "application/json")

		expectedProduct := &models.Product{ID: 101, NameEn: "Laptop", StockQuantity: 6}

		mockProductService.On("AdjustStock", mock.Anything, int64(101), &reqBody).Return(expectedProduct, nil).Once()

		// Act
		handler := productHandler.AdjustStock()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var respProduct models.Product
		decodeData(t, rr.Body.Bytes(), &respProduct)
		assert.Equal(t, 6, respProduct.StockQuantity)

		mockProductService.AssertExpectations(t)
	})

	t.Run("Failure - Insufficient Stock", func(t *testing.T) {
		// Arrange
		reqBody := models.AdjustStockRequest{QuantityChange: -100}
		reqBodyBytes, _ := json.Marshal(reqBody)

		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/products/101/stock/adjust", bytes.NewReader(reqBodyBytes), userID, &tenantID, map[string]string{"id": "101"})
		req.Header.Set("Content-Type", "application/json")

		mockProductService.On("AdjustStock", mock.Anything, int64(101), &reqBody).Return(nil, appErrors.BusinessRuleError("Insufficient stock")).Once()

		// Act
		handler := productHandler.AdjustStock()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), appErrors.ErrCodeBusinessRule)
		mockProductService.AssertExpectations(t)
	})
}

func TestBulkUpdateStock(t *testing.T) {
	mockProductService := new(mocks.ProductService)
	productHandler := handlers.NewProductHandler(mockProductService)
	userID := uuid.New()
	tenantID := uuid.New()

	t.Run("Success - No Content", func(t *testing.T) {
		// Arrange
		reqBody := models.BulkUpdateStockRequest{
			Items: []models.BulkStockItem{
				{ProductID: 101, StockQuantity: 5},
				{ProductID: 102, StockQuantity: 0},
			},
		}
		reqBodyBytes, _ := json.Marshal(reqBody)

		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/products/stock/bulk", bytes.NewReader(reqBodyBytes), userID, &tenantID, nil)
		req.Header.Set("Content-Type", "application/json")

		mockProductService.On("BulkUpdateStock", mock.Anything, &reqBody).Return(nil).Once()

		// Act
		handler := productHandler.BulkUpdateStock()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusNoContent, rr.Code)
		mockProductService.AssertExpectations(t)
	})

	t.Run("Invalid Input - Empty Items", func(t *testing.T) {
		// Arrange
		mockProductService := new(mocks.ProductService)
		productHandler := handlers.NewProductHandler(mockProductService)
		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/products/stock/bulk", bytes.NewReader([]byte(`{"items":[]}`)), userID, &tenantID, nil)
		req.Header.Set("Content-Type", "application/json")

		// Act
		handler := productHandler.BulkUpdateStock()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockProductService.AssertNotCalled(t, "BulkUpdateStock", mock.Anything, mock.Anything)
	})
}

func TestCheckStock(t *testing.T) {
	mockProductService := new(mocks.ProductService)
	productHandler := handlers.NewProductHandler(mockProductService)
	userID := uuid.New()
	tenantID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		reqBody := models.CheckStockRequest{
			Items: []models.StockCheckItem{
				{ProductID: 101, Quantity: 2},
				{ProductID: 102, Quantity: 5},
			},
		}
		reqBodyBytes, _ := json.Marshal(reqBody)

		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/products/stock/check", bytes.NewReader(reqBodyBytes), userID, &tenantID, nil)
		req.Header.Set("Content-Type", "application/json")

		expectedResult := &models.StockCheckResult{
			AllAvailable: false,
			Items: []models.StockCheckItemResult{
				{ProductID: 101, RequestedQuantity: 2, AvailableQuantity: 10, IsAvailable: true},
				{ProductID: 102, RequestedQuantity: 5, AvailableQuantity: 3, IsAvailable: false, Message: "Insufficient stock"},
			},
		}

		mockProductService.On("CheckStock", mock.Anything, &reqBody).Return(expectedResult, nil).Once()

		// Act
		handler := productHandler.CheckStock()
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var result models.StockCheckResult
		decodeData(t, rr.Body.Bytes(), &result)
		assert.False(t, result.AllAvailable)
		assert.Len(t, result.Items, 2)

		mockProductService.AssertExpectations(t)
	})
}
