package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	appErrors "github.com/onlinestore/catalog-admin/internal/errors"
	"github.com/onlinestore/catalog-admin/internal/models"
	repository "github.com/onlinestore/catalog-admin/internal/repositories"
)

// ProductService is the application surface for the Product aggregate,
// implemented plain here and wrapped by the cached decorator in
// cached_product.go.
type ProductService interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error)
	GetProductsByCategory(ctx context.Context, categoryID int, onlyPublished bool) ([]*models.Product, error)
	GetPublishedProducts(ctx context.Context, categoryID *int) ([]*models.Product, error)
	GetLowStockProducts(ctx context.Context, threshold *int) ([]*models.Product, error)
	GetOutOfStockProducts(ctx context.Context) ([]*models.Product, error)
	CheckStock(ctx context.Context, req *models.CheckStockRequest) (*models.StockCheckResult, error)
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	PublishProduct(ctx context.Context, id int64) (*models.Product, error)
	UnpublishProduct(ctx context.Context, id int64) (*models.Product, error)
	UpdateStock(ctx context.Context, id int64, req *models.UpdateStockRequest) (*models.Product, error)
	AdjustStock(ctx context.Context, id int64, req *models.AdjustStockRequest) (*models.Product, error)
	BulkUpdateStock(ctx context.Context, req *models.BulkUpdateStockRequest) error
}

const maxBulkStockItems = 1000

type productService struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

func NewProductService(repo repository.ProductRepository, categoryRepo repository.CategoryRepository) ProductService {
	return &productService{repo: repo, categoryRepo: categoryRepo}
}

func (s *productService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to fetch product").WithError(err)
	}

	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error) {

	products, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to fetch products").WithError(err)
	}

	return products, total, nil
}

func (s *productService) GetProductsByCategory(ctx context.Context, categoryID int, onlyPublished bool) ([]*models.Product, error) {

	products, err := s.repo.GetProductsByCategory(ctx, categoryID, onlyPublished)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch products by category").WithError(err)
	}

	return products, nil
}

func (s *productService) GetPublishedProducts(ctx context.Context, categoryID *int) ([]*models.Product, error) {

	products, err := s.repo.GetPublishedProducts(ctx, categoryID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch published products").WithError(err)
	}

	return products, nil
}

func (s *productService) GetLowStockProducts(ctx context.Context, threshold *int) ([]*models.Product, error) {

	stockThreshold := models.DefaultLowStockThreshold
	if threshold != nil {
		if *threshold <= 0 {
			return nil, appErrors.ValidationError("Low stock threshold must be positive")
		}

		stockThreshold = *threshold
	}

	products, err := s.repo.GetLowStockProducts(ctx, stockThreshold)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch low stock products").WithError(err)
	}

	return products, nil
}

func (s *productService) GetOutOfStockProducts(ctx context.Context) ([]*models.Product, error) {

	products, err := s.repo.GetOutOfStockProducts(ctx)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch out of stock products").WithError(err)
	}

	return products, nil
}

func (s *productService) CheckStock(ctx context.Context, req *models.CheckStockRequest) (*models.StockCheckResult, error) {

	ids := make([]int64, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch products for stock check").WithError(err)
	}

	byID := make(map[int64]*models.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	result := &models.StockCheckResult{AllAvailable: true}

	for _, item := range req.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			result.AllAvailable = false
			result.Items = append(result.Items, models.StockCheckItemResult{
				ProductID:         item.ProductID,
				ProductName:       "Unknown",
				SKU:               "N/A",
				RequestedQuantity: item.Quantity,
				IsAvailable:       false,
				Message:           "Product not found",
			})

			continue
		}

		available := product.StockQuantity >= item.Quantity
		if !available {
			result.AllAvailable = false
		}

		itemResult := models.StockCheckItemResult{
			ProductID:         product.ID,
			ProductName:       product.NameEn,
			SKU:               product.SKU,
			RequestedQuantity: item.Quantity,
			AvailableQuantity: product.StockQuantity,
			IsAvailable:       available,
		}

		if !available {
			itemResult.Message = fmt.Sprintf("Insufficient stock. Available: %d", product.StockQuantity)
		}

		result.Items = append(result.Items, itemResult)
	}

	return result, nil
}

func (s *productService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {

	if req.IsPublished && !req.IsActive {
		return nil, appErrors.BusinessRuleError("A product must be active to be published")
	}

	if err := s.validateCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	sku := strings.ToUpper(req.SKU)

	if err := s.validateSKU(ctx, sku, nil); err != nil {
		return nil, err
	}

	product := &models.Product{
		CategoryID:    req.CategoryID,
		NameEn:        req.NameEn,
		NameAr:        req.NameAr,
		DescriptionEn: req.DescriptionEn,
		DescriptionAr: req.DescriptionAr,
		SKU:           sku,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		IsActive:      req.IsActive,
		IsPublished:   req.IsPublished,
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		if appErr, ok := appErrors.IsAppError(err); ok {
			return nil, appErr
		}

		return nil, appErrors.DatabaseError("Failed to create product").WithError(err)
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error) {

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil && *req.CategoryID != product.CategoryID {
		if err := s.validateCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}

		product.CategoryID = *req.CategoryID
	}

	if req.SKU != nil {
		sku := strings.ToUpper(*req.SKU)

		if sku != product.SKU {
			if err := s.validateSKU(ctx, sku, &id); err != nil {
				return nil, err
			}

			product.SKU = sku
		}
	}

	if req.NameEn != nil {
		product.NameEn = *req.NameEn
	}
	if req.NameAr != nil {
		product.NameAr = *req.NameAr
	}
	if req.DescriptionEn != nil {
		product.DescriptionEn = *req.DescriptionEn
	}
	if req.DescriptionAr != nil {
		product.DescriptionAr = *req.DescriptionAr
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.IsPublished != nil {
		product.IsPublished = *req.IsPublished
	}

	if product.IsPublished && !product.IsActive {
		if req.IsPublished != nil && *req.IsPublished {
			return nil, appErrors.BusinessRuleError("A product must be active to be published")
		}

		// Deactivating an active published product implicitly unpublishes it.
		product.IsPublished = false
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		if appErr, ok := appErrors.IsAppError(err); ok {
			return nil, appErr
		}

		return nil, appErrors.DatabaseError("Failed to update product").WithError(err)
	}

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id int64) error {

	if err := s.repo.SoftDeleteProduct(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NotFoundError("Product not found").WithError(err)
		}

		return appErrors.DatabaseError("Failed to delete product").WithError(err)
	}

	return nil
}

func (s *productService) PublishProduct(ctx context.Context, id int64) (*models.Product, error) {

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if !product.IsActive {
		return nil, appErrors.BusinessRuleError("A product must be active to be published")
	}

	product.IsPublished = true

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, appErrors.DatabaseError("Failed to publish product").WithError(err)
	}

	return product, nil
}

func (s *productService) UnpublishProduct(ctx context.Context, id int64) (*models.Product, error) {

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	product.IsPublished = false

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, appErrors.DatabaseError("Failed to unpublish product").WithError(err)
	}

	return product, nil
}

func (s *productService) UpdateStock(ctx context.Context, id int64, req *models.UpdateStockRequest) (*models.Product, error) {

	if req.StockQuantity < 0 {
		return nil, appErrors.ValidationError("Stock quantity must be non-negative")
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	product.StockQuantity = req.StockQuantity

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, appErrors.DatabaseError("Failed to update stock").WithError(err)
	}

	return product, nil
}

func (s *productService) AdjustStock(ctx context.Context, id int64, req *models.AdjustStockRequest) (*models.Product, error) {

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	newQuantity := product.StockQuantity + req.QuantityChange
	if newQuantity < 0 {
		return nil, appErrors.BusinessRuleError(
			fmt.Sprintf("Insufficient stock: %d available, adjustment of %d requested", product.StockQuantity, req.QuantityChange))
	}

	product.StockQuantity = newQuantity

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, appErrors.DatabaseError("Failed to adjust stock").WithError(err)
	}

	return product, nil
}

func (s *productService) BulkUpdateStock(ctx context.Context, req *models.BulkUpdateStockRequest) error {

	if len(req.Items) == 0 {
		return appErrors.ValidationError("Bulk stock update requires at least one item")
	}

	if len(req.Items) > maxBulkStockItems {
		return appErrors.ValidationError(fmt.Sprintf("Bulk stock update is limited to %d items", maxBulkStockItems))
	}

	seen := make(map[int64]bool, len(req.Items))

	for _, item := range req.Items {
		if item.StockQuantity < 0 {
			return appErrors.ValidationError(fmt.Sprintf("Negative stock quantity for product %d", item.ProductID))
		}

		if seen[item.ProductID] {
			return appErrors.ValidationError(fmt.Sprintf("Duplicate product id %d in bulk stock update", item.ProductID))
		}

		seen[item.ProductID] = true
	}

	if err := s.repo.BulkUpdateStock(ctx, req.Items); err != nil {
		if appErr, ok := appErrors.IsAppError(err); ok {
			return appErr
		}

		return appErrors.DatabaseError("Failed to bulk update stock").WithError(err)
	}

	return nil
}

func (s *productService) validateCategory(ctx context.Context, categoryID int) error {

	exists, err := s.categoryRepo.ActiveCategoryExists(ctx, categoryID)
	if err != nil {
		return appErrors.DatabaseError("Failed to check category").WithError(err)
	}

	if !exists {
		return appErrors.BusinessRuleError("Category does not exist or is not active")
	}

	return nil
}

func (s *productService) validateSKU(ctx context.Context, sku string, excludeID *int64) error {

	unique, err := s.repo.IsSKUUnique(ctx, sku, excludeID)
	if err != nil {
		return appErrors.DatabaseError("Failed to check SKU").WithError(err)
	}

	if !unique {
		return appErrors.DuplicateEntryError("Product SKU already exists")
	}

	return nil
}
