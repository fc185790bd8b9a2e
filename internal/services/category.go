package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	appErrors "github.com/onlinestore/catalog-admin/internal/errors"
	"github.com/onlinestore/catalog-admin/internal/models"
	repository "github.com/onlinestore/catalog-admin/internal/repositories"
)

// CategoryService is the application surface for the Category aggregate. The
// plain implementation below talks straight to the repository; the cached
// decorator in cached_category.go wraps it and is a drop-in substitute.
type CategoryService interface {
	GetCategory(ctx context.Context, id int) (*models.Category, error)
	ListCategories(ctx context.Context, filter models.CategoryFilter) ([]*models.Category, int, error)
	GetActiveCategories(ctx context.Context) ([]*models.Category, error)
	CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, id int, req *models.UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int) error
	CanDeleteCategory(ctx context.Context, id int) (bool, error)
	ActivateCategory(ctx context.Context, id int) (*models.Category, error)
	DeactivateCategory(ctx context.Context, id int) (*models.Category, error)
	ChangeDisplayOrder(ctx context.Context, id, newOrder int) (*models.Category, error)
}

// maxIDAllocationAttempts bounds the allocate+insert retry loop. Each retry
// recomputes the candidate id from scratch.
const maxIDAllocationAttempts = 3

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) GetCategory(ctx context.Context, id int) (*models.Category, error) {

	category, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Category not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to fetch category").WithError(err)
	}

	return category, nil
}

func (s *categoryService) ListCategories(ctx context.Context, filter models.CategoryFilter) ([]*models.Category, int, error) {

	categories, total, err := s.repo.ListCategories(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to fetch categories").WithError(err)
	}

	// Product counts are an enrichment: a failure degrades to zero counts
	// rather than failing the listing.
	counts, err := s.repo.ProductCounts(ctx)
	if err != nil {
		slog.Warn("Failed to fetch product counts for categories", slog.String("error", err.Error()))

		counts = map[int]int{}
	}

	for _, category := range categories {
		category.ProductCount = counts[category.ID]
	}

	return categories, total, nil
}

func (s *categoryService) GetActiveCategories(ctx context.Context) ([]*models.Category, error) {

	categories, err := s.repo.GetActiveCategories(ctx)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch active categories").WithError(err)
	}

	return categories, nil
}

// CreateCategory allocates the smallest free id and inserts under it. When
// a concurrent creation wins the same id, the whole allocate+insert sequence
// is retried with a freshly computed candidate; a previously computed id is
// never reused across attempts.
func (s *categoryService) CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {

	unique, err := s.repo.IsNameUnique(ctx, req.NameEn, nil)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to check category name").WithError(err)
	}

	if !unique {
		return nil, appErrors.DuplicateEntryError("Category name already exists")
	}

	var lastErr error

	for attempt := 0; attempt < maxIDAllocationAttempts; attempt++ {

		id, err := s.repo.NextCategoryID(ctx)
		if err != nil {
			if appErrors.IsRetryable(err) {
				lastErr = err

				continue
			}

			return nil, appErrors.DatabaseError("Failed to allocate category id").WithError(err)
		}

		category := &models.Category{
			ID:            id,
			NameEn:        req.NameEn,
			NameAr:        req.NameAr,
			DescriptionEn: req.DescriptionEn,
			DescriptionAr: req.DescriptionAr,
			DisplayOrder:  req.DisplayOrder,
			IsActive:      req.IsActive,
		}

		err = s.repo.CreateCategory(ctx, category)
		if err == nil {
			return category, nil
		}

		if appErrors.IsRetryable(err) {
			lastErr = err

			continue
		}

		if appErr, ok := appErrors.IsAppError(err); ok {
			return nil, appErr
		}

		return nil, appErrors.DatabaseError("Failed to create category").WithError(err)
	}

	return nil, appErrors.SerializationConflictError("Category creation kept conflicting, try again").WithError(lastErr)
}

func (s *categoryService) UpdateCategory(ctx context.Context, id int, req *models.UpdateCategoryRequest) (*models.Category, error) {

	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.NameEn != nil && *req.NameEn != category.NameEn {
		unique, err := s.repo.IsNameUnique(ctx, *req.NameEn, &id)
		if err != nil {
			return nil, appErrors.DatabaseError("Failed to check category name").WithError(err)
		}

		if !unique {
			return nil, appErrors.DuplicateEntryError("Category name already exists")
		}

		category.NameEn = *req.NameEn
	}

	if req.NameAr != nil {
		category.NameAr = *req.NameAr
	}
	if req.DescriptionEn != nil {
		category.DescriptionEn = *req.DescriptionEn
	}
	if req.DescriptionAr != nil {
		category.DescriptionAr = *req.DescriptionAr
	}
	if req.DisplayOrder != nil {
		category.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		if appErr, ok := appErrors.IsAppError(err); ok {
			return nil, appErr
		}

		return nil, appErrors.DatabaseError("Failed to update category").WithError(err)
	}

	return category, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id int) error {

	canDelete, err := s.CanDeleteCategory(ctx, id)
	if err != nil {
		return err
	}

	if !canDelete {
		return appErrors.BusinessRuleError("Category still has products and cannot be deleted")
	}

	if err := s.repo.SoftDeleteCategory(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NotFoundError("Category not found").WithError(err)
		}

		return appErrors.DatabaseError("Failed to delete category").WithError(err)
	}

	return nil
}

func (s *categoryService) CanDeleteCategory(ctx context.Context, id int) (bool, error) {

	hasProducts, err := s.repo.HasProducts(ctx, id)
	if err != nil {
		return false, appErrors.DatabaseError("Failed to check category products").WithError(err)
	}

	return !hasProducts, nil
}

func (s *categoryService) ActivateCategory(ctx context.Context, id int) (*models.Category, error) {
	return s.setActive(ctx, id, true)
}

func (s *categoryService) DeactivateCategory(ctx context.Context, id int) (*models.Category, error) {
	return s.setActive(ctx, id, false)
}

func (s *categoryService) setActive(ctx context.Context, id int, active bool) (*models.Category, error) {

	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	category.IsActive = active

	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, appErrors.DatabaseError("Failed to update category").WithError(err)
	}

	return category, nil
}

func (s *categoryService) ChangeDisplayOrder(ctx context.Context, id, newOrder int) (*models.Category, error) {

	if newOrder < 0 {
		return nil, appErrors.ValidationError("Display order must be non-negative")
	}

	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	category.DisplayOrder = newOrder

	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, appErrors.DatabaseError("Failed to update category").WithError(err)
	}

	return category, nil
}
