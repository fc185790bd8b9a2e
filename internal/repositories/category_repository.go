package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	appErrors "github.com/onlinestore/catalog-admin/internal/errors"
	"github.com/onlinestore/catalog-admin/internal/models"
	"github.com/onlinestore/catalog-admin/internal/tenant"
	"github.com/onlinestore/catalog-admin/internal/utils"
)

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategoryByID(ctx context.Context, id int) (*models.Category, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	SoftDeleteCategory(ctx context.Context, id int) error
	ListCategories(ctx context.Context, filter models.CategoryFilter) ([]*models.Category, int, error)
	GetActiveCategories(ctx context.Context) ([]*models.Category, error)
	IsNameUnique(ctx context.Context, nameEn string, excludeID *int) (bool, error)
	ActiveCategoryExists(ctx context.Context, id int) (bool, error)
	HasProducts(ctx context.Context, categoryID int) (bool, error)
	ProductCounts(ctx context.Context) (map[int]int, error)
	NextCategoryID(ctx context.Context) (int, error)
}

type categoryRepository struct {
	DB *sql.DB
}

func NewCategoryRepo(db *sql.DB) CategoryRepository {
	return &categoryRepository{DB: db}
}

const serializationFailureCode = "40001"
const uniqueViolationCode = "23505"

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && pqErr.Code == serializationFailureCode
}

func isUniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error

	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
		return pqErr.Constraint, true
	}

	return "", false
}

func (r *categoryRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `INSERT INTO categories (id, name_en, name_ar, description_en, description_ar, display_order, is_active, tenant_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING created_at, updated_at
	`

	err := r.DB.QueryRowContext(dbCtx, query, category.ID, category.NameEn, category.NameAr,
		category.DescriptionEn, category.DescriptionAr, category.DisplayOrder, category.IsActive,
		tenant.FromContext(ctx)).Scan(&category.CreatedAt, &category.UpdatedAt)

	if constraint, ok := isUniqueViolation(err); ok {
		// A primary-key collision means another writer won the allocation
		// race for this id. That is a retryable conflict, not bad input.
		if constraint == "categories_pkey" {
			return appErrors.SerializationConflictError("Category id was allocated concurrently").WithError(err)
		}

		return appErrors.DuplicateEntryError("Category name already exists").WithError(err)
	}

	return err
}

func (r *categoryRepository) GetCategoryByID(ctx context.Context, id int) (*models.Category, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	category := &models.Category{}

	query := `
		SELECT id, name_en, name_ar, description_en, description_ar, display_order, is_active, tenant_id, created_at, updated_at
		FROM categories
		WHERE id = $1 AND tenant_id IS NOT DISTINCT FROM $2 AND is_deleted = FALSE`

	err := r.DB.QueryRowContext(dbCtx, query, id, tenant.FromContext(ctx)).Scan(
		&category.ID, &category.NameEn, &category.NameAr, &category.DescriptionEn, &category.DescriptionAr,
		&category.DisplayOrder, &category.IsActive, &category.TenantID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("querying database: %w", err)
	}

	return category, nil
}

func (r *categoryRepository) UpdateCategory(ctx context.Context, category *models.Category) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE categories SET name_en = $1, name_ar = $2, description_en = $3, description_ar = $4,
			display_order = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7 AND tenant_id IS NOT DISTINCT FROM $8 AND is_deleted = FALSE
		RETURNING updated_at
	`

	err := r.DB.QueryRowContext(dbCtx, query, category.NameEn, category.NameAr, category.DescriptionEn,
		category.DescriptionAr, category.DisplayOrder, category.IsActive, category.ID,
		tenant.FromContext(ctx)).Scan(&category.UpdatedAt)

	if _, ok := isUniqueViolation(err); ok {
		return appErrors.DuplicateEntryError("Category name already exists").WithError(err)
	}

	return err
}

func (r *categoryRepository) SoftDeleteCategory(ctx context.Context, id int) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE categories SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND tenant_id IS NOT DISTINCT FROM $2 AND is_deleted = FALSE`

	result, err := r.DB.ExecContext(dbCtx, query, id, tenant.FromContext(ctx))
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *categoryRepository) ListCategories(ctx context.Context, filter models.CategoryFilter) ([]*models.Category, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tenantID := tenant.FromContext(ctx)

	var total int

	countQuery := `
		SELECT COUNT(*) FROM categories
		WHERE tenant_id IS NOT DISTINCT FROM $1 AND is_deleted = FALSE
		  AND ($2::boolean IS NULL OR is_active = $2)
		  AND ($3::text IS NULL OR name_en ILIKE '%' || $3 || '%' OR name_ar ILIKE '%' || $3 || '%')`

	err := r.DB.QueryRowContext(dbCtx, countQuery, tenantID, filter.IsActive, nullableString(filter.SearchTerm)).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}

	size := filter.PageSize
	if size < 1 {
		size = 10
	}

	offset := (page - 1) * size

	query := `
		SELECT id, name_en, name_ar, description_en, description_ar, display_order, is_active, tenant_id, created_at, updated_at
		FROM categories
		WHERE tenant_id IS NOT DISTINCT FROM $1 AND is_deleted = FALSE
		  AND ($2::boolean IS NULL OR is_active = $2)
		  AND ($3::text IS NULL OR name_en ILIKE '%' || $3 || '%' OR name_ar ILIKE '%' || $3 || '%')
		ORDER BY display_order, name_en
		LIMIT $4 OFFSET $5
	`

	rows, err := r.DB.QueryContext(dbCtx, query, tenantID, filter.IsActive, nullableString(filter.SearchTerm), size, offset)
	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	var categories []*models.Category

	for rows.Next() {
		category := &models.Category{}

		err := rows.Scan(&category.ID, &category.NameEn, &category.NameAr, &category.DescriptionEn,
			&category.DescriptionAr, &category.DisplayOrder, &category.IsActive, &category.TenantID,
			&category.CreatedAt, &category.UpdatedAt)
		if err != nil {
			return nil, 0, err
		}

		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return categories, total, nil
}

func (r *categoryRepository) GetActiveCategories(ctx context.Context) ([]*models.Category, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, name_en, name_ar, description_en, description_ar, display_order, is_active, tenant_id, created_at, updated_at
		FROM categories
		WHERE tenant_id IS NOT DISTINCT FROM $1 AND is_deleted = FALSE AND is_active = TRUE
		ORDER BY display_order, name_en
	`

	rows, err := r.DB.QueryContext(dbCtx, query, tenant.FromContext(ctx))
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var categories []*models.Category

	for rows.Next() {
		category := &models.Category{}

		err := rows.Scan(&category.ID, &category.NameEn, &category.NameAr, &category.DescriptionEn,
			&category.DescriptionAr, &category.DisplayOrder, &category.IsActive, &category.TenantID,
			&category.CreatedAt, &category.UpdatedAt)
		if err != nil {
			return nil, err
		}

		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *categoryRepository) IsNameUnique(ctx context.Context, nameEn string, excludeID *int) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT NOT EXISTS (
			SELECT 1 FROM categories
			WHERE name_en = $1 AND tenant_id IS NOT DISTINCT FROM $2 AND is_deleted = FALSE
			  AND ($3::int IS NULL OR id <> $3)
		)`

	var unique bool

	err := r.DB.QueryRowContext(dbCtx, query, nameEn, tenant.FromContext(ctx), excludeID).Scan(&unique)
	if err != nil {
		return false, err
	}

	return unique, nil
}

func (r *categoryRepository) ActiveCategoryExists(ctx context.Context, id int) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT EXISTS (
			SELECT 1 FROM categories
			WHERE id = $1 AND tenant_id IS NOT DISTINCT FROM $2 AND is_deleted = FALSE AND is_active = TRUE
		)`

	var exists bool

	err := r.DB.QueryRowContext(dbCtx, query, id, tenant.FromContext(ctx)).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *categoryRepository) HasProducts(ctx context.Context, categoryID int) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT EXISTS (
			SELECT 1 FROM products
			WHERE category_id = $1 AND tenant_id IS NOT DISTINCT FROM $2 AND is_deleted = FALSE
		)`

	var exists bool

	err := r.DB.QueryRowContext(dbCtx, query, categoryID, tenant.FromContext(ctx)).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *categoryRepository) ProductCounts(ctx context.Context) (map[int]int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT category_id, COUNT(*)
		FROM products
		WHERE tenant_id IS NOT DISTINCT FROM $1 AND is_deleted = FALSE
		GROUP BY category_id
	`

	rows, err := r.DB.QueryContext(dbCtx, query, tenant.FromContext(ctx))
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	counts := make(map[int]int)

	for rows.Next() {
		var categoryID, count int

		if err := rows.Scan(&categoryID, &count); err != nil {
			return nil, err
		}

		counts[categoryID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// NextCategoryID computes the smallest positive id not yet taken by any
// category row of the current tenant, soft-deleted rows included: a deleted
// id stays reserved forever. Category ids are assigned by the application
// rather than a sequence, so the read runs under serializable isolation to
// keep two concurrent creations from computing the same candidate. When the
// transaction loses that race the caller gets a retryable conflict and must
// re-run the whole allocate+insert sequence.
func (r *categoryRepository) NextCategoryID(ctx context.Context) (int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, &sql.TxOptions{Isolation: sql.LevelSerializable, ReadOnly: true})
	if err != nil {
		return 0, fmt.Errorf("failed to begin allocation transaction: %w", err)
	}

	ids, err := r.readAllIDs(dbCtx, tx)
	if err != nil {
		_ = tx.Rollback()

		if isSerializationFailure(err) {
			return 0, appErrors.SerializationConflictError("Category id allocation conflicted").WithError(err)
		}

		return 0, err
	}

	next := smallestUnusedID(ids)

	if err := tx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return 0, appErrors.SerializationConflictError("Category id allocation conflicted").WithError(err)
		}

		return 0, fmt.Errorf("failed to commit allocation transaction: %w", err)
	}

	return next, nil
}

func (r *categoryRepository) readAllIDs(ctx context.Context, tx *sql.Tx) ([]int, error) {

	// No is_deleted filter here on purpose: soft-deleted ids are reserved.
	query := `
		SELECT id FROM categories
		WHERE tenant_id IS NOT DISTINCT FROM $1
		ORDER BY id
	`

	rows, err := tx.QueryContext(ctx, query, tenant.FromContext(ctx))
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var ids []int

	for rows.Next() {
		var id int

		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

// smallestUnusedID scans the ascending id list from 1 and stops at the first
// gap. When the list is gapless the candidate lands one past the maximum.
func smallestUnusedID(ids []int) int {
	if len(ids) == 0 {
		return 1
	}

	candidate := 1
	gapFound := false

	for _, id := range ids {
		if id == candidate {
			candidate++
		} else if id > candidate {
			gapFound = true

			break
		}
	}

	// Guard against malformed id sets (non-positive or duplicate ids): a
	// candidate at or below the maximum that is not a real gap would reuse
	// a taken id.
	if !gapFound && candidate <= ids[len(ids)-1] {
		candidate = ids[len(ids)-1] + 1
	}

	return candidate
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
