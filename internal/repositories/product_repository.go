package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	appErrors "github.com/onlinestore/catalog-admin/internal/errors"
	"github.com/onlinestore/catalog-admin/internal/models"
	"github.com/onlinestore/catalog-admin/internal/tenant"
	"github.com/onlinestore/catalog-admin/internal/utils"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	SoftDeleteProduct(ctx context.Context, id int64) error
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error)
	GetProductsByCategory(ctx context.Context, categoryID int, onlyPublished bool) ([]*models.Product, error)
	GetPublishedProducts(ctx context.Context, categoryID *int) ([]*models.Product, error)
	GetLowStockProducts(ctx context.Context, threshold int) ([]*models.Product, error)
	GetOutOfStockProducts(ctx context.Context) ([]*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) ([]*models.Product, error)
	BulkUpdateStock(ctx context.Context, items []models.BulkStockItem) error
	IsSKUUnique(ctx context.Context, sku string, excludeID *int64) (bool, error)
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

const productColumns = `p.id, p.category_id, p.name_en, p.name_ar, p.description_en, p.description_ar,
		p.sku, p.price, p.stock_quantity, p.is_active, p.is_published, p.tenant_id, p.created_at, p.updated_at`

func scanProduct(scanner interface{ Scan(...any) error }) (*models.Product, error) {
	product := &models.Product{}

	err := scanner.Scan(&product.ID, &product.CategoryID, &product.NameEn, &product.NameAr,
		&product.DescriptionEn, &product.DescriptionAr, &product.SKU, &product.Price,
		&product.StockQuantity, &product.IsActive, &product.IsPublished, &product.TenantID,
		&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `INSERT INTO products (category_id, name_en, name_ar, description_en, description_ar, sku, price, stock_quantity, is_active, is_published, tenant_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING id, created_at, updated_at
	`

	err := r.DB.QueryRowContext(dbCtx, query, product.CategoryID, product.NameEn, product.NameAr,
		product.DescriptionEn, product.DescriptionAr, product.SKU, product.Price, product.StockQuantity,
		product.IsActive, product.IsPublished, tenant.FromContext(ctx)).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)

	if _, ok := isUniqueViolation(err); ok {
		return appErrors.DuplicateEntryError("Product SKU already exists").WithError(err)
	}

	return err
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + productColumns + `,
		       c.id, c.name_en, c.name_ar, c.is_active
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id AND c.is_deleted = FALSE
		WHERE p.id = $1 AND p.tenant_id IS NOT DISTINCT FROM $2 AND p.is_deleted = FALSE`

	product := &models.Product{}

	var (
		categoryID       sql.NullInt64
		categoryNameEn   sql.NullString
		categoryNameAr   sql.NullString
		categoryIsActive sql.NullBool
	)

	err := r.DB.QueryRowContext(dbCtx, query, id, tenant.FromContext(ctx)).Scan(
		&product.ID, &product.CategoryID, &product.NameEn, &product.NameAr,
		&product.DescriptionEn, &product.DescriptionAr, &product.SKU, &product.Price,
		&product.StockQuantity, &product.IsActive, &product.IsPublished, &product.TenantID,
		&product.CreatedAt, &product.UpdatedAt,
		&categoryID, &categoryNameEn, &categoryNameAr, &categoryIsActive)
	if err != nil {
		return nil, fmt.Errorf("querying database: %w", err)
	}

	if categoryID.Valid {
		product.Category = &models.Category{
			ID:       int(categoryID.Int64),
			NameEn:   categoryNameEn.String,
			NameAr:   categoryNameAr.String,
			IsActive: categoryIsActive.Bool,
		}
	}

	return product, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products SET category_id = $1, name_en = $2, name_ar = $3, description_en = $4, description_ar = $5,
			sku = $6, price = $7, stock_quantity = $8, is_active = $9, is_published = $10, updated_at = NOW()
		WHERE id = $11 AND tenant_id IS NOT DISTINCT FROM $12 AND is_deleted = FALSE
		RETURNING updated_at
	`

	err := r.DB.QueryRowContext(dbCtx, query, product.CategoryID, product.NameEn, product.NameAr,
		product.DescriptionEn, product.DescriptionAr, product.SKU, product.Price, product.StockQuantity,
		product.IsActive, product.IsPublished, product.ID, tenant.FromContext(ctx)).Scan(&product.UpdatedAt)

	if _, ok := isUniqueViolation(err); ok {
		return appErrors.DuplicateEntryError("Product SKU already exists").WithError(err)
	}

	return err
}

func (r *productRepository) SoftDeleteProduct(ctx context.Context, id int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products SET is_deleted = TRUE, updated_at = NOW()
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

func (r *productRepository) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	where, args := buildProductFilter(ctx, filter)

	var total int

	countQuery := `SELECT COUNT(*) FROM products p ` + where

	err := r.DB.QueryRowContext(dbCtx, countQuery, args...).Scan(&total)
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

	query := fmt.Sprintf(`SELECT `+productColumns+` FROM products p %s ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)

	rows, err := r.DB.QueryContext(dbCtx, query, append(args, size, offset)...)
	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// buildProductFilter assembles the WHERE clause shared by the count and page
// queries. Positional parameters are appended in a fixed order so the two
// queries stay in sync.
func buildProductFilter(ctx context.Context, filter models.ProductFilter) (string, []any) {
	clauses := []string{"p.tenant_id IS NOT DISTINCT FROM $1", "p.is_deleted = FALSE"}
	args := []any{tenant.FromContext(ctx)}

	addClause := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.CategoryID != nil {
		addClause("p.category_id = $%d", *filter.CategoryID)
	}

	if filter.IsActive != nil {
		addClause("p.is_active = $%d", *filter.IsActive)
	}

	if filter.IsPublished != nil {
		addClause("p.is_published = $%d", *filter.IsPublished)
	}

	if filter.SearchTerm != "" {
		addClause("(p.name_en ILIKE '%%' || $%[1]d || '%%' OR p.name_ar ILIKE '%%' || $%[1]d || '%%' OR p.sku ILIKE '%%' || $%[1]d || '%%')", filter.SearchTerm)
	}

	if filter.MinPrice != nil {
		addClause("p.price >= $%d", *filter.MinPrice)
	}

	if filter.MaxPrice != nil {
		addClause("p.price <= $%d", *filter.MaxPrice)
	}

	if filter.IsLowStock != nil && *filter.IsLowStock {
		addClause("p.stock_quantity > 0 AND p.stock_quantity <= $%d", models.DefaultLowStockThreshold)
	}

	if filter.IsOutOfStock != nil && *filter.IsOutOfStock {
		clauses = append(clauses, "p.stock_quantity = 0")
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func collectProducts(rows *sql.Rows) ([]*models.Product, error) {
	var products []*models.Product

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepository) GetProductsByCategory(ctx context.Context, categoryID int, onlyPublished bool) ([]*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.category_id = $1 AND p.tenant_id IS NOT DISTINCT FROM $2 AND p.is_deleted = FALSE
		  AND ($3::boolean = FALSE OR p.is_published = TRUE)
		ORDER BY p.name_en
	`

	rows, err := r.DB.QueryContext(dbCtx, query, categoryID, tenant.FromContext(ctx), onlyPublished)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return collectProducts(rows)
}

func (r *productRepository) GetPublishedProducts(ctx context.Context, categoryID *int) ([]*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.tenant_id IS NOT DISTINCT FROM $1 AND p.is_deleted = FALSE
		  AND p.is_published = TRUE AND p.is_active = TRUE
		  AND ($2::int IS NULL OR p.category_id = $2)
		ORDER BY p.name_en
	`

	rows, err := r.DB.QueryContext(dbCtx, query, tenant.FromContext(ctx), categoryID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return collectProducts(rows)
}

func (r *productRepository) GetLowStockProducts(ctx context.Context, threshold int) ([]*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.tenant_id IS NOT DISTINCT FROM $1 AND p.is_deleted = FALSE
		  AND p.stock_quantity > 0 AND p.stock_quantity <= $2
		ORDER BY p.stock_quantity, p.name_en
	`

	rows, err := r.DB.QueryContext(dbCtx, query, tenant.FromContext(ctx), threshold)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return collectProducts(rows)
}

func (r *productRepository) GetOutOfStockProducts(ctx context.Context) ([]*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.tenant_id IS NOT DISTINCT FROM $1 AND p.is_deleted = FALSE AND p.stock_quantity = 0
		ORDER BY p.name_en
	`

	rows, err := r.DB.QueryContext(dbCtx, query, tenant.FromContext(ctx))
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return collectProducts(rows)
}

func (r *productRepository) GetProductsByIDs(ctx context.Context, ids []int64) ([]*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.id = ANY($1) AND p.tenant_id IS NOT DISTINCT FROM $2 AND p.is_deleted = FALSE
	`

	rows, err := r.DB.QueryContext(dbCtx, query, pq.Array(ids), tenant.FromContext(ctx))
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return collectProducts(rows)
}

// BulkUpdateStock applies every item inside one transaction: either all
// quantities change or none do. A missing product aborts the batch.
func (r *productRepository) BulkUpdateStock(ctx context.Context, items []models.BulkStockItem) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin bulk stock transaction: %w", err)
	}

	query := `
		UPDATE products SET stock_quantity = $1, updated_at = NOW()
		WHERE id = $2 AND tenant_id IS NOT DISTINCT FROM $3 AND is_deleted = FALSE`

	tenantID := tenant.FromContext(ctx)

	for _, item := range items {
		result, err := tx.ExecContext(dbCtx, query, item.StockQuantity, item.ProductID, tenantID)
		if err != nil {
			_ = tx.Rollback()

			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			_ = tx.Rollback()

			return err
		}

		if rows == 0 {
			_ = tx.Rollback()

			return appErrors.NotFoundError(fmt.Sprintf("Product %d not found", item.ProductID))
		}
	}

	return tx.Commit()
}

func (r *productRepository) IsSKUUnique(ctx context.Context, sku string, excludeID *int64) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT NOT EXISTS (
			SELECT 1 FROM products
			WHERE sku = $1 AND tenant_id IS NOT DISTINCT FROM $2 AND is_deleted = FALSE
			  AND ($3::bigint IS NULL OR id <> $3)
		)`

	var unique bool

	err := r.DB.QueryRowContext(dbCtx, query, sku, tenant.FromContext(ctx), excludeID).Scan(&unique)
	if err != nil {
		return false, err
	}

	return unique, nil
}
