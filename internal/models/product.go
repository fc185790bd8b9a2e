package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultLowStockThreshold is the stock level at or below which a product is
// reported as low stock.
const DefaultLowStockThreshold = 10

type Product struct {
	ID            int64      `json:"id"`
	CategoryID    int        `json:"categoryId"`
	NameEn        string     `json:"nameEn"`
	NameAr        string     `json:"nameAr"`
	DescriptionEn string     `json:"descriptionEn,omitempty"`
	DescriptionAr string     `json:"descriptionAr,omitempty"`
	SKU           string     `json:"sku"`
	Price         float64    `json:"price"`
	StockQuantity int        `json:"stockQuantity"`
	IsActive      bool       `json:"isActive"`
	IsPublished   bool       `json:"isPublished"`
	IsDeleted     bool       `json:"-"`
	TenantID      *uuid.UUID `json:"tenantId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	Category      *Category  `json:"category,omitempty"`
}

func (p *Product) IsOutOfStock() bool {
	return p.StockQuantity == 0
}

func (p *Product) IsLowStock(threshold int) bool {
	return p.StockQuantity > 0 && p.StockQuantity <= threshold
}

type CreateProductRequest struct {
	CategoryID    int     `json:"categoryId" validate:"required,gt=0"`
	NameEn        string  `json:"nameEn" validate:"required,min=2,max=500"`
	NameAr        string  `json:"nameAr" validate:"required,min=2,max=500"`
	DescriptionEn string  `json:"descriptionEn,omitempty" validate:"omitempty,max=2000"`
	DescriptionAr string  `json:"descriptionAr,omitempty" validate:"omitempty,max=2000"`
	SKU           string  `json:"sku" validate:"required,min=3,max=50,sku"`
	Price         float64 `json:"price" validate:"gte=0"`
	StockQuantity int     `json:"stockQuantity" validate:"gte=0"`
	IsActive      bool    `json:"isActive"`
	IsPublished   bool    `json:"isPublished"`
}

type UpdateProductRequest struct {
	CategoryID    *int     `json:"categoryId,omitempty" validate:"omitempty,gt=0"`
	NameEn        *string  `json:"nameEn,omitempty" validate:"omitempty,min=2,max=500"`
	NameAr        *string  `json:"nameAr,omitempty" validate:"omitempty,min=2,max=500"`
	DescriptionEn *string  `json:"descriptionEn,omitempty" validate:"omitempty,max=2000"`
	DescriptionAr *string  `json:"descriptionAr,omitempty" validate:"omitempty,max=2000"`
	SKU           *string  `json:"sku,omitempty" validate:"omitempty,min=3,max=50,sku"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	StockQuantity *int     `json:"stockQuantity,omitempty" validate:"omitempty,gte=0"`
	IsActive      *bool    `json:"isActive,omitempty"`
	IsPublished   *bool    `json:"isPublished,omitempty"`
}

// ProductFilter narrows ListProducts. Filtered lists are served straight from
// the database; the combination space is unbounded so they are never cached.
type ProductFilter struct {
	CategoryID   *int     `json:"categoryId,omitempty"`
	IsActive     *bool    `json:"isActive,omitempty"`
	IsPublished  *bool    `json:"isPublished,omitempty"`
	SearchTerm   string   `json:"searchTerm,omitempty"`
	MinPrice     *float64 `json:"minPrice,omitempty"`
	MaxPrice     *float64 `json:"maxPrice,omitempty"`
	IsLowStock   *bool    `json:"isLowStock,omitempty"`
	IsOutOfStock *bool    `json:"isOutOfStock,omitempty"`
	Page         int      `json:"page" validate:"omitempty,gte=1"`
	PageSize     int      `json:"pageSize" validate:"omitempty,gte=1,lte=100"`
	Sorting      string   `json:"sorting,omitempty"`
}

type UpdateStockRequest struct {
	StockQuantity int `json:"stockQuantity" validate:"gte=0"`
}

type AdjustStockRequest struct {
	QuantityChange int `json:"quantityChange" validate:"required"`
}

type BulkStockItem struct {
	ProductID     int64 `json:"productId" validate:"required,gt=0"`
	StockQuantity int   `json:"stockQuantity" validate:"gte=0"`
}

type BulkUpdateStockRequest struct {
	Items []BulkStockItem `json:"items" validate:"required,min=1,max=1000,dive"`
}

type StockCheckItem struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type CheckStockRequest struct {
	Items []StockCheckItem `json:"items" validate:"required,min=1,dive"`
}

type StockCheckItemResult struct {
	ProductID         int64  `json:"productId"`
	ProductName       string `json:"productName"`
	SKU               string `json:"sku"`
	RequestedQuantity int    `json:"requestedQuantity"`
	AvailableQuantity int    `json:"availableQuantity"`
	IsAvailable       bool   `json:"isAvailable"`
	Message           string `json:"message,omitempty"`
}

type StockCheckResult struct {
	AllAvailable bool                   `json:"allAvailable"`
	Items        []StockCheckItemResult `json:"items"`
}
