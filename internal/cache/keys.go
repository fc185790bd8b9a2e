package cache

import (
	"strconv"
	"strings"
)

// Cache keys follow {EntityKind}:{ViewKind}:{discriminators...}:{tenantScope}.
// The tenant scope is always the final segment so two tenants can never
// collide on a key, whatever the discriminators contain.
//
// All key construction goes through the helpers below; handlers and services
// never concatenate key strings themselves.

type EntityKind string

const (
	EntityCategories EntityKind = "Categories"
	EntityProducts   EntityKind = "Products"
)

type ViewKind string

const (
	ViewByID       ViewKind = "ById"
	ViewActive     ViewKind = "Active"
	ViewByCategory ViewKind = "ByCategoryId"
	ViewPublished  ViewKind = "Published"
	ViewLowStock   ViewKind = "LowStock"
	ViewOutOfStock ViewKind = "OutOfStock"
)

// AllCategoriesSentinel discriminates the global published view from the
// per-category ones.
const AllCategoriesSentinel = "all"

func Key(entity EntityKind, view ViewKind, tenantScope string, discriminators ...string) string {
	parts := make([]string, 0, len(discriminators)+3)
	parts = append(parts, string(entity), string(view))
	parts = append(parts, discriminators...)
	parts = append(parts, tenantScope)

	return strings.Join(parts, ":")
}

func CategoryByIDKey(tenantScope string, id int) string {
	return Key(EntityCategories, ViewByID, tenantScope, strconv.Itoa(id))
}

func ActiveCategoriesKey(tenantScope string) string {
	return Key(EntityCategories, ViewActive, tenantScope)
}

func ProductByIDKey(tenantScope string, id int64) string {
	return Key(EntityProducts, ViewByID, tenantScope, strconv.FormatInt(id, 10))
}

func ProductsByCategoryKey(tenantScope string, categoryID int, onlyPublished bool) string {
	return Key(EntityProducts, ViewByCategory, tenantScope,
		strconv.Itoa(categoryID), strconv.FormatBool(onlyPublished))
}

func PublishedProductsKey(tenantScope string, categoryID *int) string {
	category := AllCategoriesSentinel
	if categoryID != nil {
		category = strconv.Itoa(*categoryID)
	}

	return Key(EntityProducts, ViewPublished, tenantScope, category)
}

func LowStockKey(tenantScope string, threshold int) string {
	return Key(EntityProducts, ViewLowStock, tenantScope, strconv.Itoa(threshold))
}

func OutOfStockKey(tenantScope string) string {
	return Key(EntityProducts, ViewOutOfStock, tenantScope)
}
