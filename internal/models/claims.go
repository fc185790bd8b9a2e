package models

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried by admin bearer tokens. TenantID is nil for host-context
// operators managing the shared catalog.
type Claims struct {
	UserID      uuid.UUID  `json:"userId"`
	Email       string     `json:"email"`
	TenantID    *uuid.UUID `json:"tenantId,omitempty"`
	Permissions []string   `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) HasPermission(permission string) bool {
	return slices.Contains(c.Permissions, permission)
}

// Permission strings checked by the HTTP layer.
const (
	PermCategoriesDefault = "Categories"
	PermCategoriesCreate  = "Categories.Create"
	PermCategoriesEdit    = "Categories.Edit"
	PermCategoriesDelete  = "Categories.Delete"

	PermProductsDefault     = "Products"
	PermProductsCreate      = "Products.Create"
	PermProductsEdit        = "Products.Edit"
	PermProductsDelete      = "Products.Delete"
	PermProductsPublish     = "Products.Publish"
	PermProductsManageStock = "Products.ManageStock"
)
