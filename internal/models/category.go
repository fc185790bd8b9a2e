package models

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID            int        `json:"id"`
	NameEn        string     `json:"nameEn"`
	NameAr        string     `json:"nameAr"`
	DescriptionEn string     `json:"descriptionEn,omitempty"`
	DescriptionAr string     `json:"descriptionAr,omitempty"`
	DisplayOrder  int        `json:"displayOrder"`
	IsActive      bool       `json:"isActive"`
	IsDeleted     bool       `json:"-"`
	TenantID      *uuid.UUID `json:"tenantId,omitempty"`
	ProductCount  int        `json:"productCount"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type CreateCategoryRequest struct {
	NameEn        string `json:"nameEn" validate:"required,min=2,max=500"`
	NameAr        string `json:"nameAr" validate:"required,min=2,max=500"`
	DescriptionEn string `json:"descriptionEn,omitempty" validate:"omitempty,max=2000"`
	DescriptionAr string `json:"descriptionAr,omitempty" validate:"omitempty,max=2000"`
	DisplayOrder  int    `json:"displayOrder" validate:"gte=0"`
	IsActive      bool   `json:"isActive"`
}

type UpdateCategoryRequest struct {
	NameEn        *string `json:"nameEn,omitempty" validate:"omitempty,min=2,max=500"`
	NameAr        *string `json:"nameAr,omitempty" validate:"omitempty,min=2,max=500"`
	DescriptionEn *string `json:"descriptionEn,omitempty" validate:"omitempty,max=2000"`
	DescriptionAr *string `json:"descriptionAr,omitempty" validate:"omitempty,max=2000"`
	DisplayOrder  *int    `json:"displayOrder,omitempty" validate:"omitempty,gte=0"`
	IsActive      *bool   `json:"isActive,omitempty"`
}

// CategoryFilter narrows ListFilteredCategories. Zero value means no filter.
type CategoryFilter struct {
	IsActive   *bool  `json:"isActive,omitempty"`
	SearchTerm string `json:"searchTerm,omitempty"`
	Page       int    `json:"page" validate:"omitempty,gte=1"`
	PageSize   int    `json:"pageSize" validate:"omitempty,gte=1,lte=100"`
	Sorting    string `json:"sorting,omitempty"`
}
