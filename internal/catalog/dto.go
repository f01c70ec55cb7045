package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rcastillo/storefront-backend/pkg/pagination"
)

// CreateProductInput carries the fields for a new catalog entry.
type CreateProductInput struct {
	CategoryID   uuid.UUID       `json:"categoryId" validate:"required"`
	Name         string          `json:"name" validate:"required,min=1,max=200"`
	Description  string          `json:"description" validate:"max=2000"`
	Price        decimal.Decimal `json:"price" validate:"required"`
	Stock        int             `json:"stock" validate:"gte=0"`
	Availability string          `json:"availability" validate:"omitempty,oneof=in_stock out_of_stock coming_soon"`
	ImageURL     string          `json:"imageUrl" validate:"omitempty,url,max=500"`
}

// UpdateProductInput carries optional fields; nil pointers are left untouched.
type UpdateProductInput struct {
	CategoryID   *uuid.UUID       `json:"categoryId"`
	Name         *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description  *string          `json:"description" validate:"omitempty,max=2000"`
	Price        *decimal.Decimal `json:"price"`
	Stock        *int             `json:"stock" validate:"omitempty,gte=0"`
	Availability *string          `json:"availability" validate:"omitempty,oneof=in_stock out_of_stock coming_soon"`
	ImageURL     *string          `json:"imageUrl" validate:"omitempty,url,max=500"`
}

// CreateCategoryInput carries the fields for a new category.
type CreateCategoryInput struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID   *uuid.UUID
	Availability string
	Search       string
	Page         pagination.Params
}
