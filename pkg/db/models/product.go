package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rcastillo/storefront-backend/pkg/enums"
)

// Product represents the canonical catalog listing.
type Product struct {
	ID           uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CategoryID   uuid.UUID                 `gorm:"column:category_id;type:uuid;not null" json:"categoryId"`
	Name         string                    `gorm:"column:name;not null" json:"name"`
	Description  string                    `gorm:"column:description;not null;default:''" json:"description"`
	Price        decimal.Decimal           `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	Stock        int                       `gorm:"column:stock;not null;default:0" json:"stock"`
	Availability enums.ProductAvailability `gorm:"column:availability;not null;default:'in_stock'" json:"availability"`
	ImageURL     string                    `gorm:"column:image_url;not null;default:''" json:"imageUrl"`
	CreatedByID  *uuid.UUID                `gorm:"column:created_by_id;type:uuid" json:"createdById,omitempty"`
	Category     *Category                 `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt    time.Time                 `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time                 `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
