package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rcastillo/storefront-backend/pkg/enums"
)

// User is an authenticated account. Role drives authorization decisions.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string         `gorm:"column:password_hash;not null" json:"-"`
	Role         enums.UserRole `gorm:"column:role;not null;default:'customer'" json:"role"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
