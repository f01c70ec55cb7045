package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rcastillo/storefront-backend/pkg/enums"
)

// Order is the immutable aggregate produced by a checkout. Only the status
// column changes after creation; the total is never recomputed.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null" json:"userId"`
	Status      enums.OrderStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
	TotalAmount decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null" json:"totalAmount"`
	Items       []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
