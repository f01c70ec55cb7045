package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is one purchased line. The product reference is protected at the
// schema level: a product cannot be deleted while order items point at it.
type OrderItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID         uuid.UUID       `gorm:"column:order_id;type:uuid;not null" json:"orderId"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null" json:"productId"`
	ProductName     string          `gorm:"column:product_name;not null" json:"productName"`
	Quantity        int             `gorm:"column:quantity;not null" json:"quantity"`
	PriceAtPurchase decimal.Decimal `gorm:"column:price_at_purchase;type:numeric(10,2);not null" json:"priceAtPurchase"`
	Product         *Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
