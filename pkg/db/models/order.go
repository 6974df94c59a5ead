package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/webqianduansong/shn-jade-backend/pkg/enums"
	"github.com/webqianduansong/shn-jade-backend/pkg/types"
)

// Order is a customer purchase. Amounts are frozen at creation:
// TotalCents = SubtotalCents + ShippingCents - DiscountCents and is never
// recomputed. PaymentRef carries the external checkout-session id the
// payment webhook matches on. Orders are never deleted.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   string            `gorm:"column:order_number;type:text;not null;uniqueIndex"`
	UserID        uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Currency      enums.Currency    `gorm:"column:currency;type:text;not null;default:'USD'"`
	PaymentRef    string            `gorm:"column:payment_ref;type:text;not null;index"`
	ShippingAddr  *types.Address    `gorm:"column:shipping_addr;type:jsonb;serializer:json"`
	SubtotalCents int               `gorm:"column:subtotal_cents;not null"`
	ShippingCents int               `gorm:"column:shipping_cents;not null;default:0"`
	DiscountCents int               `gorm:"column:discount_cents;not null;default:0"`
	TotalCents    int               `gorm:"column:total_cents;not null"`
	Items         []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PaidAt        *time.Time        `gorm:"column:paid_at"`
	ShippedAt     *time.Time        `gorm:"column:shipped_at"`
	DeliveredAt   *time.Time        `gorm:"column:delivered_at"`
	CancelledAt   *time.Time        `gorm:"column:cancelled_at"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
