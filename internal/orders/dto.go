package orders

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/webqianduansong/shn-jade-backend/pkg/db/models"
	"github.com/webqianduansong/shn-jade-backend/pkg/enums"
	"github.com/webqianduansong/shn-jade-backend/pkg/types"
)

// OrderItemDTO is one snapshotted line of an order.
type OrderItemDTO struct {
	ProductID      uuid.UUID `json:"product_id"`
	Name           string    `json:"name"`
	UnitPriceCents int       `json:"unit_price_cents"`
	Quantity       int       `json:"quantity"`
}

// OrderDTO is the transport shape of an order.
type OrderDTO struct {
	ID            uuid.UUID         `json:"id"`
	OrderNumber   string            `json:"order_number"`
	Status        enums.OrderStatus `json:"status"`
	Currency      enums.Currency    `json:"currency"`
	SubtotalCents int               `json:"subtotal_cents"`
	ShippingCents int               `json:"shipping_cents"`
	DiscountCents int               `json:"discount_cents"`
	TotalCents    int               `json:"total_cents"`
	ShippingAddr  *types.Address    `json:"shipping_addr,omitempty"`
	Items         []OrderItemDTO    `json:"items"`
	PaidAt        *time.Time        `json:"paid_at,omitempty"`
	ShippedAt     *time.Time        `json:"shipped_at,omitempty"`
	DeliveredAt   *time.Time        `json:"delivered_at,omitempty"`
	CancelledAt   *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// OrderPage is one cursor page of orders.
type OrderPage struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor *string    `json:"next_cursor,omitempty"`
}

// AdminOrderDTO adds the owning user to the order shape.
type AdminOrderDTO struct {
	OrderDTO
	UserID uuid.UUID `json:"user_id"`
}

// AdminOrderPage is one cursor page of admin orders.
type AdminOrderPage struct {
	Orders     []AdminOrderDTO `json:"orders"`
	NextCursor *string         `json:"next_cursor,omitempty"`
}

// FromModel converts a persisted order into its transport shape.
func FromModel(o models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
		})
	}
	return OrderDTO{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        o.Status,
		Currency:      o.Currency,
		SubtotalCents: o.SubtotalCents,
		ShippingCents: o.ShippingCents,
		DiscountCents: o.DiscountCents,
		TotalCents:    o.TotalCents,
		ShippingAddr:  o.ShippingAddr,
		Items:         items,
		PaidAt:        o.PaidAt,
		ShippedAt:     o.ShippedAt,
		DeliveredAt:   o.DeliveredAt,
		CancelledAt:   o.CancelledAt,
		CreatedAt:     o.CreatedAt,
	}
}

// NewOrderNumber mints a human-readable order number, e.g. SJ-20250901-4F2A9C.
func NewOrderNumber(now time.Time) string {
	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		id := uuid.New()
		copy(suffix, id[:3])
	}
	return fmt.Sprintf("SJ-%s-%s", now.UTC().Format("20060102"), hex.EncodeToString(suffix))
}
