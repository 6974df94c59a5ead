package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/webqianduansong/shn-jade-backend/pkg/db/models"
	"github.com/webqianduansong/shn-jade-backend/pkg/enums"
	"github.com/webqianduansong/shn-jade-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  currency TEXT NOT NULL DEFAULT 'USD',
  payment_ref TEXT NOT NULL,
  shipping_addr TEXT,
  subtotal_cents INTEGER NOT NULL,
  shipping_cents INTEGER NOT NULL DEFAULT 0,
  discount_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  paid_at DATETIME,
  shipped_at DATETIME,
  delivered_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func createOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, created time.Time, status enums.OrderStatus) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   fmt.Sprintf("SJ-%s", uuid.NewString()[:8]),
		UserID:        userID,
		Status:        status,
		Currency:      enums.CurrencyUSD,
		PaymentRef:    fmt.Sprintf("cs_test_%s", uuid.NewString()[:8]),
		SubtotalCents: 12000,
		TotalCents:    12000,
		CreatedAt:     created,
		Items: []models.OrderItem{{
			ID:             uuid.New(),
			ProductID:      uuid.New(),
			Name:           "Jade Bangle",
			UnitPriceCents: 12000,
			Quantity:       1,
		}},
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepositoryListByUserKeysetPagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	oldest := createOrder(t, db, userID, base, enums.OrderStatusPending)
	middle := createOrder(t, db, userID, base.Add(time.Hour), enums.OrderStatusPaid)
	newest := createOrder(t, db, userID, base.Add(2*time.Hour), enums.OrderStatusPaid)
	createOrder(t, db, uuid.New(), base.Add(3*time.Hour), enums.OrderStatusPaid)

	rows, err := repo.ListByUser(ctx, userID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 3, "buffered page carries one extra row")
	require.Equal(t, newest.ID, rows[0].ID)
	require.Equal(t, middle.ID, rows[1].ID)
	require.Equal(t, oldest.ID, rows[2].ID)
	require.NotEmpty(t, rows[0].Items, "items should be preloaded")

	cursor := pagination.EncodeCursor(pagination.Cursor{
		CreatedAt: rows[1].CreatedAt,
		ID:        rows[1].ID,
	})
	rows, err = repo.ListByUser(ctx, userID, pagination.Params{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, oldest.ID, rows[0].ID)
}

func TestRepositoryListByUserRejectsMalformedCursor(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	_, err := repo.ListByUser(context.Background(), uuid.New(), pagination.Params{Cursor: "not-a-cursor"})
	require.Error(t, err)
}

func TestRepositoryListAllFiltersByStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
	paid := createOrder(t, db, uuid.New(), base, enums.OrderStatusPaid)
	createOrder(t, db, uuid.New(), base.Add(time.Minute), enums.OrderStatusPending)

	status := enums.OrderStatusPaid
	rows, err := repo.ListAll(ctx, AdminFilters{Status: &status}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, paid.ID, rows[0].ID)
}

func TestRepositoryUpdateStatusStampsTimestamp(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := createOrder(t, db, uuid.New(), time.Date(2026, 8, 3, 10, 0, 0, 0, time.UTC), enums.OrderStatusPending)

	paidAt := time.Date(2026, 8, 3, 11, 30, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPaid, &paidAt))

	updated, err := repo.FindByOrderNumber(ctx, order.OrderNumber)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusPaid, updated.Status)
	require.NotNil(t, updated.PaidAt)
	require.True(t, updated.PaidAt.Equal(paidAt))
	require.Nil(t, updated.ShippedAt)
}

func TestRepositoryFindByPaymentRef(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := createOrder(t, db, uuid.New(), time.Date(2026, 8, 4, 8, 0, 0, 0, time.UTC), enums.OrderStatusPending)

	rows, err := repo.FindByPaymentRef(ctx, order.PaymentRef)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, order.ID, rows[0].ID)

	rows, err = repo.FindByPaymentRef(ctx, "cs_test_missing")
	require.NoError(t, err)
	require.Empty(t, rows)
}
