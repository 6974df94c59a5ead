package dashboard

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
)

func setupDashboardTestDB(t *testing.T) *gorm.DB {
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
	require.NoError(t, db.Exec(orders).Error)
	return db
}

func seedPaidOrder(t *testing.T, db *gorm.DB, status enums.OrderStatus, paidAt *time.Time, totalCents int) {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   fmt.Sprintf("SJ-%s", uuid.NewString()[:8]),
		UserID:        uuid.New(),
		Status:        status,
		Currency:      enums.CurrencyUSD,
		PaymentRef:    fmt.Sprintf("cs_test_%s", uuid.NewString()[:8]),
		SubtotalCents: totalCents,
		TotalCents:    totalCents,
		PaidAt:        paidAt,
	}
	require.NoError(t, db.Create(order).Error)
}

func TestRepositoryRevenueByDayBucketsPaidOrders(t *testing.T) {
	db := setupDashboardTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	day1Morning := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	day1Evening := time.Date(2026, 8, 10, 21, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 11, 14, 0, 0, 0, time.UTC)
	outside := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	seedPaidOrder(t, db, enums.OrderStatusPaid, &day1Morning, 10000)
	seedPaidOrder(t, db, enums.OrderStatusShipped, &day1Evening, 5000)
	seedPaidOrder(t, db, enums.OrderStatusDelivered, &day2, 20000)
	seedPaidOrder(t, db, enums.OrderStatusPaid, &outside, 99999)
	seedPaidOrder(t, db, enums.OrderStatusPending, nil, 7000)
	seedPaidOrder(t, db, enums.OrderStatusCancelled, &day2, 3000)

	from := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)
	buckets, err := repo.RevenueByDay(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	require.True(t, buckets[0].Day.Equal(time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)))
	require.EqualValues(t, 2, buckets[0].OrderCount)
	require.EqualValues(t, 15000, buckets[0].RevenueCents)

	require.True(t, buckets[1].Day.Equal(time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC)))
	require.EqualValues(t, 1, buckets[1].OrderCount)
	require.EqualValues(t, 20000, buckets[1].RevenueCents)
}

func TestRepositoryCountByStatus(t *testing.T) {
	db := setupDashboardTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	paidAt := time.Date(2026, 8, 12, 10, 0, 0, 0, time.UTC)
	seedPaidOrder(t, db, enums.OrderStatusPaid, &paidAt, 1000)
	seedPaidOrder(t, db, enums.OrderStatusPaid, &paidAt, 2000)
	seedPaidOrder(t, db, enums.OrderStatusPending, nil, 3000)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)

	byStatus := map[enums.OrderStatus]int64{}
	for _, row := range counts {
		byStatus[row.Status] = row.Count
	}
	require.EqualValues(t, 2, byStatus[enums.OrderStatusPaid])
	require.EqualValues(t, 1, byStatus[enums.OrderStatusPending])
}
