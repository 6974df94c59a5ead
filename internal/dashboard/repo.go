package dashboard

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/webqianduansong/shn-jade-backend/pkg/db/models"
	"github.com/webqianduansong/shn-jade-backend/pkg/enums"
)

// Revenue counts only orders that were actually paid: paid, shipped, and
// delivered rows, bucketed by the day the payment landed.
var revenueStatuses = []enums.OrderStatus{
	enums.OrderStatusPaid,
	enums.OrderStatusShipped,
	enums.OrderStatusDelivered,
}

type RevenueBucket struct {
	Day          time.Time
	OrderCount   int64
	RevenueCents int64
}

type StatusCount struct {
	Status enums.OrderStatus
	Count  int64
}

type Repository interface {
	RevenueByDay(ctx context.Context, from, to time.Time) ([]RevenueBucket, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) RevenueByDay(ctx context.Context, from, to time.Time) ([]RevenueBucket, error) {
	var rows []struct {
		PaidAt     time.Time
		TotalCents int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("paid_at", "total_cents").
		Where("status IN ? AND paid_at >= ? AND paid_at < ?", revenueStatuses, from, to).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	// Buckets are UTC calendar days. The window caps the row count.
	byDay := make(map[time.Time]*RevenueBucket)
	for _, row := range rows {
		day := row.PaidAt.UTC().Truncate(24 * time.Hour)
		bucket, ok := byDay[day]
		if !ok {
			bucket = &RevenueBucket{Day: day}
			byDay[day] = bucket
		}
		bucket.OrderCount++
		bucket.RevenueCents += row.TotalCents
	}

	buckets := make([]RevenueBucket, 0, len(byDay))
	for _, bucket := range byDay {
		buckets = append(buckets, *bucket)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Day.Before(buckets[j].Day) })
	return buckets, nil
}

func (r *repository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.WithContext(ctx).
		Raw(`SELECT status, COUNT(*) AS count FROM orders GROUP BY status`).
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
