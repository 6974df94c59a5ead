package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/webqianduansong/shn-jade-backend/pkg/enums"
	pkgerrors "github.com/webqianduansong/shn-jade-backend/pkg/errors"
)

const (
	defaultRangeDays = 30
	maxRangeDays     = 366
)

// DayDTO is one revenue bucket. Revenue is a decimal string in major units
// so the console never re-derives money from cents.
type DayDTO struct {
	Date         string `json:"date"`
	OrderCount   int64  `json:"order_count"`
	RevenueCents int64  `json:"revenue_cents"`
	Revenue      string `json:"revenue"`
}

type SummaryDTO struct {
	From              string                      `json:"from"`
	To                string                      `json:"to"`
	Days              []DayDTO                    `json:"days"`
	TotalOrders       int64                       `json:"total_orders"`
	TotalRevenueCents int64                       `json:"total_revenue_cents"`
	TotalRevenue      string                      `json:"total_revenue"`
	StatusCounts      map[enums.OrderStatus]int64 `json:"status_counts"`
}

// Service produces the admin console summary.
type Service interface {
	Summary(ctx context.Context, from, to time.Time) (*SummaryDTO, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// Summary aggregates paid revenue per day over the requested range. Zero
// times fall back to the trailing 30 days; the upper bound is exclusive.
func (s *service) Summary(ctx context.Context, from, to time.Time) (*SummaryDTO, error) {
	from, to, err := s.normalizeRange(from, to)
	if err != nil {
		return nil, err
	}

	buckets, err := s.repo.RevenueByDay(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate revenue")
	}
	statusCounts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders by status")
	}

	summary := &SummaryDTO{
		From:         from.Format("2006-01-02"),
		To:           to.Format("2006-01-02"),
		Days:         make([]DayDTO, 0, len(buckets)),
		StatusCounts: make(map[enums.OrderStatus]int64, len(statusCounts)),
	}
	for _, bucket := range buckets {
		summary.Days = append(summary.Days, DayDTO{
			Date:         bucket.Day.Format("2006-01-02"),
			OrderCount:   bucket.OrderCount,
			RevenueCents: bucket.RevenueCents,
			Revenue:      formatCents(bucket.RevenueCents),
		})
		summary.TotalOrders += bucket.OrderCount
		summary.TotalRevenueCents += bucket.RevenueCents
	}
	summary.TotalRevenue = formatCents(summary.TotalRevenueCents)

	for _, row := range statusCounts {
		summary.StatusCounts[row.Status] = row.Count
	}
	return summary, nil
}

func (s *service) normalizeRange(from, to time.Time) (time.Time, time.Time, error) {
	if to.IsZero() {
		to = s.now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -defaultRangeDays)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "from must be before to")
	}
	if to.Sub(from) > maxRangeDays*24*time.Hour {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "range exceeds one year")
	}
	return from, to, nil
}

func formatCents(cents int64) string {
	return decimal.NewFromInt(cents).Shift(-2).StringFixed(2)
}
