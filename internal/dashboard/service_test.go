package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/webqianduansong/shn-jade-backend/pkg/enums"
	pkgerrors "github.com/webqianduansong/shn-jade-backend/pkg/errors"
)

type stubRepo struct {
	buckets  []RevenueBucket
	statuses []StatusCount

	gotFrom time.Time
	gotTo   time.Time
}

func (s *stubRepo) RevenueByDay(ctx context.Context, from, to time.Time) ([]RevenueBucket, error) {
	s.gotFrom = from
	s.gotTo = to
	return s.buckets, nil
}

func (s *stubRepo) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	return s.statuses, nil
}

func day(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func TestSummaryAggregatesBuckets(t *testing.T) {
	repo := &stubRepo{
		buckets: []RevenueBucket{
			{Day: day("2025-08-01"), OrderCount: 2, RevenueCents: 45000},
			{Day: day("2025-08-02"), OrderCount: 1, RevenueCents: 129900},
		},
		statuses: []StatusCount{
			{Status: enums.OrderStatusPending, Count: 3},
			{Status: enums.OrderStatusPaid, Count: 2},
			{Status: enums.OrderStatusDelivered, Count: 1},
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	summary, err := svc.Summary(context.Background(), day("2025-08-01"), day("2025-08-31"))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if summary.TotalOrders != 3 {
		t.Fatalf("expected 3 orders, got %d", summary.TotalOrders)
	}
	if summary.TotalRevenueCents != 174900 {
		t.Fatalf("expected 174900 cents, got %d", summary.TotalRevenueCents)
	}
	if summary.TotalRevenue != "1749.00" {
		t.Fatalf("expected formatted total 1749.00, got %s", summary.TotalRevenue)
	}
	if len(summary.Days) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(summary.Days))
	}
	if summary.Days[0].Date != "2025-08-01" || summary.Days[0].Revenue != "450.00" {
		t.Fatalf("unexpected first bucket: %+v", summary.Days[0])
	}
	if summary.StatusCounts[enums.OrderStatusPending] != 3 {
		t.Fatalf("unexpected status counts: %v", summary.StatusCounts)
	}
}

func TestSummaryDefaultsToTrailingThirtyDays(t *testing.T) {
	repo := &stubRepo{}
	svc, _ := NewService(repo)

	if _, err := svc.Summary(context.Background(), time.Time{}, time.Time{}); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got := repo.gotTo.Sub(repo.gotFrom); got != defaultRangeDays*24*time.Hour {
		t.Fatalf("expected 30 day window, got %s", got)
	}
}

func TestSummaryRejectsBadRanges(t *testing.T) {
	svc, _ := NewService(&stubRepo{})

	_, err := svc.Summary(context.Background(), day("2025-08-31"), day("2025-08-01"))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for inverted range, got %v", err)
	}

	_, err = svc.Summary(context.Background(), day("2020-01-01"), day("2025-08-01"))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for oversized range, got %v", err)
	}
}
