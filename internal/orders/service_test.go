package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webqianduansong/shn-jade-backend/pkg/db/models"
	"github.com/webqianduansong/shn-jade-backend/pkg/enums"
	pkgerrors "github.com/webqianduansong/shn-jade-backend/pkg/errors"
	"github.com/webqianduansong/shn-jade-backend/pkg/pagination"
)

type memoryRepo struct {
	orders map[uuid.UUID]*models.Order
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (m *memoryRepo) WithTx(tx *gorm.DB) Repository { return m }

func (m *memoryRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	m.orders[order.ID] = order
	return order, nil
}

func (m *memoryRepo) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	for _, order := range m.orders {
		if order.OrderNumber == orderNumber {
			copied := *order
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryRepo) FindByPaymentRef(ctx context.Context, paymentRef string) ([]models.Order, error) {
	var out []models.Order
	for _, order := range m.orders {
		if order.PaymentRef == paymentRef {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	var out []models.Order
	for _, order := range m.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListAll(ctx context.Context, filters AdminFilters, params pagination.Params) ([]models.Order, error) {
	var out []models.Order
	for _, order := range m.orders {
		if filters.Status != nil && order.Status != *filters.Status {
			continue
		}
		out = append(out, *order)
	}
	return out, nil
}

func (m *memoryRepo) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, stampedAt *time.Time) error {
	order, ok := m.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.Status = status
	if stampedAt != nil {
		switch status {
		case enums.OrderStatusPaid:
			order.PaidAt = stampedAt
		case enums.OrderStatusShipped:
			order.ShippedAt = stampedAt
		case enums.OrderStatusDelivered:
			order.DeliveredAt = stampedAt
		case enums.OrderStatusCancelled:
			order.CancelledAt = stampedAt
		}
	}
	return nil
}

func seedOrder(t *testing.T, repo *memoryRepo, userID uuid.UUID, status enums.OrderStatus) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   NewOrderNumber(time.Now()),
		UserID:        userID,
		Status:        status,
		Currency:      enums.CurrencyUSD,
		SubtotalCents: 45000,
		ShippingCents: 0,
		TotalCents:    45000,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := repo.Create(context.Background(), order); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func TestCancelOnlyFromPending(t *testing.T) {
	repo := newMemoryRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	userID := uuid.New()

	pending := seedOrder(t, repo, userID, enums.OrderStatusPending)
	got, err := svc.Cancel(ctx, userID, pending.OrderNumber)
	if err != nil {
		t.Fatalf("cancel pending: %v", err)
	}
	if got.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", got.Status)
	}
	if got.CancelledAt == nil {
		t.Fatal("expected cancelled_at stamp")
	}

	for _, status := range []enums.OrderStatus{
		enums.OrderStatusPaid,
		enums.OrderStatusShipped,
		enums.OrderStatusDelivered,
		enums.OrderStatusCancelled,
	} {
		order := seedOrder(t, repo, userID, status)
		_, err := svc.Cancel(ctx, userID, order.OrderNumber)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("expected state conflict from %s, got %v", status, err)
		}
		if repo.orders[order.ID].Status != status {
			t.Fatalf("status mutated on rejected cancel from %s", status)
		}
	}
}

func TestConfirmReceiptOnlyFromShipped(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := NewService(repo)
	ctx := context.Background()
	userID := uuid.New()

	shipped := seedOrder(t, repo, userID, enums.OrderStatusShipped)
	got, err := svc.ConfirmReceipt(ctx, userID, shipped.OrderNumber)
	if err != nil {
		t.Fatalf("confirm shipped: %v", err)
	}
	if got.Status != enums.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", got.Status)
	}
	if got.DeliveredAt == nil {
		t.Fatal("expected delivered_at stamp")
	}

	pending := seedOrder(t, repo, userID, enums.OrderStatusPending)
	_, err = svc.ConfirmReceipt(ctx, userID, pending.OrderNumber)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCustomerCannotTouchForeignOrders(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := NewService(repo)
	ctx := context.Background()

	owner := uuid.New()
	stranger := uuid.New()
	order := seedOrder(t, repo, owner, enums.OrderStatusPending)

	_, err := svc.GetMine(ctx, stranger, order.OrderNumber)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign order, got %v", err)
	}

	_, err = svc.Cancel(ctx, stranger, order.OrderNumber)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on foreign cancel, got %v", err)
	}
}

func TestAdminSetStatusSkipsTransitionRules(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := NewService(repo)
	ctx := context.Background()

	order := seedOrder(t, repo, uuid.New(), enums.OrderStatusDelivered)

	// delivered straight back to pending: allowed for admins
	got, err := svc.AdminSetStatus(ctx, order.OrderNumber, enums.OrderStatusPending)
	if err != nil {
		t.Fatalf("set pending: %v", err)
	}
	if got.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending, got %s", got.Status)
	}

	got, err = svc.AdminSetStatus(ctx, order.OrderNumber, enums.OrderStatusShipped)
	if err != nil {
		t.Fatalf("set shipped: %v", err)
	}
	if got.ShippedAt == nil {
		t.Fatal("expected shipped_at stamp")
	}

	_, err = svc.AdminSetStatus(ctx, order.OrderNumber, enums.OrderStatus("exploded"))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
}

func TestNewOrderNumberFormat(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	number := NewOrderNumber(now)
	if len(number) != len("SJ-20250901-xxxxxx") {
		t.Fatalf("unexpected order number %q", number)
	}
	if number[:11] != "SJ-20250901" {
		t.Fatalf("unexpected prefix in %q", number)
	}
}
