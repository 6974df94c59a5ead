package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webqianduansong/shn-jade-backend/pkg/db/models"
	"github.com/webqianduansong/shn-jade-backend/pkg/enums"
	pkgerrors "github.com/webqianduansong/shn-jade-backend/pkg/errors"
	"github.com/webqianduansong/shn-jade-backend/pkg/pagination"
)

// Service exposes customer and admin order operations. Status movement is
// deliberately asymmetric: customers get guarded transitions, admins get a
// direct overwrite.
type Service interface {
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPage, error)
	GetMine(ctx context.Context, userID uuid.UUID, orderNumber string) (*OrderDTO, error)
	Cancel(ctx context.Context, userID uuid.UUID, orderNumber string) (*OrderDTO, error)
	ConfirmReceipt(ctx context.Context, userID uuid.UUID, orderNumber string) (*OrderDTO, error)

	AdminList(ctx context.Context, filters AdminFilters, params pagination.Params) (*AdminOrderPage, error)
	AdminSetStatus(ctx context.Context, orderNumber string, status enums.OrderStatus) (*OrderDTO, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the orders service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	rows, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	page := &OrderPage{Orders: make([]OrderDTO, 0, len(rows))}
	for i, row := range rows {
		if i == limit {
			last := rows[limit-1]
			cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
			page.NextCursor = &cursor
			break
		}
		page.Orders = append(page.Orders, FromModel(row))
	}
	return page, nil
}

func (s *service) GetMine(ctx context.Context, userID uuid.UUID, orderNumber string) (*OrderDTO, error) {
	order, err := s.findOwned(ctx, userID, orderNumber)
	if err != nil {
		return nil, err
	}
	dto := FromModel(*order)
	return &dto, nil
}

// Cancel moves a pending order to cancelled. Any other starting status is a
// state conflict and the order is left untouched.
func (s *service) Cancel(ctx context.Context, userID uuid.UUID, orderNumber string) (*OrderDTO, error) {
	order, err := s.findOwned(ctx, userID, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order %s cannot be cancelled from status %s", orderNumber, order.Status)).
			WithDetails(map[string]any{"status": order.Status})
	}

	now := s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled, &now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancelling order")
	}

	order.Status = enums.OrderStatusCancelled
	order.CancelledAt = &now
	dto := FromModel(*order)
	return &dto, nil
}

// ConfirmReceipt moves a shipped order to delivered.
func (s *service) ConfirmReceipt(ctx context.Context, userID uuid.UUID, orderNumber string) (*OrderDTO, error) {
	order, err := s.findOwned(ctx, userID, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusShipped {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order %s cannot be confirmed from status %s", orderNumber, order.Status)).
			WithDetails(map[string]any{"status": order.Status})
	}

	now := s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, order.ID, enums.OrderStatusDelivered, &now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "confirming receipt")
	}

	order.Status = enums.OrderStatusDelivered
	order.DeliveredAt = &now
	dto := FromModel(*order)
	return &dto, nil
}

func (s *service) AdminList(ctx context.Context, filters AdminFilters, params pagination.Params) (*AdminOrderPage, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	rows, err := s.repo.ListAll(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	page := &AdminOrderPage{Orders: make([]AdminOrderDTO, 0, len(rows))}
	for i, row := range rows {
		if i == limit {
			last := rows[limit-1]
			cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
			page.NextCursor = &cursor
			break
		}
		page.Orders = append(page.Orders, AdminOrderDTO{OrderDTO: FromModel(row), UserID: row.UserID})
	}
	return page, nil
}

// AdminSetStatus overwrites the order status directly. The status string is
// validated against the known set but no transition rules apply.
func (s *service) AdminSetStatus(ctx context.Context, orderNumber string, status enums.OrderStatus) (*OrderDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	order, err := s.findByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, order.ID, status, &now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
	}

	order.Status = status
	switch status {
	case enums.OrderStatusPaid:
		order.PaidAt = &now
	case enums.OrderStatusShipped:
		order.ShippedAt = &now
	case enums.OrderStatusDelivered:
		order.DeliveredAt = &now
	case enums.OrderStatusCancelled:
		order.CancelledAt = &now
	}
	dto := FromModel(*order)
	return &dto, nil
}

func (s *service) findOwned(ctx context.Context, userID uuid.UUID, orderNumber string) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	order, err := s.findByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		// do not leak existence of other users' orders
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) findByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}
	order, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}
