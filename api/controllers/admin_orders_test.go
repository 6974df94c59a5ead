package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/webqianduansong/shn-jade-backend/internal/orders"
	"github.com/webqianduansong/shn-jade-backend/pkg/enums"
	pkgerrors "github.com/webqianduansong/shn-jade-backend/pkg/errors"
	"github.com/webqianduansong/shn-jade-backend/pkg/pagination"
)

type stubOrdersService struct {
	listFilters  orders.AdminFilters
	setNumber    string
	setStatus    enums.OrderStatus
	setStatusErr error
}

func (s *stubOrdersService) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*orders.OrderPage, error) {
	return &orders.OrderPage{Orders: []orders.OrderDTO{}}, nil
}

func (s *stubOrdersService) GetMine(ctx context.Context, userID uuid.UUID, orderNumber string) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{OrderNumber: orderNumber}, nil
}

func (s *stubOrdersService) Cancel(ctx context.Context, userID uuid.UUID, orderNumber string) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{OrderNumber: orderNumber, Status: enums.OrderStatusCancelled}, nil
}

func (s *stubOrdersService) ConfirmReceipt(ctx context.Context, userID uuid.UUID, orderNumber string) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{OrderNumber: orderNumber, Status: enums.OrderStatusDelivered}, nil
}

func (s *stubOrdersService) AdminList(ctx context.Context, filters orders.AdminFilters, params pagination.Params) (*orders.AdminOrderPage, error) {
	s.listFilters = filters
	return &orders.AdminOrderPage{Orders: []orders.AdminOrderDTO{}}, nil
}

func (s *stubOrdersService) AdminSetStatus(ctx context.Context, orderNumber string, status enums.OrderStatus) (*orders.OrderDTO, error) {
	if s.setStatusErr != nil {
		return nil, s.setStatusErr
	}
	s.setNumber = orderNumber
	s.setStatus = status
	return &orders.OrderDTO{OrderNumber: orderNumber, Status: status}, nil
}

func TestAdminOrdersParsesStatusFilter(t *testing.T) {
	svc := &stubOrdersService{}
	handler := AdminOrders(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders?status=paid", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.listFilters.Status == nil || *svc.listFilters.Status != enums.OrderStatusPaid {
		t.Fatalf("status filter not forwarded: %+v", svc.listFilters)
	}
}

func TestAdminOrdersRejectsUnknownStatus(t *testing.T) {
	handler := AdminOrders(&stubOrdersService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders?status=refunded", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAdminSetOrderStatus(t *testing.T) {
	svc := &stubOrdersService{}
	handler := AdminSetOrderStatus(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders/SJ-1/status", strings.NewReader(`{"status":"shipped"}`))
	req = withURLParam(req, "orderNumber", "SJ-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.setNumber != "SJ-1" || svc.setStatus != enums.OrderStatusShipped {
		t.Fatalf("unexpected set-status call: %s %s", svc.setNumber, svc.setStatus)
	}
}

func TestAdminSetOrderStatusRejectsUnknownStatus(t *testing.T) {
	handler := AdminSetOrderStatus(&stubOrdersService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders/SJ-1/status", strings.NewReader(`{"status":"archived"}`))
	req = withURLParam(req, "orderNumber", "SJ-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAdminSetOrderStatusPropagatesTransitionConflict(t *testing.T) {
	svc := &stubOrdersService{
		setStatusErr: pkgerrors.New(pkgerrors.CodeStateConflict, "cannot move delivered order back to pending"),
	}
	handler := AdminSetOrderStatus(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders/SJ-1/status", strings.NewReader(`{"status":"pending"}`))
	req = withURLParam(req, "orderNumber", "SJ-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}
