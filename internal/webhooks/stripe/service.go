package stripewebhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/webqianduansong/shn-jade-backend/internal/orders"
	"github.com/webqianduansong/shn-jade-backend/pkg/db/models"
	"github.com/webqianduansong/shn-jade-backend/pkg/enums"
	pkgerrors "github.com/webqianduansong/shn-jade-backend/pkg/errors"
	"github.com/webqianduansong/shn-jade-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type orderMailer interface {
	Enabled() bool
	SendOrderPaid(ctx context.Context, to, orderNumber string, totalCents int, currency string) error
}

type paymentObserver interface {
	ObserveOrderPaid(totalCents int)
	IncWebhookEvent(eventType, outcome string)
}

type ServiceParams struct {
	Orders            orders.Repository
	Users             userFinder
	Mailer            orderMailer
	Metrics           paymentObserver
	TransactionRunner txRunner
	Logger            *logger.Logger
}

// Service reacts to Stripe checkout events. A completed checkout session
// flips every order carrying that session id as payment_ref to paid.
type Service struct {
	orders   orders.Repository
	users    userFinder
	mailer   orderMailer
	metrics  paymentObserver
	txRunner txRunner
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user finder required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{
		orders:   params.Orders,
		users:    params.Users,
		mailer:   params.Mailer,
		metrics:  params.Metrics,
		txRunner: params.TransactionRunner,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			s.observe(string(event.Type), "decode_error")
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
		}
		if session.ID == "" {
			s.observe(string(event.Type), "decode_error")
			return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id missing")
		}
		return s.settleSession(ctx, string(event.Type), session.ID)
	default:
		s.observe(string(event.Type), "ignored")
		return nil
	}
}

// settleSession marks all orders referencing the session as paid. Orders
// already past pending are left untouched, so redelivery is harmless.
func (s *Service) settleSession(ctx context.Context, eventType, sessionID string) error {
	var settled []models.Order

	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		matched, err := repo.FindByPaymentRef(ctx, sessionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders by payment ref")
		}

		paidAt := s.now().UTC()
		settled = settled[:0]
		for i := range matched {
			order := matched[i]
			if order.Status != enums.OrderStatusPending {
				continue
			}
			if err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPaid, &paidAt); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
			}
			order.Status = enums.OrderStatusPaid
			order.PaidAt = &paidAt
			settled = append(settled, order)
		}
		return nil
	})
	if err != nil {
		s.observe(eventType, "error")
		return err
	}

	if len(settled) == 0 {
		// Unknown or already-settled session: acknowledge so Stripe stops retrying.
		s.observe(eventType, "unmatched")
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("checkout session %s matched no pending orders", sessionID))
		}
		return nil
	}

	for i := range settled {
		if s.metrics != nil {
			s.metrics.ObserveOrderPaid(settled[i].TotalCents)
		}
		s.notifyPaid(ctx, &settled[i])
	}
	s.observe(eventType, "processed")
	return nil
}

// notifyPaid sends the confirmation email on a best-effort basis; a mail
// failure never fails the webhook.
func (s *Service) notifyPaid(ctx context.Context, order *models.Order) {
	if s.mailer == nil || !s.mailer.Enabled() {
		return
	}
	user, err := s.users.FindByID(ctx, order.UserID)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("order %s paid but user lookup failed: %v", order.OrderNumber, err))
		}
		return
	}
	if err := s.mailer.SendOrderPaid(ctx, user.Email, order.OrderNumber, order.TotalCents, string(order.Currency)); err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("order %s paid but confirmation mail failed: %v", order.OrderNumber, err))
		}
	}
}

func (s *Service) observe(eventType, outcome string) {
	if s.metrics != nil {
		s.metrics.IncWebhookEvent(eventType, outcome)
	}
}
