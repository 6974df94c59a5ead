package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webqianduansong/shn-jade-backend/internal/cart"
	"github.com/webqianduansong/shn-jade-backend/internal/orders"
	"github.com/webqianduansong/shn-jade-backend/pkg/config"
	"github.com/webqianduansong/shn-jade-backend/pkg/db/models"
	"github.com/webqianduansong/shn-jade-backend/pkg/enums"
	pkgerrors "github.com/webqianduansong/shn-jade-backend/pkg/errors"
	"github.com/webqianduansong/shn-jade-backend/pkg/logger"
	stripeclient "github.com/webqianduansong/shn-jade-backend/pkg/stripe"
	"github.com/webqianduansong/shn-jade-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productFinder interface {
	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type addressFinder interface {
	FindOwned(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error)
}

type sessionCreator interface {
	CreateCheckoutSession(ctx context.Context, in stripeclient.CheckoutSessionInput) (string, string, error)
}

type orderRecorder interface {
	IncOrderCreated()
}

// Input is the checkout request: the lines to buy plus an optional saved
// address reference.
type Input struct {
	UserID    uuid.UUID
	Items     []cart.Item
	AddressID *uuid.UUID
}

// Result carries the hosted payment session the storefront redirects to.
type Result struct {
	SessionID   string `json:"session_id"`
	URL         string `json:"url"`
	OrderNumber string `json:"order_number,omitempty"`
}

// Service turns a cart into a hosted payment session plus a pending order.
type Service interface {
	Checkout(ctx context.Context, input Input) (*Result, error)
}

// ServiceParams collects the checkout dependencies.
type ServiceParams struct {
	Products  productFinder
	Orders    orders.Repository
	Users     userFinder
	Addresses addressFinder
	Stripe    sessionCreator
	Tx        txRunner
	Logger    *logger.Logger
	Shipping  config.ShippingConfig
	SiteURL   string
	Metrics   orderRecorder
}

type service struct {
	products  productFinder
	orders    orders.Repository
	users     userFinder
	addresses addressFinder
	stripe    sessionCreator
	tx        txRunner
	logg      *logger.Logger
	shipping  config.ShippingConfig
	siteURL   string
	metrics   orderRecorder
	now       func() time.Time
}

// NewService validates the dependency set and builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user finder required")
	}
	if params.Stripe == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(params.SiteURL) == "" {
		return nil, fmt.Errorf("site url required")
	}
	return &service{
		products:  params.Products,
		orders:    params.Orders,
		users:     params.Users,
		addresses: params.Addresses,
		stripe:    params.Stripe,
		tx:        params.Tx,
		logg:      params.Logger,
		shipping:  params.Shipping,
		siteURL:   strings.TrimRight(params.SiteURL, "/"),
		metrics:   params.Metrics,
		now:       time.Now,
	}, nil
}

// ShippingCents applies the two-tier policy: free at or above the threshold,
// flat rate below it.
func ShippingCents(cfg config.ShippingConfig, subtotalCents int) int {
	if subtotalCents >= cfg.FreeThresholdCents {
		return 0
	}
	return cfg.FlatRateCents
}

func (s *service) Checkout(ctx context.Context, input Input) (*Result, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	items := cart.Normalize(input.Items)
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no valid items")
	}

	resolved, err := s.resolveLines(ctx, items)
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no valid items")
	}

	subtotal := 0
	for _, line := range resolved {
		subtotal += line.product.PriceCents * line.quantity
	}
	shipping := ShippingCents(s.shipping, subtotal)
	discount := 0
	total := subtotal + shipping - discount

	var shippingAddr *types.Address
	if input.AddressID != nil && s.addresses != nil {
		stored, err := s.addresses.FindOwned(ctx, input.UserID, *input.AddressID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading address")
		}
		shippingAddr = &types.Address{
			Recipient:  stored.Recipient,
			Phone:      stored.Phone,
			Line1:      stored.Line1,
			Line2:      stored.Line2,
			City:       stored.City,
			State:      stored.State,
			PostalCode: stored.PostalCode,
			Country:    stored.Country,
		}
	}

	orderNumber := orders.NewOrderNumber(s.now())

	stripeLines := make([]stripeclient.CheckoutLine, 0, len(resolved))
	for _, line := range resolved {
		stripeLines = append(stripeLines, stripeclient.CheckoutLine{
			Name:           line.product.Name,
			UnitPriceCents: int64(line.product.PriceCents),
			Quantity:       int64(line.quantity),
		})
	}

	sessionID, sessionURL, err := s.stripe.CreateCheckoutSession(ctx, stripeclient.CheckoutSessionInput{
		OrderNumber:   orderNumber,
		Currency:      enums.CurrencyUSD.String(),
		Lines:         stripeLines,
		ShippingCents: int64(shipping),
		SuccessURL:    s.siteURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.siteURL + "/checkout/cancel",
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating payment session")
	}

	result := &Result{SessionID: sessionID, URL: sessionURL}

	// Order persistence is best-effort: a session the user can pay is more
	// valuable than a failed write, and the webhook matches on payment_ref.
	user, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"order_number": orderNumber,
			"session_id":   sessionID,
		}), "checkout user not resolved, skipping order persistence")
		return result, nil
	}

	order := &models.Order{
		OrderNumber:   orderNumber,
		UserID:        user.ID,
		Status:        enums.OrderStatusPending,
		Currency:      enums.CurrencyUSD,
		PaymentRef:    sessionID,
		ShippingAddr:  shippingAddr,
		SubtotalCents: subtotal,
		ShippingCents: shipping,
		DiscountCents: discount,
		TotalCents:    total,
	}
	for _, line := range resolved {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:      line.product.ID,
			Name:           line.product.Name,
			UnitPriceCents: line.product.PriceCents,
			Quantity:       line.quantity,
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, createErr := s.orders.WithTx(tx).Create(ctx, order)
		return createErr
	})
	if err != nil {
		s.logg.Error(s.logg.WithOrderNumber(ctx, orderNumber), "persisting checkout order", err)
		return result, nil
	}

	if s.metrics != nil {
		s.metrics.IncOrderCreated()
	}
	result.OrderNumber = orderNumber
	return result, nil
}

type resolvedLine struct {
	product  models.Product
	quantity int
}

// resolveLines loads products for the requested items, silently dropping
// lines whose product is missing or inactive.
func (s *service) resolveLines(ctx context.Context, items []cart.Item) ([]resolvedLine, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving products")
	}

	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	resolved := make([]resolvedLine, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok || !product.IsActive {
			continue
		}
		resolved = append(resolved, resolvedLine{product: product, quantity: item.Quantity})
	}
	return resolved, nil
}
