package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webqianduansong/shn-jade-backend/pkg/db/models"
	pkgerrors "github.com/webqianduansong/shn-jade-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productFinder interface {
	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// LineDTO is one enriched cart line.
type LineDTO struct {
	ProductID  uuid.UUID `json:"product_id"`
	Slug       string    `json:"slug"`
	Name       string    `json:"name"`
	PriceCents int       `json:"price_cents"`
	ImageURL   *string   `json:"image_url,omitempty"`
	Quantity   int       `json:"quantity"`
	LineCents  int       `json:"line_cents"`
}

// CartDTO is the enriched cart returned to the storefront. Lines whose
// product no longer exists or is inactive are dropped from the view.
type CartDTO struct {
	Lines         []LineDTO `json:"lines"`
	SubtotalCents int       `json:"subtotal_cents"`
}

// Service exposes cart operations for authenticated users plus enrichment
// for the anonymous cookie cart.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID, locale string) (*CartDTO, error)
	Add(ctx context.Context, userID, productID uuid.UUID, qty int) error
	Update(ctx context.Context, userID, productID uuid.UUID, qty int) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	MergeOnLogin(ctx context.Context, userID uuid.UUID, cookieItems []Item) error
	Enrich(ctx context.Context, items []Item, locale string) (*CartDTO, error)
	Snapshot(ctx context.Context, userID uuid.UUID) ([]Item, error)
}

type service struct {
	repo     Repository
	products productFinder
	tx       txRunner
}

// NewService builds the cart service.
func NewService(repo Repository, products productFinder, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, products: products, tx: tx}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID, locale string) (*CartDTO, error) {
	items, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Enrich(ctx, items, locale)
}

// Snapshot returns the raw items of the user's database cart.
func (s *service) Snapshot(ctx context.Context, userID uuid.UUID) ([]Item, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	cart, err := s.repo.FindWithItems(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	items := make([]Item, 0, len(cart.Items))
	for _, row := range cart.Items {
		items = append(items, Item{ProductID: row.ProductID, Quantity: row.Quantity})
	}
	return Normalize(items), nil
}

func (s *service) Add(ctx context.Context, userID, productID uuid.UUID, qty int) error {
	if err := validateLine(userID, productID, qty); err != nil {
		return err
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := repo.GetOrCreate(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving cart")
		}
		if err := repo.AddQuantity(ctx, cart.ID, productID, qty); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adding cart item")
		}
		return nil
	})
}

func (s *service) Update(ctx context.Context, userID, productID uuid.UUID, qty int) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if qty <= 0 {
		return s.Remove(ctx, userID, productID)
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := repo.GetOrCreate(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving cart")
		}
		if err := repo.SetQuantity(ctx, cart.ID, productID, qty); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart item")
		}
		return nil
	})
}

func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	cart, err := s.repo.FindWithItems(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	if err := s.repo.RemoveItem(ctx, cart.ID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart item")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	cart, err := s.repo.FindWithItems(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	if err := s.repo.ClearItems(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
	}
	return nil
}

// MergeOnLogin folds the anonymous cookie cart into the user's database
// cart. Quantities are summed per product and the replacement happens in a
// single transaction; the login controller clears the cookie afterwards.
func (s *service) MergeOnLogin(ctx context.Context, userID uuid.UUID, cookieItems []Item) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	cookieItems = Normalize(cookieItems)
	if len(cookieItems) == 0 {
		return nil
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := repo.GetOrCreate(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving cart")
		}

		stored, err := repo.FindWithItems(ctx, userID)
		var current []Item
		if err == nil {
			for _, row := range stored.Items {
				current = append(current, Item{ProductID: row.ProductID, Quantity: row.Quantity})
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart items")
		}

		merged := MergeItems(current, cookieItems)
		if err := repo.ReplaceItems(ctx, cart.ID, merged); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replacing cart items")
		}
		return nil
	})
}

// Enrich resolves product data for raw items, dropping lines whose product
// is gone or inactive.
func (s *service) Enrich(ctx context.Context, items []Item, locale string) (*CartDTO, error) {
	items = Normalize(items)
	dto := &CartDTO{Lines: []LineDTO{}}
	if len(items) == 0 {
		return dto, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving cart products")
	}

	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok || !product.IsActive {
			continue
		}
		name := product.Name
		if locale == "zh" && product.NameZh != "" {
			name = product.NameZh
		}
		line := LineDTO{
			ProductID:  product.ID,
			Slug:       product.Slug,
			Name:       name,
			PriceCents: product.PriceCents,
			ImageURL:   product.ImageURL,
			Quantity:   item.Quantity,
			LineCents:  product.PriceCents * item.Quantity,
		}
		dto.Lines = append(dto.Lines, line)
		dto.SubtotalCents += line.LineCents
	}
	return dto, nil
}

func (s *service) ensureProduct(ctx context.Context, productID uuid.UUID) error {
	products, err := s.products.FindProductsByIDs(ctx, []uuid.UUID{productID})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving product")
	}
	if len(products) == 0 || !products[0].IsActive {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func validateLine(userID, productID uuid.UUID, qty int) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	return nil
}
