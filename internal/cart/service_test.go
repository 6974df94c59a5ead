package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webqianduansong/shn-jade-backend/pkg/db/models"
	pkgerrors "github.com/webqianduansong/shn-jade-backend/pkg/errors"
)

type memoryRepo struct {
	carts map[uuid.UUID]*models.Cart // by user id
	items map[uuid.UUID][]Item       // by cart id
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		carts: map[uuid.UUID]*models.Cart{},
		items: map[uuid.UUID][]Item{},
	}
}

func (m *memoryRepo) WithTx(tx *gorm.DB) Repository { return m }

func (m *memoryRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if cart, ok := m.carts[userID]; ok {
		return cart, nil
	}
	cart := &models.Cart{ID: uuid.New(), UserID: userID}
	m.carts[userID] = cart
	return cart, nil
}

func (m *memoryRepo) FindWithItems(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, ok := m.carts[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *cart
	out.Items = nil
	for _, item := range m.items[cart.ID] {
		out.Items = append(out.Items, models.CartItem{
			CartID:    cart.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return &out, nil
}

func (m *memoryRepo) AddQuantity(ctx context.Context, cartID, productID uuid.UUID, qty int) error {
	m.items[cartID] = AddItem(m.items[cartID], productID, qty)
	return nil
}

func (m *memoryRepo) SetQuantity(ctx context.Context, cartID, productID uuid.UUID, qty int) error {
	m.items[cartID] = SetItem(m.items[cartID], productID, qty)
	return nil
}

func (m *memoryRepo) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	m.items[cartID] = RemoveItem(m.items[cartID], productID)
	return nil
}

func (m *memoryRepo) ReplaceItems(ctx context.Context, cartID uuid.UUID, items []Item) error {
	m.items[cartID] = Normalize(items)
	return nil
}

func (m *memoryRepo) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	delete(m.items, cartID)
	return nil
}

type stubProducts struct {
	products map[uuid.UUID]models.Product
}

func (s *stubProducts) FindProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, products ...models.Product) (Service, *memoryRepo, *stubProducts) {
	t.Helper()
	repo := newMemoryRepo()
	finder := &stubProducts{products: map[uuid.UUID]models.Product{}}
	for _, p := range products {
		finder.products[p.ID] = p
	}
	svc, err := NewService(repo, finder, fakeTx{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, finder
}

func activeProduct(name string, priceCents int) models.Product {
	return models.Product{
		ID:         uuid.New(),
		Slug:       uuid.NewString(),
		Name:       name,
		PriceCents: priceCents,
		IsActive:   true,
	}
}

func TestServiceAddIsCommutative(t *testing.T) {
	product := activeProduct("Jade Beads", 8000)
	userA := uuid.New()
	userB := uuid.New()
	svc, _, _ := newTestService(t, product)
	ctx := context.Background()

	if err := svc.Add(ctx, userA, product.ID, 2); err != nil {
		t.Fatalf("add 2: %v", err)
	}
	if err := svc.Add(ctx, userA, product.ID, 3); err != nil {
		t.Fatalf("add 3: %v", err)
	}

	if err := svc.Add(ctx, userB, product.ID, 3); err != nil {
		t.Fatalf("add 3 first: %v", err)
	}
	if err := svc.Add(ctx, userB, product.ID, 2); err != nil {
		t.Fatalf("add 2 second: %v", err)
	}

	for _, userID := range []uuid.UUID{userA, userB} {
		items, err := svc.Snapshot(ctx, userID)
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		if got := findQty(t, items, product.ID); got != 5 {
			t.Fatalf("expected quantity 5 for %s, got %d", userID, got)
		}
	}
}

func TestServiceAddValidatesInput(t *testing.T) {
	product := activeProduct("Jade Beads", 8000)
	svc, _, _ := newTestService(t, product)
	ctx := context.Background()
	userID := uuid.New()

	err := svc.Add(ctx, userID, product.ID, 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero qty, got %v", err)
	}

	err = svc.Add(ctx, userID, uuid.Nil, 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for nil product, got %v", err)
	}

	err = svc.Add(ctx, userID, uuid.New(), 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}

	err = svc.Add(ctx, uuid.Nil, product.ID, 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for missing user, got %v", err)
	}
}

func TestMergeOnLoginSumsCookieIntoStoredCart(t *testing.T) {
	productA := activeProduct("Bangle", 45000)
	productB := activeProduct("Pendant", 12000)
	svc, _, _ := newTestService(t, productA, productB)
	ctx := context.Background()
	userID := uuid.New()

	if err := svc.Add(ctx, userID, productA.ID, 1); err != nil {
		t.Fatalf("seed db cart: %v", err)
	}

	cookie := []Item{
		{ProductID: productA.ID, Quantity: 2},
		{ProductID: productB.ID, Quantity: 1},
	}
	if err := svc.MergeOnLogin(ctx, userID, cookie); err != nil {
		t.Fatalf("merge: %v", err)
	}

	items, err := svc.Snapshot(ctx, userID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if got := findQty(t, items, productA.ID); got != 3 {
		t.Fatalf("expected merged quantity 3, got %d", got)
	}
	if got := findQty(t, items, productB.ID); got != 1 {
		t.Fatalf("expected merged quantity 1, got %d", got)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 merged lines, got %d", len(items))
	}
}

func TestMergeOnLoginWithEmptyCookieIsNoOp(t *testing.T) {
	product := activeProduct("Bangle", 45000)
	svc, _, _ := newTestService(t, product)
	ctx := context.Background()
	userID := uuid.New()

	if err := svc.Add(ctx, userID, product.ID, 1); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.MergeOnLogin(ctx, userID, nil); err != nil {
		t.Fatalf("merge: %v", err)
	}

	items, _ := svc.Snapshot(ctx, userID)
	if got := findQty(t, items, product.ID); got != 1 {
		t.Fatalf("expected untouched quantity 1, got %d", got)
	}
}

func TestEnrichDropsMissingAndInactiveProducts(t *testing.T) {
	active := activeProduct("Bangle", 45000)
	inactive := activeProduct("Retired", 9000)
	inactive.IsActive = false
	svc, _, _ := newTestService(t, active, inactive)

	dto, err := svc.Enrich(context.Background(), []Item{
		{ProductID: active.ID, Quantity: 2},
		{ProductID: inactive.ID, Quantity: 1},
		{ProductID: uuid.New(), Quantity: 4},
	}, "en")
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}

	if len(dto.Lines) != 1 {
		t.Fatalf("expected 1 surviving line, got %d", len(dto.Lines))
	}
	if dto.Lines[0].ProductID != active.ID {
		t.Fatalf("unexpected product %s", dto.Lines[0].ProductID)
	}
	if dto.SubtotalCents != 90000 {
		t.Fatalf("expected subtotal 90000, got %d", dto.SubtotalCents)
	}
}

func TestUpdateWithZeroQuantityRemovesLine(t *testing.T) {
	product := activeProduct("Beads", 8000)
	svc, _, _ := newTestService(t, product)
	ctx := context.Background()
	userID := uuid.New()

	if err := svc.Add(ctx, userID, product.ID, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Update(ctx, userID, product.ID, 0); err != nil {
		t.Fatalf("update to zero: %v", err)
	}

	items, _ := svc.Snapshot(ctx, userID)
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %v", items)
	}
}
