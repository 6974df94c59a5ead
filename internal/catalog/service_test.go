package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webqianduansong/shn-jade-backend/pkg/db/models"
	pkgerrors "github.com/webqianduansong/shn-jade-backend/pkg/errors"
	"github.com/webqianduansong/shn-jade-backend/pkg/pagination"
)

type stubRepo struct {
	Repository
	products     map[uuid.UUID]*models.Product
	bySlug       map[string]*models.Product
	categories   map[uuid.UUID]*models.Category
	productCount int64
	listResult   []models.Product
	deletedIDs   []uuid.UUID
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		products:   map[uuid.UUID]*models.Product{},
		bySlug:     map[string]*models.Product{},
		categories: map[uuid.UUID]*models.Category{},
	}
}

func (s *stubRepo) addProduct(p *models.Product) {
	s.products[p.ID] = p
	s.bySlug[p.Slug] = p
}

func (s *stubRepo) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	if p, ok := s.bySlug[slug]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) ListProducts(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Product, error) {
	return s.listResult, nil
}

func (s *stubRepo) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	p.ID = uuid.New()
	s.addProduct(p)
	return p, nil
}

func (s *stubRepo) UpdateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	s.addProduct(p)
	return p, nil
}

func (s *stubRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	s.deletedIDs = append(s.deletedIDs, id)
	delete(s.products, id)
	return nil
}

func (s *stubRepo) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if c, ok := s.categories[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	for _, c := range s.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) CountProductsInCategory(ctx context.Context, id uuid.UUID) (int64, error) {
	return s.productCount, nil
}

func (s *stubRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	delete(s.categories, id)
	return nil
}

func TestGetProductLocalizesChineseCopy(t *testing.T) {
	repo := newStubRepo()
	repo.addProduct(&models.Product{
		ID:       uuid.New(),
		Slug:     "imperial-bangle",
		Name:     "Imperial Bangle",
		NameZh:   "帝王玉镯",
		IsActive: true,
	})

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ctx := context.Background()
	en, err := svc.GetProduct(ctx, "imperial-bangle", "en")
	if err != nil {
		t.Fatalf("get en: %v", err)
	}
	if en.Name != "Imperial Bangle" {
		t.Fatalf("expected english name, got %q", en.Name)
	}

	zh, err := svc.GetProduct(ctx, "imperial-bangle", "zh")
	if err != nil {
		t.Fatalf("get zh: %v", err)
	}
	if zh.Name != "帝王玉镯" {
		t.Fatalf("expected chinese name, got %q", zh.Name)
	}
}

func TestGetProductFallsBackWhenZhMissing(t *testing.T) {
	repo := newStubRepo()
	repo.addProduct(&models.Product{
		ID:       uuid.New(),
		Slug:     "plain-beads",
		Name:     "Plain Beads",
		IsActive: true,
	})

	svc, _ := NewService(repo)
	got, err := svc.GetProduct(context.Background(), "plain-beads", "zh")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Plain Beads" {
		t.Fatalf("expected english fallback, got %q", got.Name)
	}
}

func TestGetProductHidesInactive(t *testing.T) {
	repo := newStubRepo()
	repo.addProduct(&models.Product{
		ID:       uuid.New(),
		Slug:     "retired-pendant",
		Name:     "Retired Pendant",
		IsActive: false,
	})

	svc, _ := NewService(repo)
	_, err := svc.GetProduct(context.Background(), "retired-pendant", "en")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListProductsEmitsNextCursor(t *testing.T) {
	repo := newStubRepo()
	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		repo.listResult = append(repo.listResult, models.Product{
			ID:        uuid.New(),
			Slug:      uuid.NewString(),
			Name:      "Item",
			IsActive:  true,
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}

	svc, _ := NewService(repo)
	page, err := svc.ListProducts(context.Background(), ListProductsInput{
		Pagination: pagination.Params{Limit: 2},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(page.Products))
	}
	if page.NextCursor == nil {
		t.Fatal("expected next cursor for the buffered row")
	}
}

func TestDeleteCategoryWithProductsConflicts(t *testing.T) {
	repo := newStubRepo()
	category := &models.Category{ID: uuid.New(), Slug: "bangles", Name: "Bangles"}
	repo.categories[category.ID] = category
	repo.productCount = 2

	svc, _ := NewService(repo)
	err := svc.DeleteCategory(context.Background(), category.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	repo.productCount = 0
	if err := svc.DeleteCategory(context.Background(), category.ID); err != nil {
		t.Fatalf("expected delete to succeed, got %v", err)
	}
}

func TestCreateProductValidatesPriceAndSlug(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, CreateProductInput{Slug: "x", Name: "X", PriceCents: 0})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := svc.CreateProduct(ctx, CreateProductInput{Slug: "x", Name: "X", PriceCents: 100}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = svc.CreateProduct(ctx, CreateProductInput{Slug: "x", Name: "Other", PriceCents: 100})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on duplicate slug, got %v", err)
	}
}
