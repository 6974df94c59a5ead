package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/webqianduansong/shn-jade-backend/internal/catalog"
)

type stubCatalogService struct {
	listInput catalog.ListProductsInput
	gotSlug   string
	gotLocale string
}

func (s *stubCatalogService) ListProducts(ctx context.Context, input catalog.ListProductsInput) (*catalog.ProductPage, error) {
	s.listInput = input
	return &catalog.ProductPage{Products: []catalog.ProductDTO{}}, nil
}

func (s *stubCatalogService) GetProduct(ctx context.Context, slug string, locale string) (*catalog.ProductDTO, error) {
	s.gotSlug = slug
	s.gotLocale = locale
	return &catalog.ProductDTO{Slug: slug}, nil
}

func (s *stubCatalogService) ListCategories(ctx context.Context, locale string) ([]catalog.CategoryDTO, error) {
	s.gotLocale = locale
	return []catalog.CategoryDTO{}, nil
}

func (s *stubCatalogService) CreateProduct(ctx context.Context, input catalog.CreateProductInput) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{Slug: input.Slug}, nil
}

func (s *stubCatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input catalog.UpdateProductInput) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{ID: id}, nil
}

func (s *stubCatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *stubCatalogService) CreateCategory(ctx context.Context, input catalog.CategoryInput) (*catalog.CategoryDTO, error) {
	return &catalog.CategoryDTO{Slug: input.Slug}, nil
}

func (s *stubCatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, input catalog.CategoryInput) (*catalog.CategoryDTO, error) {
	return &catalog.CategoryDTO{ID: id}, nil
}

func (s *stubCatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return nil
}

func TestListProductsForwardsFilters(t *testing.T) {
	svc := &stubCatalogService{}
	handler := ListProducts(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?category=bangles&q=ice+jade&locale=zh&limit=10", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.listInput.CategorySlug != "bangles" {
		t.Fatalf("category filter lost: %q", svc.listInput.CategorySlug)
	}
	if svc.listInput.Query != "ice jade" {
		t.Fatalf("query filter lost: %q", svc.listInput.Query)
	}
	if svc.listInput.Locale != "zh" {
		t.Fatalf("locale lost: %q", svc.listInput.Locale)
	}
	if svc.listInput.IncludeAll {
		t.Fatalf("storefront listing must exclude inactive products")
	}
	if svc.listInput.Pagination.Limit != 10 {
		t.Fatalf("limit lost: %d", svc.listInput.Pagination.Limit)
	}
}

func TestListProductsLocaleFromAcceptLanguage(t *testing.T) {
	svc := &stubCatalogService{}
	handler := ListProducts(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.listInput.Locale != "zh" {
		t.Fatalf("expected zh from Accept-Language, got %q", svc.listInput.Locale)
	}
}

func TestGetProductRequiresSlug(t *testing.T) {
	handler := GetProduct(&stubCatalogService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/", nil)
	req = withURLParam(req, "slug", "")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetProductDefaultsToEnglish(t *testing.T) {
	svc := &stubCatalogService{}
	handler := GetProduct(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/imperial-bangle", nil)
	req = withURLParam(req, "slug", "imperial-bangle")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.gotSlug != "imperial-bangle" || svc.gotLocale != "en" {
		t.Fatalf("unexpected lookup: slug=%q locale=%q", svc.gotSlug, svc.gotLocale)
	}
}

func TestAdminListProductsIncludesInactive(t *testing.T) {
	svc := &stubCatalogService{}
	handler := AdminListProducts(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !svc.listInput.IncludeAll {
		t.Fatalf("admin listing must include inactive products")
	}
}
