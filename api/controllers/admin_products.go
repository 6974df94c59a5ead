package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/webqianduansong/shn-jade-backend/api/responses"
	"github.com/webqianduansong/shn-jade-backend/api/validators"
	"github.com/webqianduansong/shn-jade-backend/internal/catalog"
	pkgerrors "github.com/webqianduansong/shn-jade-backend/pkg/errors"
	"github.com/webqianduansong/shn-jade-backend/pkg/logger"
)

type adminProductCreateRequest struct {
	Slug          string  `json:"slug" validate:"required,max=120"`
	Name          string  `json:"name" validate:"required,max=200"`
	NameZh        string  `json:"name_zh" validate:"omitempty,max=200"`
	Description   string  `json:"description" validate:"omitempty,max=5000"`
	DescriptionZh string  `json:"description_zh" validate:"omitempty,max=5000"`
	PriceCents    int     `json:"price_cents" validate:"required,gt=0"`
	CategoryID    *string `json:"category_id" validate:"omitempty,uuid"`
	ImageURL      *string `json:"image_url" validate:"omitempty,url,max=500"`
	IsActive      *bool   `json:"is_active"`
}

type adminProductUpdateRequest struct {
	Name          *string `json:"name" validate:"omitempty,max=200"`
	NameZh        *string `json:"name_zh" validate:"omitempty,max=200"`
	Description   *string `json:"description" validate:"omitempty,max=5000"`
	DescriptionZh *string `json:"description_zh" validate:"omitempty,max=5000"`
	PriceCents    *int    `json:"price_cents" validate:"omitempty,gt=0"`
	CategoryID    *string `json:"category_id" validate:"omitempty,uuid"`
	ImageURL      *string `json:"image_url" validate:"omitempty,url,max=500"`
	IsActive      *bool   `json:"is_active"`
}

type adminCategoryRequest struct {
	Slug      string `json:"slug" validate:"required,max=120"`
	Name      string `json:"name" validate:"required,max=200"`
	NameZh    string `json:"name_zh" validate:"omitempty,max=200"`
	SortOrder int    `json:"sort_order" validate:"gte=0"`
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := validators.ParsePathUUID(*raw, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// AdminListProducts lists catalog products including inactive ones.
func AdminListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		params, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListProducts(r.Context(), catalog.ListProductsInput{
			CategorySlug: strings.TrimSpace(r.URL.Query().Get("category")),
			Query:        validators.SanitizeString(r.URL.Query().Get("q"), maxSearchQueryLen),
			Locale:       resolveLocale(r),
			IncludeAll:   true,
			Pagination:   params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// AdminCreateProduct adds a catalog product with both language variants.
func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		var body adminProductCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoryID, err := parseOptionalUUID(body.CategoryID, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateProduct(r.Context(), catalog.CreateProductInput{
			Slug:          body.Slug,
			Name:          body.Name,
			NameZh:        body.NameZh,
			Description:   body.Description,
			DescriptionZh: body.DescriptionZh,
			PriceCents:    body.PriceCents,
			CategoryID:    categoryID,
			ImageURL:      body.ImageURL,
			IsActive:      body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// AdminUpdateProduct patches a catalog product; omitted fields are untouched.
func AdminUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body adminProductUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoryID, err := parseOptionalUUID(body.CategoryID, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateProduct(r.Context(), productID, catalog.UpdateProductInput{
			Name:          body.Name,
			NameZh:        body.NameZh,
			Description:   body.Description,
			DescriptionZh: body.DescriptionZh,
			PriceCents:    body.PriceCents,
			CategoryID:    categoryID,
			ImageURL:      body.ImageURL,
			IsActive:      body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// AdminDeleteProduct removes a catalog product.
func AdminDeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminCreateCategory adds a catalog category.
func AdminCreateCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		var body adminCategoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateCategory(r.Context(), catalog.CategoryInput{
			Slug:      body.Slug,
			Name:      body.Name,
			NameZh:    body.NameZh,
			SortOrder: body.SortOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// AdminUpdateCategory rewrites a catalog category.
func AdminUpdateCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		categoryID, err := validators.ParsePathUUID(chi.URLParam(r, "categoryID"), "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body adminCategoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateCategory(r.Context(), categoryID, catalog.CategoryInput{
			Slug:      body.Slug,
			Name:      body.Name,
			NameZh:    body.NameZh,
			SortOrder: body.SortOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// AdminDeleteCategory removes a category; products keep their rows and fall
// back to uncategorized.
func AdminDeleteCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		categoryID, err := validators.ParsePathUUID(chi.URLParam(r, "categoryID"), "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteCategory(r.Context(), categoryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
