package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/webqianduansong/shn-jade-backend/pkg/db/models"
	"github.com/webqianduansong/shn-jade-backend/pkg/pagination"
)

// ProductDTO is the storefront shape of a catalog product. Name and
// Description are already localized for the requested locale.
type ProductDTO struct {
	ID          uuid.UUID  `json:"id"`
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	PriceCents  int        `json:"price_cents"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	ImageURL    *string    `json:"image_url,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CategoryDTO is the localized category shape.
type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
}

// ProductPage is one cursor page of products.
type ProductPage struct {
	Products   []ProductDTO `json:"products"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

// ListProductsInput captures the storefront browse filters.
type ListProductsInput struct {
	CategorySlug string
	Query        string
	Locale       string
	IncludeAll   bool // admin listings include inactive products
	Pagination   pagination.Params
}

// CreateProductInput holds the admin create payload.
type CreateProductInput struct {
	Slug          string
	Name          string
	NameZh        string
	Description   string
	DescriptionZh string
	PriceCents    int
	CategoryID    *uuid.UUID
	ImageURL      *string
	IsActive      *bool
}

// UpdateProductInput holds the admin update payload; nil fields are unchanged.
type UpdateProductInput struct {
	Name          *string
	NameZh        *string
	Description   *string
	DescriptionZh *string
	PriceCents    *int
	CategoryID    *uuid.UUID
	ImageURL      *string
	IsActive      *bool
}

// CategoryInput holds the admin category create/update payload.
type CategoryInput struct {
	Slug      string
	Name      string
	NameZh    string
	SortOrder int
}

// LocaleZh selects the Chinese storefront copy.
const LocaleZh = "zh"

func productToDTO(p models.Product, locale string) ProductDTO {
	name := p.Name
	description := p.Description
	if locale == LocaleZh {
		if p.NameZh != "" {
			name = p.NameZh
		}
		if p.DescriptionZh != "" {
			description = p.DescriptionZh
		}
	}
	return ProductDTO{
		ID:          p.ID,
		Slug:        p.Slug,
		Name:        name,
		Description: description,
		PriceCents:  p.PriceCents,
		CategoryID:  p.CategoryID,
		ImageURL:    p.ImageURL,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
}

func categoryToDTO(c models.Category, locale string) CategoryDTO {
	name := c.Name
	if locale == LocaleZh && c.NameZh != "" {
		name = c.NameZh
	}
	return CategoryDTO{
		ID:        c.ID,
		Slug:      c.Slug,
		Name:      name,
		SortOrder: c.SortOrder,
	}
}
