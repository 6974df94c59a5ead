package banners

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webqianduansong/shn-jade-backend/pkg/db/models"
	pkgerrors "github.com/webqianduansong/shn-jade-backend/pkg/errors"
)

// BannerDTO is the localized banner shape.
type BannerDTO struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url"`
	LinkURL   *string   `json:"link_url,omitempty"`
	SortOrder int       `json:"sort_order"`
	IsActive  bool      `json:"is_active"`
}

// BannerInput holds the admin create/update payload.
type BannerInput struct {
	Title     string
	TitleZh   string
	ImageURL  string
	LinkURL   *string
	SortOrder int
	IsActive  *bool
}

// Service exposes homepage banner operations.
type Service interface {
	ListActive(ctx context.Context, locale string) ([]BannerDTO, error)
	ListAll(ctx context.Context, locale string) ([]BannerDTO, error)
	Create(ctx context.Context, input BannerInput) (*BannerDTO, error)
	Update(ctx context.Context, id uuid.UUID, input BannerInput) (*BannerDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds the banners service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("banners repository required")
	}
	return &service{repo: repo}, nil
}

func toDTO(b models.Banner, locale string) BannerDTO {
	title := b.Title
	if locale == "zh" && b.TitleZh != "" {
		title = b.TitleZh
	}
	return BannerDTO{
		ID:        b.ID,
		Title:     title,
		ImageURL:  b.ImageURL,
		LinkURL:   b.LinkURL,
		SortOrder: b.SortOrder,
		IsActive:  b.IsActive,
	}
}

func (s *service) ListActive(ctx context.Context, locale string) ([]BannerDTO, error) {
	return s.list(ctx, locale, true)
}

func (s *service) ListAll(ctx context.Context, locale string) ([]BannerDTO, error) {
	return s.list(ctx, locale, false)
}

func (s *service) list(ctx context.Context, locale string, activeOnly bool) ([]BannerDTO, error) {
	rows, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing banners")
	}
	out := make([]BannerDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row, locale))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, input BannerInput) (*BannerDTO, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.ImageURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and image_url are required")
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	banner := &models.Banner{
		Title:     input.Title,
		TitleZh:   input.TitleZh,
		ImageURL:  input.ImageURL,
		LinkURL:   input.LinkURL,
		SortOrder: input.SortOrder,
		IsActive:  isActive,
	}
	created, err := s.repo.Create(ctx, banner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating banner")
	}

	dto := toDTO(*created, "")
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input BannerInput) (*BannerDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "banner id is required")
	}

	banner, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "banner not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading banner")
	}

	if strings.TrimSpace(input.Title) != "" {
		banner.Title = input.Title
	}
	banner.TitleZh = input.TitleZh
	if strings.TrimSpace(input.ImageURL) != "" {
		banner.ImageURL = input.ImageURL
	}
	banner.LinkURL = input.LinkURL
	banner.SortOrder = input.SortOrder
	if input.IsActive != nil {
		banner.IsActive = *input.IsActive
	}

	updated, err := s.repo.Update(ctx, banner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating banner")
	}

	dto := toDTO(*updated, "")
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "banner id is required")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "banner not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading banner")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting banner")
	}
	return nil
}
