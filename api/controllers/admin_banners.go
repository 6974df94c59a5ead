package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/webqianduansong/shn-jade-backend/api/responses"
	"github.com/webqianduansong/shn-jade-backend/api/validators"
	"github.com/webqianduansong/shn-jade-backend/internal/banners"
	pkgerrors "github.com/webqianduansong/shn-jade-backend/pkg/errors"
	"github.com/webqianduansong/shn-jade-backend/pkg/logger"
)

type adminBannerRequest struct {
	Title     string  `json:"title" validate:"required,max=200"`
	TitleZh   string  `json:"title_zh" validate:"omitempty,max=200"`
	ImageURL  string  `json:"image_url" validate:"required,url,max=500"`
	LinkURL   *string `json:"link_url" validate:"omitempty,url,max=500"`
	SortOrder int     `json:"sort_order" validate:"gte=0"`
	IsActive  *bool   `json:"is_active"`
}

func (req adminBannerRequest) toInput() banners.BannerInput {
	return banners.BannerInput{
		Title:     req.Title,
		TitleZh:   req.TitleZh,
		ImageURL:  req.ImageURL,
		LinkURL:   req.LinkURL,
		SortOrder: req.SortOrder,
		IsActive:  req.IsActive,
	}
}

// AdminListBanners lists all banners including inactive ones.
func AdminListBanners(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banners service unavailable"))
			return
		}

		list, err := svc.ListAll(r.Context(), resolveLocale(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string][]banners.BannerDTO{"banners": list})
	}
}

// AdminCreateBanner adds a homepage banner.
func AdminCreateBanner(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banners service unavailable"))
			return
		}
		var body adminBannerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// AdminUpdateBanner rewrites a homepage banner.
func AdminUpdateBanner(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banners service unavailable"))
			return
		}
		bannerID, err := validators.ParsePathUUID(chi.URLParam(r, "bannerID"), "banner_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body adminBannerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), bannerID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// AdminDeleteBanner removes a homepage banner.
func AdminDeleteBanner(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banners service unavailable"))
			return
		}
		bannerID, err := validators.ParsePathUUID(chi.URLParam(r, "bannerID"), "banner_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), bannerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
