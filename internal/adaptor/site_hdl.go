package adaptor

import (
	"net/http"
	"strings"

	"library-booking/internal/data/entity"
	"library-booking/internal/dto/request"
	"library-booking/internal/usecase"
	"library-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SiteHandler serves the public site content: offers, banners, facilities,
// notices and the gallery
type SiteHandler struct {
	offers  usecase.OfferService
	content usecase.ContentService
	gallery usecase.GalleryService
	log     *zap.Logger
}

func NewSiteHandler(offers usecase.OfferService, content usecase.ContentService, gallery usecase.GalleryService, log *zap.Logger) *SiteHandler {
	return &SiteHandler{
		offers:  offers,
		content: content,
		gallery: gallery,
		log:     log.With(zap.String("handler", "site")),
	}
}

// ==================== OFFERS ====================

// GetCurrentOffers handles GET /api/offers
func (h *SiteHandler) GetCurrentOffers(w http.ResponseWriter, r *http.Request) {
	h.listOffers(w, r, true)
}

// GetAllOffers handles GET /api/admin/offers (admin)
func (h *SiteHandler) GetAllOffers(w http.ResponseWriter, r *http.Request) {
	h.listOffers(w, r, false)
}

func (h *SiteHandler) listOffers(w http.ResponseWriter, r *http.Request, currentOnly bool) {
	offers, err := h.offers.GetOffers(r.Context(), currentOnly)
	if err != nil {
		handleServiceError(w, h.log, err, "get offers")
		return
	}

	utils.ResponseSuccess(w, "success", offers)
}

// CreateOffer handles POST /api/admin/offers (admin)
func (h *SiteHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var req request.OfferRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	offer, err := h.offers.CreateOffer(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create offer")
		return
	}

	utils.ResponseCreated(w, "Offer created", offer)
}

// UpdateOffer handles PUT /api/admin/offers/{id} (admin)
func (h *SiteHandler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	var req request.OfferRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	offer, err := h.offers.UpdateOffer(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update offer")
		return
	}

	utils.ResponseSuccess(w, "Offer updated", offer)
}

// DeleteOffer handles DELETE /api/admin/offers/{id} (admin)
func (h *SiteHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	if err := h.offers.DeleteOffer(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete offer")
		return
	}

	utils.ResponseSuccess(w, "Offer deleted", nil)
}

// ==================== CONTENT ====================

// ListContent serves GET /api/{banners|facilities|notices}; admins also see
// inactive entries
func (h *SiteHandler) ListContent(kind entity.ContentKind, activeOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.content.GetContent(r.Context(), string(kind), activeOnly)
		if err != nil {
			handleServiceError(w, h.log, err, "get "+string(kind)+" content")
			return
		}

		utils.ResponseSuccess(w, "success", items)
	}
}

func (h *SiteHandler) CreateContent(kind entity.ContentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req request.ContentRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		item, err := h.content.CreateContent(r.Context(), string(kind), &req)
		if err != nil {
			handleServiceError(w, h.log, err, "create "+string(kind))
			return
		}

		utils.ResponseCreated(w, "Content created", item)
	}
}

func (h *SiteHandler) UpdateContent(kind entity.ContentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req request.ContentRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		item, err := h.content.UpdateContent(r.Context(), string(kind), chi.URLParam(r, "id"), &req)
		if err != nil {
			handleServiceError(w, h.log, err, "update "+string(kind))
			return
		}

		utils.ResponseSuccess(w, "Content updated", item)
	}
}

func (h *SiteHandler) DeleteContent(kind entity.ContentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.content.DeleteContent(r.Context(), string(kind), chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, h.log, err, "delete "+string(kind))
			return
		}

		utils.ResponseSuccess(w, "Content deleted", nil)
	}
}

// ==================== GALLERY ====================

// GetGallery handles GET /api/gallery?category=
func (h *SiteHandler) GetGallery(w http.ResponseWriter, r *http.Request) {
	h.listImages(w, r, true)
}

// GetAllImages handles GET /api/admin/gallery (admin)
func (h *SiteHandler) GetAllImages(w http.ResponseWriter, r *http.Request) {
	h.listImages(w, r, false)
}

func (h *SiteHandler) listImages(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	images, err := h.gallery.GetImages(r.Context(), category, activeOnly)
	if err != nil {
		handleServiceError(w, h.log, err, "get gallery")
		return
	}

	utils.ResponseSuccess(w, "success", images)
}

// CreateImage handles POST /api/admin/gallery (admin)
func (h *SiteHandler) CreateImage(w http.ResponseWriter, r *http.Request) {
	var req request.GalleryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	image, err := h.gallery.CreateImage(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create gallery image")
		return
	}

	utils.ResponseCreated(w, "Image added", image)
}

// UpdateImage handles PUT /api/admin/gallery/{id} (admin)
func (h *SiteHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	var req request.GalleryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	image, err := h.gallery.UpdateImage(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update gallery image")
		return
	}

	utils.ResponseSuccess(w, "Image updated", image)
}

// DeleteImage handles DELETE /api/admin/gallery/{id} (admin)
func (h *SiteHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if err := h.gallery.DeleteImage(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete gallery image")
		return
	}

	utils.ResponseSuccess(w, "Image deleted", nil)
}
