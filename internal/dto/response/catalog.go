package response

import (
	"time"

	"library-booking/internal/data/entity"
	"library-booking/pkg/utils"
)

type PlanResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	DurationDays int       `json:"duration_days"`
	Price        float64   `json:"price"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type SeatResponse struct {
	ID         string `json:"id"`
	SeatNumber string `json:"seat_number"`
	Section    string `json:"section"`
	IsActive   bool   `json:"is_active"`
}

type SeatAvailability struct {
	SeatResponse
	IsAvailable bool `json:"is_available"`
}

type SeatAvailabilityResponse struct {
	StartDate string             `json:"start_date"`
	EndDate   string             `json:"end_date"`
	Seats     []SeatAvailability `json:"seats"`
}

type OfferResponse struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Description     *string `json:"description,omitempty"`
	DiscountPercent float64 `json:"discount_percent"`
	ValidFrom       string  `json:"valid_from"`
	ValidUntil      string  `json:"valid_until"`
	IsActive        bool    `json:"is_active"`
}

type ContentResponse struct {
	ID        string             `json:"id"`
	Kind      entity.ContentKind `json:"kind"`
	Title     string             `json:"title"`
	Body      *string            `json:"body,omitempty"`
	ImageURL  *string            `json:"image_url,omitempty"`
	SortOrder int                `json:"sort_order"`
	IsActive  bool               `json:"is_active"`
}

type GalleryImageResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url"`
	Category  string    `json:"category"`
	SortOrder int       `json:"sort_order"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func PlanToResponse(plan *entity.Plan) PlanResponse {
	return PlanResponse{
		ID:           plan.ID.String(),
		Name:         plan.Name,
		Description:  plan.Description,
		DurationDays: plan.DurationDays,
		Price:        plan.Price,
		IsActive:     plan.IsActive,
		CreatedAt:    plan.CreatedAt,
	}
}

func SeatToResponse(seat *entity.Seat) SeatResponse {
	return SeatResponse{
		ID:         seat.ID.String(),
		SeatNumber: seat.SeatNumber,
		Section:    seat.Section,
		IsActive:   seat.IsActive,
	}
}

func OfferToResponse(offer *entity.Offer) OfferResponse {
	return OfferResponse{
		ID:              offer.ID.String(),
		Title:           offer.Title,
		Description:     offer.Description,
		DiscountPercent: offer.DiscountPercent,
		ValidFrom:       offer.ValidFrom.Format(utils.DateLayout),
		ValidUntil:      offer.ValidUntil.Format(utils.DateLayout),
		IsActive:        offer.IsActive,
	}
}

func ContentToResponse(content *entity.SiteContent) ContentResponse {
	return ContentResponse{
		ID:        content.ID.String(),
		Kind:      content.Kind,
		Title:     content.Title,
		Body:      content.Body,
		ImageURL:  content.ImageURL,
		SortOrder: content.SortOrder,
		IsActive:  content.IsActive,
	}
}

func GalleryImageToResponse(image *entity.GalleryImage) GalleryImageResponse {
	return GalleryImageResponse{
		ID:        image.ID.String(),
		Title:     image.Title,
		ImageURL:  image.ImageURL,
		Category:  image.Category,
		SortOrder: image.SortOrder,
		IsActive:  image.IsActive,
		CreatedAt: image.CreatedAt,
	}
}
