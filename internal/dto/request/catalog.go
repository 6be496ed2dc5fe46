package request

type PlanRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Description  *string `json:"description,omitempty"`
	DurationDays int     `json:"duration_days" validate:"required,min=1,max=366"`
	Price        float64 `json:"price" validate:"gte=0"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

type SeatRequest struct {
	SeatNumber string `json:"seat_number" validate:"required,max=20"`
	Section    string `json:"section" validate:"max=50"`
	IsActive   *bool  `json:"is_active,omitempty"`
}

type OfferRequest struct {
	Title           string  `json:"title" validate:"required,max=150"`
	Description     *string `json:"description,omitempty"`
	DiscountPercent float64 `json:"discount_percent" validate:"gte=0,lte=100"`
	ValidFrom       string  `json:"valid_from" validate:"required,datetime=2006-01-02"`
	ValidUntil      string  `json:"valid_until" validate:"required,datetime=2006-01-02"`
	IsActive        *bool   `json:"is_active,omitempty"`
}

// ContentRequest is shared by banners, facilities and notices
type ContentRequest struct {
	Title     string  `json:"title" validate:"required,max=150"`
	Body      *string `json:"body,omitempty"`
	ImageURL  *string `json:"image_url,omitempty" validate:"omitempty,url"`
	SortOrder int     `json:"sort_order"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

type GalleryRequest struct {
	Title     string `json:"title" validate:"required,max=150"`
	ImageURL  string `json:"image_url" validate:"required,url"`
	Category  string `json:"category" validate:"max=50"`
	SortOrder int    `json:"sort_order"`
	IsActive  *bool  `json:"is_active,omitempty"`
}
