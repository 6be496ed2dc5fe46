package request

type QuoteRequest struct {
	PlanID     string `json:"plan_id" validate:"required,uuid"`
	CouponCode string `json:"coupon_code,omitempty" validate:"omitempty,max=50"`
}

type CreateBookingRequest struct {
	PlanID        string  `json:"plan_id" validate:"required,uuid"`
	SeatID        string  `json:"seat_id" validate:"required,uuid"`
	StartDate     string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	CouponCode    string  `json:"coupon_code,omitempty" validate:"omitempty,max=50"`
	PaymentMethod string  `json:"payment_method" validate:"required,oneof=wallet online cash"`
	TransactionID *string `json:"transaction_id,omitempty" validate:"omitempty,max=100"`
}

type BookingFilterRequest struct {
	PaginatedRequest
	Status string `json:"status" validate:"omitempty,oneof=pending confirmed cancelled expired"`
}

// AdminBookingRequest books a seat on behalf of a member, usually ahead of time
type AdminBookingRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	CreateBookingRequest
}
