package response

import (
	"time"

	"library-booking/internal/data/entity"
	"library-booking/pkg/pricing"
	"library-booking/pkg/utils"
)

type BookingResponse struct {
	ID          string               `json:"id"`
	OrderID     string               `json:"order_id"`
	UserID      string               `json:"user_id"`
	PlanID      string               `json:"plan_id"`
	PlanName    string               `json:"plan_name,omitempty"`
	SeatID      string               `json:"seat_id"`
	SeatNumber  string               `json:"seat_number,omitempty"`
	StartDate   string               `json:"start_date"`
	EndDate     string               `json:"end_date"`
	Subtotal    float64              `json:"subtotal"`
	Discount    float64              `json:"discount"`
	GST         float64              `json:"gst"`
	TotalAmount float64              `json:"total_amount"`
	Status      entity.BookingStatus `json:"status"`
	Payment     *PaymentResponse     `json:"payment,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

type QuoteResponse struct {
	PlanID       string  `json:"plan_id"`
	PlanName     string  `json:"plan_name"`
	DurationDays int     `json:"duration_days"`
	CouponCode   string  `json:"coupon_code,omitempty"`
	Subtotal     float64 `json:"subtotal"`
	Discount     float64 `json:"discount"`
	Taxable      float64 `json:"taxable"`
	GSTPercent   float64 `json:"gst_percent"`
	GST          float64 `json:"gst"`
	Total        float64 `json:"total"`
	Currency     string  `json:"currency"`
}

type RefundEstimateResponse struct {
	BookingID     string  `json:"booking_id"`
	StartDate     string  `json:"start_date"`
	DaysToStart   int     `json:"days_to_start"`
	RefundPercent int     `json:"refund_percent"`
	RefundAmount  float64 `json:"refund_amount"`
	Eligible      bool    `json:"eligible"`
}

// BookingToResponse converts without plan/seat names; callers fill them when loaded
func BookingToResponse(booking *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:          booking.ID.String(),
		OrderID:     booking.OrderID,
		UserID:      booking.UserID.String(),
		PlanID:      booking.PlanID.String(),
		SeatID:      booking.SeatID.String(),
		StartDate:   booking.StartDate.Format(utils.DateLayout),
		EndDate:     booking.EndDate.Format(utils.DateLayout),
		Subtotal:    booking.Subtotal,
		Discount:    booking.Discount,
		GST:         booking.GST,
		TotalAmount: booking.TotalAmount,
		Status:      booking.Status,
		CreatedAt:   booking.CreatedAt,
	}
}

func QuoteToResponse(plan *entity.Plan, couponCode string, b pricing.Breakdown, currency string) QuoteResponse {
	return QuoteResponse{
		PlanID:       plan.ID.String(),
		PlanName:     plan.Name,
		DurationDays: plan.DurationDays,
		CouponCode:   couponCode,
		Subtotal:     b.Subtotal,
		Discount:     b.Discount,
		Taxable:      b.Taxable,
		GSTPercent:   b.GSTPercent,
		GST:          b.GST,
		Total:        b.Total,
		Currency:     currency,
	}
}

func RefundEstimateToResponse(booking *entity.Booking, q pricing.RefundQuote) RefundEstimateResponse {
	return RefundEstimateResponse{
		BookingID:     booking.ID.String(),
		StartDate:     booking.StartDate.Format(utils.DateLayout),
		DaysToStart:   q.DaysToStart,
		RefundPercent: q.Percent,
		RefundAmount:  q.Amount,
		Eligible:      q.Eligible,
	}
}
