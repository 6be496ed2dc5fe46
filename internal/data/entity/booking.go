package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusExpired   BookingStatus = "expired"
)

type Booking struct {
	Base
	OrderID     string        `db:"order_id"`
	UserID      uuid.UUID     `db:"user_id"`
	PlanID      uuid.UUID     `db:"plan_id"`
	SeatID      uuid.UUID     `db:"seat_id"`
	StartDate   time.Time     `db:"start_date"`
	EndDate     time.Time     `db:"end_date"`
	CouponID    *uuid.UUID    `db:"coupon_id"`
	Subtotal    float64       `db:"subtotal"`
	Discount    float64       `db:"discount"`
	GST         float64       `db:"gst"`
	TotalAmount float64       `db:"total_amount"`
	Status      BookingStatus `db:"status"`
}

// HoldsSeat reports whether the booking still occupies its seat
func (b *Booking) HoldsSeat() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}
