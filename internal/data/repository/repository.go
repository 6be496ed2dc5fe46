package repository

import (
	"errors"

	"library-booking/pkg/database"

	"go.uber.org/zap"
)

var (
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrAlreadyProcessed    = errors.New("refund request already processed")
	ErrSeatTaken           = errors.New("seat is already booked for the selected dates")

	// ErrStatusChanged means a guarded status update found the row in a
	// different state than the caller read
	ErrStatusChanged = errors.New("status was changed by another request")
)

// exclusionViolation is raised by bookings_seat_no_overlap
const exclusionViolation = "23P01"

// scanner is satisfied by both pgx.Row and pgx.Rows
type scanner interface {
	Scan(dest ...any) error
}

type Repository struct {
	User         UserRepository
	Session      SessionRepository
	Wallet       WalletRepository
	Plan         PlanRepository
	Seat         SeatRepository
	Coupon       CouponRepository
	Booking      BookingRepository
	Payment      PaymentRepository
	Gateway      GatewayRepository
	Refund       RefundRepository
	Offer        OfferRepository
	Content      ContentRepository
	Gallery      GalleryRepository
	Notification NotificationRepository
	Support      SupportRepository
	Audit        AuditRepository
	Stats        StatsRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:         NewUserRepository(db, log),
		Session:      NewSessionRepository(db, log),
		Wallet:       NewWalletRepository(db, log),
		Plan:         NewPlanRepository(db, log),
		Seat:         NewSeatRepository(db, log),
		Coupon:       NewCouponRepository(db, log),
		Booking:      NewBookingRepository(db, log),
		Payment:      NewPaymentRepository(db, log),
		Gateway:      NewGatewayRepository(db, log),
		Refund:       NewRefundRepository(db, log),
		Offer:        NewOfferRepository(db, log),
		Content:      NewContentRepository(db, log),
		Gallery:      NewGalleryRepository(db, log),
		Notification: NewNotificationRepository(db, log),
		Support:      NewSupportRepository(db, log),
		Audit:        NewAuditRepository(db, log),
		Stats:        NewStatsRepository(db, log),
	}
}
