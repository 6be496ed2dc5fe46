package wire

import (
	"library-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler, g guards) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(g.auth)

		r.Post("/api/checkout/quote", bookingHandler.Quote)
		r.Post("/api/coupons/validate", bookingHandler.ValidateCoupon)
		r.Post("/api/bookings", bookingHandler.CreateBooking)
		r.Get("/api/bookings/{id}", bookingHandler.GetUserBooking)
		r.Get("/api/bookings/{id}/refund-estimate", bookingHandler.GetRefundEstimate)
		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/bookings", func(r chi.Router) {
		r.Use(g.auth, g.admin)

		r.Get("/", bookingHandler.GetBookings)
		r.Get("/{id}", bookingHandler.GetBookingByID)
		r.Put("/{id}/cancel", bookingHandler.CancelBooking)
	})

	r.Route("/api/admin/advance-bookings", func(r chi.Router) {
		r.Use(g.auth, g.admin)

		r.Get("/", bookingHandler.GetAdvanceBookings)
		r.Post("/", bookingHandler.CreateAdvanceBooking)
		r.Delete("/{id}", bookingHandler.CancelBooking)
	})

	r.Route("/api/admin/coupons", func(r chi.Router) {
		r.Use(g.auth, g.admin)

		r.Get("/", bookingHandler.GetCoupons)
		r.Post("/", bookingHandler.CreateCoupon)
		r.Put("/{id}", bookingHandler.UpdateCoupon)
		r.Delete("/{id}", bookingHandler.DeleteCoupon)
	})
}
