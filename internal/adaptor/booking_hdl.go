package adaptor

import (
	"net/http"
	"strings"

	"library-booking/internal/dto/request"
	"library-booking/internal/usecase"
	"library-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	coupons usecase.CouponService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, coupons usecase.CouponService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		coupons: coupons,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// Quote handles POST /api/checkout/quote (protected)
func (h *BookingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req request.QuoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	quote, err := h.service.Quote(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "quote")
		return
	}

	utils.ResponseSuccess(w, "success", quote)
}

// ValidateCoupon handles POST /api/coupons/validate (protected)
func (h *BookingHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req request.ValidateCouponRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.coupons.Validate(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "validate coupon")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// CreateBooking handles POST /api/bookings (protected)
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.CreateBookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "Booking created", booking)
}

// GetUserBookings handles GET /api/user/bookings (protected)
func (h *BookingHandler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	bookings, err := h.service.GetUserBookings(r.Context(), userID, paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get user bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetUserBooking handles GET /api/bookings/{id} (protected)
func (h *BookingHandler) GetUserBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	booking, err := h.service.GetUserBooking(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// GetRefundEstimate handles GET /api/bookings/{id}/refund-estimate (protected)
func (h *BookingHandler) GetRefundEstimate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	estimate, err := h.service.GetRefundEstimate(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get refund estimate")
		return
	}

	utils.ResponseSuccess(w, "success", estimate)
}

// ==================== ADMIN METHODS ====================

// GetBookings handles GET /api/admin/bookings?status= (admin only)
func (h *BookingHandler) GetBookings(w http.ResponseWriter, r *http.Request) {
	req := &request.BookingFilterRequest{
		PaginatedRequest: paginationFromQuery(r),
		Status:           strings.TrimSpace(r.URL.Query().Get("status")),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	bookings, err := h.service.GetBookings(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "get bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetAdvanceBookings handles GET /api/admin/advance-bookings (admin only)
func (h *BookingHandler) GetAdvanceBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.GetAdvanceBookings(r.Context(), paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get advance bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// CreateAdvanceBooking handles POST /api/admin/advance-bookings (admin only)
func (h *BookingHandler) CreateAdvanceBooking(w http.ResponseWriter, r *http.Request) {
	var req request.AdminBookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.service.CreateAdvanceBooking(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create advance booking")
		return
	}

	utils.ResponseCreated(w, "Booking created", booking)
}

// GetBookingByID handles GET /api/admin/bookings/{id} (admin only)
func (h *BookingHandler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	booking, err := h.service.GetBookingByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get booking by ID")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// CancelBooking handles PUT /api/admin/bookings/{id}/cancel (admin only)
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.service.CancelBooking(r.Context(), adminID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "Booking cancelled", nil)
}

// ==================== COUPON ADMIN ====================

// GetCoupons handles GET /api/admin/coupons (admin only)
func (h *BookingHandler) GetCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.GetCoupons(r.Context(), paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get coupons")
		return
	}

	utils.ResponseSuccess(w, "success", coupons)
}

// CreateCoupon handles POST /api/admin/coupons (admin only)
func (h *BookingHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req request.CouponRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	coupon, err := h.coupons.CreateCoupon(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create coupon")
		return
	}

	utils.ResponseCreated(w, "Coupon created", coupon)
}

// UpdateCoupon handles PUT /api/admin/coupons/{id} (admin only)
func (h *BookingHandler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	var req request.CouponRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	coupon, err := h.coupons.UpdateCoupon(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update coupon")
		return
	}

	utils.ResponseSuccess(w, "Coupon updated", coupon)
}

// DeleteCoupon handles DELETE /api/admin/coupons/{id} (admin only)
func (h *BookingHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.coupons.DeleteCoupon(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete coupon")
		return
	}

	utils.ResponseSuccess(w, "Coupon deleted", nil)
}
