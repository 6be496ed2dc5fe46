package adaptor

import (
	"net/http"
	"strings"

	"library-booking/internal/dto/request"
	"library-booking/internal/usecase"
	"library-booking/pkg/utils"

	"go.uber.org/zap"
)

type RefundHandler struct {
	service usecase.RefundService
	log     *zap.Logger
}

func NewRefundHandler(service usecase.RefundService, log *zap.Logger) *RefundHandler {
	return &RefundHandler{
		service: service,
		log:     log.With(zap.String("handler", "refund")),
	}
}

// CreateRefundRequest handles POST /api/refund-requests (protected)
func (h *RefundHandler) CreateRefundRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.CreateRefundRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	refund, err := h.service.CreateRefundRequest(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create refund request")
		return
	}

	utils.ResponseCreated(w, "Refund request submitted", refund)
}

// GetUserRefunds handles GET /api/user/refund-requests (protected)
func (h *RefundHandler) GetUserRefunds(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	refunds, err := h.service.GetUserRefunds(r.Context(), userID, paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get user refunds")
		return
	}

	utils.ResponseSuccess(w, "success", refunds)
}

// GetRefunds handles GET /api/admin/refunds?status= (admin only)
func (h *RefundHandler) GetRefunds(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))

	refunds, err := h.service.GetRefunds(r.Context(), status, paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get refunds")
		return
	}

	utils.ResponseSuccess(w, "success", refunds)
}

// ProcessRefund handles POST /api/admin/refunds/process (admin only)
func (h *RefundHandler) ProcessRefund(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.ProcessRefundRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	refund, err := h.service.ProcessRefund(r.Context(), adminID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "process refund")
		return
	}

	utils.ResponseSuccess(w, "Refund "+string(refund.Status), refund)
}
