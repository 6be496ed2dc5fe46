package adaptor

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"library-booking/internal/dto/request"
	"library-booking/internal/usecase"
	"library-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PaymentHandler serves wallets, payments, receipts and gateway settings
type PaymentHandler struct {
	payments usecase.PaymentService
	wallet   usecase.WalletService
	log      *zap.Logger
}

func NewPaymentHandler(payments usecase.PaymentService, wallet usecase.WalletService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		wallet:   wallet,
		log:      log.With(zap.String("handler", "payment")),
	}
}

// GetWallet handles GET /api/wallet (protected)
func (h *PaymentHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	wallet, err := h.wallet.GetWallet(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get wallet")
		return
	}

	utils.ResponseSuccess(w, "success", wallet)
}

// GetWalletTransactions handles GET /api/wallet/transactions (protected)
func (h *PaymentHandler) GetWalletTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	txns, err := h.wallet.GetTransactions(r.Context(), userID, paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get wallet transactions")
		return
	}

	utils.ResponseSuccess(w, "success", txns)
}

// RechargeWallet handles POST /api/wallet/recharge (protected)
func (h *PaymentHandler) RechargeWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.RechargeWalletRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	txn, err := h.wallet.Recharge(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "recharge wallet")
		return
	}

	utils.ResponseCreated(w, "Wallet recharged", txn)
}

// GetUserPayments handles GET /api/user/payments (protected)
func (h *PaymentHandler) GetUserPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	payments, err := h.payments.GetUserPayments(r.Context(), userID, paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get user payments")
		return
	}

	utils.ResponseSuccess(w, "success", payments)
}

// DownloadReceipt handles GET /api/payments/{id}/receipt (protected)
func (h *PaymentHandler) DownloadReceipt(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	paymentID := chi.URLParam(r, "id")

	pdf, err := h.payments.Receipt(r.Context(), userID, utils.IsAdminContext(r.Context()), paymentID)
	if err != nil {
		handleServiceError(w, h.log, err, "render receipt")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="receipt-%s.pdf"`, paymentID))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// ==================== ADMIN METHODS ====================

// GetPayments handles GET /api/admin/payments?status=&method= (admin only)
func (h *PaymentHandler) GetPayments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PaymentFilterRequest{
		PaginatedRequest: paginationFromQuery(r),
		Status:           strings.TrimSpace(query.Get("status")),
		Method:           strings.TrimSpace(query.Get("method")),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	payments, err := h.payments.GetPayments(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "get payments")
		return
	}

	utils.ResponseSuccess(w, "success", payments)
}

// UpdatePaymentStatus handles PUT /api/admin/payments/{id}/status (admin only)
func (h *PaymentHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req request.UpdatePaymentStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	payment, err := h.payments.UpdatePaymentStatus(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update payment status")
		return
	}

	utils.ResponseSuccess(w, "Payment updated", payment)
}

// GetGateways handles GET /api/admin/settings/gateways (admin only)
func (h *PaymentHandler) GetGateways(w http.ResponseWriter, r *http.Request) {
	gateways, err := h.payments.GetGateways(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "get gateways")
		return
	}

	utils.ResponseSuccess(w, "success", gateways)
}

// UpdateGateway handles PUT /api/admin/settings/gateways/{provider} (admin only)
func (h *PaymentHandler) UpdateGateway(w http.ResponseWriter, r *http.Request) {
	var req request.GatewaySettingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	gateway, err := h.payments.UpdateGateway(r.Context(), chi.URLParam(r, "provider"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update gateway")
		return
	}

	utils.ResponseSuccess(w, "Gateway settings saved", gateway)
}
