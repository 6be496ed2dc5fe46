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

type MemberHandler struct {
	service usecase.MemberService
	wallet  usecase.WalletService
	log     *zap.Logger
}

func NewMemberHandler(service usecase.MemberService, wallet usecase.WalletService, log *zap.Logger) *MemberHandler {
	return &MemberHandler{
		service: service,
		wallet:  wallet,
		log:     log.With(zap.String("handler", "member")),
	}
}

// GetProfile handles GET /api/user/profile (protected)
func (h *MemberHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, "success", profile)
}

// UpdateProfile handles PUT /api/user/profile (protected)
func (h *MemberHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update profile")
		return
	}

	utils.ResponseSuccess(w, "Profile updated", profile)
}

// GetMembers handles GET /api/admin/members (admin)
func (h *MemberHandler) GetMembers(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	members, err := h.service.GetMembers(r.Context(), search, paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get members")
		return
	}

	utils.ResponseSuccess(w, "success", members)
}

// GetMember handles GET /api/admin/members/{id} (admin)
func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	member, err := h.service.GetMember(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get member")
		return
	}

	utils.ResponseSuccess(w, "success", member)
}

// UpdateMember handles PUT /api/admin/members/{id} (admin)
func (h *MemberHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateMemberRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	member, err := h.service.UpdateMember(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update member")
		return
	}

	utils.ResponseSuccess(w, "Member updated", member)
}

// DeleteMember handles DELETE /api/admin/members/{id} (admin)
func (h *MemberHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteMember(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete member")
		return
	}

	utils.ResponseSuccess(w, "Member deleted", nil)
}

// AdjustWallet handles POST /api/admin/wallets/{user_id}/adjust (admin)
func (h *MemberHandler) AdjustWallet(w http.ResponseWriter, r *http.Request) {
	var req request.AdjustWalletRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	txn, err := h.wallet.AdjustBalance(r.Context(), chi.URLParam(r, "user_id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "adjust wallet")
		return
	}

	utils.ResponseSuccess(w, "Wallet adjusted", txn)
}
