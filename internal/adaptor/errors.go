package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"library-booking/internal/data/repository"
	"library-booking/internal/dto/request"
	"library-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// walletPath is where members top up when a wallet payment is refused
const walletPath = "/wallet"

// handleServiceError maps service errors onto HTTP statuses
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	errMsg := err.Error()

	switch {
	case errors.Is(err, repository.ErrInsufficientBalance):
		log.Warn(operation+" failed - insufficient balance", zap.Error(err))
		utils.ResponsePaymentRequired(w, errMsg, walletPath)

	case strings.Contains(errMsg, "invalid credentials"),
		strings.Contains(errMsg, "invalid current password"):
		log.Warn(operation+" failed - invalid credentials", zap.Error(err))
		utils.ResponseUnauthorized(w, errMsg)

	case strings.Contains(errMsg, "deactivated"):
		log.Warn(operation+" failed - account deactivated", zap.Error(err))
		utils.ResponseForbidden(w, errMsg)

	case errors.Is(err, repository.ErrStatusChanged):
		log.Warn(operation+" failed - concurrent update", zap.Error(err))
		utils.ResponseConflict(w, errMsg)

	case strings.Contains(errMsg, "not found"):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, errMsg)

	case strings.Contains(errMsg, "already booked"):
		log.Warn(operation+" failed - seat taken", zap.Error(err))
		utils.ResponseConflict(w, errMsg)

	case strings.Contains(errMsg, "validation failed"),
		strings.Contains(errMsg, "invalid"),
		strings.Contains(errMsg, "cannot"),
		strings.Contains(errMsg, "already"):
		log.Warn(operation+" rejected", zap.Error(err))
		utils.ResponseBadRequest(w, errMsg, nil)

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// decodeAndValidate reads a JSON body into dst and writes the 400 itself on failure
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}

	if validationErrors := utils.ValidateStruct(dst); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return false
	}

	return true
}

func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}

func paginationFromQuery(r *http.Request) request.PaginatedRequest {
	query := r.URL.Query()
	return request.NewPaginatedRequest(
		utils.ParseInt(query.Get("page"), 1),
		utils.ParseInt(query.Get("per_page"), utils.DefaultPerPage),
	)
}
