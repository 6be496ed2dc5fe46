package adaptor

import (
	"net/http"
	"strings"

	"library-booking/internal/dto/request"
	"library-booking/internal/usecase"
	"library-booking/pkg/utils"

	"go.uber.org/zap"
)

// AdminHandler serves the dashboard and the audit trail
type AdminHandler struct {
	dashboard usecase.DashboardService
	audit     usecase.AuditService
	log       *zap.Logger
}

func NewAdminHandler(dashboard usecase.DashboardService, audit usecase.AuditService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		dashboard: dashboard,
		audit:     audit,
		log:       log.With(zap.String("handler", "admin")),
	}
}

// GetDashboard handles GET /api/admin/dashboard
func (h *AdminHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboard.GetDashboard(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "get dashboard")
		return
	}

	utils.ResponseSuccess(w, "success", dashboard)
}

// GetAuditLogs handles GET /api/admin/audit-logs?entity_type=&action=&actor_id=&from=&to=
func (h *AdminHandler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.AuditFilterRequest{
		PaginatedRequest: paginationFromQuery(r),
		EntityType:       strings.TrimSpace(query.Get("entity_type")),
		Action:           strings.TrimSpace(query.Get("action")),
		ActorID:          strings.TrimSpace(query.Get("actor_id")),
		From:             strings.TrimSpace(query.Get("from")),
		To:               strings.TrimSpace(query.Get("to")),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	logs, err := h.audit.GetLogs(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "get audit logs")
		return
	}

	utils.ResponseSuccess(w, "success", logs)
}
