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

// CatalogHandler serves plans and seats
type CatalogHandler struct {
	plans usecase.PlanService
	seats usecase.SeatService
	log   *zap.Logger
}

func NewCatalogHandler(plans usecase.PlanService, seats usecase.SeatService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		plans: plans,
		seats: seats,
		log:   log.With(zap.String("handler", "catalog")),
	}
}

// GetActivePlans handles GET /api/plans
func (h *CatalogHandler) GetActivePlans(w http.ResponseWriter, r *http.Request) {
	h.listPlans(w, r, true)
}

// GetAllPlans handles GET /api/admin/plans (admin)
func (h *CatalogHandler) GetAllPlans(w http.ResponseWriter, r *http.Request) {
	h.listPlans(w, r, false)
}

func (h *CatalogHandler) listPlans(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	plans, err := h.plans.GetPlans(r.Context(), activeOnly)
	if err != nil {
		handleServiceError(w, h.log, err, "get plans")
		return
	}

	utils.ResponseSuccess(w, "success", plans)
}

// GetPlan handles GET /api/plans/{id}
func (h *CatalogHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.plans.GetPlanByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get plan")
		return
	}

	utils.ResponseSuccess(w, "success", plan)
}

// CreatePlan handles POST /api/admin/plans (admin)
func (h *CatalogHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req request.PlanRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	plan, err := h.plans.CreatePlan(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create plan")
		return
	}

	utils.ResponseCreated(w, "Plan created", plan)
}

// UpdatePlan handles PUT /api/admin/plans/{id} (admin)
func (h *CatalogHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	var req request.PlanRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	plan, err := h.plans.UpdatePlan(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update plan")
		return
	}

	utils.ResponseSuccess(w, "Plan updated", plan)
}

// DeletePlan handles DELETE /api/admin/plans/{id} (admin)
func (h *CatalogHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := h.plans.DeletePlan(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete plan")
		return
	}

	utils.ResponseSuccess(w, "Plan deleted", nil)
}

// GetSeatAvailability handles GET /api/seats?start_date=&plan_id=
func (h *CatalogHandler) GetSeatAvailability(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	availability, err := h.seats.GetAvailability(r.Context(),
		strings.TrimSpace(query.Get("start_date")),
		strings.TrimSpace(query.Get("plan_id")))
	if err != nil {
		handleServiceError(w, h.log, err, "get seat availability")
		return
	}

	utils.ResponseSuccess(w, "success", availability)
}

// GetSeats handles GET /api/admin/seats (admin)
func (h *CatalogHandler) GetSeats(w http.ResponseWriter, r *http.Request) {
	seats, err := h.seats.GetSeats(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "get seats")
		return
	}

	utils.ResponseSuccess(w, "success", seats)
}

// CreateSeat handles POST /api/admin/seats (admin)
func (h *CatalogHandler) CreateSeat(w http.ResponseWriter, r *http.Request) {
	var req request.SeatRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	seat, err := h.seats.CreateSeat(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create seat")
		return
	}

	utils.ResponseCreated(w, "Seat created", seat)
}

// UpdateSeat handles PUT /api/admin/seats/{id} (admin)
func (h *CatalogHandler) UpdateSeat(w http.ResponseWriter, r *http.Request) {
	var req request.SeatRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	seat, err := h.seats.UpdateSeat(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update seat")
		return
	}

	utils.ResponseSuccess(w, "Seat updated", seat)
}

// DeleteSeat handles DELETE /api/admin/seats/{id} (admin)
func (h *CatalogHandler) DeleteSeat(w http.ResponseWriter, r *http.Request) {
	if err := h.seats.DeleteSeat(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete seat")
		return
	}

	utils.ResponseSuccess(w, "Seat deleted", nil)
}
