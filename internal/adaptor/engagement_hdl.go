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

// EngagementHandler serves notifications and support tickets
type EngagementHandler struct {
	notifications usecase.NotificationService
	support       usecase.SupportService
	log           *zap.Logger
}

func NewEngagementHandler(notifications usecase.NotificationService, support usecase.SupportService, log *zap.Logger) *EngagementHandler {
	return &EngagementHandler{
		notifications: notifications,
		support:       support,
		log:           log.With(zap.String("handler", "engagement")),
	}
}

// ==================== NOTIFICATIONS ====================

// GetNotifications handles GET /api/notifications?unread=true (protected)
func (h *EngagementHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"

	items, err := h.notifications.GetNotifications(r.Context(), userID, unreadOnly, paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get notifications")
		return
	}

	utils.ResponseSuccess(w, "success", items)
}

// GetUnreadCount handles GET /api/notifications/unread-count (protected)
func (h *EngagementHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	count, err := h.notifications.GetUnreadCount(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get unread count")
		return
	}

	utils.ResponseSuccess(w, "success", count)
}

// MarkRead handles PUT /api/notifications/{id}/read (protected)
func (h *EngagementHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "mark notification read")
		return
	}

	utils.ResponseSuccess(w, "Notification marked as read", nil)
}

// MarkAllRead handles PUT /api/notifications/read-all (protected)
func (h *EngagementHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.notifications.MarkAllRead(r.Context(), userID); err != nil {
		handleServiceError(w, h.log, err, "mark all notifications read")
		return
	}

	utils.ResponseSuccess(w, "All notifications marked as read", nil)
}

// SendNotification handles POST /api/admin/notifications (admin only)
func (h *EngagementHandler) SendNotification(w http.ResponseWriter, r *http.Request) {
	var req request.SendNotificationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.notifications.Send(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "send notification")
		return
	}

	utils.ResponseCreated(w, "Notification sent", result)
}

// ==================== SUPPORT ====================

// CreateTicket handles POST /api/support/tickets (protected)
func (h *EngagementHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.CreateTicketRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ticket, err := h.support.CreateTicket(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create ticket")
		return
	}

	utils.ResponseCreated(w, "Ticket created", ticket)
}

// GetUserTickets handles GET /api/support/tickets (protected)
func (h *EngagementHandler) GetUserTickets(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	tickets, err := h.support.GetUserTickets(r.Context(), userID, paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get user tickets")
		return
	}

	utils.ResponseSuccess(w, "success", tickets)
}

// GetUserTicket handles GET /api/support/tickets/{id} (protected)
func (h *EngagementHandler) GetUserTicket(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	ticket, err := h.support.GetUserTicket(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get ticket")
		return
	}

	utils.ResponseSuccess(w, "success", ticket)
}

// AddUserMessage handles POST /api/support/tickets/{id}/messages (protected)
func (h *EngagementHandler) AddUserMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.TicketMessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	msg, err := h.support.AddUserMessage(r.Context(), userID, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "add ticket message")
		return
	}

	utils.ResponseCreated(w, "Message sent", msg)
}

// GetTickets handles GET /api/admin/support/tickets?status= (admin only)
func (h *EngagementHandler) GetTickets(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))

	tickets, err := h.support.GetTickets(r.Context(), status, paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get tickets")
		return
	}

	utils.ResponseSuccess(w, "success", tickets)
}

// GetTicket handles GET /api/admin/support/tickets/{id} (admin only)
func (h *EngagementHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.support.GetTicket(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get ticket")
		return
	}

	utils.ResponseSuccess(w, "success", ticket)
}

// UpdateTicketStatus handles PUT /api/admin/support/tickets/{id}/status (admin only)
func (h *EngagementHandler) UpdateTicketStatus(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateTicketStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ticket, err := h.support.UpdateTicketStatus(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update ticket status")
		return
	}

	utils.ResponseSuccess(w, "Ticket updated", ticket)
}

// AddStaffMessage handles POST /api/admin/support/tickets/{id}/messages (admin only)
func (h *EngagementHandler) AddStaffMessage(w http.ResponseWriter, r *http.Request) {
	staffID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.TicketMessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	msg, err := h.support.AddStaffMessage(r.Context(), staffID, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "add staff message")
		return
	}

	utils.ResponseCreated(w, "Reply sent", msg)
}
