package wire

import (
	"library-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireEngagement(r chi.Router, h *adaptor.EngagementHandler, g guards) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(g.auth)

		r.Get("/api/notifications", h.GetNotifications)
		r.Get("/api/notifications/unread-count", h.GetUnreadCount)
		r.Put("/api/notifications/read-all", h.MarkAllRead)
		r.Put("/api/notifications/{id}/read", h.MarkRead)

		r.Post("/api/support/tickets", h.CreateTicket)
		r.Get("/api/support/tickets", h.GetUserTickets)
		r.Get("/api/support/tickets/{id}", h.GetUserTicket)
		r.Post("/api/support/tickets/{id}/messages", h.AddUserMessage)
	})

	// ==================== ADMIN ROUTES ====================
	r.With(g.auth, g.admin).Post("/api/admin/notifications", h.SendNotification)

	r.Route("/api/admin/support/tickets", func(r chi.Router) {
		r.Use(g.auth, g.admin)

		r.Get("/", h.GetTickets)
		r.Get("/{id}", h.GetTicket)
		r.Put("/{id}/status", h.UpdateTicketStatus)
		r.Post("/{id}/messages", h.AddStaffMessage)
	})
}
