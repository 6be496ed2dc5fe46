package wire

import (
	"library-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAdmin(r chi.Router, adminHandler *adaptor.AdminHandler, memberHandler *adaptor.MemberHandler, g guards) {
	r.Group(func(r chi.Router) {
		r.Use(g.auth, g.admin)

		r.Get("/api/admin/dashboard", adminHandler.GetDashboard)
		r.Get("/api/admin/audit-logs", adminHandler.GetAuditLogs)
	})

	r.Route("/api/admin/members", func(r chi.Router) {
		r.Use(g.auth, g.admin)

		r.Get("/", memberHandler.GetMembers)
		r.Get("/{id}", memberHandler.GetMember)
		r.Put("/{id}", memberHandler.UpdateMember)
		r.Delete("/{id}", memberHandler.DeleteMember)
	})
}
