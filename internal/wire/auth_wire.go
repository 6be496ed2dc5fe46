package wire

import (
	"library-booking/internal/adaptor"
	"library-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	memberHandler *adaptor.MemberHandler,
	g guards,
	limiter *middleware.RateLimiter,
) {
	// ==================== PUBLIC ROUTES ====================
	r.With(limiter.Middleware).Post("/api/register", authHandler.Register)
	r.With(limiter.Middleware).Post("/api/login", authHandler.Login)

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(g.auth)

		r.Post("/api/logout", authHandler.Logout)
		r.Get("/api/user/profile", memberHandler.GetProfile)
		r.Put("/api/user/profile", memberHandler.UpdateProfile)
		r.Put("/api/user/password", authHandler.ChangePassword)
	})
}
