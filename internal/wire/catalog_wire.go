package wire

import (
	"library-booking/internal/adaptor"
	"library-booking/internal/data/entity"

	"github.com/go-chi/chi/v5"
)

// contentRoutes maps the public path segment to its content kind
var contentRoutes = map[string]entity.ContentKind{
	"banners":    entity.ContentBanner,
	"facilities": entity.ContentFacility,
	"notices":    entity.ContentNotice,
}

func wireCatalog(r chi.Router, catalog *adaptor.CatalogHandler, site *adaptor.SiteHandler, g guards) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/plans", catalog.GetActivePlans)
	r.Get("/api/plans/{id}", catalog.GetPlan)
	r.Get("/api/seats", catalog.GetSeatAvailability)
	r.Get("/api/offers", site.GetCurrentOffers)
	r.Get("/api/gallery", site.GetGallery)

	for path, kind := range contentRoutes {
		r.Get("/api/"+path, site.ListContent(kind, true))
	}

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/plans", func(r chi.Router) {
		r.Use(g.auth, g.admin)

		r.Get("/", catalog.GetAllPlans)
		r.Post("/", catalog.CreatePlan)
		r.Put("/{id}", catalog.UpdatePlan)
		r.Delete("/{id}", catalog.DeletePlan)
	})

	r.Route("/api/admin/seats", func(r chi.Router) {
		r.Use(g.auth, g.admin)

		r.Get("/", catalog.GetSeats)
		r.Post("/", catalog.CreateSeat)
		r.Put("/{id}", catalog.UpdateSeat)
		r.Delete("/{id}", catalog.DeleteSeat)
	})

	r.Route("/api/admin/offers", func(r chi.Router) {
		r.Use(g.auth, g.admin)

		r.Get("/", site.GetAllOffers)
		r.Post("/", site.CreateOffer)
		r.Put("/{id}", site.UpdateOffer)
		r.Delete("/{id}", site.DeleteOffer)
	})

	r.Route("/api/admin/gallery", func(r chi.Router) {
		r.Use(g.auth, g.admin)

		r.Get("/", site.GetAllImages)
		r.Post("/", site.CreateImage)
		r.Put("/{id}", site.UpdateImage)
		r.Delete("/{id}", site.DeleteImage)
	})

	for path, kind := range contentRoutes {
		r.Route("/api/admin/"+path, func(r chi.Router) {
			r.Use(g.auth, g.admin)

			r.Get("/", site.ListContent(kind, false))
			r.Post("/", site.CreateContent(kind))
			r.Put("/{id}", site.UpdateContent(kind))
			r.Delete("/{id}", site.DeleteContent(kind))
		})
	}
}
