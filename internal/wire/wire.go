package wire

import (
	"net/http"

	"library-booking/internal/adaptor"
	"library-booking/internal/data/repository"
	"library-booking/internal/usecase"
	"library-booking/pkg/cache"
	"library-booking/pkg/middleware"
	"library-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App holds the router and the services background jobs need
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// guards are the auth middlewares shared by every route group
type guards struct {
	auth  func(http.Handler) http.Handler
	admin func(http.Handler) http.Handler
}

func Wiring(repo *repository.Repository, cache *cache.Cache, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(repo, cache, config, logger)
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router:  setupRouter(handler, repo, config, logger, prometheus.NewRegistry()),
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	logger *zap.Logger,
	registry *prometheus.Registry,
) *chi.Mux {
	r := chi.NewRouter()

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(registry)

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())
	r.Use(metrics.Middleware)

	g := guards{
		auth:  middleware.AuthSession(repo.Session, repo.User, logger),
		admin: middleware.Admin(logger),
	}
	limiter := middleware.NewRateLimiter(config.RateLimit.PerMinute, logger)

	wireAuth(r, handler.Auth, handler.Member, g, limiter)
	wireCatalog(r, handler.Catalog, handler.Site, g)
	wireBooking(r, handler.Booking, g)
	wirePayment(r, handler.Payment, handler.Refund, handler.Member, g)
	wireEngagement(r, handler.Engagement, g)
	wireAdmin(r, handler.Admin, handler.Member, g)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return r
}
