package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Pesokrava/storefront_reviews/internal/config"
	"github.com/Pesokrava/storefront_reviews/internal/delivery/http/handler"
	"github.com/Pesokrava/storefront_reviews/internal/delivery/http/middleware"
	"github.com/Pesokrava/storefront_reviews/internal/delivery/http/response"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
)

// Router holds HTTP handlers and router configuration
type Router struct {
	productHandler    *handler.ProductHandler
	reviewHandler     *handler.ReviewHandler
	moderationHandler *handler.ModerationHandler
	logger            *logger.Logger
	cfg               *config.Config
}

// NewRouter creates a new HTTP router
func NewRouter(
	productHandler *handler.ProductHandler,
	reviewHandler *handler.ReviewHandler,
	moderationHandler *handler.ModerationHandler,
	cfg *config.Config,
	log *logger.Logger,
) *Router {
	return &Router{
		productHandler:    productHandler,
		reviewHandler:     reviewHandler,
		moderationHandler: moderationHandler,
		logger:            log,
		cfg:               cfg,
	}
}

// Setup configures and returns the HTTP router
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(rt.logger))
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Metrics())
	r.Use(chimw.Timeout(rt.cfg.Server.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", rt.healthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	authenticate := middleware.Authenticate(rt.cfg.Auth.JWTSecret, rt.logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", rt.productHandler.List)
			r.Get("/{id}", rt.productHandler.GetByID)
			r.Get("/{id}/reviews", rt.reviewHandler.GetByProductID)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/{id}/reviews", rt.reviewHandler.Submit)

				r.With(middleware.RequireAdmin).Post("/", rt.productHandler.Create)
				r.With(middleware.RequireAdmin).Put("/{id}", rt.productHandler.Update)
				r.With(middleware.RequireAdmin).Delete("/{id}", rt.productHandler.Delete)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireAdmin)

			r.Get("/reviews", rt.moderationHandler.ListAll)
			r.Delete("/products/{id}/reviews/{reviewId}", rt.moderationHandler.Delete)
		})
	})

	return r
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
