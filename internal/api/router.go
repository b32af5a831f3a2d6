package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"shadowcleaner/internal/api/handlers"
	apimiddleware "shadowcleaner/internal/api/middleware"
	"shadowcleaner/internal/config"
	"shadowcleaner/internal/infrastructure/cache"
	"shadowcleaner/internal/streaming"
	"shadowcleaner/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	cache    *cache.RedisCache
	hub      *streaming.WebSocketHub
	logger   *logger.Logger
}

// NewRouter creates a new Router instance. cache and hub may be nil.
func NewRouter(cfg config.Config, h *handlers.Handlers, c *cache.RedisCache, hub *streaming.WebSocketHub, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		cache:    c,
		hub:      hub,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Public routes
	router.Group(func(pub chi.Router) {
		pub.Get("/health", r.handlers.Health.Check)
		pub.Get("/ready", r.handlers.Health.Ready)

		// Live scan events; long-lived, so outside the request timeout
		if r.hub != nil {
			pub.Get("/ws/scans", r.hub.ServeWebSocket)
		}
	})

	router.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(60 * time.Second))
		if r.config.Auth.Enabled {
			api.Use(apimiddleware.APIKeyAuth(r.config.Auth.APIKeys))
		}
		if r.config.RateLimit.Enabled {
			api.Use(apimiddleware.RateLimiter(r.cache, r.config.RateLimit, r.logger))
		}

		// Full scan
		api.Get("/scan", r.handlers.Scan.Info)
		api.Post("/scan", r.handlers.Scan.Scan)

		// Single checks
		api.Post("/exposure", r.handlers.Exposure.Check)
		api.Post("/password", r.handlers.Exposure.Password)
		api.Post("/classify", r.handlers.Classify.Classify)

		// Channel scans
		api.Post("/telegram", r.handlers.Channels.Telegram)
		api.Post("/whatsapp", r.handlers.Channels.WhatsApp)
		api.Post("/sms", r.handlers.Channels.SMS)

		// Saved scans
		api.Route("/history", func(hist chi.Router) {
			hist.Get("/", r.handlers.History.List)
			hist.Delete("/", r.handlers.History.Clear)
			hist.Get("/{id}", r.handlers.History.Get)
			hist.Delete("/{id}", r.handlers.History.Delete)
			hist.Get("/{id}/compare", r.handlers.History.Compare)
			hist.Get("/{id}/export", r.handlers.History.Export)
		})

		// Early access
		api.Get("/waitlist", r.handlers.Waitlist.Stats)
		api.Post("/waitlist", r.handlers.Waitlist.Join)
	})

	return router
}
