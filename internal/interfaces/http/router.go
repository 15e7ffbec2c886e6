package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MedCode-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/MedCode-Intelligence/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	// Handlers
	CodingHandler *handlers.CodingHandler
	HealthHandler *handlers.HealthHandler

	// Infrastructure
	Logger           logging.Logger
	LoggingConfig    *middleware.LoggingConfig // nil selects the default
	AppMetrics       *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector // exposes GET /metrics when non-nil

	// AllowedOrigins configures CORS; empty allows any origin.
	AllowedOrigins []string
}

// NewRouter constructs the complete HTTP route tree from the given
// configuration.  It wires global middleware, public probe endpoints, and
// the API v1 group into a single http.Handler suitable for http.Server.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// --- Global middleware (applied to every request) ---
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	if cfg.Logger != nil {
		logCfg := middleware.DefaultLoggingConfig()
		if cfg.LoggingConfig != nil {
			logCfg = *cfg.LoggingConfig
		}
		r.Use(middleware.RequestLogging(cfg.Logger, logCfg))
	}
	r.Use(middleware.Metrics(cfg.AppMetrics))

	// --- Public probe endpoints ---
	r.Group(func(pub chi.Router) {
		if cfg.HealthHandler != nil {
			pub.Get("/healthz", cfg.HealthHandler.Liveness)
			pub.Get("/healthz/detail", cfg.HealthHandler.Detailed)
			pub.Get("/readyz", cfg.HealthHandler.Readiness)
		}
	})

	// --- Metrics endpoint (scraped internally, no auth) ---
	if cfg.MetricsCollector != nil {
		r.Handle("/metrics", cfg.MetricsCollector.Handler())
	}

	// --- API v1 ---
	r.Route("/api/v1", func(api chi.Router) {
		registerCodingRoutes(api, cfg.CodingHandler)
	})

	return r
}

// registerCodingRoutes mounts the coding endpoints under /api/v1.
func registerCodingRoutes(r chi.Router, h *handlers.CodingHandler) {
	if h == nil {
		return
	}
	r.Post("/code", h.Code)
	r.Post("/normalize", h.Normalize)
}
