// Package router provides HTTP routing configuration using Chi.
package router

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-logr/logr"

	"github.com/remiblancher/cmsinfo/internal/api/handler"
	"github.com/remiblancher/cmsinfo/internal/api/metrics"
	"github.com/remiblancher/cmsinfo/internal/api/middleware"
	"github.com/remiblancher/cmsinfo/internal/api/service"
	"github.com/remiblancher/cmsinfo/pkg/describe"
)

//go:embed openapi.yaml
var openapiSpec []byte

// Config holds router configuration.
type Config struct {
	Version      string
	Language     describe.Language // default report language
	MaxBodyBytes int64             // 0 disables the limit
	Logger       logr.Logger
	Metrics      *metrics.Metrics // nil creates a private instance
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	log := cfg.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.New()
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(middleware.CORS)
	r.Use(m.Middleware)

	// Health endpoints
	healthHandler := handler.NewHealthHandler(cfg.Version)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	// OpenAPI spec
	r.Get("/api/openapi.yaml", serveOpenAPISpec)

	cmsService := service.NewCMSService(log.WithName("cms"), m)
	cmsHandler := handler.NewCMSHandler(cmsService, cfg.Language)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.MaxBodyBytes > 0 {
			r.Use(middleware.MaxBody(cfg.MaxBodyBytes))
		}

		r.Route("/cms", func(r chi.Router) {
			r.Post("/info", cmsHandler.Info)
		})
	})

	return r
}

// serveOpenAPISpec serves the OpenAPI specification file.
func serveOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openapiSpec)
}
