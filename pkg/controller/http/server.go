package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// config holds internal HTTP server configuration
type config struct {
	addr          string
	webhookSecret string
	runs          interfaces.RunRepository
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithWebhookSecret sets the webhook secret
func WithWebhookSecret(secret string) Option {
	return func(c *config) {
		c.webhookSecret = secret
	}
}

// WithRunRepository mounts the run read API on top of the given
// repository.
func WithRunRepository(runs interfaces.RunRepository) Option {
	return func(c *config) {
		c.runs = runs
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server. The webhook use case records
// every delivery; the event processor decides which pushes activate
// the pipeline.
func NewServer(
	ctx context.Context,
	webhookUC interfaces.WebhookUseCase,
	processor interfaces.EventProcessor,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr: "localhost:8080",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	// Health check
	router.Get("/health", handleHealth)

	// Prometheus metrics
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Webhook endpoint
	webhookHandler := NewWebhookHandler(cfg.webhookSecret, webhookUC, processor)
	router.Post("/hooks/github", webhookHandler.Handle)

	// Run read API, only when a repository is wired
	if cfg.runs != nil {
		runHandler := NewRunHandler(cfg.runs)
		router.Get("/api/runs", runHandler.List)
		router.Get("/api/runs/{runID}", runHandler.Get)
	}

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
