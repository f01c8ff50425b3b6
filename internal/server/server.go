package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/calinvite/calinvite/internal/instrumentation"
	"github.com/calinvite/calinvite/internal/invite"
	"github.com/calinvite/calinvite/internal/logging"
)

const (
	// DefaultAddr is the default address for the API server.
	DefaultAddr = ":8080"

	// DefaultReadHeaderTimeout bounds how long a client may take to send
	// request headers.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultIdleTimeout is the keep-alive idle timeout.
	DefaultIdleTimeout = 60 * time.Second
)

// InviteService processes event creation requests. Satisfied by
// *invite.Service.
type InviteService interface {
	CreateEventAndNotify(ctx context.Context, req invite.Request) (*invite.Result, error)
}

// Config holds configuration for the API server.
type Config struct {
	// Addr is the address to bind the API server to (e.g., ":8080").
	Addr string

	// Invites processes event creation requests.
	Invites InviteService

	// Metrics records request metrics. May be nil.
	Metrics *instrumentation.Metrics

	// Logger is used for request and lifecycle logging. May be nil.
	Logger *slog.Logger
}

// Server is the HTTP API server. It exposes the event creation endpoint
// together with liveness and readiness probes.
type Server struct {
	httpServer *http.Server
	health     *HealthChecker
	invites    InviteService
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
	addr       string
}

// New creates a new API server with its routes configured.
func New(config Config) *Server {
	if config.Addr == "" {
		config.Addr = DefaultAddr
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.Metrics == nil {
		config.Metrics = &instrumentation.Metrics{}
	}

	s := &Server{
		health:  NewHealthChecker(),
		invites: config.Invites,
		metrics: config.Metrics,
		logger:  logger.With(logging.Service("server")),
		addr:    config.Addr,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestMetrics)

	r.Handle("/healthz", s.health.LivenessHandler())
	r.Handle("/readyz", s.health.ReadinessHandler())
	r.Handle("/healthz/detailed", s.health.DetailedHealthHandler())
	r.Post("/calendar/create-event", s.handleCreateEvent)

	s.httpServer = &http.Server{
		Addr:              config.Addr,
		Handler:           r,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}

	return s
}

// Handler returns the server's root handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Health returns the server's health checker.
func (s *Server) Health() *HealthChecker {
	return s.health
}

// Start starts the API server in a blocking manner.
// Call this in a goroutine if you need non-blocking operation.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server, failing readiness probes
// first so load balancers stop routing new requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetShuttingDown()
	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(ctx)
}

// requestMetrics records one measurement per request with method, route
// pattern and status code.
func (s *Server) requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, path, ww.Status(), time.Since(start))
	})
}
