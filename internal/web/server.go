// Package web provides the HTTP API and HTML views for csvtree.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/csvtree/internal/config"
	"github.com/JonMunkholm/csvtree/internal/core"
	"github.com/JonMunkholm/csvtree/internal/store"
	mw "github.com/JonMunkholm/csvtree/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for csvtree.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server

	cacheStats func() store.CacheStats
	stop       context.CancelFunc
}

// Option configures optional Server features.
type Option func(*Server)

// WithCacheStats reports project cache statistics on /api/status.
func WithCacheStats(fn func() store.CacheStats) Option {
	return func(s *Server) { s.cacheStats = fn }
}

// NewServer creates a Server serving service with cfg.
func NewServer(service *core.Service, cfg *config.Config, opts ...Option) *Server {
	ctx, stop := context.WithCancel(context.Background())
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
		stop:    stop,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupMiddleware(ctx)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware(ctx context.Context) {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := mw.NewRateLimiter(ctx, s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.Middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	// Pages
	s.router.Group(func(r chi.Router) {
		r.Use(s.requestTimeout)
		r.Get("/", s.handleIndex)
		r.Get("/projects/{id}", s.handleProjectPage)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))

		// Imports run under IMPORT_TIMEOUT inside the service.
		r.Post("/projects", s.handleImport)
		r.Post("/projects/preview", s.handlePreview)

		r.Group(func(r chi.Router) {
			r.Use(s.requestTimeout)
			r.Get("/projects", s.handleListProjects)
			r.Get("/projects/{id}", s.handleGetProject)
			r.Get("/projects/{id}/query", s.handleQueryProject)
			r.Delete("/projects/{id}", s.handleDeleteProject)
			r.Get("/profiles", s.handleListProfiles)
			r.Get("/status", s.handleStatus)
		})
	})
}

// requestTimeout applies SERVER_REQUEST_TIMEOUT when it is set.
func (s *Server) requestTimeout(next http.Handler) http.Handler {
	if s.cfg.Server.RequestTimeout <= 0 {
		return next
	}
	return middleware.Timeout(s.cfg.Server.RequestTimeout)(next)
}

// Start begins listening for HTTP requests.
// After Shutdown it returns http.ErrServerClosed.
func (s *Server) Start() error {
	slog.Info("server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		// Pages are server-rendered with inline styles and no scripts.
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
