// Package proxy provides the HTTP forwarder that relays client requests to
// the upstream population statistics API, attaching the server-held API key
// so the credential never reaches a client.
package proxy

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pandanoir/popviz/internal/errors"
	"github.com/pandanoir/popviz/internal/http/response"
	"github.com/pandanoir/popviz/internal/ratelimit"
	"github.com/pandanoir/popviz/internal/schema"
	"github.com/pandanoir/popviz/internal/upstream"
)

// Inbound rate limit per client address.
const (
	inboundRPS   = 20
	inboundBurst = 40
)

// Upstream is the outbound API surface the proxy forwards to.
type Upstream interface {
	Prefectures(ctx context.Context) (*upstream.Response, error)
	PopulationComposition(ctx context.Context, prefCode int) (*upstream.Response, error)
}

// Server holds dependencies for the proxy handlers.
type Server struct {
	upstream Upstream
	router   *chi.Mux
	limiter  *ratelimit.KeyedLimiter
	logger   *slog.Logger
}

// NewServer creates the proxy server with all routes configured.
func NewServer(upstream Upstream, logger *slog.Logger) *Server {
	s := &Server{
		upstream: upstream,
		router:   chi.NewRouter(),
		limiter:  ratelimit.New(inboundRPS, inboundBurst),
		logger:   logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept"},
		MaxAge:         300,
	}))
	s.router.Use(s.rateLimit)
}

// rateLimit rejects clients that exceed the inbound quota. Keyed by the
// address middleware.RealIP resolved.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(r.RemoteAddr) {
			s.logger.Warn("Rate limit exceeded", "remote_addr", r.RemoteAddr)
			response.PlainError(w, http.StatusTooManyRequests, "too many requests", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/prefectures", s.handlePrefectures)
		r.Get("/population/composition/perYear", s.handlePopulation)
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "healthy"}, s.logger)
}

// handlePrefectures relays the prefecture list resource.
func (s *Server) handlePrefectures(w http.ResponseWriter, r *http.Request) {
	resp, err := s.upstream.Prefectures(r.Context())
	if err != nil {
		s.logger.Error("Prefecture relay failed", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Relay(w, resp.StatusCode, resp.ContentType, resp.Body, s.logger)
}

// handlePopulation relays the population composition resource for one
// prefecture. prefCode is required; the input check happens before any
// upstream call.
func (s *Server) handlePopulation(w http.ResponseWriter, r *http.Request) {
	prefCode, err := parsePrefCode(r.URL.Query().Get("prefCode"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	resp, err := s.upstream.PopulationComposition(r.Context(), prefCode)
	if err != nil {
		s.logger.Error("Population relay failed", "error", err, "pref_code", prefCode)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Relay(w, resp.StatusCode, resp.ContentType, resp.Body, s.logger)
}

// parsePrefCode validates the prefCode query parameter.
func parsePrefCode(raw string) (int, error) {
	if raw == "" {
		return 0, errors.Input("prefCode is required")
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Inputf("prefCode must be an integer, got %q", raw)
	}
	if code < 1 || code > schema.MaxPrefCode {
		return 0, errors.Inputf("prefCode must be between 1 and %d, got %d", schema.MaxPrefCode, code)
	}
	return code, nil
}
