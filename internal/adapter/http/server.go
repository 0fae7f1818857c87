package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/mera-explorer/internal/mera"
	"github.com/couchcryptid/mera-explorer/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker = sharedobs.ReadinessChecker

// Locator answers synchronous resolve lookups.
type Locator interface {
	Locate(ctx context.Context, variable string, valid time.Time) (mera.ResolvedLocation, error)
	Variables() []string
}

// Server exposes health, readiness, metrics, and resolve HTTP endpoints.
type Server struct {
	httpServer *http.Server
	locator    Locator
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /v1/resolve, and /v1/variables routes.
func NewServer(addr string, ready ReadinessChecker, locator Locator, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		locator: locator,
		metrics: metrics,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/resolve", s.handleResolve)
	mux.HandleFunc("GET /v1/variables", s.handleVariables)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleResolve serves GET /v1/resolve?variable=<name>&time=<validity>.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	variable := q.Get("variable")
	if variable == "" {
		s.badRequest(w, "variable is required", "")
		return
	}
	valid, err := parseTime(q.Get("time"))
	if err != nil {
		s.badRequest(w, err.Error(), mera.KindMalformedName.String())
		return
	}

	loc, err := s.locator.Locate(r.Context(), variable, valid)
	if err != nil {
		kind := mera.KindOf(err)
		if kind == 0 {
			s.logger.Error("resolve failed", "variable", variable, "error", err)
			s.observe("error")
			sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		status := http.StatusBadRequest
		if kind == mera.KindUnknownVariable {
			status = http.StatusNotFound
		}
		s.observe("bad_request")
		sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error(), "kind": kind.String()})
		return
	}

	s.observe("ok")
	sharedobs.WriteJSON(w, http.StatusOK, loc)
}

func (s *Server) handleVariables(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string][]string{"variables": s.locator.Variables()})
}

func (s *Server) badRequest(w http.ResponseWriter, msg, kind string) {
	s.observe("bad_request")
	body := map[string]string{"error": msg}
	if kind != "" {
		body["kind"] = kind
	}
	sharedobs.WriteJSON(w, http.StatusBadRequest, body)
}

func (s *Server) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.HTTPResolveRequests.WithLabelValues(outcome).Inc()
	}
}

// parseTime accepts RFC 3339 or the archive's "YYYY-MM-DD[ HH[:MM]]" form.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("time is required")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return mera.ParseDate(s)
}
