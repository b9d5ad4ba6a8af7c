// Package server exposes simulation metrics over HTTP while a simulation
// runs.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/agbru/coinsim/internal/logging"
	"github.com/agbru/coinsim/internal/metrics"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server serves /metrics and /healthz.
type Server struct {
	srv      *http.Server
	router   chi.Router
	metrics  *metrics.SimulationMetrics
	logger   logging.Logger
	requests *prometheus.CounterVec
	started  time.Time
	listener net.Listener
}

// New builds a server for addr. Requests are counted on the registry of m.
func New(addr string, m *metrics.SimulationMetrics, logger logging.Logger, sec SecurityConfig) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Server{
		metrics: m,
		logger:  logger,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coinsim",
			Name:      "http_requests_total",
			Help:      "Requests served by the metrics endpoint.",
		}, []string{"path"}),
		started: time.Now(),
	}
	m.Registry().MustRegister(s.requests)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return SecurityMiddleware(sec, next.ServeHTTP)
	})
	r.Get("/metrics", s.metricsMiddleware(s.handleMetrics))
	r.Get("/healthz", s.metricsMiddleware(s.handleHealth))
	s.router = r
	s.srv = &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: readHeaderTimeout}
	return s
}

// Handler returns the router, for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on the configured address and serves in the background. It
// returns once the listener is bound, so Addr is valid afterwards.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.logger.Info("metrics server listening", logging.String("addr", ln.Addr().String()))
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server failed", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.srv.Addr
}

// Shutdown stops the server, waiting for in-flight scrapes.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.requests != nil {
			s.requests.WithLabelValues(r.URL.Path).Inc()
		}
		next(w, r)
	}
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.logger.Debug("rejected metrics request", logging.String("method", r.Method))
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.metrics.Handler().ServeHTTP(w, r)
}

type healthResponse struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok", Uptime: time.Since(s.started).Seconds()})
}
