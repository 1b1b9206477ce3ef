package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes a Kandilli-compatible feed plus health and metrics endpoints.
type Server struct {
	httpServer *http.Server
	source     *Generator
	failStatus int
	requests   *prometheus.CounterVec
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /live, /healthz, and /metrics routes.
// A non-zero failStatus makes /live answer with that status instead of data.
func NewServer(addr string, source *Generator, failStatus int, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	registry := prometheus.NewRegistry()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		source:     source,
		failStatus: failStatus,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_mockfeed",
			Name:      "requests_total",
			Help:      "Feed requests by response status.",
		}, []string{"status"}),
		logger: logger,
	}
	registry.MustRegister(s.requests)

	mux.HandleFunc("GET /live", s.handleLive)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("mock feed listening", "addr", s.httpServer.Addr)
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

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	if s.failStatus != 0 {
		s.requests.WithLabelValues(strconv.Itoa(s.failStatus)).Inc()
		sharedobs.WriteJSON(w, s.failStatus, map[string]any{"status": false, "desc": "simulated failure"})
		return
	}

	records := s.source.Records()
	s.requests.WithLabelValues("200").Inc()
	s.logger.Debug("served feed", "records", len(records))
	sharedobs.WriteJSON(w, http.StatusOK, liveResponse{Status: true, Result: records})
}

type liveResponse struct {
	Status bool     `json:"status"`
	Result []Record `json:"result"`
}
