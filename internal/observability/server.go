package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the client's metrics and a backend-reachability check over
// HTTP, for long-running instrumented sessions.
type Server struct {
	httpServer *http.Server
	checkFunc  func(context.Context) error
	start      time.Time
}

// healthResponse is the /healthz payload.
type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	UptimeSec float64   `json:"uptime_seconds"`
	Backend   string    `json:"backend,omitempty"`
}

// NewServer creates a metrics/health server bound to addr. checkFunc probes
// the backend; nil means the health endpoint reports liveness only.
func NewServer(addr string, reg *prometheus.Registry, checkFunc func(context.Context) error) *Server {
	s := &Server{
		checkFunc: checkFunc,
		start:     time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	if reg != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	} else {
		mux.Handle("/metrics", promhttp.Handler())
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		UptimeSec: time.Since(s.start).Seconds(),
	}
	code := http.StatusOK

	if s.checkFunc != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.checkFunc(ctx); err != nil {
			resp.Status = "degraded"
			resp.Backend = err.Error()
			code = http.StatusServiceUnavailable
		} else {
			resp.Backend = "reachable"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// Start serves until Shutdown. Blocks.
func (s *Server) Start() error {
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
