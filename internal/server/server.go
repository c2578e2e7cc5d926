package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/deltasync/deltasync/internal/config"
	"github.com/deltasync/deltasync/internal/core/monitor"
	"github.com/deltasync/deltasync/internal/core/observability/log"
	"github.com/deltasync/deltasync/internal/core/optimizer"
)

// HTTPServer exposes the subsystem's observability surface: optimizer
// status, health reports, raw metric exports and a live alert stream.
type HTTPServer struct {
	log         log.Log
	server      *http.Server
	coordinator *monitor.Coordinator
	optimizer   *optimizer.Optimizer
	alertHub    *AlertHub
}

func NewHTTPServer(cfg config.ServerConfig, logger log.Log, coordinator *monitor.Coordinator, opt *optimizer.Optimizer, hub *AlertHub) *HTTPServer {
	s := &HTTPServer{
		log:         logger,
		coordinator: coordinator,
		optimizer:   opt,
		alertHub:    hub,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/health-report", s.handleHealthReport)
	mux.HandleFunc("/api/v1/metrics/export", s.handleMetricsExport)
	mux.HandleFunc("/ws/alerts", s.alertHub.handleSubscribe)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *HTTPServer) Start() error {
	go func() {
		s.log.Info("http server listening", log.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("http server stopped", log.Err(err))
		}
	}()
	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.alertHub.Close()
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, s.optimizer.Status())
}

func (s *HTTPServer) handleHealthReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, s.coordinator.HealthReport())
}

// handleMetricsExport streams the raw sample history for the requested
// trailing window. ?hours=N, default 24.
func (s *HTTPServer) handleMetricsExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "hours must be a positive integer", http.StatusBadRequest)
			return
		}
		hours = parsed
	}

	s.writeJSON(w, s.coordinator.Collector().Export(hours))
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("response encoding failed", log.Err(err))
	}
}
