// Package httpapi serves the operational sidecar endpoints: GET /health
// for liveness probes, GET /status for version, uptime, and tool usage
// counters. It runs beside the stdio tool transport and exposes nothing
// from the graph itself.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/calperry/workgraph/internal/metrics"
	"go.uber.org/zap"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes the operational endpoints.
type Server struct {
	storage   Pinger
	usage     *metrics.Store
	version   string
	startedAt time.Time
	log       *zap.Logger
}

func New(storage Pinger, usage *metrics.Store, version string, log *zap.Logger) *Server {
	return &Server{
		storage:   storage,
		usage:     usage,
		version:   version,
		startedAt: time.Now(),
		log:       log.Named("http"),
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := map[string]any{"status": "ok", "storage": "ok"}
	code := http.StatusOK
	if err := s.storage.Ping(ctx); err != nil {
		s.log.Warn("storage ping failed", zap.Error(err))
		resp["status"] = "degraded"
		resp["storage"] = err.Error()
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"version":        s.version,
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
	}
	if s.usage != nil {
		snap, err := s.usage.Snapshot()
		if err != nil {
			s.log.Warn("usage snapshot failed", zap.Error(err))
		} else {
			resp["usage"] = snap
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
