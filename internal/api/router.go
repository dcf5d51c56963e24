package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/p-arndt/pfand/internal/config"
)

type Server struct {
	cfg    *config.Config
	broker LeaseService
	logger *slog.Logger
	mux    *http.ServeMux
}

func NewServer(cfg *config.Config, b LeaseService, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		broker: b,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.authMiddleware(s.requestIDMiddleware(s.mux))
}

func (s *Server) routes() {
	// Lease routes (with auth)
	s.mux.HandleFunc("POST /v1/leases", s.handleCheckout)
	s.mux.HandleFunc("GET /v1/leases", s.handleListLeases)
	s.mux.HandleFunc("GET /v1/leases/{id}", s.handleGetLease)
	s.mux.HandleFunc("POST /v1/leases/{id}/extend", s.handleExtend)
	s.mux.HandleFunc("DELETE /v1/leases/{id}", s.handleReturn)

	// Pool status (with auth)
	s.mux.HandleFunc("GET /v1/status", s.handleStatus)

	// Health check (no auth)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
