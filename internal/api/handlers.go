package api

import (
	"net/http"

	"github.com/p-arndt/pfand/internal/broker"
	"github.com/p-arndt/pfand/protocol"
)

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req protocol.CheckoutRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeValidationError(w, "invalid json: "+err.Error(), nil)
		return
	}

	if err := validateTTL(req.TTLSeconds); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}

	s.logger.Debug("checkout request", "ttl_seconds", req.TTLSeconds)
	info, err := s.broker.Checkout(r.Context(), broker.CheckoutOpts{
		TTLSeconds: req.TTLSeconds,
	})
	if err != nil {
		s.logger.Error("checkout", "error", err)
		writeAPIError(w, err)
		return
	}
	s.logger.Debug("lease checked out", "lease_id", info.ID, "slot", info.Slot)
	writeJSON(w, http.StatusCreated, info)
}

func (s *Server) handleGetLease(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateLeaseID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}
	s.logger.Debug("get lease", "lease_id", id)
	info, err := s.broker.Get(r.Context(), id)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleListLeases(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("list leases")
	leases, err := s.broker.List(r.Context())
	if err != nil {
		writeAPIError(w, err)
		return
	}
	s.logger.Debug("list leases result", "count", len(leases))
	writeJSON(w, http.StatusOK, leases)
}

func (s *Server) handleExtend(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateLeaseID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}

	var req protocol.ExtendRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeValidationError(w, "invalid json: "+err.Error(), nil)
		return
	}
	if err := validateTTL(req.TTLSeconds); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}

	s.logger.Debug("extend lease", "lease_id", id, "ttl_seconds", req.TTLSeconds)
	info, err := s.broker.Extend(r.Context(), id, req.TTLSeconds)
	if err != nil {
		s.logger.Error("extend", "lease_id", id, "error", err)
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateLeaseID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}
	s.logger.Debug("return lease", "lease_id", id)
	if err := s.broker.Return(r.Context(), id); err != nil {
		s.logger.Error("return", "lease_id", id, "error", err)
		writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.broker.Status())
}
