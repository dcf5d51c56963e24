package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/p-arndt/pfand/internal/config"
)

func testServer(apiKey string) *Server {
	return &Server{
		cfg: &config.Config{
			APIKey: apiKey,
		},
	}
}

func TestAuthMiddleware_NoAPIKey(t *testing.T) {
	s := testServer("")
	handler := s.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/v1/leases", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// No API key configured = open access
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_ValidKey(t *testing.T) {
	s := testServer("sk-test-key")
	handler := s.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/v1/leases", nil)
	req.Header.Set("Authorization", "Bearer sk-test-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_InvalidKey(t *testing.T) {
	s := testServer("sk-test-key")
	handler := s.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/v1/leases", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	s := testServer("sk-test-key")
	handler := s.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/v1/leases", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_HealthzOpen(t *testing.T) {
	s := testServer("sk-test-key")
	handler := s.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDMiddleware_Generates(t *testing.T) {
	s := testServer("")
	handler := s.requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/v1/leases", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Len(t, rec.Header().Get("X-Request-ID"), 8)
}

func TestRequestIDMiddleware_Propagates(t *testing.T) {
	s := testServer("")
	handler := s.requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/v1/leases", nil)
	req.Header.Set("X-Request-ID", "client-id-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "client-id-42", rec.Header().Get("X-Request-ID"))
}
