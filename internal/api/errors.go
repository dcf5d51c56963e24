package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/p-arndt/pfand/internal/broker"
	"github.com/p-arndt/pfand/internal/store"
	"github.com/p-arndt/pfand/pool"
)

// Error codes returned in API responses
const (
	ErrCodeLeaseNotFound  = "LEASE_NOT_FOUND"
	ErrCodeLeaseExpired   = "LEASE_EXPIRED"
	ErrCodePoolExhausted  = "POOL_EXHAUSTED"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeInternalError  = "INTERNAL_ERROR"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
)

// retryAfterSeconds is the hint sent with POOL_EXHAUSTED responses.
const retryAfterSeconds = 5

// APIError represents a structured API error response
type APIError struct {
	Code    string                 `json:"error_code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// writeAPIError writes a structured error response with appropriate HTTP status
func writeAPIError(w http.ResponseWriter, err error) {
	var apiErr APIError
	statusCode := http.StatusInternalServerError

	// Map known errors to structured responses
	switch {
	case errors.Is(err, broker.ErrLeaseNotFound), errors.Is(err, store.ErrNotFound):
		apiErr = APIError{
			Code:    ErrCodeLeaseNotFound,
			Message: err.Error(),
		}
		statusCode = http.StatusNotFound

	case errors.Is(err, broker.ErrLeaseExpired):
		apiErr = APIError{
			Code:    ErrCodeLeaseExpired,
			Message: err.Error(),
		}
		statusCode = http.StatusGone

	case errors.Is(err, pool.ErrExhausted):
		apiErr = APIError{
			Code:    ErrCodePoolExhausted,
			Message: err.Error(),
		}
		statusCode = http.StatusServiceUnavailable
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))

	default:
		apiErr = APIError{
			Code:    ErrCodeInternalError,
			Message: err.Error(),
		}
		statusCode = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErr)
}

// writeValidationError writes a 400 Bad Request with validation details
func writeValidationError(w http.ResponseWriter, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(APIError{
		Code:    ErrCodeInvalidRequest,
		Message: message,
		Details: details,
	})
}

// writeUnauthorizedError writes a 401 Unauthorized error
func writeUnauthorizedError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(APIError{
		Code:    ErrCodeUnauthorized,
		Message: message,
	})
}
