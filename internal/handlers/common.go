package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"fitbuddy-backend/internal/storeerr"
)

// ErrorResponse represents an error response. Every error body carries
// a message field; internal detail stays in the logs.
type ErrorResponse struct {
	Message string `json:"message"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Message: message})
}

// respondJSON sends a success response
func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// statusFromErr maps the sentinel error taxonomy to HTTP status codes.
// This is the single place layering errors become statuses.
func statusFromErr(err error) int {
	switch {
	case errors.Is(err, storeerr.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, storeerr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, storeerr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, storeerr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storeerr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the error text safe to show a client. Internal
// failures are masked.
func publicMessage(err error) string {
	if statusFromErr(err) == http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}
