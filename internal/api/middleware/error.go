// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"encoding/json"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/room-scheduler/backend/internal/schedule"
)

// ErrorResponse represents a standardized API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// WriteError writes a JSON error response with the given status code.
func WriteError(w http.ResponseWriter, status int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// WriteErrorWithDetails writes a JSON error response with additional details.
func WriteErrorWithDetails(w http.ResponseWriter, status int, errCode, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
		Details: details,
	})
}

// WriteServiceError maps a scheduling error kind onto an HTTP status and
// writes the error's reason. Unclassified errors become a 500 without
// leaking internals.
func WriteServiceError(w http.ResponseWriter, err error) {
	kind := schedule.KindOf(err)
	status, code := statusForKind(kind)
	if kind == "" {
		log.Printf("Internal error: %v", err)
		WriteError(w, http.StatusInternalServerError, ErrInternalError, "An unexpected error occurred")
		return
	}
	WriteError(w, status, code, err.Error())
}

func statusForKind(kind schedule.ErrorKind) (int, string) {
	switch kind {
	case schedule.KindValidation:
		return http.StatusBadRequest, ErrValidation
	case schedule.KindConflict:
		return http.StatusConflict, ErrConflict
	case schedule.KindPermission:
		return http.StatusForbidden, ErrForbidden
	case schedule.KindNotFound:
		return http.StatusNotFound, ErrNotFound
	case schedule.KindState:
		return http.StatusConflict, ErrState
	}
	return http.StatusInternalServerError, ErrInternalError
}

// ErrorRecovery is middleware that recovers from panics and returns a 500 error.
func ErrorRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("Panic recovered: %v\n%s", err, debug.Stack())
				WriteError(w, http.StatusInternalServerError, ErrInternalError, "An unexpected error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Common error codes
const (
	ErrNotFound      = "not_found"
	ErrBadRequest    = "bad_request"
	ErrConflict      = "conflict"
	ErrState         = "state_error"
	ErrInternalError = "internal_error"
	ErrValidation    = "validation_error"
	ErrUnauthorized  = "unauthorized"
	ErrForbidden     = "forbidden"
)
