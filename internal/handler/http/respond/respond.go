// Package respond provides utilities for sending HTTP responses in JSON
// format. Error responses follow a structured shape with a stable error
// code, optional details, and the processing context in which the
// failure occurred, so dashboard clients can render failures uniformly.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Stable error codes carried in the error body.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeEntityNotFound = "ENTITY_NOT_FOUND"
	CodeConfigFetch    = "CONFIG_FETCH_FAILED"
	CodeInternal       = "INTERNAL_ERROR"
	CodeRateLimited    = "RATE_LIMITED"
	CodeTimeout        = "REQUEST_TIMEOUT"
)

// ErrorBody is the wire shape of every error response.
type ErrorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Details   string `json:"details,omitempty"`
	Context   string `json:"context,omitempty"`
	Timestamp string `json:"timestamp"`
}

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already sent; log and move on.
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes a structured error response. message is the stable
// user-facing text, details may carry specifics, context names the
// processing stage that failed.
func Error(w http.ResponseWriter, status int, code, message, details, context string) {
	JSON(w, status, ErrorBody{
		Error:     message,
		Code:      code,
		Details:   details,
		Context:   context,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// InternalError writes a 500 with a generic message. The underlying
// error is logged sanitized and never sent to the client.
func InternalError(w http.ResponseWriter, context string, err error) {
	slog.Default().Error("internal server error",
		slog.String("context", context),
		slog.String("error", SanitizeError(err)))
	Error(w, http.StatusInternalServerError, CodeInternal,
		"Internal Server Error", "", context)
}
