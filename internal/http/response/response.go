// Package response provides HTTP response writers for the proxy contract:
// upstream replies relay verbatim, failures become plain-text descriptions.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pandanoir/popviz/internal/errors"
)

// Relay writes an upstream reply through untouched: same status code, same
// body, same content type. No envelope is added; the client consumes the
// upstream JSON contract directly.
func Relay(w http.ResponseWriter, status int, contentType string, body []byte, logger *slog.Logger) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		if logger != nil {
			logger.Error("Failed to relay response body", "error", err)
		}
	}
}

// PlainError writes a plain-text error description. The proxy contract has no
// structured error envelope.
func PlainError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(message)); err != nil {
		if logger != nil {
			logger.Error("Failed to write error response", "error", err)
		}
	}
}

// BadRequest writes a 400 plain-text response.
func BadRequest(w http.ResponseWriter, message string, logger *slog.Logger) {
	PlainError(w, http.StatusBadRequest, message, logger)
}

// InternalError writes a 500 plain-text response.
func InternalError(w http.ResponseWriter, message string, logger *slog.Logger) {
	PlainError(w, http.StatusInternalServerError, message, logger)
}

// HandleError maps a domain error to its HTTP status and writes the
// stringified message. Unknown errors become 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *errors.Error
	if errors.As(err, &domainErr) {
		PlainError(w, domainErr.HTTPStatus(), domainErr.Error(), logger)
		return
	}

	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	InternalError(w, err.Error(), logger)
}

// JSON writes a JSON response using json/v2. Used for service-local endpoints
// such as /health that are not relays.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		if logger != nil {
			logger.Error("Failed to encode JSON response", "error", err)
		}
	}
}
