package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical detail and the request id, then
// returned to the client as a user message with an action and support code
// from core.MapError. Report routes render HTML; everything else is JSON.

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/credport/internal/core"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for a service error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNoFile):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrImportNotFound), errors.Is(err, core.ErrUnknownFormat):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyImports), errors.Is(err, core.ErrHistoryDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrUnsupportedFormat),
		errors.Is(err, core.ErrDefaultResourceTypeMissing),
		errors.Is(err, core.ErrEmptyFile),
		errors.Is(err, core.ErrInvalidPayload):
		return http.StatusUnprocessableEntity
	}

	// Reader and decoder errors are wrapped text, not sentinels.
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "invalid csv") || strings.Contains(msg, "encoding error") {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and returns a JSON or HTML body
// depending on what the client asked for.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	// Get request ID for correlation
	requestID := middleware.GetReqID(r.Context())

	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", requestID,
	)

	if wantsJSON(r) {
		respondErrorJSON(w, userMsg, statusCode)
	} else {
		respondErrorHTML(w, userMsg, statusCode)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorHTML writes a plain text error response.
func respondErrorHTML(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	http.Error(w, msg.Message+" ("+msg.Code+")", statusCode)
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	// Reports are browser pages
	if strings.HasSuffix(r.URL.Path, "/report") {
		return strings.Contains(r.Header.Get("Accept"), "application/json")
	}
	return true
}
