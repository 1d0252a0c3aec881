package web

// errors.go provides unified error response handling for the web layer.
//
// Handlers call respondError with the technical error; the error is mapped
// via core.MapError to a user-friendly message with a support code, the
// technical detail is logged with the request ID for correlation, and the
// client receives only the sanitized JSON body.

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/b-balajis/rms-backend/internal/core"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error and writes a sanitized JSON error
// response. The status code is derived from the mapped support code unless
// the caller forces one with status > 0.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	userMsg := core.MapError(err)
	if status <= 0 {
		status = statusForCode(userMsg.Code)
	}

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	writeJSON(w, status, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusForCode chooses an HTTP status for a support code category.
func statusForCode(code string) int {
	switch code {
	case "VAL003", "VAL004", "FILE002", "FILE005":
		return http.StatusBadRequest
	case "DB001", "DB002":
		return http.StatusConflict
	case "DB003":
		return http.StatusNotFound
	case "DB004":
		return http.StatusServiceUnavailable
	case "DB006", "UPL005":
		return http.StatusGatewayTimeout
	case "UPL002":
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON encodes v as JSON with the given status code.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
