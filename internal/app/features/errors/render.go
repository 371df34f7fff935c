// internal/app/features/errors/render.go
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/groupbook/internal/app/system/inputval"
)

// Response is the JSON error body every endpoint returns.
type Response struct {
	Error   string                `json:"error"`
	Message string                `json:"message"`
	Rule    string                `json:"rule,omitempty"`
	Fields  []inputval.FieldError `json:"fields,omitempty"`
}

// Error codes.
const (
	CodeBadRequest       = "bad_request"
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeValidation       = "validation_failed"
	CodeCapacityExceeded = "capacity_exceeded"
	CodeGroupStarted     = "group_started"
	CodeDuplicate        = "duplicate"
	CodeConflict         = "conflict"
	CodeRateLimited      = "rate_limited"
	CodeTimeout          = "timeout"
	CodeInternal         = "internal_error"
)

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a Response with the given status, code, and message.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, Response{Error: code, Message: message})
}

// NotFound is the router's fallback for unknown paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, CodeNotFound, "No such endpoint.")
}

// MethodNotAllowed is the router's fallback for known paths with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed.")
}
