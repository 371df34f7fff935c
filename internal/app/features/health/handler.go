package health

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/groupbook/internal/app/features/errors"
	"go.uber.org/zap"
)

// Pinger is the part of the store the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Store   Pinger
	Backend string
	Timeout time.Duration
	Log     *zap.Logger
}

// NewHandler constructs a health Handler for the given store backend.
func NewHandler(st Pinger, backend string, timeout time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		Store:   st,
		Backend: backend,
		Timeout: timeout,
		Log:     logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Backend  string `json:"backend"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "backend":"mongo" }
//
// On DB failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Backend:  h.Backend,
	}

	if err := h.Store.Ping(ctx); err != nil {
		h.Log.Error("health-check: store ping failed", zap.String("backend", h.Backend), zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		uierrors.WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	uierrors.WriteJSON(w, http.StatusOK, resp)
}
