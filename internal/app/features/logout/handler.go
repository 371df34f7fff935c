// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/groupbook/internal/app/system/auditlog"
	"github.com/dalemusser/groupbook/internal/app/system/auth"
	"github.com/dalemusser/groupbook/internal/app/system/authz"
	"github.com/dalemusser/groupbook/internal/app/system/requestid"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Audit      *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Audit:      audit,
	}
}

// HandleLogout handles POST /logout. The session cookie is expired and the
// response has no body.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	userID := authz.UserID(r)
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		// Still answer 204; the client should drop its cookie either way.
		requestid.Logger(r, h.Log).Error("logout: save session", zap.Error(err))
	}
	h.Audit.Logout(r.Context(), r, userID)
	w.WriteHeader(http.StatusNoContent)
}
