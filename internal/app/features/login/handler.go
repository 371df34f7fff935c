// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/groupbook/internal/app/features/errors"
	userstore "github.com/dalemusser/groupbook/internal/app/store/users"
	"github.com/dalemusser/groupbook/internal/app/system/auditlog"
	"github.com/dalemusser/groupbook/internal/app/system/auth"
	"github.com/dalemusser/groupbook/internal/app/system/formutil"
	"github.com/dalemusser/groupbook/internal/app/system/ratelimit"
	"github.com/dalemusser/groupbook/internal/app/system/requestid"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	ErrLog     *uierrors.ErrorLogger
	Audit      *auditlog.Logger
	Timeout    time.Duration
	Log        *zap.Logger
}

func NewHandler(
	users *userstore.Store,
	sessionMgr *auth.SessionManager,
	limiter *ratelimit.LoginLimiter,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	timeout time.Duration,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:      users,
		SessionMgr: sessionMgr,
		Limiter:    limiter,
		ErrLog:     errLog,
		Audit:      audit,
		Timeout:    timeout,
		Log:        logger,
	}
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles POST /login.
//
// On success the session cookie is set and the signed-in user is returned:
//
//	{ "id": 3, "name": "…", "email": "…", "role": "visitor", "gender": "female" }
//
// Bad credentials answer 401 without saying which part was wrong.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "login: decode body", err, err.Error())
		return
	}

	if ok, reason := h.Limiter.Check(r, in.Email); !ok {
		requestid.Logger(r, h.Log).Warn("login rate limited",
			zap.String("ip", ratelimit.ClientIP(r)))
		h.Audit.LoginRateLimited(r.Context(), r, in.Email, reason)
		uierrors.WriteError(w, http.StatusTooManyRequests, uierrors.CodeRateLimited, reason)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	u, err := h.Users.Authenticate(ctx, in.Email, in.Password)
	if errors.Is(err, userstore.ErrInvalidCredentials) {
		h.Audit.LoginFailed(ctx, r, in.Email, "invalid credentials")
		uierrors.WriteError(w, http.StatusUnauthorized, uierrors.CodeUnauthorized, "Invalid email or password.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "login: authenticate", err, "")
		return
	}

	su := &auth.SessionUser{
		ID:     u.ID,
		Name:   u.FullName,
		Email:  u.Email,
		Role:   u.Role,
		Gender: u.Gender,
	}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.ErrLog.LogServerError(w, r, "login: save session", err, "")
		return
	}
	h.Limiter.ResetEmail(in.Email)

	requestid.Logger(r, h.Log).Info("user signed in",
		zap.Int64("user_id", u.ID),
		zap.String("role", u.Role))
	h.Audit.LoginSuccess(ctx, r, u.ID, u.Email)
	uierrors.WriteJSON(w, http.StatusOK, su)
}
