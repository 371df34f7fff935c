// Package systemusers serves user account management: admins manage every
// account; other users may read and edit their own.
package systemusers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/groupbook/internal/app/features/errors"
	"github.com/dalemusser/groupbook/internal/app/features/shared"
	"github.com/dalemusser/groupbook/internal/app/store"
	userstore "github.com/dalemusser/groupbook/internal/app/store/users"
	"github.com/dalemusser/groupbook/internal/app/system/auditlog"
	"github.com/dalemusser/groupbook/internal/app/system/authz"
	"github.com/dalemusser/groupbook/internal/app/system/formutil"
	"github.com/dalemusser/groupbook/internal/app/system/normalize"
	"github.com/dalemusser/groupbook/internal/app/system/paging"
	"github.com/dalemusser/groupbook/internal/app/system/requestid"
	"github.com/dalemusser/groupbook/internal/app/system/timeouts"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

type Handler struct {
	Users    store.Users
	Accounts *userstore.Store
	ErrLog   *uierrors.ErrorLogger
	Audit    *auditlog.Logger
	Timeouts timeouts.Config
	Log      *zap.Logger
}

func NewHandler(users store.Users, accounts *userstore.Store, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, to timeouts.Config, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    users,
		Accounts: accounts,
		ErrLog:   errLog,
		Audit:    audit,
		Timeouts: to,
		Log:      logger,
	}
}

type createInput struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Gender   string `json:"gender"`
}

type updateInput struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	Gender   *string `json:"gender"`
	IsActive *bool   `json:"is_active"`
}

// changed lists the supplied field names, for the audit trail.
func (in updateInput) changed() string {
	var names []string
	for _, f := range []struct {
		name string
		set  bool
	}{
		{"email", in.Email != nil},
		{"full_name", in.FullName != nil},
		{"password", in.Password != nil},
		{"role", in.Role != nil},
		{"gender", in.Gender != nil},
		{"is_active", in.IsActive != nil},
	} {
		if f.set {
			names = append(names, f.name)
		}
	}
	return strings.Join(names, ",")
}

type listResponse struct {
	Items  []models.User `json:"items"`
	Offset int           `json:"offset"`
	Limit  int           `json:"limit"`
}

// ServeList handles GET /users (admins). ?role= filters by role.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	page := paging.ParsePage(r)
	f := store.UserFilter{Role: normalize.Role(query.Get(r, "role"))}

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Medium, h.Log, "list users")
	defer cancel()

	users, err := h.Users.ListUsers(ctx, f, page)
	if err != nil {
		h.ErrLog.Handle(w, r, "list users", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{Items: users, Offset: page.Offset, Limit: page.Limit})
}

// HandleCreate handles POST /users (admins).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "create user: decode body", err, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Medium, h.Log, "create user")
	defer cancel()

	u, err := h.Accounts.Create(ctx, userstore.NewUser{
		Email:    in.Email,
		FullName: in.FullName,
		Password: in.Password,
		Role:     in.Role,
		Gender:   in.Gender,
	})
	if err != nil {
		h.ErrLog.Handle(w, r, "create user", err)
		return
	}
	h.Audit.UserCreated(ctx, r, authz.UserID(r), u.ID, u.Role)
	uierrors.WriteJSON(w, http.StatusCreated, u)
}

// ServeUser handles GET /users/{id} (admins, or the user themself).
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id")
	if !ok {
		return
	}
	if !authz.IsSelfOrAdmin(r, id) {
		h.ErrLog.LogForbidden(w, r, "read another user's account")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Short, h.Log, "get user")
	defer cancel()

	u, err := h.Users.GetUser(ctx, id)
	if err != nil {
		h.ErrLog.Handle(w, r, "get user", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, u)
}

// errSelfPrivilege is reported when a non-admin edits their own role or
// active flag.
var errSelfPrivilege = errors.New("only admins may change role or active status")

// HandleUpdate handles PUT /users/{id}. Admins may change any field of any
// account; other users may change their own email, name, password, and
// gender.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id")
	if !ok {
		return
	}
	if !authz.IsSelfOrAdmin(r, id) {
		h.ErrLog.LogForbidden(w, r, "edit another user's account")
		return
	}
	var in updateInput
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "update user: decode body", err, err.Error())
		return
	}
	if !authz.IsAdmin(r) && (in.Role != nil || in.IsActive != nil) {
		uierrors.WriteError(w, http.StatusForbidden, uierrors.CodeForbidden, errSelfPrivilege.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Medium, h.Log, "update user")
	defer cancel()

	started := time.Now()
	u, err := h.Accounts.Update(ctx, id, userstore.Update{
		Email:    in.Email,
		FullName: in.FullName,
		Password: in.Password,
		Role:     in.Role,
		Gender:   in.Gender,
		IsActive: in.IsActive,
	})
	if err != nil {
		h.ErrLog.Handle(w, r, "update user", err)
		return
	}
	h.Audit.UserUpdated(ctx, r, authz.UserID(r), id, in.changed())
	requestid.Logger(r, h.Log).Debug("user updated",
		zap.Int64("user_id", id),
		zap.Duration("took", time.Since(started)))
	uierrors.WriteJSON(w, http.StatusOK, u)
}
