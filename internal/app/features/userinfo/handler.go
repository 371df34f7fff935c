package userinfo

import (
	"net/http"

	uierrors "github.com/dalemusser/groupbook/internal/app/features/errors"
	"github.com/dalemusser/groupbook/internal/app/system/auth"
)

// Handler serves user information for authenticated sessions.
type Handler struct{}

// NewHandler creates a new userinfo handler.
func NewHandler() *Handler {
	return &Handler{}
}

// meResponse is the body of GET /me.
type meResponse struct {
	IsAuthenticated bool              `json:"is_authenticated"`
	User            *auth.SessionUser `json:"user,omitempty"`
}

// ServeMe returns the current user's authentication status and identity.
//
// Response format:
//
//	{ "is_authenticated": true, "user": { "id": 3, "name": "…", "email": "…", "role": "visitor", "gender": "male" } }
//
// Anonymous callers get { "is_authenticated": false } with status 200.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.WriteJSON(w, http.StatusOK, meResponse{})
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, meResponse{IsAuthenticated: true, User: user})
}
