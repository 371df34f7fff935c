// Package shared holds small helpers the API feature handlers have in common.
package shared

import (
	"net/http"

	"github.com/dalemusser/groupbook/internal/app/enrollment"
	uierrors "github.com/dalemusser/groupbook/internal/app/features/errors"
	"github.com/dalemusser/groupbook/internal/app/system/authz"
	"github.com/dalemusser/groupbook/internal/app/system/paging"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
)

// Actor returns the signed-in user as an enrollment.Actor. Routes that call
// it sit behind RequireSignedIn, so a missing user yields the zero Actor,
// which no permission check accepts.
func Actor(r *http.Request) enrollment.Actor {
	role, _, id, ok := authz.UserCtx(r)
	if !ok {
		return enrollment.Actor{}
	}
	return enrollment.Actor{ID: id, Role: role}
}

// PathID parses the named chi URL parameter as a positive id. On failure it
// writes a 400 and returns false.
func PathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, ok := paging.ParseID(chi.URLParam(r, name))
	if !ok {
		uierrors.WriteError(w, http.StatusBadRequest, uierrors.CodeBadRequest, "Invalid "+name+".")
		return 0, false
	}
	return id, true
}

// QueryID parses an optional id query parameter. An absent parameter yields
// nil. An unparsable one writes a 400 and returns false.
func QueryID(w http.ResponseWriter, r *http.Request, name string) (*int64, bool) {
	s := query.Get(r, name)
	if s == "" {
		return nil, true
	}
	id, ok := paging.ParseID(s)
	if !ok {
		uierrors.WriteError(w, http.StatusBadRequest, uierrors.CodeBadRequest, "Invalid "+name+".")
		return nil, false
	}
	return &id, true
}
