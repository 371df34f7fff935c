// internal/app/features/groups/list.go
package groups

import (
	"net/http"

	"github.com/dalemusser/groupbook/internal/app/enrollment"
	uierrors "github.com/dalemusser/groupbook/internal/app/features/errors"
	"github.com/dalemusser/groupbook/internal/app/features/shared"
	"github.com/dalemusser/groupbook/internal/app/system/authz"
	"github.com/dalemusser/groupbook/internal/app/system/inputval"
	"github.com/dalemusser/groupbook/internal/app/system/normalize"
	"github.com/dalemusser/groupbook/internal/app/system/paging"
	"github.com/dalemusser/groupbook/internal/app/system/timeouts"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// ServeAvailable handles GET /groups/available.
//
// Lists the upcoming groups the signed-in visitor can still join. The
// optional gender parameter selects the sub-limit to check; it defaults to
// the visitor's recorded gender.
func (h *Handler) ServeAvailable(w http.ResponseWriter, r *http.Request) {
	gender := authz.Gender(r)
	if q := query.Get(r, "gender"); q != "" {
		gender = normalize.Gender(q)
	}
	if !inputval.IsValidGender(gender) {
		h.ErrLog.Handle(w, r, "available groups", &inputval.ValidationError{Errors: []inputval.FieldError{{
			Field:   "gender",
			Rule:    inputval.RuleInvalidGender,
			Message: `Gender must be "male", "female", or "other".`,
		}}})
		return
	}
	page := paging.ParsePage(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Medium, h.Log, "available groups")
	defer cancel()

	views, err := h.Svc.FindAvailable(ctx, authz.UserID(r), gender, page)
	if err != nil {
		h.ErrLog.Handle(w, r, "available groups", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse[enrollment.GroupView]{Items: views, Offset: page.Offset, Limit: page.Limit})
}

// ServeList handles GET /groups.
//
// Query parameters: instructor_id restricts to one instructor's groups;
// upcoming=true restricts to groups that have not started.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	instructorID, ok := shared.QueryID(w, r, "instructor_id")
	if !ok {
		return
	}
	upcoming := normalize.QueryParam(query.Get(r, "upcoming")) == "true"
	page := paging.ParsePage(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Medium, h.Log, "list groups")
	defer cancel()

	views, err := h.Svc.ListGroups(ctx, instructorID, upcoming, page)
	if err != nil {
		h.ErrLog.Handle(w, r, "list groups", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse[enrollment.GroupView]{Items: views, Offset: page.Offset, Limit: page.Limit})
}

// ServeGroup handles GET /groups/{id}.
func (h *Handler) ServeGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Short, h.Log, "get group")
	defer cancel()

	view, err := h.Svc.View(ctx, id)
	if err != nil {
		h.ErrLog.Handle(w, r, "get group", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, view)
}

// ServeRoster handles GET /groups/{id}/registrations for the group's
// instructor or an admin.
func (h *Handler) ServeRoster(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id")
	if !ok {
		return
	}
	page := paging.ParsePage(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Medium, h.Log, "group roster")
	defer cancel()

	regs, err := h.Svc.GroupRoster(ctx, shared.Actor(r), id, page)
	if err != nil {
		h.ErrLog.Handle(w, r, "group roster", err)
		return
	}
	h.Log.Debug("roster served", zap.Int64("group_id", id), zap.Int("count", len(regs)))
	uierrors.WriteJSON(w, http.StatusOK, listResponse[models.Registration]{Items: regs, Offset: page.Offset, Limit: page.Limit})
}
