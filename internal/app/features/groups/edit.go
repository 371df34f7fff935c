// internal/app/features/groups/edit.go
package groups

import (
	"net/http"

	uierrors "github.com/dalemusser/groupbook/internal/app/features/errors"
	"github.com/dalemusser/groupbook/internal/app/features/shared"
	"github.com/dalemusser/groupbook/internal/app/system/authz"
	"github.com/dalemusser/groupbook/internal/app/system/formutil"
	"github.com/dalemusser/groupbook/internal/app/system/timeouts"
)

// HandleCreate handles POST /groups (admins and instructors).
// Answers 201 with the new group's view; 422 names the violated rule.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in groupInput
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "create group: decode body", err, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Medium, h.Log, "create group")
	defer cancel()

	view, err := h.Svc.CreateGroup(ctx, shared.Actor(r), in.group())
	if err != nil {
		h.ErrLog.Handle(w, r, "create group", err)
		return
	}
	h.Audit.GroupCreated(ctx, r, authz.UserID(r), view.ID, view.Name)
	uierrors.WriteJSON(w, http.StatusCreated, view)
}

// HandleUpdate handles PUT /groups/{id} (admins and the group's instructor).
// The body replaces every editable field; instructor_id is ignored.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id")
	if !ok {
		return
	}
	var in groupInput
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "update group: decode body", err, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Medium, h.Log, "update group")
	defer cancel()

	g := in.group()
	g.ID = id
	view, err := h.Svc.UpdateGroup(ctx, shared.Actor(r), g)
	if err != nil {
		h.ErrLog.Handle(w, r, "update group", err)
		return
	}
	h.Audit.GroupUpdated(ctx, r, authz.UserID(r), id)
	uierrors.WriteJSON(w, http.StatusOK, view)
}

type instructorInput struct {
	InstructorID *int64 `json:"instructor_id"`
}

// HandleAssignInstructor handles PUT /groups/{id}/instructor (admins).
// A null instructor_id clears the assignment.
func (h *Handler) HandleAssignInstructor(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id")
	if !ok {
		return
	}
	var in instructorInput
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "assign instructor: decode body", err, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Short, h.Log, "assign instructor")
	defer cancel()

	view, err := h.Svc.AssignInstructor(ctx, shared.Actor(r), id, in.InstructorID)
	if err != nil {
		h.ErrLog.Handle(w, r, "assign instructor", err)
		return
	}

	h.Audit.InstructorAssigned(ctx, r, authz.UserID(r), id, in.InstructorID)
	uierrors.WriteJSON(w, http.StatusOK, view)
}
