// Package registrations serves visitor sign-up and attendance endpoints.
package registrations

import (
	"net/http"

	"github.com/dalemusser/groupbook/internal/app/enrollment"
	uierrors "github.com/dalemusser/groupbook/internal/app/features/errors"
	"github.com/dalemusser/groupbook/internal/app/features/shared"
	"github.com/dalemusser/groupbook/internal/app/system/authz"
	"github.com/dalemusser/groupbook/internal/app/system/formutil"
	"github.com/dalemusser/groupbook/internal/app/system/paging"
	"github.com/dalemusser/groupbook/internal/app/system/requestid"
	"github.com/dalemusser/groupbook/internal/app/system/timeouts"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Svc      *enrollment.Service
	ErrLog   *uierrors.ErrorLogger
	Timeouts timeouts.Config
	Log      *zap.Logger
}

func NewHandler(svc *enrollment.Service, errLog *uierrors.ErrorLogger, to timeouts.Config, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:      svc,
		ErrLog:   errLog,
		Timeouts: to,
		Log:      logger,
	}
}

type registerInput struct {
	GroupID int64 `json:"group_id"`
}

// HandleRegister handles POST /registrations for the signed-in visitor.
//
// 201 with the registration on success; repeating the request returns the
// same registration,
// 409 capacity_exceeded when the group or the visitor's bucket is full,
// 404 when the group does not exist.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "register: decode body", err, err.Error())
		return
	}
	if in.GroupID <= 0 {
		uierrors.WriteError(w, http.StatusBadRequest, uierrors.CodeBadRequest, "group_id is required.")
		return
	}
	visitorID := authz.UserID(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Long, h.Log, "register")
	defer cancel()

	reg, err := h.Svc.Register(ctx, visitorID, in.GroupID)
	if err != nil {
		h.ErrLog.Handle(w, r, "register", err)
		return
	}

	requestid.Logger(r, h.Log).Info("visitor registered",
		zap.Int64("visitor_id", visitorID),
		zap.Int64("group_id", in.GroupID),
		zap.Int64("registration_id", reg.ID))
	uierrors.WriteJSON(w, http.StatusCreated, reg)
}

type listResponse struct {
	Items  []models.Registration `json:"items"`
	Offset int                   `json:"offset"`
	Limit  int                   `json:"limit"`
}

// ServeMine handles GET /registrations: the signed-in visitor's registrations.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	page := paging.ParsePage(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Medium, h.Log, "list my registrations")
	defer cancel()

	regs, err := h.Svc.ListMine(ctx, authz.UserID(r), page)
	if err != nil {
		h.ErrLog.Handle(w, r, "list my registrations", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{Items: regs, Offset: page.Offset, Limit: page.Limit})
}

type attendanceInput struct {
	Attended *bool `json:"attended"`
}

// HandleAttendance handles PUT /registrations/{id}/attendance for the
// group's instructor or an admin.
func (h *Handler) HandleAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id")
	if !ok {
		return
	}
	var in attendanceInput
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "attendance: decode body", err, err.Error())
		return
	}
	if in.Attended == nil {
		uierrors.WriteError(w, http.StatusBadRequest, uierrors.CodeBadRequest, "attended is required.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Short, h.Log, "set attendance")
	defer cancel()

	reg, err := h.Svc.SetAttended(ctx, shared.Actor(r), id, *in.Attended)
	if err != nil {
		h.ErrLog.Handle(w, r, "set attendance", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, reg)
}
