// Package schedules serves the absolute time ranges instructors are booked
// for.
package schedules

import (
	"net/http"
	"time"

	"github.com/dalemusser/groupbook/internal/app/enrollment"
	uierrors "github.com/dalemusser/groupbook/internal/app/features/errors"
	"github.com/dalemusser/groupbook/internal/app/features/shared"
	"github.com/dalemusser/groupbook/internal/app/system/formutil"
	"github.com/dalemusser/groupbook/internal/app/system/paging"
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

type scheduleInput struct {
	InstructorID int64     `json:"instructor_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

func (in scheduleInput) schedule() models.InstructorSchedule {
	return models.InstructorSchedule{
		InstructorID: in.InstructorID,
		StartTime:    in.StartTime.UTC(),
		EndTime:      in.EndTime.UTC(),
	}
}

type listResponse struct {
	Items  []models.InstructorSchedule `json:"items"`
	Offset int                         `json:"offset"`
	Limit  int                         `json:"limit"`
}

// ServeList handles GET /schedules. Instructors see their own; admins see
// all, optionally narrowed with ?instructor_id=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	instructorID, ok := shared.QueryID(w, r, "instructor_id")
	if !ok {
		return
	}
	page := paging.ParsePage(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Medium, h.Log, "list schedules")
	defer cancel()

	items, err := h.Svc.ListSchedules(ctx, shared.Actor(r), instructorID, page)
	if err != nil {
		h.ErrLog.Handle(w, r, "list schedules", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{Items: items, Offset: page.Offset, Limit: page.Limit})
}

func (h *Handler) ServeSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Short, h.Log, "get schedule")
	defer cancel()

	sc, err := h.Svc.GetSchedule(ctx, shared.Actor(r), id)
	if err != nil {
		h.ErrLog.Handle(w, r, "get schedule", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, sc)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in scheduleInput
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "create schedule: decode body", err, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Medium, h.Log, "create schedule")
	defer cancel()

	sc, err := h.Svc.CreateSchedule(ctx, shared.Actor(r), in.schedule())
	if err != nil {
		h.ErrLog.Handle(w, r, "create schedule", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusCreated, sc)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id")
	if !ok {
		return
	}
	var in scheduleInput
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "update schedule: decode body", err, err.Error())
		return
	}
	sc := in.schedule()
	sc.ID = id

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Medium, h.Log, "update schedule")
	defer cancel()

	out, err := h.Svc.UpdateSchedule(ctx, shared.Actor(r), sc)
	if err != nil {
		h.ErrLog.Handle(w, r, "update schedule", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, out)
}
