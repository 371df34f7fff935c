// Package preferences serves instructors' recurring weekly teaching windows.
package preferences

import (
	"net/http"

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

// preferenceInput is the request body for create and update. instructor_id
// is only read on create by admins.
type preferenceInput struct {
	InstructorID int64  `json:"instructor_id"`
	DayOfWeek    string `json:"day_of_week"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
}

func (in preferenceInput) preference() models.InstructorPreference {
	return models.InstructorPreference{
		InstructorID: in.InstructorID,
		DayOfWeek:    in.DayOfWeek,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
	}
}

type listResponse struct {
	Items  []models.InstructorPreference `json:"items"`
	Offset int                           `json:"offset"`
	Limit  int                           `json:"limit"`
}

// ServeList handles GET /preferences. Instructors see their own; admins see
// all, optionally narrowed with ?instructor_id=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	instructorID, ok := shared.QueryID(w, r, "instructor_id")
	if !ok {
		return
	}
	page := paging.ParsePage(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Medium, h.Log, "list preferences")
	defer cancel()

	prefs, err := h.Svc.ListPreferences(ctx, shared.Actor(r), instructorID, page)
	if err != nil {
		h.ErrLog.Handle(w, r, "list preferences", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{Items: prefs, Offset: page.Offset, Limit: page.Limit})
}

func (h *Handler) ServePreference(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Short, h.Log, "get preference")
	defer cancel()

	p, err := h.Svc.GetPreference(ctx, shared.Actor(r), id)
	if err != nil {
		h.ErrLog.Handle(w, r, "get preference", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in preferenceInput
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "create preference: decode body", err, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Medium, h.Log, "create preference")
	defer cancel()

	p, err := h.Svc.CreatePreference(ctx, shared.Actor(r), in.preference())
	if err != nil {
		h.ErrLog.Handle(w, r, "create preference", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id")
	if !ok {
		return
	}
	var in preferenceInput
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "update preference: decode body", err, err.Error())
		return
	}
	p := in.preference()
	p.ID = id

	ctx, cancel := timeouts.WithTimeout(r.Context(), h.Timeouts.Medium, h.Log, "update preference")
	defer cancel()

	out, err := h.Svc.UpdatePreference(ctx, shared.Actor(r), p)
	if err != nil {
		h.ErrLog.Handle(w, r, "update preference", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, out)
}
