package registrations

import (
	"github.com/dalemusser/groupbook/internal/app/system/auth"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Group(func(vr chi.Router) {
			vr.Use(sm.RequireRole(models.RoleVisitor))
			vr.Post("/", h.HandleRegister)
			vr.Get("/", h.ServeMine)
		})

		pr.With(sm.RequireRole(models.RoleAdmin, models.RoleInstructor)).
			Put("/{id}/attendance", h.HandleAttendance)
	})

	return r
}
