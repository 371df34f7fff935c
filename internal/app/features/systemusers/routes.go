package systemusers

import (
	"github.com/dalemusser/groupbook/internal/app/system/auth"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// Self-or-admin is checked in the handlers.
		pr.Get("/{id}", h.ServeUser)
		pr.Put("/{id}", h.HandleUpdate)

		pr.Group(func(ar chi.Router) {
			ar.Use(sm.RequireRole(models.RoleAdmin))
			ar.Get("/", h.ServeList)
			ar.Post("/", h.HandleCreate)
		})
	})

	return r
}
