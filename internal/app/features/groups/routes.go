// internal/app/features/groups/routes.go
package groups

import (
	"github.com/dalemusser/groupbook/internal/app/system/auth"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Everything under /groups requires authentication
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// LIST / VIEW
		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeGroup)

		// AVAILABILITY (visitors only)
		pr.With(sm.RequireRole(models.RoleVisitor)).Get("/available", h.ServeAvailable)

		// CREATE / EDIT (ownership is checked by the service)
		pr.Group(func(ed chi.Router) {
			ed.Use(sm.RequireRole(models.RoleAdmin, models.RoleInstructor))
			ed.Post("/", h.HandleCreate)
			ed.Put("/{id}", h.HandleUpdate)
			ed.Get("/{id}/registrations", h.ServeRoster)
		})

		// INSTRUCTOR ASSIGNMENT
		pr.With(sm.RequireRole(models.RoleAdmin)).Put("/{id}/instructor", h.HandleAssignInstructor)
	})

	return r
}
