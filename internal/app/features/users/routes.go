package users

import (
	"github.com/dalemusser/liderplan/internal/app/system/auth"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the user endpoints. The router must already be behind
// RequireAuth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/me", h.Me)
	r.Get("/directory", h.Directory)
	r.Put("/change-password", h.ChangePassword)
	r.Put("/{id}", h.Update)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(models.RoleAdmin))
		r.Post("/create", h.Create)
		r.Get("/all", h.All)
		r.Get("/role/{role}", h.ByRole)
		r.Delete("/{id}", h.Delete)
		r.Patch("/{id}/role", h.ChangeRole)
	})
	return r
}
