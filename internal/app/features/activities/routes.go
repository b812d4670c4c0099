package activities

import "github.com/go-chi/chi/v5"

// Routes mounts the activity endpoints. The router must already be behind
// RequireAuth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/assigned", h.Assigned)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Post("/{id}/comments", h.AddComment)
	r.Post("/{id}/evidence", h.AddEvidence)
	r.Delete("/{id}", h.Delete)
	return r
}
