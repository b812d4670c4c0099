package plans

import "github.com/go-chi/chi/v5"

// Routes mounts the plan endpoints. The router must already be behind
// RequireAuth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}
