package dashboard

import "github.com/go-chi/chi/v5"

// Routes mounts the dashboard under whatever prefix the top-level router
// chooses. The router must already be behind RequireAuth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/summary", h.Summary)
	return r
}
