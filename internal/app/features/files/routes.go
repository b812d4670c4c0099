package files

import "github.com/go-chi/chi/v5"

// Routes mounts the file endpoints. The router must already be behind
// RequireAuth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/upload", h.Upload)
	r.Get("/download/{filename}", h.Download)
	r.Delete("/delete/{filename}", h.Delete)
	return r
}
