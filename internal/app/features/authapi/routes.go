package authapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts register and login publicly and logout behind requireAuth.
func Routes(h *Handler, requireAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.With(requireAuth).Post("/logout", h.Logout)
	return r
}
