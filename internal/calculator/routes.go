package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the calculator session endpoints onto the given
// router under the /calculator prefix.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/calculator/sessions", func(r chi.Router) {
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Delete)
			r.Post("/keys", h.Press)
		})
	})
}
