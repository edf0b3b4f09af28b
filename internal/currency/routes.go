package currency

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the currency endpoints onto the given router under
// the /currency prefix.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/currency", func(r chi.Router) {
		r.Get("/currencies", h.Currencies)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Get)
				r.Delete("/", h.Delete)
				r.Post("/keys", h.Press)
				r.Put("/pair", h.SetPair)
				r.Post("/swap", h.Swap)
			})
		})
	})
}
