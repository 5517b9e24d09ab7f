package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns booking routes. guestAuth guards submission and the
// attempts ledger.
func (h *Handler) Routes(guestAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/steps", h.Steps)
	r.Post("/", h.Start)

	r.With(guestAuth).Get("/attempts", h.Attempts)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Post("/start", h.Restart)
		r.Put("/step", h.SetStep)
		r.Put("/dialog", h.SetDialog)
		r.Put("/prices", h.SetPrices)
		r.Post("/prices", h.FetchPrices)
		r.Delete("/prices", h.ClearPrices)
		r.Delete("/date-two", h.ClearDateTwo)
		r.Post("/validate", h.Validate)
		r.Post("/cancel", h.Cancel)
		r.Post("/end", h.End)

		r.With(guestAuth).Post("/submit", h.Submit)
	})

	return r
}
