package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers construction routes on the API router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/arbitrage", func(r chi.Router) {
		r.Post("/construct", h.HandleConstruct)
	})
}
