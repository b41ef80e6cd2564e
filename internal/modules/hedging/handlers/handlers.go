// Package handlers provides HTTP handlers for delta-hedge sizing.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/stratolab/strato-go/internal/modules/hedging"
	"github.com/stratolab/strato-go/internal/pricing"
)

// Handler handles hedging HTTP requests.
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new hedging handler.
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		log: log.With().Str("handler", "hedging").Logger(),
	}
}

// PerpsRequest sizes a perpetual-futures hedge for an options position.
type PerpsRequest struct {
	Kind         pricing.OptionKind `json:"kind"`
	NumContracts float64            `json:"num_contracts"`
	S            float64            `json:"s"`
	K            float64            `json:"k"`
	T            float64            `json:"t"`
	R            float64            `json:"r"`
	Sigma        float64            `json:"sigma"`
	// TargetDelta is the desired total position delta, usually zero.
	TargetDelta float64 `json:"target_delta"`
	Leverage    float64 `json:"leverage"`
	FeeRate     float64 `json:"fee_rate"`
}

// HandlePerps handles POST /api/hedging/perps
func (h *Handler) HandlePerps(w http.ResponseWriter, r *http.Request) {
	var request PerpsRequest

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if request.Leverage <= 0 {
		h.writeError(w, http.StatusBadRequest, "Leverage must be positive")
		return
	}
	if request.FeeRate < 0 {
		h.writeError(w, http.StatusBadRequest, "Fee rate cannot be negative")
		return
	}

	delta, err := pricing.Delta(request.Kind, request.S, request.K, request.T, request.R, request.Sigma)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	plan := hedging.BuildPlan(
		request.S,
		delta,
		request.NumContracts,
		request.TargetDelta,
		request.Leverage,
		request.FeeRate,
	)

	h.log.Info().
		Float64("delta", delta).
		Float64("perps_needed", plan.PerpsNeeded).
		Msg("Hedge plan computed")

	h.writeJSON(w, http.StatusOK, plan)
}

// RegisterRoutes registers hedging routes on the API router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/hedging", func(r chi.Router) {
		r.Post("/perps", h.HandlePerps)
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
