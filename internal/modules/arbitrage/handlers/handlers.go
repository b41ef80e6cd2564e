// Package handlers provides HTTP handlers for portfolio construction.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/stratolab/strato-go/internal/lp"
	"github.com/stratolab/strato-go/internal/modules/arbitrage"
)

// maxInstruments bounds request size to prevent resource exhaustion.
const maxInstruments = 10000

// RunStore persists construction results.
type RunStore interface {
	Save(result arbitrage.Result, capital float64) (string, error)
}

// Handler handles construction HTTP requests.
type Handler struct {
	constructor *arbitrage.Constructor
	store       RunStore
	log         zerolog.Logger
}

// NewHandler creates a new construction handler. The store may be nil,
// in which case results are not persisted.
func NewHandler(constructor *arbitrage.Constructor, store RunStore, log zerolog.Logger) *Handler {
	return &Handler{
		constructor: constructor,
		store:       store,
		log:         log.With().Str("handler", "arbitrage").Logger(),
	}
}

// ConstructResponse is the wire shape of a construction result.
type ConstructResponse struct {
	RunID     string              `json:"run_id,omitempty"`
	Status    arbitrage.Status    `json:"status"`
	Objective float64             `json:"objective"`
	Holdings  []arbitrage.Holding `json:"holdings"`
}

// HandleConstruct handles POST /api/arbitrage/construct
func (h *Handler) HandleConstruct(w http.ResponseWriter, r *http.Request) {
	var request arbitrage.Request

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(request.Instruments) > maxInstruments {
		h.writeError(w, http.StatusBadRequest, "Too many instruments (max 10000)")
		return
	}

	startTime := time.Now()
	result, err := h.constructor.Construct(request)
	elapsed := time.Since(startTime)

	if err != nil {
		h.respondConstructError(w, err)
		return
	}

	h.log.Info().
		Int("instruments", len(request.Instruments)).
		Str("status", string(result.Status)).
		Float64("objective", result.Objective).
		Dur("elapsed", elapsed).
		Msg("Construction completed")

	response := ConstructResponse{
		Status:    result.Status,
		Objective: result.Objective,
		Holdings:  result.Portfolio.Holdings,
	}

	if h.store != nil {
		runID, err := h.store.Save(*result, request.Capital)
		if err != nil {
			// Persistence failure should not hide a valid result.
			h.log.Error().Err(err).Msg("Failed to persist run")
		} else {
			response.RunID = runID
		}
	}

	h.writeJSON(w, http.StatusOK, response)
}

// respondConstructError maps construction failures to HTTP statuses:
// bad input is the caller's fault, infeasible or unbounded programs are
// unprocessable, and numerical failures are server errors.
func (h *Handler) respondConstructError(w http.ResponseWriter, err error) {
	var (
		instErr *arbitrage.InvalidInstrumentError
		dimErr  *arbitrage.DimensionMismatchError
	)

	switch {
	case errors.As(err, &instErr), errors.As(err, &dimErr), errors.Is(err, arbitrage.ErrInvalidContext):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, lp.ErrInfeasible), errors.Is(err, lp.ErrUnbounded):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.log.Error().Err(err).Msg("Construction failed")
		h.writeError(w, http.StatusInternalServerError, "Construction failed: "+err.Error())
	}
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
