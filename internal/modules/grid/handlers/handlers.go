// Package handlers provides HTTP handlers for grid strategy backtests.
package handlers

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/stratolab/strato-go/internal/marketdata"
	"github.com/stratolab/strato-go/internal/modules/grid"
)

// maxCandles bounds request and synthetic series size.
const maxCandles = 100000

// Handler handles grid backtest HTTP requests.
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new grid handler.
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		log: log.With().Str("handler", "grid").Logger(),
	}
}

// BacktestRequest runs the grid strategy over supplied candles, or over a
// synthetic random walk when none are given.
type BacktestRequest struct {
	Candles        []marketdata.Candle `json:"candles,omitempty"`
	Params         *grid.Params        `json:"params,omitempty"`
	InitialBalance float64             `json:"initial_balance"`
	FeeRate        float64             `json:"fee_rate"`

	// Synthetic series settings, used when Candles is empty.
	NumCandles int    `json:"num_candles,omitempty"`
	Seed       *int64 `json:"seed,omitempty"`
}

// HandleBacktest handles POST /api/grid/backtest
func (h *Handler) HandleBacktest(w http.ResponseWriter, r *http.Request) {
	var request BacktestRequest

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if request.InitialBalance <= 0 {
		h.writeError(w, http.StatusBadRequest, "Initial balance must be positive")
		return
	}
	if request.FeeRate < 0 {
		h.writeError(w, http.StatusBadRequest, "Fee rate cannot be negative")
		return
	}
	if len(request.Candles) > maxCandles {
		h.writeError(w, http.StatusBadRequest, "Too many candles (max 100000)")
		return
	}

	params := grid.DefaultParams()
	if request.Params != nil {
		params = *request.Params
	}
	if params.MALen <= 0 || params.ATRLen <= 0 || params.BandMult <= 0 {
		h.writeError(w, http.StatusBadRequest, "Grid parameters must be positive")
		return
	}

	candles := request.Candles
	synthetic := false
	if len(candles) == 0 {
		n := request.NumCandles
		if n <= 0 {
			n = 1440
		}
		if n > maxCandles {
			h.writeError(w, http.StatusBadRequest, "Too many candles (max 100000)")
			return
		}

		seed := time.Now().UnixNano()
		if request.Seed != nil {
			seed = *request.Seed
		}
		gen := marketdata.NewCandleGenerator(
			marketdata.DefaultGeneratorConfig(),
			100.0,
			rand.New(rand.NewSource(seed)),
		)
		candles = gen.Series(n)
		synthetic = true
	}

	startTime := time.Now()
	report := grid.Backtest(candles, params, request.InitialBalance, request.FeeRate)

	h.log.Info().
		Int("candles", len(candles)).
		Bool("synthetic", synthetic).
		Int("trades", report.TotalTrades).
		Float64("final_balance", report.FinalBalance).
		Dur("elapsed", time.Since(startTime)).
		Msg("Grid backtest completed")

	h.writeJSON(w, http.StatusOK, report)
}

// RegisterRoutes registers grid routes on the API router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/grid", func(r chi.Router) {
		r.Post("/backtest", h.HandleBacktest)
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
