// Package server provides the HTTP server and routing.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/stratolab/strato-go/internal/config"
	"github.com/stratolab/strato-go/internal/database"
	"github.com/stratolab/strato-go/internal/modules/arbitrage"
	arbitragehandlers "github.com/stratolab/strato-go/internal/modules/arbitrage/handlers"
	gridhandlers "github.com/stratolab/strato-go/internal/modules/grid/handlers"
	hedginghandlers "github.com/stratolab/strato-go/internal/modules/hedging/handlers"
	"github.com/stratolab/strato-go/internal/modules/runs"
	runshandlers "github.com/stratolab/strato-go/internal/modules/runs/handlers"
	"github.com/stratolab/strato-go/internal/reliability"
)

// Config holds server configuration.
type Config struct {
	Log           zerolog.Logger
	Config        *config.Config
	RunsDB        *database.DB
	RunsRepo      *runs.Repository
	Constructor   *arbitrage.Constructor
	BackupService *reliability.BackupService // nil when backups are disabled
}

// Server is the HTTP server.
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	runsDB         *database.DB
	runsRepo       *runs.Repository
	constructor    *arbitrage.Constructor
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log.With().Str("component", "server").Logger(),
		cfg:         cfg.Config,
		runsDB:      cfg.RunsDB,
		runsRepo:    cfg.RunsRepo,
		constructor: cfg.Constructor,
	}
	s.systemHandlers = NewSystemHandlers(cfg.Log, cfg.Config.DataDir, cfg.RunsDB, cfg.BackupService)

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Router exposes the chi router, used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.systemHandlers.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
			r.Get("/backups", s.systemHandlers.HandleListBackups)
			r.Post("/backup", s.systemHandlers.HandleTriggerBackup)
		})

		arbitrageHandler := arbitragehandlers.NewHandler(s.constructor, s.runsRepo, s.log)
		arbitrageHandler.RegisterRoutes(r)

		runsHandler := runshandlers.NewHandler(s.runsRepo, s.log)
		runsHandler.RegisterRoutes(r)

		hedgingHandler := hedginghandlers.NewHandler(s.log)
		hedgingHandler.RegisterRoutes(r)

		gridHandler := gridhandlers.NewHandler(s.log)
		gridHandler.RegisterRoutes(r)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
