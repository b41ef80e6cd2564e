// Package main is the entry point for the strato portfolio construction
// service. It prices option chains, detects mispricings, and builds
// liquidity- and capital-constrained arbitrage portfolios via linear
// programming, exposing the whole pipeline over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/stratolab/strato-go/internal/config"
	"github.com/stratolab/strato-go/internal/database"
	"github.com/stratolab/strato-go/internal/modules/arbitrage"
	"github.com/stratolab/strato-go/internal/modules/runs"
	"github.com/stratolab/strato-go/internal/reliability"
	"github.com/stratolab/strato-go/internal/scheduler"
	"github.com/stratolab/strato-go/internal/server"
	"github.com/stratolab/strato-go/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting strato")

	// Run store
	runsDB, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "runs.db"),
		Name: "runs",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open runs database")
	}
	defer runsDB.Close()

	runsRepo, err := runs.NewRepository(runsDB.Conn(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize runs repository")
	}

	// Portfolio constructor
	constructorCfg := arbitrage.DefaultConfig()
	constructorCfg.NoArbEpsilon = cfg.NoArbEpsilon
	constructorCfg.RiskAversion = cfg.RiskAversion
	constructor := arbitrage.NewConstructor(constructorCfg, log)

	// Optional S3 backups
	var backupService *reliability.BackupService
	if cfg.Backup.Enabled {
		s3Client, err := reliability.NewS3Client(
			cfg.Backup.Endpoint,
			cfg.Backup.AccessKeyID,
			cfg.Backup.SecretAccessKey,
			cfg.Backup.Bucket,
			log,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 client")
		}
		backupService = reliability.NewBackupService(s3Client, runsDB, cfg.DataDir, log)
		log.Info().Str("bucket", cfg.Backup.Bucket).Msg("Backups enabled")
	}

	// Background jobs
	sched := scheduler.New(log)
	cleanupJob := runs.NewCleanupJob(runsRepo, runsDB, cfg.RunRetentionDays, log)
	if err := sched.AddJob("@daily", cleanupJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cleanup job")
	}
	if backupService != nil {
		if err := sched.AddJob(cfg.Backup.Schedule, reliability.NewBackupJob(backupService)); err != nil {
			log.Fatal().Err(err).Msg("Failed to register backup job")
		}
	}
	sched.Start()

	srv := server.New(server.Config{
		Log:           log,
		Config:        cfg,
		RunsDB:        runsDB,
		RunsRepo:      runsRepo,
		Constructor:   constructor,
		BackupService: backupService,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
