// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	DataDir  string // Base directory for the run store (always absolute)
	Port     int
	LogLevel string
	DevMode  bool

	// RunRetentionDays controls how long stored runs are kept.
	RunRetentionDays int

	// Solver defaults; per-request overrides are not exposed.
	NoArbEpsilon float64
	RiskAversion float64

	Backup *BackupConfig
}

// BackupConfig holds the S3-compatible backup settings. Backups stay
// disabled until an endpoint and bucket are configured.
type BackupConfig struct {
	Enabled         bool
	Endpoint        string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Schedule        string // cron expression
}

// Load reads configuration from environment variables, preferring a .env
// file when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("STRATO_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:          absDataDir,
		Port:             getEnvAsInt("STRATO_PORT", 8010),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		RunRetentionDays: getEnvAsInt("RUN_RETENTION_DAYS", 30),
		NoArbEpsilon:     getEnvAsFloat("NO_ARB_EPSILON", 1e-6),
		RiskAversion:     getEnvAsFloat("RISK_AVERSION", 0),
		Backup:           loadBackupConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.RunRetentionDays <= 0 {
		return fmt.Errorf("run retention must be positive, got %d days", c.RunRetentionDays)
	}
	if c.NoArbEpsilon < 0 {
		return fmt.Errorf("no-arbitrage epsilon must be non-negative, got %g", c.NoArbEpsilon)
	}
	if c.RiskAversion < 0 {
		return fmt.Errorf("risk aversion must be non-negative, got %g", c.RiskAversion)
	}
	if c.Backup.Enabled && (c.Backup.Endpoint == "" || c.Backup.Bucket == "") {
		return fmt.Errorf("backup enabled but endpoint or bucket missing")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// loadBackupConfig loads the S3 backup settings. The endpoint form is
// account-scoped (e.g. Cloudflare R2), so no region is required.
func loadBackupConfig() *BackupConfig {
	return &BackupConfig{
		Enabled:         getEnvAsBool("BACKUP_ENABLED", false),
		Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
		Bucket:          getEnv("BACKUP_S3_BUCKET", ""),
		AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
		Schedule:        getEnv("BACKUP_SCHEDULE", "0 3 * * *"),
	}
}
