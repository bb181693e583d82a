package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/rescalc/internal/search"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount   int
	MaxQueueSize  int
	ChunkCount    int
	SyncThreshold int

	// Upload limits
	MaxUploadBytes int64

	// State
	JobTTL     time.Duration
	SessionTTL time.Duration

	// Search defaults
	Limits      search.Limits
	PresetsFile string

	// PDF
	PDFFallbackPdftotext bool

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() Config {
	defaults := search.DefaultLimits()
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("RESCALC_API_KEY"),

		WorkerCount:   envInt("WORKER_COUNT", 4),
		MaxQueueSize:  envInt("MAX_QUEUE_SIZE", 256),
		ChunkCount:    envInt("CHUNK_COUNT", 4),
		SyncThreshold: envInt("SYNC_THRESHOLD", 8),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		JobTTL:     envDuration("JOB_TTL", time.Hour),
		SessionTTL: envDuration("SESSION_TTL", time.Hour),

		Limits: search.Limits{
			MaxParallel:       envInt("MAX_PARALLEL", defaults.MaxParallel),
			MaxSeriesBlocks:   envInt("MAX_SERIES_BLOCKS", defaults.MaxSeriesBlocks),
			MaxBlocks:         envInt("MAX_BLOCKS", defaults.MaxBlocks),
			MaxCombos:         envInt("MAX_COMBOS", defaults.MaxCombos),
			MaxParallelCombos: envInt("MAX_PARALLEL_COMBOS", defaults.MaxParallelCombos),
		},
		PresetsFile: os.Getenv("PRESETS_FILE"),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		LogLevel:  envOr("LOG_LEVEL", "info"),
		LogFormat: envOr("LOG_FORMAT", "json"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 256
	}
	if cfg.ChunkCount <= 0 {
		cfg.ChunkCount = 4
	}
	if cfg.SyncThreshold < 0 {
		cfg.SyncThreshold = 0
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = time.Hour
	}
	cfg.Limits = defaults.Merge(cfg.Limits)

	return cfg
}

// Validate checks settings the HTTP server cannot start without.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("RESCALC_API_KEY is required")
	}
	if c.ChunkCount > c.MaxQueueSize {
		return fmt.Errorf("CHUNK_COUNT (%d) exceeds MAX_QUEUE_SIZE (%d)", c.ChunkCount, c.MaxQueueSize)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
