package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/rescalc/internal/api"
	"github.com/dgallion1/rescalc/internal/component"
	"github.com/dgallion1/rescalc/internal/config"
	"github.com/dgallion1/rescalc/internal/pipeline"
)

func main() {
	cfg := config.Load()
	log := config.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	presets := config.Presets{}
	if cfg.PresetsFile != "" {
		p, err := config.LoadPresets(cfg.PresetsFile)
		if err != nil {
			log.Error("failed to load presets", "file", cfg.PresetsFile, "error", err)
			os.Exit(1)
		}
		presets = p
		log.Info("loaded presets", "file", cfg.PresetsFile, "names", presets.Names())
	}

	parser, err := component.NewParser()
	if err != nil {
		log.Error("failed to build value parser", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize pipeline.
	sessions := pipeline.NewSessionStore(cfg.SessionTTL)
	stats := pipeline.NewLatencyStats(time.Hour)
	orch := pipeline.NewOrchestrator(cfg, sessions, stats, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, sessions, stats, parser, presets, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting rescalc",
		"port", cfg.Port,
		"workers", cfg.WorkerCount,
		"chunks", cfg.ChunkCount,
		"sync_threshold", cfg.SyncThreshold,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
