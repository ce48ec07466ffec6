package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/mriflash/internal/api"
	"github.com/vytor/mriflash/internal/app"
	"github.com/vytor/mriflash/internal/config"
	"github.com/vytor/mriflash/internal/logger"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(cfg.LogColors),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("MRIFlash Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("images_dir=%s", cfg.ImagesDir)
	log.Debug("metadata_source=%s", cfg.MetadataSource)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("default_session_length=%s", cfg.SessionLength())
	log.Debug("prefetch_ahead=%d", cfg.PrefetchAhead)
	log.Debug("prefetch_worker_count=%d", cfg.PrefetchWorkerCount)
	log.Debug("prefetch_queue_size=%d", cfg.PrefetchQueueSize)
	log.Debug("prefetch_rate=%d", cfg.PrefetchRate)
	log.Debug("image_cache_size=%d", cfg.ImageCacheSize)
	log.Debug("history_retention_days=%d", cfg.HistoryRetentionDays)
	log.Debug("maintenance_interval_minutes=%d", cfg.MaintenanceInterval)
	log.Debug("storage_quota_bytes=%d", cfg.StorageQuotaBytes)

	ctx, cancel := context.WithCancel(logger.NewContext(context.Background(), log))

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize: %v", err)
		os.Exit(1)
	}
	if err := application.Start(ctx); err != nil {
		log.Error("failed to start background jobs: %v", err)
		os.Exit(1)
	}

	srv := &api.Server{
		QuizService:   application.Quiz,
		Images:        application.Images,
		DB:            application.DB,
		DefaultLength: cfg.SessionLength(),
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	cancel()
	if err := application.Close(); err != nil {
		log.Error("shutdown error: %v", err)
	}

	log.Info("===========================================")
	log.Info("MRIFlash Server Stopped")
	log.Info("===========================================")
}
