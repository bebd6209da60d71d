package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/melaka-ybbae/pnl-ai-sync/config"
	"github.com/melaka-ybbae/pnl-ai-sync/handler"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/logger"
	"github.com/melaka-ybbae/pnl-ai-sync/service"
)

func main() {
	// Load configuration
	path := os.Getenv("PNL_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("failed to load config", "path", path, "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully", "backend", cfg.Backend.BaseURL)

	// Initialize services
	backend := service.NewBackendClient(&cfg.Backend)

	// The archive stays a nil interface when disabled so the coordinator skips it.
	var (
		archiver  service.Archiver
		presigner handler.Presigner
	)
	if cfg.Archive.Enabled {
		archive, err := service.NewMinioArchive(&cfg.Archive)
		if err != nil {
			slog.Error("failed to initialize archive", "error", err)
			os.Exit(1)
		}
		if err := archive.EnsureBucket(context.Background()); err != nil {
			slog.Error("failed to ensure archive bucket", "error", err)
			os.Exit(1)
		}
		archiver, presigner = archive, archive
	}

	registry := service.NewRegistry(backend, archiver, &cfg.Sync, &cfg.Workspace)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := setupRouter(cfg, dependencies{
		registry:  registry,
		backend:   backend,
		presigner: presigner,
	})

	// Create server. No write timeout: the view stream stays open, and is
	// ended through the base context on shutdown.
	baseCtx, stopStreams := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")
	stopStreams()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}
